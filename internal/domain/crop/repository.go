// Package crop manages crop types and growth stages.
package crop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/agroplan/internal/common"
)

// CropType describes a cultivable crop and its planting geometry. Row and
// plant spacing are in meters and may be absent until the user fills them in;
// a planning referencing the crop type cannot be saved until both are set.
type CropType struct {
	ID                    uuid.UUID
	UserID                uuid.UUID
	Name                  string
	Description           *string
	SowingDensityPerHa    *decimal.Decimal
	EstimatedDurationDays *int
	RowSpacing            *decimal.Decimal
	PlantSpacing          *decimal.Decimal
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// OwnedBy implements common.Owned
func (c *CropType) OwnedBy() uuid.UUID { return c.UserID }

// Stage is a named phase of a cultivation cycle with a nominal duration
type Stage struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Name         string
	Description  *string
	DurationDays *int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OwnedBy implements common.Owned
func (s *Stage) OwnedBy() uuid.UUID { return s.UserID }

// CropTypeRepository defines persistence operations for crop types
type CropTypeRepository interface {
	Create(ctx context.Context, c *CropType) error
	GetByID(ctx context.Context, id uuid.UUID) (*CropType, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*CropType, error)
	Update(ctx context.Context, c *CropType) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// StageRepository defines persistence operations for stages
type StageRepository interface {
	Create(ctx context.Context, s *Stage) error
	GetByID(ctx context.Context, id uuid.UUID) (*Stage, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Stage, error)
	Update(ctx context.Context, s *Stage) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PostgresCropTypeRepository implements CropTypeRepository using PostgreSQL
type PostgresCropTypeRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCropTypeRepository creates a new PostgreSQL-backed crop type repository
func NewPostgresCropTypeRepository(pool *pgxpool.Pool) *PostgresCropTypeRepository {
	return &PostgresCropTypeRepository{pool: pool}
}

func (r *PostgresCropTypeRepository) Create(ctx context.Context, c *CropType) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	query := `
		INSERT INTO crop_types (id, user_id, name, description, sowing_density_per_ha,
		                        estimated_duration_days, row_spacing, plant_spacing)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		c.ID, c.UserID, c.Name, c.Description, c.SowingDensityPerHa,
		c.EstimatedDurationDays, c.RowSpacing, c.PlantSpacing,
	)
	if err != nil {
		return fmt.Errorf("failed to create crop type: %w", err)
	}
	return nil
}

func (r *PostgresCropTypeRepository) GetByID(ctx context.Context, id uuid.UUID) (*CropType, error) {
	query := `
		SELECT id, user_id, name, description, sowing_density_per_ha,
		       estimated_duration_days, row_spacing, plant_spacing, created_at, updated_at
		FROM crop_types WHERE id = $1
	`

	var c CropType
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.UserID, &c.Name, &c.Description, &c.SowingDensityPerHa,
		&c.EstimatedDurationDays, &c.RowSpacing, &c.PlantSpacing, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NotFoundf("crop type %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crop type: %w", err)
	}
	return &c, nil
}

func (r *PostgresCropTypeRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*CropType, error) {
	query := `
		SELECT id, user_id, name, description, sowing_density_per_ha,
		       estimated_duration_days, row_spacing, plant_spacing, created_at, updated_at
		FROM crop_types WHERE user_id = $1
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list crop types: %w", err)
	}
	defer rows.Close()

	var cropTypes []*CropType
	for rows.Next() {
		var c CropType
		err := rows.Scan(
			&c.ID, &c.UserID, &c.Name, &c.Description, &c.SowingDensityPerHa,
			&c.EstimatedDurationDays, &c.RowSpacing, &c.PlantSpacing, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan crop type: %w", err)
		}
		cropTypes = append(cropTypes, &c)
	}
	return cropTypes, rows.Err()
}

func (r *PostgresCropTypeRepository) Update(ctx context.Context, c *CropType) error {
	query := `
		UPDATE crop_types
		SET name = $2, description = $3, sowing_density_per_ha = $4,
		    estimated_duration_days = $5, row_spacing = $6, plant_spacing = $7, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		c.ID, c.Name, c.Description, c.SowingDensityPerHa,
		c.EstimatedDurationDays, c.RowSpacing, c.PlantSpacing,
	)
	if err != nil {
		return fmt.Errorf("failed to update crop type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundf("crop type %s", c.ID)
	}
	return nil
}

func (r *PostgresCropTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM crop_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete crop type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundf("crop type %s", id)
	}
	return nil
}

// PostgresStageRepository implements StageRepository using PostgreSQL
type PostgresStageRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresStageRepository creates a new PostgreSQL-backed stage repository
func NewPostgresStageRepository(pool *pgxpool.Pool) *PostgresStageRepository {
	return &PostgresStageRepository{pool: pool}
}

func (r *PostgresStageRepository) Create(ctx context.Context, s *Stage) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	query := `
		INSERT INTO stages (id, user_id, name, description, duration_days)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query, s.ID, s.UserID, s.Name, s.Description, s.DurationDays)
	if err != nil {
		return fmt.Errorf("failed to create stage: %w", err)
	}
	return nil
}

func (r *PostgresStageRepository) GetByID(ctx context.Context, id uuid.UUID) (*Stage, error) {
	query := `
		SELECT id, user_id, name, description, duration_days, created_at, updated_at
		FROM stages WHERE id = $1
	`

	var s Stage
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.Name, &s.Description, &s.DurationDays, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NotFoundf("stage %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stage: %w", err)
	}
	return &s, nil
}

func (r *PostgresStageRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Stage, error) {
	query := `
		SELECT id, user_id, name, description, duration_days, created_at, updated_at
		FROM stages WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}
	defer rows.Close()

	var stages []*Stage
	for rows.Next() {
		var s Stage
		err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Description, &s.DurationDays, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage: %w", err)
		}
		stages = append(stages, &s)
	}
	return stages, rows.Err()
}

func (r *PostgresStageRepository) Update(ctx context.Context, s *Stage) error {
	query := `
		UPDATE stages
		SET name = $2, description = $3, duration_days = $4, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, s.ID, s.Name, s.Description, s.DurationDays)
	if err != nil {
		return fmt.Errorf("failed to update stage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundf("stage %s", s.ID)
	}
	return nil
}

func (r *PostgresStageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM stages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete stage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundf("stage %s", id)
	}
	return nil
}
