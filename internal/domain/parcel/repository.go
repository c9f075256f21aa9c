// Package parcel manages land parcels and their declared areas.
package parcel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/agroplan/internal/common"
)

// AreaUnit is the closed set of supported parcel area units
type AreaUnit string

const (
	UnitSquareMeters AreaUnit = "m2"
	UnitHectares     AreaUnit = "ha"
)

// ParseAreaUnit normalizes a unit spelling. It accepts the legacy
// "hectareas"/"hectares" spellings alongside the canonical short forms.
func ParseAreaUnit(s string) (AreaUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m2", "sqm", "square-meters":
		return UnitSquareMeters, nil
	case "ha", "hectare", "hectares", "hectareas":
		return UnitHectares, nil
	}
	return "", common.Invalidf("unsupported area unit %q", s)
}

// Parcel is a plot of land owned by one user
type Parcel struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	Location    *string
	Area        decimal.Decimal
	AreaUnit    AreaUnit
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnedBy implements common.Owned
func (p *Parcel) OwnedBy() uuid.UUID { return p.UserID }

// Repository defines persistence operations for parcels
type Repository interface {
	Create(ctx context.Context, p *Parcel) error
	GetByID(ctx context.Context, id uuid.UUID) (*Parcel, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Parcel, error)
	Update(ctx context.Context, p *Parcel) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL-backed parcel repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new parcel
func (r *PostgresRepository) Create(ctx context.Context, p *Parcel) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	query := `
		INSERT INTO parcels (id, user_id, name, location, area, area_unit, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query, p.ID, p.UserID, p.Name, p.Location, p.Area, p.AreaUnit, p.Description)
	if err != nil {
		return fmt.Errorf("failed to create parcel: %w", err)
	}
	return nil
}

// GetByID retrieves a parcel by ID
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Parcel, error) {
	query := `
		SELECT id, user_id, name, location, area, area_unit, description, created_at, updated_at
		FROM parcels WHERE id = $1
	`

	var p Parcel
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.UserID, &p.Name, &p.Location, &p.Area, &p.AreaUnit, &p.Description, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NotFoundf("parcel %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get parcel: %w", err)
	}
	return &p, nil
}

// ListByUser lists all parcels owned by a user
func (r *PostgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Parcel, error) {
	query := `
		SELECT id, user_id, name, location, area, area_unit, description, created_at, updated_at
		FROM parcels WHERE user_id = $1
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list parcels: %w", err)
	}
	defer rows.Close()

	var parcels []*Parcel
	for rows.Next() {
		var p Parcel
		err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Location, &p.Area, &p.AreaUnit, &p.Description, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan parcel: %w", err)
		}
		parcels = append(parcels, &p)
	}
	return parcels, rows.Err()
}

// Update persists parcel field changes
func (r *PostgresRepository) Update(ctx context.Context, p *Parcel) error {
	query := `
		UPDATE parcels
		SET name = $2, location = $3, area = $4, area_unit = $5, description = $6, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, p.ID, p.Name, p.Location, p.Area, p.AreaUnit, p.Description)
	if err != nil {
		return fmt.Errorf("failed to update parcel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundf("parcel %s", p.ID)
	}
	return nil
}

// Delete removes a parcel; dependent plannings cascade at the schema level
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM parcels WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete parcel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundf("parcel %s", id)
	}
	return nil
}
