// Package input manages the per-user catalog of agricultural inputs
// (seeds, fertilizers, pesticides, herbicides).
package input

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

// Kind classifies a catalog input
type Kind string

const (
	KindSeeds      Kind = "seeds"
	KindFertilizer Kind = "fertilizer"
	KindPesticide  Kind = "pesticide"
	KindHerbicide  Kind = "herbicide"
)

// ParseKind validates an input kind against the closed set
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindSeeds, KindFertilizer, KindPesticide, KindHerbicide:
		return Kind(s), true
	}
	return "", false
}

// SuggestedUnits are the unit spellings offered to the UI. The unit field
// itself is free text.
var SuggestedUnits = []string{"kg", "g", "l", "ml", "unit", "m2", "m3", "sack", "bottle", "drum", "bale"}

// Input is a priced catalog item owned by one user
type Input struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	Kind        Kind
	Supplier    *string
	Unit        string
	UnitPrice   decimal.Decimal
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnedBy implements common.Owned
func (i *Input) OwnedBy() uuid.UUID { return i.UserID }

// Repository defines persistence operations for inputs
type Repository interface {
	Create(ctx context.Context, in *Input) error
	GetByID(ctx context.Context, id uuid.UUID) (*Input, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Input, error)
	Update(ctx context.Context, in *Input) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL-backed input repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, in *Input) error {
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}

	query := `
		INSERT INTO inputs (id, user_id, name, kind, supplier, unit, unit_price, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		in.ID, in.UserID, in.Name, in.Kind, in.Supplier, in.Unit, in.UnitPrice, in.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to create input: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Input, error) {
	query := `
		SELECT id, user_id, name, kind, supplier, unit, unit_price, description, created_at, updated_at
		FROM inputs WHERE id = $1
	`

	var in Input
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&in.ID, &in.UserID, &in.Name, &in.Kind, &in.Supplier, &in.Unit,
		&in.UnitPrice, &in.Description, &in.CreatedAt, &in.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NotFoundf("input %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get input: %w", err)
	}
	return &in, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Input, error) {
	query := `
		SELECT id, user_id, name, kind, supplier, unit, unit_price, description, created_at, updated_at
		FROM inputs WHERE user_id = $1
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inputs: %w", err)
	}
	defer rows.Close()

	var inputs []*Input
	for rows.Next() {
		var in Input
		err := rows.Scan(
			&in.ID, &in.UserID, &in.Name, &in.Kind, &in.Supplier, &in.Unit,
			&in.UnitPrice, &in.Description, &in.CreatedAt, &in.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan input: %w", err)
		}
		inputs = append(inputs, &in)
	}
	return inputs, rows.Err()
}

func (r *PostgresRepository) Update(ctx context.Context, in *Input) error {
	query := `
		UPDATE inputs
		SET name = $2, kind = $3, supplier = $4, unit = $5, unit_price = $6, description = $7, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, in.ID, in.Name, in.Kind, in.Supplier, in.Unit, in.UnitPrice, in.Description)
	if err != nil {
		return fmt.Errorf("failed to update input: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundf("input %s", in.ID)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM inputs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete input: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundf("input %s", id)
	}
	return nil
}
