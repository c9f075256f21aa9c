package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/agroplan/internal/common"
)

// DB is the subset of pgxpool.Pool the repositories depend on
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresPlanningRepository implements PlanningRepository using PostgreSQL
type PostgresPlanningRepository struct {
	pool DB
}

// NewPostgresPlanningRepository creates a new PostgreSQL-backed planning repository
func NewPostgresPlanningRepository(pool DB) *PostgresPlanningRepository {
	return &PostgresPlanningRepository{pool: pool}
}

// recalculateCostSQL rewrites estimated_cost from the live sum of subtotals.
// A single statement, so concurrent line-item writers cannot produce a lost
// update on the running total.
const recalculateCostSQL = `
	UPDATE plannings
	SET estimated_cost = COALESCE(
		(SELECT ROUND(SUM(subtotal), 2) FROM planning_inputs WHERE planning_id = $1), 0),
	    updated_at = NOW()
	WHERE id = $1
	RETURNING estimated_cost
`

// Create inserts a new planning
func (r *PostgresPlanningRepository) Create(ctx context.Context, p *Planning) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	query := `
		INSERT INTO plannings (
			id, user_id, parcel_id, crop_type_id, stage_id, name,
			start_date, estimated_end_date, seed_count, estimated_cost, description, state
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.UserID, p.ParcelID, p.CropTypeID, p.StageID, p.Name,
		p.StartDate, p.EstimatedEndDate, p.SeedCount, p.EstimatedCost, p.Description, p.State,
	)
	if err != nil {
		return fmt.Errorf("failed to create planning: %w", err)
	}
	return nil
}

// GetByID retrieves a planning by ID
func (r *PostgresPlanningRepository) GetByID(ctx context.Context, id uuid.UUID) (*Planning, error) {
	query := `
		SELECT id, user_id, parcel_id, crop_type_id, stage_id, name,
		       start_date, estimated_end_date, seed_count, estimated_cost,
		       description, state, created_at, updated_at
		FROM plannings WHERE id = $1
	`

	var p Planning
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.UserID, &p.ParcelID, &p.CropTypeID, &p.StageID, &p.Name,
		&p.StartDate, &p.EstimatedEndDate, &p.SeedCount, &p.EstimatedCost,
		&p.Description, &p.State, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NotFoundf("planning %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get planning: %w", err)
	}
	return &p, nil
}

// ListByUser lists all plannings owned by a user
func (r *PostgresPlanningRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Planning, error) {
	query := `
		SELECT id, user_id, parcel_id, crop_type_id, stage_id, name,
		       start_date, estimated_end_date, seed_count, estimated_cost,
		       description, state, created_at, updated_at
		FROM plannings WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plannings: %w", err)
	}
	defer rows.Close()

	var plannings []*Planning
	for rows.Next() {
		var p Planning
		err := rows.Scan(
			&p.ID, &p.UserID, &p.ParcelID, &p.CropTypeID, &p.StageID, &p.Name,
			&p.StartDate, &p.EstimatedEndDate, &p.SeedCount, &p.EstimatedCost,
			&p.Description, &p.State, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan planning: %w", err)
		}
		plannings = append(plannings, &p)
	}
	return plannings, rows.Err()
}

// Update persists planning field changes
func (r *PostgresPlanningRepository) Update(ctx context.Context, p *Planning) error {
	query := `
		UPDATE plannings
		SET parcel_id = $2, crop_type_id = $3, stage_id = $4, name = $5,
		    start_date = $6, estimated_end_date = $7, seed_count = $8,
		    description = $9, state = $10, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		p.ID, p.ParcelID, p.CropTypeID, p.StageID, p.Name,
		p.StartDate, p.EstimatedEndDate, p.SeedCount, p.Description, p.State,
	)
	if err != nil {
		return fmt.Errorf("failed to update planning: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundf("planning %s", p.ID)
	}
	return nil
}

// Delete removes a planning; line-items, sowings and stage logs cascade
func (r *PostgresPlanningRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM plannings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete planning: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundf("planning %s", id)
	}
	return nil
}

// RecalculateCost rewrites estimated_cost from the current line-items
func (r *PostgresPlanningRepository) RecalculateCost(ctx context.Context, planningID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, recalculateCostSQL, planningID).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("planning %s vanished during cost recompute: %w", planningID, common.ErrInconsistentState)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to recalculate cost: %w", err)
	}
	return total, nil
}

// PostgresLineItemRepository implements LineItemRepository using PostgreSQL
type PostgresLineItemRepository struct {
	pool DB
}

// NewPostgresLineItemRepository creates a new PostgreSQL-backed line-item repository
func NewPostgresLineItemRepository(pool DB) *PostgresLineItemRepository {
	return &PostgresLineItemRepository{pool: pool}
}

// Create inserts a line-item and recomputes the parent planning's cost in the
// same transaction
func (r *PostgresLineItemRepository) Create(ctx context.Context, item *LineItem) (decimal.Decimal, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO planning_inputs (id, planning_id, input_id, quantity, subtotal, recorded_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.Exec(ctx, query,
		item.ID, item.PlanningID, item.InputID, item.Quantity, item.Subtotal, item.RecordedDate, item.Notes,
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to create line-item: %w", err)
	}

	total, err := recalculateInTx(ctx, tx, item.PlanningID)
	if err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("failed to commit line-item create: %w", err)
	}
	return total, nil
}

// Update rewrites a line-item and recomputes the parent planning's cost in the
// same transaction
func (r *PostgresLineItemRepository) Update(ctx context.Context, item *LineItem) (decimal.Decimal, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE planning_inputs
		SET input_id = $2, quantity = $3, subtotal = $4, recorded_date = $5, notes = $6, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := tx.Exec(ctx, query,
		item.ID, item.InputID, item.Quantity, item.Subtotal, item.RecordedDate, item.Notes,
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to update line-item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return decimal.Zero, common.NotFoundf("line-item %s", item.ID)
	}

	total, err := recalculateInTx(ctx, tx, item.PlanningID)
	if err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("failed to commit line-item update: %w", err)
	}
	return total, nil
}

// Delete removes a line-item and recomputes the parent planning's cost in the
// same transaction. The planning id is captured by the caller before deletion.
func (r *PostgresLineItemRepository) Delete(ctx context.Context, id, planningID uuid.UUID) (decimal.Decimal, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM planning_inputs WHERE id = $1`, id)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to delete line-item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return decimal.Zero, common.NotFoundf("line-item %s", id)
	}

	total, err := recalculateInTx(ctx, tx, planningID)
	if err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("failed to commit line-item delete: %w", err)
	}
	return total, nil
}

// GetByID retrieves a line-item by ID
func (r *PostgresLineItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*LineItem, error) {
	query := `
		SELECT id, planning_id, input_id, quantity, subtotal, recorded_date, notes, created_at, updated_at
		FROM planning_inputs WHERE id = $1
	`

	var item LineItem
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&item.ID, &item.PlanningID, &item.InputID, &item.Quantity, &item.Subtotal,
		&item.RecordedDate, &item.Notes, &item.CreatedAt, &item.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NotFoundf("line-item %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get line-item: %w", err)
	}
	return &item, nil
}

// ListByPlanning lists all line-items attached to a planning
func (r *PostgresLineItemRepository) ListByPlanning(ctx context.Context, planningID uuid.UUID) ([]*LineItem, error) {
	query := `
		SELECT id, planning_id, input_id, quantity, subtotal, recorded_date, notes, created_at, updated_at
		FROM planning_inputs WHERE planning_id = $1
		ORDER BY recorded_date, created_at
	`

	rows, err := r.pool.Query(ctx, query, planningID)
	if err != nil {
		return nil, fmt.Errorf("failed to list line-items: %w", err)
	}
	defer rows.Close()

	var items []*LineItem
	for rows.Next() {
		var item LineItem
		err := rows.Scan(
			&item.ID, &item.PlanningID, &item.InputID, &item.Quantity, &item.Subtotal,
			&item.RecordedDate, &item.Notes, &item.CreatedAt, &item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line-item: %w", err)
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

func recalculateInTx(ctx context.Context, tx pgx.Tx, planningID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := tx.QueryRow(ctx, recalculateCostSQL, planningID).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("planning %s vanished during cost recompute: %w", planningID, common.ErrInconsistentState)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to recalculate cost: %w", err)
	}
	return total, nil
}
