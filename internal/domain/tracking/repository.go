// Package tracking records what actually happened on the ground: sowing
// events and per-stage progress under a planning.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FACorreiaa/agroplan/internal/common"
)

// Sowing is one actual sowing event recorded against a planning
type Sowing struct {
	ID         uuid.UUID
	PlanningID uuid.UUID
	ActualDate time.Time
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// StageLogStatus tracks a stage log's progress
type StageLogStatus string

const (
	StageLogPending    StageLogStatus = "pending"
	StageLogInProgress StageLogStatus = "in_progress"
	StageLogCompleted  StageLogStatus = "completed"
)

// ParseStageLogStatus validates a status value against the closed set
func ParseStageLogStatus(s string) (StageLogStatus, bool) {
	switch StageLogStatus(s) {
	case StageLogPending, StageLogInProgress, StageLogCompleted:
		return StageLogStatus(s), true
	}
	return "", false
}

// StageLog tracks the actual start/end of one growth stage within a planning
type StageLog struct {
	ID          uuid.UUID
	PlanningID  uuid.UUID
	StageID     uuid.UUID
	ActualStart *time.Time
	ActualEnd   *time.Time
	Status      StageLogStatus
	Notes       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Repository defines persistence operations for sowings and stage logs
type Repository interface {
	CreateSowing(ctx context.Context, s *Sowing) error
	GetSowingByID(ctx context.Context, id uuid.UUID) (*Sowing, error)
	ListSowingsByPlanning(ctx context.Context, planningID uuid.UUID) ([]*Sowing, error)
	UpdateSowing(ctx context.Context, s *Sowing) error
	DeleteSowing(ctx context.Context, id uuid.UUID) error

	CreateStageLog(ctx context.Context, l *StageLog) error
	GetStageLogByID(ctx context.Context, id uuid.UUID) (*StageLog, error)
	ListStageLogsByPlanning(ctx context.Context, planningID uuid.UUID) ([]*StageLog, error)
	UpdateStageLog(ctx context.Context, l *StageLog) error
	DeleteStageLog(ctx context.Context, id uuid.UUID) error
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL-backed tracking repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) CreateSowing(ctx context.Context, s *Sowing) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	query := `
		INSERT INTO sowings (id, planning_id, actual_date, notes)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query, s.ID, s.PlanningID, s.ActualDate, s.Notes)
	if err != nil {
		return fmt.Errorf("failed to create sowing: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetSowingByID(ctx context.Context, id uuid.UUID) (*Sowing, error) {
	query := `
		SELECT id, planning_id, actual_date, notes, created_at, updated_at
		FROM sowings WHERE id = $1
	`

	var s Sowing
	err := r.pool.QueryRow(ctx, query, id).Scan(&s.ID, &s.PlanningID, &s.ActualDate, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NotFoundf("sowing %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sowing: %w", err)
	}
	return &s, nil
}

func (r *PostgresRepository) ListSowingsByPlanning(ctx context.Context, planningID uuid.UUID) ([]*Sowing, error) {
	query := `
		SELECT id, planning_id, actual_date, notes, created_at, updated_at
		FROM sowings WHERE planning_id = $1
		ORDER BY actual_date
	`

	rows, err := r.pool.Query(ctx, query, planningID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sowings: %w", err)
	}
	defer rows.Close()

	var sowings []*Sowing
	for rows.Next() {
		var s Sowing
		if err := rows.Scan(&s.ID, &s.PlanningID, &s.ActualDate, &s.Notes, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sowing: %w", err)
		}
		sowings = append(sowings, &s)
	}
	return sowings, rows.Err()
}

func (r *PostgresRepository) UpdateSowing(ctx context.Context, s *Sowing) error {
	query := `
		UPDATE sowings SET actual_date = $2, notes = $3, updated_at = NOW() WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, s.ID, s.ActualDate, s.Notes)
	if err != nil {
		return fmt.Errorf("failed to update sowing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundf("sowing %s", s.ID)
	}
	return nil
}

func (r *PostgresRepository) DeleteSowing(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sowings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sowing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundf("sowing %s", id)
	}
	return nil
}

func (r *PostgresRepository) CreateStageLog(ctx context.Context, l *StageLog) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}

	query := `
		INSERT INTO stage_logs (id, planning_id, stage_id, actual_start, actual_end, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query, l.ID, l.PlanningID, l.StageID, l.ActualStart, l.ActualEnd, l.Status, l.Notes)
	if err != nil {
		return fmt.Errorf("failed to create stage log: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetStageLogByID(ctx context.Context, id uuid.UUID) (*StageLog, error) {
	query := `
		SELECT id, planning_id, stage_id, actual_start, actual_end, status, notes, created_at, updated_at
		FROM stage_logs WHERE id = $1
	`

	var l StageLog
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&l.ID, &l.PlanningID, &l.StageID, &l.ActualStart, &l.ActualEnd, &l.Status, &l.Notes, &l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NotFoundf("stage log %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stage log: %w", err)
	}
	return &l, nil
}

func (r *PostgresRepository) ListStageLogsByPlanning(ctx context.Context, planningID uuid.UUID) ([]*StageLog, error) {
	query := `
		SELECT id, planning_id, stage_id, actual_start, actual_end, status, notes, created_at, updated_at
		FROM stage_logs WHERE planning_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, planningID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stage logs: %w", err)
	}
	defer rows.Close()

	var logs []*StageLog
	for rows.Next() {
		var l StageLog
		err := rows.Scan(&l.ID, &l.PlanningID, &l.StageID, &l.ActualStart, &l.ActualEnd, &l.Status, &l.Notes, &l.CreatedAt, &l.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage log: %w", err)
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

func (r *PostgresRepository) UpdateStageLog(ctx context.Context, l *StageLog) error {
	query := `
		UPDATE stage_logs
		SET stage_id = $2, actual_start = $3, actual_end = $4, status = $5, notes = $6, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, l.ID, l.StageID, l.ActualStart, l.ActualEnd, l.Status, l.Notes)
	if err != nil {
		return fmt.Errorf("failed to update stage log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundf("stage log %s", l.ID)
	}
	return nil
}

func (r *PostgresRepository) DeleteStageLog(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM stage_logs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete stage log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundf("stage log %s", id)
	}
	return nil
}
