package tracking

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/agroplan/internal/common"
	planningrepo "github.com/FACorreiaa/agroplan/internal/domain/planning/repository"
)

// CreateSowingInput carries the fields accepted when recording a sowing
type CreateSowingInput struct {
	PlanningID uuid.UUID
	ActualDate time.Time
	Notes      *string
}

// CreateStageLogInput carries the fields accepted when opening a stage log
type CreateStageLogInput struct {
	PlanningID  uuid.UUID
	StageID     uuid.UUID
	ActualStart *time.Time
	ActualEnd   *time.Time
	Status      string
	Notes       *string
}

// UpdateStageLogInput carries the optional fields for editing a stage log.
// Nil fields are left unchanged.
type UpdateStageLogInput struct {
	ActualStart *time.Time
	ActualEnd   *time.Time
	Status      *string
	Notes       *string
}

// Service handles sowing and stage-log business logic. Both record types hang
// off a planning, so authorization always resolves through the parent.
type Service struct {
	repo      Repository
	plannings planningrepo.PlanningRepository
	logger    *slog.Logger
}

// NewService creates a new tracking service
func NewService(repo Repository, plannings planningrepo.PlanningRepository, logger *slog.Logger) *Service {
	return &Service{repo: repo, plannings: plannings, logger: logger}
}

// resolvePlanning loads a planning and checks the caller owns it
func (s *Service) resolvePlanning(ctx context.Context, planningID, userID uuid.UUID) (*planningrepo.Planning, error) {
	p, err := s.plannings.GetByID(ctx, planningID)
	if err != nil {
		return nil, err
	}
	if err := common.RequireOwner(p, userID); err != nil {
		return nil, err
	}
	return p, nil
}

// RecordSowing records an actual sowing event under a planning
func (s *Service) RecordSowing(ctx context.Context, userID uuid.UUID, in CreateSowingInput) (*Sowing, error) {
	if _, err := s.resolvePlanning(ctx, in.PlanningID, userID); err != nil {
		return nil, err
	}

	actualDate := in.ActualDate
	if actualDate.IsZero() {
		actualDate = time.Now().UTC().Truncate(24 * time.Hour)
	}

	sw := &Sowing{
		PlanningID: in.PlanningID,
		ActualDate: actualDate,
		Notes:      in.Notes,
	}
	if err := s.repo.CreateSowing(ctx, sw); err != nil {
		return nil, err
	}

	s.logger.Info("sowing recorded",
		slog.String("sowing_id", sw.ID.String()),
		slog.String("planning_id", sw.PlanningID.String()))
	return sw, nil
}

// GetSowing retrieves a sowing the caller owns
func (s *Service) GetSowing(ctx context.Context, id, userID uuid.UUID) (*Sowing, error) {
	sw, err := s.repo.GetSowingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.resolvePlanning(ctx, sw.PlanningID, userID); err != nil {
		return nil, err
	}
	return sw, nil
}

// ListSowings lists the sowings recorded under a planning
func (s *Service) ListSowings(ctx context.Context, planningID, userID uuid.UUID) ([]*Sowing, error) {
	if _, err := s.resolvePlanning(ctx, planningID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListSowingsByPlanning(ctx, planningID)
}

// UpdateSowing edits a sowing's date or notes
func (s *Service) UpdateSowing(ctx context.Context, id, userID uuid.UUID, actualDate *time.Time, notes *string) (*Sowing, error) {
	sw, err := s.GetSowing(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if actualDate != nil {
		sw.ActualDate = *actualDate
	}
	if notes != nil {
		sw.Notes = notes
	}

	if err := s.repo.UpdateSowing(ctx, sw); err != nil {
		return nil, err
	}
	return sw, nil
}

// DeleteSowing removes a sowing record
func (s *Service) DeleteSowing(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := s.GetSowing(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.DeleteSowing(ctx, id)
}

// OpenStageLog opens a stage log under a planning
func (s *Service) OpenStageLog(ctx context.Context, userID uuid.UUID, in CreateStageLogInput) (*StageLog, error) {
	if _, err := s.resolvePlanning(ctx, in.PlanningID, userID); err != nil {
		return nil, err
	}

	status := StageLogPending
	if in.Status != "" {
		parsed, ok := ParseStageLogStatus(in.Status)
		if !ok {
			return nil, common.Invalidf("invalid stage log status %q", in.Status)
		}
		status = parsed
	}
	if in.ActualStart != nil && in.ActualEnd != nil && in.ActualEnd.Before(*in.ActualStart) {
		return nil, common.Invalidf("stage end cannot precede its start")
	}

	l := &StageLog{
		PlanningID:  in.PlanningID,
		StageID:     in.StageID,
		ActualStart: in.ActualStart,
		ActualEnd:   in.ActualEnd,
		Status:      status,
		Notes:       in.Notes,
	}
	if err := s.repo.CreateStageLog(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("stage log opened",
		slog.String("stage_log_id", l.ID.String()),
		slog.String("planning_id", l.PlanningID.String()),
		slog.String("status", string(l.Status)))
	return l, nil
}

// GetStageLog retrieves a stage log the caller owns
func (s *Service) GetStageLog(ctx context.Context, id, userID uuid.UUID) (*StageLog, error) {
	l, err := s.repo.GetStageLogByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.resolvePlanning(ctx, l.PlanningID, userID); err != nil {
		return nil, err
	}
	return l, nil
}

// ListStageLogs lists the stage logs under a planning
func (s *Service) ListStageLogs(ctx context.Context, planningID, userID uuid.UUID) ([]*StageLog, error) {
	if _, err := s.resolvePlanning(ctx, planningID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListStageLogsByPlanning(ctx, planningID)
}

// UpdateStageLog edits a stage log's progress
func (s *Service) UpdateStageLog(ctx context.Context, id, userID uuid.UUID, in UpdateStageLogInput) (*StageLog, error) {
	l, err := s.GetStageLog(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if in.ActualStart != nil {
		l.ActualStart = in.ActualStart
	}
	if in.ActualEnd != nil {
		l.ActualEnd = in.ActualEnd
	}
	if in.Status != nil {
		parsed, ok := ParseStageLogStatus(*in.Status)
		if !ok {
			return nil, common.Invalidf("invalid stage log status %q", *in.Status)
		}
		l.Status = parsed
	}
	if in.Notes != nil {
		l.Notes = in.Notes
	}
	if l.ActualStart != nil && l.ActualEnd != nil && l.ActualEnd.Before(*l.ActualStart) {
		return nil, common.Invalidf("stage end cannot precede its start")
	}

	if err := s.repo.UpdateStageLog(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// DeleteStageLog removes a stage log
func (s *Service) DeleteStageLog(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := s.GetStageLog(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.DeleteStageLog(ctx, id)
}
