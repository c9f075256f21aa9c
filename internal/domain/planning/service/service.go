// Package service implements the planning calculation and aggregate cost
// engine: seed-count derivation, planning lifecycle, and line-item cost
// aggregation.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/FACorreiaa/agroplan/internal/common"
	"github.com/FACorreiaa/agroplan/internal/domain/crop"
	"github.com/FACorreiaa/agroplan/internal/domain/input"
	"github.com/FACorreiaa/agroplan/internal/domain/parcel"
	"github.com/FACorreiaa/agroplan/internal/domain/planning/repository"
)

var tracer = otel.Tracer("agroplan/planning")

// CreatePlanningInput carries the fields accepted on planning creation
type CreatePlanningInput struct {
	ParcelID         uuid.UUID
	CropTypeID       uuid.UUID
	StageID          uuid.UUID
	Name             string
	StartDate        time.Time
	EstimatedEndDate *time.Time
	Description      *string
	State            *string
}

// UpdatePlanningInput carries the optional fields accepted on planning update
type UpdatePlanningInput struct {
	ParcelID         *uuid.UUID
	CropTypeID       *uuid.UUID
	StageID          *uuid.UUID
	Name             *string
	StartDate        *time.Time
	EstimatedEndDate *time.Time
	Description      *string
	State            *string
}

// PlanningService orchestrates planning lifecycle: reference resolution,
// seed-count derivation and persistence
type PlanningService struct {
	plannings repository.PlanningRepository
	lineItems repository.LineItemRepository
	parcels   parcel.Repository
	cropTypes crop.CropTypeRepository
	stages    crop.StageRepository
	inputs    input.Repository
	logger    *slog.Logger
}

// NewPlanningService creates a new planning service
func NewPlanningService(
	plannings repository.PlanningRepository,
	lineItems repository.LineItemRepository,
	parcels parcel.Repository,
	cropTypes crop.CropTypeRepository,
	stages crop.StageRepository,
	inputs input.Repository,
	logger *slog.Logger,
) *PlanningService {
	return &PlanningService{
		plannings: plannings,
		lineItems: lineItems,
		parcels:   parcels,
		cropTypes: cropTypes,
		stages:    stages,
		inputs:    inputs,
		logger:    logger,
	}
}

// resolveParcel loads a parcel reference and verifies its owner
func (s *PlanningService) resolveParcel(ctx context.Context, userID, id uuid.UUID) (*parcel.Parcel, error) {
	p, err := s.parcels.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := common.RequireOwner(p, userID); err != nil {
		return nil, err
	}
	return p, nil
}

// resolveCropType loads a crop type reference and verifies its owner
func (s *PlanningService) resolveCropType(ctx context.Context, userID, id uuid.UUID) (*crop.CropType, error) {
	c, err := s.cropTypes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := common.RequireOwner(c, userID); err != nil {
		return nil, err
	}
	return c, nil
}

// resolveStage loads a stage reference and verifies its owner
func (s *PlanningService) resolveStage(ctx context.Context, userID, id uuid.UUID) (*crop.Stage, error) {
	st, err := s.stages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := common.RequireOwner(st, userID); err != nil {
		return nil, err
	}
	return st, nil
}

// Create registers a new planning. Every cross-entity reference must resolve
// to a record owned by the acting user, and the seed count is derived from
// the parcel area and crop spacing before the first persist.
func (s *PlanningService) Create(ctx context.Context, userID uuid.UUID, in CreatePlanningInput) (*repository.Planning, error) {
	ctx, span := tracer.Start(ctx, "planning.Create")
	defer span.End()

	if in.Name == "" {
		return nil, common.Invalidf("planning name is required")
	}
	if in.StartDate.IsZero() {
		return nil, common.Invalidf("planning start date is required")
	}

	p, err := s.resolveParcel(ctx, userID, in.ParcelID)
	if err != nil {
		return nil, err
	}
	c, err := s.resolveCropType(ctx, userID, in.CropTypeID)
	if err != nil {
		return nil, err
	}
	if _, err := s.resolveStage(ctx, userID, in.StageID); err != nil {
		return nil, err
	}

	seedCount, err := ComputeSeedCount(p, c)
	if err != nil {
		return nil, err
	}

	state := repository.StatePending
	if in.State != nil {
		parsed, ok := repository.ParseState(*in.State)
		if !ok {
			return nil, common.Invalidf("unknown planning state %q", *in.State)
		}
		state = parsed
	}

	planning := &repository.Planning{
		UserID:           userID,
		ParcelID:         in.ParcelID,
		CropTypeID:       in.CropTypeID,
		StageID:          in.StageID,
		Name:             in.Name,
		StartDate:        in.StartDate,
		EstimatedEndDate: in.EstimatedEndDate,
		SeedCount:        seedCount,
		EstimatedCost:    decimal.Zero,
		Description:      in.Description,
		State:            state,
	}
	if err := s.plannings.Create(ctx, planning); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("planning.id", planning.ID.String()))
	s.logger.Info("planning created",
		slog.String("user_id", userID.String()),
		slog.String("planning_id", planning.ID.String()),
		slog.String("seed_count", seedCount.String()),
	)
	return planning, nil
}

// Get retrieves a planning with ownership check
func (s *PlanningService) Get(ctx context.Context, userID, id uuid.UUID) (*repository.Planning, error) {
	planning, err := s.plannings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := common.RequireOwner(planning, userID); err != nil {
		return nil, err
	}
	return planning, nil
}

// List returns all plannings owned by the acting user
func (s *PlanningService) List(ctx context.Context, userID uuid.UUID) ([]*repository.Planning, error) {
	return s.plannings.ListByUser(ctx, userID)
}

// Update edits a planning. When the parcel or crop type reference changes the
// seed count is recomputed; re-saving with unchanged references derives the
// identical count.
func (s *PlanningService) Update(ctx context.Context, userID, id uuid.UUID, in UpdatePlanningInput) (*repository.Planning, error) {
	ctx, span := tracer.Start(ctx, "planning.Update")
	defer span.End()

	planning, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.ParcelID != nil {
		planning.ParcelID = *in.ParcelID
	}
	if in.CropTypeID != nil {
		planning.CropTypeID = *in.CropTypeID
	}
	if in.StageID != nil {
		if _, err := s.resolveStage(ctx, userID, *in.StageID); err != nil {
			return nil, err
		}
		planning.StageID = *in.StageID
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, common.Invalidf("planning name is required")
		}
		planning.Name = *in.Name
	}
	if in.StartDate != nil {
		planning.StartDate = *in.StartDate
	}
	if in.EstimatedEndDate != nil {
		planning.EstimatedEndDate = in.EstimatedEndDate
	}
	if in.Description != nil {
		planning.Description = in.Description
	}
	if in.State != nil {
		// Any known state value is accepted; transitions are not constrained.
		state, ok := repository.ParseState(*in.State)
		if !ok {
			return nil, common.Invalidf("unknown planning state %q", *in.State)
		}
		planning.State = state
	}

	// The parcel and crop references are re-resolved on every save so that the
	// derived seed count can never drift from its inputs.
	p, err := s.resolveParcel(ctx, userID, planning.ParcelID)
	if err != nil {
		return nil, err
	}
	c, err := s.resolveCropType(ctx, userID, planning.CropTypeID)
	if err != nil {
		return nil, err
	}
	seedCount, err := ComputeSeedCount(p, c)
	if err != nil {
		return nil, err
	}
	planning.SeedCount = seedCount

	if err := s.plannings.Update(ctx, planning); err != nil {
		return nil, err
	}
	return planning, nil
}

// Delete removes a planning with ownership check; its line-items, sowings and
// stage logs are removed by the persistence layer cascade.
func (s *PlanningService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}

	s.logger.Info("planning deleted", slog.String("user_id", userID.String()), slog.String("planning_id", id.String()))
	return s.plannings.Delete(ctx, id)
}
