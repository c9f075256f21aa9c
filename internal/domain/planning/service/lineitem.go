package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/FACorreiaa/agroplan/internal/common"
	"github.com/FACorreiaa/agroplan/internal/domain/input"
	"github.com/FACorreiaa/agroplan/internal/domain/planning/repository"
)

// CostRecorder counts cost recomputations for observability
type CostRecorder interface {
	CostRecomputed()
}

// CreateLineItemInput carries the fields accepted on line-item creation
type CreateLineItemInput struct {
	PlanningID   uuid.UUID
	InputID      uuid.UUID
	Quantity     decimal.Decimal
	RecordedDate *time.Time
	Notes        *string
}

// UpdateLineItemInput carries the optional fields accepted on line-item update
type UpdateLineItemInput struct {
	InputID      *uuid.UUID
	Quantity     *decimal.Decimal
	RecordedDate *time.Time
	Notes        *string
}

// LineItemService orchestrates input line-items under a planning: subtotal
// computation, persistence and cost aggregation
type LineItemService struct {
	lineItems repository.LineItemRepository
	plannings repository.PlanningRepository
	inputs    input.Repository
	recorder  CostRecorder
	logger    *slog.Logger
}

// NewLineItemService creates a new line-item service. recorder may be nil.
func NewLineItemService(
	lineItems repository.LineItemRepository,
	plannings repository.PlanningRepository,
	inputs input.Repository,
	recorder CostRecorder,
	logger *slog.Logger,
) *LineItemService {
	return &LineItemService{
		lineItems: lineItems,
		plannings: plannings,
		inputs:    inputs,
		recorder:  recorder,
		logger:    logger,
	}
}

// subtotal computes quantity × unit price rounded half-up to 2 decimals,
// captured at save time.
func subtotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(2)
}

// resolveInput loads an input reference, verifies its owner and its price
func (s *LineItemService) resolveInput(ctx context.Context, userID, id uuid.UUID) (*input.Input, error) {
	in, err := s.inputs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := common.RequireOwner(in, userID); err != nil {
		return nil, err
	}
	if !in.UnitPrice.IsPositive() {
		return nil, common.Invalidf("input %q has no valid unit price", in.Name)
	}
	return in, nil
}

// resolvePlanning loads the parent planning and verifies its owner
func (s *LineItemService) resolvePlanning(ctx context.Context, userID, id uuid.UUID) (*repository.Planning, error) {
	planning, err := s.plannings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := common.RequireOwner(planning, userID); err != nil {
		return nil, err
	}
	return planning, nil
}

// Create attaches an input line-item to a planning. The write and the cost
// recompute commit in one transaction.
func (s *LineItemService) Create(ctx context.Context, userID uuid.UUID, in CreateLineItemInput) (*repository.LineItem, error) {
	ctx, span := tracer.Start(ctx, "lineitem.Create")
	defer span.End()

	if in.Quantity.IsNegative() {
		return nil, common.Invalidf("quantity must not be negative")
	}

	if _, err := s.resolvePlanning(ctx, userID, in.PlanningID); err != nil {
		return nil, err
	}
	catalogInput, err := s.resolveInput(ctx, userID, in.InputID)
	if err != nil {
		return nil, err
	}

	recordedDate := time.Now().UTC().Truncate(24 * time.Hour)
	if in.RecordedDate != nil {
		recordedDate = *in.RecordedDate
	}

	item := &repository.LineItem{
		PlanningID:   in.PlanningID,
		InputID:      in.InputID,
		Quantity:     in.Quantity,
		Subtotal:     subtotal(in.Quantity, catalogInput.UnitPrice),
		RecordedDate: recordedDate,
		Notes:        in.Notes,
	}

	total, err := s.lineItems.Create(ctx, item)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("planning.id", in.PlanningID.String()))
	s.recordCost(in.PlanningID, total)
	return item, nil
}

// Update edits a line-item. Changing the input reference re-validates the new
// input's ownership and price; the subtotal is always recomputed.
func (s *LineItemService) Update(ctx context.Context, userID, id uuid.UUID, in UpdateLineItemInput) (*repository.LineItem, error) {
	ctx, span := tracer.Start(ctx, "lineitem.Update")
	defer span.End()

	item, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.InputID != nil {
		item.InputID = *in.InputID
	}
	if in.Quantity != nil {
		if in.Quantity.IsNegative() {
			return nil, common.Invalidf("quantity must not be negative")
		}
		item.Quantity = *in.Quantity
	}
	if in.RecordedDate != nil {
		item.RecordedDate = *in.RecordedDate
	}
	if in.Notes != nil {
		item.Notes = in.Notes
	}

	catalogInput, err := s.resolveInput(ctx, userID, item.InputID)
	if err != nil {
		return nil, err
	}
	item.Subtotal = subtotal(item.Quantity, catalogInput.UnitPrice)

	total, err := s.lineItems.Update(ctx, item)
	if err != nil {
		return nil, err
	}
	s.recordCost(item.PlanningID, total)
	return item, nil
}

// Delete removes a line-item. The parent planning reference is captured
// before deletion so the cost recompute does not depend on the deleted row.
func (s *LineItemService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "lineitem.Delete")
	defer span.End()

	item, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return err
	}
	planningID := item.PlanningID

	total, err := s.lineItems.Delete(ctx, id, planningID)
	if err != nil {
		return err
	}
	s.recordCost(planningID, total)
	return nil
}

// ListByPlanning returns the line-items of a planning owned by the acting user
func (s *LineItemService) ListByPlanning(ctx context.Context, userID, planningID uuid.UUID) ([]*repository.LineItem, error) {
	if _, err := s.resolvePlanning(ctx, userID, planningID); err != nil {
		return nil, err
	}
	return s.lineItems.ListByPlanning(ctx, planningID)
}

// Recalculate rewrites a planning's estimated cost from the current sum of
// its line-item subtotals and returns the new total. Write paths already
// recompute transactionally; this repairs out-of-band edits.
func (s *LineItemService) Recalculate(ctx context.Context, userID, planningID uuid.UUID) (decimal.Decimal, error) {
	ctx, span := tracer.Start(ctx, "lineitem.Recalculate")
	defer span.End()

	if _, err := s.resolvePlanning(ctx, userID, planningID); err != nil {
		return decimal.Zero, err
	}

	total, err := s.plannings.RecalculateCost(ctx, planningID)
	if err != nil {
		return decimal.Zero, err
	}
	s.recordCost(planningID, total)
	return total, nil
}

// getOwned loads a line-item and authorizes it through its parent planning
func (s *LineItemService) getOwned(ctx context.Context, userID, id uuid.UUID) (*repository.LineItem, error) {
	item, err := s.lineItems.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.resolvePlanning(ctx, userID, item.PlanningID); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *LineItemService) recordCost(planningID uuid.UUID, total decimal.Decimal) {
	if s.recorder != nil {
		s.recorder.CostRecomputed()
	}
	s.logger.Info("planning cost recomputed",
		slog.String("planning_id", planningID.String()),
		slog.String("estimated_cost", total.String()),
	)
}
