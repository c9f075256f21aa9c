// Package repository provides persistence for plannings and their input
// line-items.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// State represents the lifecycle state of a planning
type State string

const (
	StatePending    State = "pending"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

// ParseState validates a state value against the closed set
func ParseState(s string) (State, bool) {
	switch State(s) {
	case StatePending, StateInProgress, StateCompleted:
		return State(s), true
	}
	return "", false
}

// Planning links one parcel, one crop type and one growth stage into an
// intended cultivation cycle. SeedCount and EstimatedCost are derived fields.
type Planning struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	ParcelID         uuid.UUID
	CropTypeID       uuid.UUID
	StageID          uuid.UUID
	Name             string
	StartDate        time.Time
	EstimatedEndDate *time.Time
	SeedCount        decimal.Decimal
	EstimatedCost    decimal.Decimal
	Description      *string
	State            State
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OwnedBy implements common.Owned
func (p *Planning) OwnedBy() uuid.UUID { return p.UserID }

// LineItem is one record of an input consumed by a planning. Subtotal is
// captured at save time and is not recomputed when the input price changes.
type LineItem struct {
	ID           uuid.UUID
	PlanningID   uuid.UUID
	InputID      uuid.UUID
	Quantity     decimal.Decimal
	Subtotal     decimal.Decimal
	RecordedDate time.Time
	Notes        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PlanningRepository defines persistence operations for plannings
type PlanningRepository interface {
	Create(ctx context.Context, p *Planning) error
	GetByID(ctx context.Context, id uuid.UUID) (*Planning, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Planning, error)
	Update(ctx context.Context, p *Planning) error
	Delete(ctx context.Context, id uuid.UUID) error

	// RecalculateCost rewrites the planning's estimated cost from the current
	// sum of its line-item subtotals and returns the new total.
	RecalculateCost(ctx context.Context, planningID uuid.UUID) (decimal.Decimal, error)
}

// LineItemRepository defines persistence operations for line-items. Every
// write commits together with the parent planning's cost recompute and
// returns the recomputed total.
type LineItemRepository interface {
	Create(ctx context.Context, item *LineItem) (decimal.Decimal, error)
	Update(ctx context.Context, item *LineItem) (decimal.Decimal, error)
	Delete(ctx context.Context, id, planningID uuid.UUID) (decimal.Decimal, error)
	GetByID(ctx context.Context, id uuid.UUID) (*LineItem, error)
	ListByPlanning(ctx context.Context, planningID uuid.UUID) ([]*LineItem, error)
}
