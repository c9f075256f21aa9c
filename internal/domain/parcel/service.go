package parcel

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/agroplan/internal/common"
)

// CreateInput carries the fields accepted on parcel creation
type CreateInput struct {
	Name        string
	Location    *string
	Area        decimal.Decimal
	AreaUnit    string
	Description *string
}

// UpdateInput carries the optional fields accepted on parcel update
type UpdateInput struct {
	Name        *string
	Location    *string
	Area        *decimal.Decimal
	AreaUnit    *string
	Description *string
}

// Service handles parcel business logic
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new parcel service
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create registers a new parcel for the acting user
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (*Parcel, error) {
	if in.Name == "" {
		return nil, common.Invalidf("parcel name is required")
	}
	if !in.Area.IsPositive() {
		return nil, common.Invalidf("parcel area must be greater than zero")
	}
	unit, err := ParseAreaUnit(in.AreaUnit)
	if err != nil {
		return nil, err
	}

	p := &Parcel{
		UserID:      userID,
		Name:        in.Name,
		Location:    in.Location,
		Area:        in.Area,
		AreaUnit:    unit,
		Description: in.Description,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("parcel created", slog.String("user_id", userID.String()), slog.String("parcel_id", p.ID.String()))
	return p, nil
}

// Get retrieves a parcel with ownership check
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Parcel, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := common.RequireOwner(p, userID); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns all parcels owned by the acting user
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Parcel, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Update edits a parcel with ownership check
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, in UpdateInput) (*Parcel, error) {
	p, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, common.Invalidf("parcel name is required")
		}
		p.Name = *in.Name
	}
	if in.Location != nil {
		p.Location = in.Location
	}
	if in.Area != nil {
		if !in.Area.IsPositive() {
			return nil, common.Invalidf("parcel area must be greater than zero")
		}
		p.Area = *in.Area
	}
	if in.AreaUnit != nil {
		unit, err := ParseAreaUnit(*in.AreaUnit)
		if err != nil {
			return nil, err
		}
		p.AreaUnit = unit
	}
	if in.Description != nil {
		p.Description = in.Description
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a parcel with ownership check; dependent plannings cascade
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
