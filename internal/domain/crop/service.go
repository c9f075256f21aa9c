package crop

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/agroplan/internal/common"
)

// CropTypeInput carries the fields accepted on crop type create/update
type CropTypeInput struct {
	Name                  string
	Description           *string
	SowingDensityPerHa    *decimal.Decimal
	EstimatedDurationDays *int
	RowSpacing            *decimal.Decimal
	PlantSpacing          *decimal.Decimal
}

// StageInput carries the fields accepted on stage create/update
type StageInput struct {
	Name         string
	Description  *string
	DurationDays *int
}

// Service handles crop type and stage business logic
type Service struct {
	cropTypes CropTypeRepository
	stages    StageRepository
	logger    *slog.Logger
}

// NewService creates a new crop service
func NewService(cropTypes CropTypeRepository, stages StageRepository, logger *slog.Logger) *Service {
	return &Service{cropTypes: cropTypes, stages: stages, logger: logger}
}

func validateSpacing(v *decimal.Decimal, field string) error {
	if v != nil && !v.IsPositive() {
		return common.Invalidf("%s must be greater than zero", field)
	}
	return nil
}

// CreateCropType registers a new crop type for the acting user
func (s *Service) CreateCropType(ctx context.Context, userID uuid.UUID, in CropTypeInput) (*CropType, error) {
	if in.Name == "" {
		return nil, common.Invalidf("crop type name is required")
	}
	if err := validateSpacing(in.RowSpacing, "row spacing"); err != nil {
		return nil, err
	}
	if err := validateSpacing(in.PlantSpacing, "plant spacing"); err != nil {
		return nil, err
	}

	c := &CropType{
		UserID:                userID,
		Name:                  in.Name,
		Description:           in.Description,
		SowingDensityPerHa:    in.SowingDensityPerHa,
		EstimatedDurationDays: in.EstimatedDurationDays,
		RowSpacing:            in.RowSpacing,
		PlantSpacing:          in.PlantSpacing,
	}
	if err := s.cropTypes.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetCropType retrieves a crop type with ownership check
func (s *Service) GetCropType(ctx context.Context, userID, id uuid.UUID) (*CropType, error) {
	c, err := s.cropTypes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := common.RequireOwner(c, userID); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCropTypes returns the acting user's crop types
func (s *Service) ListCropTypes(ctx context.Context, userID uuid.UUID) ([]*CropType, error) {
	return s.cropTypes.ListByUser(ctx, userID)
}

// UpdateCropType edits a crop type with ownership check
func (s *Service) UpdateCropType(ctx context.Context, userID, id uuid.UUID, in CropTypeInput) (*CropType, error) {
	c, err := s.GetCropType(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, common.Invalidf("crop type name is required")
	}
	if err := validateSpacing(in.RowSpacing, "row spacing"); err != nil {
		return nil, err
	}
	if err := validateSpacing(in.PlantSpacing, "plant spacing"); err != nil {
		return nil, err
	}

	c.Name = in.Name
	c.Description = in.Description
	c.SowingDensityPerHa = in.SowingDensityPerHa
	c.EstimatedDurationDays = in.EstimatedDurationDays
	c.RowSpacing = in.RowSpacing
	c.PlantSpacing = in.PlantSpacing

	if err := s.cropTypes.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCropType removes a crop type with ownership check
func (s *Service) DeleteCropType(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.GetCropType(ctx, userID, id); err != nil {
		return err
	}
	return s.cropTypes.Delete(ctx, id)
}

// CreateStage registers a new growth stage for the acting user
func (s *Service) CreateStage(ctx context.Context, userID uuid.UUID, in StageInput) (*Stage, error) {
	if in.Name == "" {
		return nil, common.Invalidf("stage name is required")
	}

	st := &Stage{
		UserID:       userID,
		Name:         in.Name,
		Description:  in.Description,
		DurationDays: in.DurationDays,
	}
	if err := s.stages.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// GetStage retrieves a stage with ownership check
func (s *Service) GetStage(ctx context.Context, userID, id uuid.UUID) (*Stage, error) {
	st, err := s.stages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := common.RequireOwner(st, userID); err != nil {
		return nil, err
	}
	return st, nil
}

// ListStages returns the acting user's stages
func (s *Service) ListStages(ctx context.Context, userID uuid.UUID) ([]*Stage, error) {
	return s.stages.ListByUser(ctx, userID)
}

// UpdateStage edits a stage with ownership check
func (s *Service) UpdateStage(ctx context.Context, userID, id uuid.UUID, in StageInput) (*Stage, error) {
	st, err := s.GetStage(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, common.Invalidf("stage name is required")
	}

	st.Name = in.Name
	st.Description = in.Description
	st.DurationDays = in.DurationDays

	if err := s.stages.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// DeleteStage removes a stage with ownership check
func (s *Service) DeleteStage(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.GetStage(ctx, userID, id); err != nil {
		return err
	}
	return s.stages.Delete(ctx, id)
}

func intPtr(v int) *int                         { return &v }
func strPtr(v string) *string                   { return &v }
func decPtr(v decimal.Decimal) *decimal.Decimal { return &v }

// ProvisionDefaults creates the default stages and crop types for a freshly
// registered user. It is invoked exactly once by the registration workflow.
func (s *Service) ProvisionDefaults(ctx context.Context, userID uuid.UUID) error {
	defaultStages := []Stage{
		{Name: "Sowing", Description: strPtr("Start of the cultivation cycle: ground preparation and planting."), DurationDays: intPtr(30)},
		{Name: "Maintenance", Description: strPtr("Ongoing crop care: irrigation, fertilization, pest control."), DurationDays: intPtr(90)},
		{Name: "Harvest", Description: strPtr("Collection of the agricultural yield."), DurationDays: intPtr(15)},
	}
	for i := range defaultStages {
		st := defaultStages[i]
		st.UserID = userID
		if err := s.stages.Create(ctx, &st); err != nil {
			return fmt.Errorf("failed to provision default stage %q: %w", st.Name, err)
		}
	}

	defaultCropTypes := []CropType{
		{
			Name:                  "Coffee",
			Description:           strPtr("Coffee crop, suited to tropical regions."),
			SowingDensityPerHa:    decPtr(decimal.NewFromInt(10000)),
			EstimatedDurationDays: intPtr(365),
			RowSpacing:            decPtr(decimal.RequireFromString("1.5")),
			PlantSpacing:          decPtr(decimal.RequireFromString("1.0")),
		},
		{
			Name:                  "Maize",
			Description:           strPtr("Maize crop, a dietary staple."),
			SowingDensityPerHa:    decPtr(decimal.NewFromInt(80000)),
			EstimatedDurationDays: intPtr(120),
			RowSpacing:            decPtr(decimal.RequireFromString("0.8")),
			PlantSpacing:          decPtr(decimal.RequireFromString("0.3")),
		},
		{
			Name:                  "Cacao",
			Description:           strPtr("Cacao crop for chocolate production."),
			SowingDensityPerHa:    decPtr(decimal.NewFromInt(1000)),
			EstimatedDurationDays: intPtr(182),
			RowSpacing:            decPtr(decimal.RequireFromString("3.0")),
			PlantSpacing:          decPtr(decimal.RequireFromString("3.0")),
		},
	}
	for i := range defaultCropTypes {
		c := defaultCropTypes[i]
		c.UserID = userID
		if err := s.cropTypes.Create(ctx, &c); err != nil {
			return fmt.Errorf("failed to provision default crop type %q: %w", c.Name, err)
		}
	}

	s.logger.Info("provisioned default stages and crop types", slog.String("user_id", userID.String()))
	return nil
}
