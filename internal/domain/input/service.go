package input

import (
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/agroplan/internal/common"
)

// CreateInput carries the fields accepted on input creation
type CreateInput struct {
	Name        string
	Kind        string
	Supplier    *string
	Unit        string
	UnitPrice   decimal.Decimal
	Description *string
}

// Service handles input catalog business logic
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new input service
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func validate(name, unit string, kind string, price decimal.Decimal) (Kind, error) {
	if name == "" {
		return "", common.Invalidf("input name is required")
	}
	if unit == "" {
		return "", common.Invalidf("input unit is required")
	}
	k, ok := ParseKind(kind)
	if !ok {
		return "", common.Invalidf("unknown input kind %q", kind)
	}
	if !price.IsPositive() {
		return "", common.Invalidf("unit price must be greater than zero")
	}
	return k, nil
}

// Create registers a new catalog input for the acting user
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (*Input, error) {
	kind, err := validate(in.Name, in.Unit, in.Kind, in.UnitPrice)
	if err != nil {
		return nil, err
	}

	rec := &Input{
		UserID:      userID,
		Name:        in.Name,
		Kind:        kind,
		Supplier:    in.Supplier,
		Unit:        in.Unit,
		UnitPrice:   in.UnitPrice,
		Description: in.Description,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("input created", slog.String("user_id", userID.String()), slog.String("input_id", rec.ID.String()))
	return rec, nil
}

// Get retrieves an input with ownership check
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Input, error) {
	in, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := common.RequireOwner(in, userID); err != nil {
		return nil, err
	}
	return in, nil
}

// List returns the acting user's input catalog
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Input, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Update edits an input with ownership check. Existing line-item subtotals are
// not touched; they keep the price captured at save time.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, in CreateInput) (*Input, error) {
	rec, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	kind, err := validate(in.Name, in.Unit, in.Kind, in.UnitPrice)
	if err != nil {
		return nil, err
	}

	rec.Name = in.Name
	rec.Kind = kind
	rec.Supplier = in.Supplier
	rec.Unit = in.Unit
	rec.UnitPrice = in.UnitPrice
	rec.Description = in.Description

	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes an input with ownership check
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Search ranks the user's catalog against a partial name, best matches first.
// Rank is the Levenshtein distance reported by the fuzzy matcher.
func (s *Service) Search(ctx context.Context, userID uuid.UUID, query string) ([]*Input, error) {
	inputs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return inputs, nil
	}

	names := make([]string, len(inputs))
	for i, in := range inputs {
		names[i] = in.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Sort(ranks)

	matched := make([]*Input, 0, len(ranks))
	for _, r := range ranks {
		matched = append(matched, inputs[r.OriginalIndex])
	}
	return matched, nil
}
