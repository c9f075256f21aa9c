package input

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/agroplan/internal/common"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeRepository struct {
	inputs map[uuid.UUID]*Input
	order  []uuid.UUID
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{inputs: make(map[uuid.UUID]*Input)}
}

func (f *fakeRepository) Create(ctx context.Context, in *Input) error {
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	cp := *in
	f.inputs[in.ID] = &cp
	f.order = append(f.order, in.ID)
	return nil
}

func (f *fakeRepository) GetByID(ctx context.Context, id uuid.UUID) (*Input, error) {
	in, ok := f.inputs[id]
	if !ok {
		return nil, common.NotFoundf("input %s", id)
	}
	cp := *in
	return &cp, nil
}

func (f *fakeRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Input, error) {
	var out []*Input
	for _, id := range f.order {
		in, ok := f.inputs[id]
		if ok && in.UserID == userID {
			cp := *in
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepository) Update(ctx context.Context, in *Input) error {
	if _, ok := f.inputs[in.ID]; !ok {
		return common.NotFoundf("input %s", in.ID)
	}
	cp := *in
	f.inputs[in.ID] = &cp
	return nil
}

func (f *fakeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.inputs[id]; !ok {
		return common.NotFoundf("input %s", id)
	}
	delete(f.inputs, id)
	return nil
}

func newTestService() (*Service, *fakeRepository) {
	repo := newFakeRepository()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewService(repo, logger), repo
}

func TestCreateInputValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.Create(ctx, userID, CreateInput{Name: "", Kind: "seeds", Unit: "kg", UnitPrice: dec("1")})
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	_, err = svc.Create(ctx, userID, CreateInput{Name: "Urea", Kind: "fuel", Unit: "l", UnitPrice: dec("1")})
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	_, err = svc.Create(ctx, userID, CreateInput{Name: "Urea", Kind: "fertilizer", Unit: "kg", UnitPrice: dec("0")})
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	in, err := svc.Create(ctx, userID, CreateInput{Name: "Urea", Kind: "fertilizer", Unit: "kg", UnitPrice: dec("1.25")})
	require.NoError(t, err)
	assert.Equal(t, KindFertilizer, in.Kind)
}

func TestInputOwnership(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	owner := uuid.New()

	in, err := svc.Create(ctx, owner, CreateInput{Name: "Urea", Kind: "fertilizer", Unit: "kg", UnitPrice: dec("1.25")})
	require.NoError(t, err)

	_, err = svc.Get(ctx, uuid.New(), in.ID)
	assert.True(t, errors.Is(err, common.ErrForbidden))

	err = svc.Delete(ctx, uuid.New(), in.ID)
	assert.True(t, errors.Is(err, common.ErrForbidden))
}

func TestSearchRanksMatches(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	userID := uuid.New()

	names := []string{"Urea 46%", "NPK 15-15-15", "Glyphosate", "Neem oil", "Urease inhibitor"}
	for _, name := range names {
		_, err := svc.Create(ctx, userID, CreateInput{Name: name, Kind: "fertilizer", Unit: "kg", UnitPrice: dec("1")})
		require.NoError(t, err)
	}

	results, err := svc.Search(ctx, userID, "urea")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "Urea 46%", results[0].Name)
	for _, r := range results {
		assert.NotEqual(t, "Glyphosate", r.Name)
	}

	// Empty query falls back to the full catalog.
	results, err = svc.Search(ctx, userID, "")
	require.NoError(t, err)
	assert.Len(t, results, len(names))

	// Another user's catalog stays invisible.
	results, err = svc.Search(ctx, uuid.New(), "urea")
	require.NoError(t, err)
	assert.Empty(t, results)
}
