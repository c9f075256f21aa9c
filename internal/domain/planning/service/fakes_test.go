package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/agroplan/internal/common"
	"github.com/FACorreiaa/agroplan/internal/domain/crop"
	"github.com/FACorreiaa/agroplan/internal/domain/input"
	"github.com/FACorreiaa/agroplan/internal/domain/parcel"
	"github.com/FACorreiaa/agroplan/internal/domain/planning/repository"
)

func strPtr(s string) *string { return &s }

// memStore is a shared in-memory backing store so the planning and line-item
// fakes see each other's writes, mirroring the transactional recompute.
type memStore struct {
	plannings map[uuid.UUID]*repository.Planning
	items     map[uuid.UUID]*repository.LineItem
}

func newMemStore() *memStore {
	return &memStore{
		plannings: make(map[uuid.UUID]*repository.Planning),
		items:     make(map[uuid.UUID]*repository.LineItem),
	}
}

func (s *memStore) recalculate(planningID uuid.UUID) (decimal.Decimal, error) {
	p, ok := s.plannings[planningID]
	if !ok {
		return decimal.Zero, common.NotFoundf("planning %s", planningID)
	}

	sum := decimal.Zero
	for _, item := range s.items {
		if item.PlanningID == planningID {
			sum = sum.Add(item.Subtotal)
		}
	}
	p.EstimatedCost = sum.Round(2)
	return p.EstimatedCost, nil
}

type fakePlanningRepo struct {
	store *memStore
}

func (f *fakePlanningRepo) Create(ctx context.Context, p *repository.Planning) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	f.store.plannings[p.ID] = &cp
	return nil
}

func (f *fakePlanningRepo) GetByID(ctx context.Context, id uuid.UUID) (*repository.Planning, error) {
	p, ok := f.store.plannings[id]
	if !ok {
		return nil, common.NotFoundf("planning %s", id)
	}
	cp := *p
	return &cp, nil
}

func (f *fakePlanningRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*repository.Planning, error) {
	var out []*repository.Planning
	for _, p := range f.store.plannings {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePlanningRepo) Update(ctx context.Context, p *repository.Planning) error {
	if _, ok := f.store.plannings[p.ID]; !ok {
		return common.NotFoundf("planning %s", p.ID)
	}
	cp := *p
	f.store.plannings[p.ID] = &cp
	return nil
}

func (f *fakePlanningRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.store.plannings[id]; !ok {
		return common.NotFoundf("planning %s", id)
	}
	delete(f.store.plannings, id)
	for itemID, item := range f.store.items {
		if item.PlanningID == id {
			delete(f.store.items, itemID)
		}
	}
	return nil
}

func (f *fakePlanningRepo) RecalculateCost(ctx context.Context, planningID uuid.UUID) (decimal.Decimal, error) {
	return f.store.recalculate(planningID)
}

type fakeLineItemRepo struct {
	store *memStore
}

func (f *fakeLineItemRepo) Create(ctx context.Context, item *repository.LineItem) (decimal.Decimal, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	cp := *item
	f.store.items[item.ID] = &cp
	return f.store.recalculate(item.PlanningID)
}

func (f *fakeLineItemRepo) Update(ctx context.Context, item *repository.LineItem) (decimal.Decimal, error) {
	if _, ok := f.store.items[item.ID]; !ok {
		return decimal.Zero, common.NotFoundf("line item %s", item.ID)
	}
	cp := *item
	f.store.items[item.ID] = &cp
	return f.store.recalculate(item.PlanningID)
}

func (f *fakeLineItemRepo) Delete(ctx context.Context, id, planningID uuid.UUID) (decimal.Decimal, error) {
	if _, ok := f.store.items[id]; !ok {
		return decimal.Zero, common.NotFoundf("line item %s", id)
	}
	delete(f.store.items, id)
	return f.store.recalculate(planningID)
}

func (f *fakeLineItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*repository.LineItem, error) {
	item, ok := f.store.items[id]
	if !ok {
		return nil, common.NotFoundf("line item %s", id)
	}
	cp := *item
	return &cp, nil
}

func (f *fakeLineItemRepo) ListByPlanning(ctx context.Context, planningID uuid.UUID) ([]*repository.LineItem, error) {
	var out []*repository.LineItem
	for _, item := range f.store.items {
		if item.PlanningID == planningID {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeParcelRepo struct {
	parcels map[uuid.UUID]*parcel.Parcel
}

func (f *fakeParcelRepo) Create(ctx context.Context, p *parcel.Parcel) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.parcels[p.ID] = p
	return nil
}

func (f *fakeParcelRepo) GetByID(ctx context.Context, id uuid.UUID) (*parcel.Parcel, error) {
	p, ok := f.parcels[id]
	if !ok {
		return nil, common.NotFoundf("parcel %s", id)
	}
	return p, nil
}

func (f *fakeParcelRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*parcel.Parcel, error) {
	return nil, nil
}
func (f *fakeParcelRepo) Update(ctx context.Context, p *parcel.Parcel) error { return nil }
func (f *fakeParcelRepo) Delete(ctx context.Context, id uuid.UUID) error     { return nil }

type fakeCropTypeRepo struct {
	cropTypes map[uuid.UUID]*crop.CropType
}

func (f *fakeCropTypeRepo) Create(ctx context.Context, c *crop.CropType) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	f.cropTypes[c.ID] = c
	return nil
}

func (f *fakeCropTypeRepo) GetByID(ctx context.Context, id uuid.UUID) (*crop.CropType, error) {
	c, ok := f.cropTypes[id]
	if !ok {
		return nil, common.NotFoundf("crop type %s", id)
	}
	return c, nil
}

func (f *fakeCropTypeRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*crop.CropType, error) {
	return nil, nil
}
func (f *fakeCropTypeRepo) Update(ctx context.Context, c *crop.CropType) error { return nil }
func (f *fakeCropTypeRepo) Delete(ctx context.Context, id uuid.UUID) error     { return nil }

type fakeStageRepo struct {
	stages map[uuid.UUID]*crop.Stage
}

func (f *fakeStageRepo) Create(ctx context.Context, s *crop.Stage) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	f.stages[s.ID] = s
	return nil
}

func (f *fakeStageRepo) GetByID(ctx context.Context, id uuid.UUID) (*crop.Stage, error) {
	s, ok := f.stages[id]
	if !ok {
		return nil, common.NotFoundf("stage %s", id)
	}
	return s, nil
}

func (f *fakeStageRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*crop.Stage, error) {
	return nil, nil
}
func (f *fakeStageRepo) Update(ctx context.Context, s *crop.Stage) error { return nil }
func (f *fakeStageRepo) Delete(ctx context.Context, id uuid.UUID) error  { return nil }

type fakeInputRepo struct {
	inputs map[uuid.UUID]*input.Input
}

func (f *fakeInputRepo) Create(ctx context.Context, in *input.Input) error {
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	f.inputs[in.ID] = in
	return nil
}

func (f *fakeInputRepo) GetByID(ctx context.Context, id uuid.UUID) (*input.Input, error) {
	in, ok := f.inputs[id]
	if !ok {
		return nil, common.NotFoundf("input %s", id)
	}
	return in, nil
}

func (f *fakeInputRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*input.Input, error) {
	return nil, nil
}
func (f *fakeInputRepo) Update(ctx context.Context, in *input.Input) error { return nil }
func (f *fakeInputRepo) Delete(ctx context.Context, id uuid.UUID) error    { return nil }

// testEnv wires the planning and line-item services over the in-memory fakes
type testEnv struct {
	store     *memStore
	plannings *fakePlanningRepo
	lineItems *fakeLineItemRepo
	parcels   *fakeParcelRepo
	cropTypes *fakeCropTypeRepo
	stages    *fakeStageRepo
	inputs    *fakeInputRepo

	planningSvc *PlanningService
	lineItemSvc *LineItemService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newMemStore()
	env := &testEnv{
		store:     store,
		plannings: &fakePlanningRepo{store: store},
		lineItems: &fakeLineItemRepo{store: store},
		parcels:   &fakeParcelRepo{parcels: make(map[uuid.UUID]*parcel.Parcel)},
		cropTypes: &fakeCropTypeRepo{cropTypes: make(map[uuid.UUID]*crop.CropType)},
		stages:    &fakeStageRepo{stages: make(map[uuid.UUID]*crop.Stage)},
		inputs:    &fakeInputRepo{inputs: make(map[uuid.UUID]*input.Input)},
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	env.planningSvc = NewPlanningService(
		env.plannings, env.lineItems, env.parcels, env.cropTypes, env.stages, env.inputs, logger,
	)
	env.lineItemSvc = NewLineItemService(env.lineItems, env.plannings, env.inputs, nil, logger)
	return env
}

func (e *testEnv) seedParcel(userID uuid.UUID, area string, unit parcel.AreaUnit) *parcel.Parcel {
	p := &parcel.Parcel{
		ID:       uuid.New(),
		UserID:   userID,
		Name:     "North Field",
		Area:     decimal.RequireFromString(area),
		AreaUnit: unit,
	}
	e.parcels.parcels[p.ID] = p
	return p
}

func (e *testEnv) seedCropType(userID uuid.UUID, rowSpacing, plantSpacing string) *crop.CropType {
	c := &crop.CropType{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         "Maize",
		RowSpacing:   decp(rowSpacing),
		PlantSpacing: decp(plantSpacing),
	}
	e.cropTypes.cropTypes[c.ID] = c
	return c
}

func (e *testEnv) seedStage(userID uuid.UUID) *crop.Stage {
	s := &crop.Stage{ID: uuid.New(), UserID: userID, Name: "Sowing"}
	e.stages.stages[s.ID] = s
	return s
}

func (e *testEnv) seedInput(userID uuid.UUID, name, unitPrice string) *input.Input {
	in := &input.Input{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Kind:      input.KindFertilizer,
		Unit:      "kg",
		UnitPrice: decimal.RequireFromString(unitPrice),
	}
	e.inputs.inputs[in.ID] = in
	return in
}

func (e *testEnv) seedPlanning(t *testing.T, userID uuid.UUID) *repository.Planning {
	t.Helper()

	p := e.seedParcel(userID, "1", parcel.UnitHectares)
	c := e.seedCropType(userID, "1.0", "0.5")
	st := e.seedStage(userID)

	planning, err := e.planningSvc.Create(context.Background(), userID, CreatePlanningInput{
		ParcelID:   p.ID,
		CropTypeID: c.ID,
		StageID:    st.ID,
		Name:       "Spring cycle",
		StartDate:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("failed to seed planning: %v", err)
	}
	return planning
}
