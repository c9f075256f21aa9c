package report

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/agroplan/internal/common"
	"github.com/FACorreiaa/agroplan/internal/domain/input"
	planningrepo "github.com/FACorreiaa/agroplan/internal/domain/planning/repository"
)

type fakePlanningRepo struct {
	plannings map[uuid.UUID]*planningrepo.Planning
}

func (f *fakePlanningRepo) Create(ctx context.Context, p *planningrepo.Planning) error { return nil }

func (f *fakePlanningRepo) GetByID(ctx context.Context, id uuid.UUID) (*planningrepo.Planning, error) {
	p, ok := f.plannings[id]
	if !ok {
		return nil, common.NotFoundf("planning %s", id)
	}
	return p, nil
}

func (f *fakePlanningRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*planningrepo.Planning, error) {
	return nil, nil
}
func (f *fakePlanningRepo) Update(ctx context.Context, p *planningrepo.Planning) error { return nil }
func (f *fakePlanningRepo) Delete(ctx context.Context, id uuid.UUID) error             { return nil }
func (f *fakePlanningRepo) RecalculateCost(ctx context.Context, planningID uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

type fakeLineItemRepo struct {
	items []*planningrepo.LineItem
}

func (f *fakeLineItemRepo) Create(ctx context.Context, item *planningrepo.LineItem) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (f *fakeLineItemRepo) Update(ctx context.Context, item *planningrepo.LineItem) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (f *fakeLineItemRepo) Delete(ctx context.Context, id, planningID uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (f *fakeLineItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*planningrepo.LineItem, error) {
	return nil, common.NotFoundf("line item %s", id)
}

func (f *fakeLineItemRepo) ListByPlanning(ctx context.Context, planningID uuid.UUID) ([]*planningrepo.LineItem, error) {
	var out []*planningrepo.LineItem
	for _, item := range f.items {
		if item.PlanningID == planningID {
			out = append(out, item)
		}
	}
	return out, nil
}

type fakeInputRepo struct {
	inputs map[uuid.UUID]*input.Input
}

func (f *fakeInputRepo) Create(ctx context.Context, in *input.Input) error { return nil }

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

func newTestService(owner uuid.UUID) (*Service, uuid.UUID) {
	planningID := uuid.New()
	ureaID := uuid.New()
	seedsID := uuid.New()

	plannings := &fakePlanningRepo{plannings: map[uuid.UUID]*planningrepo.Planning{
		planningID: {
			ID:            planningID,
			UserID:        owner,
			Name:          "North field maize",
			State:         planningrepo.StateInProgress,
			SeedCount:     decimal.RequireFromString("41667"),
			EstimatedCost: decimal.RequireFromString("97.50"),
		},
	}}
	inputs := &fakeInputRepo{inputs: map[uuid.UUID]*input.Input{
		ureaID: {
			ID:        ureaID,
			UserID:    owner,
			Name:      "Urea 46%",
			Kind:      input.KindFertilizer,
			Unit:      "kg",
			UnitPrice: decimal.RequireFromString("2.50"),
		},
		seedsID: {
			ID:        seedsID,
			UserID:    owner,
			Name:      "Maize seed",
			Kind:      input.KindSeeds,
			Unit:      "kg",
			UnitPrice: decimal.RequireFromString("15.00"),
		},
	}}
	lineItems := &fakeLineItemRepo{items: []*planningrepo.LineItem{
		{
			ID:           uuid.New(),
			PlanningID:   planningID,
			InputID:      ureaID,
			Quantity:     decimal.RequireFromString("25"),
			Subtotal:     decimal.RequireFromString("62.50"),
			RecordedDate: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:           uuid.New(),
			PlanningID:   planningID,
			InputID:      ureaID,
			Quantity:     decimal.RequireFromString("2"),
			Subtotal:     decimal.RequireFromString("5.00"),
			RecordedDate: time.Date(2025, 3, 18, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:           uuid.New(),
			PlanningID:   planningID,
			InputID:      seedsID,
			Quantity:     decimal.RequireFromString("2"),
			Subtotal:     decimal.RequireFromString("30.00"),
			RecordedDate: time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC),
		},
	}}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewService(plannings, lineItems, inputs, logger), planningID
}

func TestBuildCostReport(t *testing.T) {
	owner := uuid.New()
	svc, planningID := newTestService(owner)

	report, err := svc.BuildCostReport(context.Background(), planningID, owner)
	require.NoError(t, err)

	assert.Equal(t, "North field maize", report.PlanningName)
	assert.True(t, report.EstimatedCost.Equal(decimal.RequireFromString("97.50")))
	require.Len(t, report.Rows, 3)

	first := report.Rows[0]
	assert.Equal(t, "Urea 46%", first.InputName)
	assert.Equal(t, "fertilizer", first.Kind)
	assert.Equal(t, "kg", first.Unit)
	assert.Equal(t, "2025-03-04", first.RecordedDate)
	assert.True(t, first.Subtotal.Equal(decimal.RequireFromString("62.50")))
}

func TestBuildCostReportForbidden(t *testing.T) {
	owner := uuid.New()
	svc, planningID := newTestService(owner)

	_, err := svc.BuildCostReport(context.Background(), planningID, uuid.New())
	assert.True(t, errors.Is(err, common.ErrForbidden))
}

func TestExportCSV(t *testing.T) {
	owner := uuid.New()
	svc, planningID := newTestService(owner)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), &buf, planningID, owner))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "input,kind,unit,quantity,unit_price,subtotal,recorded_date", strings.TrimSpace(lines[0]))
	assert.Contains(t, lines[1], "Urea 46%")
	assert.Contains(t, lines[1], "62.5")
	assert.Contains(t, lines[3], "Maize seed")
}

func TestExportXLSX(t *testing.T) {
	owner := uuid.New()
	svc, planningID := newTestService(owner)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportXLSX(context.Background(), &buf, planningID, owner))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	name, err := f.GetCellValue("Cost Report", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Urea 46%", name)

	// The total row sits one blank row below the last line-item.
	total, err := f.GetCellValue("Cost Report", "F6")
	require.NoError(t, err)
	assert.Equal(t, "97.50", total)
}
