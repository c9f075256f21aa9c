package service

import (
	"context"
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/agroplan/internal/common"
)

func TestLineItemLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	planning := env.seedPlanning(t, userID)
	fertilizer := env.seedInput(userID, "NPK 15-15-15", "2.00")

	item, err := env.lineItemSvc.Create(ctx, userID, CreateLineItemInput{
		PlanningID: planning.ID,
		InputID:    fertilizer.ID,
		Quantity:   dec("3.5"),
	})
	require.NoError(t, err)
	assert.True(t, item.Subtotal.Equal(dec("7.00")), "subtotal %s", item.Subtotal)

	saved, err := env.planningSvc.Get(ctx, userID, planning.ID)
	require.NoError(t, err)
	assert.True(t, saved.EstimatedCost.Equal(dec("7.00")), "estimated cost %s", saved.EstimatedCost)

	// Updating the quantity recomputes the subtotal and the planning total.
	item, err = env.lineItemSvc.Update(ctx, userID, item.ID, UpdateLineItemInput{
		Quantity: decp("10"),
	})
	require.NoError(t, err)
	assert.True(t, item.Subtotal.Equal(dec("20.00")))

	saved, err = env.planningSvc.Get(ctx, userID, planning.ID)
	require.NoError(t, err)
	assert.True(t, saved.EstimatedCost.Equal(dec("20.00")))

	// Deleting the last line-item brings the cost back to zero.
	require.NoError(t, env.lineItemSvc.Delete(ctx, userID, item.ID))

	saved, err = env.planningSvc.Get(ctx, userID, planning.ID)
	require.NoError(t, err)
	assert.True(t, saved.EstimatedCost.IsZero(), "estimated cost %s", saved.EstimatedCost)
}

func TestCreateLineItemValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	planning := env.seedPlanning(t, userID)
	fertilizer := env.seedInput(userID, "NPK 15-15-15", "2.00")

	_, err := env.lineItemSvc.Create(ctx, userID, CreateLineItemInput{
		PlanningID: planning.ID,
		InputID:    fertilizer.ID,
		Quantity:   dec("-1"),
	})
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	free := env.seedInput(userID, "Free sample", "0")
	_, err = env.lineItemSvc.Create(ctx, userID, CreateLineItemInput{
		PlanningID: planning.ID,
		InputID:    free.ID,
		Quantity:   dec("1"),
	})
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}

func TestLineItemOwnershipIsolation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()
	intruder := uuid.New()

	planning := env.seedPlanning(t, owner)
	fertilizer := env.seedInput(owner, "NPK 15-15-15", "2.00")

	item, err := env.lineItemSvc.Create(ctx, owner, CreateLineItemInput{
		PlanningID: planning.ID,
		InputID:    fertilizer.ID,
		Quantity:   dec("2"),
	})
	require.NoError(t, err)

	// A foreign user can neither attach to the planning nor touch its items.
	intruderInput := env.seedInput(intruder, "Other fertilizer", "5.00")
	_, err = env.lineItemSvc.Create(ctx, intruder, CreateLineItemInput{
		PlanningID: planning.ID,
		InputID:    intruderInput.ID,
		Quantity:   dec("1"),
	})
	assert.True(t, errors.Is(err, common.ErrForbidden))

	_, err = env.lineItemSvc.Update(ctx, intruder, item.ID, UpdateLineItemInput{Quantity: decp("99")})
	assert.True(t, errors.Is(err, common.ErrForbidden))

	err = env.lineItemSvc.Delete(ctx, intruder, item.ID)
	assert.True(t, errors.Is(err, common.ErrForbidden))

	// Nothing changed for the owner.
	saved, err := env.planningSvc.Get(ctx, owner, planning.ID)
	require.NoError(t, err)
	assert.True(t, saved.EstimatedCost.Equal(dec("4.00")), "estimated cost %s", saved.EstimatedCost)

	items, err := env.lineItemSvc.ListByPlanning(ctx, owner, planning.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Quantity.Equal(dec("2")))
}

func TestRecalculateRepairsCost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	planning := env.seedPlanning(t, userID)
	fertilizer := env.seedInput(userID, "NPK 15-15-15", "3.25")

	_, err := env.lineItemSvc.Create(ctx, userID, CreateLineItemInput{
		PlanningID: planning.ID,
		InputID:    fertilizer.ID,
		Quantity:   dec("4"),
	})
	require.NoError(t, err)

	// Simulate out-of-band drift.
	env.store.plannings[planning.ID].EstimatedCost = dec("999.99")

	total, err := env.lineItemSvc.Recalculate(ctx, userID, planning.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("13.00")), "total %s", total)

	_, err = env.lineItemSvc.Recalculate(ctx, uuid.New(), planning.ID)
	assert.True(t, errors.Is(err, common.ErrForbidden))
}

// TestEstimatedCostInvariant drives a random op sequence and checks after
// every step that the denormalized total equals the rounded sum of the
// surviving subtotals.
func TestEstimatedCostInvariant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	faker := gofakeit.New(42)

	planning := env.seedPlanning(t, userID)

	inputs := make([]uuid.UUID, 5)
	for i := range inputs {
		price := decimal.NewFromFloat(faker.Float64Range(0.01, 80)).Round(2)
		if price.IsZero() {
			price = dec("0.01")
		}
		inputs[i] = env.seedInput(userID, faker.ProductName(), price.String()).ID
	}

	checkInvariant := func() {
		t.Helper()

		saved, err := env.planningSvc.Get(ctx, userID, planning.ID)
		require.NoError(t, err)

		items, err := env.lineItemSvc.ListByPlanning(ctx, userID, planning.ID)
		require.NoError(t, err)

		sum := decimal.Zero
		for _, item := range items {
			sum = sum.Add(item.Subtotal)
		}
		require.True(t, saved.EstimatedCost.Equal(sum.Round(2)),
			"estimated cost %s != sum %s over %d items", saved.EstimatedCost, sum.Round(2), len(items))
	}

	var created []uuid.UUID
	for i := 0; i < 200; i++ {
		switch op := faker.IntRange(0, 2); {
		case op == 0 || len(created) == 0:
			quantity := decimal.NewFromFloat(faker.Float64Range(0, 50)).Round(3)
			item, err := env.lineItemSvc.Create(ctx, userID, CreateLineItemInput{
				PlanningID: planning.ID,
				InputID:    inputs[faker.IntRange(0, len(inputs)-1)],
				Quantity:   quantity,
			})
			require.NoError(t, err)
			created = append(created, item.ID)
		case op == 1:
			quantity := decimal.NewFromFloat(faker.Float64Range(0, 50)).Round(3)
			_, err := env.lineItemSvc.Update(ctx, userID, created[faker.IntRange(0, len(created)-1)], UpdateLineItemInput{
				Quantity: &quantity,
			})
			require.NoError(t, err)
		default:
			idx := faker.IntRange(0, len(created)-1)
			require.NoError(t, env.lineItemSvc.Delete(ctx, userID, created[idx]))
			created = append(created[:idx], created[idx+1:]...)
		}
		checkInvariant()
	}
}

func TestUpdateLineItemSwitchesInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	planning := env.seedPlanning(t, userID)
	cheap := env.seedInput(userID, "Urea", "1.00")
	pricey := env.seedInput(userID, "Bio compost", "4.50")

	item, err := env.lineItemSvc.Create(ctx, userID, CreateLineItemInput{
		PlanningID: planning.ID,
		InputID:    cheap.ID,
		Quantity:   dec("2"),
	})
	require.NoError(t, err)
	require.True(t, item.Subtotal.Equal(dec("2.00")))

	item, err = env.lineItemSvc.Update(ctx, userID, item.ID, UpdateLineItemInput{InputID: &pricey.ID})
	require.NoError(t, err)
	assert.True(t, item.Subtotal.Equal(dec("9.00")), "subtotal %s", item.Subtotal)
}
