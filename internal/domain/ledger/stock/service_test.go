package stock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/catalog/product"
)

// --- in-memory fakes ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type entryKey struct {
	productID  id.ID
	locationID id.ID
}

type fakeRepo struct {
	entries   map[entryKey]Entry
	movements []Movement
	locations map[id.ID]Location
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		entries:   make(map[entryKey]Entry),
		locations: make(map[id.ID]Location),
	}
}

func (r *fakeRepo) GetEntry(_ context.Context, productID, locationID id.ID) (Entry, error) {
	if e, ok := r.entries[entryKey{productID, locationID}]; ok {
		return e, nil
	}
	return ZeroEntry(productID, locationID), nil
}

func (r *fakeRepo) GetEntryForUpdate(ctx context.Context, productID, locationID id.ID) (Entry, error) {
	return r.GetEntry(ctx, productID, locationID)
}

func (r *fakeRepo) UpsertEntry(_ context.Context, entry Entry) error {
	r.entries[entryKey{entry.ProductID, entry.LocationID}] = entry
	return nil
}

func (r *fakeRepo) InsertMovements(_ context.Context, movements []Movement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *fakeRepo) ListMovements(_ context.Context, _ MovementFilter) ([]Movement, error) {
	return r.movements, nil
}

func (r *fakeRepo) GetLocation(_ context.Context, locationID id.ID) (Location, error) {
	if l, ok := r.locations[locationID]; ok {
		return l, nil
	}
	return Location{}, apperror.NewNotFound("stock location", locationID)
}

type fakeProducts struct {
	aggregate map[id.ID]int64
}

func (p *fakeProducts) GetByID(_ context.Context, productID id.ID) (product.Product, error) {
	return product.Product{ID: productID}, nil
}

func (p *fakeProducts) GetByIDs(_ context.Context, ids []id.ID) ([]product.Product, error) {
	out := make([]product.Product, 0, len(ids))
	for _, pid := range ids {
		out = append(out, product.Product{ID: pid})
	}
	return out, nil
}

func (p *fakeProducts) AdjustAggregateStock(_ context.Context, productID id.ID, delta int64) error {
	if p.aggregate == nil {
		p.aggregate = make(map[id.ID]int64)
	}
	p.aggregate[productID] += delta
	return nil
}

func newTestService() (*Service, *fakeRepo, *fakeProducts) {
	repo := newFakeRepo()
	products := &fakeProducts{}
	return NewService(repo, products, fakeTxManager{}), repo, products
}

// --- tests ---

func TestIncrease_WeightedAverage(t *testing.T) {
	svc, _, products := newTestService()
	ctx := context.Background()
	productID := id.New()
	locationID := id.New()

	// 10 @ 100
	entry, err := svc.Increase(ctx, productID, locationID, 10, types.NewMoneyFromInt(100), "delivery")
	require.NoError(t, err)
	assert.EqualValues(t, 10, entry.Quantity)
	assert.True(t, entry.UnitCost.Equal(types.NewMoneyFromInt(100)), "cost = %s", entry.UnitCost)

	// receive 5 @ 200 -> cost = (10*100 + 5*200) / 15 = 133.33...
	entry, err = svc.Increase(ctx, productID, locationID, 5, types.NewMoneyFromInt(200), "delivery")
	require.NoError(t, err)
	assert.EqualValues(t, 15, entry.Quantity)

	wantCost := types.NewMoneyFromInt(2000).Div(types.NewMoneyFromInt(15))
	assert.True(t, entry.UnitCost.Equal(wantCost), "cost = %s, want %s", entry.UnitCost, wantCost)
	assert.True(t, entry.TotalValue.Sub(types.NewMoneyFromInt(2000)).Abs().LessThan(types.MustMoney("0.01")),
		"value = %s", entry.TotalValue)

	assert.EqualValues(t, 15, products.aggregate[productID])
}

func TestIncrease_OrderIndependent(t *testing.T) {
	ctx := context.Background()
	productID := id.New()
	locationID := id.New()

	svcA, _, _ := newTestService()
	_, err := svcA.Increase(ctx, productID, locationID, 10, types.NewMoneyFromInt(100), "a")
	require.NoError(t, err)
	entryA, err := svcA.Increase(ctx, productID, locationID, 5, types.NewMoneyFromInt(200), "a")
	require.NoError(t, err)

	svcB, _, _ := newTestService()
	_, err = svcB.Increase(ctx, productID, locationID, 5, types.NewMoneyFromInt(200), "b")
	require.NoError(t, err)
	entryB, err := svcB.Increase(ctx, productID, locationID, 10, types.NewMoneyFromInt(100), "b")
	require.NoError(t, err)

	assert.True(t, entryA.UnitCost.Equal(entryB.UnitCost),
		"receipt order changed the average: %s vs %s", entryA.UnitCost, entryB.UnitCost)
}

func TestIncrease_RejectsNonPositiveQuantity(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Increase(ctx, id.New(), id.New(), 0, types.NewMoneyFromInt(10), "x")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Empty(t, repo.movements, "no movement may be written on rejection")
}

func TestDecrease_CostUnchanged(t *testing.T) {
	svc, repo, products := newTestService()
	ctx := context.Background()
	productID := id.New()
	locationID := id.New()

	_, err := svc.Increase(ctx, productID, locationID, 10, types.NewMoneyFromInt(150), "delivery")
	require.NoError(t, err)

	entry, err := svc.Decrease(ctx, productID, locationID, 4, "sale")
	require.NoError(t, err)
	assert.EqualValues(t, 6, entry.Quantity)
	assert.True(t, entry.UnitCost.Equal(types.NewMoneyFromInt(150)), "decrease moved the average")
	assert.True(t, entry.TotalValue.Equal(types.NewMoneyFromInt(900)))

	assert.EqualValues(t, 6, products.aggregate[productID])
	require.Len(t, repo.movements, 2)
	assert.Equal(t, DirectionOut, repo.movements[1].Direction)
}

func TestDecrease_InsufficientStock(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	productID := id.New()
	locationID := id.New()

	_, err := svc.Increase(ctx, productID, locationID, 3, types.NewMoneyFromInt(50), "delivery")
	require.NoError(t, err)

	_, err = svc.Decrease(ctx, productID, locationID, 5, "sale")
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// No partial effect.
	entry, err := svc.Get(ctx, productID, locationID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, entry.Quantity)
	assert.Len(t, repo.movements, 1)
}

func TestGet_MissingEntryReadsAsZero(t *testing.T) {
	svc, _, _ := newTestService()

	entry, err := svc.Get(context.Background(), id.New(), id.New())
	require.NoError(t, err)
	assert.EqualValues(t, 0, entry.Quantity)
	assert.True(t, entry.UnitCost.IsZero())
}
