package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/ledger/stock"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	notes map[id.ID]Note
	items map[id.ID][]Item
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		notes: make(map[id.ID]Note),
		items: make(map[id.ID][]Item),
	}
}

func (r *fakeRepo) GetNote(_ context.Context, noteID id.ID) (Note, error) {
	if n, ok := r.notes[noteID]; ok {
		return n, nil
	}
	return Note{}, apperror.NewNotFound("delivery note", noteID)
}

func (r *fakeRepo) GetItems(_ context.Context, noteID id.ID) ([]Item, error) {
	return r.items[noteID], nil
}

func (r *fakeRepo) UpdateItemReceived(_ context.Context, itemID id.ID, received int64) error {
	for noteID, items := range r.items {
		for i := range items {
			if items[i].ID == itemID {
				items[i].QuantityReceived = received
				r.items[noteID] = items
				return nil
			}
		}
	}
	return apperror.NewNotFound("delivery note item", itemID)
}

func (r *fakeRepo) MarkReceived(_ context.Context, noteID, locationID id.ID, receivedAt time.Time) error {
	n, ok := r.notes[noteID]
	if !ok {
		return apperror.NewNotFound("delivery note", noteID)
	}
	n.Status = NoteReceived
	n.LocationID = &locationID
	n.ReceivedAt = &receivedAt
	r.notes[noteID] = n
	return nil
}

type increase struct {
	productID  id.ID
	locationID id.ID
	qty        int64
	unitPrice  types.Money
}

type fakeStock struct {
	locations map[id.ID]stock.Location
	increases []increase
}

func (s *fakeStock) Increase(_ context.Context, productID, locationID id.ID, qty int64, unitPrice types.Money, _ string) (stock.Entry, error) {
	s.increases = append(s.increases, increase{productID, locationID, qty, unitPrice})
	return stock.Entry{ProductID: productID, LocationID: locationID, Quantity: qty}, nil
}

func (s *fakeStock) GetLocation(_ context.Context, locationID id.ID) (stock.Location, error) {
	if l, ok := s.locations[locationID]; ok {
		return l, nil
	}
	return stock.Location{}, apperror.NewNotFound("stock location", locationID)
}

func seedNote(repo *fakeRepo, itemCount int) (Note, []Item) {
	note := Note{
		ID:         id.New(),
		Number:     "DLV-2026-00042",
		SupplierID: id.New(),
		Status:     NoteApproved,
		CreatedAt:  time.Now().UTC(),
	}
	repo.notes[note.ID] = note

	items := make([]Item, 0, itemCount)
	for i := 0; i < itemCount; i++ {
		items = append(items, Item{
			ID:        id.New(),
			NoteID:    note.ID,
			ProductID: id.New(),
			Quantity:  10,
			UnitPrice: types.NewMoneyFromInt(int64(100 * (i + 1))),
		})
	}
	repo.items[note.ID] = items
	return note, items
}

func newTestService(locations ...stock.Location) (*Service, *fakeRepo, *fakeStock) {
	repo := newFakeRepo()
	stockLedger := &fakeStock{locations: make(map[id.ID]stock.Location)}
	for _, l := range locations {
		stockLedger.locations[l.ID] = l
	}
	return NewService(repo, stockLedger, fakeTxManager{}, nil), repo, stockLedger
}

func TestReceive_BooksItemsIntoLedger(t *testing.T) {
	warehouse := stock.Location{ID: id.New(), Kind: stock.LocationWarehouse}
	svc, repo, stockLedger := newTestService(warehouse)
	note, items := seedNote(repo, 2)

	received := map[id.ID]int64{
		items[0].ID: 7,
		items[1].ID: 10,
	}
	got, err := svc.Receive(context.Background(), note.ID, received, warehouse.ID)
	require.NoError(t, err)

	assert.Equal(t, NoteReceived, got.Status)
	require.NotNil(t, got.LocationID)
	assert.Equal(t, warehouse.ID, *got.LocationID)
	assert.NotNil(t, got.ReceivedAt)

	require.Len(t, stockLedger.increases, 2)
	assert.EqualValues(t, 7, stockLedger.increases[0].qty)
	assert.True(t, stockLedger.increases[0].unitPrice.Equal(items[0].UnitPrice))
	assert.Equal(t, warehouse.ID, stockLedger.increases[0].locationID)

	stored := repo.items[note.ID]
	assert.EqualValues(t, 7, stored[0].QuantityReceived)
	assert.EqualValues(t, 10, stored[1].QuantityReceived)
}

func TestReceive_PointOfSaleIsValidDestination(t *testing.T) {
	pos := stock.Location{ID: id.New(), Kind: stock.LocationPointOfSale}
	svc, repo, stockLedger := newTestService(pos)
	note, items := seedNote(repo, 1)

	got, err := svc.Receive(context.Background(), note.ID, map[id.ID]int64{items[0].ID: 5}, pos.ID)
	require.NoError(t, err)

	require.NotNil(t, got.LocationID)
	assert.Equal(t, pos.ID, *got.LocationID, "POS receipts land on the POS itself")
	require.Len(t, stockLedger.increases, 1)
	assert.Equal(t, pos.ID, stockLedger.increases[0].locationID)
}

func TestReceive_SkipsZeroLines(t *testing.T) {
	warehouse := stock.Location{ID: id.New(), Kind: stock.LocationWarehouse}
	svc, repo, stockLedger := newTestService(warehouse)
	note, items := seedNote(repo, 2)

	received := map[id.ID]int64{
		items[0].ID: 3,
		items[1].ID: 0,
	}
	_, err := svc.Receive(context.Background(), note.ID, received, warehouse.ID)
	require.NoError(t, err)

	require.Len(t, stockLedger.increases, 1)
	assert.Equal(t, items[0].ProductID, stockLedger.increases[0].productID)
	assert.EqualValues(t, 0, repo.items[note.ID][1].QuantityReceived)
}

func TestReceive_RejectsEmptyReceipt(t *testing.T) {
	warehouse := stock.Location{ID: id.New(), Kind: stock.LocationWarehouse}
	svc, repo, stockLedger := newTestService(warehouse)
	note, _ := seedNote(repo, 2)

	_, err := svc.Receive(context.Background(), note.ID, map[id.ID]int64{}, warehouse.ID)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	assert.Empty(t, stockLedger.increases)
	assert.Equal(t, NoteApproved, repo.notes[note.ID].Status)
}

func TestReceive_RejectsNegativeQuantity(t *testing.T) {
	warehouse := stock.Location{ID: id.New(), Kind: stock.LocationWarehouse}
	svc, repo, _ := newTestService(warehouse)
	note, items := seedNote(repo, 1)

	_, err := svc.Receive(context.Background(), note.ID, map[id.ID]int64{items[0].ID: -1}, warehouse.ID)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestReceive_AlreadyReceivedConflicts(t *testing.T) {
	warehouse := stock.Location{ID: id.New(), Kind: stock.LocationWarehouse}
	svc, repo, stockLedger := newTestService(warehouse)
	note, items := seedNote(repo, 1)

	received := map[id.ID]int64{items[0].ID: 5}
	_, err := svc.Receive(context.Background(), note.ID, received, warehouse.ID)
	require.NoError(t, err)

	_, err = svc.Receive(context.Background(), note.ID, received, warehouse.ID)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)

	assert.Len(t, stockLedger.increases, 1, "second receipt must not book again")
}

func TestReceive_UnknownLocation(t *testing.T) {
	svc, repo, stockLedger := newTestService()
	note, items := seedNote(repo, 1)

	_, err := svc.Receive(context.Background(), note.ID, map[id.ID]int64{items[0].ID: 2}, id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, stockLedger.increases)
}
