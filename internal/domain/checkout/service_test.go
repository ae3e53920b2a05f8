package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/core/numerator"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/cart"
	"backoffice/internal/domain/ledger/cash"
	"backoffice/internal/domain/ledger/stock"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	orders   map[id.ID]Order
	lines    map[id.ID][]OrderLine
	payments []Payment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders: make(map[id.ID]Order),
		lines:  make(map[id.ID][]OrderLine),
	}
}

func (r *fakeRepo) InsertOrder(_ context.Context, order Order) error {
	r.orders[order.ID] = order
	return nil
}

func (r *fakeRepo) UpdateOrder(_ context.Context, order Order) error {
	existing, ok := r.orders[order.ID]
	if !ok || existing.Version != order.Version {
		return apperror.NewConcurrentModification("order", order.ID)
	}
	order.Version++
	r.orders[order.ID] = order
	return nil
}

func (r *fakeRepo) GetOrder(_ context.Context, orderID id.ID) (Order, error) {
	if o, ok := r.orders[orderID]; ok {
		return o, nil
	}
	return Order{}, apperror.NewNotFound("order", orderID)
}

func (r *fakeRepo) GetLines(_ context.Context, orderID id.ID) ([]OrderLine, error) {
	return r.lines[orderID], nil
}

func (r *fakeRepo) ReplaceLines(_ context.Context, orderID id.ID, lines []OrderLine) error {
	r.lines[orderID] = lines
	return nil
}

func (r *fakeRepo) InsertPayment(_ context.Context, payment Payment) error {
	r.payments = append(r.payments, payment)
	return nil
}

func (r *fakeRepo) ListPayments(_ context.Context, orderID id.ID) ([]Payment, error) {
	var out []Payment
	for _, p := range r.payments {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

type decrement struct {
	productID  id.ID
	locationID id.ID
	qty        int64
}

type fakeStock struct {
	quantities map[id.ID]int64
	decrements []decrement
}

func (s *fakeStock) Decrease(_ context.Context, productID, locationID id.ID, qty int64, _ string) (stock.Entry, error) {
	if s.quantities != nil {
		if have := s.quantities[productID]; have < qty {
			return stock.Entry{}, apperror.NewInsufficientStock(productID.String(), qty, have)
		}
		s.quantities[productID] -= qty
	}
	s.decrements = append(s.decrements, decrement{productID, locationID, qty})
	return stock.Entry{ProductID: productID, LocationID: locationID}, nil
}

type fakeCash struct {
	entries []cash.Entry
}

func (c *fakeCash) Record(_ context.Context, registerID id.ID, entryType cash.EntryType, amount types.Money, description string) (cash.Entry, error) {
	entry := cash.NewEntry(registerID, entryType, amount, description)
	c.entries = append(c.entries, entry)
	return entry, nil
}

func newTestService() (*Service, *fakeRepo, *fakeStock, *fakeCash) {
	repo := newFakeRepo()
	stockLedger := &fakeStock{}
	cashLedger := &fakeCash{}
	svc := NewService(repo, stockLedger, cashLedger, &numerator.MockGenerator{}, fakeTxManager{}, nil)
	return svc, repo, stockLedger, cashLedger
}

func cartLine(productID id.ID, price int64, qty int64, discount int64) cart.Line {
	return cart.Line{
		ProductID:       productID,
		UnitPrice:       types.NewMoneyFromInt(price),
		Quantity:        qty,
		DiscountPerUnit: types.NewMoneyFromInt(discount),
	}
}

func TestCheckout_Arithmetic(t *testing.T) {
	// 2x A@10000 + 1x B@5000, paid 20000 -> remaining 5000, partial.
	svc, repo, stockLedger, _ := newTestService()
	clientID := id.New()
	locationID := id.New()
	productA, productB := id.New(), id.New()

	order, err := svc.Checkout(context.Background(), Input{
		Lines: []cart.Line{
			cartLine(productA, 10000, 2, 0),
			cartLine(productB, 5000, 1, 0),
		},
		ClientID:   &clientID,
		LocationID: locationID,
		PaidAmount: types.NewMoneyFromInt(20000),
		Method:     MethodCard,
	})
	require.NoError(t, err)

	assert.True(t, order.Subtotal.Equal(types.NewMoneyFromInt(25000)), "subtotal = %s", order.Subtotal)
	assert.True(t, order.FinalTotal.Equal(types.NewMoneyFromInt(25000)))
	assert.True(t, order.RemainingAmount.Equal(types.NewMoneyFromInt(5000)), "remaining = %s", order.RemainingAmount)
	assert.Equal(t, PaymentPartial, order.PaymentStatus)
	assert.Equal(t, DeliveryAwaiting, order.DeliveryStatus)
	assert.Equal(t, "MOCK-2026-00001", order.Number)

	require.Len(t, repo.lines[order.ID], 2)
	require.Len(t, stockLedger.decrements, 2)
	assert.EqualValues(t, 2, stockLedger.decrements[0].qty)
	assert.Equal(t, locationID, stockLedger.decrements[0].locationID)
}

func TestCheckout_PaymentStatusThresholds(t *testing.T) {
	clientID := id.New()
	cases := []struct {
		name   string
		paid   int64
		status PaymentStatus
	}{
		{"overpaid", 30000, PaymentPaid},
		{"exact", 25000, PaymentPaid},
		{"partial", 1, PaymentPartial},
		{"unpaid", 0, PaymentPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, _, _ := newTestService()
			order, err := svc.Checkout(context.Background(), Input{
				Lines:      []cart.Line{cartLine(id.New(), 25000, 1, 0)},
				ClientID:   &clientID,
				LocationID: id.New(),
				PaidAmount: types.NewMoneyFromInt(tc.paid),
				Method:     MethodCard,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.status, order.PaymentStatus)
		})
	}
}

func TestCheckout_DiscountsReduceFinalTotal(t *testing.T) {
	svc, _, _, _ := newTestService()
	clientID := id.New()

	order, err := svc.Checkout(context.Background(), Input{
		Lines:      []cart.Line{cartLine(id.New(), 10000, 3, 1000)},
		ClientID:   &clientID,
		LocationID: id.New(),
		PaidAmount: types.Zero(),
		Method:     MethodCredit,
	})
	require.NoError(t, err)

	assert.True(t, order.Subtotal.Equal(types.NewMoneyFromInt(30000)))
	assert.True(t, order.DiscountTotal.Equal(types.NewMoneyFromInt(3000)))
	assert.True(t, order.FinalTotal.Equal(types.NewMoneyFromInt(27000)))
}

func TestCheckout_Validation(t *testing.T) {
	svc, repo, stockLedger, _ := newTestService()
	ctx := context.Background()

	// empty cart
	_, err := svc.Checkout(ctx, Input{LocationID: id.New(), PaidAmount: types.Zero()})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	// unpaid remainder without a client
	_, err = svc.Checkout(ctx, Input{
		Lines:      []cart.Line{cartLine(id.New(), 10000, 1, 0)},
		LocationID: id.New(),
		PaidAmount: types.Zero(),
		Method:     MethodCredit,
	})
	require.Error(t, err)
	appErr, ok = apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	// anonymous fully-paid cash sale is fine
	_, err = svc.Checkout(ctx, Input{
		Lines:          []cart.Line{cartLine(id.New(), 10000, 1, 0)},
		LocationID:     id.New(),
		PaidAmount:     types.NewMoneyFromInt(10000),
		Method:         MethodCash,
		CashRegisterID: id.New(),
	})
	require.NoError(t, err)

	assert.Len(t, repo.orders, 1, "rejected checkouts must not write")
	assert.Len(t, stockLedger.decrements, 1)
}

func TestCheckout_CashEntryOnlyForCashMethod(t *testing.T) {
	clientID := id.New()
	registerID := id.New()

	for _, method := range []PaymentMethod{MethodCash, MethodCard, MethodTransfer} {
		svc, repo, _, cashLedger := newTestService()
		order, err := svc.Checkout(context.Background(), Input{
			Lines:          []cart.Line{cartLine(id.New(), 8000, 1, 0)},
			ClientID:       &clientID,
			LocationID:     id.New(),
			PaidAmount:     types.NewMoneyFromInt(8000),
			Method:         method,
			CashRegisterID: registerID,
		})
		require.NoError(t, err)
		require.Len(t, repo.payments, 1, "method %s", method)

		if method == MethodCash {
			require.Len(t, cashLedger.entries, 1)
			assert.Equal(t, cash.EntryDeposit, cashLedger.entries[0].Type)
			assert.Equal(t, "Sale #"+order.Number, cashLedger.entries[0].Description)
		} else {
			assert.Empty(t, cashLedger.entries, "method %s must not touch the drawer", method)
		}
	}
}

func TestCheckout_NoPaymentRowWhenUnpaid(t *testing.T) {
	svc, repo, _, _ := newTestService()
	clientID := id.New()

	_, err := svc.Checkout(context.Background(), Input{
		Lines:      []cart.Line{cartLine(id.New(), 5000, 1, 0)},
		ClientID:   &clientID,
		LocationID: id.New(),
		PaidAmount: types.Zero(),
		Method:     MethodCredit,
	})
	require.NoError(t, err)
	assert.Empty(t, repo.payments)
}

func TestCheckout_DeliveryIntent(t *testing.T) {
	svc, repo, _, _ := newTestService()
	clientID := id.New()
	productA, productB := id.New(), id.New()

	order, err := svc.Checkout(context.Background(), Input{
		Lines: []cart.Line{
			cartLine(productA, 1000, 4, 0),
			cartLine(productB, 2000, 2, 0),
		},
		ClientID:   &clientID,
		LocationID: id.New(),
		PaidAmount: types.Zero(),
		Method:     MethodCredit,
		Delivery: DeliveryIntent{
			PerLine: map[id.ID]int64{productA: 3},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, DeliveryPartial, order.DeliveryStatus)

	lines := repo.lines[order.ID]
	require.Len(t, lines, 2)
	assert.EqualValues(t, 3, lines[0].DeliveredQuantity)
	assert.EqualValues(t, 0, lines[1].DeliveredQuantity)

	// full delivery marks every line delivered at its sale quantity
	order2, err := svc.Checkout(context.Background(), Input{
		Lines:      []cart.Line{cartLine(productA, 1000, 4, 0)},
		ClientID:   &clientID,
		LocationID: id.New(),
		PaidAmount: types.Zero(),
		Method:     MethodCredit,
		Delivery:   DeliveryIntent{FullyDelivered: true},
	})
	require.NoError(t, err)
	assert.Equal(t, DeliveryComplete, order2.DeliveryStatus)
	assert.EqualValues(t, 4, repo.lines[order2.ID][0].DeliveredQuantity)
}

func TestCheckout_DeliveredQuantityClampedToLineQuantity(t *testing.T) {
	svc, repo, _, _ := newTestService()
	clientID := id.New()
	productA := id.New()

	order, err := svc.Checkout(context.Background(), Input{
		Lines:      []cart.Line{cartLine(productA, 1000, 4, 0)},
		ClientID:   &clientID,
		LocationID: id.New(),
		PaidAmount: types.Zero(),
		Method:     MethodCredit,
		Delivery: DeliveryIntent{
			PerLine: map[id.ID]int64{productA: 10},
		},
	})
	require.NoError(t, err)

	lines := repo.lines[order.ID]
	require.Len(t, lines, 1)
	assert.EqualValues(t, 4, lines[0].DeliveredQuantity, "cannot hand over more than was sold")
}

func TestCheckout_EditReplacesLines(t *testing.T) {
	svc, repo, _, _ := newTestService()
	clientID := id.New()
	productA, productB := id.New(), id.New()
	ctx := context.Background()

	order, err := svc.Checkout(ctx, Input{
		Lines:      []cart.Line{cartLine(productA, 1000, 2, 0)},
		ClientID:   &clientID,
		LocationID: id.New(),
		PaidAmount: types.Zero(),
		Method:     MethodCredit,
	})
	require.NoError(t, err)
	createdAt := repo.orders[order.ID].CreatedAt
	number := order.Number

	edited, err := svc.Checkout(ctx, Input{
		Lines:           []cart.Line{cartLine(productB, 3000, 1, 0)},
		ClientID:        &clientID,
		LocationID:      order.LocationID,
		PaidAmount:      types.Zero(),
		Method:          MethodCredit,
		ExistingOrderID: &order.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, order.ID, edited.ID)
	assert.Equal(t, number, edited.Number, "edit must keep the document number")
	assert.Equal(t, createdAt, repo.orders[order.ID].CreatedAt)
	assert.Len(t, repo.orders, 1, "edit must not duplicate the order")

	lines := repo.lines[order.ID]
	require.Len(t, lines, 1, "edit must replace, not append, lines")
	assert.Equal(t, productB, lines[0].ProductID)
}

func TestCheckout_InsufficientStockAbortsWithoutWrapping(t *testing.T) {
	repo := newFakeRepo()
	productA := id.New()
	stockLedger := &fakeStock{quantities: map[id.ID]int64{productA: 1}}
	svc := NewService(repo, stockLedger, &fakeCash{}, &numerator.MockGenerator{}, fakeTxManager{}, nil)
	clientID := id.New()

	_, err := svc.Checkout(context.Background(), Input{
		Lines:      []cart.Line{cartLine(productA, 1000, 5, 0)},
		ClientID:   &clientID,
		LocationID: id.New(),
		PaidAmount: types.Zero(),
		Method:     MethodCredit,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err), "business errors surface as themselves, not CHECKOUT_FAILED")
}

func TestGetOrder_IncludesLinesAndPayments(t *testing.T) {
	svc, _, _, _ := newTestService()
	clientID := id.New()

	created, err := svc.Checkout(context.Background(), Input{
		Lines:      []cart.Line{cartLine(id.New(), 7000, 1, 0)},
		ClientID:   &clientID,
		LocationID: id.New(),
		PaidAmount: types.NewMoneyFromInt(3000),
		Method:     MethodCard,
	})
	require.NoError(t, err)

	order, payments, err := svc.GetOrder(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Len(t, order.Lines, 1)
	require.Len(t, payments, 1)
	assert.True(t, payments[0].Amount.Equal(types.NewMoneyFromInt(3000)))
}
