package checkout

import (
	"context"
	"fmt"
	"time"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/core/numerator"
	"backoffice/internal/core/tx"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/cart"
	"backoffice/internal/domain/ledger/cash"
	"backoffice/internal/domain/ledger/stock"
	"backoffice/pkg/logger"
)

// StockLedger is the slice of the stock service checkout needs.
type StockLedger interface {
	Decrease(ctx context.Context, productID, locationID id.ID, qty int64, reason string) (stock.Entry, error)
}

// CashLedger is the slice of the cash service checkout needs.
type CashLedger interface {
	Record(ctx context.Context, registerID id.ID, entryType cash.EntryType, amount types.Money, description string) (cash.Entry, error)
}

// Auditor records entity change history.
type Auditor interface {
	LogChange(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error
}

// Service orchestrates checkout. All writes of one call happen in a single
// transaction; a failure anywhere rolls everything back.
type Service struct {
	repo      Repository
	stock     StockLedger
	cash      CashLedger
	numbers   numerator.Generator
	txManager tx.ReadOnlyManager
	auditor   Auditor

	numberCfg  numerator.Config
	numberOpts *numerator.Options
}

// NewService creates a checkout service. auditor may be nil.
func NewService(repo Repository, stockLedger StockLedger, cashLedger CashLedger, numbers numerator.Generator, txManager tx.ReadOnlyManager, auditor Auditor) *Service {
	return &Service{
		repo:      repo,
		stock:     stockLedger,
		cash:      cashLedger,
		numbers:   numbers,
		txManager: txManager,
		auditor:   auditor,
		numberCfg: numerator.DefaultConfig("ORD"),
		numberOpts: &numerator.Options{
			Strategy: numerator.StrategyCached,
		},
	}
}

// Checkout validates the input, computes totals and statuses, and persists
// the order, its lines, the payment, the cash entry (cash method only) and
// the stock decrement as one transaction. The caller clears the cart on
// success.
func (s *Service) Checkout(ctx context.Context, input Input) (Order, error) {
	if len(input.Lines) == 0 {
		return Order{}, apperror.NewValidation("cart is empty")
	}
	if input.PaidAmount.IsNegative() {
		return Order{}, apperror.NewValidation("paid amount cannot be negative").
			WithDetail("paid_amount", input.PaidAmount.String())
	}

	subtotal := types.Zero()
	discountTotal := types.Zero()
	for _, l := range input.Lines {
		qty := types.NewMoneyFromInt(l.Quantity)
		subtotal = subtotal.Add(l.UnitPrice.Mul(qty))
		discountTotal = discountTotal.Add(l.DiscountPerUnit.Mul(qty))
	}
	finalTotal := subtotal.Sub(discountTotal)
	remaining := types.MaxMoney(finalTotal.Sub(input.PaidAmount), types.Zero())

	// Credit flows (anything left to pay) need an identified client.
	if remaining.IsPositive() && input.ClientID == nil {
		return Order{}, apperror.NewValidation("client is required when the order is not fully paid").
			WithDetail("remaining_amount", remaining.String())
	}

	now := time.Now().UTC()
	order := Order{
		ClientID:        input.ClientID,
		LocationID:      input.LocationID,
		Subtotal:        subtotal,
		DiscountTotal:   discountTotal,
		FinalTotal:      finalTotal,
		PaidAmount:      input.PaidAmount,
		RemainingAmount: remaining,
		PaymentStatus:   resolvePaymentStatus(input.PaidAmount, finalTotal),
		DeliveryStatus:  resolveDeliveryStatus(input.Delivery),
		Notes:           input.Notes,
		UpdatedAt:       now,
	}

	isEdit := input.ExistingOrderID != nil
	if isEdit {
		order.ID = *input.ExistingOrderID
	} else {
		order.ID = id.New()
		order.CreatedAt = now
		order.Version = 1

		// Numbers come from a cached range; fetching one outside the
		// transaction keeps sequence contention off the checkout path.
		number, err := s.numbers.GetNextNumber(ctx, s.numberCfg, s.numberOpts, now)
		if err != nil {
			return Order{}, fmt.Errorf("generate order number: %w", err)
		}
		order.Number = number
	}

	lines := buildLines(order.ID, input.Lines, input.Delivery)
	order.Lines = lines

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if isEdit {
			existing, err := s.repo.GetOrder(ctx, order.ID)
			if err != nil {
				return err
			}
			order.Number = existing.Number
			order.CreatedAt = existing.CreatedAt
			order.Version = existing.Version
			if err := s.repo.UpdateOrder(ctx, order); err != nil {
				return err
			}
			order.Version++
		} else {
			if err := s.repo.InsertOrder(ctx, order); err != nil {
				return fmt.Errorf("insert order: %w", err)
			}
		}

		if err := s.repo.ReplaceLines(ctx, order.ID, lines); err != nil {
			return fmt.Errorf("replace lines: %w", err)
		}

		if input.PaidAmount.IsPositive() {
			payment := Payment{
				ID:        id.New(),
				OrderID:   order.ID,
				Amount:    input.PaidAmount,
				Method:    input.Method,
				Notes:     input.Notes,
				CreatedAt: now,
			}
			if err := s.repo.InsertPayment(ctx, payment); err != nil {
				return fmt.Errorf("insert payment: %w", err)
			}

			if input.Method == MethodCash {
				description := fmt.Sprintf("Sale #%s", order.Number)
				if _, err := s.cash.Record(ctx, input.CashRegisterID, cash.EntryDeposit, input.PaidAmount, description); err != nil {
					return fmt.Errorf("record cash entry: %w", err)
				}
			}
		}

		// Stock leaves the shelf at sale time, regardless of the physical
		// handoff timing, so the decrement uses the sale quantity.
		for _, l := range lines {
			reason := fmt.Sprintf("sale %s", order.Number)
			if _, err := s.stock.Decrease(ctx, l.ProductID, input.LocationID, l.Quantity, reason); err != nil {
				return err
			}
		}

		if isEdit && s.auditor != nil {
			changes := map[string]any{
				"final_total":    order.FinalTotal.String(),
				"paid_amount":    order.PaidAmount.String(),
				"payment_status": string(order.PaymentStatus),
				"line_count":     len(lines),
			}
			if err := s.auditor.LogChange(ctx, "order", order.ID, "updated", changes); err != nil {
				return fmt.Errorf("audit order update: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return Order{}, err
		}
		return Order{}, apperror.NewCheckoutFailed(err)
	}

	logger.Info(ctx, "checkout completed",
		"order_id", order.ID,
		"number", order.Number,
		"final_total", order.FinalTotal.String(),
		"payment_status", string(order.PaymentStatus),
		"edit", isEdit,
	)

	return order, nil
}

// GetOrder returns an order with its lines and payment history. The three
// reads run in one read-only transaction so a concurrent edit cannot produce
// an order paired with another version's lines.
func (s *Service) GetOrder(ctx context.Context, orderID id.ID) (Order, []Payment, error) {
	var order Order
	var payments []Payment
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.repo.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		order.Lines, err = s.repo.GetLines(ctx, orderID)
		if err != nil {
			return err
		}
		payments, err = s.repo.ListPayments(ctx, orderID)
		return err
	})
	if err != nil {
		return Order{}, nil, err
	}
	return order, payments, nil
}

func resolvePaymentStatus(paid, finalTotal types.Money) PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(finalTotal):
		return PaymentPaid
	case paid.IsPositive():
		return PaymentPartial
	default:
		return PaymentPending
	}
}

func resolveDeliveryStatus(intent DeliveryIntent) DeliveryStatus {
	switch {
	case intent.FullyDelivered:
		return DeliveryComplete
	case len(intent.PerLine) > 0:
		return DeliveryPartial
	default:
		return DeliveryAwaiting
	}
}

func buildLines(orderID id.ID, cartLines []cart.Line, intent DeliveryIntent) []OrderLine {
	lines := make([]OrderLine, 0, len(cartLines))
	for _, cl := range cartLines {
		delivered := int64(0)
		if intent.FullyDelivered {
			delivered = cl.Quantity
		} else if d, ok := intent.PerLine[cl.ProductID]; ok {
			if d > cl.Quantity {
				d = cl.Quantity
			}
			delivered = d
		}
		lines = append(lines, OrderLine{
			ID:                id.New(),
			OrderID:           orderID,
			ProductID:         cl.ProductID,
			Quantity:          cl.Quantity,
			UnitPrice:         cl.UnitPrice,
			DiscountPerUnit:   cl.DiscountPerUnit,
			DeliveredQuantity: delivered,
		})
	}
	return lines
}
