package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/domain/checkout"
)

const (
	ordersTable     = "orders"
	orderLinesTable = "order_lines"
	paymentsTable   = "payments"
)

// OrderRepo implements checkout.Repository.
type OrderRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewOrderRepo creates a new order repository.
func NewOrderRepo(txManager *TxManager) *OrderRepo {
	return &OrderRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// InsertOrder persists a new order header.
func (r *OrderRepo) InsertOrder(ctx context.Context, order checkout.Order) error {
	q := r.builder.Insert(ordersTable).
		Columns(
			"id", "number", "client_id", "location_id",
			"subtotal", "discount_total", "final_total",
			"paid_amount", "remaining_amount",
			"payment_status", "delivery_status", "notes",
			"version", "created_at", "updated_at",
		).
		Values(
			order.ID, order.Number, order.ClientID, order.LocationID,
			order.Subtotal, order.DiscountTotal, order.FinalTotal,
			order.PaidAmount, order.RemainingAmount,
			order.PaymentStatus, order.DeliveryStatus, order.Notes,
			order.Version, order.CreatedAt, order.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// UpdateOrder rewrites an order header guarded by the version counter.
func (r *OrderRepo) UpdateOrder(ctx context.Context, order checkout.Order) error {
	q := r.builder.Update(ordersTable).
		Set("client_id", order.ClientID).
		Set("location_id", order.LocationID).
		Set("subtotal", order.Subtotal).
		Set("discount_total", order.DiscountTotal).
		Set("final_total", order.FinalTotal).
		Set("paid_amount", order.PaidAmount).
		Set("remaining_amount", order.RemainingAmount).
		Set("payment_status", order.PaymentStatus).
		Set("delivery_status", order.DeliveryStatus).
		Set("notes", order.Notes).
		Set("version", order.Version+1).
		Set("updated_at", order.UpdatedAt).
		Where(squirrel.Eq{
			"id":      order.ID,
			"version": order.Version,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("order", order.ID)
	}
	return nil
}

// GetOrder returns an order header (without lines) or NOT_FOUND.
func (r *OrderRepo) GetOrder(ctx context.Context, orderID id.ID) (checkout.Order, error) {
	q := r.builder.Select(
		"id", "number", "client_id", "location_id",
		"subtotal", "discount_total", "final_total",
		"paid_amount", "remaining_amount",
		"payment_status", "delivery_status", "notes",
		"version", "created_at", "updated_at",
	).From(ordersTable).
		Where(squirrel.Eq{"id": orderID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return checkout.Order{}, fmt.Errorf("build query: %w", err)
	}

	var order checkout.Order
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &order, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return checkout.Order{}, apperror.NewNotFound("order", orderID)
		}
		return checkout.Order{}, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// GetLines returns the order's lines in insertion order.
func (r *OrderRepo) GetLines(ctx context.Context, orderID id.ID) ([]checkout.OrderLine, error) {
	q := r.builder.Select(
		"id", "order_id", "product_id", "quantity",
		"unit_price", "discount_per_unit", "delivered_quantity",
	).From(orderLinesTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("position")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []checkout.OrderLine
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("select lines: %w", err)
	}
	return lines, nil
}

// ReplaceLines swaps the line set: delete-then-insert in one batch round-trip.
func (r *OrderRepo) ReplaceLines(ctx context.Context, orderID id.ID, lines []checkout.OrderLine) error {
	if r.txManager.GetTx(ctx) == nil {
		return fmt.Errorf("ReplaceLines requires transaction context")
	}

	queries := []BatchQuery{{
		SQL:  fmt.Sprintf("DELETE FROM %s WHERE order_id = $1", orderLinesTable),
		Args: []any{orderID},
	}}

	insertSQL := fmt.Sprintf(`
		INSERT INTO %s (
			id, order_id, product_id, quantity,
			unit_price, discount_per_unit, delivered_quantity, position
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, orderLinesTable)

	for i, l := range lines {
		queries = append(queries, BatchQuery{
			SQL: insertSQL,
			Args: []any{
				l.ID, orderID, l.ProductID, l.Quantity,
				l.UnitPrice, l.DiscountPerUnit, l.DeliveredQuantity, i,
			},
		})
	}

	executor := NewBatchExecutor(r.txManager)
	if err := executor.ExecuteBatch(ctx, queries); err != nil {
		return fmt.Errorf("replace lines: %w", err)
	}
	return nil
}

// InsertPayment appends one payment row.
func (r *OrderRepo) InsertPayment(ctx context.Context, payment checkout.Payment) error {
	q := r.builder.Insert(paymentsTable).
		Columns("id", "order_id", "amount", "method", "notes", "created_at").
		Values(payment.ID, payment.OrderID, payment.Amount, payment.Method, payment.Notes, payment.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// ListPayments returns payments for an order, oldest first.
func (r *OrderRepo) ListPayments(ctx context.Context, orderID id.ID) ([]checkout.Payment, error) {
	q := r.builder.Select("id", "order_id", "amount", "method", "notes", "created_at").
		From(paymentsTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var payments []checkout.Payment
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &payments, sql, args...); err != nil {
		return nil, fmt.Errorf("select payments: %w", err)
	}
	return payments, nil
}

// Ensure interface compliance.
var _ checkout.Repository = (*OrderRepo)(nil)
