package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/domain/delivery"
)

const (
	deliveryNotesTable = "delivery_notes"
	deliveryItemsTable = "delivery_note_items"
)

// DeliveryRepo implements delivery.Repository.
type DeliveryRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewDeliveryRepo creates a new delivery note repository.
func NewDeliveryRepo(txManager *TxManager) *DeliveryRepo {
	return &DeliveryRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetNote returns a note header (without items) or NOT_FOUND.
func (r *DeliveryRepo) GetNote(ctx context.Context, noteID id.ID) (delivery.Note, error) {
	q := r.builder.Select(
		"id", "number", "supplier_id", "status", "location_id", "received_at", "created_at",
	).From(deliveryNotesTable).
		Where(squirrel.Eq{"id": noteID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return delivery.Note{}, fmt.Errorf("build query: %w", err)
	}

	var note delivery.Note
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &note, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return delivery.Note{}, apperror.NewNotFound("delivery note", noteID)
		}
		return delivery.Note{}, fmt.Errorf("get note: %w", err)
	}
	return note, nil
}

// GetItems returns the note's items.
func (r *DeliveryRepo) GetItems(ctx context.Context, noteID id.ID) ([]delivery.Item, error) {
	q := r.builder.Select(
		"id", "note_id", "product_id", "quantity", "quantity_received", "unit_price",
	).From(deliveryItemsTable).
		Where(squirrel.Eq{"note_id": noteID}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []delivery.Item
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	return items, nil
}

// UpdateItemReceived writes an item's received quantity.
func (r *DeliveryRepo) UpdateItemReceived(ctx context.Context, itemID id.ID, received int64) error {
	q := r.builder.Update(deliveryItemsTable).
		Set("quantity_received", received).
		Where(squirrel.Eq{"id": itemID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update item received: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("delivery note item", itemID)
	}
	return nil
}

// MarkReceived stamps the note received with its resolved destination.
func (r *DeliveryRepo) MarkReceived(ctx context.Context, noteID, locationID id.ID, receivedAt time.Time) error {
	q := r.builder.Update(deliveryNotesTable).
		Set("status", delivery.NoteReceived).
		Set("location_id", locationID).
		Set("received_at", receivedAt).
		Where(squirrel.Eq{"id": noteID}).
		Where(squirrel.NotEq{"status": delivery.NoteReceived})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("mark received: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConflict("delivery note is already received").
			WithDetail("note_id", noteID)
	}
	return nil
}

// Ensure interface compliance.
var _ delivery.Repository = (*DeliveryRepo)(nil)
