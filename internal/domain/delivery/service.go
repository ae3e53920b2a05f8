package delivery

import (
	"context"
	"fmt"
	"time"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/core/tx"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/ledger/stock"
	"backoffice/pkg/logger"
)

// StockLedger is the slice of the stock service receipt processing needs.
type StockLedger interface {
	Increase(ctx context.Context, productID, locationID id.ID, qty int64, unitPrice types.Money, reason string) (stock.Entry, error)
	GetLocation(ctx context.Context, locationID id.ID) (stock.Location, error)
}

// Auditor records entity change history.
type Auditor interface {
	LogChange(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error
}

// Service processes delivery receipts. Item updates, ledger increases and
// the note status change happen in one transaction.
type Service struct {
	repo      Repository
	stock     StockLedger
	txManager tx.Manager
	auditor   Auditor
}

// NewService creates a delivery receipt service. auditor may be nil.
func NewService(repo Repository, stockLedger StockLedger, txManager tx.Manager, auditor Auditor) *Service {
	return &Service{
		repo:      repo,
		stock:     stockLedger,
		txManager: txManager,
		auditor:   auditor,
	}
}

// Receive books the received quantities of a note into the stock ledger at
// the destination location and marks the note received. Warehouses and
// points of sale are both valid destinations; a POS receipt lands on the POS
// ledger row, not on some warehouse.
func (s *Service) Receive(ctx context.Context, noteID id.ID, received map[id.ID]int64, locationID id.ID) (Note, error) {
	for itemID, qty := range received {
		if qty < 0 {
			return Note{}, apperror.NewValidation("received quantity cannot be negative").
				WithDetail("item_id", itemID).
				WithDetail("quantity", qty)
		}
	}

	var note Note
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		note, err = s.repo.GetNote(ctx, noteID)
		if err != nil {
			return err
		}
		if note.Status == NoteReceived {
			return apperror.NewConflict("delivery note is already received").
				WithDetail("note_id", noteID)
		}

		if _, err := s.stock.GetLocation(ctx, locationID); err != nil {
			return err
		}

		items, err := s.repo.GetItems(ctx, noteID)
		if err != nil {
			return fmt.Errorf("get items: %w", err)
		}

		booked := 0
		for i := range items {
			qty, ok := received[items[i].ID]
			if !ok || qty == 0 {
				continue
			}
			if err := s.repo.UpdateItemReceived(ctx, items[i].ID, qty); err != nil {
				return fmt.Errorf("update item %s: %w", items[i].ID, err)
			}
			items[i].QuantityReceived = qty

			reason := fmt.Sprintf("delivery %s", note.Number)
			if _, err := s.stock.Increase(ctx, items[i].ProductID, locationID, qty, items[i].UnitPrice, reason); err != nil {
				return err
			}
			booked++
		}
		if booked == 0 {
			return apperror.NewValidation("no received quantities to book").
				WithDetail("note_id", noteID)
		}

		now := time.Now().UTC()
		if err := s.repo.MarkReceived(ctx, noteID, locationID, now); err != nil {
			return fmt.Errorf("mark received: %w", err)
		}
		note.Status = NoteReceived
		note.LocationID = &locationID
		note.ReceivedAt = &now
		note.Items = items

		if s.auditor != nil {
			changes := map[string]any{
				"location_id":  locationID,
				"items_booked": booked,
			}
			if err := s.auditor.LogChange(ctx, "delivery_note", noteID, "received", changes); err != nil {
				return fmt.Errorf("audit receipt: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return Note{}, err
		}
		return Note{}, apperror.NewReceiptFailed(err)
	}

	logger.Info(ctx, "delivery received",
		"note_id", noteID,
		"number", note.Number,
		"location_id", locationID,
	)

	return note, nil
}

// Get returns a note with its items.
func (s *Service) Get(ctx context.Context, noteID id.ID) (Note, error) {
	note, err := s.repo.GetNote(ctx, noteID)
	if err != nil {
		return Note{}, err
	}
	items, err := s.repo.GetItems(ctx, noteID)
	if err != nil {
		return Note{}, err
	}
	note.Items = items
	return note, nil
}
