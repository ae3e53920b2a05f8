package cash

import (
	"context"
	"fmt"
	"time"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/core/tx"
	"backoffice/internal/core/types"
	"backoffice/pkg/logger"
)

// Service provides business operations for cash registers.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new cash ledger service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// GetRegister returns a register with its current balance.
func (s *Service) GetRegister(ctx context.Context, registerID id.ID) (Register, error) {
	return s.repo.GetRegister(ctx, registerID)
}

// Record appends a ledger entry and moves the register balance in one
// transaction. Deposits add, withdrawals subtract. A withdrawal may push the
// balance below zero; the drawer is reconciled out of band.
func (s *Service) Record(ctx context.Context, registerID id.ID, entryType EntryType, amount types.Money, description string) (Entry, error) {
	if !amount.IsPositive() {
		return Entry{}, apperror.NewInvalidAmount(amount.String())
	}
	switch entryType {
	case EntryDeposit, EntryWithdrawal:
	default:
		return Entry{}, apperror.NewValidation("unknown entry type").
			WithDetail("type", string(entryType))
	}

	entry := NewEntry(registerID, entryType, amount, description)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		register, err := s.repo.GetRegisterForUpdate(ctx, registerID)
		if err != nil {
			return fmt.Errorf("get register for update: %w", err)
		}

		newAmount := register.CurrentAmount.Add(entry.Signed())

		if err := s.repo.InsertEntry(ctx, entry); err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}
		if err := s.repo.UpdateRegisterAmount(ctx, registerID, newAmount); err != nil {
			return fmt.Errorf("update register amount: %w", err)
		}
		return nil
	})
	if err != nil {
		return Entry{}, err
	}

	logger.Info(ctx, "cash entry recorded",
		"register_id", registerID,
		"type", string(entryType),
		"amount", amount.String(),
	)

	return entry, nil
}

// Entries returns ledger history for a register.
func (s *Service) Entries(ctx context.Context, registerID id.ID, filter EntryFilter) ([]Entry, error) {
	if _, err := s.repo.GetRegister(ctx, registerID); err != nil {
		return nil, err
	}
	return s.repo.ListEntries(ctx, registerID, filter)
}

// BalanceAt replays ledger history to the given instant. Used by the
// closing report to reconcile the drawer against the stored balance.
func (s *Service) BalanceAt(ctx context.Context, registerID id.ID, at time.Time) (types.Money, error) {
	entries, err := s.repo.ListEntries(ctx, registerID, EntryFilter{ToDate: &at})
	if err != nil {
		return types.Zero(), err
	}
	balance := types.Zero()
	for _, e := range entries {
		balance = balance.Add(e.Signed())
	}
	return balance, nil
}
