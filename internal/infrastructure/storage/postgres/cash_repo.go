package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/ledger/cash"
)

const (
	cashRegistersTable = "cash_registers"
	cashEntriesTable   = "cash_ledger_entries"
)

// CashRepo implements cash.Repository.
type CashRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewCashRepo creates a new cash ledger repository.
func NewCashRepo(txManager *TxManager) *CashRepo {
	return &CashRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetRegister returns a register or NOT_FOUND.
func (r *CashRepo) GetRegister(ctx context.Context, registerID id.ID) (cash.Register, error) {
	q := r.builder.Select("id", "name", "current_amount", "updated_at").
		From(cashRegistersTable).
		Where(squirrel.Eq{"id": registerID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return cash.Register{}, fmt.Errorf("build query: %w", err)
	}

	var register cash.Register
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &register, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return cash.Register{}, apperror.NewNotFound("cash register", registerID)
		}
		return cash.Register{}, fmt.Errorf("get register: %w", err)
	}
	return register, nil
}

// GetRegisterForUpdate returns the register with a pessimistic row lock.
func (r *CashRepo) GetRegisterForUpdate(ctx context.Context, registerID id.ID) (cash.Register, error) {
	if r.txManager.GetTx(ctx) == nil {
		return cash.Register{}, fmt.Errorf("GetRegisterForUpdate requires transaction context")
	}

	sql := `
		SELECT id, name, current_amount, updated_at
		FROM cash_registers
		WHERE id = $1
		FOR UPDATE
	`

	var register cash.Register
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &register, sql, registerID); err != nil {
		if pgxscan.NotFound(err) {
			return cash.Register{}, apperror.NewNotFound("cash register", registerID)
		}
		return cash.Register{}, fmt.Errorf("get register for update: %w", err)
	}
	return register, nil
}

// UpdateRegisterAmount sets the register balance.
func (r *CashRepo) UpdateRegisterAmount(ctx context.Context, registerID id.ID, amount types.Money) error {
	q := r.builder.Update(cashRegistersTable).
		Set("current_amount", amount).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": registerID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update register amount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("cash register", registerID)
	}
	return nil
}

// InsertEntry appends one ledger entry.
func (r *CashRepo) InsertEntry(ctx context.Context, entry cash.Entry) error {
	q := r.builder.Insert(cashEntriesTable).
		Columns("id", "register_id", "entry_type", "amount", "description", "created_at").
		Values(entry.ID, entry.RegisterID, entry.Type, entry.Amount, entry.Description, entry.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// ListEntries returns ledger history for a register, newest first.
func (r *CashRepo) ListEntries(ctx context.Context, registerID id.ID, filter cash.EntryFilter) ([]cash.Entry, error) {
	q := r.builder.Select("id", "register_id", "entry_type", "amount", "description", "created_at").
		From(cashEntriesTable).
		Where(squirrel.Eq{"register_id": registerID})

	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"entry_type": *filter.Type})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.ToDate})
	}

	q = q.OrderBy("created_at DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []cash.Entry
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}
	return entries, nil
}

// Ensure interface compliance.
var _ cash.Repository = (*CashRepo)(nil)
