package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/domain/ledger/stock"
)

const (
	stockEntriesTable   = "stock_ledger_entries"
	stockMovementsTable = "stock_movements"
	locationsTable      = "stock_locations"
)

// StockRepo implements stock.Repository.
type StockRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewStockRepo creates a new stock ledger repository.
func NewStockRepo(txManager *TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetEntry returns the entry for (product, location), zero default if absent.
func (r *StockRepo) GetEntry(ctx context.Context, productID, locationID id.ID) (stock.Entry, error) {
	q := r.builder.Select(
		"product_id", "location_id", "quantity", "unit_cost", "total_value", "updated_at",
	).From(stockEntriesTable).
		Where(squirrel.Eq{
			"product_id":  productID,
			"location_id": locationID,
		}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return stock.Entry{}, fmt.Errorf("build query: %w", err)
	}

	var entry stock.Entry
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &entry, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return stock.ZeroEntry(productID, locationID), nil
		}
		return stock.Entry{}, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// GetEntryForUpdate returns the entry with a pessimistic row lock.
func (r *StockRepo) GetEntryForUpdate(ctx context.Context, productID, locationID id.ID) (stock.Entry, error) {
	if r.txManager.GetTx(ctx) == nil {
		return stock.Entry{}, fmt.Errorf("GetEntryForUpdate requires transaction context")
	}

	sql := `
		SELECT product_id, location_id, quantity, unit_cost, total_value, updated_at
		FROM stock_ledger_entries
		WHERE product_id = $1 AND location_id = $2
		FOR UPDATE
	`

	var entry stock.Entry
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &entry, sql, productID, locationID); err != nil {
		if pgxscan.NotFound(err) {
			return stock.ZeroEntry(productID, locationID), nil
		}
		return stock.Entry{}, fmt.Errorf("get entry for update: %w", err)
	}
	return entry, nil
}

// UpsertEntry inserts or updates the entry for its (product, location) pair.
func (r *StockRepo) UpsertEntry(ctx context.Context, entry stock.Entry) error {
	sql := `
		INSERT INTO stock_ledger_entries (
			product_id, location_id, quantity, unit_cost, total_value, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (product_id, location_id) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			unit_cost = EXCLUDED.unit_cost,
			total_value = EXCLUDED.total_value,
			updated_at = EXCLUDED.updated_at
	`

	querier := r.txManager.GetQuerier(ctx)
	_, err := querier.Exec(ctx, sql,
		entry.ProductID, entry.LocationID,
		entry.Quantity, entry.UnitCost, entry.TotalValue, entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert entry: %w", err)
	}
	return nil
}

// InsertMovements batch inserts movement rows.
func (r *StockRepo) InsertMovements(ctx context.Context, movements []stock.Movement) error {
	if len(movements) == 0 {
		return nil
	}

	columns := []string{
		"id", "product_id", "location_id", "direction",
		"quantity", "unit_price", "total_value", "reason", "created_at",
	}

	// Fast path: COPY when inside a transaction.
	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, []any{
				m.ID, m.ProductID, m.LocationID, m.Direction,
				m.Quantity, m.UnitPrice, m.TotalValue, m.Reason, m.CreatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, stockMovementsTable, columns, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	// Fallback: non-transactional insert. Prefer calling within tx.
	q := r.builder.Insert(stockMovementsTable).Columns(columns...)
	for _, m := range movements {
		q = q.Values(
			m.ID, m.ProductID, m.LocationID, m.Direction,
			m.Quantity, m.UnitPrice, m.TotalValue, m.Reason, m.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}
	return nil
}

// ListMovements returns movement history, newest first.
func (r *StockRepo) ListMovements(ctx context.Context, filter stock.MovementFilter) ([]stock.Movement, error) {
	q := r.builder.Select(
		"id", "product_id", "location_id", "direction",
		"quantity", "unit_price", "total_value", "reason", "created_at",
	).From(stockMovementsTable)

	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.LocationID != nil {
		q = q.Where(squirrel.Eq{"location_id": *filter.LocationID})
	}
	if filter.Direction != nil {
		q = q.Where(squirrel.Eq{"direction": *filter.Direction})
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

	var movements []stock.Movement
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}
	return movements, nil
}

// GetLocation returns a stock location or NOT_FOUND.
func (r *StockRepo) GetLocation(ctx context.Context, locationID id.ID) (stock.Location, error) {
	q := r.builder.Select("id", "name", "kind").
		From(locationsTable).
		Where(squirrel.Eq{"id": locationID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return stock.Location{}, fmt.Errorf("build query: %w", err)
	}

	var location stock.Location
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &location, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return stock.Location{}, apperror.NewNotFound("stock location", locationID)
		}
		return stock.Location{}, fmt.Errorf("get location: %w", err)
	}
	return location, nil
}

// Ensure interface compliance.
var _ stock.Repository = (*StockRepo)(nil)
