package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/domain/catalog/product"
)

const productsTable = "products"

var productColumns = []string{
	"id", "name", "reference", "purchase_price", "sale_price",
	"aggregate_stock", "category", "created_at", "updated_at",
}

// ProductRepo implements product.Repository.
type ProductRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *TxManager) *ProductRepo {
	return &ProductRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByID returns a product or NOT_FOUND.
func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (product.Product, error) {
	q := r.builder.Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"id": productID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return product.Product{}, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return product.Product{}, apperror.NewNotFound("product", productID)
		}
		return product.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByIDs returns products for the given ids; missing ids are skipped.
func (r *ProductRepo) GetByIDs(ctx context.Context, productIDs []id.ID) ([]product.Product, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	q := r.builder.Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"id": productIDs}).
		OrderBy("name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var products []product.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &products, sql, args...); err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	return products, nil
}

// AdjustAggregateStock shifts aggregate_stock by delta.
func (r *ProductRepo) AdjustAggregateStock(ctx context.Context, productID id.ID, delta int64) error {
	q := r.builder.Update(productsTable).
		Set("aggregate_stock", squirrel.Expr("aggregate_stock + ?", delta)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("adjust aggregate stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID)
	}
	return nil
}

// Ensure interface compliance.
var _ product.Repository = (*ProductRepo)(nil)
