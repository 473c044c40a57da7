package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/storefront-pricing-core/internal/model"
	"github.com/fairyhunter13/storefront-pricing-core/internal/service"
	"github.com/fairyhunter13/storefront-pricing-core/pkg/database"
)

// PoolInterface defines the database operations needed by ProductRepository.
// This allows for easier testing with mocks.
type PoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ProductRepository provides data access for products using pgx.
type ProductRepository struct {
	pool PoolInterface
}

// NewProductRepository creates a new ProductRepository with the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// NewProductRepositoryWithPool creates a ProductRepository with a custom pool
// interface. This is primarily used for testing.
func NewProductRepositoryWithPool(pool PoolInterface) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `id, name, price, list_price, count_in_stock, num_sales,
	flash_sale_id, flash_sale_end_date, flash_sale_discount, created_at`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.ListPrice,
		&p.CountInStock,
		&p.NumSales,
		&p.FlashSaleID,
		&p.FlashSaleEndDate,
		&p.FlashSaleDiscount,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID retrieves a product by its id.
// Returns nil, nil if the product is not found (service layer handles this).
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get product by id %s: %w", id, err)
	}
	return p, nil
}

// GetForUpdate retrieves a product with a row lock (SELECT FOR UPDATE).
// Concurrent stock mutations for the same product serialize on this lock.
// Returns service.ErrProductNotFound if the product doesn't exist.
func (r *ProductRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`

	p, err := scanProduct(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product for update %s: %w", id, err)
	}
	return p, nil
}

// UpdateStock sets a product's stock to an absolute value.
// Must be called within a transaction after locking the row.
func (r *ProductRepository) UpdateStock(ctx context.Context, tx database.TxQuerier, id string, newStock int) error {
	query := `UPDATE products SET count_in_stock = $2 WHERE id = $1`

	_, err := tx.Exec(ctx, query, id, newStock)
	if err != nil {
		return fmt.Errorf("update stock for %s: %w", id, err)
	}
	return nil
}

// IncrementSales adds the full sold quantity to num_sales. The counter is
// monotonic and independent of stock clamping.
func (r *ProductRepository) IncrementSales(ctx context.Context, tx database.TxQuerier, id string, quantity int) error {
	query := `UPDATE products SET num_sales = num_sales + $2 WHERE id = $1`

	_, err := tx.Exec(ctx, query, id, quantity)
	if err != nil {
		return fmt.Errorf("increment sales for %s: %w", id, err)
	}
	return nil
}

// SetSaleFields writes the denormalized flash-sale trio onto a product.
func (r *ProductRepository) SetSaleFields(ctx context.Context, id, saleID string, endDate time.Time, discount decimal.Decimal) error {
	query := `UPDATE products
		SET flash_sale_id = $2, flash_sale_end_date = $3, flash_sale_discount = $4
		WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, id, saleID, endDate, discount)
	if err != nil {
		return fmt.Errorf("set sale fields for %s: %w", id, err)
	}
	return nil
}

// ClearSaleFields nulls the denormalized flash-sale trio on a product.
func (r *ProductRepository) ClearSaleFields(ctx context.Context, id string) error {
	query := `UPDATE products
		SET flash_sale_id = NULL, flash_sale_end_date = NULL, flash_sale_discount = NULL
		WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("clear sale fields for %s: %w", id, err)
	}
	return nil
}
