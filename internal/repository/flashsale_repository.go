package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/storefront-pricing-core/internal/model"
	"github.com/fairyhunter13/storefront-pricing-core/pkg/database"
)

// SalePoolInterface defines the database operations needed by FlashSaleRepository.
type SalePoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// FlashSaleRepository provides data access for flash sales using pgx.
type FlashSaleRepository struct {
	pool SalePoolInterface
}

// NewFlashSaleRepository creates a new FlashSaleRepository with the given pool.
func NewFlashSaleRepository(pool *pgxpool.Pool) *FlashSaleRepository {
	return &FlashSaleRepository{pool: pool}
}

// NewFlashSaleRepositoryWithPool creates a FlashSaleRepository with a custom
// pool interface. This is primarily used for testing.
func NewFlashSaleRepositoryWithPool(pool SalePoolInterface) *FlashSaleRepository {
	return &FlashSaleRepository{pool: pool}
}

const saleColumns = `id, name, start_date, end_date, status, discount_type,
	discount_percent, discount_amount, total_quantity, sold_quantity, created_at`

func scanSale(row pgx.Row) (*model.FlashSale, error) {
	var s model.FlashSale
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.StartDate,
		&s.EndDate,
		&s.Status,
		&s.DiscountType,
		&s.DiscountPercent,
		&s.DiscountAmount,
		&s.TotalQuantity,
		&s.SoldQuantity,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Insert inserts a new flash sale and its product memberships.
func (r *FlashSaleRepository) Insert(ctx context.Context, sale *model.FlashSale) error {
	query := `INSERT INTO flash_sales
		(id, name, start_date, end_date, status, discount_type, discount_percent, discount_amount, total_quantity, sold_quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		sale.ID, sale.Name, sale.StartDate, sale.EndDate, sale.Status, sale.DiscountType,
		sale.DiscountPercent, sale.DiscountAmount, sale.TotalQuantity, sale.SoldQuantity)
	if err != nil {
		return fmt.Errorf("insert flash sale: %w", err)
	}
	return r.ReplaceProducts(ctx, sale.ID, sale.ProductIDs)
}

// Update rewrites a flash sale's mutable fields and product memberships.
func (r *FlashSaleRepository) Update(ctx context.Context, sale *model.FlashSale) error {
	query := `UPDATE flash_sales
		SET name = $2, start_date = $3, end_date = $4, status = $5,
			discount_percent = $6, total_quantity = $7
		WHERE id = $1`

	_, err := r.pool.Exec(ctx, query,
		sale.ID, sale.Name, sale.StartDate, sale.EndDate, sale.Status,
		sale.DiscountPercent, sale.TotalQuantity)
	if err != nil {
		return fmt.Errorf("update flash sale %s: %w", sale.ID, err)
	}
	return r.ReplaceProducts(ctx, sale.ID, sale.ProductIDs)
}

// GetByID retrieves a flash sale with its member product ids.
// Returns nil, nil if the sale is not found (service layer handles this).
func (r *FlashSaleRepository) GetByID(ctx context.Context, id string) (*model.FlashSale, error) {
	query := `SELECT ` + saleColumns + ` FROM flash_sales WHERE id = $1`

	s, err := scanSale(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get flash sale by id %s: %w", id, err)
	}

	s.ProductIDs, err = r.GetProductIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListActive retrieves sales in active status whose window contains now.
func (r *FlashSaleRepository) ListActive(ctx context.Context, now time.Time) ([]model.FlashSale, error) {
	query := `SELECT ` + saleColumns + ` FROM flash_sales
		WHERE status = 'active' AND start_date <= $1 AND end_date >= $1
		ORDER BY end_date`

	return r.list(ctx, query, now)
}

// ListUpcoming retrieves scheduled sales whose window opens after now.
func (r *FlashSaleRepository) ListUpcoming(ctx context.Context, now time.Time) ([]model.FlashSale, error) {
	query := `SELECT ` + saleColumns + ` FROM flash_sales
		WHERE status = 'scheduled' AND start_date > $1
		ORDER BY start_date`

	return r.list(ctx, query, now)
}

func (r *FlashSaleRepository) list(ctx context.Context, query string, now time.Time) ([]model.FlashSale, error) {
	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("list flash sales: %w", err)
	}
	defer rows.Close()

	sales := []model.FlashSale{}
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan flash sale: %w", err)
		}
		sales = append(sales, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flash sale rows: %w", err)
	}

	for i := range sales {
		sales[i].ProductIDs, err = r.GetProductIDs(ctx, sales[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return sales, nil
}

// GetProductIDs retrieves the member product ids of a sale.
// On success, returns an empty slice (not nil) when the sale has no members.
func (r *FlashSaleRepository) GetProductIDs(ctx context.Context, saleID string) ([]string, error) {
	query := `SELECT product_id FROM flash_sale_products WHERE flash_sale_id = $1 ORDER BY product_id`

	rows, err := r.pool.Query(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("get products for sale %s: %w", saleID, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan sale product id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sale product rows: %w", err)
	}
	return ids, nil
}

// ReplaceProducts rewrites a sale's membership set.
func (r *FlashSaleRepository) ReplaceProducts(ctx context.Context, saleID string, productIDs []string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM flash_sale_products WHERE flash_sale_id = $1`, saleID); err != nil {
		return fmt.Errorf("clear products for sale %s: %w", saleID, err)
	}
	for _, productID := range productIDs {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO flash_sale_products (flash_sale_id, product_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			saleID, productID)
		if err != nil {
			return fmt.Errorf("add product %s to sale %s: %w", productID, saleID, err)
		}
	}
	return nil
}

// IncrementSold adds a sold quantity to the sale counter, clamped so it
// never exceeds total_quantity. Monotonic: never decremented.
func (r *FlashSaleRepository) IncrementSold(ctx context.Context, tx database.TxQuerier, saleID string, quantity int) error {
	query := `UPDATE flash_sales
		SET sold_quantity = LEAST(total_quantity, sold_quantity + $2)
		WHERE id = $1`

	_, err := tx.Exec(ctx, query, saleID, quantity)
	if err != nil {
		return fmt.Errorf("increment sold for sale %s: %w", saleID, err)
	}
	return nil
}
