package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/storefront-pricing-core/internal/model"
	"github.com/fairyhunter13/storefront-pricing-core/internal/service"
	"github.com/fairyhunter13/storefront-pricing-core/pkg/database"
)

// CouponPoolInterface defines the database operations needed by CouponRepository.
type CouponPoolInterface interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// CouponRepository provides data access for coupons using pgx.
type CouponRepository struct {
	pool CouponPoolInterface
}

// NewCouponRepository creates a new CouponRepository with the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// NewCouponRepositoryWithPool creates a CouponRepository with a custom pool
// interface. This is primarily used for testing.
func NewCouponRepositoryWithPool(pool CouponPoolInterface) *CouponRepository {
	return &CouponRepository{pool: pool}
}

const couponColumns = `id, code, discount_percent, usage_count, usage_limit, created_at`

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.DiscountPercent,
		&c.UsageCount,
		&c.UsageLimit,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByCode retrieves a coupon by its code. The lookup is case-sensitive.
// Returns nil, nil if the coupon is not found (service layer handles this).
func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`

	c, err := scanCoupon(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get coupon by code %s: %w", code, err)
	}
	return c, nil
}

// GetByCodeForUpdate retrieves a coupon with a row lock (SELECT FOR UPDATE).
// This locks the row until the transaction completes, serializing concurrent
// applications of the same coupon.
// Returns service.ErrCouponNotFound if the coupon doesn't exist.
func (r *CouponRepository) GetByCodeForUpdate(ctx context.Context, tx database.TxQuerier, code string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1 FOR UPDATE`

	c, err := scanCoupon(tx.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon for update %s: %w", code, err)
	}
	return c, nil
}

// HasRedemption reports whether the coupon was already applied to the order.
// Must be called within the same transaction that locked the coupon row.
func (r *CouponRepository) HasRedemption(ctx context.Context, tx database.TxQuerier, couponID, orderID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM coupon_redemptions WHERE coupon_id = $1 AND order_id = $2)`

	var exists bool
	if err := tx.QueryRow(ctx, query, couponID, orderID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check redemption for coupon %s order %s: %w", couponID, orderID, err)
	}
	return exists, nil
}

// InsertRedemption appends an order to the coupon's redemption trail.
// Returns service.ErrCouponAlreadyApplied if the pair already exists; the
// primary key on (coupon_id, order_id) is the backstop for the in-tx check.
func (r *CouponRepository) InsertRedemption(ctx context.Context, tx database.TxQuerier, couponID, orderID string) error {
	query := `INSERT INTO coupon_redemptions (coupon_id, order_id) VALUES ($1, $2)`

	_, err := tx.Exec(ctx, query, couponID, orderID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return service.ErrCouponAlreadyApplied
		}
		return fmt.Errorf("insert redemption: %w", err)
	}
	return nil
}

// IncrementUsage increments the coupon's usage_count by 1.
// Must be called within a transaction after locking the row.
func (r *CouponRepository) IncrementUsage(ctx context.Context, tx database.TxQuerier, couponID string) error {
	query := `UPDATE coupons SET usage_count = usage_count + 1 WHERE id = $1`

	_, err := tx.Exec(ctx, query, couponID)
	if err != nil {
		return fmt.Errorf("increment usage for %s: %w", couponID, err)
	}
	return nil
}

// GetOrdersByCoupon retrieves all order ids the coupon was applied to.
// On success, returns an empty slice (not nil) when no redemptions exist.
func (r *CouponRepository) GetOrdersByCoupon(ctx context.Context, couponID string) ([]string, error) {
	query := `SELECT order_id FROM coupon_redemptions WHERE coupon_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, couponID)
	if err != nil {
		return nil, fmt.Errorf("get redemptions for coupon %s: %w", couponID, err)
	}
	defer rows.Close()

	var orders []string
	for rows.Next() {
		var orderID string
		if err := rows.Scan(&orderID); err != nil {
			return nil, fmt.Errorf("scan redemption order_id: %w", err)
		}
		orders = append(orders, orderID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate redemption rows: %w", err)
	}

	// Return empty slice, not nil
	if orders == nil {
		orders = []string{}
	}

	return orders, nil
}
