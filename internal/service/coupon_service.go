package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/storefront-pricing-core/internal/model"
	"github.com/fairyhunter13/storefront-pricing-core/pkg/database"
)

// CouponRepositoryInterface defines the interface for coupon data access.
type CouponRepositoryInterface interface {
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	GetByCodeForUpdate(ctx context.Context, tx database.TxQuerier, code string) (*model.Coupon, error)
	HasRedemption(ctx context.Context, tx database.TxQuerier, couponID, orderID string) (bool, error)
	InsertRedemption(ctx context.Context, tx database.TxQuerier, couponID, orderID string) error
	IncrementUsage(ctx context.Context, tx database.TxQuerier, couponID string) error
	GetOrdersByCoupon(ctx context.Context, couponID string) ([]string, error)
}

// CouponService provides business logic for coupon validation and
// application. Application is guarded so a retried call for the same order
// never increments usage twice.
type CouponService struct {
	pool       TxBeginner
	couponRepo CouponRepositoryInterface
}

// NewCouponService creates a new CouponService with the given pool and repository.
func NewCouponService(pool *pgxpool.Pool, couponRepo CouponRepositoryInterface) *CouponService {
	return &CouponService{pool: pool, couponRepo: couponRepo}
}

// NewCouponServiceWithTxBeginner creates a CouponService with a custom TxBeginner.
// Primarily used for testing.
func NewCouponServiceWithTxBeginner(pool TxBeginner, couponRepo CouponRepositoryInterface) *CouponService {
	return &CouponService{pool: pool, couponRepo: couponRepo}
}

// Validate checks a coupon code for existence and remaining headroom.
// The lookup is a case-sensitive exact match.
// Returns:
//   - ErrCouponNotFound if no coupon matches the code
//   - ErrUsageLimitReached if usage_count has reached usage_limit
func (s *CouponService) Validate(ctx context.Context, code string) (*model.CouponValidation, error) {
	coupon, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	if coupon.UsageCount >= coupon.UsageLimit {
		return nil, ErrUsageLimitReached
	}

	return &model.CouponValidation{
		Code:            coupon.Code,
		DiscountPercent: coupon.DiscountPercent,
	}, nil
}

// Apply records a coupon's usage against an order exactly once.
// The coupon is re-resolved by code under a row lock rather than trusting a
// caller-supplied id, so a stale reference cannot mutate the wrong row.
// Returns:
//   - ErrCouponNotFound if the coupon no longer exists
//   - ErrCouponAlreadyApplied if this order already redeemed the coupon
//   - ErrUsageLimitReached if the limit was hit before this application
func (s *CouponService) Apply(ctx context.Context, code, orderID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	// 1. Lock the coupon row (SELECT FOR UPDATE)
	coupon, err := s.couponRepo.GetByCodeForUpdate(ctx, tx, code)
	if err != nil {
		return err
	}

	// 2. Dedup check under the lock; the PK on (coupon_id, order_id) backstops it
	applied, err := s.couponRepo.HasRedemption(ctx, tx, coupon.ID, orderID)
	if err != nil {
		return err
	}
	if applied {
		return ErrCouponAlreadyApplied
	}

	// 3. Re-check the limit under the lock
	if coupon.UsageCount >= coupon.UsageLimit {
		return ErrUsageLimitReached
	}

	// 4. Append to the redemption trail and bump the counter
	if err := s.couponRepo.InsertRedemption(ctx, tx, coupon.ID, orderID); err != nil {
		return err
	}
	if err := s.couponRepo.IncrementUsage(ctx, tx, coupon.ID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetByCode retrieves a coupon with its redemption trail.
// Returns ErrCouponNotFound if the coupon doesn't exist.
func (s *CouponService) GetByCode(ctx context.Context, code string) (*model.CouponResponse, error) {
	coupon, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}

	orders, err := s.couponRepo.GetOrdersByCoupon(ctx, coupon.ID)
	if err != nil {
		return nil, fmt.Errorf("get redemptions: %w", err)
	}

	return &model.CouponResponse{
		Code:            coupon.Code,
		DiscountPercent: coupon.DiscountPercent,
		UsageCount:      coupon.UsageCount,
		UsageLimit:      coupon.UsageLimit,
		Orders:          orders,
	}, nil
}
