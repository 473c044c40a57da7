package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Coupon is a reusable discount code capped by a usage limit. Lookup by code
// is case-sensitive. UsageCount only ever grows; the redemption trail in
// coupon_redemptions is append-only.
type Coupon struct {
	ID              string          `json:"id"`
	Code            string          `json:"code"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	UsageCount      int             `json:"usage_count"`
	UsageLimit      int             `json:"usage_limit"`
	CreatedAt       time.Time       `json:"-"`
}

// CouponResponse is the API response DTO for GET /api/coupons/:code.
type CouponResponse struct {
	Code            string          `json:"code"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	UsageCount      int             `json:"usage_count"`
	UsageLimit      int             `json:"usage_limit"`
	Orders          []string        `json:"orders"`
}

// CouponValidation is the result of a successful coupon validation.
type CouponValidation struct {
	Code            string          `json:"code"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// ValidateCouponRequest is the DTO for POST /api/coupons/validate.
type ValidateCouponRequest struct {
	Code string `json:"code" validate:"required,notblank,max=255"`
}

// ApplyCouponRequest is the DTO for POST /api/coupons/apply.
type ApplyCouponRequest struct {
	Code    string `json:"code" validate:"required,notblank,max=255"`
	OrderID string `json:"order_id" validate:"required,notblank,max=255"`
}
