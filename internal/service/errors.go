package service

import "errors"

var (
	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")

	// ErrProductNotFound is returned when a product cannot be found
	ErrProductNotFound = errors.New("product not found")

	// ErrSaleNotFound is returned when a flash sale cannot be found
	ErrSaleNotFound = errors.New("flash sale not found")

	// ErrCouponNotFound is returned when a coupon cannot be found
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrUsageLimitReached is returned when a coupon's usage count has hit its limit
	ErrUsageLimitReached = errors.New("coupon usage limit reached")

	// ErrCouponAlreadyApplied is returned when a coupon was already applied to the same order
	ErrCouponAlreadyApplied = errors.New("coupon already applied to order")

	// ErrSaleAlreadyRecorded is returned when a sale was already recorded for
	// the same (order, product) pair; the retried call had no further effect
	ErrSaleAlreadyRecorded = errors.New("sale already recorded for order line")
)
