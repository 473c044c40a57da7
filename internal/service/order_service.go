package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/storefront-pricing-core/internal/model"
	"github.com/fairyhunter13/storefront-pricing-core/internal/pricing"
)

// ProductReader is the read-only product access the order calculator needs.
type ProductReader interface {
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// CouponValidator validates a coupon code for use in a quote.
type CouponValidator interface {
	Validate(ctx context.Context, code string) (*model.CouponValidation, error)
}

// OrderService composes the order total calculator with coupon validation
// and effective-price reads. Delivery options and the tax rate are injected
// at construction, never hardcoded in the math.
type OrderService struct {
	products        ProductReader
	coupons         CouponValidator
	deliveryOptions []model.DeliveryOption
	taxRate         decimal.Decimal
	now             func() time.Time
}

// NewOrderService creates a new OrderService.
func NewOrderService(products ProductReader, coupons CouponValidator, deliveryOptions []model.DeliveryOption, taxRate decimal.Decimal) *OrderService {
	return &OrderService{
		products:        products,
		coupons:         coupons,
		deliveryOptions: deliveryOptions,
		taxRate:         taxRate,
		now:             time.Now,
	}
}

// NewOrderServiceWithClock creates an OrderService with a custom time source.
// Primarily used for testing.
func NewOrderServiceWithClock(products ProductReader, coupons CouponValidator, deliveryOptions []model.DeliveryOption, taxRate decimal.Decimal, now func() time.Time) *OrderService {
	return &OrderService{
		products:        products,
		coupons:         coupons,
		deliveryOptions: deliveryOptions,
		taxRate:         taxRate,
		now:             now,
	}
}

// Quote computes the price breakdown for a cart. Unit prices come from the
// caller's cart snapshot; only the optional coupon is resolved here.
// Returns:
//   - ErrInvalidRequest for an empty cart
//   - ErrCouponNotFound / ErrUsageLimitReached from coupon validation
//   - pricing.ErrInvalidDeliveryOption for an out-of-range delivery index
func (s *OrderService) Quote(ctx context.Context, req *model.QuoteRequest) (*model.QuoteResponse, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, ErrInvalidRequest
	}

	var discountPercent *decimal.Decimal
	if req.CouponCode != nil {
		validation, err := s.coupons.Validate(ctx, *req.CouponCode)
		if err != nil {
			return nil, err
		}
		discountPercent = &validation.DiscountPercent
	}

	quote, err := pricing.ComputeQuote(pricing.QuoteInput{
		Items:              req.Items,
		HasShippingAddress: req.HasShippingAddress,
		DeliveryDateIndex:  req.DeliveryDateIndex,
		DiscountPercent:    discountPercent,
		DeliveryOptions:    s.deliveryOptions,
		TaxRate:            s.taxRate,
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// ProductPrice returns the price a customer pays for the product right now.
// Returns ErrProductNotFound if the product doesn't exist.
func (s *OrderService) ProductPrice(ctx context.Context, productID string) (*model.EffectivePriceResponse, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	now := s.now().UTC()
	return &model.EffectivePriceResponse{
		ProductID:      product.ID,
		OnSale:         pricing.IsOnSale(product, now),
		EffectivePrice: pricing.EffectivePrice(product, now),
	}, nil
}
