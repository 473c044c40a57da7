// Package pricing holds the storefront's pure business rules: flash-sale
// window evaluation, effective pricing, availability checks and order total
// composition. Nothing here touches the database; callers pass records and a
// reference time and get values or typed failures back.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/storefront-pricing-core/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Round2 rounds a monetary value to 2 decimal places, half away from zero.
// Every intermediate value is rounded immediately after computation so
// drift never compounds into the final total.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// IsOnSale reports whether the product's denormalized flash-sale fields
// describe a currently running sale. A product with a sale id but no end
// date or no discount fails closed: it is not on sale.
func IsOnSale(p *model.Product, now time.Time) bool {
	if p.FlashSaleID == nil || p.FlashSaleEndDate == nil || p.FlashSaleDiscount == nil {
		return false
	}
	return !now.After(*p.FlashSaleEndDate)
}

// EffectivePrice is the price a customer pays right now.
//
// On sale the discount applies to ListPrice, not Price, since Price may
// already hold a discounted value. When the sale fields are stale (sale id
// still set but the window has passed or the fields are incomplete) the
// canonical fallback is ListPrice, never the possibly-stale Price.
func EffectivePrice(p *model.Product, now time.Time) decimal.Decimal {
	if IsOnSale(p, now) {
		multiplier := decimal.NewFromInt(1).Sub(p.FlashSaleDiscount.Div(hundred))
		return Round2(p.ListPrice.Mul(multiplier))
	}
	if p.FlashSaleID != nil {
		return p.ListPrice
	}
	return p.Price
}

// AvailableQuantity is the number of units a flash sale can still serve.
func AvailableQuantity(s *model.FlashSale) int {
	remaining := s.TotalQuantity - s.SoldQuantity
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CheckAvailability decides whether a flash sale can serve the requested
// quantity at the given time. Failures are typed so callers can surface
// actionable messages at checkout.
func CheckAvailability(s *model.FlashSale, requested int, now time.Time) error {
	if now.Before(s.StartDate) {
		return ErrSaleNotStarted
	}
	if now.After(s.EndDate) {
		return ErrSaleEnded
	}
	if s.Status != model.SaleStatusActive {
		return ErrSaleInactive
	}
	if remaining := AvailableQuantity(s); requested > remaining {
		return &InsufficientStockError{Requested: requested, Remaining: remaining}
	}
	return nil
}

// DeriveStatus recomputes a flash sale's status from its window. It runs on
// every create and update. Explicit draft and cancelled states are kept;
// everything else is derived from where now falls relative to the window.
// A start date at or after the end date is corrupt input and is rejected
// before anything is persisted.
func DeriveStatus(start, end, now time.Time, explicit model.SaleStatus) (model.SaleStatus, error) {
	if !start.Before(end) {
		return "", ErrInvalidSaleWindow
	}
	if explicit == model.SaleStatusDraft || explicit == model.SaleStatusCancelled {
		return explicit, nil
	}
	switch {
	case now.Before(start):
		return model.SaleStatusScheduled, nil
	case now.After(end):
		return model.SaleStatusCompleted, nil
	default:
		return model.SaleStatusActive, nil
	}
}
