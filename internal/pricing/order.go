package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/storefront-pricing-core/internal/model"
)

// QuoteInput carries everything the order total calculator needs. Unit
// prices are cart snapshots; the calculator never re-evaluates them.
type QuoteInput struct {
	Items              []model.QuoteItem
	HasShippingAddress bool
	DeliveryDateIndex  *int
	DiscountPercent    *decimal.Decimal
	DeliveryOptions    []model.DeliveryOption
	TaxRate            decimal.Decimal
}

// ComputeQuote composes the auditable price breakdown for an order.
//
// Ordering rules that must hold:
//   - the coupon discount applies to merchandise value only, before
//     shipping and tax are added;
//   - free-shipping eligibility is checked against the pre-discount items
//     subtotal;
//   - tax is computed on the discounted subtotal;
//   - shipping and tax stay nil until a shipping address is known.
//
// When no delivery index is given the LAST option (slowest/cheapest) is the
// default.
func ComputeQuote(in QuoteInput) (*model.QuoteResponse, error) {
	if len(in.DeliveryOptions) == 0 {
		return nil, ErrNoDeliveryOptions
	}
	idx := len(in.DeliveryOptions) - 1
	if in.DeliveryDateIndex != nil {
		idx = *in.DeliveryDateIndex
		if idx < 0 || idx >= len(in.DeliveryOptions) {
			return nil, ErrInvalidDeliveryOption
		}
	}
	option := in.DeliveryOptions[idx]

	itemsPrice := decimal.Zero
	for _, item := range in.Items {
		itemsPrice = itemsPrice.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	itemsPrice = Round2(itemsPrice)

	discount := decimal.Zero
	if in.DiscountPercent != nil {
		discount = Round2(itemsPrice.Mul(*in.DiscountPercent).Div(hundred))
	}
	discountedItems := Round2(itemsPrice.Sub(discount))

	var shippingPrice, taxPrice *decimal.Decimal
	total := discountedItems
	if in.HasShippingAddress {
		shipping := option.ShippingPrice
		if option.FreeShippingMinPrice.IsPositive() && itemsPrice.GreaterThanOrEqual(option.FreeShippingMinPrice) {
			shipping = decimal.Zero
		}
		tax := Round2(discountedItems.Mul(in.TaxRate))
		shippingPrice = &shipping
		taxPrice = &tax
		total = total.Add(shipping).Add(tax)
	}

	return &model.QuoteResponse{
		ItemsPrice:     itemsPrice,
		Discount:       discount,
		ShippingPrice:  shippingPrice,
		TaxPrice:       taxPrice,
		TotalPrice:     Round2(total),
		DeliveryOption: option,
	}, nil
}
