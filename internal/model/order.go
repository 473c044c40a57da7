package model

import "github.com/shopspring/decimal"

// DeliveryOption is one entry of the externally configured, ordered delivery
// list. A FreeShippingMinPrice of zero means the option never ships free.
type DeliveryOption struct {
	Name                 string          `json:"name"`
	DaysToDeliver        int             `json:"days_to_deliver"`
	ShippingPrice        decimal.Decimal `json:"shipping_price"`
	FreeShippingMinPrice decimal.Decimal `json:"free_shipping_min_price"`
}

// DefaultDeliveryOptions returns the storefront's delivery list, ordered
// fastest first. The last entry is the default when a caller does not pick.
func DefaultDeliveryOptions() []DeliveryOption {
	return []DeliveryOption{
		{Name: "Next Day", DaysToDeliver: 1, ShippingPrice: decimal.NewFromInt(35), FreeShippingMinPrice: decimal.Zero},
		{Name: "Express", DaysToDeliver: 3, ShippingPrice: decimal.NewFromInt(25), FreeShippingMinPrice: decimal.NewFromInt(300)},
		{Name: "Standard", DaysToDeliver: 7, ShippingPrice: decimal.NewFromInt(15), FreeShippingMinPrice: decimal.NewFromInt(150)},
	}
}

// QuoteItem is one cart line. UnitPrice is the effective price snapshotted
// when the item entered the cart; it is not re-evaluated at quote time so
// historical orders stay stable after a sale ends.
type QuoteItem struct {
	ProductID string          `json:"product_id" validate:"required,notblank,max=255"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity" validate:"required,gte=1"`
}

// QuoteRequest is the DTO for POST /api/orders/quote.
type QuoteRequest struct {
	Items              []QuoteItem `json:"items" validate:"required,min=1,dive"`
	HasShippingAddress bool        `json:"has_shipping_address"`
	DeliveryDateIndex  *int        `json:"delivery_date_index"`
	CouponCode         *string     `json:"coupon_code" validate:"omitempty,notblank,max=255"`
}

// QuoteResponse is the computed price breakdown. ShippingPrice and TaxPrice
// are null until a shipping address is known.
type QuoteResponse struct {
	ItemsPrice     decimal.Decimal  `json:"items_price"`
	Discount       decimal.Decimal  `json:"discount"`
	ShippingPrice  *decimal.Decimal `json:"shipping_price"`
	TaxPrice       *decimal.Decimal `json:"tax_price"`
	TotalPrice     decimal.Decimal  `json:"total_price"`
	DeliveryOption DeliveryOption   `json:"delivery_option"`
}
