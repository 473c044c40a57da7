package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the catalog record this service prices and reconciles.
// Price is the current list price; ListPrice is the pre-discount reference
// price used as the base for flash-sale discounts.
//
// The three FlashSale* fields are denormalized onto the product while a sale
// is active and cleared together when it is not. If FlashSaleID is set, the
// other two are expected to be set as well; readers must fail closed when
// they are not.
type Product struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Price             decimal.Decimal  `json:"price"`
	ListPrice         decimal.Decimal  `json:"list_price"`
	CountInStock      int              `json:"count_in_stock"`
	NumSales          int              `json:"num_sales"`
	FlashSaleID       *string          `json:"flash_sale_id,omitempty"`
	FlashSaleEndDate  *time.Time       `json:"flash_sale_end_date,omitempty"`
	FlashSaleDiscount *decimal.Decimal `json:"flash_sale_discount,omitempty"`
	CreatedAt         time.Time        `json:"-"`
}

// EffectivePriceResponse is the API response for GET /api/products/:id/price.
type EffectivePriceResponse struct {
	ProductID      string          `json:"product_id"`
	OnSale         bool            `json:"on_sale"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
}
