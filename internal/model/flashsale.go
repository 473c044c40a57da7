package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleStatus is the lifecycle state of a flash sale. Scheduled, active and
// completed are derived from the sale window on every write; draft and
// cancelled are explicit administrator choices that suppress derivation.
type SaleStatus string

const (
	SaleStatusDraft     SaleStatus = "draft"
	SaleStatusScheduled SaleStatus = "scheduled"
	SaleStatusActive    SaleStatus = "active"
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusCancelled SaleStatus = "cancelled"
)

// DiscountType selects how a flash sale's discount is expressed.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// FlashSale is a time-boxed discount campaign with a quantity cap shared
// across its member products.
type FlashSale struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	StartDate       time.Time        `json:"start_date"`
	EndDate         time.Time        `json:"end_date"`
	Status          SaleStatus       `json:"status"`
	DiscountType    DiscountType     `json:"discount_type"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
	DiscountAmount  *decimal.Decimal `json:"discount_amount,omitempty"`
	TotalQuantity   int              `json:"total_quantity"`
	SoldQuantity    int              `json:"sold_quantity"`
	ProductIDs      []string         `json:"product_ids"`
	CreatedAt       time.Time        `json:"-"`
}

// CreateFlashSaleRequest is the DTO for POST /api/flash-sales.
type CreateFlashSaleRequest struct {
	Name            string           `json:"name" validate:"required,notblank,max=255"`
	StartDate       time.Time        `json:"start_date" validate:"required"`
	EndDate         time.Time        `json:"end_date" validate:"required"`
	Status          SaleStatus       `json:"status" validate:"omitempty,oneof=draft scheduled active completed cancelled"`
	DiscountType    DiscountType     `json:"discount_type" validate:"omitempty,oneof=percentage fixed"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
	DiscountAmount  *decimal.Decimal `json:"discount_amount"`
	TotalQuantity   *int             `json:"total_quantity" validate:"required,gte=0"`
	ProductIDs      []string         `json:"product_ids"`
}

// UpdateFlashSaleRequest is the DTO for PUT /api/flash-sales/:id. Nil fields
// are left unchanged.
type UpdateFlashSaleRequest struct {
	Name            *string          `json:"name" validate:"omitempty,notblank,max=255"`
	StartDate       *time.Time       `json:"start_date"`
	EndDate         *time.Time       `json:"end_date"`
	Status          *SaleStatus      `json:"status" validate:"omitempty,oneof=draft scheduled active completed cancelled"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
	TotalQuantity   *int             `json:"total_quantity" validate:"omitempty,gte=0"`
	ProductIDs      []string         `json:"product_ids"`
}

// CheckAvailabilityRequest is the DTO for POST /api/flash-sales/:id/check.
type CheckAvailabilityRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=1"`
}

// AvailabilityResponse reports whether a requested quantity can currently be
// served from a flash sale and how much remains either way.
type AvailabilityResponse struct {
	SaleID    string `json:"sale_id"`
	Available bool   `json:"available"`
	Remaining int    `json:"remaining"`
}
