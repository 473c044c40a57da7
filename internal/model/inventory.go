package model

import "time"

// InventoryRecord is one entry of the append-only inventory audit log.
// Delta is the requested change; NewQuantity reflects clamping at zero, so
// an over-sell shows up as |delta| > previous - new.
type InventoryRecord struct {
	ID               string    `json:"id"`
	ProductID        string    `json:"product_id"`
	PreviousQuantity int       `json:"previous_quantity"`
	NewQuantity      int       `json:"new_quantity"`
	Delta            int       `json:"delta"`
	Reason           string    `json:"reason"`
	CreatedAt        time.Time `json:"created_at"`
}

// AdjustStockRequest is the DTO for POST /api/inventory/adjust.
type AdjustStockRequest struct {
	ProductID string `json:"product_id" validate:"required,notblank,max=255"`
	Delta     *int   `json:"delta" validate:"required"`
	Reason    string `json:"reason" validate:"required,notblank,max=255"`
}

// RecordSaleRequest is the DTO for POST /api/inventory/sales. The
// (order_id, product_id) pair doubles as the idempotency key: retrying the
// same line item has no further effect.
type RecordSaleRequest struct {
	OrderID   string `json:"order_id" validate:"required,notblank,max=255"`
	ProductID string `json:"product_id" validate:"required,notblank,max=255"`
	Quantity  *int   `json:"quantity" validate:"required,gte=1"`
}

// AdjustStockResponse returns the product snapshot after the adjustment plus
// the audit record that was written.
type AdjustStockResponse struct {
	Product *Product         `json:"product"`
	Record  *InventoryRecord `json:"record"`
}
