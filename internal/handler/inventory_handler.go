package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/storefront-pricing-core/internal/model"
	"github.com/fairyhunter13/storefront-pricing-core/internal/service"
)

// InventoryServiceInterface defines the interface for inventory-ledger business logic.
type InventoryServiceInterface interface {
	AdjustStock(ctx context.Context, productID string, delta int, reason string) (*model.AdjustStockResponse, error)
	RecordSale(ctx context.Context, orderID, productID string, quantity int) (*model.Product, error)
}

// InventoryHandler handles HTTP requests for inventory-ledger operations.
type InventoryHandler struct {
	service   InventoryServiceInterface
	validator *validator.Validate
}

// NewInventoryHandler creates a new InventoryHandler with the given service and validator.
func NewInventoryHandler(svc InventoryServiceInterface, v *validator.Validate) *InventoryHandler {
	return &InventoryHandler{service: svc, validator: v}
}

// AdjustStock handles POST /api/inventory/adjust.
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	var req model.AdjustStockRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	result, err := h.service.AdjustStock(c.Context(), req.ProductID, *req.Delta, req.Reason)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
		}
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}
		log.Error().Err(err).Str("product_id", req.ProductID).Int("delta", *req.Delta).Msg("failed to adjust stock")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().
		Str("product_id", req.ProductID).
		Int("previous_quantity", result.Record.PreviousQuantity).
		Int("new_quantity", result.Record.NewQuantity).
		Int("delta", *req.Delta).
		Str("reason", req.Reason).
		Msg("stock adjusted")

	return c.JSON(result)
}

// RecordSale handles POST /api/inventory/sales. Retrying the same
// (order_id, product_id) pair returns 409 without touching any counter.
func (h *InventoryHandler) RecordSale(c *fiber.Ctx) error {
	var req model.RecordSaleRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	product, err := h.service.RecordSale(c.Context(), req.OrderID, req.ProductID, *req.Quantity)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
		}
		if errors.Is(err, service.ErrSaleAlreadyRecorded) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "sale already recorded for order line"})
		}
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Str("order_id", req.OrderID).
			Str("product_id", req.ProductID).
			Int("quantity", *req.Quantity).
			Msg("failed to record sale")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().
		Str("order_id", req.OrderID).
		Str("product_id", req.ProductID).
		Int("quantity", *req.Quantity).
		Int("count_in_stock", product.CountInStock).
		Int("num_sales", product.NumSales).
		Msg("sale recorded")

	return c.JSON(product)
}
