package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/storefront-pricing-core/internal/model"
	"github.com/fairyhunter13/storefront-pricing-core/internal/pricing"
	"github.com/fairyhunter13/storefront-pricing-core/internal/service"
)

// OrderServiceInterface defines the interface for order-pricing business logic.
type OrderServiceInterface interface {
	Quote(ctx context.Context, req *model.QuoteRequest) (*model.QuoteResponse, error)
	ProductPrice(ctx context.Context, productID string) (*model.EffectivePriceResponse, error)
}

// OrderHandler handles HTTP requests for order pricing.
type OrderHandler struct {
	service   OrderServiceInterface
	validator *validator.Validate
}

// NewOrderHandler creates a new OrderHandler with the given service and validator.
func NewOrderHandler(svc OrderServiceInterface, v *validator.Validate) *OrderHandler {
	return &OrderHandler{service: svc, validator: v}
}

// Quote handles POST /api/orders/quote.
func (h *OrderHandler) Quote(c *fiber.Ctx) error {
	var req model.QuoteRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	quote, err := h.service.Quote(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCouponNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "coupon not found"})
		case errors.Is(err, service.ErrUsageLimitReached):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "coupon usage limit reached"})
		case errors.Is(err, pricing.ErrInvalidDeliveryOption):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: delivery_date_index out of range"})
		case errors.Is(err, service.ErrInvalidRequest):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}
		log.Error().Err(err).Msg("failed to compute quote")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(quote)
}

// GetProductPrice handles GET /api/products/:id/price.
func (h *OrderHandler) GetProductPrice(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: id is required"})
	}

	price, err := h.service.ProductPrice(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
		}
		log.Error().Err(err).Str("product_id", id).Msg("failed to get product price")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(price)
}
