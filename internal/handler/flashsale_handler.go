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

// FlashSaleServiceInterface defines the interface for flash-sale business logic.
type FlashSaleServiceInterface interface {
	Create(ctx context.Context, req *model.CreateFlashSaleRequest) (*model.FlashSale, error)
	Update(ctx context.Context, id string, req *model.UpdateFlashSaleRequest) (*model.FlashSale, error)
	ListActive(ctx context.Context) ([]model.FlashSale, error)
	ListUpcoming(ctx context.Context) ([]model.FlashSale, error)
	CheckAvailability(ctx context.Context, saleID string, quantity int) (*model.AvailabilityResponse, error)
}

// FlashSaleHandler handles HTTP requests for flash-sale operations.
type FlashSaleHandler struct {
	service   FlashSaleServiceInterface
	validator *validator.Validate
}

// NewFlashSaleHandler creates a new FlashSaleHandler with the given service and validator.
func NewFlashSaleHandler(svc FlashSaleServiceInterface, v *validator.Validate) *FlashSaleHandler {
	return &FlashSaleHandler{service: svc, validator: v}
}

// CreateFlashSale handles POST /api/flash-sales.
func (h *FlashSaleHandler) CreateFlashSale(c *fiber.Ctx) error {
	var req model.CreateFlashSaleRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	sale, err := h.service.Create(c.Context(), &req)
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidSaleWindow) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: start date must be before end date"})
		}
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}
		log.Error().Err(err).Str("sale_name", req.Name).Msg("failed to create flash sale")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(sale)
}

// UpdateFlashSale handles PUT /api/flash-sales/:id.
func (h *FlashSaleHandler) UpdateFlashSale(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: id is required"})
	}

	var req model.UpdateFlashSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	sale, err := h.service.Update(c.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrSaleNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "flash sale not found"})
		}
		if errors.Is(err, pricing.ErrInvalidSaleWindow) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: start date must be before end date"})
		}
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}
		log.Error().Err(err).Str("sale_id", id).Msg("failed to update flash sale")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(sale)
}

// ListActive handles GET /api/flash-sales/active.
func (h *FlashSaleHandler) ListActive(c *fiber.Ctx) error {
	sales, err := h.service.ListActive(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list active flash sales")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(fiber.Map{"sales": sales})
}

// ListUpcoming handles GET /api/flash-sales/upcoming.
func (h *FlashSaleHandler) ListUpcoming(c *fiber.Ctx) error {
	sales, err := h.service.ListUpcoming(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list upcoming flash sales")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(fiber.Map{"sales": sales})
}

// CheckAvailability handles POST /api/flash-sales/:id/check. Temporal and
// stock failures are actionable checkout messages, not server errors.
func (h *FlashSaleHandler) CheckAvailability(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: id is required"})
	}

	var req model.CheckAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	result, err := h.service.CheckAvailability(c.Context(), id, *req.Quantity)
	if err != nil {
		var stockErr *pricing.InsufficientStockError
		switch {
		case errors.Is(err, service.ErrSaleNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "flash sale not found"})
		case errors.Is(err, pricing.ErrSaleNotStarted):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "flash sale has not started"})
		case errors.Is(err, pricing.ErrSaleEnded):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "flash sale has ended"})
		case errors.Is(err, pricing.ErrSaleInactive):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "flash sale is not active"})
		case errors.As(err, &stockErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":     "insufficient flash sale stock",
				"remaining": stockErr.Remaining,
			})
		case errors.Is(err, service.ErrInvalidRequest):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}
		log.Error().Err(err).Str("sale_id", id).Int("quantity", *req.Quantity).Msg("failed to check availability")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(result)
}
