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

// CouponServiceInterface defines the interface for coupon business logic.
type CouponServiceInterface interface {
	Validate(ctx context.Context, code string) (*model.CouponValidation, error)
	Apply(ctx context.Context, code, orderID string) error
	GetByCode(ctx context.Context, code string) (*model.CouponResponse, error)
}

// CouponHandler handles HTTP requests for coupon operations.
type CouponHandler struct {
	service   CouponServiceInterface
	validator *validator.Validate
}

// NewCouponHandler creates a new CouponHandler with the given service and validator.
func NewCouponHandler(svc CouponServiceInterface, v *validator.Validate) *CouponHandler {
	return &CouponHandler{service: svc, validator: v}
}

// ValidateCoupon handles POST /api/coupons/validate.
func (h *CouponHandler) ValidateCoupon(c *fiber.Ctx) error {
	var req model.ValidateCouponRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	validation, err := h.service.Validate(c.Context(), req.Code)
	if err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "coupon not found"})
		}
		if errors.Is(err, service.ErrUsageLimitReached) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "coupon usage limit reached"})
		}
		log.Error().Err(err).Str("coupon_code", req.Code).Msg("failed to validate coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(validation)
}

// ApplyCoupon handles POST /api/coupons/apply. Applying the same coupon to
// the same order twice returns 409 and leaves the usage count untouched.
func (h *CouponHandler) ApplyCoupon(c *fiber.Ctx) error {
	var req model.ApplyCouponRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	if err := h.service.Apply(c.Context(), req.Code, req.OrderID); err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "coupon not found"})
		}
		if errors.Is(err, service.ErrCouponAlreadyApplied) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "coupon already applied to order"})
		}
		if errors.Is(err, service.ErrUsageLimitReached) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "coupon usage limit reached"})
		}
		// The order has already been priced by the time this is called, so
		// failures here must be loud for reconciliation.
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Str("coupon_code", req.Code).
			Str("order_id", req.OrderID).
			Msg("failed to apply coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("coupon_code", req.Code).
		Str("order_id", req.OrderID).
		Msg("coupon applied")

	return c.Status(fiber.StatusOK).Send(nil)
}

// GetCoupon handles GET /api/coupons/:code requests to retrieve coupon
// details with the redemption trail.
func (h *CouponHandler) GetCoupon(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request: code is required",
		})
	}

	coupon, err := h.service.GetByCode(c.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "coupon not found"})
		}
		log.Error().Err(err).Str("coupon_code", code).Msg("failed to get coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(coupon)
}
