package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/storefront-pricing-core/internal/model"
	"github.com/fairyhunter13/storefront-pricing-core/internal/pricing"
)

// propagationConcurrency bounds the parallel per-product updates when a sale
// flips state.
const propagationConcurrency = 8

// FlashSaleRepositoryInterface defines the interface for flash-sale data access.
type FlashSaleRepositoryInterface interface {
	Insert(ctx context.Context, sale *model.FlashSale) error
	Update(ctx context.Context, sale *model.FlashSale) error
	GetByID(ctx context.Context, id string) (*model.FlashSale, error)
	ListActive(ctx context.Context, now time.Time) ([]model.FlashSale, error)
	ListUpcoming(ctx context.Context, now time.Time) ([]model.FlashSale, error)
}

// SaleCache is the optional availability cache. Implementations return
// nil, nil on a miss. A nil SaleCache disables caching.
type SaleCache interface {
	Get(ctx context.Context, id string) (*model.FlashSale, error)
	Set(ctx context.Context, sale *model.FlashSale) error
	Invalidate(ctx context.Context, id string) error
}

// FlashSaleService manages the flash-sale lifecycle: status derivation on
// every write, denormalized-field propagation to member products, and
// availability checks for checkout.
type FlashSaleService struct {
	saleRepo    FlashSaleRepositoryInterface
	productRepo ProductRepositoryInterface
	cache       SaleCache // may be nil
	now         func() time.Time
}

// NewFlashSaleService creates a new FlashSaleService. cache may be nil.
func NewFlashSaleService(saleRepo FlashSaleRepositoryInterface, productRepo ProductRepositoryInterface, cache SaleCache) *FlashSaleService {
	return &FlashSaleService{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		cache:       cache,
		now:         time.Now,
	}
}

// NewFlashSaleServiceWithClock creates a FlashSaleService with a custom time
// source. Primarily used for testing.
func NewFlashSaleServiceWithClock(saleRepo FlashSaleRepositoryInterface, productRepo ProductRepositoryInterface, cache SaleCache, now func() time.Time) *FlashSaleService {
	return &FlashSaleService{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		cache:       cache,
		now:         now,
	}
}

// Create persists a new flash sale. The status is derived from the window
// unless the request pins draft or cancelled; a start date at or after the
// end date is rejected before anything is written
// (pricing.ErrInvalidSaleWindow).
func (s *FlashSaleService) Create(ctx context.Context, req *model.CreateFlashSaleRequest) (*model.FlashSale, error) {
	if req == nil || req.TotalQuantity == nil {
		return nil, ErrInvalidRequest
	}

	discountType := req.DiscountType
	if discountType == "" {
		discountType = model.DiscountTypePercentage
	}
	if discountType == model.DiscountTypePercentage && req.DiscountPercent == nil {
		return nil, ErrInvalidRequest
	}
	if discountType == model.DiscountTypeFixed && req.DiscountAmount == nil {
		return nil, ErrInvalidRequest
	}

	status, err := pricing.DeriveStatus(req.StartDate, req.EndDate, s.now().UTC(), req.Status)
	if err != nil {
		return nil, err
	}

	productIDs := req.ProductIDs
	if productIDs == nil {
		productIDs = []string{}
	}

	sale := &model.FlashSale{
		ID:              uuid.NewString(),
		Name:            req.Name,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Status:          status,
		DiscountType:    discountType,
		DiscountPercent: req.DiscountPercent,
		DiscountAmount:  req.DiscountAmount,
		TotalQuantity:   *req.TotalQuantity,
		SoldQuantity:    0,
		ProductIDs:      productIDs,
	}

	if err := s.saleRepo.Insert(ctx, sale); err != nil {
		return nil, fmt.Errorf("insert flash sale: %w", err)
	}

	s.propagate(ctx, sale)
	return sale, nil
}

// Update applies partial changes, re-derives the status, persists the sale
// and re-propagates the denormalized fields to member products.
// Returns ErrSaleNotFound if the sale doesn't exist.
func (s *FlashSaleService) Update(ctx context.Context, id string, req *model.UpdateFlashSaleRequest) (*model.FlashSale, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	sale, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get flash sale: %w", err)
	}
	if sale == nil {
		return nil, ErrSaleNotFound
	}

	if req.Name != nil {
		sale.Name = *req.Name
	}
	if req.StartDate != nil {
		sale.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		sale.EndDate = *req.EndDate
	}
	if req.DiscountPercent != nil {
		sale.DiscountPercent = req.DiscountPercent
	}
	if req.TotalQuantity != nil {
		sale.TotalQuantity = *req.TotalQuantity
	}
	if req.ProductIDs != nil {
		sale.ProductIDs = req.ProductIDs
	}

	// A stored draft/cancelled stays pinned unless the request moves it
	explicit := sale.Status
	if req.Status != nil {
		explicit = *req.Status
	}
	sale.Status, err = pricing.DeriveStatus(sale.StartDate, sale.EndDate, s.now().UTC(), explicit)
	if err != nil {
		return nil, err
	}

	if err := s.saleRepo.Update(ctx, sale); err != nil {
		return nil, fmt.Errorf("update flash sale: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, sale.ID); err != nil {
			log.Warn().Err(err).Str("sale_id", sale.ID).Msg("failed to invalidate sale cache")
		}
	}

	s.propagate(ctx, sale)
	return sale, nil
}

// ListActive returns sales currently serving discounts.
func (s *FlashSaleService) ListActive(ctx context.Context) ([]model.FlashSale, error) {
	return s.saleRepo.ListActive(ctx, s.now().UTC())
}

// ListUpcoming returns scheduled sales that have not opened yet.
func (s *FlashSaleService) ListUpcoming(ctx context.Context) ([]model.FlashSale, error) {
	return s.saleRepo.ListUpcoming(ctx, s.now().UTC())
}

// CheckAvailability decides whether the sale can serve the requested
// quantity right now. Reads go through the TTL cache when one is configured;
// a cache failure falls back to the database rather than failing the check.
// Returns:
//   - ErrSaleNotFound if the sale doesn't exist
//   - pricing.ErrSaleNotStarted / ErrSaleEnded / ErrSaleInactive for temporal state
//   - *pricing.InsufficientStockError carrying the actual remainder
func (s *FlashSaleService) CheckAvailability(ctx context.Context, saleID string, quantity int) (*model.AvailabilityResponse, error) {
	if quantity <= 0 {
		return nil, ErrInvalidRequest
	}

	sale, err := s.loadSale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, ErrSaleNotFound
	}

	if err := pricing.CheckAvailability(sale, quantity, s.now().UTC()); err != nil {
		return nil, err
	}

	return &model.AvailabilityResponse{
		SaleID:    sale.ID,
		Available: true,
		Remaining: pricing.AvailableQuantity(sale),
	}, nil
}

func (s *FlashSaleService) loadSale(ctx context.Context, saleID string) (*model.FlashSale, error) {
	if s.cache != nil {
		sale, err := s.cache.Get(ctx, saleID)
		if err != nil {
			log.Warn().Err(err).Str("sale_id", saleID).Msg("sale cache read failed, falling back to store")
		} else if sale != nil {
			return sale, nil
		}
	}

	sale, err := s.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("get flash sale: %w", err)
	}
	if sale != nil && s.cache != nil {
		if err := s.cache.Set(ctx, sale); err != nil {
			log.Warn().Err(err).Str("sale_id", sale.ID).Msg("failed to cache sale")
		}
	}
	return sale, nil
}

// propagate pushes the sale's denormalized trio onto every member product
// when the sale is active, and clears it otherwise. Updates run in parallel
// and are best-effort: one product failing must not roll back or block the
// others, but every failure is logged with its product id.
func (s *FlashSaleService) propagate(ctx context.Context, sale *model.FlashSale) {
	active := sale.Status == model.SaleStatusActive && sale.DiscountPercent != nil

	var g errgroup.Group
	g.SetLimit(propagationConcurrency)
	for _, productID := range sale.ProductIDs {
		g.Go(func() error {
			var err error
			if active {
				err = s.productRepo.SetSaleFields(ctx, productID, sale.ID, sale.EndDate, *sale.DiscountPercent)
			} else {
				err = s.productRepo.ClearSaleFields(ctx, productID)
			}
			if err != nil {
				log.Error().
					Err(err).
					Str("sale_id", sale.ID).
					Str("product_id", productID).
					Bool("active", active).
					Msg("flash sale propagation failed for product")
			}
			return nil
		})
	}
	_ = g.Wait()
}
