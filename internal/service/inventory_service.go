package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/storefront-pricing-core/internal/model"
	"github.com/fairyhunter13/storefront-pricing-core/pkg/database"
)

// ProductRepositoryInterface defines the interface for product data access.
type ProductRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*model.Product, error)
	GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Product, error)
	UpdateStock(ctx context.Context, tx database.TxQuerier, id string, newStock int) error
	IncrementSales(ctx context.Context, tx database.TxQuerier, id string, quantity int) error
	SetSaleFields(ctx context.Context, id, saleID string, endDate time.Time, discount decimal.Decimal) error
	ClearSaleFields(ctx context.Context, id string) error
}

// InventoryRepositoryInterface defines the interface for audit-log and
// sale-record data access.
type InventoryRepositoryInterface interface {
	InsertLog(ctx context.Context, tx database.TxQuerier, rec *model.InventoryRecord) error
	InsertSaleRecord(ctx context.Context, tx database.TxQuerier, orderID, productID string, quantity int) error
}

// SaleCounterInterface increments a flash sale's sold counter.
type SaleCounterInterface interface {
	IncrementSold(ctx context.Context, tx database.TxQuerier, saleID string, quantity int) error
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ReasonPurchase is the audit-log reason written by RecordSale.
const ReasonPurchase = "purchase"

// InventoryService is the inventory ledger: it applies stock deltas under a
// row lock, never lets stock go negative, and writes one audit record per
// mutation.
type InventoryService struct {
	pool          TxBeginner
	productRepo   ProductRepositoryInterface
	inventoryRepo InventoryRepositoryInterface
	saleCounter   SaleCounterInterface
	now           func() time.Time
}

// NewInventoryService creates a new InventoryService with the given pool and repositories.
func NewInventoryService(pool *pgxpool.Pool, productRepo ProductRepositoryInterface, inventoryRepo InventoryRepositoryInterface, saleCounter SaleCounterInterface) *InventoryService {
	return &InventoryService{
		pool:          pool,
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		saleCounter:   saleCounter,
		now:           time.Now,
	}
}

// NewInventoryServiceWithTxBeginner creates an InventoryService with a custom
// TxBeginner. Primarily used for testing.
func NewInventoryServiceWithTxBeginner(pool TxBeginner, productRepo ProductRepositoryInterface, inventoryRepo InventoryRepositoryInterface, saleCounter SaleCounterInterface) *InventoryService {
	return &InventoryService{
		pool:          pool,
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		saleCounter:   saleCounter,
		now:           time.Now,
	}
}

// AdjustStock applies a signed delta to a product's stock inside a
// transaction, clamping the result at zero, and appends an audit record.
// Returns the updated product snapshot together with the record.
// Returns:
//   - ErrInvalidRequest if the reason is blank
//   - ErrProductNotFound if the product doesn't exist
func (s *InventoryService) AdjustStock(ctx context.Context, productID string, delta int, reason string) (*model.AdjustStockResponse, error) {
	// Defense-in-depth: handler validates, but the reason lands in an audit trail
	if strings.TrimSpace(reason) == "" {
		return nil, ErrInvalidRequest
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	product, err := s.productRepo.GetForUpdate(ctx, tx, productID)
	if err != nil {
		return nil, err
	}

	rec, err := s.applyDelta(ctx, tx, product, delta, reason)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &model.AdjustStockResponse{Product: product, Record: rec}, nil
}

// RecordSale finalizes one order line item: it decrements stock (clamped at
// zero), bumps num_sales by the full requested quantity, and increments the
// sold counter of the product's flash sale when one is attached.
//
// The (orderID, productID) pair is the idempotency key; the sale-record
// insert claims it before any mutation, so a retried call fails with
// ErrSaleAlreadyRecorded and leaves all counters untouched.
func (s *InventoryService) RecordSale(ctx context.Context, orderID, productID string, quantity int) (*model.Product, error) {
	if quantity <= 0 {
		return nil, ErrInvalidRequest
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	// 1. Claim the idempotency key before touching any counter
	if err := s.inventoryRepo.InsertSaleRecord(ctx, tx, orderID, productID, quantity); err != nil {
		return nil, err
	}

	// 2. Lock the product row and apply the clamped decrement
	product, err := s.productRepo.GetForUpdate(ctx, tx, productID)
	if err != nil {
		return nil, err
	}

	if _, err := s.applyDelta(ctx, tx, product, -quantity, ReasonPurchase); err != nil {
		return nil, err
	}

	// 3. num_sales grows by the full requested quantity even when the stock
	// decrement was clamped
	if err := s.productRepo.IncrementSales(ctx, tx, productID, quantity); err != nil {
		return nil, err
	}
	product.NumSales += quantity

	// 4. Reconcile the flash-sale counter when the product is in a sale
	if product.FlashSaleID != nil {
		if err := s.saleCounter.IncrementSold(ctx, tx, *product.FlashSaleID, quantity); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return product, nil
}

// applyDelta computes the clamped stock value, persists it and appends the
// audit record. The product snapshot is updated in place.
func (s *InventoryService) applyDelta(ctx context.Context, tx database.TxQuerier, product *model.Product, delta int, reason string) (*model.InventoryRecord, error) {
	newStock := product.CountInStock + delta
	if newStock < 0 {
		newStock = 0
	}

	if err := s.productRepo.UpdateStock(ctx, tx, product.ID, newStock); err != nil {
		return nil, err
	}

	rec := &model.InventoryRecord{
		ID:               uuid.NewString(),
		ProductID:        product.ID,
		PreviousQuantity: product.CountInStock,
		NewQuantity:      newStock,
		Delta:            delta,
		Reason:           reason,
		CreatedAt:        s.now().UTC(),
	}
	if err := s.inventoryRepo.InsertLog(ctx, tx, rec); err != nil {
		return nil, err
	}

	product.CountInStock = newStock
	return rec, nil
}
