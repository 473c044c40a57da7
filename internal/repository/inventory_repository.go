package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fairyhunter13/storefront-pricing-core/internal/model"
	"github.com/fairyhunter13/storefront-pricing-core/internal/service"
	"github.com/fairyhunter13/storefront-pricing-core/pkg/database"
)

// InventoryRepository provides data access for the append-only inventory
// audit log and the sale-record idempotency table. All writes happen inside
// the caller's transaction, so no pool is held here.
type InventoryRepository struct{}

// NewInventoryRepository creates a new InventoryRepository.
func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{}
}

// InsertLog appends one audit record to inventory_log.
func (r *InventoryRepository) InsertLog(ctx context.Context, tx database.TxQuerier, rec *model.InventoryRecord) error {
	query := `INSERT INTO inventory_log (id, product_id, previous_quantity, new_quantity, delta, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		rec.ID, rec.ProductID, rec.PreviousQuantity, rec.NewQuantity, rec.Delta, rec.Reason, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert inventory log: %w", err)
	}
	return nil
}

// InsertSaleRecord claims the (order, product) idempotency key for a sale.
// Returns service.ErrSaleAlreadyRecorded if the pair was recorded before, so
// a retried finalization never double-decrements stock.
func (r *InventoryRepository) InsertSaleRecord(ctx context.Context, tx database.TxQuerier, orderID, productID string, quantity int) error {
	query := `INSERT INTO sale_records (order_id, product_id, quantity) VALUES ($1, $2, $3)`

	_, err := tx.Exec(ctx, query, orderID, productID, quantity)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return service.ErrSaleAlreadyRecorded
		}
		return fmt.Errorf("insert sale record: %w", err)
	}
	return nil
}
