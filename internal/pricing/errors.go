package pricing

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSaleWindow is returned when a flash sale's start date is not
	// strictly before its end date. This is a hard write-time reject.
	ErrInvalidSaleWindow = errors.New("flash sale start date must be before end date")

	// ErrSaleNotStarted is returned when availability is checked before the sale window opens
	ErrSaleNotStarted = errors.New("flash sale has not started")

	// ErrSaleEnded is returned when availability is checked after the sale window closed
	ErrSaleEnded = errors.New("flash sale has ended")

	// ErrSaleInactive is returned when the sale is within its window but not in active status
	ErrSaleInactive = errors.New("flash sale is not active")

	// ErrNoDeliveryOptions is returned when a quote is computed without a configured delivery list
	ErrNoDeliveryOptions = errors.New("no delivery options configured")

	// ErrInvalidDeliveryOption is returned when the requested delivery index is out of range
	ErrInvalidDeliveryOption = errors.New("delivery option index out of range")
)

// InsufficientStockError reports that a requested quantity exceeds what a
// flash sale has left, including the actual remainder for the caller.
type InsufficientStockError struct {
	Requested int
	Remaining int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient flash sale stock: requested %d, remaining %d", e.Requested, e.Remaining)
}
