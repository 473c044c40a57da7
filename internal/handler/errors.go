package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// jsonFieldNames maps struct field names to their wire names for validation
// error messages.
var jsonFieldNames = map[string]string{
	"Code":              "code",
	"OrderID":           "order_id",
	"ProductID":         "product_id",
	"Delta":             "delta",
	"Reason":            "reason",
	"Quantity":          "quantity",
	"Items":             "items",
	"Name":              "name",
	"StartDate":         "start_date",
	"EndDate":           "end_date",
	"TotalQuantity":     "total_quantity",
	"UnitPrice":         "unit_price",
	"CouponCode":        "coupon_code",
	"DeliveryDateIndex": "delivery_date_index",
}

// formatValidationError converts validator errors into stable, user-facing
// messages keyed by the JSON field name.
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			field := fe.Field()
			if name, ok := jsonFieldNames[field]; ok {
				field = name
			} else {
				field = strings.ToLower(field)
			}

			switch fe.Tag() {
			case "required":
				return "invalid request: " + field + " is required"
			case "notblank":
				return "invalid request: " + field + " cannot be whitespace only"
			case "max":
				return "invalid request: " + field + " exceeds maximum length"
			case "min":
				return "invalid request: " + field + " has too few entries"
			case "gte":
				return "invalid request: " + field + " is below the minimum value"
			case "oneof":
				return "invalid request: " + field + " has an unsupported value"
			default:
				return "invalid request: " + field + " is invalid"
			}
		}
	}
	return "invalid request"
}
