package services

import (
	"errors"
	"strings"
	"time"

	"orderdesk/internal/catalog"
	"orderdesk/internal/models"

	"github.com/go-playground/validator/v10"
)

// ClosedDay is the weekday on which no deliveries are made.
const ClosedDay = time.Sunday

// Validation messages, returned verbatim to clients.
const (
	MsgPurchaseDateRequired = "Purchase date is required"
	MsgPurchaseDateInvalid  = "Invalid purchase date, expected YYYY-MM-DD"
	MsgClosedDay            = "Delivery is not available on Sundays"
	MsgDeliveryTimeRequired = "Delivery time is required"
	MsgLocationRequired     = "Delivery location is required"
	MsgLocationInvalid      = "Invalid delivery location"
	MsgProductRequired      = "Product name is required"
	MsgProductInvalid       = "Invalid product name"
	MsgQuantityRequired     = "Quantity is required"
	MsgQuantityTooLow       = "Quantity must be at least 1"
	MsgQuantityTooHigh      = "Quantity cannot exceed 100"
	MsgMessageTooLong       = "Message cannot exceed 500 characters"
)

// OrderValidator checks order requests against the catalog and calendar rules.
// It performs no I/O.
type OrderValidator struct {
	validate *validator.Validate
	messages map[string]string
}

// NewOrderValidator creates an OrderValidator bound to c.
func NewOrderValidator(c *catalog.Catalog) *OrderValidator {
	validate := validator.New()
	rules := map[string]func(string) bool{
		"isodate": func(s string) bool {
			_, err := models.ParseDate(s)
			return err == nil
		},
		"opendate": func(s string) bool {
			d, err := models.ParseDate(s)
			return err == nil && d.Weekday() != ClosedDay
		},
		"deliveryslot": c.HasDeliveryTime,
		"district":     c.HasDistrict,
		"product":      c.HasProduct,
	}
	for tag, rule := range rules {
		// Tags are fixed and well-formed; registration cannot fail.
		_ = validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return rule(fl.Field().String())
		})
	}

	return &OrderValidator{
		validate: validate,
		messages: map[string]string{
			"PurchaseDate.required":     MsgPurchaseDateRequired,
			"PurchaseDate.isodate":      MsgPurchaseDateInvalid,
			"PurchaseDate.opendate":     MsgClosedDay,
			"DeliveryTime.required":     MsgDeliveryTimeRequired,
			"DeliveryTime.deliveryslot": "Invalid delivery time. Valid times are: " + strings.Join(c.DeliveryTimes(), ", "),
			"DeliveryLocation.required": MsgLocationRequired,
			"DeliveryLocation.district": MsgLocationInvalid,
			"ProductName.required":      MsgProductRequired,
			"ProductName.product":       MsgProductInvalid,
			"Quantity.required":         MsgQuantityRequired,
			"Quantity.min":              MsgQuantityTooLow,
			"Quantity.max":              MsgQuantityTooHigh,
			"Message.max":               MsgMessageTooLong,
		},
	}
}

// Validate returns a validation *Error for the first failing rule, or nil.
func (v *OrderValidator) Validate(req models.OrderRequest) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return ValidationError("Invalid order request")
	}
	first := fieldErrs[0]
	if msg, ok := v.messages[first.StructField()+"."+first.Tag()]; ok {
		return ValidationError(msg)
	}
	return ValidationError("Invalid " + first.Field())
}
