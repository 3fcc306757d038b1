package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/yeremiapane/campsite-app/models"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// structFields runs the tag rules and converts failures to FieldErrors.
func structFields(v *validator.Validate, s interface{}) []FieldError {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "request", Message: err.Error()}}
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fieldPath(fe.Namespace()), Message: tagMessage(fe)})
	}
	return fields
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return "is required when customer_id is not set"
	case "gte":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed on " + fe.Tag()
	}
}

func moneyFields(prefix string, deposit, total decimal.Decimal) []FieldError {
	var fields []FieldError
	if total.IsNegative() {
		fields = append(fields, FieldError{Field: prefix + "total_amount", Message: "must not be negative"})
	}
	if deposit.IsNegative() {
		fields = append(fields, FieldError{Field: prefix + "deposit", Message: "must not be negative"})
	}
	if deposit.GreaterThan(total) {
		fields = append(fields, FieldError{Field: prefix + "deposit", Message: "must not exceed total amount"})
	}
	return fields
}

func descriptionField(kind models.LineKind, field string, description *string) *FieldError {
	if description == nil || kind.HasDescription() {
		return nil
	}
	return &FieldError{Field: field + ".description", Message: "not supported for " + kind.Label() + " lines"}
}

func groupFields(g lineGroup) []FieldError {
	var fields []FieldError
	seen := make(map[uint]bool, len(g.items))
	for i, item := range g.items {
		at := fmt.Sprintf("%s[%d]", g.field, i)
		if fe := descriptionField(g.kind, at, item.Description); fe != nil {
			fields = append(fields, *fe)
		}
		if item.ItemID != 0 && seen[item.ItemID] {
			fields = append(fields, FieldError{Field: at + ".item_id", Message: fmt.Sprintf("duplicate %s %d", g.kind.Label(), item.ItemID)})
		}
		seen[item.ItemID] = true
	}
	return fields
}

// validateCreate is the single validation pass of an order creation.
func validateCreate(v *validator.Validate, req CreateOrderRequest) error {
	fields := structFields(v, req)
	fields = append(fields, moneyFields("order.", req.Order.Deposit, req.Order.TotalAmount)...)

	var cause error
	count := 0
	for _, g := range req.groups() {
		count += len(g.items)
		fields = append(fields, groupFields(g)...)
	}
	if count == 0 {
		cause = ErrNoLineItems
		fields = append(fields, FieldError{Field: "order_lines", Message: ErrNoLineItems.Error()})
	}
	return newValidationError(fields, cause)
}

func validateLineUpdates(v *validator.Validate, kind models.LineKind, lines []LineUpdate) error {
	if len(lines) == 0 {
		return newValidationError([]FieldError{{Field: "lines", Message: "no lines to update"}}, ErrNoLineItems)
	}

	var fields []FieldError
	type key struct{ order, item uint }
	seen := make(map[key]bool, len(lines))
	for i, l := range lines {
		at := fmt.Sprintf("lines[%d]", i)
		for _, fe := range structFields(v, l) {
			fe.Field = at + "." + fe.Field
			fields = append(fields, fe)
		}
		if fe := descriptionField(kind, at, l.Description); fe != nil {
			fields = append(fields, *fe)
		}
		k := key{l.OrderID, l.ItemID}
		if seen[k] {
			fields = append(fields, FieldError{Field: at, Message: fmt.Sprintf("duplicate %s %d for order %d", kind.Label(), l.ItemID, l.OrderID)})
		}
		seen[k] = true
	}
	return newValidationError(fields, nil)
}

func validateUpdateOrder(v *validator.Validate, req UpdateOrderRequest) error {
	fields := structFields(v, req)
	if req.TotalAmount != nil && req.TotalAmount.IsNegative() {
		fields = append(fields, FieldError{Field: "total_amount", Message: "must not be negative"})
	}
	if req.Deposit != nil && req.Deposit.IsNegative() {
		fields = append(fields, FieldError{Field: "deposit", Message: "must not be negative"})
	}
	return newValidationError(fields, nil)
}
