// Package validation guards the write path: nothing reaches the store unless
// quantities and prices are positive, the type is known and the purchase
// date is not in the future.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/atharvakonge/portfolio-pilot/internal/models"
)

// Messages returned to API clients.
const (
	MsgMissingFields   = "Missing required fields"
	MsgNonPositive     = "Quantity and prices must be positive numbers"
	MsgQuantity        = "Quantity must be a positive number"
	MsgPurchasePrice   = "Purchase price must be a positive number"
	MsgCurrentPrice    = "Current price must be a positive number"
	MsgFutureDate      = "Purchase date cannot be in the future"
	MsgInvalidDate     = "Purchase date is not a valid date"
	MsgInvalidType     = "Type must be Stock or IPO"
	MsgSymbolTooLong   = "Stock symbol must be at most 10 characters"
	MsgSymbolEmpty     = "Stock symbol cannot be empty"
	MsgNothingToUpdate = "No updatable fields provided"
)

const (
	dateOnlyLayout   = "2006-01-02"
	validatorTagName = "validate"
)

// Error is a rejected write. Message is safe to show to the user.
type Error struct {
	Message string
	Field   string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err is (or wraps) a *Error.
func IsValidationError(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}

// CreateRequest is the JSON body accepted when recording a new lot
type CreateRequest struct {
	StockSymbol   string  `json:"stockSymbol" validate:"required,max=10"`
	StockName     string  `json:"stockName"`
	Type          string  `json:"type" validate:"required,oneof=Stock IPO"`
	PurchaseDate  string  `json:"purchaseDate" validate:"required"`
	Quantity      float64 `json:"quantity" validate:"required,gt=0"`
	PurchasePrice float64 `json:"purchasePrice" validate:"required,gt=0"`
	CurrentPrice  float64 `json:"currentPrice" validate:"required,gt=0"`
	Notes         string  `json:"notes"`
}

// UpdateRequest lists the only fields a client may change. Absent fields
// stay as they are; anything else in the body is ignored.
type UpdateRequest struct {
	StockSymbol   *string  `json:"stockSymbol" validate:"omitnil,max=10"`
	StockName     *string  `json:"stockName"`
	Type          *string  `json:"type" validate:"omitnil,oneof=Stock IPO"`
	PurchaseDate  *string  `json:"purchaseDate"`
	Quantity      *float64 `json:"quantity" validate:"omitnil,gt=0"`
	PurchasePrice *float64 `json:"purchasePrice" validate:"omitnil,gt=0"`
	CurrentPrice  *float64 `json:"currentPrice" validate:"omitnil,gt=0"`
	Notes         *string  `json:"notes"`
}

// Validator checks write requests against a clock.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

// New returns a Validator; now defaults to time.Now.
func New(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName(validatorTagName)
	return &Validator{v: v, now: now}
}

// ValidateCreate normalises req and returns the fields to store.
func (val *Validator) ValidateCreate(req CreateRequest) (models.NewInvestment, error) {
	req.StockSymbol = normalizeSymbol(req.StockSymbol)
	req.StockName = strings.TrimSpace(req.StockName)
	req.Type = strings.TrimSpace(req.Type)
	req.PurchaseDate = strings.TrimSpace(req.PurchaseDate)

	if err := val.v.Struct(req); err != nil {
		return models.NewInvestment{}, translate(err, true)
	}

	date, err := val.purchaseDate(req.PurchaseDate)
	if err != nil {
		return models.NewInvestment{}, err
	}

	return models.NewInvestment{
		StockSymbol:   req.StockSymbol,
		StockName:     req.StockName,
		Type:          models.InvestmentType(req.Type),
		PurchaseDate:  date,
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
		CurrentPrice:  req.CurrentPrice,
		Notes:         req.Notes,
	}, nil
}

// ValidateUpdate checks only the fields present in req.
func (val *Validator) ValidateUpdate(req UpdateRequest) (models.InvestmentPatch, error) {
	var patch models.InvestmentPatch

	if req.StockSymbol != nil {
		s := normalizeSymbol(*req.StockSymbol)
		if s == "" {
			return patch, &Error{Field: "stockSymbol", Message: MsgSymbolEmpty}
		}
		req.StockSymbol = &s
		patch.StockSymbol = &s
	}
	if req.Type != nil {
		s := strings.TrimSpace(*req.Type)
		req.Type = &s
	}

	if err := val.v.Struct(req); err != nil {
		return patch, translate(err, false)
	}

	if req.StockName != nil {
		s := strings.TrimSpace(*req.StockName)
		patch.StockName = &s
	}
	if req.Type != nil {
		typ := models.InvestmentType(*req.Type)
		patch.Type = &typ
	}
	if req.PurchaseDate != nil {
		date, err := val.purchaseDate(strings.TrimSpace(*req.PurchaseDate))
		if err != nil {
			return patch, err
		}
		patch.PurchaseDate = &date
	}
	patch.Quantity = req.Quantity
	patch.PurchasePrice = req.PurchasePrice
	patch.CurrentPrice = req.CurrentPrice
	patch.Notes = req.Notes

	if patch.Empty() {
		return patch, &Error{Message: MsgNothingToUpdate}
	}
	return patch, nil
}

func (val *Validator) purchaseDate(raw string) (time.Time, error) {
	date, err := ParseDate(raw)
	if err != nil {
		return time.Time{}, &Error{Field: "purchaseDate", Message: MsgInvalidDate}
	}
	if date.After(val.now()) {
		return time.Time{}, &Error{Field: "purchaseDate", Message: MsgFutureDate}
	}
	return date, nil
}

// ParseDate accepts a calendar date (YYYY-MM-DD, read as UTC midnight) or an
// RFC 3339 timestamp.
func ParseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(dateOnlyLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// translate maps the first failing rule to a user-facing message.
func translate(err error, creating bool) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate request: %w", err)
	}

	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return &Error{Message: MsgMissingFields}
		}
	}

	fe := verrs[0]
	field := jsonName(fe.Field())
	switch fe.Tag() {
	case "gt":
		if creating {
			return &Error{Field: field, Message: MsgNonPositive}
		}
		switch fe.Field() {
		case "Quantity":
			return &Error{Field: field, Message: MsgQuantity}
		case "PurchasePrice":
			return &Error{Field: field, Message: MsgPurchasePrice}
		default:
			return &Error{Field: field, Message: MsgCurrentPrice}
		}
	case "oneof":
		return &Error{Field: field, Message: MsgInvalidType}
	case "max":
		return &Error{Field: field, Message: MsgSymbolTooLong}
	}
	return &Error{Field: field, Message: fe.Error()}
}

func jsonName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
