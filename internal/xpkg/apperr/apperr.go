// Package apperr defines the error taxonomy shared by all engine components.
// Every error a service returns to a handler is one of these kinds; anything
// else is treated as an internal error.
package apperr

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindValidation
	KindInvalidTransition
	KindInsufficientStock
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func InvalidTransition(format string, args ...any) error {
	return &Error{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

// Shortfall describes one ingredient that blocked a stock consumption.
type Shortfall struct {
	IngredientID   int64           `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	Available      decimal.Decimal `json:"available"`
	Needed         decimal.Decimal `json:"needed"`
}

// InsufficientStockError carries every shortfall found during the validation
// phase, not just the first, so the caller can present an actionable error.
type InsufficientStockError struct {
	Shortfalls []Shortfall
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %d ingredient(s)", len(e.Shortfalls))
}

func InsufficientStock(shortfalls []Shortfall) error {
	return &InsufficientStockError{Shortfalls: shortfalls}
}

// KindOf classifies any error into the taxonomy.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	var ise *InsufficientStockError
	if errors.As(err, &ise) {
		return KindInsufficientStock
	}
	return KindInternal
}
