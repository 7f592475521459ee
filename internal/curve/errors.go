// =============================
// File: internal/curve/errors.go
// =============================
package curve

import (
	"errors"
	"fmt"
)

// Ошибки домена: отклоняются до любого изменения состояния и никогда
// не повторяются автоматически.
var (
	ErrInvalidEdition    = errors.New("edition index must be at least 1")
	ErrUnknownKind       = errors.New("unknown curve kind")
	ErrKindMismatch      = errors.New("curve kind does not support this operation")
	ErrZeroMaxSupply     = errors.New("max supply must be greater than zero")
	ErrCeilingBelowFloor = errors.New("price ceiling is below price floor")
	ErrTableTooLarge     = errors.New("lookup table exceeds allowed length")
)

// Capacity errors: terminal for the attempt, resubmitting with the same
// parameters will fail again.
var (
	ErrSupplyExhausted = errors.New("maximum supply has been reached")
	ErrPriceNotFound   = errors.New("no price stored for edition")
)

// Authorization and governance errors.
var (
	ErrUnauthorized     = errors.New("only the curve authority can perform this action")
	ErrCurveNotEmpty    = errors.New("curve is not empty: cannot close while supply exists")
	ErrInvalidMaxSupply = errors.New("max supply cannot be set below current supply")
)

// ErrOverflow marks arithmetic that would exceed the representable
// range. Never saturated, never wrapped.
var ErrOverflow = errors.New("arithmetic overflow in price calculation")

// OverflowError carries the operands of the failed operation so callers
// can distinguish "arithmetic would lose information" from invalid input.
type OverflowError struct {
	Op   string
	A, B uint64
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("arithmetic overflow: %d %s %d exceeds uint64", e.A, e.Op, e.B)
}

func (e *OverflowError) Unwrap() error {
	return ErrOverflow
}

// IsOverflow определяет, является ли ошибка ошибкой переполнения.
func IsOverflow(err error) bool {
	return errors.Is(err, ErrOverflow)
}
