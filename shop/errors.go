package shop

import (
	"errors"
	"fmt"
)

// Sentinel errors, for use with errors.Is. None of these are fatal: every
// operation that returns one leaves the system in a state the caller can
// recover from by re-prompting or retrying.
var (
	// ErrValidation covers empty required fields and out-of-range numerics
	// (negative price, negative stock, quantity < 1).
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateKey is returned when a book id or username already exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNotFound is returned for stale references, e.g. a row index that no
	// longer exists. The operation is a no-op.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientStock is returned when a cart add or merge would exceed
	// the book's current stock. The cart is left unchanged.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrEmptyCart is returned by checkout when the cart has no items.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrPersistence wraps file read/write failures. In-memory state is NOT
	// rolled back on a failed save, so memory and disk can diverge until the
	// next successful save.
	ErrPersistence = errors.New("persistence failed")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// InsufficientStockError reports how much stock was actually available.
type InsufficientStockError struct {
	BookID    string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.BookID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
