package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrColumnNotFound   = fmt.Errorf("%w: column", ErrNotFound)
	ErrNoNumericColumns = errors.New("no numeric columns in table")

	// Input contract errors
	ErrLengthMismatch    = errors.New("sequence lengths differ")
	ErrNonFinite         = errors.New("sequence holds NaN or infinite values")
	ErrDuplicateColumn   = errors.New("duplicate column name")
	ErrInvalidSelection  = errors.New("invalid selection config")
	ErrInsufficientData  = errors.New("insufficient data for analysis")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// Error constructors with context
func NewLengthMismatchError(what string, want, got int) error {
	return fmt.Errorf("%w: %s has %d values, expected %d", ErrLengthMismatch, what, got, want)
}

func NewColumnNotFoundError(key VariableKey) error {
	return fmt.Errorf("%w: %s", ErrColumnNotFound, key)
}

func NewSelectionError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidSelection, field, reason)
}

// IsContractError reports whether err signals a caller bug rather than a data characteristic.
func IsContractError(err error) bool {
	return errors.Is(err, ErrLengthMismatch) ||
		errors.Is(err, ErrNonFinite) ||
		errors.Is(err, ErrDuplicateColumn) ||
		errors.Is(err, ErrInvalidSelection)
}
