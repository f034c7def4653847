package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrMetadataTooLarge = errors.New("metadata size exceeds limit")
)

// Validation constants
const (
	MaxTitleLength  = 255
	MaxMetadataSize = 10240 // 10KB
)

// ValidateEntry checks the preconditions for applying an entry: it must exist
// and name a currency. The currency code is normalized in place. Decimal
// amounts are always finite.
func ValidateEntry(e *Entry) error {
	if e == nil {
		return fmt.Errorf("%w: missing entry", ErrInvalidEntry)
	}

	e.Currency = NormalizeCurrency(e.Currency)
	if e.Currency == "" {
		return fmt.Errorf("%w: missing currency", ErrInvalidEntry)
	}

	return nil
}

// ValidateTitle rejects titles longer than MaxTitleLength characters.
func ValidateTitle(title string) error {
	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return fmt.Errorf("%w: title is %d characters, limit is %d", ErrInvalidEntry, n, MaxTitleLength)
	}
	return nil
}

// ParseAmount parses a textual amount. Empty, NaN and infinite values are
// rejected with ErrInvalidEntry.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: missing amount", ErrInvalidEntry)
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q is not a finite number", ErrInvalidEntry, s)
	}

	return amount, nil
}

// ValidatePositiveAmount validates the amount of a typed movement.
func ValidatePositiveAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	return nil
}

// ValidateMetadata validates metadata size
func ValidateMetadata(metadata map[string]any) error {
	if metadata == nil {
		return nil
	}

	// Estimate size (rough approximation)
	size := 0
	for k, v := range metadata {
		size += len(k)
		size += len(fmt.Sprintf("%v", v))
	}

	if size > MaxMetadataSize {
		return fmt.Errorf("%w: metadata size %d bytes exceeds limit of %d bytes", ErrMetadataTooLarge, size, MaxMetadataSize)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000

	if limit < 0 {
		limit = 0
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
