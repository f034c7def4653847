package domain

import "errors"

var (
	// Entry errors
	ErrInvalidEntry      = errors.New("invalid entry")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Currency and rate errors
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrInvalidRate         = errors.New("rate must be positive")
	ErrUnresolvableRate    = errors.New("no direct or inverse rate")

	// Storage errors. Repaired where they are detected, only ever logged.
	ErrMalformedPersistedState = errors.New("malformed persisted state")
)
