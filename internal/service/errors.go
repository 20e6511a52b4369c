package service

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by all services. Handlers translate these into
// HTTP statuses; anything else is treated as an internal failure and is
// logged rather than detailed to the caller.
var (
	// ErrNotFound signals an entity absent from the acting user's company.
	ErrNotFound = errors.New("not found")

	// ErrNoCompany signals an actor without a company context. It is
	// checked before any store access.
	ErrNoCompany = errors.New("user is not associated with a company")

	// ErrForbidden signals an actor whose role does not permit the operation.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError is a caller-correctable input error, surfaced verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockError names the offending product so the caller can
// correct the request.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product: %s (requested %d, available %d)",
		e.ProductName, e.Requested, e.Available)
}
