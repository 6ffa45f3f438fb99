package shared

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates a missing or invalid bearer token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the caller lacks the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict indicates a uniqueness or reference conflict.
	ErrConflict = errors.New("conflict")
	// ErrValidation marks request input rejected before any write.
	ErrValidation = errors.New("validation failed")
	// ErrInsufficientStock is matched by InsufficientStockError.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrProductNotFound is matched by ProductNotFoundError.
	ErrProductNotFound = errors.New("product not found")
)

// ValidationError carries a user-facing message plus per-field details.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

// NewValidationError builds a ValidationError with a single message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

// Is allows errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// InsufficientStockError reports a line whose quantity exceeds stock on hand.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s. Available: %d", e.ProductName, e.Available)
}

// Is allows errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// ProductNotFoundError reports a product id referenced by a bill or receipt that does not exist.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("Product id %d not found", e.ProductID)
}

// Is allows errors.Is(err, ErrProductNotFound).
func (e *ProductNotFoundError) Is(target error) bool {
	return target == ErrProductNotFound
}

type notFoundError struct {
	resource string
}

func (e notFoundError) Error() string { return e.resource + " not found" }

func (e notFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound returns an error matching ErrNotFound whose message names the resource.
func NotFound(resource string) error {
	return notFoundError{resource: resource}
}
