package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// Request errors
	ErrInvalidRequest = errors.New("invalid trade request")
	ErrSameAccount    = fmt.Errorf("%w: cannot trade with the same account", ErrInvalidRequest)
	ErrEmptyItems     = fmt.Errorf("%w: item list is empty", ErrInvalidRequest)
	ErrTooManyItems   = fmt.Errorf("%w: too many items", ErrInvalidRequest)

	// Account errors
	ErrAccountNotFound       = errors.New("account not found")
	ErrAccountExists         = errors.New("account already exists")
	ErrInsufficientInventory = errors.New("insufficient inventory")

	// Infrastructure errors
	ErrStorageUnavailable    = errors.New("storage unavailable")
	ErrInternalInconsistency = errors.New("internal inconsistency")
)

// ErrorCode is a stable, machine-readable reason code.
type ErrorCode string

const (
	CodeInvalidRequest        ErrorCode = "invalid_request"
	CodeAccountNotFound       ErrorCode = "account_not_found"
	CodeInsufficientInventory ErrorCode = "insufficient_inventory"
	CodeStorageUnavailable    ErrorCode = "storage_unavailable"
	CodeInternalInconsistency ErrorCode = "internal_inconsistency"
)

// InsufficientInventoryError names the items an account is short of.
// Missing maps item identifier to the shortfall.
type InsufficientInventoryError struct {
	AccountID string
	Missing   map[string]int
}

func (e *InsufficientInventoryError) Error() string {
	items := make([]string, 0, len(e.Missing))
	for item := range e.Missing {
		items = append(items, item)
	}
	sort.Strings(items)

	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprintf("%s x%d", item, e.Missing[item])
	}

	return fmt.Sprintf("%s: account %s is missing %s", ErrInsufficientInventory, e.AccountID, strings.Join(parts, ", "))
}

// Is lets errors.Is match ErrInsufficientInventory.
func (e *InsufficientInventoryError) Is(target error) bool {
	return target == ErrInsufficientInventory
}

// CodeOf maps an error to its reason code. Unknown errors are reported as
// internal inconsistencies so they are never mistaken for clean rejections.
// An inconsistency wrapping a storage failure stays an inconsistency.
func CodeOf(err error) ErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest
	case errors.Is(err, ErrAccountNotFound):
		return CodeAccountNotFound
	case errors.Is(err, ErrInsufficientInventory):
		return CodeInsufficientInventory
	case errors.Is(err, ErrInternalInconsistency):
		return CodeInternalInconsistency
	case errors.Is(err, ErrStorageUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return CodeStorageUnavailable
	default:
		return CodeInternalInconsistency
	}
}

// Retryable reports whether the caller may retry the operation after backoff.
func Retryable(err error) bool {
	return CodeOf(err) == CodeStorageUnavailable
}

// MissingItems extracts the shortfall from an insufficient inventory error.
func MissingItems(err error) map[string]int {
	var insufficient *InsufficientInventoryError
	if errors.As(err, &insufficient) {
		return insufficient.Missing
	}
	return nil
}
