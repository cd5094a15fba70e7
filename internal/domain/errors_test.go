package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorCode
	}{
		{nil, ""},
		{ErrSameAccount, CodeInvalidRequest},
		{fmt.Errorf("load: %w", ErrAccountNotFound), CodeAccountNotFound},
		{&InsufficientInventoryError{AccountID: "a", Missing: map[string]int{"x": 1}}, CodeInsufficientInventory},
		{fmt.Errorf("%w: connection refused", ErrStorageUnavailable), CodeStorageUnavailable},
		{context.DeadlineExceeded, CodeStorageUnavailable},
		{ErrInternalInconsistency, CodeInternalInconsistency},
		{fmt.Errorf("%w: append: %w", ErrInternalInconsistency, fmt.Errorf("%w: disk full", ErrStorageUnavailable)), CodeInternalInconsistency},
		{errors.New("boom"), CodeInternalInconsistency},
	}

	for _, tt := range tests {
		if got := CodeOf(tt.err); got != tt.want {
			t.Errorf("CodeOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(ErrStorageUnavailable) {
		t.Error("storage unavailable should be retryable")
	}
	if Retryable(ErrSameAccount) || Retryable(ErrInsufficientInventory) {
		t.Error("validation errors should not be retryable")
	}
	if Retryable(fmt.Errorf("%w: %w", ErrInternalInconsistency, ErrStorageUnavailable)) {
		t.Error("inconsistency wrapping a storage failure should not be retryable")
	}
}

func TestInsufficientInventoryError_Message(t *testing.T) {
	err := &InsufficientInventoryError{AccountID: "alice", Missing: map[string]int{"sword": 1, "bow": 2}}

	msg := err.Error()
	if !strings.Contains(msg, "alice") || !strings.Contains(msg, "bow x2, sword x1") {
		t.Errorf("unexpected message: %s", msg)
	}
}
