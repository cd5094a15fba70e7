package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/barter/internal/adapter/http/dto"
	"github.com/iho/barter/internal/domain"
)

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/accounts?limit=50", nil)
	assert.Equal(t, 50, parseIntQuery(req, "limit", 10))

	req = httptest.NewRequest(http.MethodGet, "/accounts?limit=invalid", nil)
	assert.Equal(t, 10, parseIntQuery(req, "limit", 10))

	req = httptest.NewRequest(http.MethodGet, "/trades?after=12", nil)
	assert.Equal(t, int64(12), parseInt64Query(req, "after", 0))
	assert.Equal(t, int64(7), parseInt64Query(req, "missing", 7))
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"same account", domain.ErrSameAccount, http.StatusBadRequest, "invalid_request"},
		{"empty items", domain.ErrEmptyItems, http.StatusBadRequest, "invalid_request"},
		{"not found", fmt.Errorf("load: %w", domain.ErrAccountNotFound), http.StatusNotFound, "account_not_found"},
		{"insufficient", &domain.InsufficientInventoryError{AccountID: "a", Missing: map[string]int{"x": 1}}, http.StatusConflict, "insufficient_inventory"},
		{"storage", domain.ErrStorageUnavailable, http.StatusServiceUnavailable, "storage_unavailable"},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable, "storage_unavailable"},
		{"exists", domain.ErrAccountExists, http.StatusConflict, "account_exists"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_inconsistency"},
		{"log append after mutation", fmt.Errorf("%w: append: %w", domain.ErrInternalInconsistency, domain.ErrStorageUnavailable),
			http.StatusInternalServerError, "internal_inconsistency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := mapDomainError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestWriteDomainError(t *testing.T) {
	rr := httptest.NewRecorder()
	writeDomainError(rr, &domain.InsufficientInventoryError{AccountID: "alice", Missing: map[string]int{"bone": 2}})

	require.Equal(t, http.StatusConflict, rr.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "insufficient_inventory", resp.Error)
	assert.Equal(t, map[string]int{"bone": 2}, resp.MissingItems)

	rr = httptest.NewRecorder()
	writeDomainError(rr, domain.ErrStorageUnavailable)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, retryAfterSeconds, rr.Header().Get("Retry-After"))
}
