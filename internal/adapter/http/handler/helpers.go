package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/iho/barter/internal/adapter/http/dto"
	"github.com/iho/barter/internal/domain"
)

// retryAfterSeconds is advertised on storage_unavailable responses.
const retryAfterSeconds = "1"

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   code,
		Message: details,
	})
}

// writeDomainError maps err to its status and reason code.
func writeDomainError(w http.ResponseWriter, err error) {
	status, code := mapDomainError(err)
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", retryAfterSeconds)
	}

	writeJSON(w, status, dto.ErrorResponse{
		Error:        code,
		Message:      err.Error(),
		MissingItems: domain.MissingItems(err),
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) (int, string) {
	if errors.Is(err, domain.ErrAccountExists) {
		return http.StatusConflict, "account_exists"
	}

	code := domain.CodeOf(err)
	switch code {
	case domain.CodeInvalidRequest:
		return http.StatusBadRequest, string(code)
	case domain.CodeAccountNotFound:
		return http.StatusNotFound, string(code)
	case domain.CodeInsufficientInventory:
		return http.StatusConflict, string(code)
	case domain.CodeStorageUnavailable:
		return http.StatusServiceUnavailable, string(code)
	default:
		return http.StatusInternalServerError, string(domain.CodeInternalInconsistency)
	}
}

// decodeJSON decodes the request body, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseInt64Query parses an int64 query parameter with a default value.
func parseInt64Query(r *http.Request, key string, defaultValue int64) int64 {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return defaultValue
	}
	return i
}
