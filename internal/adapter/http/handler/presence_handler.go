package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/barter/internal/adapter/http/dto"
	"github.com/iho/barter/internal/adapter/http/middleware"
	"github.com/iho/barter/internal/domain"
)

// PresenceService defines the behavior needed by PresenceHandler.
type PresenceService interface {
	Heartbeat(ctx context.Context, accountID string) error
	LastSeen(ctx context.Context, accountID string) (domain.PresenceEntry, bool, error)
	IsOnline(ctx context.Context, accountID string) (bool, error)
	ListOnline(ctx context.Context) ([]string, error)
	TTL() time.Duration
}

// PresenceHandler handles heartbeats and online queries.
type PresenceHandler struct {
	presenceUC PresenceService
}

// NewPresenceHandler creates a new PresenceHandler.
func NewPresenceHandler(presenceUC PresenceService) *PresenceHandler {
	return &PresenceHandler{presenceUC: presenceUC}
}

// Heartbeat marks the account as seen now.
func (h *PresenceHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if !middleware.CanActAs(r.Context(), id) {
		writeError(w, http.StatusForbidden, "forbidden", "heartbeats are accepted for the caller's own account")
		return
	}

	if err := h.presenceUC.Heartbeat(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get reports whether the account is online. Unknown accounts are offline.
func (h *PresenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	online, err := h.presenceUC.IsOnline(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := dto.PresenceResponse{AccountID: id, Online: online}

	entry, ok, err := h.presenceUC.LastSeen(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if ok {
		resp.LastSeen = &entry.LastSeen
	}

	writeJSON(w, http.StatusOK, resp)
}

// Online lists accounts seen within the presence TTL.
func (h *PresenceHandler) Online(w http.ResponseWriter, r *http.Request) {
	ids, err := h.presenceUC.ListOnline(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OnlineResponse{
		Accounts: ids,
		TTL:      h.presenceUC.TTL().String(),
	})
}
