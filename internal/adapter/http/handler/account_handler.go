package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/barter/internal/adapter/http/dto"
	"github.com/iho/barter/internal/adapter/http/middleware"
	"github.com/iho/barter/internal/domain"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, id string, items []string) (*domain.Account, error)
	Credit(ctx context.Context, accountID string, items []string) (*domain.Account, error)
	Snapshot(ctx context.Context, accountID string) (*domain.Account, error)
	ListAccounts(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	ledgerUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(ledgerUC AccountService) *AccountHandler {
	return &AccountHandler{ledgerUC: ledgerUC}
}

// Create registers an account. Called by the registration hook.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, string(domain.CodeInvalidRequest), err.Error())
		return
	}

	account, err := h.ledgerUC.CreateAccount(r.Context(), req.ID, req.Items)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Inventory returns a snapshot of the account's items.
func (h *AccountHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, string(domain.CodeInvalidRequest), "missing account ID")
		return
	}

	if !middleware.CanActAs(r.Context(), id) {
		writeError(w, http.StatusForbidden, "forbidden", "cannot read another account's inventory")
		return
	}

	account, err := h.ledgerUC.Snapshot(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Credit grants items to an account.
func (h *AccountHandler) Credit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.CreditRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, string(domain.CodeInvalidRequest), err.Error())
		return
	}

	account, err := h.ledgerUC.Credit(r.Context(), id, req.Items)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	accounts, err := h.ledgerUC.ListAccounts(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}
