package handler

import (
	"context"
	"net/http"

	"github.com/iho/barter/internal/adapter/http/dto"
	"github.com/iho/barter/internal/adapter/http/middleware"
	"github.com/iho/barter/internal/domain"
)

// TradeService defines the behavior needed by TradeHandler.
type TradeService interface {
	ExecuteTrade(ctx context.Context, req domain.TradeRequest) (*domain.TradeRecord, error)
}

// TradeLogService lists trade records.
type TradeLogService interface {
	Collect(ctx context.Context, filter domain.TradeFilter) ([]*domain.TradeRecord, error)
}

// TradeHandler handles trade proposals and trade log queries.
type TradeHandler struct {
	exchangeUC TradeService
	tradeLogUC TradeLogService
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(exchangeUC TradeService, tradeLogUC TradeLogService) *TradeHandler {
	return &TradeHandler{exchangeUC: exchangeUC, tradeLogUC: tradeLogUC}
}

// Propose executes a trade. A committed trade answers 201 with its record.
func (h *TradeHandler) Propose(w http.ResponseWriter, r *http.Request) {
	var req dto.ProposeTradeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, string(domain.CodeInvalidRequest), err.Error())
		return
	}

	if !middleware.CanActAs(r.Context(), req.SenderID) {
		writeError(w, http.StatusForbidden, "forbidden", "only the sender may propose a trade")
		return
	}

	record, err := h.exchangeUC.ExecuteTrade(r.Context(), req.ToDomain())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TradeFromDomain(record))
}

// List returns trade records after a sequence cursor in ascending order.
func (h *TradeHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.TradeFilter{
		AccountID:     r.URL.Query().Get("account_id"),
		AfterSequence: parseInt64Query(r, "after", 0),
		Limit:         parseIntQuery(r, "limit", 100),
	}

	// Members only see trades they took part in
	if caller, ok := middleware.CallerFromContext(r.Context()); ok && !caller.IsAdmin() {
		if filter.AccountID == "" {
			filter.AccountID = caller.AccountID
		}
		if filter.AccountID != caller.AccountID {
			writeError(w, http.StatusForbidden, "forbidden", "cannot list another account's trades")
			return
		}
	}

	records, err := h.tradeLogUC.Collect(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListTradesResponse(records))
}
