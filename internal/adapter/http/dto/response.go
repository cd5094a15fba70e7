package dto

import (
	"time"

	"github.com/iho/barter/internal/domain"
	"github.com/iho/barter/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string         `json:"id"`
	Inventory map[string]int `json:"inventory"`
	Items     []string       `json:"items"`
	Version   int64          `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	inventory := make(map[string]int, len(a.Inventory))
	for item, n := range a.Inventory {
		inventory[item] = n
	}

	return &AccountResponse{
		ID:        a.ID,
		Inventory: inventory,
		Items:     a.Inventory.Items(),
		Version:   a.Version,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a list of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// TradeResponse represents a trade record in API responses.
type TradeResponse struct {
	ID         string    `json:"id"`
	Sequence   int64     `json:"sequence"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Items      []string  `json:"items"`
	Outcome    string    `json:"outcome"`
	Reason     string    `json:"reason,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// TradeFromDomain converts a trade record to response.
func TradeFromDomain(t *domain.TradeRecord) *TradeResponse {
	return &TradeResponse{
		ID:         t.ID,
		Sequence:   t.Sequence,
		SenderID:   t.SenderID,
		ReceiverID: t.ReceiverID,
		Items:      t.Items,
		Outcome:    string(t.Outcome),
		Reason:     string(t.Reason),
		Detail:     t.Detail,
		RecordedAt: t.RecordedAt,
	}
}

// TradesFromDomain converts trade records to responses.
func TradesFromDomain(trades []*domain.TradeRecord) []*TradeResponse {
	result := make([]*TradeResponse, len(trades))
	for i, t := range trades {
		result[i] = TradeFromDomain(t)
	}
	return result
}

// ListTradesResponse represents a page of the trade log.
type ListTradesResponse struct {
	Trades []*TradeResponse `json:"trades"`
	// NextAfter is the cursor for the following page; zero when empty.
	NextAfter int64 `json:"next_after"`
}

// NewListTradesResponse builds a trade page with its continuation cursor.
func NewListTradesResponse(trades []*domain.TradeRecord) ListTradesResponse {
	resp := ListTradesResponse{Trades: TradesFromDomain(trades)}
	if len(trades) > 0 {
		resp.NextAfter = trades[len(trades)-1].Sequence
	}
	return resp
}

// PresenceResponse reports one account's presence.
type PresenceResponse struct {
	AccountID string     `json:"account_id"`
	Online    bool       `json:"online"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
}

// OnlineResponse lists online accounts.
type OnlineResponse struct {
	Accounts []string `json:"accounts"`
	TTL      string   `json:"ttl"`
}

// ConsistencyResponse reports a ledger scan.
type ConsistencyResponse struct {
	Consistent    bool           `json:"consistent"`
	TotalAccounts int            `json:"total_accounts"`
	ItemTotals    map[string]int `json:"item_totals"`
	Violations    []string       `json:"violations"`
	CheckedAt     time.Time      `json:"checked_at"`
}

// ConsistencyFromReport converts a reconciliation report.
func ConsistencyFromReport(r *usecase.ConsistencyReport) ConsistencyResponse {
	return ConsistencyResponse{
		Consistent:    r.Consistent,
		TotalAccounts: r.TotalAccounts,
		ItemTotals:    r.ItemTotals,
		Violations:    r.Violations,
		CheckedAt:     r.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error        string         `json:"error"`
	Message      string         `json:"message,omitempty"`
	MissingItems map[string]int `json:"missing_items,omitempty"`
}
