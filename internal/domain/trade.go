package domain

import (
	"fmt"
	"strings"
	"time"
)

// MaxTradeItems is the default upper bound on items in one trade.
const MaxTradeItems = 1000

// TradeRequest is a proposed transfer of items from sender to receiver.
type TradeRequest struct {
	SenderID   string
	ReceiverID string
	Items      []string
}

// Validate checks the request shape. It does not look at inventories.
func (r *TradeRequest) Validate(maxItems int) error {
	if strings.TrimSpace(r.SenderID) == "" || strings.TrimSpace(r.ReceiverID) == "" {
		return fmt.Errorf("%w: sender and receiver are required", ErrInvalidRequest)
	}

	if r.SenderID == r.ReceiverID {
		return ErrSameAccount
	}

	if len(r.Items) == 0 {
		return ErrEmptyItems
	}

	if maxItems > 0 && len(r.Items) > maxItems {
		return fmt.Errorf("%w: %d items exceeds limit of %d", ErrTooManyItems, len(r.Items), maxItems)
	}

	for i, item := range r.Items {
		if strings.TrimSpace(item) == "" {
			return fmt.Errorf("%w: item at index %d is blank", ErrInvalidRequest, i)
		}
	}

	return nil
}

// TradeOutcome is the final state of a trade.
type TradeOutcome string

const (
	TradeCommitted TradeOutcome = "committed"
	TradeRejected  TradeOutcome = "rejected"
)

// TradeRecord is an immutable audit entry for one committed or rejected trade.
type TradeRecord struct {
	ID         string
	Sequence   int64
	SenderID   string
	ReceiverID string
	Items      []string
	Outcome    TradeOutcome
	Reason     ErrorCode
	Detail     string
	RecordedAt time.Time
}

// InvolvesAccount reports whether the account sent or received in this trade.
func (t *TradeRecord) InvolvesAccount(accountID string) bool {
	return t.SenderID == accountID || t.ReceiverID == accountID
}

// TradeFilter narrows a trade log listing.
type TradeFilter struct {
	AccountID     string
	AfterSequence int64
	Limit         int
}

// Matches reports whether the record passes the filter.
func (f TradeFilter) Matches(t *TradeRecord) bool {
	if t.Sequence <= f.AfterSequence {
		return false
	}
	return f.AccountID == "" || t.InvolvesAccount(f.AccountID)
}
