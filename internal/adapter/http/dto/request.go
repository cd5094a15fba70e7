package dto

import (
	"github.com/iho/barter/internal/domain"
)

// CreateAccountRequest is sent by the registration hook.
type CreateAccountRequest struct {
	ID    string   `json:"id"`
	Items []string `json:"items,omitempty"`
}

// CreditRequest grants items to an account.
type CreditRequest struct {
	Items []string `json:"items"`
}

// ProposeTradeRequest represents a request to move items between accounts.
type ProposeTradeRequest struct {
	SenderID   string   `json:"sender_id"`
	ReceiverID string   `json:"receiver_id"`
	Items      []string `json:"items"`
}

// ToDomain converts to a domain trade request.
func (r *ProposeTradeRequest) ToDomain() domain.TradeRequest {
	return domain.TradeRequest{
		SenderID:   r.SenderID,
		ReceiverID: r.ReceiverID,
		Items:      r.Items,
	}
}
