package domain

import "time"

// Event types
const (
	EventTypeTradeCommitted = "trade.committed"
	EventTypeTradeRejected  = "trade.rejected"
)

// TradeEvent is the payload published to the trade feed.
type TradeEvent struct {
	EventType  string    `json:"event_type"`
	TradeID    string    `json:"trade_id"`
	Sequence   int64     `json:"sequence"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Items      []string  `json:"items"`
	Reason     string    `json:"reason,omitempty"`
	EventAt    time.Time `json:"event_at"`
}

// NewTradeEvent builds the feed payload for a trade record.
func NewTradeEvent(t *TradeRecord) TradeEvent {
	eventType := EventTypeTradeCommitted
	if t.Outcome == TradeRejected {
		eventType = EventTypeTradeRejected
	}

	return TradeEvent{
		EventType:  eventType,
		TradeID:    t.ID,
		Sequence:   t.Sequence,
		SenderID:   t.SenderID,
		ReceiverID: t.ReceiverID,
		Items:      t.Items,
		Reason:     string(t.Reason),
		EventAt:    t.RecordedAt,
	}
}
