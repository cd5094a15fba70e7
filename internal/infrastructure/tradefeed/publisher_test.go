package tradefeed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/iho/barter/internal/domain"
)

func TestLogPublisherWritesEvent(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(zerolog.New(&buf))

	err := p.Publish(context.Background(), domain.TradeEvent{
		EventType: domain.EventTypeTradeCommitted,
		TradeID:   "t-1",
		Sequence:  4,
		Items:     []string{"apple"},
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"trade_id":"t-1"`) || !strings.Contains(out, `"sequence":4`) {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestKafkaPublisherEncodesEvent(t *testing.T) {
	w := &stubWriter{}
	p := NewKafkaPublisherWithWriter(w)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	event := domain.TradeEvent{
		EventType:  domain.EventTypeTradeCommitted,
		TradeID:    "t-7",
		Sequence:   7,
		SenderID:   "alice",
		ReceiverID: "bob",
		Items:      []string{"apple", "bone"},
		EventAt:    at,
	}

	if err := p.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if len(w.msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(w.msgs))
	}

	msg := w.msgs[0]
	if string(msg.Key) != "t-7" {
		t.Fatalf("expected key t-7, got %q", msg.Key)
	}
	if !msg.Time.Equal(at) {
		t.Fatalf("expected message time %v, got %v", at, msg.Time)
	}

	var decoded domain.TradeEvent
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Sequence != 7 || len(decoded.Items) != 2 {
		t.Fatalf("unexpected payload: %+v", decoded)
	}

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	if headers["event_type"] != domain.EventTypeTradeCommitted || headers["sequence"] != "7" {
		t.Fatalf("unexpected headers: %v", headers)
	}
}

func TestKafkaPublisherPropagatesWriteError(t *testing.T) {
	w := &stubWriter{err: errors.New("no brokers")}
	p := NewKafkaPublisherWithWriter(w)

	if err := p.Publish(context.Background(), domain.TradeEvent{TradeID: "t"}); err == nil {
		t.Fatalf("expected write error")
	}

	if err := p.Close(); err != nil || !w.closed {
		t.Fatalf("expected writer to close, err=%v", err)
	}
}

type stubWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *stubWriter) Close() error {
	w.closed = true
	return nil
}
