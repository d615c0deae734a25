package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/chisports/gmengine/go/internal/outbox"
)

// DraftEvent is the frame pushed to websocket clients.
type DraftEvent struct {
	ID        string          `json:"id"`
	DraftID   string          `json:"draft_id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// EventType is the kind of mock draft frame.
type EventType string

const (
	EventTypeState          EventType = "MockDraftState" // snapshot sent on connect
	EventTypeDraftStarted   EventType = outbox.EventMockDraftStarted
	EventTypePickMade       EventType = outbox.EventMockDraftPickMade
	EventTypeDraftCompleted EventType = outbox.EventMockDraftCompleted
	EventTypeDraftReset     EventType = outbox.EventMockDraftReset
)

// Subjects lists the JetStream subjects the gateway relays.
func Subjects(prefix string) []string {
	return []string{
		prefix + "." + outbox.EventMockDraftStarted,
		prefix + "." + outbox.EventMockDraftPickMade,
		prefix + "." + outbox.EventMockDraftCompleted,
		prefix + "." + outbox.EventMockDraftReset,
	}
}

// FromEnvelope converts a published outbox envelope. The aggregate id of a
// mock draft event is the draft id.
func FromEnvelope(env outbox.Envelope) (*DraftEvent, error) {
	var t EventType
	switch env.EventType {
	case outbox.EventMockDraftStarted:
		t = EventTypeDraftStarted
	case outbox.EventMockDraftPickMade:
		t = EventTypePickMade
	case outbox.EventMockDraftCompleted:
		t = EventTypeDraftCompleted
	case outbox.EventMockDraftReset:
		t = EventTypeDraftReset
	default:
		return nil, fmt.Errorf("unknown event type: %s", env.EventType)
	}
	return &DraftEvent{
		ID:        env.EventID,
		DraftID:   env.AggregateID,
		Type:      t,
		Timestamp: env.Timestamp,
		Data:      env.Payload,
	}, nil
}
