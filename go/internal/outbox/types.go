package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types written to the outbox.
const (
	EventMockDraftStarted   = "MockDraftStarted"
	EventMockDraftPickMade  = "MockDraftPickMade"
	EventMockDraftCompleted = "MockDraftCompleted"
	EventMockDraftReset     = "MockDraftReset"
	EventTradeGraded        = "TradeGraded"
	EventTradeDecided       = "TradeDecided"
	EventUserScoreUpdated   = "UserScoreUpdated"
)

// OutboxEvent is one row of the outbox. AggregateID is the trade, mock draft
// or user the event is about.
type OutboxEvent struct {
	ID          uuid.UUID       `json:"id"`
	AggregateID uuid.UUID       `json:"aggregate_id"`
	EventType   string          `json:"event_type"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"created_at"`
	SentAt      *time.Time      `json:"sent_at,omitempty"`
	Attempts    int             `json:"attempts"`
}

// Envelope is the message body published to JetStream.
type Envelope struct {
	EventID     string          `json:"eventId"`
	EventType   string          `json:"eventType"`
	AggregateID string          `json:"aggregateId"`
	Timestamp   time.Time       `json:"timestamp"`
	Payload     json.RawMessage `json:"payload"`
}

// NewEnvelope wraps an outbox event for publishing.
func NewEnvelope(event OutboxEvent) Envelope {
	ts := event.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return Envelope{
		EventID:     event.ID.String(),
		EventType:   event.EventType,
		AggregateID: event.AggregateID.String(),
		Timestamp:   ts.UTC(),
		Payload:     event.Payload,
	}
}

// UserAggregateID maps a user id onto the uuid aggregate column.
func UserAggregateID(userID string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("gm:user:"+userID))
}
