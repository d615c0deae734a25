package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// OutboxRepository defines what the app layer needs from the repository
type OutboxRepository interface {
	InsertOutboxEvent(ctx context.Context, event OutboxEvent) error
	FetchUnsentOutbox(ctx context.Context, limit int) ([]OutboxEvent, error)
	FetchOutboxByID(ctx context.Context, id uuid.UUID) (*OutboxEvent, error)
	MarkOutboxSent(ctx context.Context, id uuid.UUID) error
	MarkOutboxFailed(ctx context.Context, id uuid.UUID, cause string) error
}

// App handles outbox business logic
type App struct {
	repo  OutboxRepository
	clock clockwork.Clock
}

// NewApp creates a new outbox App
func NewApp(repo OutboxRepository, clock clockwork.Clock) *App {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &App{
		repo:  repo,
		clock: clock,
	}
}

// NewEvent builds an outbox row for payload without writing it.
func NewEvent(clock clockwork.Clock, eventType string, aggregateID uuid.UUID, payload any) (OutboxEvent, error) {
	if eventType == "" {
		return OutboxEvent{}, fmt.Errorf("event type cannot be empty")
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return OutboxEvent{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return OutboxEvent{}, fmt.Errorf("event payload cannot be empty")
	}
	return OutboxEvent{
		ID:          uuid.New(),
		AggregateID: aggregateID,
		EventType:   eventType,
		Payload:     raw,
		CreatedAt:   clock.Now().UTC(),
	}, nil
}

// Enqueue writes an event to the outbox.
func (a *App) Enqueue(ctx context.Context, eventType string, aggregateID uuid.UUID, payload any) error {
	event, err := NewEvent(a.clock, eventType, aggregateID, payload)
	if err != nil {
		return fmt.Errorf("invalid %s event: %w", eventType, err)
	}
	if err := a.repo.InsertOutboxEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to insert %s event: %w", eventType, err)
	}

	log.Info().
		Str("aggregate_id", aggregateID.String()).
		Str("event_type", eventType).
		Msg("outbox event inserted")

	return nil
}

// FetchUnsentEvents fetches unsent outbox events
func (a *App) FetchUnsentEvents(ctx context.Context, limit int) ([]OutboxEvent, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}

	events, err := a.repo.FetchUnsentOutbox(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent events: %w", err)
	}

	if len(events) > 0 {
		log.Debug().
			Int("count", len(events)).
			Msg("fetched unsent outbox events")
	}

	return events, nil
}

// GetEventByID fetches a pending outbox event by ID
func (a *App) GetEventByID(ctx context.Context, eventID uuid.UUID) (*OutboxEvent, error) {
	event, err := a.repo.FetchOutboxByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event by ID: %w", err)
	}
	return event, nil
}

// MarkEventSent marks an outbox event as sent
func (a *App) MarkEventSent(ctx context.Context, eventID uuid.UUID) error {
	if err := a.repo.MarkOutboxSent(ctx, eventID); err != nil {
		return fmt.Errorf("failed to mark event as sent: %w", err)
	}

	log.Debug().
		Str("event_id", eventID.String()).
		Msg("marked outbox event as sent")

	return nil
}

// MarkEventFailed bumps the attempt counter and stores the last error.
func (a *App) MarkEventFailed(ctx context.Context, eventID uuid.UUID, cause error) error {
	if err := a.repo.MarkOutboxFailed(ctx, eventID, cause.Error()); err != nil {
		return fmt.Errorf("failed to mark event as failed: %w", err)
	}
	return nil
}

// ProcessUnsentEvents runs processor over one batch of unsent events and
// reports how many were sent.
func (a *App) ProcessUnsentEvents(ctx context.Context, batchSize int, processor func(ctx context.Context, event OutboxEvent) error) (int, error) {
	events, err := a.FetchUnsentEvents(ctx, batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch unsent events: %w", err)
	}

	processedCount := 0
	errorCount := 0

	for _, event := range events {
		if err := processor(ctx, event); err != nil {
			log.Error().
				Err(err).
				Str("event_id", event.ID.String()).
				Str("event_type", event.EventType).
				Msg("failed to process event")
			if markErr := a.MarkEventFailed(ctx, event.ID, err); markErr != nil {
				log.Error().Err(markErr).Str("event_id", event.ID.String()).Msg("failed to record event failure")
			}
			errorCount++
			continue
		}

		if err := a.MarkEventSent(ctx, event.ID); err != nil {
			log.Error().
				Err(err).
				Str("event_id", event.ID.String()).
				Msg("failed to mark event as sent after processing")
			errorCount++
			continue
		}

		processedCount++
	}

	if processedCount > 0 || errorCount > 0 {
		log.Info().
			Int("processed", processedCount).
			Int("errors", errorCount).
			Int("total", len(events)).
			Msg("processed unsent events batch")
	}

	return processedCount, nil
}
