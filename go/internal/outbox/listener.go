package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

type ListenerConfig struct {
	DatabaseURL      string        // Postgres DSN for LISTEN/NOTIFY
	NotifyChannel    string        // Channel name to LISTEN on
	FallbackInterval time.Duration // How often to poll for missed events
	MaxRetries       int
	RetryDelay       time.Duration
	PingInterval     time.Duration
	BatchSize        int // Max events to fetch per batch
}

func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		DatabaseURL:      "",
		NotifyChannel:    "gm_outbox_events",
		FallbackInterval: 30 * time.Second,
		MaxRetries:       5,
		RetryDelay:       200 * time.Millisecond,
		PingInterval:     90 * time.Second,
		BatchSize:        100,
	}
}

// Publisher is an interface that defines our publisher.
type Publisher interface {
	Publish(ctx context.Context, event OutboxEvent) error
}

// MetricsCollector defines the interface for collecting outbox metrics
type MetricsCollector interface {
	RecordEventProcessed(eventType string, success bool, duration time.Duration)
	RecordBatchProcessed(count int, duration time.Duration)
	RecordPublishAttempt(eventType string, attempt int, success bool)
}

// Relay moves outbox rows to the publisher. It is driven either by the
// Postgres listener or by polling.
type Relay struct {
	app       *App
	publisher Publisher
	metrics   MetricsCollector
	cfg       ListenerConfig
}

func NewRelay(app *App, publisher Publisher, metrics MetricsCollector, cfg ListenerConfig) *Relay {
	return &Relay{app: app, publisher: publisher, metrics: metrics, cfg: cfg}
}

// Listener relays outbox events as soon as Postgres notifies about them,
// with a fallback poll for anything missed.
type Listener struct {
	relay    *Relay
	listener *pq.Listener
	cfg      ListenerConfig
}

func NewListener(relay *Relay, cfg ListenerConfig) (*Listener, error) {
	l := pq.NewListener(
		cfg.DatabaseURL,
		10*time.Second,
		time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Error().Err(err).Msg("listener event")
			}
		},
	)
	if err := l.Listen(cfg.NotifyChannel); err != nil {
		l.Close()
		return nil, fmt.Errorf("failed to listen to channel: %w", err)
	}

	log.Info().
		Str("channel", cfg.NotifyChannel).
		Msg("listening for notifications")

	return &Listener{relay: relay, listener: l, cfg: cfg}, nil
}

func (l *Listener) Start(ctx context.Context) error {
	log.Info().
		Str("channel", l.cfg.NotifyChannel).
		Dur("ping_interval", l.cfg.PingInterval).
		Dur("fallback_interval", l.cfg.FallbackInterval).
		Msg("listener started")

	pingTicker := time.NewTicker(l.cfg.PingInterval)
	fallbackTicker := time.NewTicker(l.cfg.FallbackInterval)
	defer pingTicker.Stop()
	defer fallbackTicker.Stop()

	// catch up on anything written while we were down
	if _, err := l.relay.ProcessUnsent(ctx); err != nil {
		log.Error().Err(err).Msg("failed to process unsent events at startup")
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("listener shutting down")
			return l.Stop()
		case note := <-l.listener.Notify:
			if note == nil {
				// nil notification means the connection was re-established
				continue
			}
			if err := l.relay.HandleNotification(ctx, note.Extra); err != nil {
				log.Error().Err(err).Msg("failed to handle notification")
			}
		case <-fallbackTicker.C:
			if _, err := l.relay.ProcessUnsent(ctx); err != nil {
				log.Error().Err(err).Msg("failed to process unsent events")
			}
		case <-pingTicker.C:
			if err := l.listener.Ping(); err != nil {
				log.Error().Err(err).Msg("failed to ping listener")
			}
		}
	}
}

func (l *Listener) Stop() error {
	return l.listener.Close()
}

// HandleNotification publishes the event whose id arrived on the channel.
func (r *Relay) HandleNotification(ctx context.Context, extra string) error {
	id, err := uuid.Parse(extra)
	if err != nil {
		return fmt.Errorf("invalid event ID in notification: %w", err)
	}

	event, err := r.app.GetEventByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrEventNotPending) {
			// the fallback poll got there first
			return nil
		}
		return fmt.Errorf("failed to fetch outbox event: %w", err)
	}

	if err := r.publishWithRetry(ctx, *event); err != nil {
		if markErr := r.app.MarkEventFailed(ctx, id, err); markErr != nil {
			log.Error().Err(markErr).Str("event_id", id.String()).Msg("failed to record event failure")
		}
		return fmt.Errorf("failed to publish event: %w", err)
	}

	if err := r.app.MarkEventSent(ctx, id); err != nil {
		return err
	}

	log.Info().Str("event_id", id.String()).Msg("published and marked event as sent")
	return nil
}

// ProcessUnsent publishes one batch of pending events.
func (r *Relay) ProcessUnsent(ctx context.Context) (int, error) {
	start := time.Now()
	n, err := r.app.ProcessUnsentEvents(ctx, r.cfg.BatchSize, r.publishWithRetry)
	if r.metrics != nil && n > 0 {
		r.metrics.RecordBatchProcessed(n, time.Since(start))
	}
	return n, err
}

// publishWithRetry publishes with exponential backoff, bounded by MaxRetries.
func (r *Relay) publishWithRetry(ctx context.Context, event OutboxEvent) error {
	start := time.Now()
	attempt := 0

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.cfg.RetryDelay
	bo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(r.cfg.MaxRetries)), ctx)

	err := backoff.Retry(func() error {
		attempt++
		err := r.publisher.Publish(ctx, event)
		if r.metrics != nil {
			r.metrics.RecordPublishAttempt(event.EventType, attempt, err == nil)
		}
		if err != nil {
			log.Error().
				Err(err).
				Int("attempt", attempt).
				Str("event_id", event.ID.String()).
				Msg("failed to publish, retrying")
		}
		return err
	}, policy)

	if r.metrics != nil {
		r.metrics.RecordEventProcessed(event.EventType, err == nil, time.Since(start))
	}
	if err != nil {
		return fmt.Errorf("publish failed after %d attempts: %w", attempt, err)
	}
	if attempt > 1 {
		log.Info().
			Int("attempt", attempt).
			Str("event_id", event.ID.String()).
			Msg("publish succeeded after retry")
	}
	return nil
}
