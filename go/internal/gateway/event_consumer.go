package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/chisports/gmengine/go/internal/outbox"
)

type ConsumerConfig struct {
	StreamName    string        `yaml:"stream_name"`
	ConsumerName  string        `yaml:"consumer_name"`
	SubjectPrefix string        `yaml:"subject_prefix"`
	MaxDeliver    int           `yaml:"max_deliver"`
	AckWait       time.Duration `yaml:"ack_wait"`
	MaxAckPending int           `yaml:"max_ack_pending"`
}

func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		StreamName:    "GM_EVENTS",
		ConsumerName:  "gm-gateway",
		SubjectPrefix: "gm.events",
		MaxDeliver:    5,
		AckWait:       30 * time.Second,
		MaxAckPending: 100,
	}
}

// Broadcaster receives decoded draft events.
type Broadcaster interface {
	BroadcastToDraft(draftID uuid.UUID, event *DraftEvent)
}

// EventConsumer relays mock draft events from JetStream to websocket clients.
type EventConsumer struct {
	broadcaster Broadcaster
	js          jetstream.JetStream
	consumer    jetstream.Consumer
	config      ConsumerConfig
}

func NewEventConsumer(b Broadcaster, js jetstream.JetStream, config ConsumerConfig) *EventConsumer {
	return &EventConsumer{broadcaster: b, js: js, config: config}
}

// ensureConsumer creates or updates the durable consumer. It only delivers
// new events: clients get current state from the snapshot sent on connect.
func (ec *EventConsumer) ensureConsumer(ctx context.Context) error {
	consumer, err := ec.js.CreateOrUpdateConsumer(ctx, ec.config.StreamName, jetstream.ConsumerConfig{
		Name:           ec.config.ConsumerName,
		Durable:        ec.config.ConsumerName,
		Description:    "Mock draft websocket gateway",
		FilterSubjects: Subjects(ec.config.SubjectPrefix),
		DeliverPolicy:  jetstream.DeliverNewPolicy,
		AckPolicy:      jetstream.AckExplicitPolicy,
		MaxDeliver:     ec.config.MaxDeliver,
		AckWait:        ec.config.AckWait,
		MaxAckPending:  ec.config.MaxAckPending,
		ReplayPolicy:   jetstream.ReplayInstantPolicy,
	})
	if err != nil {
		return fmt.Errorf("create consumer: %w", err)
	}
	ec.consumer = consumer
	log.Info().
		Str("consumer", ec.config.ConsumerName).
		Str("stream", ec.config.StreamName).
		Msg("JetStream consumer ready")
	return nil
}

// Start consumes until ctx is done.
func (ec *EventConsumer) Start(ctx context.Context) error {
	if err := ec.ensureConsumer(ctx); err != nil {
		return err
	}

	messageCh := make(chan jetstream.Msg, 100)
	consumeCtx, err := ec.consumer.Consume(func(msg jetstream.Msg) {
		select {
		case messageCh <- msg:
		case <-ctx.Done():
			msg.Nak()
		}
	})
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	defer consumeCtx.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("event consumer shutting down")
			return nil
		case msg := <-messageCh:
			if err := ec.processMessage(msg.Data()); err != nil {
				log.Error().Err(err).Str("subject", msg.Subject()).Msg("failed to process message")
				if nakErr := msg.Nak(); nakErr != nil {
					log.Error().Err(nakErr).Msg("failed to NAK message")
				}
				continue
			}
			if ackErr := msg.Ack(); ackErr != nil {
				log.Error().Err(ackErr).Msg("failed to ACK message")
			}
		}
	}
}

func (ec *EventConsumer) processMessage(data []byte) error {
	var env outbox.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("unmarshal event envelope: %w", err)
	}
	event, err := FromEnvelope(env)
	if err != nil {
		return err
	}
	draftID, err := uuid.Parse(env.AggregateID)
	if err != nil {
		return fmt.Errorf("parse draft id: %w", err)
	}

	ec.broadcaster.BroadcastToDraft(draftID, event)
	log.Debug().
		Str("event_id", env.EventID).
		Str("draft_id", env.AggregateID).
		Str("event_type", env.EventType).
		Msg("event relayed to websocket clients")
	return nil
}
