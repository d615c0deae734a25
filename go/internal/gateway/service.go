// Package gateway pushes live mock draft updates to websocket clients.
package gateway

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Connection ConnectionConfig `yaml:"connection"`
	Consumer   ConsumerConfig   `yaml:"consumer"`
}

func DefaultConfig() Config {
	return Config{
		Connection: DefaultConnectionConfig(),
		Consumer:   DefaultConsumerConfig(),
	}
}

// Service ties the connection manager, websocket routes and event consumer
// together.
type Service struct {
	manager  *ConnectionManager
	handler  *WebSocketHandler
	consumer *EventConsumer
}

// NewService builds the gateway. consumer may be nil, in which case clients
// only receive the snapshot sent on connect.
func NewService(manager *ConnectionManager, drafts DraftLookup, consumer *EventConsumer) *Service {
	return &Service{
		manager:  manager,
		handler:  NewWebSocketHandler(manager, drafts),
		consumer: consumer,
	}
}

// Start runs until ctx is done or the consumer fails.
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting mock draft gateway")
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.manager.Start(ctx)
		return nil
	})
	if s.consumer != nil {
		g.Go(func() error { return s.consumer.Start(ctx) })
	}
	return g.Wait()
}

func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.handler.RegisterRoutes(mux)
}
