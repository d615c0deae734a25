package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/chisports/gmengine/go/clients/draftdata"
	"github.com/chisports/gmengine/go/internal/analytics"
	"github.com/chisports/gmengine/go/internal/export"
	"github.com/chisports/gmengine/go/internal/gateway"
	"github.com/chisports/gmengine/go/internal/metrics"
	"github.com/chisports/gmengine/go/internal/mockdraft"
	"github.com/chisports/gmengine/go/internal/outbox"
	"github.com/chisports/gmengine/go/internal/ratelimit"
	"github.com/chisports/gmengine/go/internal/scoring"
	"github.com/chisports/gmengine/go/internal/sports/base"
	"github.com/chisports/gmengine/go/internal/standings"
	"github.com/chisports/gmengine/go/internal/trade"
	"github.com/chisports/gmengine/go/internal/valuation"
)

type Services struct {
	Trades     *trade.Service
	MockDrafts *mockdraft.Service
	Scores     *scoring.Service
	Gateway    *gateway.Service
	Health     *outbox.HealthChecker
	Metrics    *metrics.Recorder
	Relay      *outbox.Relay // nil when NATS is disabled
	Limiter    ratelimit.Limiter

	closers []func()
}

func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func setupServices(ctx context.Context, database *sql.DB, config *Config, profiles base.ProfileSource) (*Services, error) {
	// Wire up dependency injection chain
	// Database layer → Repository layer → App layer → Service layer
	clock := clockwork.NewRealClock()
	recorder := metrics.NewRecorder()
	services := &Services{Metrics: recorder}

	// Rate limits
	limiter := setupLimiter(ctx, config, clock, services)
	services.Limiter = limiter
	submitGuard := ratelimit.NewGuard(limiter, recorder, "submit_trade", config.RateLimits.SubmitTrade)
	exportGuard := ratelimit.NewGuard(limiter, recorder, "export_trades", config.RateLimits.Export)

	// Valuation and grading
	valuator := valuation.NewValuator(profiles)
	grader := trade.NewGrader(valuator, config.Grading, clock)

	// Standings
	var simClient standings.SeasonSimClient = standings.NewValueModel(profiles)
	if config.Simulation.Endpoint != "" {
		simClient = standings.NewConnectClient(&http.Client{Timeout: config.Simulation.Timeout}, config.Simulation.Endpoint)
	} else {
		log.Info().Msg("no simulation endpoint configured, using in-process value model")
	}
	simulator := standings.NewSimulator(simClient, valuator, config.Simulation, clock)

	// Scores
	scoreRepo := scoring.NewRepository(database)
	aggregator := scoring.NewAggregator(scoreRepo, config.Scoring, clock)

	// Trades
	tradeRepo := trade.NewRepository(database)
	tradeApp := trade.NewApp(tradeRepo, profiles, grader, simulator, aggregator, submitGuard, recorder, clock)
	exporter := export.NewExporter(tradeApp, exportGuard, clock)
	services.Trades = trade.NewService(tradeApp, exporter)

	// Mock drafts
	var draftData mockdraft.DraftData = mockdraft.NewDataStore(database)
	if config.DraftData.Endpoint != "" {
		draftData = draftdata.NewClient(config.DraftData.Endpoint, os.Getenv(config.DraftData.APIKeyEnv))
	}
	mockRepo := mockdraft.NewRepository(database)
	mockApp := mockdraft.NewApp(
		mockRepo,
		profiles,
		draftData,
		mockdraft.NewBestAvailableStrategy(config.DraftData.NeedWindow),
		nil,
		aggregator,
		recorder,
		clock,
	)
	services.MockDrafts = mockdraft.NewService(mockApp)

	// Scores and analytics
	services.Scores = scoring.NewService(aggregator, analytics.NewAggregator(tradeRepo, mockRepo))

	// Outbox relay, gateway and health
	outboxRepo := outbox.NewRepository(database)
	manager := gateway.NewConnectionManager(config.Gateway.Connection, recorder)
	var (
		natsStatus outbox.ConnStatus
		consumer   *gateway.EventConsumer
	)
	if config.NATS.Enabled {
		nc, relay, js, err := setupRelay(ctx, config, outboxRepo, recorder, clock)
		if err != nil {
			services.Close()
			return nil, err
		}
		services.closers = append(services.closers, func() {
			if err := nc.Drain(); err != nil {
				log.Error().Err(err).Msg("failed to drain NATS connection")
			}
		})
		services.Relay = relay
		natsStatus = nc
		consumer = gateway.NewEventConsumer(manager, js, config.Gateway.Consumer)
	} else {
		log.Warn().Msg("NATS disabled, outbox events stay unsent and the gateway only sends snapshots")
	}
	services.Gateway = gateway.NewService(manager, mockRepo, consumer)
	services.Health = outbox.NewHealthChecker(database, natsStatus, outboxRepo, recorder, config.Outbox.MaxPending)

	return services, nil
}

func setupLimiter(ctx context.Context, config *Config, clock clockwork.Clock, services *Services) ratelimit.Limiter {
	if config.RateLimits.Backend == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			// the guard fails open, so a dead redis only costs throttling
			log.Warn().Err(err).Str("addr", config.Redis.Addr).Msg("redis unreachable at startup")
		}
		services.closers = append(services.closers, func() { _ = rdb.Close() })
		log.Info().Str("addr", config.Redis.Addr).Msg("using redis rate limiter")
		return ratelimit.NewRedisLimiter(rdb, clock)
	}
	return ratelimit.NewMemoryLimiter(clock)
}

func setupRelay(ctx context.Context, config *Config, repo *outbox.Repository, recorder *metrics.Recorder, clock clockwork.Clock) (*nats.Conn, *outbox.Relay, jetstream.JetStream, error) {
	jsConfig := outbox.DefaultJetStreamConfig()
	jsConfig.URL = config.NATS.URL
	jsConfig.StreamName = config.Gateway.Consumer.StreamName
	jsConfig.SubjectPrefix = config.Gateway.Consumer.SubjectPrefix

	nc, err := outbox.Connect(jsConfig)
	if err != nil {
		return nil, nil, nil, err
	}
	publisher, err := outbox.NewJetStreamPublisher(ctx, nc, jsConfig)
	if err != nil {
		nc.Close()
		return nil, nil, nil, fmt.Errorf("failed to create publisher: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	relay := outbox.NewRelay(outbox.NewApp(repo, clock), publisher, recorder, listenerConfig(config, ""))
	return nc, relay, js, nil
}

func listenerConfig(config *Config, dsn string) outbox.ListenerConfig {
	cfg := outbox.DefaultListenerConfig()
	cfg.DatabaseURL = dsn
	if config.Outbox.FallbackInterval > 0 {
		cfg.FallbackInterval = config.Outbox.FallbackInterval
	}
	if config.Outbox.BatchSize > 0 {
		cfg.BatchSize = config.Outbox.BatchSize
	}
	return cfg
}

func runOutboxListener(ctx context.Context, services *Services, dsn string, config *Config) error {
	listener, err := outbox.NewListener(services.Relay, listenerConfig(config, dsn))
	if err != nil {
		return err
	}
	return listener.Start(ctx)
}

// sweepLimiter drops idle keys from the in-memory limiter.
func sweepLimiter(ctx context.Context, m *ratelimit.MemoryLimiter, window time.Duration) error {
	ticker := time.NewTicker(window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Sweep(window)
		}
	}
}

func sweepWindow(rl RateLimitConfig) time.Duration {
	window := max(rl.SubmitTrade.Window, rl.Export.Window)
	if window <= 0 {
		return time.Minute
	}
	return window
}
