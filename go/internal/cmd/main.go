package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/chisports/gmengine/go/internal/ratelimit"
	_ "github.com/chisports/gmengine/go/internal/sports/all" // register sport plugins
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}
	setupLogging(getEnv("LOG_LEVEL", "info"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal().Err(err).Msg("gm engine exited")
	}
}

func run(ctx context.Context) error {
	config, err := loadConfig(getEnv("GM_CONFIG", "go/config/gm.yaml"))
	if err != nil {
		return err
	}
	profiles, err := setupSportsPlugins(config)
	if err != nil {
		return err
	}

	database, dsn, err := setupDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	services, err := setupServices(ctx, database, config, profiles)
	if err != nil {
		return err
	}
	defer services.Close()

	server := setupServer(services)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("gm engine listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if services.Relay != nil {
		g.Go(func() error { return runOutboxListener(ctx, services, dsn, config) })
	}
	g.Go(func() error { return services.Gateway.Start(ctx) })
	if m, ok := services.Limiter.(*ratelimit.MemoryLimiter); ok {
		g.Go(func() error { return sweepLimiter(ctx, m, sweepWindow(config.RateLimits)) })
	}

	return g.Wait()
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}
