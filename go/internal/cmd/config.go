package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/chisports/gmengine/go/internal/gateway"
	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/ratelimit"
	"github.com/chisports/gmengine/go/internal/scoring"
	"github.com/chisports/gmengine/go/internal/sports/base"
	"github.com/chisports/gmengine/go/internal/standings"
	"github.com/chisports/gmengine/go/internal/trade"
)

type Config struct {
	Sports struct {
		EnabledPlugins []string                  `yaml:"enabled_plugins"`
		Plugins        map[string]base.Overrides `yaml:"plugins"`
	} `yaml:"sports"`
	Grading    trade.GraderConfig `yaml:"grading"`
	Scoring    scoring.Weights    `yaml:"scoring"`
	Simulation standings.Config   `yaml:"simulation"`
	DraftData  DraftDataConfig    `yaml:"draft_data"`
	RateLimits RateLimitConfig    `yaml:"rate_limits"`
	NATS       NATSConfig         `yaml:"nats"`
	Redis      RedisConfig        `yaml:"redis"`
	Outbox     OutboxConfig       `yaml:"outbox"`
	Gateway    gateway.Config     `yaml:"gateway"`
}

// DraftDataConfig points at the draft-data service. An empty endpoint
// serves draft data from the tables loaded by tools/seed_draftdata.
type DraftDataConfig struct {
	Endpoint   string `yaml:"endpoint"`
	APIKeyEnv  string `yaml:"api_key_env"`
	NeedWindow int    `yaml:"need_window"`
}

type RateLimitConfig struct {
	Backend     string         `yaml:"backend"` // memory or redis
	SubmitTrade ratelimit.Rule `yaml:"submit_trade"`
	Export      ratelimit.Rule `yaml:"export"`
}

type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type OutboxConfig struct {
	MaxPending       int           `yaml:"max_pending"`
	FallbackInterval time.Duration `yaml:"fallback_interval"`
	BatchSize        int           `yaml:"batch_size"`
}

func defaultConfig() *Config {
	config := &Config{
		Grading:    trade.DefaultGraderConfig(),
		Scoring:    scoring.DefaultWeights(),
		Simulation: standings.DefaultConfig(),
		DraftData:  DraftDataConfig{APIKeyEnv: "DRAFT_DATA_API_KEY", NeedWindow: 3},
		RateLimits: RateLimitConfig{
			Backend:     "memory",
			SubmitTrade: ratelimit.Rule{Window: time.Minute, Limit: 20},
			Export:      ratelimit.Rule{Window: time.Minute, Limit: 10},
		},
		NATS:    NATSConfig{URL: "nats://localhost:4222"},
		Redis:   RedisConfig{Addr: "localhost:6379"},
		Outbox:  OutboxConfig{MaxPending: 1000, FallbackInterval: 30 * time.Second, BatchSize: 100},
		Gateway: gateway.DefaultConfig(),
	}
	config.Sports.EnabledPlugins = []string{"nfl", "nba", "mlb", "nhl"}
	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// loadConfig layers the yaml file over the defaults. A missing file keeps
// the defaults.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("path", path).Msg("config file not found, using defaults")
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := config.Grading.Validate(); err != nil {
		return nil, fmt.Errorf("invalid grading config: %w", err)
	}
	if err := config.Scoring.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring config: %w", err)
	}
	if url := os.Getenv("NATS_URL"); url != "" {
		config.NATS.URL = url
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		config.Redis.Addr = addr
	}
	return config, nil
}

// setupSportsPlugins initializes the enabled plugins and returns their
// profiles. Sports left out of enabled_plugins are unknown to the services.
func setupSportsPlugins(config *Config) (base.StaticProfiles, error) {
	profiles := make(base.StaticProfiles)
	for _, key := range config.Sports.EnabledPlugins {
		sport, err := models.ParseSport(key)
		if err != nil {
			return nil, fmt.Errorf("invalid enabled plugin: %w", err)
		}
		if err := base.InitializePlugin(key, config.Sports.Plugins[key]); err != nil {
			return nil, fmt.Errorf("failed to initialize plugin %s: %w", key, err)
		}
		plg, err := base.GetPlugin(key)
		if err != nil {
			return nil, fmt.Errorf("failed to get plugin %s: %w", key, err)
		}
		profile := plg.Profile()
		profiles[sport] = profile
		log.Info().
			Str("sport", key).
			Int("teams", len(profile.Teams)).
			Str("offseason", profile.Offseason.String()).
			Msg("initialized sport plugin")
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no sport plugins enabled")
	}
	return profiles, nil
}
