package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/chisports/gmengine/go/internal/apperr"
	"github.com/chisports/gmengine/go/internal/mockdraft"
	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/trade"
)

func TestLoadConfigLayersFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gm.yaml")
	body := `
grading:
  danger_tolerance: 0.3
rate_limits:
  backend: redis
  submit_trade: {window: 30s, limit: 5}
gateway:
  consumer:
    consumer_name: gm-gateway-test
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	config, err := loadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Grading.DangerTolerance != 0.3 {
		t.Fatalf("expected danger tolerance 0.3, got %v", config.Grading.DangerTolerance)
	}
	if config.Grading.Weights.TalentBalance != 0.5 {
		t.Fatalf("expected default talent weight to survive, got %v", config.Grading.Weights.TalentBalance)
	}
	if config.RateLimits.SubmitTrade.Window != 30*time.Second || config.RateLimits.SubmitTrade.Limit != 5 {
		t.Fatalf("unexpected submit rule: %+v", config.RateLimits.SubmitTrade)
	}
	if config.RateLimits.Export.Limit != 10 {
		t.Fatalf("expected default export limit 10, got %d", config.RateLimits.Export.Limit)
	}
	if config.Gateway.Consumer.ConsumerName != "gm-gateway-test" || config.Gateway.Consumer.StreamName != "GM_EVENTS" {
		t.Fatalf("unexpected consumer config: %+v", config.Gateway.Consumer)
	}
	if sweepWindow(config.RateLimits) != time.Minute {
		t.Fatalf("expected sweep window of 1m, got %v", sweepWindow(config.RateLimits))
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	config, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(config.Sports.EnabledPlugins) != 4 || config.Scoring.Trade != 0.6 {
		t.Fatalf("expected defaults, got %+v", config)
	}
}

func TestShippedConfigParses(t *testing.T) {
	config, err := loadConfig("../../config/gm.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	profiles, err := setupSportsPlugins(config)
	if err != nil {
		t.Fatalf("failed to initialize plugins: %v", err)
	}
	if len(profiles) != 4 {
		t.Fatalf("expected 4 enabled sports, got %d", len(profiles))
	}
	if config.Simulation.Timeout != 3*time.Second || !config.NATS.Enabled {
		t.Fatalf("unexpected shipped config: %+v", config)
	}
}

func TestDisabledSportsAreRejected(t *testing.T) {
	config := defaultConfig()
	config.Sports.EnabledPlugins = []string{"nfl"}

	profiles, err := setupSportsPlugins(config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := profiles.ProfileFor(models.SportNFL); err != nil {
		t.Fatalf("expected nfl to be served, got %v", err)
	}
	if _, err := profiles.ProfileFor(models.SportNBA); err == nil {
		t.Fatal("expected nba to be unknown")
	}

	clock := clockwork.NewFakeClockAt(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	trades := trade.NewApp(nil, profiles, nil, nil, nil, nil, nil, clock)
	_, err = trades.SubmitTrade(ctx, "user-1", trade.SubmitTradeRequest{Sport: "nba", ProposingTeam: "chi", PartnerTeam: "bos"})
	if apperr.CodeOf(err) != apperr.CodeInvalidSport {
		t.Fatalf("expected invalid_sport for a disabled sport trade, got %v", err)
	}

	drafts := mockdraft.NewApp(nil, profiles, nil, nil, nil, nil, nil, clock)
	_, err = drafts.StartMockDraft(ctx, "user-1", mockdraft.StartMockDraftRequest{Sport: "nba", Franchise: "chi"})
	if apperr.CodeOf(err) != apperr.CodeInvalidSport {
		t.Fatalf("expected invalid_sport for a disabled sport mock draft, got %v", err)
	}
}

func TestSetupSportsPluginsRejectsEmptyOrUnknown(t *testing.T) {
	config := defaultConfig()
	config.Sports.EnabledPlugins = nil
	if _, err := setupSportsPlugins(config); err == nil {
		t.Fatal("expected error when no sport is enabled")
	}
	config.Sports.EnabledPlugins = []string{"cricket"}
	if _, err := setupSportsPlugins(config); err == nil {
		t.Fatal("expected error for an unknown sport")
	}
}

func TestLoadConfigRejectsInvalidWeights(t *testing.T) {
	cases := map[string]string{
		"negative mock weight":  "scoring: {trade: 1, mock: -1}\n",
		"zero score blend":      "scoring: {trade: 0, mock: 0}\n",
		"negative grade weight": "grading:\n  weights: {talent_balance: 1, contract_value: -0.5}\n",
		"tolerance of one":      "grading:\n  danger_tolerance: 1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "gm.yaml")
			if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}
			if _, err := loadConfig(path); err == nil {
				t.Fatal("expected config to be rejected")
			}
		})
	}
}
