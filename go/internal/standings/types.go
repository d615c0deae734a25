// Package standings projects accepted trades onto season standings through
// the season-simulation service.
package standings

import (
	"context"
	"time"

	"github.com/chisports/gmengine/go/internal/models"
)

const (
	ServiceName   = "gm.sim.v1.SeasonSimService"
	DirectionIn   = "in"
	DirectionOut  = "out"
	defaultBudget = 3 * time.Second
)

// AssetChange is one asset joining or leaving a team.
type AssetChange struct {
	TeamKey   string  `json:"team_key"`
	AssetKey  string  `json:"asset_key"`
	Label     string  `json:"label"`
	Position  string  `json:"position,omitempty"`
	Direction string  `json:"direction"`
	Value     float64 `json:"value"`
}

type SimulateSeasonRequest struct {
	Sport   models.Sport  `json:"sport"`
	Season  int           `json:"season"`
	TeamKey string        `json:"team_key"`
	Changes []AssetChange `json:"changes"`
}

type SimulateSeasonResponse struct {
	Baseline []models.TeamStanding `json:"baseline"`
	Modified []models.TeamStanding `json:"modified"`
}

// SeasonSimClient runs one season simulation with a set of roster changes.
type SeasonSimClient interface {
	SimulateSeason(ctx context.Context, req *SimulateSeasonRequest) (*SimulateSeasonResponse, error)
}

// Config is the yaml "simulation" block.
type Config struct {
	Endpoint       string        `yaml:"endpoint"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetries     int           `yaml:"max_retries"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
}

func DefaultConfig() Config {
	return Config{
		Timeout:        defaultBudget,
		MaxRetries:     2,
		InitialBackoff: 150 * time.Millisecond,
	}
}
