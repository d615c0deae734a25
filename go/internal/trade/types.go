package trade

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/chisports/gmengine/go/internal/models"
)

// SubmitTradeRequest is a proposal as it arrives from a client. Team fields
// accept keys or nicknames.
type SubmitTradeRequest struct {
	Sport         string              `json:"sport"`
	ProposingTeam string              `json:"proposing_team"`
	PartnerTeam   string              `json:"partner_team_key"`
	Partner2Team  string              `json:"partner_2,omitempty"`
	Sides         []models.TradeSide  `json:"sides"`
	TeamNeeds     map[string][]string `json:"team_needs,omitempty"`
}

// ListTradesFilter narrows a user's trade history. Zero values match all.
type ListTradesFilter struct {
	Status models.TradeStatus `json:"status,omitempty"`
	Sport  models.Sport       `json:"sport,omitempty"`
	Limit  int                `json:"limit,omitempty"`
}

// TeamLedger is the value flow for one participant.
type TeamLedger struct {
	TeamKey   string           `json:"team_key"`
	In        float64          `json:"in"`
	Out       float64          `json:"out"`
	PicksIn   float64          `json:"picks_in"`
	SalaryIn  decimal.Decimal  `json:"salary_in"`
	SalaryOut decimal.Decimal  `json:"salary_out"`
	Subscores models.Subscores `json:"subscores"`
	Composite float64          `json:"composite"`

	incomingPlayers []weightedPlayer
	playersIn       int
	needsFilled     int
}

type weightedPlayer struct {
	player models.Player
	value  float64
}

// GradeResult is the proposing team's grade plus every team's ledger.
type GradeResult struct {
	Composite   float64                `json:"composite"`
	Subscores   models.Subscores       `json:"subscores"`
	IsDangerous bool                   `json:"is_dangerous"`
	Rationale   string                 `json:"rationale"`
	Warnings    []string               `json:"warnings,omitempty"`
	Teams       map[string]*TeamLedger `json:"teams"`
}

// Weights are the composite blend of the four subscores.
type Weights struct {
	TalentBalance float64 `yaml:"talent_balance"`
	ContractValue float64 `yaml:"contract_value"`
	TeamFit       float64 `yaml:"team_fit"`
	FutureAssets  float64 `yaml:"future_assets"`
}

func DefaultWeights() Weights {
	return Weights{TalentBalance: 0.50, ContractValue: 0.15, TeamFit: 0.20, FutureAssets: 0.15}
}

func (w Weights) sum() float64 {
	return w.TalentBalance + w.ContractValue + w.TeamFit + w.FutureAssets
}

// Validate keeps the composite inside 0..100: no weight may be negative and
// at least one must be positive.
func (w Weights) Validate() error {
	if w.TalentBalance < 0 || w.ContractValue < 0 || w.TeamFit < 0 || w.FutureAssets < 0 {
		return fmt.Errorf("grading weights must not be negative: %+v", w)
	}
	if w.sum() <= 0 {
		return fmt.Errorf("grading weights must not all be zero")
	}
	return nil
}

// GraderConfig is the yaml "grading" block.
type GraderConfig struct {
	Weights         Weights `yaml:"weights"`
	DangerTolerance float64 `yaml:"danger_tolerance"`
}

func DefaultGraderConfig() GraderConfig {
	return GraderConfig{Weights: DefaultWeights(), DangerTolerance: 0.25}
}

func (c GraderConfig) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.DangerTolerance <= 0 || c.DangerTolerance >= 1 {
		return fmt.Errorf("danger_tolerance must be in (0, 1), got %v", c.DangerTolerance)
	}
	return nil
}

// Connect request and response messages.

type SubmitTradeResponse struct {
	Trade *models.Trade `json:"trade"`
}

type TradeIDRequest struct {
	TradeID string `json:"trade_id"`
}

type TradeResponse struct {
	Trade *models.Trade `json:"trade"`
}

type ListTradesRequest struct {
	Status string `json:"status,omitempty"`
	Sport  string `json:"sport,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

type ListTradesResponse struct {
	Trades []models.Trade `json:"trades"`
}

type ExportTradesRequest struct {
	TradeIDs []string `json:"trade_ids"`
	Format   string   `json:"format"`
}

type ExportTradesResponse struct {
	Format      string `json:"format"`
	ContentType string `json:"content_type"`
	Filename    string `json:"filename"`
	Content     string `json:"content"`
}
