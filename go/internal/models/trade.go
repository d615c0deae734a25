package models

import (
	"time"

	"github.com/google/uuid"
)

// TradeStatus defines where a trade is in its lifecycle.
type TradeStatus string

const (
	TradeStatusProposed TradeStatus = "proposed"
	TradeStatusAccepted TradeStatus = "accepted"
	TradeStatusRejected TradeStatus = "rejected"
)

// TradeAsset is one outgoing asset and the team that receives it.
type TradeAsset struct {
	Asset  Asset  `json:"asset"`
	ToTeam string `json:"to_team"`
}

// TradeSide is everything a single team sends away.
type TradeSide struct {
	TeamKey  string       `json:"team_key"`
	Outgoing []TradeAsset `json:"outgoing"`
}

// Subscores are the normalized [0,1] grading components for the proposing team.
type Subscores struct {
	TalentBalance float64 `json:"talent_balance"`
	ContractValue float64 `json:"contract_value"`
	TeamFit       float64 `json:"team_fit"`
	FutureAssets  float64 `json:"future_assets"`
}

// TeamDelta is the simulated change for one team after a trade.
type TeamDelta struct {
	PowerRatingDelta float64 `json:"power_rating_delta"`
	WinsDelta        float64 `json:"wins_delta"`
}

// TradeImpact is the standings simulation outcome stored on an accepted trade.
type TradeImpact struct {
	PowerRatingDelta   float64              `json:"power_rating_delta"`
	WinsDelta          float64              `json:"wins_delta"`
	TradePartnerDeltas map[string]TeamDelta `json:"trade_partner_deltas"`
	SimulatedAt        time.Time            `json:"simulated_at"`
}

// Trade is a graded N-team proposal (2 or 3 teams today).
type Trade struct {
	ID            uuid.UUID           `json:"id"`
	UserID        string              `json:"user_id"`
	Sport         Sport               `json:"sport"`
	ProposingTeam string              `json:"proposing_team"`
	PartnerTeam   string              `json:"partner_team_key"`
	Partner2Team  string              `json:"partner_2,omitempty"`  // empty for 2-team trades
	Sides         []TradeSide         `json:"sides"`
	TeamNeeds     map[string][]string `json:"team_needs,omitempty"` // positions each team is shopping for
	Status        TradeStatus         `json:"status"`
	Grade         float64             `json:"grade"`
	Subscores     Subscores           `json:"subscores"`
	IsDangerous   bool                `json:"is_dangerous"`
	Rationale     string              `json:"rationale"`
	Warnings      []string            `json:"warnings,omitempty"`
	TradeImpact   *TradeImpact        `json:"trade_impact"` // nil when simulation was skipped
	CreatedAt     time.Time           `json:"created_at"`
	DecidedAt     *time.Time          `json:"decided_at,omitempty"`
}

// Teams returns every participating team key, proposer first.
func (t *Trade) Teams() []string {
	teams := []string{t.ProposingTeam, t.PartnerTeam}
	if t.Partner2Team != "" {
		teams = append(teams, t.Partner2Team)
	}
	return teams
}

// Partners returns the non-proposing team keys.
func (t *Trade) Partners() []string {
	partners := []string{t.PartnerTeam}
	if t.Partner2Team != "" {
		partners = append(partners, t.Partner2Team)
	}
	return partners
}

// IsThreeTeam reports whether a second partner participates.
func (t *Trade) IsThreeTeam() bool {
	return t.Partner2Team != ""
}
