package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AssetKind tags which variant of Asset is populated.
type AssetKind string

const (
	AssetKindPlayer AssetKind = "player"
	AssetKindPick   AssetKind = "pick"
)

// Player represents a rostered player offered in a trade.
type Player struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Position      string             `json:"position"`
	Age           *int               `json:"age,omitempty"`   // Optional - baseline multiplier when missing
	Stats         map[string]float64 `json:"stats,omitempty"` // recent per-season production
	ContractAAV   decimal.Decimal    `json:"contract_aav"`    // millions per year
	ContractYears int                `json:"contract_years"`
}

// DraftPick represents a future or current-year selection.
// OriginTeam is provenance only and never affects value.
type DraftPick struct {
	Year        int    `json:"year"`
	Round       int    `json:"round"`
	PickInRound *int   `json:"pick_in_round,omitempty"` // nil until draft order is known
	OriginTeam  string `json:"origin_team"`
}

// Asset is a tagged union over Player and DraftPick. Exactly one of Player or Pick
// is set, matching Kind.
type Asset struct {
	Kind   AssetKind  `json:"kind"`
	Player *Player    `json:"player,omitempty"`
	Pick   *DraftPick `json:"pick,omitempty"`
}

// NewPlayerAsset wraps a player.
func NewPlayerAsset(p Player) Asset {
	return Asset{Kind: AssetKindPlayer, Player: &p}
}

// NewPickAsset wraps a draft pick.
func NewPickAsset(p DraftPick) Asset {
	return Asset{Kind: AssetKindPick, Pick: &p}
}

// Key returns a stable identity used to detect the same asset on two sides.
func (a Asset) Key() string {
	switch a.Kind {
	case AssetKindPlayer:
		if a.Player == nil {
			return ""
		}
		return "player:" + strings.ToLower(a.Player.ID)
	case AssetKindPick:
		if a.Pick == nil {
			return ""
		}
		key := fmt.Sprintf("pick:%s:%d:%d", strings.ToLower(a.Pick.OriginTeam), a.Pick.Year, a.Pick.Round)
		if a.Pick.PickInRound != nil {
			key += fmt.Sprintf(":%d", *a.Pick.PickInRound)
		}
		return key
	default:
		return ""
	}
}

// Label is a short human-readable description for rationales and exports.
func (a Asset) Label() string {
	switch a.Kind {
	case AssetKindPlayer:
		if a.Player == nil {
			return "unknown player"
		}
		if a.Player.Position == "" {
			return a.Player.Name
		}
		return fmt.Sprintf("%s (%s)", a.Player.Name, a.Player.Position)
	case AssetKindPick:
		if a.Pick == nil {
			return "unknown pick"
		}
		label := fmt.Sprintf("%d round %d", a.Pick.Year, a.Pick.Round)
		if a.Pick.OriginTeam != "" {
			label += " (" + strings.ToUpper(a.Pick.OriginTeam) + ")"
		}
		return label
	default:
		return "unknown asset"
	}
}

// Validate checks the union is well formed. It runs once at the system boundary so the
// grader never has to branch on field presence.
func (a Asset) Validate() error {
	switch a.Kind {
	case AssetKindPlayer:
		if a.Player == nil || a.Pick != nil {
			return errors.New("player asset must carry only a player")
		}
		if a.Player.ID == "" {
			return errors.New("player id is required")
		}
		if a.Player.ContractAAV.IsNegative() {
			return errors.New("contract_aav cannot be negative")
		}
	case AssetKindPick:
		if a.Pick == nil || a.Player != nil {
			return errors.New("pick asset must carry only a pick")
		}
		if a.Pick.Year <= 0 {
			return errors.New("pick year is required")
		}
		if a.Pick.Round <= 0 {
			return errors.New("pick round must be greater than 0")
		}
		if a.Pick.PickInRound != nil && *a.Pick.PickInRound <= 0 {
			return errors.New("pick_in_round must be greater than 0")
		}
	default:
		return fmt.Errorf("invalid asset kind: %q", a.Kind)
	}
	return nil
}
