// Package valuation turns players and draft picks into comparable values.
package valuation

import (
	"math"

	"github.com/rs/zerolog/log"

	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/sports/base"
)

const (
	// BaselineNormalized stands in for a missing or unusable stat.
	BaselineNormalized = 0.35
	// MissingAgeMultiplier applies when a player's age is unknown.
	MissingAgeMultiplier = 0.9

	maxNormalized   = 1.5
	youngDecay      = 0.04
	youngFloor      = 0.6
	veteranDecay    = 0.10
	veteranFloor    = 0.2
	playerValueUnit = 100
)

// Valuator values assets using sport profiles. Valuation never fails: bad
// inputs fall back to conservative baselines.
type Valuator struct {
	profiles base.ProfileSource
}

func NewValuator(profiles base.ProfileSource) *Valuator {
	return &Valuator{profiles: profiles}
}

// Profile exposes the profile lookup to callers that already hold a valuator.
func (v *Valuator) Profile(sport models.Sport) (*base.Profile, error) {
	return v.profiles.ProfileFor(sport)
}

// Value returns the undiscounted value of asset, always >= 0.
func (v *Valuator) Value(asset models.Asset, sport models.Sport, contextYear int) float64 {
	profile, err := v.profiles.ProfileFor(sport)
	if err != nil {
		log.Warn().Err(err).Str("sport", string(sport)).Msg("no sport profile, valuing asset at zero")
		return 0
	}
	switch asset.Kind {
	case models.AssetKindPlayer:
		if asset.Player == nil {
			return 0
		}
		return PlayerValue(profile, *asset.Player)
	case models.AssetKindPick:
		if asset.Pick == nil {
			return 0
		}
		return PickValue(profile, *asset.Pick)
	default:
		return 0
	}
}

// PresentValue is Value with picks discounted to contextYear.
func (v *Valuator) PresentValue(asset models.Asset, sport models.Sport, contextYear int) float64 {
	if asset.Kind != models.AssetKindPick || asset.Pick == nil {
		return v.Value(asset, sport, contextYear)
	}
	profile, err := v.profiles.ProfileFor(sport)
	if err != nil {
		log.Warn().Err(err).Str("sport", string(sport)).Msg("no sport profile, valuing pick at zero")
		return 0
	}
	return Discount(profile, *asset.Pick, contextYear).DiscountedValue
}

// Discount values a pick for sport as of currentYear. Unknown sports
// produce a zero valuation.
func (v *Valuator) Discount(pick models.DraftPick, sport models.Sport, currentYear int) models.DraftPickValuation {
	profile, err := v.profiles.ProfileFor(sport)
	if err != nil {
		log.Warn().Err(err).Str("sport", string(sport)).Msg("no sport profile for pick discount")
		return models.DraftPickValuation{Round: pick.Round, Year: pick.Year, DiscountRate: 1}
	}
	return Discount(profile, pick, currentYear)
}

// PlayerValue is the weighted normalized stat score of the player's
// position group, times 100, times the age multiplier.
func PlayerValue(profile *base.Profile, p models.Player) float64 {
	weights := profile.StatGroup(p.Position)
	var sum, total float64
	for _, w := range weights {
		sum += w.Weight * normalize(p.Stats, w)
		total += w.Weight
	}
	score := BaselineNormalized
	if total > 0 {
		score = sum / total
	}
	return score * playerValueUnit * AgeMultiplier(profile.PrimeAge, p.Age)
}

func normalize(stats map[string]float64, w base.StatWeight) float64 {
	raw, ok := stats[w.Stat]
	if !ok || math.IsNaN(raw) || math.IsInf(raw, 0) || raw < 0 || w.Scale <= 0 {
		return BaselineNormalized
	}
	return math.Min(raw/w.Scale, maxNormalized)
}

// AgeMultiplier is 1.0 inside the prime band and decays on either side.
func AgeMultiplier(prime base.AgeBand, age *int) float64 {
	if age == nil || *age <= 0 {
		return MissingAgeMultiplier
	}
	a := *age
	switch {
	case a < prime.Min:
		return math.Max(youngFloor, 1-youngDecay*float64(prime.Min-a))
	case a > prime.Max:
		return math.Max(veteranFloor, 1-veteranDecay*float64(a-prime.Max))
	default:
		return 1.0
	}
}
