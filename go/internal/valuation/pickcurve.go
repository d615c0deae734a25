package valuation

import (
	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/sports/base"
)

const (
	slotFactorFirst = 1.15
	slotFactorLast  = 0.85
)

// RoundValue is the undiscounted value of an unslotted pick in round.
// Rounds outside 1..rounds are valued as the last round.
func RoundValue(profile *base.Profile, round int) float64 {
	if round < 1 || round > profile.Rounds {
		round = profile.Rounds
	}
	curve := profile.PickCurve
	if len(curve.RoundValues) > 0 {
		return curve.RoundValues[round-1]
	}
	v := curve.FirstRound
	for i := 1; i < round; i++ {
		v *= curve.Decay
	}
	return v
}

// PickValue is the undiscounted value of a pick, scaled by its slot within
// the round when known.
func PickValue(profile *base.Profile, pick models.DraftPick) float64 {
	v := RoundValue(profile, pick.Round)
	if pick.PickInRound != nil {
		v *= slotFactor(*pick.PickInRound, len(profile.Teams))
	}
	return v
}

// slotFactor runs linearly from 1.15 at the first slot to 0.85 at the last.
func slotFactor(pickInRound, teams int) float64 {
	if teams <= 1 {
		return 1
	}
	if pickInRound < 1 {
		pickInRound = 1
	}
	if pickInRound > teams {
		pickInRound = teams
	}
	frac := float64(pickInRound-1) / float64(teams-1)
	return slotFactorFirst - (slotFactorFirst-slotFactorLast)*frac
}
