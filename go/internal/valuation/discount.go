package valuation

import (
	"math"

	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/sports/base"
)

// DiscountRate maps years in the future to a value multiplier.
func DiscountRate(yearsInFuture int) float64 {
	switch {
	case yearsInFuture <= 0:
		return 1.00
	case yearsInFuture == 1:
		return 0.85
	case yearsInFuture == 2:
		return 0.72
	default:
		return 0.60
	}
}

// Discount values pick as of currentYear. It does not modify pick.
func Discount(profile *base.Profile, pick models.DraftPick, currentYear int) models.DraftPickValuation {
	years := pick.Year - currentYear
	if years < 0 {
		years = 0
	}
	nominal := PickValue(profile, pick)
	rate := DiscountRate(years)
	discounted := nominal * rate
	return models.DraftPickValuation{
		Round:                 pick.Round,
		Year:                  pick.Year,
		YearsInFuture:         years,
		NominalValue:          nominal,
		DiscountRate:          rate,
		DiscountedValue:       discounted,
		EquivalentCurrentPick: equivalentRound(profile, discounted),
	}
}

// equivalentRound finds the current-year round whose value is closest to
// value. Ties go to the earlier round.
func equivalentRound(profile *base.Profile, value float64) int {
	best, bestDiff := 1, math.Inf(1)
	for r := 1; r <= profile.Rounds; r++ {
		diff := math.Abs(RoundValue(profile, r) - value)
		if diff < bestDiff {
			best, bestDiff = r, diff
		}
	}
	return best
}
