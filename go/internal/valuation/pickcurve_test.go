package valuation

import (
	"testing"

	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/sports/base"
	"github.com/chisports/gmengine/go/internal/sports/mlb"
	"github.com/chisports/gmengine/go/internal/sports/nba"
	"github.com/chisports/gmengine/go/internal/sports/nfl"
	"github.com/chisports/gmengine/go/internal/sports/nhl"
)

func TestPickCurveMonotoneByOverallPick(t *testing.T) {
	for _, profile := range []*base.Profile{nfl.Profile(), nba.Profile(), mlb.Profile(), nhl.Profile()} {
		prev := -1.0
		for round := 1; round <= profile.Rounds; round++ {
			for slot := 1; slot <= len(profile.Teams); slot++ {
				v := PickValue(profile, models.DraftPick{Year: 2026, Round: round, PickInRound: intPtr(slot)})
				if prev >= 0 && v > prev {
					t.Fatalf("%s: round %d pick %d worth %v, more than previous %v", profile.Sport, round, slot, v, prev)
				}
				prev = v
			}
		}
	}
}

func TestRoundValue(t *testing.T) {
	p := nfl.Profile()
	if got := RoundValue(p, 1); got != 60 {
		t.Fatalf("expected 60, got %v", got)
	}
	if got := RoundValue(p, 2); !approx(got, 33) {
		t.Fatalf("expected 33, got %v", got)
	}
	last := RoundValue(p, 7)
	for _, r := range []int{0, -3, 8, 99} {
		if got := RoundValue(p, r); got != last {
			t.Fatalf("round %d: expected last-round value %v, got %v", r, last, got)
		}
	}
	if got := RoundValue(nba.Profile(), 2); got != 12 {
		t.Fatalf("expected explicit nba round 2 value 12, got %v", got)
	}
}

func TestSlotFactor(t *testing.T) {
	if got := slotFactor(1, 32); !approx(got, 1.15) {
		t.Fatalf("expected 1.15, got %v", got)
	}
	if got := slotFactor(32, 32); !approx(got, 0.85) {
		t.Fatalf("expected 0.85, got %v", got)
	}
	if got := slotFactor(40, 32); !approx(got, 0.85) {
		t.Fatalf("expected slot beyond the round to clamp, got %v", got)
	}
	if got := slotFactor(1, 1); got != 1 {
		t.Fatalf("expected 1 for a single-team league, got %v", got)
	}
}
