package valuation

import (
	"math"
	"testing"

	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/sports/base"
	"github.com/chisports/gmengine/go/internal/sports/nba"
	"github.com/chisports/gmengine/go/internal/sports/nfl"
)

func testValuator() *Valuator {
	return NewValuator(base.StaticProfiles{
		models.SportNFL: nfl.Profile(),
		models.SportNBA: nba.Profile(),
	})
}

func intPtr(v int) *int { return &v }

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestPlayerValueMissingStatsUsesBaseline(t *testing.T) {
	p := models.Player{ID: "p1", Position: "QB", Age: intPtr(27)}
	got := PlayerValue(nfl.Profile(), p)
	want := BaselineNormalized * 100
	if !approx(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPlayerValueBadStatsFallBack(t *testing.T) {
	p := models.Player{
		ID:       "p1",
		Position: "QB",
		Age:      intPtr(27),
		Stats: map[string]float64{
			"pass_yds":      math.NaN(),
			"pass_td":       -4,
			"passer_rating": math.Inf(1),
		},
	}
	got := PlayerValue(nfl.Profile(), p)
	if !approx(got, BaselineNormalized*100) {
		t.Fatalf("expected baseline value, got %v", got)
	}
}

func TestPlayerValueClampsElitePlayers(t *testing.T) {
	p := models.Player{
		ID:       "p1",
		Position: "QB",
		Age:      intPtr(27),
		Stats:    map[string]float64{"pass_yds": 99999, "pass_td": 999, "passer_rating": 999},
	}
	if got := PlayerValue(nfl.Profile(), p); !approx(got, 150) {
		t.Fatalf("expected clamp at 150, got %v", got)
	}
}

func TestPlayerValueWeightsStats(t *testing.T) {
	p := models.Player{
		ID:       "p1",
		Position: "WR",
		Age:      intPtr(26),
		Stats:    map[string]float64{"rec_yds": 1400, "rec_td": 6, "receptions": 50},
	}
	// 0.45*1.0 + 0.30*0.5 + 0.25*0.5
	want := (0.45 + 0.15 + 0.125) * 100
	if got := PlayerValue(nfl.Profile(), p); !approx(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestAgeMultiplier(t *testing.T) {
	prime := base.AgeBand{Min: 25, Max: 29}
	cases := []struct {
		age  *int
		want float64
	}{
		{nil, MissingAgeMultiplier},
		{intPtr(0), MissingAgeMultiplier},
		{intPtr(27), 1.0},
		{intPtr(25), 1.0},
		{intPtr(29), 1.0},
		{intPtr(23), 0.92},
		{intPtr(12), 0.6},
		{intPtr(31), 0.8},
		{intPtr(45), 0.2},
	}
	for _, tc := range cases {
		if got := AgeMultiplier(prime, tc.age); !approx(got, tc.want) {
			t.Fatalf("age %v: expected %v, got %v", tc.age, tc.want, got)
		}
	}
}

func TestValueUnknownSportIsZero(t *testing.T) {
	v := testValuator()
	asset := models.NewPlayerAsset(models.Player{ID: "p1", Position: "C"})
	if got := v.Value(asset, models.SportNHL, 2026); got != 0 {
		t.Fatalf("expected 0 for unknown sport, got %v", got)
	}
}

func TestValueNeverNegative(t *testing.T) {
	v := testValuator()
	assets := []models.Asset{
		models.NewPlayerAsset(models.Player{ID: "p1", Position: "PG", Age: intPtr(40), Stats: map[string]float64{"pts": -30}}),
		models.NewPickAsset(models.DraftPick{Year: 2026, Round: 9}),
		models.NewPickAsset(models.DraftPick{Year: 2026, Round: -1}),
		{Kind: "bogus"},
	}
	for _, a := range assets {
		if got := v.Value(a, models.SportNBA, 2026); got < 0 {
			t.Fatalf("expected non-negative value for %s, got %v", a.Label(), got)
		}
	}
}

func TestPresentValueDiscountsPicksOnly(t *testing.T) {
	v := testValuator()
	pick := models.NewPickAsset(models.DraftPick{Year: 2028, Round: 1})
	if got := v.PresentValue(pick, models.SportNFL, 2026); !approx(got, 60*0.72) {
		t.Fatalf("expected two-year discount, got %v", got)
	}
	player := models.NewPlayerAsset(models.Player{ID: "p1", Position: "QB", Age: intPtr(27)})
	if v.PresentValue(player, models.SportNFL, 2026) != v.Value(player, models.SportNFL, 2026) {
		t.Fatal("expected player present value to equal value")
	}
}
