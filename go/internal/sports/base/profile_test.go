package base_test

import (
	"testing"

	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/sports/base"
	"github.com/chisports/gmengine/go/internal/sports/mlb"
	"github.com/chisports/gmengine/go/internal/sports/nba"
	"github.com/chisports/gmengine/go/internal/sports/nfl"
	"github.com/chisports/gmengine/go/internal/sports/nhl"
)

func TestBuiltInProfilesValidate(t *testing.T) {
	cases := []struct {
		profile *base.Profile
		rounds  int
		teams   int
	}{
		{nfl.Profile(), 7, 32},
		{nba.Profile(), 2, 30},
		{mlb.Profile(), 20, 30},
		{nhl.Profile(), 7, 32},
	}
	for _, tc := range cases {
		if err := tc.profile.Validate(); err != nil {
			t.Fatalf("%s: expected valid profile, got %v", tc.profile.Sport, err)
		}
		if tc.profile.Rounds != tc.rounds {
			t.Fatalf("%s: expected %d rounds, got %d", tc.profile.Sport, tc.rounds, tc.profile.Rounds)
		}
		if len(tc.profile.Teams) != tc.teams {
			t.Fatalf("%s: expected %d teams, got %d", tc.profile.Sport, tc.teams, len(tc.profile.Teams))
		}
		seen := map[string]bool{}
		for _, team := range tc.profile.Teams {
			if seen[team.Key] {
				t.Fatalf("%s: duplicate team key %q", tc.profile.Sport, team.Key)
			}
			seen[team.Key] = true
		}
	}
	if got := nfl.Profile().TotalPicks(); got != 224 {
		t.Fatalf("expected 224 NFL picks, got %d", got)
	}
}

func TestRegistryServesEveryPlugin(t *testing.T) {
	for _, sport := range []models.Sport{models.SportNFL, models.SportNBA, models.SportMLB, models.SportNHL} {
		p, err := base.Registry{}.ProfileFor(sport)
		if err != nil {
			t.Fatalf("expected %s plugin, got %v", sport, err)
		}
		if p.Sport != sport {
			t.Fatalf("expected profile for %s, got %s", sport, p.Sport)
		}
	}
	if _, err := base.GetPlugin("cricket"); err == nil {
		t.Fatal("expected error for unregistered plugin")
	}
	if err := base.RegisterPlugin("nfl", base.NewProfilePlugin(nfl.Profile())); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestResolveTeam(t *testing.T) {
	p := nfl.Profile()
	cases := map[string]string{
		"bears": "chi",
		"Bears": "chi",
		"CHI":   "chi",
		"gb":    "gb",
		"49ers": "sf",
	}
	for in, want := range cases {
		got, ok := p.ResolveTeam(in)
		if !ok || got != want {
			t.Fatalf("ResolveTeam(%q): expected %q, got %q (ok=%v)", in, want, got, ok)
		}
	}
	if _, ok := p.ResolveTeam("cubs"); ok {
		t.Fatal("expected cubs to be unknown in the NFL")
	}
	if got, ok := mlb.Profile().ResolveTeam("white sox"); !ok || got != "cws" {
		t.Fatalf("expected cws, got %q", got)
	}
}

func TestSameDivision(t *testing.T) {
	p := nfl.Profile()
	if !p.SameDivision("chi", "gb") {
		t.Fatal("expected chi and gb to share a division")
	}
	if p.SameDivision("chi", "kc") {
		t.Fatal("expected chi and kc to be in different divisions")
	}
	if p.SameDivision("chi", "nope") {
		t.Fatal("expected unknown team to never match")
	}
}

func TestWithOverrides(t *testing.T) {
	p := nfl.Profile()
	next, err := p.WithOverrides(base.Overrides{
		PrimeAge: &base.AgeBand{Min: 24, Max: 30},
		Scarcity: map[string]float64{"rb": 0.9},
	})
	if err != nil {
		t.Fatalf("expected overrides to apply, got %v", err)
	}
	if next.PrimeAge.Max != 30 || next.PositionScarcity("RB") != 0.9 {
		t.Fatalf("overrides not applied: %+v", next.PrimeAge)
	}
	if p.PositionScarcity("RB") != 0.40 {
		t.Fatal("expected original profile to be untouched")
	}

	_, err = p.WithOverrides(base.Overrides{PickCurve: &base.PickCurve{FirstRound: 60, Decay: 0.9}})
	if err == nil {
		t.Fatal("expected non-monotone decay to be rejected")
	}
}

func TestStatGroupFallsBackToDefault(t *testing.T) {
	p := nfl.Profile()
	if got := p.StatGroup("qb"); len(got) == 0 || got[0].Stat != "pass_yds" {
		t.Fatalf("expected passing group for qb, got %+v", got)
	}
	if got := p.StatGroup("LS"); len(got) != 1 || got[0].Stat != "games" {
		t.Fatalf("expected general group for long snapper, got %+v", got)
	}
	if got := p.PositionScarcity("LS"); got != base.DefaultScarcity {
		t.Fatalf("expected default scarcity, got %v", got)
	}
}
