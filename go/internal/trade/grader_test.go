package trade

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"

	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/sports/base"
	"github.com/chisports/gmengine/go/internal/sports/nfl"
	"github.com/chisports/gmengine/go/internal/valuation"
)

func testProfiles() base.StaticProfiles {
	return base.StaticProfiles{models.SportNFL: nfl.Profile()}
}

func testGrader() *Grader {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC))
	return NewGrader(valuation.NewValuator(testProfiles()), DefaultGraderConfig(), clock)
}

func intPtr(v int) *int { return &v }

func quarterback(id string) models.Asset {
	return models.NewPlayerAsset(models.Player{
		ID: id, Name: "Field General", Position: "QB", Age: intPtr(27),
		Stats:       map[string]float64{"pass_yds": 4500, "pass_td": 35, "passer_rating": 110},
		ContractAAV: decimal.NewFromInt(45), ContractYears: 4,
	})
}

func receiver(id string) models.Asset {
	return models.NewPlayerAsset(models.Player{
		ID: id, Name: "Deep Threat", Position: "WR", Age: intPtr(24),
		Stats:       map[string]float64{"rec_yds": 1100, "rec_td": 8, "receptions": 80},
		ContractAAV: decimal.NewFromInt(20), ContractYears: 3,
	})
}

func pick(origin string, year, round int) models.Asset {
	return models.NewPickAsset(models.DraftPick{Year: year, Round: round, OriginTeam: origin})
}

func twoTeam(proposer, partner string, proposerSends, partnerSends []models.Asset) *models.Trade {
	t := &models.Trade{Sport: models.SportNFL, ProposingTeam: proposer, PartnerTeam: partner}
	side := func(team, to string, assets []models.Asset) models.TradeSide {
		s := models.TradeSide{TeamKey: team}
		for _, a := range assets {
			s.Outgoing = append(s.Outgoing, models.TradeAsset{Asset: a, ToTeam: to})
		}
		return s
	}
	t.Sides = []models.TradeSide{
		side(proposer, partner, proposerSends),
		side(partner, proposer, partnerSends),
	}
	return t
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestGradeTalentBalanceIsMirroredWhenSidesSwap(t *testing.T) {
	g := testGrader()

	forward := g.Grade(twoTeam("chi", "kc", []models.Asset{receiver("wr1")}, []models.Asset{pick("kc", 2026, 1)}))
	swapped := g.Grade(twoTeam("kc", "chi", []models.Asset{pick("kc", 2026, 1)}, []models.Asset{receiver("wr1")}))

	if !approx(forward.Subscores.TalentBalance+swapped.Subscores.TalentBalance, 1) {
		t.Fatalf("expected mirrored talent balance, got %v and %v",
			forward.Subscores.TalentBalance, swapped.Subscores.TalentBalance)
	}
	if !approx(forward.Teams["kc"].Subscores.TalentBalance, swapped.Subscores.TalentBalance) {
		t.Fatalf("expected partner ledger to match swapped proposer view")
	}
	if !approx(forward.Teams["chi"].In, forward.Teams["kc"].Out) {
		t.Fatalf("expected value conservation, chi in %v kc out %v", forward.Teams["chi"].In, forward.Teams["kc"].Out)
	}
}

func TestGradeFlagsLopsidedTradeAsDangerous(t *testing.T) {
	g := testGrader()

	result := g.Grade(twoTeam("chi", "kc", []models.Asset{quarterback("qb1")}, []models.Asset{pick("kc", 2026, 7)}))
	if !result.IsDangerous {
		t.Fatalf("expected dangerous trade, ledger %+v", result.Teams["chi"])
	}
	if !strings.Contains(result.Rationale, "Warning") {
		t.Fatalf("expected rationale to warn, got %q", result.Rationale)
	}

	fair := g.Grade(twoTeam("chi", "kc", []models.Asset{pick("chi", 2026, 2)}, []models.Asset{pick("kc", 2026, 2)}))
	if fair.IsDangerous {
		t.Fatal("expected even pick swap not to be dangerous")
	}
	if !approx(fair.Subscores.TalentBalance, 0.5) {
		t.Fatalf("expected even talent balance, got %v", fair.Subscores.TalentBalance)
	}
}

func TestGradeWarnsOnDivisionRivalWithoutChangingGrade(t *testing.T) {
	g := testGrader()

	rival := g.Grade(twoTeam("chi", "gb", []models.Asset{receiver("wr1")}, []models.Asset{pick("gb", 2026, 1)}))
	other := g.Grade(twoTeam("chi", "kc", []models.Asset{receiver("wr1")}, []models.Asset{pick("kc", 2026, 1)}))

	if len(rival.Warnings) == 0 || !strings.Contains(rival.Warnings[0], "division rival") {
		t.Fatalf("expected division rival warning, got %v", rival.Warnings)
	}
	if len(other.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", other.Warnings)
	}
	if rival.Composite != other.Composite {
		t.Fatalf("expected identical grades, got %v and %v", rival.Composite, other.Composite)
	}
}

func TestGradeThreeTeamCombinesIncomingForProposer(t *testing.T) {
	g := testGrader()
	trade := &models.Trade{
		Sport: models.SportNFL, ProposingTeam: "chi", PartnerTeam: "gb", Partner2Team: "min",
		Sides: []models.TradeSide{
			{TeamKey: "chi", Outgoing: []models.TradeAsset{{Asset: receiver("wr1"), ToTeam: "gb"}}},
			{TeamKey: "gb", Outgoing: []models.TradeAsset{
				{Asset: pick("gb", 2026, 2), ToTeam: "chi"},
				{Asset: pick("gb", 2026, 3), ToTeam: "min"},
			}},
			{TeamKey: "min", Outgoing: []models.TradeAsset{{Asset: pick("min", 2027, 1), ToTeam: "chi"}}},
		},
	}

	result := g.Grade(trade)
	if len(result.Teams) != 3 {
		t.Fatalf("expected 3 ledgers, got %d", len(result.Teams))
	}

	p := valuation.NewValuator(testProfiles())
	wantIn := p.PresentValue(pick("gb", 2026, 2), models.SportNFL, 2026) + p.PresentValue(pick("min", 2027, 1), models.SportNFL, 2026)
	if !approx(result.Teams["chi"].In, wantIn) {
		t.Fatalf("expected chi incoming %v, got %v", wantIn, result.Teams["chi"].In)
	}
	if !approx(result.Subscores.FutureAssets, 1) {
		t.Fatalf("expected all-pick return to score future assets 1, got %v", result.Subscores.FutureAssets)
	}
	if result.Subscores.ContractValue != 1 {
		t.Fatalf("expected pure salary relief, got %v", result.Subscores.ContractValue)
	}

	var total float64
	for _, l := range result.Teams {
		total += l.In - l.Out
	}
	if !approx(total, 0) {
		t.Fatalf("expected value to net to zero across teams, got %v", total)
	}
}

func TestContractValue(t *testing.T) {
	cases := []struct {
		name     string
		in, out  string
		expected float64
	}{
		{"no salary moves", "0", "0", 0.5},
		{"pure relief", "0", "12.5", 1},
		{"pure addition", "30", "0", 0},
		{"even swap", "10", "10", 0.5},
		{"partial relief", "10", "30", 0.75},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := contractValue(decimal.RequireFromString(tc.in), decimal.RequireFromString(tc.out))
			if !approx(got, tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestTeamFitUsesNeedsAndScarcity(t *testing.T) {
	profile := nfl.Profile()
	l := &TeamLedger{incomingPlayers: []weightedPlayer{{player: *quarterback("qb1").Player, value: 100}}}
	if got := teamFit(l, []string{"QB"}, profile.PositionScarcity); !approx(got, 1) {
		t.Fatalf("expected perfect fit, got %v", got)
	}

	l = &TeamLedger{incomingPlayers: []weightedPlayer{{player: *receiver("wr1").Player, value: 50}}}
	if got := teamFit(l, nil, profile.PositionScarcity); !approx(got, 0.35) {
		t.Fatalf("expected scarcity-only fit 0.35, got %v", got)
	}

	if got := teamFit(&TeamLedger{}, []string{"QB"}, profile.PositionScarcity); got != 0.5 {
		t.Fatalf("expected neutral fit with no players, got %v", got)
	}
}

func TestCompositeRoundsToOneDecimal(t *testing.T) {
	g := testGrader()
	got := g.composite(models.Subscores{TalentBalance: 0.5, ContractValue: 0.5, TeamFit: 0.5, FutureAssets: 0})
	if got != 42.5 {
		t.Fatalf("expected 42.5, got %v", got)
	}
	got = g.composite(models.Subscores{TalentBalance: 0.6123, ContractValue: 0.5, TeamFit: 0.5, FutureAssets: 0.333})
	if got != math.Round(got*10)/10 {
		t.Fatalf("expected one decimal place, got %v", got)
	}
}

func TestGraderConfigRejectsNegativeWeights(t *testing.T) {
	cases := []struct {
		name  string
		cfg   GraderConfig
		valid bool
	}{
		{name: "defaults", cfg: DefaultGraderConfig(), valid: true},
		{name: "negative weight", cfg: GraderConfig{Weights: Weights{TalentBalance: 1.2, ContractValue: -0.2}, DangerTolerance: 0.25}},
		{name: "all zero", cfg: GraderConfig{DangerTolerance: 0.25}},
		{name: "tolerance above one", cfg: GraderConfig{Weights: DefaultWeights(), DangerTolerance: 1.5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); (err == nil) != tc.valid {
				t.Fatalf("expected valid=%v, got %v", tc.valid, err)
			}
		})
	}

	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC))
	g := NewGrader(valuation.NewValuator(testProfiles()), cases[1].cfg, clock)
	if got := g.composite(models.Subscores{TalentBalance: 1, ContractValue: 1, TeamFit: 1, FutureAssets: 1}); got != 100 {
		t.Fatalf("expected negative weights to fall back to defaults (100), got %v", got)
	}
	if got := g.composite(models.Subscores{TalentBalance: 0, ContractValue: 1}); got < 0 || got > 100 {
		t.Fatalf("expected composite inside 0..100, got %v", got)
	}
}
