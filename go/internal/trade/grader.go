package trade

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"

	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/valuation"
)

// Grader scores a validated trade. Grading never fails: assets the valuator
// cannot price contribute zero.
type Grader struct {
	valuator  *valuation.Valuator
	weights   Weights
	tolerance float64
	clock     clockwork.Clock
}

func NewGrader(valuator *valuation.Valuator, cfg GraderConfig, clock clockwork.Clock) *Grader {
	if cfg.Weights.Validate() != nil {
		cfg.Weights = DefaultWeights()
	}
	if cfg.DangerTolerance <= 0 || cfg.DangerTolerance >= 1 {
		cfg.DangerTolerance = DefaultGraderConfig().DangerTolerance
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Grader{valuator: valuator, weights: cfg.Weights, tolerance: cfg.DangerTolerance, clock: clock}
}

// Grade evaluates t from every participant's view and returns the proposing
// team's result. In a three-team trade the proposer's incoming value is the
// combined flow from both partners.
func (g *Grader) Grade(t *models.Trade) GradeResult {
	year := g.clock.Now().Year()
	ledgers := make(map[string]*TeamLedger, 3)
	for _, team := range t.Teams() {
		ledgers[team] = &TeamLedger{TeamKey: team}
	}
	ledger := func(team string) *TeamLedger {
		l, ok := ledgers[team]
		if !ok {
			l = &TeamLedger{TeamKey: team}
			ledgers[team] = l
		}
		return l
	}

	for _, side := range t.Sides {
		from := ledger(side.TeamKey)
		for _, ta := range side.Outgoing {
			to := ledger(ta.ToTeam)
			value := g.valuator.PresentValue(ta.Asset, t.Sport, year)
			from.Out += value
			to.In += value

			switch ta.Asset.Kind {
			case models.AssetKindPick:
				to.PicksIn += value
			case models.AssetKindPlayer:
				p := *ta.Asset.Player
				from.SalaryOut = from.SalaryOut.Add(p.ContractAAV)
				to.SalaryIn = to.SalaryIn.Add(p.ContractAAV)
				to.incomingPlayers = append(to.incomingPlayers, weightedPlayer{player: p, value: value})
			}
		}
	}

	profile, profileErr := g.valuator.Profile(t.Sport)
	for team, l := range ledgers {
		var scarcity func(string) float64
		if profileErr == nil {
			scarcity = profile.PositionScarcity
		}
		l.Subscores = models.Subscores{
			TalentBalance: talentBalance(l.In, l.Out),
			ContractValue: contractValue(l.SalaryIn, l.SalaryOut),
			TeamFit:       teamFit(l, t.TeamNeeds[team], scarcity),
			FutureAssets:  futureAssets(l.PicksIn, l.In),
		}
		l.Composite = g.composite(l.Subscores)
	}

	proposer := ledgers[t.ProposingTeam]
	result := GradeResult{
		Composite:   proposer.Composite,
		Subscores:   proposer.Subscores,
		IsDangerous: g.isDangerous(proposer),
		Teams:       ledgers,
	}

	if profileErr == nil {
		for _, partner := range t.Partners() {
			if profile.SameDivision(t.ProposingTeam, partner) {
				team, _ := profile.Team(partner)
				result.Warnings = append(result.Warnings, fmt.Sprintf(
					"%s is a division rival (%s); strengthening them costs you head-to-head games",
					strings.ToUpper(partner), team.Division))
			}
		}
	}
	for _, team := range t.Teams() {
		if ledgers[team].In == 0 && ledgers[team].Out > 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s receives no value in this trade", strings.ToUpper(team)))
		}
	}

	result.Rationale = rationale(t, proposer, result.IsDangerous)
	return result
}

func (g *Grader) composite(s models.Subscores) float64 {
	w := g.weights
	raw := w.TalentBalance*s.TalentBalance +
		w.ContractValue*s.ContractValue +
		w.TeamFit*s.TeamFit +
		w.FutureAssets*s.FutureAssets
	return round1(100 * raw / w.sum())
}

func (g *Grader) isDangerous(l *TeamLedger) bool {
	return l.Out > 0 && (l.Out-l.In)/l.Out > g.tolerance
}

func talentBalance(in, out float64) float64 {
	if in+out == 0 {
		return 0.5
	}
	return in / (in + out)
}

// contractValue rewards shedding salary: 1.0 is pure cap relief, 0.0 is
// taking on salary with nothing going back.
func contractValue(salaryIn, salaryOut decimal.Decimal) float64 {
	total := salaryIn.Add(salaryOut)
	if total.IsZero() {
		return 0.5
	}
	half := decimal.NewFromFloat(0.5)
	return half.Add(half.Mul(salaryOut.Sub(salaryIn)).Div(total)).InexactFloat64()
}

func teamFit(l *TeamLedger, needs []string, scarcity func(string) float64) float64 {
	if len(l.incomingPlayers) == 0 {
		return 0.5
	}
	var weighted, total float64
	for _, wp := range l.incomingPlayers {
		pos := strings.ToUpper(wp.player.Position)
		need := 0.0
		if slices.Contains(needs, pos) {
			need = 1
			l.needsFilled++
		}
		scarce := 0.5
		if scarcity != nil {
			scarce = scarcity(pos)
		}
		fit := 0.5*need + 0.5*scarce

		w := wp.value
		if w <= 0 {
			w = 1e-9
		}
		weighted += w * fit
		total += w
		l.playersIn++
	}
	return weighted / total
}

func futureAssets(picksIn, in float64) float64 {
	if in == 0 {
		return 0
	}
	return picksIn / in
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func rationale(t *models.Trade, l *TeamLedger, dangerous bool) string {
	var b strings.Builder
	team := strings.ToUpper(t.ProposingTeam)
	fmt.Fprintf(&b, "%s sends out %.1f in value and takes back %.1f", team, l.Out, l.In)
	if t.IsThreeTeam() {
		b.WriteString(" across both partners")
	}
	b.WriteString(". ")

	switch s := l.Subscores.TalentBalance; {
	case s >= 0.55:
		b.WriteString("The talent swing favors you. ")
	case s <= 0.45:
		b.WriteString("You give up more talent than you get. ")
	default:
		b.WriteString("Talent is roughly even. ")
	}

	net := l.SalaryOut.Sub(l.SalaryIn)
	switch {
	case net.IsPositive():
		fmt.Fprintf(&b, "Clears $%sM per year in salary. ", net.StringFixed(1))
	case net.IsNegative():
		fmt.Fprintf(&b, "Adds $%sM per year in salary. ", net.Neg().StringFixed(1))
	}

	if l.playersIn > 0 {
		fmt.Fprintf(&b, "%d of %d incoming players fill a listed need. ", l.needsFilled, l.playersIn)
	}
	if l.PicksIn > 0 {
		fmt.Fprintf(&b, "Draft capital is %.0f%% of what comes back. ", 100*l.Subscores.FutureAssets)
	}
	if dangerous {
		b.WriteString("Warning: this gives away far more value than it returns.")
	}
	return strings.TrimSpace(b.String())
}
