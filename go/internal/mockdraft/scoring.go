package mockdraft

import (
	"math"
	"strings"

	"github.com/chisports/gmengine/go/internal/models"
)

const (
	valueWeight  = 0.45
	needWeight   = 0.35
	upsideWeight = 0.20
)

// riskPenalty is the first-round cost of a risk tag; it shrinks each round.
var riskPenalty = map[models.RiskTag]struct{ first, perRound float64 }{
	models.RiskLow:    {0, 0},
	models.RiskMedium: {8, 2},
	models.RiskHigh:   {20, 5},
}

// ComputeScores grades the user's selections. teams is the league size,
// used as the reach/steal window.
func ComputeScores(d *models.MockDraft, teams int) *models.MockDraftScores {
	if teams <= 0 {
		teams = 32
	}
	var picks []models.DraftPickSlot
	for _, s := range d.Slots {
		if s.IsUserPick && s.Selected != nil {
			picks = append(picks, s)
		}
	}
	if len(picks) == 0 {
		return &models.MockDraftScores{LetterGrade: models.LetterGrade(0)}
	}

	var value, need, upside float64
	filled := make(map[string]bool)
	for _, s := range picks {
		p := s.Selected
		value += pickValue(s.PickNumber, p, teams)
		need += needFit(d.TeamNeeds, filled, p.Position)
		upside += upsideRisk(s.Round, p)
	}
	n := float64(len(picks))
	scores := &models.MockDraftScores{
		ValueScore:      round1(value / n),
		NeedFitScore:    round1(need / n),
		UpsideRiskScore: round1(upside / n),
	}
	scores.MockScore = round1(valueWeight*scores.ValueScore + needWeight*scores.NeedFitScore + upsideWeight*scores.UpsideRiskScore)
	scores.LetterGrade = models.LetterGrade(scores.MockScore)
	return scores
}

// pickValue blends the prospect's grade with where the prospect went against their
// consensus rank: on-rank is 50, a full round of steal is 100.
func pickValue(pickNumber int, p *models.Prospect, teams int) float64 {
	rank := p.ConsensusRank
	if rank <= 0 {
		rank = pickNumber
	}
	steal := clamp(0.5+float64(pickNumber-rank)/float64(2*teams), 0, 1)
	return 0.5*clamp(p.Grade, 0, 100) + 0.5*100*steal
}

func needFit(needs []string, filled map[string]bool, position string) float64 {
	if len(needs) == 0 {
		return 50
	}
	pos := strings.ToUpper(position)
	if !containsPosition(needs, pos) {
		return 20
	}
	if filled[pos] {
		return 50
	}
	filled[pos] = true
	return 100
}

func upsideRisk(round int, p *models.Prospect) float64 {
	penalty := riskPenalty[p.Risk]
	cost := math.Max(0, penalty.first-penalty.perRound*float64(round-1))
	return clamp(p.Grade-cost, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
