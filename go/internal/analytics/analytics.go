// Package analytics summarizes a user's trade and mock draft history.
package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/trade"
)

// TradeSource lists a user's trades.
type TradeSource interface {
	ListTrades(ctx context.Context, userID string, filter trade.ListTradesFilter) ([]models.Trade, error)
}

// MockSource lists a user's mock drafts.
type MockSource interface {
	ListMockDrafts(ctx context.Context, userID string) ([]models.MockDraft, error)
}

type WeekBucket struct {
	Week         string  `json:"week"` // ISO week, "2026-W11"
	Count        int     `json:"count"`
	AverageGrade float64 `json:"average_grade"`
}

type PartnerStats struct {
	TeamKey      string  `json:"team_key"`
	Count        int     `json:"count"`
	Accepted     int     `json:"accepted"`
	Dangerous    int     `json:"dangerous"`
	AverageGrade float64 `json:"average_grade"`
}

type MockDraftStats struct {
	Total        int      `json:"total"`
	Completed    int      `json:"completed"`
	Reset        int      `json:"reset"`
	AverageScore *float64 `json:"average_score"`
	BestScore    *float64 `json:"best_score"`
	BestLetter   string   `json:"best_letter,omitempty"`
}

// Analytics is the dashboard view of one user's history.
type Analytics struct {
	TotalTrades       int                  `json:"total_trades"`
	Accepted          int                  `json:"accepted"`
	Rejected          int                  `json:"rejected"`
	Proposed          int                  `json:"proposed"`
	DangerousCount    int                  `json:"dangerous_count"`
	AverageGrade      *float64             `json:"average_grade"`
	GradeDistribution map[string]int       `json:"grade_distribution"`
	Timeline          []WeekBucket         `json:"timeline"`
	Partners          []PartnerStats       `json:"partners"`
	BySport           map[models.Sport]int `json:"by_sport"`
	MockDrafts        MockDraftStats       `json:"mock_drafts"`
}

type Aggregator struct {
	trades TradeSource
	mocks  MockSource
}

func NewAggregator(trades TradeSource, mocks MockSource) *Aggregator {
	return &Aggregator{trades: trades, mocks: mocks}
}

// GetAnalytics loads the user's full history and summarizes it.
func (a *Aggregator) GetAnalytics(ctx context.Context, userID string) (*Analytics, error) {
	trades, err := a.trades.ListTrades(ctx, userID, trade.ListTradesFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	drafts, err := a.mocks.ListMockDrafts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list mock drafts: %w", err)
	}
	return Summarize(trades, drafts), nil
}

// Summarize is GetAnalytics over already loaded history.
func Summarize(trades []models.Trade, drafts []models.MockDraft) *Analytics {
	out := &Analytics{
		TotalTrades:       len(trades),
		GradeDistribution: map[string]int{"A": 0, "B": 0, "C": 0, "D": 0, "F": 0},
		Timeline:          []WeekBucket{},
		Partners:          []PartnerStats{},
		BySport:           map[models.Sport]int{},
	}

	type sums struct {
		count int
		total float64
	}
	var (
		gradeSum float64
		weeks    = map[string]*sums{}
		partners = map[string]*PartnerStats{}
		pSums    = map[string]float64{}
	)
	for _, t := range trades {
		switch t.Status {
		case models.TradeStatusAccepted:
			out.Accepted++
		case models.TradeStatusRejected:
			out.Rejected++
		default:
			out.Proposed++
		}
		if t.IsDangerous {
			out.DangerousCount++
		}
		gradeSum += t.Grade
		out.GradeDistribution[models.LetterGrade(t.Grade)]++
		out.BySport[t.Sport]++

		year, week := t.CreatedAt.ISOWeek()
		key := fmt.Sprintf("%d-W%02d", year, week)
		w, ok := weeks[key]
		if !ok {
			w = &sums{}
			weeks[key] = w
		}
		w.count++
		w.total += t.Grade

		for _, team := range t.Partners() {
			p, ok := partners[team]
			if !ok {
				p = &PartnerStats{TeamKey: team}
				partners[team] = p
			}
			p.Count++
			if t.Status == models.TradeStatusAccepted {
				p.Accepted++
			}
			if t.IsDangerous {
				p.Dangerous++
			}
			pSums[team] += t.Grade
		}
	}
	if len(trades) > 0 {
		avg := round1(gradeSum / float64(len(trades)))
		out.AverageGrade = &avg
	}

	for key, w := range weeks {
		out.Timeline = append(out.Timeline, WeekBucket{Week: key, Count: w.count, AverageGrade: round1(w.total / float64(w.count))})
	}
	sort.Slice(out.Timeline, func(i, j int) bool { return out.Timeline[i].Week < out.Timeline[j].Week })

	for team, p := range partners {
		p.AverageGrade = round1(pSums[team] / float64(p.Count))
		out.Partners = append(out.Partners, *p)
	}
	sort.Slice(out.Partners, func(i, j int) bool {
		if out.Partners[i].Count != out.Partners[j].Count {
			return out.Partners[i].Count > out.Partners[j].Count
		}
		return out.Partners[i].TeamKey < out.Partners[j].TeamKey
	})

	out.MockDrafts = summarizeMocks(drafts)
	return out
}

func summarizeMocks(drafts []models.MockDraft) MockDraftStats {
	stats := MockDraftStats{Total: len(drafts)}
	var sum float64
	for _, d := range drafts {
		if d.IsReset {
			stats.Reset++
			continue
		}
		if d.Status != models.MockDraftStatusCompleted || d.Scores == nil {
			continue
		}
		stats.Completed++
		sum += d.Scores.MockScore
		if stats.BestScore == nil || d.Scores.MockScore > *stats.BestScore {
			best := d.Scores.MockScore
			stats.BestScore = &best
			stats.BestLetter = d.Scores.LetterGrade
		}
	}
	if stats.Completed > 0 {
		avg := round1(sum / float64(stats.Completed))
		stats.AverageScore = &avg
	}
	return stats
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
