// Package scoring keeps each user's GM score: the blend of their accepted
// trade grades and their best mock draft.
package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/chisports/gmengine/go/internal/apperr"
	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/outbox"
)

// MockSummary is the part of a mock draft the score needs.
type MockSummary struct {
	ID        uuid.UUID
	Status    models.MockDraftStatus
	IsReset   bool
	IsBest    bool
	MockScore *float64
}

// Eligible reports whether the draft can count toward the score.
func (m MockSummary) Eligible() bool {
	return m.Status == models.MockDraftStatusCompleted && !m.IsReset && m.MockScore != nil
}

// ScoreRepository defines what the aggregator needs from storage.
type ScoreRepository interface {
	AcceptedTradeGrades(ctx context.Context, userID string) ([]float64, error)
	MockSummaries(ctx context.Context, userID string) ([]MockSummary, error)
	GetMockSummary(ctx context.Context, userID string, id uuid.UUID) (*MockSummary, error)
	// SetBestMockDraft clears any prior flag and sets id in one transaction.
	SetBestMockDraft(ctx context.Context, userID string, id uuid.UUID) error
	GetUserScore(ctx context.Context, userID string) (*models.UserScore, error)
	SaveUserScore(ctx context.Context, score *models.UserScore, event outbox.OutboxEvent) error
}

// Weights blend the two halves of the score.
type Weights struct {
	Trade float64 `yaml:"trade"`
	Mock  float64 `yaml:"mock"`
}

func DefaultWeights() Weights {
	return Weights{Trade: models.DefaultTradeWeight, Mock: models.DefaultMockWeight}
}

// Validate rejects negative weights and an all-zero blend.
func (w Weights) Validate() error {
	if w.Trade < 0 || w.Mock < 0 {
		return fmt.Errorf("score weights must not be negative: %+v", w)
	}
	if w.Trade+w.Mock <= 0 {
		return fmt.Errorf("score weights must not all be zero")
	}
	return nil
}

type Aggregator struct {
	repo    ScoreRepository
	weights Weights
	clock   clockwork.Clock
}

func NewAggregator(repo ScoreRepository, weights Weights, clock clockwork.Clock) *Aggregator {
	if weights.Validate() != nil {
		weights = DefaultWeights()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Aggregator{repo: repo, weights: weights, clock: clock}
}

// Recompute rebuilds the user's score from history and stores the snapshot.
func (a *Aggregator) Recompute(ctx context.Context, userID string) (*models.UserScore, error) {
	grades, err := a.repo.AcceptedTradeGrades(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trade grades: %w", err)
	}
	mocks, err := a.repo.MockSummaries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mock drafts: %w", err)
	}

	score := &models.UserScore{
		UserID:      userID,
		TradeCount:  len(grades),
		TradeWeight: a.weights.Trade,
		MockWeight:  a.weights.Mock,
		ComputedAt:  a.clock.Now().UTC(),
	}
	if len(grades) > 0 {
		var sum float64
		for _, g := range grades {
			sum += g
		}
		avg := sum / float64(len(grades))
		score.BestTradeScore = &avg
	}

	best := bestMock(mocks)
	for _, m := range mocks {
		if m.Eligible() {
			score.MockCount++
		}
	}
	if best != nil {
		v := *best.MockScore
		id := best.ID
		score.BestMockDraftScore = &v
		score.BestMockDraftID = &id
	}
	score.CombinedScore = a.combine(score.BestTradeScore, score.BestMockDraftScore)

	event, err := outbox.NewEvent(a.clock, outbox.EventUserScoreUpdated, outbox.UserAggregateID(userID), score)
	if err != nil {
		return nil, apperr.Internal("failed to build score event", err)
	}
	if err := a.repo.SaveUserScore(ctx, score, event); err != nil {
		return nil, fmt.Errorf("failed to save user score: %w", err)
	}

	log.Debug().
		Str("user_id", userID).
		Int("trades", score.TradeCount).
		Int("mock_drafts", score.MockCount).
		Msg("user score recomputed")
	return score, nil
}

// GetUserScore returns the stored snapshot, computing one if the user has
// none yet.
func (a *Aggregator) GetUserScore(ctx context.Context, userID string) (*models.UserScore, error) {
	score, err := a.repo.GetUserScore(ctx, userID)
	if err == nil {
		return score, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, fmt.Errorf("failed to get user score: %w", err)
	}
	return a.Recompute(ctx, userID)
}

// SetBestMockDraft flags one of the user's completed drafts as their best
// of three and recomputes the score.
func (a *Aggregator) SetBestMockDraft(ctx context.Context, userID string, id uuid.UUID) (*models.UserScore, error) {
	m, err := a.repo.GetMockSummary(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get mock draft: %w", err)
	}
	switch {
	case m.IsReset:
		return nil, apperr.Precondition(apperr.CodeDraftReset, "mock draft was reset")
	case m.Status != models.MockDraftStatusCompleted:
		return nil, apperr.Precondition(apperr.CodeDraftNotDone, "mock draft is not completed")
	case m.IsBest:
		return nil, apperr.Precondition(apperr.CodeAlreadyBest, "mock draft is already the best of three")
	}

	if err := a.repo.SetBestMockDraft(ctx, userID, id); err != nil {
		return nil, fmt.Errorf("failed to set best mock draft: %w", err)
	}
	log.Info().Str("user_id", userID).Str("draft_id", id.String()).Msg("best mock draft set")
	return a.Recompute(ctx, userID)
}

func (a *Aggregator) combine(trade, mock *float64) *float64 {
	var v float64
	switch {
	case trade != nil && mock != nil:
		v = (a.weights.Trade**trade + a.weights.Mock**mock) / (a.weights.Trade + a.weights.Mock)
	case trade != nil:
		v = *trade
	case mock != nil:
		v = *mock
	default:
		return nil
	}
	v = round1(v)
	return &v
}

// bestMock picks the flagged draft when it still counts, else the highest
// scoring eligible one.
func bestMock(mocks []MockSummary) *MockSummary {
	var best *MockSummary
	for i := range mocks {
		m := &mocks[i]
		if !m.Eligible() {
			continue
		}
		if m.IsBest {
			return m
		}
		if best == nil || *m.MockScore > *best.MockScore {
			best = m
		}
	}
	return best
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
