package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/chisports/gmengine/go/internal/apperr"
	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/outbox"
	"github.com/chisports/gmengine/go/internal/ratelimit"
	"github.com/chisports/gmengine/go/internal/sports/base"
)

// TradeRepository defines what the trade app layer needs from the repository.
// Writes take the outbox event that must commit with them.
type TradeRepository interface {
	CreateTrade(ctx context.Context, trade *models.Trade, event outbox.OutboxEvent) error
	GetTrade(ctx context.Context, userID string, id uuid.UUID) (*models.Trade, error)
	ListTrades(ctx context.Context, userID string, filter ListTradesFilter) ([]models.Trade, error)
	GetTradesByIDs(ctx context.Context, userID string, ids []uuid.UUID) ([]models.Trade, error)
	DecideTrade(ctx context.Context, trade *models.Trade, event outbox.OutboxEvent) error
}

// Simulator projects a trade onto season standings.
type Simulator interface {
	ApplyTradeImpact(ctx context.Context, trade *models.Trade, baseline *models.SeasonBaseline) (*models.TradeImpact, error)
}

// ScoreRecomputer refreshes the user's GM score after trade history changes.
type ScoreRecomputer interface {
	Recompute(ctx context.Context, userID string) (*models.UserScore, error)
}

// Metrics is the subset of the metrics recorder the trade app reports to.
type Metrics interface {
	RecordTradeGraded(sport string, grade float64, dangerous bool)
	RecordTradeDecision(status string)
	RecordSimulation(duration time.Duration, err error)
}

// App handles trade business logic
type App struct {
	repo      TradeRepository
	profiles  base.ProfileSource
	grader    *Grader
	simulator Simulator
	scores    ScoreRecomputer
	guard     *ratelimit.Guard
	metrics   Metrics
	clock     clockwork.Clock
}

// NewApp creates a new trade App. simulator, scores, guard and metrics may
// be nil.
func NewApp(repo TradeRepository, profiles base.ProfileSource, grader *Grader, simulator Simulator, scores ScoreRecomputer, guard *ratelimit.Guard, metrics Metrics, clock clockwork.Clock) *App {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &App{
		repo:      repo,
		profiles:  profiles,
		grader:    grader,
		simulator: simulator,
		scores:    scores,
		guard:     guard,
		metrics:   metrics,
		clock:     clock,
	}
}

// SubmitTrade validates, grades and stores a proposal.
func (a *App) SubmitTrade(ctx context.Context, userID string, req SubmitTradeRequest) (*models.Trade, error) {
	if err := a.guard.Check(ctx, userID); err != nil {
		return nil, err
	}

	sport, err := models.ParseSport(req.Sport)
	if err != nil {
		return nil, apperr.Validation(apperr.CodeInvalidSport, "%v", err)
	}
	profile, err := a.profiles.ProfileFor(sport)
	if err != nil {
		return nil, apperr.Validation(apperr.CodeInvalidSport, "sport %s is not enabled", sport)
	}

	trade, err := normalizeTrade(profile, req)
	if err != nil {
		return nil, err
	}

	result := a.grader.Grade(trade)
	trade.ID = uuid.New()
	trade.UserID = userID
	trade.Status = models.TradeStatusProposed
	trade.Grade = result.Composite
	trade.Subscores = result.Subscores
	trade.IsDangerous = result.IsDangerous
	trade.Rationale = result.Rationale
	trade.Warnings = result.Warnings
	trade.CreatedAt = a.clock.Now().UTC()

	event, err := outbox.NewEvent(a.clock, outbox.EventTradeGraded, trade.ID, tradeEventPayload(trade))
	if err != nil {
		return nil, apperr.Internal("failed to build trade event", err)
	}
	if err := a.repo.CreateTrade(ctx, trade, event); err != nil {
		return nil, fmt.Errorf("failed to create trade: %w", err)
	}

	if a.metrics != nil {
		a.metrics.RecordTradeGraded(string(trade.Sport), trade.Grade, trade.IsDangerous)
	}
	log.Info().
		Str("trade_id", trade.ID.String()).
		Str("user_id", userID).
		Str("sport", string(trade.Sport)).
		Float64("grade", trade.Grade).
		Bool("dangerous", trade.IsDangerous).
		Msg("trade graded")

	return trade, nil
}

// AcceptTrade marks a proposal accepted, attaches its simulated standings
// impact when the simulator answers in time, and refreshes the user's score.
func (a *App) AcceptTrade(ctx context.Context, userID string, id uuid.UUID) (*models.Trade, error) {
	trade, err := a.proposedTrade(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	trade.TradeImpact = a.simulate(ctx, trade)
	if err := a.decide(ctx, trade, models.TradeStatusAccepted); err != nil {
		return nil, err
	}

	if a.scores != nil {
		if _, err := a.scores.Recompute(ctx, userID); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("failed to recompute user score after trade")
		}
	}
	return trade, nil
}

// RejectTrade marks a proposal rejected.
func (a *App) RejectTrade(ctx context.Context, userID string, id uuid.UUID) (*models.Trade, error) {
	trade, err := a.proposedTrade(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := a.decide(ctx, trade, models.TradeStatusRejected); err != nil {
		return nil, err
	}
	return trade, nil
}

// GetTrade returns one of the user's trades.
func (a *App) GetTrade(ctx context.Context, userID string, id uuid.UUID) (*models.Trade, error) {
	trade, err := a.repo.GetTrade(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}
	return trade, nil
}

// ListTrades returns the user's trades, newest first.
func (a *App) ListTrades(ctx context.Context, userID string, filter ListTradesFilter) ([]models.Trade, error) {
	if filter.Limit < 0 {
		return nil, apperr.Validation(apperr.CodeInvalidRequest, "limit cannot be negative")
	}
	trades, err := a.repo.ListTrades(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	return trades, nil
}

// TradesByIDs returns the requested trades in request order. Any id the
// user does not own is reported as not found.
func (a *App) TradesByIDs(ctx context.Context, userID string, ids []uuid.UUID) ([]models.Trade, error) {
	if len(ids) == 0 {
		return nil, apperr.Validation(apperr.CodeInvalidRequest, "at least one trade id is required")
	}
	trades, err := a.repo.GetTradesByIDs(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get trades: %w", err)
	}
	byID := make(map[uuid.UUID]models.Trade, len(trades))
	for _, t := range trades {
		byID[t.ID] = t
	}
	ordered := make([]models.Trade, 0, len(ids))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			return nil, apperr.NotFound()
		}
		ordered = append(ordered, t)
	}
	return ordered, nil
}

func (a *App) proposedTrade(ctx context.Context, userID string, id uuid.UUID) (*models.Trade, error) {
	trade, err := a.GetTrade(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if trade.Status != models.TradeStatusProposed {
		return nil, apperr.Precondition(apperr.CodeTradeDecided, "trade is already %s", trade.Status)
	}
	return trade, nil
}

func (a *App) decide(ctx context.Context, trade *models.Trade, status models.TradeStatus) error {
	now := a.clock.Now().UTC()
	trade.Status = status
	trade.DecidedAt = &now

	event, err := outbox.NewEvent(a.clock, outbox.EventTradeDecided, trade.ID, tradeEventPayload(trade))
	if err != nil {
		return apperr.Internal("failed to build trade event", err)
	}
	if err := a.repo.DecideTrade(ctx, trade, event); err != nil {
		return fmt.Errorf("failed to %s trade: %w", status, err)
	}

	if a.metrics != nil {
		a.metrics.RecordTradeDecision(string(status))
	}
	log.Info().
		Str("trade_id", trade.ID.String()).
		Str("status", string(status)).
		Bool("has_impact", trade.TradeImpact != nil).
		Msg("trade decided")
	return nil
}

// simulate returns nil when the simulator is missing, slow or failing.
func (a *App) simulate(ctx context.Context, trade *models.Trade) *models.TradeImpact {
	if a.simulator == nil {
		return nil
	}
	start := a.clock.Now()
	impact, err := a.simulator.ApplyTradeImpact(ctx, trade, nil)
	if a.metrics != nil {
		a.metrics.RecordSimulation(a.clock.Since(start), err)
	}
	if err != nil {
		log.Warn().
			Err(err).
			Str("trade_id", trade.ID.String()).
			Str("code", apperr.CodeSimulationError).
			Msg("standings simulation unavailable, accepting trade without impact")
		return nil
	}
	return impact
}

type tradeEvent struct {
	TradeID       string             `json:"trade_id"`
	UserID        string             `json:"user_id"`
	Sport         models.Sport       `json:"sport"`
	ProposingTeam string             `json:"proposing_team"`
	Partners      []string           `json:"partners"`
	Status        models.TradeStatus `json:"status"`
	Grade         float64            `json:"grade"`
	IsDangerous   bool               `json:"is_dangerous"`
	HasImpact     bool               `json:"has_impact"`
}

func tradeEventPayload(t *models.Trade) tradeEvent {
	return tradeEvent{
		TradeID:       t.ID.String(),
		UserID:        t.UserID,
		Sport:         t.Sport,
		ProposingTeam: t.ProposingTeam,
		Partners:      t.Partners(),
		Status:        t.Status,
		Grade:         t.Grade,
		IsDangerous:   t.IsDangerous,
		HasImpact:     t.TradeImpact != nil,
	}
}
