package standings

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"
	"github.com/cenkalti/backoff/v4"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/valuation"
)

// Simulator turns a trade into asset changes, runs one season simulation
// and reports standings deltas for every participant.
type Simulator struct {
	client   SeasonSimClient
	valuator *valuation.Valuator
	cfg      Config
	clock    clockwork.Clock
}

func NewSimulator(client SeasonSimClient, valuator *valuation.Valuator, cfg Config, clock clockwork.Clock) *Simulator {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Simulator{client: client, valuator: valuator, cfg: cfg, clock: clock}
}

// ApplyTradeImpact simulates trade within the configured time budget. A
// non-nil baseline replaces the simulator's own baseline standings.
func (s *Simulator) ApplyTradeImpact(ctx context.Context, trade *models.Trade, baseline *models.SeasonBaseline) (*models.TradeImpact, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	now := s.clock.Now()
	req := &SimulateSeasonRequest{
		Sport:   trade.Sport,
		Season:  now.Year(),
		TeamKey: trade.ProposingTeam,
		Changes: s.assetChanges(trade, now.Year()),
	}

	res, err := s.simulateWithRetry(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("season simulation failed: %w", err)
	}

	before := indexStandings(res.Baseline)
	if baseline != nil && len(baseline.Teams) > 0 {
		before = baseline.Teams
	}
	after := indexStandings(res.Modified)

	delta := func(team string) models.TeamDelta {
		return models.TeamDelta{
			PowerRatingDelta: after[team].PowerRating - before[team].PowerRating,
			WinsDelta:        after[team].Wins - before[team].Wins,
		}
	}

	own := delta(trade.ProposingTeam)
	impact := &models.TradeImpact{
		PowerRatingDelta:   own.PowerRatingDelta,
		WinsDelta:          own.WinsDelta,
		TradePartnerDeltas: make(map[string]models.TeamDelta, 2),
		SimulatedAt:        now.UTC(),
	}
	for _, partner := range trade.Partners() {
		impact.TradePartnerDeltas[partner] = delta(partner)
	}
	return impact, nil
}

func (s *Simulator) assetChanges(trade *models.Trade, year int) []AssetChange {
	var changes []AssetChange
	for _, side := range trade.Sides {
		for _, ta := range side.Outgoing {
			value := s.valuator.PresentValue(ta.Asset, trade.Sport, year)
			var position string
			if ta.Asset.Kind == models.AssetKindPlayer && ta.Asset.Player != nil {
				position = ta.Asset.Player.Position
			}
			change := AssetChange{AssetKey: ta.Asset.Key(), Label: ta.Asset.Label(), Position: position, Value: value}

			out := change
			out.TeamKey, out.Direction = side.TeamKey, DirectionOut
			in := change
			in.TeamKey, in.Direction = ta.ToTeam, DirectionIn
			changes = append(changes, out, in)
		}
	}
	return changes
}

func (s *Simulator) simulateWithRetry(ctx context.Context, req *SimulateSeasonRequest) (*SimulateSeasonResponse, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.cfg.InitialBackoff
	bo.MaxElapsedTime = s.cfg.Timeout
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(s.cfg.MaxRetries)), ctx)

	attempt := 0
	var res *SimulateSeasonResponse
	err := backoff.Retry(func() error {
		attempt++
		var err error
		res, err = s.client.SimulateSeason(ctx, req)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		log.Warn().Err(err).Int("attempt", attempt).Str("team", req.TeamKey).Msg("season simulation retry")
		return err
	}, policy)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			return nil, fmt.Errorf("%w after %d attempts: %v", ctxErr, attempt, err)
		}
		return nil, err
	}
	return res, nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	switch connect.CodeOf(err) {
	case connect.CodeInvalidArgument, connect.CodeNotFound, connect.CodeFailedPrecondition,
		connect.CodeUnimplemented, connect.CodePermissionDenied, connect.CodeUnauthenticated:
		return false
	}
	return true
}

func indexStandings(rows []models.TeamStanding) map[string]models.TeamStanding {
	out := make(map[string]models.TeamStanding, len(rows))
	for _, r := range rows {
		out[r.TeamKey] = r
	}
	return out
}
