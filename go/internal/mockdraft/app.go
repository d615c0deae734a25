package mockdraft

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/chisports/gmengine/go/internal/apperr"
	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/outbox"
	"github.com/chisports/gmengine/go/internal/sports/base"
)

// MockDraftRepository defines what the app layer needs from the repository.
type MockDraftRepository interface {
	Creator
	GetMockDraft(ctx context.Context, userID string, id uuid.UUID) (*models.MockDraft, error)
	ListMockDrafts(ctx context.Context, userID string) ([]models.MockDraft, error)
	// SaveProgress writes the slots at changed and the draft header, provided
	// the stored draft is still on pick fromIndex and not reset.
	SaveProgress(ctx context.Context, d *models.MockDraft, fromIndex int, changed []int, events []outbox.OutboxEvent) error
	MarkReset(ctx context.Context, userID string, id uuid.UUID, event outbox.OutboxEvent) error
}

// ScoreRecomputer refreshes the user's GM score after a draft completes or resets.
type ScoreRecomputer interface {
	Recompute(ctx context.Context, userID string) (*models.UserScore, error)
}

// Metrics is the subset of the metrics recorder the mock draft app reports to.
type Metrics interface {
	RecordMockDraftStarted(sport string)
	RecordMockDraftCompleted(sport, letter string, score float64)
	RecordPersistAttempt(strategy string, err error)
}

// App runs mock drafts: one user drafting for one franchise while every
// other team is auto-picked.
type App struct {
	repo       MockDraftRepository
	profiles   base.ProfileSource
	data       DraftData
	strategy   AutoPickStrategy
	strategies []PersistStrategy
	scores     ScoreRecomputer
	metrics    Metrics
	clock      clockwork.Clock
}

// NewApp creates a mock draft App. A nil strategy uses best available with a
// three-spot need window; nil persisters use DefaultStrategies(repo).
// scores and metrics may be nil.
func NewApp(repo MockDraftRepository, profiles base.ProfileSource, data DraftData, strategy AutoPickStrategy, persisters []PersistStrategy, scores ScoreRecomputer, metrics Metrics, clock clockwork.Clock) *App {
	if strategy == nil {
		strategy = NewBestAvailableStrategy(3)
	}
	if len(persisters) == 0 {
		persisters = DefaultStrategies(repo)
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &App{
		repo:       repo,
		profiles:   profiles,
		data:       data,
		strategy:   strategy,
		strategies: persisters,
		scores:     scores,
		metrics:    metrics,
		clock:      clock,
	}
}

// StartMockDraft builds a new draft for franchise and auto-picks up to the
// user's first selection.
func (a *App) StartMockDraft(ctx context.Context, userID string, req StartMockDraftRequest) (*models.MockDraft, error) {
	sport, err := models.ParseSport(req.Sport)
	if err != nil {
		return nil, apperr.Validation(apperr.CodeInvalidSport, "%v", err)
	}
	profile, err := a.profiles.ProfileFor(sport)
	if err != nil {
		return nil, apperr.Validation(apperr.CodeInvalidSport, "sport %s is not enabled", sport)
	}

	now := a.clock.Now().UTC()
	if !profile.InOffseason(now) {
		return nil, apperr.Precondition(apperr.CodeNotOffseason,
			"%s mock drafts are only available during the offseason (%s)", sport, profile.Offseason)
	}

	franchise, ok := profile.ResolveTeam(req.Franchise)
	if !ok {
		return nil, apperr.Validation(apperr.CodeUnknownTeam, "unknown %s franchise %q", sport, req.Franchise)
	}
	year := req.DraftYear
	if year == 0 {
		year = now.Year()
	}
	if year < 0 {
		return nil, apperr.Validation(apperr.CodeInvalidRequest, "draft_year must be positive")
	}

	order, err := a.data.PickOrder(ctx, sport, year)
	if err != nil {
		return nil, apperr.Degraded(apperr.CodeDraftData, err)
	}
	slots, err := buildSlots(profile, order, franchise)
	if err != nil {
		return nil, err
	}

	board, err := a.data.ProspectBoard(ctx, sport, year)
	if err != nil {
		return nil, apperr.Degraded(apperr.CodeDraftData, err)
	}
	if len(board) < len(slots) {
		return nil, apperr.Degraded(apperr.CodeDraftData,
			fmt.Errorf("prospect board has %d prospects for %d picks", len(board), len(slots)))
	}

	needs := newNeedsCache(a.data, sport)
	d := &models.MockDraft{
		ID:         uuid.New(),
		UserID:     userID,
		Franchise:  franchise,
		Sport:      sport,
		DraftYear:  year,
		TotalPicks: len(slots),
		Status:     models.MockDraftStatusInProgress,
		TeamNeeds:  needs.get(ctx, franchise),
		Slots:      slots,
		Board:      board,
		CreatedAt:  now,
	}
	d.Slots[0].IsCurrent = true

	if _, err := a.autoFill(ctx, d, needs); err != nil {
		return nil, err
	}

	event, err := outbox.NewEvent(a.clock, outbox.EventMockDraftStarted, d.ID, newDraftPayload(d))
	if err != nil {
		return nil, apperr.Internal("failed to build mock draft event", err)
	}
	if err := a.persistNew(ctx, d, event); err != nil {
		return nil, err
	}

	if a.metrics != nil {
		a.metrics.RecordMockDraftStarted(string(sport))
	}
	log.Info().
		Str("draft_id", d.ID.String()).
		Str("user_id", userID).
		Str("franchise", franchise).
		Int("draft_year", year).
		Int("total_picks", d.TotalPicks).
		Int("current_pick_index", d.CurrentPickIndex).
		Msg("mock draft started")
	return d, nil
}

// AdvanceMockDraft records the user's selection at pickNumber and auto-picks
// until the user is on the clock again or the draft ends.
func (a *App) AdvanceMockDraft(ctx context.Context, userID string, req AdvanceMockDraftRequest) (*models.MockDraft, error) {
	id, err := uuid.Parse(req.DraftID)
	if err != nil {
		return nil, apperr.Validation(apperr.CodeInvalidRequest, "invalid draft_id")
	}
	d, err := a.GetMockDraft(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := checkOpen(d); err != nil {
		return nil, err
	}

	slot := d.CurrentSlot()
	if slot == nil || slot.PickNumber != req.PickNumber || !slot.IsUserPick {
		return nil, apperr.Precondition(apperr.CodeNotCurrentPick,
			"pick %d is not the user's current pick", req.PickNumber)
	}
	prospect, ok := findProspect(d.Available(), req.ProspectID)
	if !ok {
		return nil, apperr.Validation(apperr.CodeProspectTaken,
			"prospect %q is not on the board or already selected", req.ProspectID)
	}

	fromIndex := d.CurrentPickIndex
	changed := []int{fromIndex}
	a.selectCurrent(d, prospect)

	filled, err := a.autoFill(ctx, d, newNeedsCache(a.data, d.Sport))
	if err != nil {
		return nil, err
	}
	changed = append(changed, filled...)
	if d.CurrentSlot() != nil {
		changed = append(changed, d.CurrentPickIndex)
	}

	completed := d.CurrentPickIndex >= d.TotalPicks
	if completed {
		a.finish(d)
	}

	events, err := a.progressEvents(d, changed, completed)
	if err != nil {
		return nil, err
	}
	if err := a.repo.SaveProgress(ctx, d, fromIndex, changed, events); err != nil {
		return nil, fmt.Errorf("failed to save mock draft progress: %w", err)
	}

	log.Info().
		Str("draft_id", d.ID.String()).
		Int("pick_number", req.PickNumber).
		Str("prospect_id", prospect.ID).
		Int("auto_picks", len(filled)).
		Bool("completed", completed).
		Msg("mock draft advanced")

	if completed {
		a.afterCompletion(ctx, d)
	}
	return d, nil
}

// CompleteMockDraft returns the stored scores of a finished draft. Scores
// are never recomputed.
func (a *App) CompleteMockDraft(ctx context.Context, userID string, id uuid.UUID) (*models.MockDraftScores, error) {
	d, err := a.GetMockDraft(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if d.Status != models.MockDraftStatusCompleted || d.Scores == nil {
		return nil, apperr.Precondition(apperr.CodeDraftNotDone,
			"mock draft is on pick %d of %d", d.CurrentPickIndex+1, d.TotalPicks)
	}
	return d.Scores, nil
}

// ResetMockDraft tombstones a draft. Reset drafts reject further picks and
// no longer count toward the user's score.
func (a *App) ResetMockDraft(ctx context.Context, userID string, id uuid.UUID) (*models.MockDraft, error) {
	d, err := a.GetMockDraft(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if d.IsReset {
		return d, nil
	}
	d.IsReset = true
	d.IsBest = false

	event, err := outbox.NewEvent(a.clock, outbox.EventMockDraftReset, d.ID, newDraftPayload(d))
	if err != nil {
		return nil, apperr.Internal("failed to build mock draft event", err)
	}
	if err := a.repo.MarkReset(ctx, userID, id, event); err != nil {
		return nil, fmt.Errorf("failed to reset mock draft: %w", err)
	}
	log.Info().Str("draft_id", id.String()).Str("user_id", userID).Msg("mock draft reset")

	a.recompute(ctx, userID)
	return d, nil
}

// GetMockDraft returns one of the user's drafts as stored.
func (a *App) GetMockDraft(ctx context.Context, userID string, id uuid.UUID) (*models.MockDraft, error) {
	d, err := a.repo.GetMockDraft(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get mock draft: %w", err)
	}
	return d, nil
}

// ListMockDrafts returns the user's drafts, newest first.
func (a *App) ListMockDrafts(ctx context.Context, userID string) ([]models.MockDraft, error) {
	drafts, err := a.repo.ListMockDrafts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list mock drafts: %w", err)
	}
	return drafts, nil
}

// buildSlots turns the external order into slots, checking the pick numbers
// run 1..n without gaps and every owner is a known team.
func buildSlots(profile *base.Profile, order []models.DraftOrderEntry, franchise string) ([]models.DraftPickSlot, error) {
	if len(order) == 0 {
		return nil, apperr.Degraded(apperr.CodeInvalidOrder, errors.New("draft order is empty"))
	}
	sorted := make([]models.DraftOrderEntry, len(order))
	copy(sorted, order)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PickNumber < sorted[j].PickNumber })

	slots := make([]models.DraftPickSlot, len(sorted))
	userPicks := 0
	for i, e := range sorted {
		if e.PickNumber != i+1 {
			return nil, apperr.Degraded(apperr.CodeInvalidOrder,
				fmt.Errorf("draft order expected pick %d, got %d", i+1, e.PickNumber))
		}
		if e.Round < 1 || (i > 0 && e.Round < sorted[i-1].Round) {
			return nil, apperr.Degraded(apperr.CodeInvalidOrder,
				fmt.Errorf("pick %d has round %d out of sequence", e.PickNumber, e.Round))
		}
		team, ok := profile.ResolveTeam(e.TeamKey)
		if !ok {
			return nil, apperr.Degraded(apperr.CodeInvalidOrder,
				fmt.Errorf("pick %d belongs to unknown team %q", e.PickNumber, e.TeamKey))
		}
		slots[i] = models.DraftPickSlot{
			PickNumber: e.PickNumber,
			Round:      e.Round,
			OwningTeam: team,
			IsUserPick: team == franchise,
		}
		if slots[i].IsUserPick {
			userPicks++
		}
	}
	if userPicks == 0 {
		return nil, apperr.Validation(apperr.CodeNoUserPicks, "%s holds no picks in this draft", strings.ToUpper(franchise))
	}
	return slots, nil
}

// autoFill picks for other teams until the user is on the clock or the
// board of slots is exhausted. It returns the slot indexes it filled.
func (a *App) autoFill(ctx context.Context, d *models.MockDraft, needs *needsCache) ([]int, error) {
	var filled []int
	for {
		slot := d.CurrentSlot()
		if slot == nil || slot.IsUserPick {
			return filled, nil
		}
		p, err := a.strategy.SelectProspect(ctx, *slot, d.Available(), needs.get(ctx, slot.OwningTeam))
		if err != nil {
			if errors.Is(err, ErrBoardExhausted) {
				return nil, apperr.Degraded(apperr.CodeDraftData, err)
			}
			return nil, fmt.Errorf("failed to auto-pick for pick %d: %w", slot.PickNumber, err)
		}
		filled = append(filled, d.CurrentPickIndex)
		a.selectCurrent(d, p)
	}
}

// selectCurrent fills the current slot and moves the clock to the next one.
func (a *App) selectCurrent(d *models.MockDraft, p models.Prospect) {
	slot := d.CurrentSlot()
	slot.Selected = &p
	slot.IsCurrent = false
	d.CurrentPickIndex++
	if next := d.CurrentSlot(); next != nil {
		next.IsCurrent = true
	}
}

func (a *App) finish(d *models.MockDraft) {
	teams := d.TotalPicks
	if profile, err := a.profiles.ProfileFor(d.Sport); err == nil {
		teams = len(profile.Teams)
	}
	now := a.clock.Now().UTC()
	d.Status = models.MockDraftStatusCompleted
	d.CompletedAt = &now
	d.Scores = ComputeScores(d, teams)
}

func (a *App) afterCompletion(ctx context.Context, d *models.MockDraft) {
	if a.metrics != nil {
		a.metrics.RecordMockDraftCompleted(string(d.Sport), d.Scores.LetterGrade, d.Scores.MockScore)
	}
	log.Info().
		Str("draft_id", d.ID.String()).
		Float64("mock_score", d.Scores.MockScore).
		Str("letter_grade", d.Scores.LetterGrade).
		Msg("mock draft completed")
	a.recompute(ctx, d.UserID)
}

func (a *App) recompute(ctx context.Context, userID string) {
	if a.scores == nil {
		return
	}
	if _, err := a.scores.Recompute(ctx, userID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to recompute user score after mock draft")
	}
}

func (a *App) progressEvents(d *models.MockDraft, changed []int, completed bool) ([]outbox.OutboxEvent, error) {
	picks := make([]models.DraftPickSlot, 0, len(changed))
	for _, i := range changed {
		picks = append(picks, d.Slots[i])
	}
	picked, err := outbox.NewEvent(a.clock, outbox.EventMockDraftPickMade, d.ID, pickMadePayload{
		DraftID:          d.ID.String(),
		UserID:           d.UserID,
		Picks:            picks,
		CurrentPickIndex: d.CurrentPickIndex,
		TotalPicks:       d.TotalPicks,
	})
	if err != nil {
		return nil, apperr.Internal("failed to build mock draft event", err)
	}
	events := []outbox.OutboxEvent{picked}
	if completed {
		done, err := outbox.NewEvent(a.clock, outbox.EventMockDraftCompleted, d.ID, newDraftPayload(d))
		if err != nil {
			return nil, apperr.Internal("failed to build mock draft event", err)
		}
		events = append(events, done)
	}
	return events, nil
}

func checkOpen(d *models.MockDraft) error {
	if d.IsReset {
		return apperr.Precondition(apperr.CodeDraftReset, "mock draft was reset")
	}
	if d.Status == models.MockDraftStatusCompleted {
		return apperr.Precondition(apperr.CodeDraftCompleted, "mock draft is already completed")
	}
	return nil
}

func findProspect(available []models.Prospect, id string) (models.Prospect, bool) {
	for _, p := range available {
		if p.ID == id {
			return p, true
		}
	}
	return models.Prospect{}, false
}

// needsCache memoizes team needs for one request. A failed lookup is cached
// as no needs so the auto-picker falls back to best available.
type needsCache struct {
	data  DraftData
	sport models.Sport
	byKey map[string][]string
}

func newNeedsCache(data DraftData, sport models.Sport) *needsCache {
	return &needsCache{data: data, sport: sport, byKey: make(map[string][]string)}
}

func (c *needsCache) get(ctx context.Context, team string) []string {
	if needs, ok := c.byKey[team]; ok {
		return needs
	}
	needs, err := c.data.TeamNeeds(ctx, c.sport, team)
	if err != nil {
		log.Warn().Err(err).Str("team", team).Msg("team needs unavailable, drafting best available")
		needs = nil
	}
	for i := range needs {
		needs[i] = strings.ToUpper(strings.TrimSpace(needs[i]))
	}
	c.byKey[team] = needs
	return needs
}
