package mockdraft

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/chisports/gmengine/go/internal/apperr"
	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/outbox"
	"github.com/chisports/gmengine/go/internal/sports/base"
	"github.com/chisports/gmengine/go/internal/sports/nfl"
)

type fakeData struct {
	order []models.DraftOrderEntry
	board []models.Prospect
	needs map[string][]string
	calls int
}

func newFakeData() *fakeData {
	profile := nfl.Profile()
	var order []models.DraftOrderEntry
	for round := 1; round <= profile.Rounds; round++ {
		for _, team := range profile.Teams {
			order = append(order, models.DraftOrderEntry{PickNumber: len(order) + 1, Round: round, TeamKey: team.Key})
		}
	}
	positions := []string{"QB", "EDGE", "WR", "CB", "OT", "RB", "S", "LB"}
	risks := []models.RiskTag{models.RiskLow, models.RiskMedium, models.RiskHigh}
	var board []models.Prospect
	for i := 1; i <= 300; i++ {
		board = append(board, models.Prospect{
			ID:            fmt.Sprintf("p%03d", i),
			Name:          fmt.Sprintf("Prospect %d", i),
			Position:      positions[i%len(positions)],
			ConsensusRank: i,
			Grade:         95 - float64(i)/5,
			Risk:          risks[i%len(risks)],
		})
	}
	return &fakeData{order: order, board: board, needs: map[string][]string{"chi": {"edge", "wr"}}}
}

func (f *fakeData) PickOrder(context.Context, models.Sport, int) ([]models.DraftOrderEntry, error) {
	f.calls++
	return f.order, nil
}

func (f *fakeData) ProspectBoard(context.Context, models.Sport, int) ([]models.Prospect, error) {
	f.calls++
	return f.board, nil
}

func (f *fakeData) TeamNeeds(_ context.Context, _ models.Sport, team string) ([]string, error) {
	f.calls++
	return append([]string(nil), f.needs[team]...), nil
}

type fakeRepo struct {
	drafts        map[uuid.UUID]models.MockDraft
	events        []outbox.OutboxEvent
	failures      []error
	procedureErr  error
	insertErr     error
	procedureUsed int
	insertUsed    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{drafts: map[uuid.UUID]models.MockDraft{}}
}

func cloneDraft(d *models.MockDraft) models.MockDraft {
	c := *d
	c.Slots = append([]models.DraftPickSlot(nil), d.Slots...)
	c.Board = append([]models.Prospect(nil), d.Board...)
	return c
}

func (f *fakeRepo) CreateViaProcedure(_ context.Context, d *models.MockDraft, event outbox.OutboxEvent) error {
	if f.procedureErr != nil {
		return f.procedureErr
	}
	f.procedureUsed++
	f.drafts[d.ID] = cloneDraft(d)
	f.events = append(f.events, event)
	return nil
}

func (f *fakeRepo) CreateViaInsert(_ context.Context, d *models.MockDraft, event outbox.OutboxEvent) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.insertUsed++
	f.drafts[d.ID] = cloneDraft(d)
	f.events = append(f.events, event)
	return nil
}

func (f *fakeRepo) LogCreateFailure(_ context.Context, _ *models.MockDraft, cause error) error {
	f.failures = append(f.failures, cause)
	return nil
}

func (f *fakeRepo) GetMockDraft(_ context.Context, userID string, id uuid.UUID) (*models.MockDraft, error) {
	d, ok := f.drafts[id]
	if !ok || d.UserID != userID {
		return nil, apperr.NotFound()
	}
	c := cloneDraft(&d)
	return &c, nil
}

func (f *fakeRepo) ListMockDrafts(_ context.Context, userID string) ([]models.MockDraft, error) {
	var out []models.MockDraft
	for _, d := range f.drafts {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeRepo) SaveProgress(_ context.Context, d *models.MockDraft, fromIndex int, _ []int, events []outbox.OutboxEvent) error {
	stored := f.drafts[d.ID]
	if stored.CurrentPickIndex != fromIndex || stored.IsReset {
		return apperr.Precondition(apperr.CodeNotCurrentPick, "mock draft changed since it was read")
	}
	f.drafts[d.ID] = cloneDraft(d)
	f.events = append(f.events, events...)
	return nil
}

func (f *fakeRepo) MarkReset(_ context.Context, userID string, id uuid.UUID, event outbox.OutboxEvent) error {
	d, ok := f.drafts[id]
	if !ok || d.UserID != userID {
		return apperr.NotFound()
	}
	d.IsReset = true
	d.IsBest = false
	f.drafts[id] = d
	f.events = append(f.events, event)
	return nil
}

type fakeScores struct{ calls []string }

func (f *fakeScores) Recompute(_ context.Context, userID string) (*models.UserScore, error) {
	f.calls = append(f.calls, userID)
	return &models.UserScore{UserID: userID}, nil
}

type fakeMetrics struct {
	started   int
	completed []string
	attempts  []string
}

func (m *fakeMetrics) RecordMockDraftStarted(string) { m.started++ }
func (m *fakeMetrics) RecordMockDraftCompleted(_, letter string, _ float64) {
	m.completed = append(m.completed, letter)
}
func (m *fakeMetrics) RecordPersistAttempt(strategy string, err error) {
	if err != nil {
		strategy += ":failed"
	}
	m.attempts = append(m.attempts, strategy)
}

type fixture struct {
	app     *App
	repo    *fakeRepo
	data    *fakeData
	scores  *fakeScores
	metrics *fakeMetrics
}

var offseasonDay = time.Date(2026, 4, 1, 15, 0, 0, 0, time.UTC)

func newFixture(now time.Time) fixture {
	repo := newFakeRepo()
	data := newFakeData()
	scores := &fakeScores{}
	metrics := &fakeMetrics{}
	profiles := base.StaticProfiles{models.SportNFL: nfl.Profile()}
	app := NewApp(repo, profiles, data, nil, nil, scores, metrics, clockwork.NewFakeClockAt(now))
	return fixture{app: app, repo: repo, data: data, scores: scores, metrics: metrics}
}

func bearsRequest() StartMockDraftRequest {
	return StartMockDraftRequest{Franchise: "Bears", Sport: "NFL", DraftYear: 2026}
}

func TestStartMockDraftBuildsFullOrder(t *testing.T) {
	f := newFixture(offseasonDay)

	d, err := f.app.StartMockDraft(context.Background(), "user-1", bearsRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.TotalPicks != 224 || len(d.Slots) != 224 {
		t.Fatalf("expected 224 picks, got %d/%d", d.TotalPicks, len(d.Slots))
	}
	current := 0
	for i, s := range d.Slots {
		if s.PickNumber != i+1 {
			t.Fatalf("expected pick %d at index %d, got %d", i+1, i, s.PickNumber)
		}
		if s.IsCurrent {
			current++
		}
	}
	if current != 1 {
		t.Fatalf("expected exactly one current slot, got %d", current)
	}

	// chi is the 21st team in the order, so picks 1-20 are auto-filled.
	if d.CurrentPickIndex != 20 {
		t.Fatalf("expected current pick index 20, got %d", d.CurrentPickIndex)
	}
	slot := d.CurrentSlot()
	if !slot.IsUserPick || slot.OwningTeam != "chi" || !slot.IsCurrent {
		t.Fatalf("expected chi on the clock, got %+v", slot)
	}
	for _, s := range d.Slots[:20] {
		if s.Selected == nil {
			t.Fatalf("expected pick %d auto-filled", s.PickNumber)
		}
	}
	if len(d.UserSlots()) != 7 {
		t.Fatalf("expected 7 user picks, got %d", len(d.UserSlots()))
	}
	if diff := cmp.Diff([]string{"EDGE", "WR"}, d.TeamNeeds); diff != "" {
		t.Fatalf("team needs mismatch (-want +got):\n%s", diff)
	}
	if len(f.repo.events) != 1 || f.repo.events[0].EventType != outbox.EventMockDraftStarted {
		t.Fatalf("expected one MockDraftStarted event, got %+v", f.repo.events)
	}
	if f.metrics.started != 1 {
		t.Fatalf("expected started metric, got %d", f.metrics.started)
	}
}

func TestStartMockDraftOutsideOffseason(t *testing.T) {
	f := newFixture(time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC))

	_, err := f.app.StartMockDraft(context.Background(), "user-1", bearsRequest())
	if apperr.CodeOf(err) != apperr.CodeNotOffseason {
		t.Fatalf("expected not_offseason, got %v", err)
	}
	if apperr.KindOf(err) != apperr.KindPrecondition {
		t.Fatalf("expected precondition, got %v", apperr.KindOf(err))
	}
	if len(f.repo.drafts) != 0 || len(f.repo.failures) != 0 || len(f.repo.events) != 0 {
		t.Fatal("expected nothing persisted")
	}
	if f.data.calls != 0 {
		t.Fatalf("expected no draft data lookups, got %d", f.data.calls)
	}
}

func TestStartMockDraftRejectsBadOrder(t *testing.T) {
	f := newFixture(offseasonDay)
	f.data.order = append(f.data.order[:5:5], f.data.order[6:]...)

	_, err := f.app.StartMockDraft(context.Background(), "user-1", bearsRequest())
	if apperr.CodeOf(err) != apperr.CodeInvalidOrder {
		t.Fatalf("expected invalid_pick_order, got %v", err)
	}
	if len(f.repo.drafts) != 0 {
		t.Fatal("expected nothing persisted")
	}
}

func TestStartMockDraftRequiresUserPicks(t *testing.T) {
	f := newFixture(offseasonDay)
	f.data.order = []models.DraftOrderEntry{
		{PickNumber: 1, Round: 1, TeamKey: "buf"},
		{PickNumber: 2, Round: 1, TeamKey: "mia"},
	}

	_, err := f.app.StartMockDraft(context.Background(), "user-1", bearsRequest())
	if apperr.CodeOf(err) != apperr.CodeNoUserPicks {
		t.Fatalf("expected no_user_picks, got %v", err)
	}
}

func TestAdvanceMockDraftToCompletion(t *testing.T) {
	f := newFixture(offseasonDay)
	ctx := context.Background()

	d, err := f.app.StartMockDraft(ctx, "user-1", bearsRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	userPicks := 0
	for d.Status == models.MockDraftStatusInProgress {
		slot := d.CurrentSlot()
		d, err = f.app.AdvanceMockDraft(ctx, "user-1", AdvanceMockDraftRequest{
			DraftID:    d.ID.String(),
			PickNumber: slot.PickNumber,
			ProspectID: d.Available()[0].ID,
		})
		if err != nil {
			t.Fatalf("unexpected error on pick %d: %v", slot.PickNumber, err)
		}
		userPicks++
	}

	if userPicks != 7 {
		t.Fatalf("expected 7 user picks, got %d", userPicks)
	}
	if d.CurrentPickIndex != d.TotalPicks || d.CompletedAt == nil || d.Scores == nil {
		t.Fatalf("expected completed draft with scores, got %+v", d)
	}
	for _, s := range d.Slots {
		if s.Selected == nil || s.IsCurrent {
			t.Fatalf("expected every pick filled and none current, got %+v", s)
		}
	}
	last := f.repo.events[len(f.repo.events)-1]
	if last.EventType != outbox.EventMockDraftCompleted {
		t.Fatalf("expected MockDraftCompleted last, got %s", last.EventType)
	}
	if len(f.scores.calls) != 1 || len(f.metrics.completed) != 1 {
		t.Fatalf("expected one recompute and one completion metric, got %v %v", f.scores.calls, f.metrics.completed)
	}

	first, err := f.app.CompleteMockDraft(ctx, "user-1", d.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.app.CompleteMockDraft(ctx, "user-1", d.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(d.Scores, first); diff != "" {
		t.Fatalf("stored scores mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("complete is not idempotent (-first +second):\n%s", diff)
	}

	_, err = f.app.AdvanceMockDraft(ctx, "user-1", AdvanceMockDraftRequest{DraftID: d.ID.String(), PickNumber: 224, ProspectID: "p300"})
	if apperr.CodeOf(err) != apperr.CodeDraftCompleted {
		t.Fatalf("expected draft_completed, got %v", err)
	}
}

func TestAdvanceMockDraftRejectsBadSelections(t *testing.T) {
	f := newFixture(offseasonDay)
	ctx := context.Background()

	d, err := f.app.StartMockDraft(ctx, "user-1", bearsRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pick := d.CurrentSlot().PickNumber

	_, err = f.app.AdvanceMockDraft(ctx, "user-1", AdvanceMockDraftRequest{DraftID: d.ID.String(), PickNumber: pick + 1, ProspectID: "p250"})
	if apperr.CodeOf(err) != apperr.CodeNotCurrentPick {
		t.Fatalf("expected not_current_pick, got %v", err)
	}

	taken := d.Slots[0].Selected.ID
	_, err = f.app.AdvanceMockDraft(ctx, "user-1", AdvanceMockDraftRequest{DraftID: d.ID.String(), PickNumber: pick, ProspectID: taken})
	if apperr.CodeOf(err) != apperr.CodeProspectTaken {
		t.Fatalf("expected prospect_unavailable, got %v", err)
	}

	_, err = f.app.AdvanceMockDraft(ctx, "user-2", AdvanceMockDraftRequest{DraftID: d.ID.String(), PickNumber: pick, ProspectID: "p250"})
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not found for another user, got %v", err)
	}
}

func TestResetMockDraftRejectsLaterPicks(t *testing.T) {
	f := newFixture(offseasonDay)
	ctx := context.Background()

	d, err := f.app.StartMockDraft(ctx, "user-1", bearsRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reset, err := f.app.ResetMockDraft(ctx, "user-1", d.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reset.IsReset {
		t.Fatal("expected reset flag")
	}

	_, err = f.app.AdvanceMockDraft(ctx, "user-1", AdvanceMockDraftRequest{
		DraftID: d.ID.String(), PickNumber: d.CurrentSlot().PickNumber, ProspectID: "p250",
	})
	if apperr.CodeOf(err) != apperr.CodeDraftReset {
		t.Fatalf("expected draft_reset, got %v", err)
	}
	if len(f.scores.calls) != 1 {
		t.Fatalf("expected recompute after reset, got %v", f.scores.calls)
	}
}

func TestCompleteMockDraftBeforeEnd(t *testing.T) {
	f := newFixture(offseasonDay)
	ctx := context.Background()

	d, err := f.app.StartMockDraft(ctx, "user-1", bearsRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = f.app.CompleteMockDraft(ctx, "user-1", d.ID)
	if apperr.CodeOf(err) != apperr.CodeDraftNotDone {
		t.Fatalf("expected draft_not_completed, got %v", err)
	}
}

func TestStartMockDraftFallsBackToDirectInsert(t *testing.T) {
	f := newFixture(offseasonDay)
	f.repo.procedureErr = errors.New("function create_mock_draft does not exist")

	d, err := f.app.StartMockDraft(context.Background(), "user-1", bearsRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := f.repo.drafts[d.ID]; !ok || f.repo.insertUsed != 1 {
		t.Fatal("expected draft saved by direct insert")
	}
	if diff := cmp.Diff([]string{"stored_procedure:failed", "direct_insert"}, f.metrics.attempts); diff != "" {
		t.Fatalf("attempts mismatch (-want +got):\n%s", diff)
	}
}

func TestStartMockDraftLogsWhenEveryStrategyFails(t *testing.T) {
	f := newFixture(offseasonDay)
	f.repo.procedureErr = errors.New("procedure failed")
	f.repo.insertErr = errors.New("insert failed")

	_, err := f.app.StartMockDraft(context.Background(), "user-1", bearsRequest())
	if apperr.KindOf(err) != apperr.KindInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
	if len(f.repo.drafts) != 0 {
		t.Fatal("expected no draft saved")
	}
	if len(f.repo.failures) != 1 {
		t.Fatalf("expected one error row, got %d", len(f.repo.failures))
	}
	if diff := cmp.Diff([]string{"stored_procedure:failed", "direct_insert:failed", "error_log:failed"}, f.metrics.attempts); diff != "" {
		t.Fatalf("attempts mismatch (-want +got):\n%s", diff)
	}
}
