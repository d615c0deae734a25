package scoring

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/chisports/gmengine/go/internal/analytics"
	"github.com/chisports/gmengine/go/internal/apperr"
	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/outbox"
	"github.com/chisports/gmengine/go/internal/rpcutil"
)

type fakeRepo struct {
	grades []float64
	mocks  []MockSummary
	stored map[string]*models.UserScore
	events []outbox.OutboxEvent
	saves  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{stored: map[string]*models.UserScore{}}
}

func (f *fakeRepo) AcceptedTradeGrades(context.Context, string) ([]float64, error) {
	return f.grades, nil
}

func (f *fakeRepo) MockSummaries(context.Context, string) ([]MockSummary, error) {
	return append([]MockSummary(nil), f.mocks...), nil
}

func (f *fakeRepo) GetMockSummary(_ context.Context, _ string, id uuid.UUID) (*MockSummary, error) {
	for _, m := range f.mocks {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, apperr.NotFound()
}

func (f *fakeRepo) SetBestMockDraft(_ context.Context, _ string, id uuid.UUID) error {
	for i := range f.mocks {
		f.mocks[i].IsBest = f.mocks[i].ID == id
	}
	return nil
}

func (f *fakeRepo) GetUserScore(_ context.Context, userID string) (*models.UserScore, error) {
	s, ok := f.stored[userID]
	if !ok {
		return nil, apperr.NotFound()
	}
	return s, nil
}

func (f *fakeRepo) SaveUserScore(_ context.Context, s *models.UserScore, event outbox.OutboxEvent) error {
	f.saves++
	f.stored[s.UserID] = s
	f.events = append(f.events, event)
	return nil
}

func ptr(v float64) *float64 { return &v }

func completed(score float64) MockSummary {
	return MockSummary{ID: uuid.New(), Status: models.MockDraftStatusCompleted, MockScore: ptr(score)}
}

func newTestAggregator(repo *fakeRepo) *Aggregator {
	return NewAggregator(repo, DefaultWeights(), clockwork.NewFakeClockAt(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)))
}

func TestRecomputeCombinesTradeAndMock(t *testing.T) {
	repo := newFakeRepo()
	repo.grades = []float64{70, 90}
	repo.mocks = []MockSummary{completed(60)}
	a := newTestAggregator(repo)

	score, err := a.Recompute(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score.BestTradeScore == nil || *score.BestTradeScore != 80 {
		t.Fatalf("expected trade score 80, got %v", score.BestTradeScore)
	}
	if score.CombinedScore == nil || *score.CombinedScore != 72 {
		t.Fatalf("expected combined 72.0, got %v", score.CombinedScore)
	}
	if score.TradeCount != 2 || score.MockCount != 1 {
		t.Fatalf("expected 2 trades and 1 mock, got %d/%d", score.TradeCount, score.MockCount)
	}
	if len(repo.events) != 1 || repo.events[0].EventType != outbox.EventUserScoreUpdated {
		t.Fatalf("expected UserScoreUpdated event, got %+v", repo.events)
	}
	if repo.events[0].AggregateID != outbox.UserAggregateID("user-1") {
		t.Fatal("expected event keyed by user aggregate id")
	}
}

func TestRecomputeSingleSourcesAndNone(t *testing.T) {
	tests := []struct {
		name   string
		grades []float64
		mocks  []MockSummary
		want   *float64
	}{
		{name: "trades only", grades: []float64{64}, want: ptr(64)},
		{name: "mock only", mocks: []MockSummary{completed(55)}, want: ptr(55)},
		{name: "neither", want: nil},
		{
			name:  "reset and unfinished drafts ignored",
			mocks: []MockSummary{{ID: uuid.New(), Status: models.MockDraftStatusCompleted, IsReset: true, MockScore: ptr(99)}, {ID: uuid.New(), Status: models.MockDraftStatusInProgress}},
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			repo.grades = tt.grades
			repo.mocks = tt.mocks

			score, err := newTestAggregator(repo).Recompute(context.Background(), "user-1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			switch {
			case tt.want == nil && score.CombinedScore != nil:
				t.Fatalf("expected nil combined score, got %v", *score.CombinedScore)
			case tt.want != nil && (score.CombinedScore == nil || *score.CombinedScore != *tt.want):
				t.Fatalf("expected combined %v, got %v", *tt.want, score.CombinedScore)
			}
		})
	}
}

func TestSetBestMockDraftOverridesMax(t *testing.T) {
	repo := newFakeRepo()
	low, high := completed(50), completed(90)
	repo.mocks = []MockSummary{high, low}
	a := newTestAggregator(repo)
	ctx := context.Background()

	score, err := a.SetBestMockDraft(ctx, "user-1", low.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score.BestMockDraftScore == nil || *score.BestMockDraftScore != 50 {
		t.Fatalf("expected flagged draft score 50, got %v", score.BestMockDraftScore)
	}
	if score.BestMockDraftID == nil || *score.BestMockDraftID != low.ID {
		t.Fatalf("expected best id %s, got %v", low.ID, score.BestMockDraftID)
	}

	_, err = a.SetBestMockDraft(ctx, "user-1", low.ID)
	if apperr.CodeOf(err) != apperr.CodeAlreadyBest {
		t.Fatalf("expected already_best, got %v", err)
	}
}

func TestSetBestMockDraftRejectsIneligible(t *testing.T) {
	repo := newFakeRepo()
	reset := completed(70)
	reset.IsReset = true
	open := MockSummary{ID: uuid.New(), Status: models.MockDraftStatusInProgress}
	repo.mocks = []MockSummary{reset, open}
	a := newTestAggregator(repo)

	if _, err := a.SetBestMockDraft(context.Background(), "user-1", reset.ID); apperr.CodeOf(err) != apperr.CodeDraftReset {
		t.Fatalf("expected draft_reset, got %v", err)
	}
	if _, err := a.SetBestMockDraft(context.Background(), "user-1", open.ID); apperr.CodeOf(err) != apperr.CodeDraftNotDone {
		t.Fatalf("expected draft_not_completed, got %v", err)
	}
	if _, err := a.SetBestMockDraft(context.Background(), "user-1", uuid.New()); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if repo.saves != 0 {
		t.Fatal("expected no score saved")
	}
}

func TestGetUserScoreComputesWhenMissing(t *testing.T) {
	repo := newFakeRepo()
	repo.grades = []float64{80}
	a := newTestAggregator(repo)
	ctx := context.Background()

	first, err := a.GetUserScore(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := a.GetUserScore(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.saves != 1 || first != second {
		t.Fatalf("expected one computation then the stored snapshot, got %d saves", repo.saves)
	}
}

type stubAnalytics struct{ err error }

func (s stubAnalytics) GetAnalytics(context.Context, string) (*analytics.Analytics, error) {
	if s.err != nil {
		return nil, s.err
	}
	return analytics.Summarize(nil, nil), nil
}

func TestServiceRoundTrip(t *testing.T) {
	repo := newFakeRepo()
	repo.grades = []float64{80}
	repo.mocks = []MockSummary{completed(60)}
	mux := http.NewServeMux()
	NewService(newTestAggregator(repo), stubAnalytics{}).Register(mux, rpcutil.HandlerOptions()...)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := connect.NewClient[UserScoreRequest, UserScoreResponse](srv.Client(),
		srv.URL+rpcutil.Procedure(ServiceName, "GetUserScore"), rpcutil.ClientOptions()...)

	req := connect.NewRequest(&UserScoreRequest{})
	req.Header().Set(rpcutil.UserHeader, "user-1")
	res, err := client.CallUnary(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Msg.Score.CombinedScore == nil || *res.Msg.Score.CombinedScore != 72 {
		t.Fatalf("expected combined 72, got %+v", res.Msg.Score)
	}

	_, err = client.CallUnary(context.Background(), connect.NewRequest(&UserScoreRequest{}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Fatalf("expected invalid argument without user header, got %v", err)
	}
}

func TestServiceMapsAnalyticsErrors(t *testing.T) {
	mux := http.NewServeMux()
	NewService(newTestAggregator(newFakeRepo()), stubAnalytics{err: apperr.Internal("boom", errors.New("db down"))}).
		Register(mux, rpcutil.HandlerOptions()...)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := connect.NewClient[AnalyticsRequest, AnalyticsResponse](srv.Client(),
		srv.URL+rpcutil.Procedure(ServiceName, "GetAnalytics"), rpcutil.ClientOptions()...)
	req := connect.NewRequest(&AnalyticsRequest{})
	req.Header().Set(rpcutil.UserHeader, "user-1")
	_, err := client.CallUnary(context.Background(), req)
	if connect.CodeOf(err) != connect.CodeInternal {
		t.Fatalf("expected internal, got %v", err)
	}
}

func TestRecomputeKeepsUnroundedTradeAverage(t *testing.T) {
	repo := newFakeRepo()
	repo.grades = []float64{70, 71, 71}

	score, err := newTestAggregator(repo).Recompute(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score.BestTradeScore == nil || *score.BestTradeScore != 212.0/3 {
		t.Fatalf("expected raw average %v, got %v", 212.0/3, score.BestTradeScore)
	}
	if score.CombinedScore == nil || *score.CombinedScore != 70.7 {
		t.Fatalf("expected combined 70.7, got %v", score.CombinedScore)
	}
}

func TestNegativeScoreWeightsFallBackToDefaults(t *testing.T) {
	if err := (Weights{Trade: 1, Mock: -1}).Validate(); err == nil {
		t.Fatal("expected negative mock weight to be rejected")
	}
	if err := (Weights{}).Validate(); err == nil {
		t.Fatal("expected all-zero weights to be rejected")
	}

	repo := newFakeRepo()
	repo.grades = []float64{80}
	repo.mocks = []MockSummary{completed(60)}
	a := NewAggregator(repo, Weights{Trade: 1, Mock: -1}, clockwork.NewFakeClockAt(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)))

	score, err := a.Recompute(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score.CombinedScore == nil || *score.CombinedScore != 72 {
		t.Fatalf("expected default weighting (72), got %v", score.CombinedScore)
	}
}
