package scoring

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/chisports/gmengine/go/internal/analytics"
	"github.com/chisports/gmengine/go/internal/apperr"
	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/rpcutil"
)

const ServiceName = "gm.score.v1.ScoreService"

// ScoreApp defines what the service layer needs from the aggregator
type ScoreApp interface {
	GetUserScore(ctx context.Context, userID string) (*models.UserScore, error)
	Recompute(ctx context.Context, userID string) (*models.UserScore, error)
	SetBestMockDraft(ctx context.Context, userID string, id uuid.UUID) (*models.UserScore, error)
}

// AnalyticsApp builds the history dashboard.
type AnalyticsApp interface {
	GetAnalytics(ctx context.Context, userID string) (*analytics.Analytics, error)
}

type UserScoreRequest struct{}

type UserScoreResponse struct {
	Score *models.UserScore `json:"score"`
}

type SetBestMockDraftRequest struct {
	MockDraftID string `json:"mock_draft_id"`
}

type AnalyticsRequest struct{}

type AnalyticsResponse struct {
	Analytics *analytics.Analytics `json:"analytics"`
}

// Service implements the ScoreService Connect handlers
type Service struct {
	scores    ScoreApp
	analytics AnalyticsApp
}

func NewService(scores ScoreApp, analytics AnalyticsApp) *Service {
	return &Service{scores: scores, analytics: analytics}
}

// Register mounts every ScoreService procedure on mux.
func (s *Service) Register(mux *http.ServeMux, opts ...connect.HandlerOption) {
	mux.Handle(rpcutil.Procedure(ServiceName, "GetUserScore"), connect.NewUnaryHandler(rpcutil.Procedure(ServiceName, "GetUserScore"), s.GetUserScore, opts...))
	mux.Handle(rpcutil.Procedure(ServiceName, "RecomputeUserScore"), connect.NewUnaryHandler(rpcutil.Procedure(ServiceName, "RecomputeUserScore"), s.RecomputeUserScore, opts...))
	mux.Handle(rpcutil.Procedure(ServiceName, "SetBestMockDraft"), connect.NewUnaryHandler(rpcutil.Procedure(ServiceName, "SetBestMockDraft"), s.SetBestMockDraft, opts...))
	mux.Handle(rpcutil.Procedure(ServiceName, "GetAnalytics"), connect.NewUnaryHandler(rpcutil.Procedure(ServiceName, "GetAnalytics"), s.GetAnalytics, opts...))
}

// GetUserScore returns the caller's stored score
func (s *Service) GetUserScore(ctx context.Context, req *connect.Request[UserScoreRequest]) (*connect.Response[UserScoreResponse], error) {
	return s.score(ctx, req.Header(), s.scores.GetUserScore)
}

// RecomputeUserScore rebuilds the caller's score from history
func (s *Service) RecomputeUserScore(ctx context.Context, req *connect.Request[UserScoreRequest]) (*connect.Response[UserScoreResponse], error) {
	return s.score(ctx, req.Header(), s.scores.Recompute)
}

// SetBestMockDraft flags the caller's best of three
func (s *Service) SetBestMockDraft(ctx context.Context, req *connect.Request[SetBestMockDraftRequest]) (*connect.Response[UserScoreResponse], error) {
	userID, err := rpcutil.UserID(req.Header())
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	id, err := uuid.Parse(req.Msg.MockDraftID)
	if err != nil {
		return nil, apperr.ToConnect(apperr.Validation(apperr.CodeInvalidRequest, "invalid mock_draft_id: %v", err))
	}
	score, err := s.scores.SetBestMockDraft(ctx, userID, id)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&UserScoreResponse{Score: score}), nil
}

func (s *Service) GetAnalytics(ctx context.Context, req *connect.Request[AnalyticsRequest]) (*connect.Response[AnalyticsResponse], error) {
	userID, err := rpcutil.UserID(req.Header())
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	a, err := s.analytics.GetAnalytics(ctx, userID)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&AnalyticsResponse{Analytics: a}), nil
}

func (s *Service) score(ctx context.Context, h http.Header, fn func(context.Context, string) (*models.UserScore, error)) (*connect.Response[UserScoreResponse], error) {
	userID, err := rpcutil.UserID(h)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	score, err := fn(ctx, userID)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&UserScoreResponse{Score: score}), nil
}
