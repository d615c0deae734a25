package mockdraft

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/chisports/gmengine/go/internal/apperr"
	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/rpcutil"
)

const ServiceName = "gm.mockdraft.v1.MockDraftService"

// MockDraftApp defines what the service layer needs from the mock draft application
type MockDraftApp interface {
	StartMockDraft(ctx context.Context, userID string, req StartMockDraftRequest) (*models.MockDraft, error)
	AdvanceMockDraft(ctx context.Context, userID string, req AdvanceMockDraftRequest) (*models.MockDraft, error)
	CompleteMockDraft(ctx context.Context, userID string, id uuid.UUID) (*models.MockDraftScores, error)
	ResetMockDraft(ctx context.Context, userID string, id uuid.UUID) (*models.MockDraft, error)
	GetMockDraft(ctx context.Context, userID string, id uuid.UUID) (*models.MockDraft, error)
	ListMockDrafts(ctx context.Context, userID string) ([]models.MockDraft, error)
}

// Service implements the MockDraftService Connect handlers
type Service struct {
	app MockDraftApp
}

func NewService(app MockDraftApp) *Service {
	return &Service{app: app}
}

// Register mounts every MockDraftService procedure on mux.
func (s *Service) Register(mux *http.ServeMux, opts ...connect.HandlerOption) {
	mux.Handle(rpcutil.Procedure(ServiceName, "StartMockDraft"), connect.NewUnaryHandler(rpcutil.Procedure(ServiceName, "StartMockDraft"), s.StartMockDraft, opts...))
	mux.Handle(rpcutil.Procedure(ServiceName, "AdvanceMockDraft"), connect.NewUnaryHandler(rpcutil.Procedure(ServiceName, "AdvanceMockDraft"), s.AdvanceMockDraft, opts...))
	mux.Handle(rpcutil.Procedure(ServiceName, "CompleteMockDraft"), connect.NewUnaryHandler(rpcutil.Procedure(ServiceName, "CompleteMockDraft"), s.CompleteMockDraft, opts...))
	mux.Handle(rpcutil.Procedure(ServiceName, "ResetMockDraft"), connect.NewUnaryHandler(rpcutil.Procedure(ServiceName, "ResetMockDraft"), s.ResetMockDraft, opts...))
	mux.Handle(rpcutil.Procedure(ServiceName, "GetMockDraft"), connect.NewUnaryHandler(rpcutil.Procedure(ServiceName, "GetMockDraft"), s.GetMockDraft, opts...))
	mux.Handle(rpcutil.Procedure(ServiceName, "ListMockDrafts"), connect.NewUnaryHandler(rpcutil.Procedure(ServiceName, "ListMockDrafts"), s.ListMockDrafts, opts...))
}

// StartMockDraft starts a draft for the caller's chosen franchise
func (s *Service) StartMockDraft(ctx context.Context, req *connect.Request[StartMockDraftRequest]) (*connect.Response[MockDraftResponse], error) {
	userID, err := rpcutil.UserID(req.Header())
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	d, err := s.app.StartMockDraft(ctx, userID, *req.Msg)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&MockDraftResponse{MockDraft: d}), nil
}

// AdvanceMockDraft makes the caller's pick
func (s *Service) AdvanceMockDraft(ctx context.Context, req *connect.Request[AdvanceMockDraftRequest]) (*connect.Response[MockDraftResponse], error) {
	userID, err := rpcutil.UserID(req.Header())
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	d, err := s.app.AdvanceMockDraft(ctx, userID, *req.Msg)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&MockDraftResponse{MockDraft: d}), nil
}

func (s *Service) CompleteMockDraft(ctx context.Context, req *connect.Request[DraftIDRequest]) (*connect.Response[CompleteMockDraftResponse], error) {
	userID, id, err := draftTarget(req)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	scores, err := s.app.CompleteMockDraft(ctx, userID, id)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&CompleteMockDraftResponse{Scores: scores}), nil
}

func (s *Service) ResetMockDraft(ctx context.Context, req *connect.Request[DraftIDRequest]) (*connect.Response[MockDraftResponse], error) {
	return s.withDraft(ctx, req, s.app.ResetMockDraft)
}

func (s *Service) GetMockDraft(ctx context.Context, req *connect.Request[DraftIDRequest]) (*connect.Response[MockDraftResponse], error) {
	return s.withDraft(ctx, req, s.app.GetMockDraft)
}

func (s *Service) ListMockDrafts(ctx context.Context, req *connect.Request[ListMockDraftsRequest]) (*connect.Response[ListMockDraftsResponse], error) {
	userID, err := rpcutil.UserID(req.Header())
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	drafts, err := s.app.ListMockDrafts(ctx, userID)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	if drafts == nil {
		drafts = []models.MockDraft{}
	}
	return connect.NewResponse(&ListMockDraftsResponse{MockDrafts: drafts}), nil
}

func (s *Service) withDraft(ctx context.Context, req *connect.Request[DraftIDRequest], fn func(context.Context, string, uuid.UUID) (*models.MockDraft, error)) (*connect.Response[MockDraftResponse], error) {
	userID, id, err := draftTarget(req)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	d, err := fn(ctx, userID, id)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&MockDraftResponse{MockDraft: d}), nil
}

func draftTarget(req *connect.Request[DraftIDRequest]) (string, uuid.UUID, error) {
	userID, err := rpcutil.UserID(req.Header())
	if err != nil {
		return "", uuid.Nil, err
	}
	id, err := uuid.Parse(req.Msg.DraftID)
	if err != nil {
		return "", uuid.Nil, apperr.Validation(apperr.CodeInvalidRequest, "invalid draft_id: %v", err)
	}
	return userID, id, nil
}
