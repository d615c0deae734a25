package trade

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/chisports/gmengine/go/internal/apperr"
	"github.com/chisports/gmengine/go/internal/export"
	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/rpcutil"
)

const ServiceName = "gm.trade.v1.TradeService"

// TradeApp defines what the service layer needs from the trade application
type TradeApp interface {
	SubmitTrade(ctx context.Context, userID string, req SubmitTradeRequest) (*models.Trade, error)
	AcceptTrade(ctx context.Context, userID string, id uuid.UUID) (*models.Trade, error)
	RejectTrade(ctx context.Context, userID string, id uuid.UUID) (*models.Trade, error)
	GetTrade(ctx context.Context, userID string, id uuid.UUID) (*models.Trade, error)
	ListTrades(ctx context.Context, userID string, filter ListTradesFilter) ([]models.Trade, error)
}

// Exporter renders trade documents.
type Exporter interface {
	ExportTrades(ctx context.Context, userID string, ids []uuid.UUID, format string) (*export.Document, error)
}

// Service implements the TradeService Connect handlers
type Service struct {
	app      TradeApp
	exporter Exporter
}

// NewService creates a new trade service
func NewService(app TradeApp, exporter Exporter) *Service {
	return &Service{app: app, exporter: exporter}
}

// Register mounts every TradeService procedure on mux.
func (s *Service) Register(mux *http.ServeMux, opts ...connect.HandlerOption) {
	mux.Handle(rpcutil.Procedure(ServiceName, "SubmitTrade"), connect.NewUnaryHandler(rpcutil.Procedure(ServiceName, "SubmitTrade"), s.SubmitTrade, opts...))
	mux.Handle(rpcutil.Procedure(ServiceName, "AcceptTrade"), connect.NewUnaryHandler(rpcutil.Procedure(ServiceName, "AcceptTrade"), s.AcceptTrade, opts...))
	mux.Handle(rpcutil.Procedure(ServiceName, "RejectTrade"), connect.NewUnaryHandler(rpcutil.Procedure(ServiceName, "RejectTrade"), s.RejectTrade, opts...))
	mux.Handle(rpcutil.Procedure(ServiceName, "GetTrade"), connect.NewUnaryHandler(rpcutil.Procedure(ServiceName, "GetTrade"), s.GetTrade, opts...))
	mux.Handle(rpcutil.Procedure(ServiceName, "ListTrades"), connect.NewUnaryHandler(rpcutil.Procedure(ServiceName, "ListTrades"), s.ListTrades, opts...))
	mux.Handle(rpcutil.Procedure(ServiceName, "ExportTrades"), connect.NewUnaryHandler(rpcutil.Procedure(ServiceName, "ExportTrades"), s.ExportTrades, opts...))
}

// SubmitTrade grades and stores a trade proposal
func (s *Service) SubmitTrade(ctx context.Context, req *connect.Request[SubmitTradeRequest]) (*connect.Response[SubmitTradeResponse], error) {
	userID, err := rpcutil.UserID(req.Header())
	if err != nil {
		return nil, apperr.ToConnect(err)
	}

	trade, err := s.app.SubmitTrade(ctx, userID, *req.Msg)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&SubmitTradeResponse{Trade: trade}), nil
}

// AcceptTrade accepts a proposed trade
func (s *Service) AcceptTrade(ctx context.Context, req *connect.Request[TradeIDRequest]) (*connect.Response[TradeResponse], error) {
	return s.withTrade(ctx, req, s.app.AcceptTrade)
}

// RejectTrade rejects a proposed trade
func (s *Service) RejectTrade(ctx context.Context, req *connect.Request[TradeIDRequest]) (*connect.Response[TradeResponse], error) {
	return s.withTrade(ctx, req, s.app.RejectTrade)
}

// GetTrade retrieves a trade by ID
func (s *Service) GetTrade(ctx context.Context, req *connect.Request[TradeIDRequest]) (*connect.Response[TradeResponse], error) {
	return s.withTrade(ctx, req, s.app.GetTrade)
}

func (s *Service) withTrade(ctx context.Context, req *connect.Request[TradeIDRequest], fn func(context.Context, string, uuid.UUID) (*models.Trade, error)) (*connect.Response[TradeResponse], error) {
	userID, err := rpcutil.UserID(req.Header())
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	id, err := uuid.Parse(req.Msg.TradeID)
	if err != nil {
		return nil, apperr.ToConnect(apperr.Validation(apperr.CodeInvalidRequest, "invalid trade_id: %v", err))
	}

	trade, err := fn(ctx, userID, id)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&TradeResponse{Trade: trade}), nil
}

// ListTrades lists the caller's trades
func (s *Service) ListTrades(ctx context.Context, req *connect.Request[ListTradesRequest]) (*connect.Response[ListTradesResponse], error) {
	userID, err := rpcutil.UserID(req.Header())
	if err != nil {
		return nil, apperr.ToConnect(err)
	}

	filter := ListTradesFilter{Limit: req.Msg.Limit}
	if req.Msg.Status != "" {
		switch status := models.TradeStatus(req.Msg.Status); status {
		case models.TradeStatusProposed, models.TradeStatusAccepted, models.TradeStatusRejected:
			filter.Status = status
		default:
			return nil, apperr.ToConnect(apperr.Validation(apperr.CodeInvalidRequest, "unknown status %q", req.Msg.Status))
		}
	}
	if req.Msg.Sport != "" {
		sport, err := models.ParseSport(req.Msg.Sport)
		if err != nil {
			return nil, apperr.ToConnect(apperr.Validation(apperr.CodeInvalidSport, "%v", err))
		}
		filter.Sport = sport
	}

	trades, err := s.app.ListTrades(ctx, userID, filter)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	if trades == nil {
		trades = []models.Trade{}
	}
	return connect.NewResponse(&ListTradesResponse{Trades: trades}), nil
}

// ExportTrades renders the requested trades as json, csv or html
func (s *Service) ExportTrades(ctx context.Context, req *connect.Request[ExportTradesRequest]) (*connect.Response[ExportTradesResponse], error) {
	userID, err := rpcutil.UserID(req.Header())
	if err != nil {
		return nil, apperr.ToConnect(err)
	}

	ids := make([]uuid.UUID, 0, len(req.Msg.TradeIDs))
	for _, raw := range req.Msg.TradeIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperr.ToConnect(apperr.Validation(apperr.CodeInvalidRequest, "invalid trade id %q", raw))
		}
		ids = append(ids, id)
	}

	doc, err := s.exporter.ExportTrades(ctx, userID, ids, req.Msg.Format)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&ExportTradesResponse{
		Format:      string(doc.Format),
		ContentType: doc.ContentType,
		Filename:    doc.Filename,
		Content:     string(doc.Body),
	}), nil
}
