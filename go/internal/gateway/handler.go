package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/chisports/gmengine/go/internal/apperr"
	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/rpcutil"
)

// DraftLookup loads a draft the caller owns.
type DraftLookup interface {
	GetMockDraft(ctx context.Context, userID string, id uuid.UUID) (*models.MockDraft, error)
}

// WebSocketHandler upgrades /ws/mockdraft requests after checking the caller
// owns the draft.
type WebSocketHandler struct {
	manager *ConnectionManager
	drafts  DraftLookup
}

func NewWebSocketHandler(cm *ConnectionManager, drafts DraftLookup) *WebSocketHandler {
	return &WebSocketHandler{manager: cm, drafts: drafts}
}

// HandleMockDraft serves ?draft_id=...; the user comes from X-User-ID or,
// for browsers that cannot set headers, ?user_id=.
func (h *WebSocketHandler) HandleMockDraft(w http.ResponseWriter, r *http.Request) {
	draftID, err := uuid.Parse(r.URL.Query().Get("draft_id"))
	if err != nil {
		http.Error(w, "valid draft_id is required", http.StatusBadRequest)
		return
	}
	userID := r.Header.Get(rpcutil.UserHeader)
	if userID == "" {
		userID = r.URL.Query().Get("user_id")
	}
	if userID == "" {
		http.Error(w, "user id is required", http.StatusUnauthorized)
		return
	}

	draft, err := h.drafts.GetMockDraft(r.Context(), userID, draftID)
	if err != nil {
		if apperr.IsNotFound(err) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("draft_id", draftID.String()).Msg("failed to load mock draft for websocket")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	snapshot, err := json.Marshal(draft)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	initial := &DraftEvent{
		ID:        uuid.New().String(),
		DraftID:   draftID.String(),
		Type:      EventTypeState,
		Timestamp: time.Now().UTC(),
		Data:      snapshot,
	}

	// The upgrader has already answered the request when this fails.
	if err := h.manager.UpgradeConnection(w, r, userID, draftID, initial); err != nil {
		log.Error().Err(err).Str("draft_id", draftID.String()).Msg("websocket upgrade failed")
	}
}

func (h *WebSocketHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.manager.Stats()); err != nil {
		log.Error().Err(err).Msg("failed to write connection stats")
	}
}

func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/mockdraft", h.HandleMockDraft)
	mux.HandleFunc("/ws/stats", h.HandleStats)
}
