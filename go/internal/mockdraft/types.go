package mockdraft

import (
	"context"

	"github.com/chisports/gmengine/go/internal/models"
)

// DraftData is the external source of draft order, prospects and needs.
type DraftData interface {
	PickOrder(ctx context.Context, sport models.Sport, year int) ([]models.DraftOrderEntry, error)
	ProspectBoard(ctx context.Context, sport models.Sport, year int) ([]models.Prospect, error)
	TeamNeeds(ctx context.Context, sport models.Sport, teamKey string) ([]string, error)
}

type StartMockDraftRequest struct {
	Franchise string `json:"chosen_franchise"`
	Sport     string `json:"sport"`
	DraftYear int    `json:"draft_year,omitempty"` // defaults to the current year
}

type AdvanceMockDraftRequest struct {
	DraftID    string `json:"draft_id"`
	PickNumber int    `json:"pick_number"`
	ProspectID string `json:"prospect_id"`
}

type DraftIDRequest struct {
	DraftID string `json:"draft_id"`
}

type MockDraftResponse struct {
	MockDraft *models.MockDraft `json:"mock_draft"`
}

type ListMockDraftsRequest struct{}

type ListMockDraftsResponse struct {
	MockDrafts []models.MockDraft `json:"mock_drafts"`
}

type CompleteMockDraftResponse struct {
	Scores *models.MockDraftScores `json:"scores"`
}

// pickMadePayload is the MockDraftPickMade event body. Gateway clients
// render it directly.
type pickMadePayload struct {
	DraftID          string                 `json:"draft_id"`
	UserID           string                 `json:"user_id"`
	Picks            []models.DraftPickSlot `json:"picks"`
	CurrentPickIndex int                    `json:"current_pick_index"`
	TotalPicks       int                    `json:"total_picks"`
}

type draftPayload struct {
	DraftID    string                  `json:"draft_id"`
	UserID     string                  `json:"user_id"`
	Franchise  string                  `json:"chosen_franchise"`
	Sport      models.Sport            `json:"sport"`
	DraftYear  int                     `json:"draft_year"`
	TotalPicks int                     `json:"total_picks"`
	Scores     *models.MockDraftScores `json:"scores,omitempty"`
}

func newDraftPayload(d *models.MockDraft) draftPayload {
	return draftPayload{
		DraftID:    d.ID.String(),
		UserID:     d.UserID,
		Franchise:  d.Franchise,
		Sport:      d.Sport,
		DraftYear:  d.DraftYear,
		TotalPicks: d.TotalPicks,
		Scores:     d.Scores,
	}
}
