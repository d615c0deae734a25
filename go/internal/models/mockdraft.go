package models

import (
	"time"

	"github.com/google/uuid"
)

// MockDraftStatus defines the status of a mock draft.
type MockDraftStatus string

const (
	MockDraftStatusInProgress MockDraftStatus = "in_progress"
	MockDraftStatusCompleted  MockDraftStatus = "completed"
)

// DraftPickSlot is one selection in a mock draft.
type DraftPickSlot struct {
	PickNumber int       `json:"pick_number"` // overall, 1-indexed
	Round      int       `json:"round"`
	OwningTeam string    `json:"owning_team"`
	IsUserPick bool      `json:"is_user_pick"`
	Selected   *Prospect `json:"selected_prospect"` // nil until picked
	IsCurrent  bool      `json:"is_current"`
}

// MockDraftScores are computed once, at the completion transition.
type MockDraftScores struct {
	ValueScore      float64 `json:"value_score"`
	NeedFitScore    float64 `json:"need_fit_score"`
	UpsideRiskScore float64 `json:"upside_risk_score"`
	MockScore       float64 `json:"mock_score"`
	LetterGrade     string  `json:"letter_grade"`
}

// MockDraft is one user session drafting for a single franchise.
type MockDraft struct {
	ID               uuid.UUID        `json:"id"`
	UserID           string           `json:"user_id"`
	Franchise        string           `json:"chosen_franchise"`
	Sport            Sport            `json:"sport"`
	DraftYear        int              `json:"draft_year"`
	TotalPicks       int              `json:"total_picks"`
	CurrentPickIndex int              `json:"current_pick_index"`
	Status           MockDraftStatus  `json:"status"`
	IsReset          bool             `json:"is_reset"`
	IsBest           bool             `json:"is_best"`
	TeamNeeds        []string         `json:"team_needs,omitempty"`
	Scores           *MockDraftScores `json:"scores,omitempty"`
	Slots            []DraftPickSlot  `json:"slots"`
	Board            []Prospect       `json:"board,omitempty"` // prospect board captured at start
	CreatedAt        time.Time        `json:"created_at"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty"`
}

// Available returns board prospects not yet selected, in board order.
func (d *MockDraft) Available() []Prospect {
	taken := make(map[string]bool, len(d.Slots))
	for _, s := range d.Slots {
		if s.Selected != nil {
			taken[s.Selected.ID] = true
		}
	}
	out := make([]Prospect, 0, len(d.Board))
	for _, p := range d.Board {
		if !taken[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

// CurrentSlot returns the slot on the clock, or nil once the draft is complete.
func (d *MockDraft) CurrentSlot() *DraftPickSlot {
	if d.CurrentPickIndex < 0 || d.CurrentPickIndex >= len(d.Slots) {
		return nil
	}
	return &d.Slots[d.CurrentPickIndex]
}

// UserSlots returns the user's own picks in draft order.
func (d *MockDraft) UserSlots() []DraftPickSlot {
	var out []DraftPickSlot
	for _, s := range d.Slots {
		if s.IsUserPick {
			out = append(out, s)
		}
	}
	return out
}

// DraftOrderEntry is one pick in the externally supplied draft order.
type DraftOrderEntry struct {
	PickNumber int    `json:"pick_number"`
	Round      int    `json:"round"`
	TeamKey    string `json:"team_key"`
}

// LetterGrade maps a 0-100 score to A through F.
func LetterGrade(score float64) string {
	switch {
	case score >= 85:
		return "A"
	case score >= 70:
		return "B"
	case score >= 55:
		return "C"
	case score >= 40:
		return "D"
	default:
		return "F"
	}
}
