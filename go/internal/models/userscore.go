package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTradeWeight = 0.60
	DefaultMockWeight  = 0.40
)

// UserScore is the per-user GM score snapshot. Nil scores mean "no activity",
// which is distinct from a zero score.
type UserScore struct {
	UserID             string     `json:"user_id"`
	BestTradeScore     *float64   `json:"best_trade_score"`
	BestMockDraftScore *float64   `json:"best_mock_draft_score"`
	BestMockDraftID    *uuid.UUID `json:"best_mock_draft_id,omitempty"`
	TradeCount         int        `json:"trade_count"`
	MockCount          int        `json:"mock_count"`
	TradeWeight        float64    `json:"trade_weight"`
	MockWeight         float64    `json:"mock_weight"`
	CombinedScore      *float64   `json:"combined_score"`
	ComputedAt         time.Time  `json:"computed_at"`
}
