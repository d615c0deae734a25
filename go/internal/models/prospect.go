package models

// RiskTag is the scouting consensus on how wide a prospect's outcomes are.
type RiskTag string

const (
	RiskLow    RiskTag = "low"
	RiskMedium RiskTag = "medium"
	RiskHigh   RiskTag = "high"
)

// Prospect is a draft-eligible player from the externally supplied big board.
type Prospect struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Position      string  `json:"position"`
	School        string  `json:"school,omitempty"`
	ConsensusRank int     `json:"consensus_rank"`
	Grade         float64 `json:"grade"` // 0-100 scouting grade
	Risk          RiskTag `json:"risk"`
}
