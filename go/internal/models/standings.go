package models

// TeamStanding is one team's projected season line.
type TeamStanding struct {
	TeamKey     string  `json:"team_key"`
	PowerRating float64 `json:"power_rating"`
	Wins        float64 `json:"wins"`
	Losses      float64 `json:"losses"`
}

// SeasonBaseline is a full-league projection before any trade is applied.
type SeasonBaseline struct {
	Season int                     `json:"season"`
	Teams  map[string]TeamStanding `json:"teams"`
}
