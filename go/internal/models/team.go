package models

// Team is a franchise as the engine sees it: a short key plus its division.
type Team struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	Division string `json:"division"`
}
