package models

import (
	"fmt"
	"strings"
)

// Sport identifies the league a trade or mock draft belongs to.
type Sport string

const (
	SportNFL Sport = "nfl"
	SportNBA Sport = "nba"
	SportMLB Sport = "mlb"
	SportNHL Sport = "nhl"
)

// ParseSport normalizes a sport key.
func ParseSport(s string) (Sport, error) {
	sport := Sport(strings.ToLower(strings.TrimSpace(s)))
	switch sport {
	case SportNFL, SportNBA, SportMLB, SportNHL:
		return sport, nil
	default:
		return "", fmt.Errorf("unknown sport: %q", s)
	}
}
