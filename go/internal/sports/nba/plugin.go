package nba

import (
	"fmt"
	"time"

	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/sports/base"
)

// NBAPlugin implements the SportPlugin interface for the NBA.
type NBAPlugin struct {
	*base.ProfilePlugin
}

func init() {
	plugin := &NBAPlugin{ProfilePlugin: base.NewProfilePlugin(Profile())}
	if err := base.RegisterPlugin(string(models.SportNBA), plugin); err != nil {
		panic(fmt.Sprintf("Failed to register NBA plugin: %v", err))
	}
}

// Profile returns the built-in NBA profile. Two rounds, with the second
// round worth a small fraction of the first.
func Profile() *base.Profile {
	return &base.Profile{
		Sport:    models.SportNBA,
		Rounds:   2,
		Teams:    teams(),
		PrimeAge: base.AgeBand{Min: 24, Max: 29},
		StatGroups: map[string][]base.StatWeight{
			"guard": {
				{Stat: "pts", Weight: 0.40, Scale: 28},
				{Stat: "ast", Weight: 0.30, Scale: 8},
				{Stat: "reb", Weight: 0.10, Scale: 5},
				{Stat: "ts_pct", Weight: 0.20, Scale: 0.62},
			},
			"wing": {
				{Stat: "pts", Weight: 0.40, Scale: 25},
				{Stat: "reb", Weight: 0.25, Scale: 7},
				{Stat: "ast", Weight: 0.15, Scale: 5},
				{Stat: "ts_pct", Weight: 0.20, Scale: 0.60},
			},
			"big": {
				{Stat: "pts", Weight: 0.30, Scale: 22},
				{Stat: "reb", Weight: 0.35, Scale: 11},
				{Stat: "blk", Weight: 0.15, Scale: 2},
				{Stat: "ts_pct", Weight: 0.20, Scale: 0.62},
			},
		},
		PositionGroups: map[string]string{
			"PG": "guard", "SG": "guard", "G": "guard",
			"SF": "wing", "GF": "wing", "F": "wing",
			"PF": "big", "C": "big", "FC": "big",
		},
		DefaultGroup: "wing",
		Scarcity: map[string]float64{
			"C": 0.55, "PG": 0.70, "SG": 0.50, "SF": 0.65, "PF": 0.60, "G": 0.55, "F": 0.60,
		},
		Offseason: base.Window{StartMonth: time.April, StartDay: 15, EndMonth: time.October, EndDay: 20},
		PickCurve: base.PickCurve{RoundValues: []float64{55, 12}},
	}
}

func teams() []models.Team {
	return []models.Team{
		{Key: "bos", Name: "Boston Celtics", Nickname: "Celtics", Division: "Atlantic"},
		{Key: "bkn", Name: "Brooklyn Nets", Nickname: "Nets", Division: "Atlantic"},
		{Key: "nyk", Name: "New York Knicks", Nickname: "Knicks", Division: "Atlantic"},
		{Key: "phi", Name: "Philadelphia 76ers", Nickname: "76ers", Division: "Atlantic"},
		{Key: "tor", Name: "Toronto Raptors", Nickname: "Raptors", Division: "Atlantic"},
		{Key: "chi", Name: "Chicago Bulls", Nickname: "Bulls", Division: "Central"},
		{Key: "cle", Name: "Cleveland Cavaliers", Nickname: "Cavaliers", Division: "Central"},
		{Key: "det", Name: "Detroit Pistons", Nickname: "Pistons", Division: "Central"},
		{Key: "ind", Name: "Indiana Pacers", Nickname: "Pacers", Division: "Central"},
		{Key: "mil", Name: "Milwaukee Bucks", Nickname: "Bucks", Division: "Central"},
		{Key: "atl", Name: "Atlanta Hawks", Nickname: "Hawks", Division: "Southeast"},
		{Key: "cha", Name: "Charlotte Hornets", Nickname: "Hornets", Division: "Southeast"},
		{Key: "mia", Name: "Miami Heat", Nickname: "Heat", Division: "Southeast"},
		{Key: "orl", Name: "Orlando Magic", Nickname: "Magic", Division: "Southeast"},
		{Key: "was", Name: "Washington Wizards", Nickname: "Wizards", Division: "Southeast"},
		{Key: "den", Name: "Denver Nuggets", Nickname: "Nuggets", Division: "Northwest"},
		{Key: "min", Name: "Minnesota Timberwolves", Nickname: "Timberwolves", Division: "Northwest"},
		{Key: "okc", Name: "Oklahoma City Thunder", Nickname: "Thunder", Division: "Northwest"},
		{Key: "por", Name: "Portland Trail Blazers", Nickname: "Trail Blazers", Division: "Northwest"},
		{Key: "uta", Name: "Utah Jazz", Nickname: "Jazz", Division: "Northwest"},
		{Key: "gsw", Name: "Golden State Warriors", Nickname: "Warriors", Division: "Pacific"},
		{Key: "lac", Name: "Los Angeles Clippers", Nickname: "Clippers", Division: "Pacific"},
		{Key: "lal", Name: "Los Angeles Lakers", Nickname: "Lakers", Division: "Pacific"},
		{Key: "phx", Name: "Phoenix Suns", Nickname: "Suns", Division: "Pacific"},
		{Key: "sac", Name: "Sacramento Kings", Nickname: "Kings", Division: "Pacific"},
		{Key: "dal", Name: "Dallas Mavericks", Nickname: "Mavericks", Division: "Southwest"},
		{Key: "hou", Name: "Houston Rockets", Nickname: "Rockets", Division: "Southwest"},
		{Key: "mem", Name: "Memphis Grizzlies", Nickname: "Grizzlies", Division: "Southwest"},
		{Key: "nop", Name: "New Orleans Pelicans", Nickname: "Pelicans", Division: "Southwest"},
		{Key: "sas", Name: "San Antonio Spurs", Nickname: "Spurs", Division: "Southwest"},
	}
}
