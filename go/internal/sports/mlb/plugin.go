package mlb

import (
	"fmt"
	"time"

	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/sports/base"
)

// MLBPlugin implements the SportPlugin interface for MLB.
type MLBPlugin struct {
	*base.ProfilePlugin
}

func init() {
	plugin := &MLBPlugin{ProfilePlugin: base.NewProfilePlugin(Profile())}
	if err := base.RegisterPlugin(string(models.SportMLB), plugin); err != nil {
		panic(fmt.Sprintf("Failed to register MLB plugin: %v", err))
	}
}

// Profile returns the built-in MLB profile. The offseason window wraps the
// new year.
func Profile() *base.Profile {
	return &base.Profile{
		Sport:    models.SportMLB,
		Rounds:   20,
		Teams:    teams(),
		PrimeAge: base.AgeBand{Min: 26, Max: 31},
		StatGroups: map[string][]base.StatWeight{
			"hitter": {
				{Stat: "war", Weight: 0.40, Scale: 6},
				{Stat: "ops", Weight: 0.35, Scale: 0.900},
				{Stat: "hr", Weight: 0.25, Scale: 35},
			},
			"starter": {
				{Stat: "war", Weight: 0.40, Scale: 5},
				{Stat: "era_plus", Weight: 0.35, Scale: 140},
				{Stat: "ip", Weight: 0.25, Scale: 190},
			},
			"reliever": {
				{Stat: "war", Weight: 0.40, Scale: 2},
				{Stat: "saves", Weight: 0.30, Scale: 35},
				{Stat: "k_per_9", Weight: 0.30, Scale: 12},
			},
		},
		PositionGroups: map[string]string{
			"C": "hitter", "1B": "hitter", "2B": "hitter", "3B": "hitter", "SS": "hitter",
			"LF": "hitter", "CF": "hitter", "RF": "hitter", "OF": "hitter", "DH": "hitter",
			"SP": "starter", "RP": "reliever", "CL": "reliever",
		},
		DefaultGroup: "hitter",
		Scarcity: map[string]float64{
			"SP": 0.85, "SS": 0.80, "C": 0.75, "CF": 0.70, "2B": 0.55, "3B": 0.60,
			"RF": 0.50, "LF": 0.45, "1B": 0.35, "DH": 0.20, "RP": 0.40, "CL": 0.45,
		},
		Offseason: base.Window{StartMonth: time.November, StartDay: 1, EndMonth: time.March, EndDay: 20},
		PickCurve: base.PickCurve{FirstRound: 35, Decay: 0.72},
	}
}

func teams() []models.Team {
	return []models.Team{
		{Key: "bal", Name: "Baltimore Orioles", Nickname: "Orioles", Division: "AL East"},
		{Key: "bos", Name: "Boston Red Sox", Nickname: "Red Sox", Division: "AL East"},
		{Key: "nyy", Name: "New York Yankees", Nickname: "Yankees", Division: "AL East"},
		{Key: "tb", Name: "Tampa Bay Rays", Nickname: "Rays", Division: "AL East"},
		{Key: "tor", Name: "Toronto Blue Jays", Nickname: "Blue Jays", Division: "AL East"},
		{Key: "cws", Name: "Chicago White Sox", Nickname: "White Sox", Division: "AL Central"},
		{Key: "cle", Name: "Cleveland Guardians", Nickname: "Guardians", Division: "AL Central"},
		{Key: "det", Name: "Detroit Tigers", Nickname: "Tigers", Division: "AL Central"},
		{Key: "kc", Name: "Kansas City Royals", Nickname: "Royals", Division: "AL Central"},
		{Key: "min", Name: "Minnesota Twins", Nickname: "Twins", Division: "AL Central"},
		{Key: "hou", Name: "Houston Astros", Nickname: "Astros", Division: "AL West"},
		{Key: "laa", Name: "Los Angeles Angels", Nickname: "Angels", Division: "AL West"},
		{Key: "ath", Name: "Athletics", Nickname: "Athletics", Division: "AL West"},
		{Key: "sea", Name: "Seattle Mariners", Nickname: "Mariners", Division: "AL West"},
		{Key: "tex", Name: "Texas Rangers", Nickname: "Rangers", Division: "AL West"},
		{Key: "atl", Name: "Atlanta Braves", Nickname: "Braves", Division: "NL East"},
		{Key: "mia", Name: "Miami Marlins", Nickname: "Marlins", Division: "NL East"},
		{Key: "nym", Name: "New York Mets", Nickname: "Mets", Division: "NL East"},
		{Key: "phi", Name: "Philadelphia Phillies", Nickname: "Phillies", Division: "NL East"},
		{Key: "wsh", Name: "Washington Nationals", Nickname: "Nationals", Division: "NL East"},
		{Key: "chc", Name: "Chicago Cubs", Nickname: "Cubs", Division: "NL Central"},
		{Key: "cin", Name: "Cincinnati Reds", Nickname: "Reds", Division: "NL Central"},
		{Key: "mil", Name: "Milwaukee Brewers", Nickname: "Brewers", Division: "NL Central"},
		{Key: "pit", Name: "Pittsburgh Pirates", Nickname: "Pirates", Division: "NL Central"},
		{Key: "stl", Name: "St. Louis Cardinals", Nickname: "Cardinals", Division: "NL Central"},
		{Key: "ari", Name: "Arizona Diamondbacks", Nickname: "Diamondbacks", Division: "NL West"},
		{Key: "col", Name: "Colorado Rockies", Nickname: "Rockies", Division: "NL West"},
		{Key: "lad", Name: "Los Angeles Dodgers", Nickname: "Dodgers", Division: "NL West"},
		{Key: "sd", Name: "San Diego Padres", Nickname: "Padres", Division: "NL West"},
		{Key: "sf", Name: "San Francisco Giants", Nickname: "Giants", Division: "NL West"},
	}
}
