package nhl

import (
	"fmt"
	"time"

	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/sports/base"
)

// NHLPlugin implements the SportPlugin interface for the NHL.
type NHLPlugin struct {
	*base.ProfilePlugin
}

func init() {
	plugin := &NHLPlugin{ProfilePlugin: base.NewProfilePlugin(Profile())}
	if err := base.RegisterPlugin(string(models.SportNHL), plugin); err != nil {
		panic(fmt.Sprintf("Failed to register NHL plugin: %v", err))
	}
}

// Profile returns the built-in NHL profile.
func Profile() *base.Profile {
	return &base.Profile{
		Sport:    models.SportNHL,
		Rounds:   7,
		Teams:    teams(),
		PrimeAge: base.AgeBand{Min: 24, Max: 29},
		StatGroups: map[string][]base.StatWeight{
			"forward": {
				{Stat: "points", Weight: 0.50, Scale: 85},
				{Stat: "goals", Weight: 0.30, Scale: 40},
				{Stat: "toi", Weight: 0.20, Scale: 20},
			},
			"defense": {
				{Stat: "points", Weight: 0.35, Scale: 50},
				{Stat: "toi", Weight: 0.40, Scale: 24},
				{Stat: "blocks", Weight: 0.25, Scale: 150},
			},
			"goalie": {
				{Stat: "sv_pct", Weight: 0.60, Scale: 0.920},
				{Stat: "wins", Weight: 0.40, Scale: 35},
			},
		},
		PositionGroups: map[string]string{
			"C": "forward", "LW": "forward", "RW": "forward", "F": "forward", "W": "forward",
			"D": "defense", "LD": "defense", "RD": "defense",
			"G": "goalie",
		},
		DefaultGroup: "forward",
		Scarcity: map[string]float64{
			"C": 0.75, "D": 0.70, "G": 0.65, "LW": 0.45, "RW": 0.50, "W": 0.45,
		},
		Offseason: base.Window{StartMonth: time.April, StartDay: 20, EndMonth: time.October, EndDay: 5},
		PickCurve: base.PickCurve{FirstRound: 40, Decay: 0.6},
	}
}

func teams() []models.Team {
	return []models.Team{
		{Key: "bos", Name: "Boston Bruins", Nickname: "Bruins", Division: "Atlantic"},
		{Key: "buf", Name: "Buffalo Sabres", Nickname: "Sabres", Division: "Atlantic"},
		{Key: "det", Name: "Detroit Red Wings", Nickname: "Red Wings", Division: "Atlantic"},
		{Key: "fla", Name: "Florida Panthers", Nickname: "Panthers", Division: "Atlantic"},
		{Key: "mtl", Name: "Montreal Canadiens", Nickname: "Canadiens", Division: "Atlantic"},
		{Key: "ott", Name: "Ottawa Senators", Nickname: "Senators", Division: "Atlantic"},
		{Key: "tb", Name: "Tampa Bay Lightning", Nickname: "Lightning", Division: "Atlantic"},
		{Key: "tor", Name: "Toronto Maple Leafs", Nickname: "Maple Leafs", Division: "Atlantic"},
		{Key: "car", Name: "Carolina Hurricanes", Nickname: "Hurricanes", Division: "Metropolitan"},
		{Key: "cbj", Name: "Columbus Blue Jackets", Nickname: "Blue Jackets", Division: "Metropolitan"},
		{Key: "nj", Name: "New Jersey Devils", Nickname: "Devils", Division: "Metropolitan"},
		{Key: "nyi", Name: "New York Islanders", Nickname: "Islanders", Division: "Metropolitan"},
		{Key: "nyr", Name: "New York Rangers", Nickname: "Rangers", Division: "Metropolitan"},
		{Key: "phi", Name: "Philadelphia Flyers", Nickname: "Flyers", Division: "Metropolitan"},
		{Key: "pit", Name: "Pittsburgh Penguins", Nickname: "Penguins", Division: "Metropolitan"},
		{Key: "wsh", Name: "Washington Capitals", Nickname: "Capitals", Division: "Metropolitan"},
		{Key: "chi", Name: "Chicago Blackhawks", Nickname: "Blackhawks", Division: "Central"},
		{Key: "col", Name: "Colorado Avalanche", Nickname: "Avalanche", Division: "Central"},
		{Key: "dal", Name: "Dallas Stars", Nickname: "Stars", Division: "Central"},
		{Key: "min", Name: "Minnesota Wild", Nickname: "Wild", Division: "Central"},
		{Key: "nsh", Name: "Nashville Predators", Nickname: "Predators", Division: "Central"},
		{Key: "stl", Name: "St. Louis Blues", Nickname: "Blues", Division: "Central"},
		{Key: "uta", Name: "Utah Mammoth", Nickname: "Mammoth", Division: "Central"},
		{Key: "wpg", Name: "Winnipeg Jets", Nickname: "Jets", Division: "Central"},
		{Key: "ana", Name: "Anaheim Ducks", Nickname: "Ducks", Division: "Pacific"},
		{Key: "cgy", Name: "Calgary Flames", Nickname: "Flames", Division: "Pacific"},
		{Key: "edm", Name: "Edmonton Oilers", Nickname: "Oilers", Division: "Pacific"},
		{Key: "lak", Name: "Los Angeles Kings", Nickname: "Kings", Division: "Pacific"},
		{Key: "sea", Name: "Seattle Kraken", Nickname: "Kraken", Division: "Pacific"},
		{Key: "sj", Name: "San Jose Sharks", Nickname: "Sharks", Division: "Pacific"},
		{Key: "van", Name: "Vancouver Canucks", Nickname: "Canucks", Division: "Pacific"},
		{Key: "vgk", Name: "Vegas Golden Knights", Nickname: "Golden Knights", Division: "Pacific"},
	}
}
