package nfl

import (
	"fmt"
	"time"

	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/sports/base"
)

// NFLPlugin implements the SportPlugin interface for the NFL.
type NFLPlugin struct {
	*base.ProfilePlugin
}

// init registers the NFL plugin with the base registry.
func init() {
	plugin := &NFLPlugin{ProfilePlugin: base.NewProfilePlugin(Profile())}
	if err := base.RegisterPlugin(string(models.SportNFL), plugin); err != nil {
		panic(fmt.Sprintf("Failed to register NFL plugin: %v", err))
	}
}

// Profile returns the built-in NFL profile.
func Profile() *base.Profile {
	return &base.Profile{
		Sport:    models.SportNFL,
		Rounds:   7,
		Teams:    teams(),
		PrimeAge: base.AgeBand{Min: 25, Max: 29},
		StatGroups: map[string][]base.StatWeight{
			"passing": {
				{Stat: "pass_yds", Weight: 0.30, Scale: 4500},
				{Stat: "pass_td", Weight: 0.30, Scale: 35},
				{Stat: "passer_rating", Weight: 0.40, Scale: 110},
			},
			"rushing": {
				{Stat: "rush_yds", Weight: 0.45, Scale: 1400},
				{Stat: "rush_td", Weight: 0.30, Scale: 14},
				{Stat: "rec_yds", Weight: 0.25, Scale: 600},
			},
			"receiving": {
				{Stat: "rec_yds", Weight: 0.45, Scale: 1400},
				{Stat: "rec_td", Weight: 0.30, Scale: 12},
				{Stat: "receptions", Weight: 0.25, Scale: 100},
			},
			"pass_rush": {
				{Stat: "sacks", Weight: 0.45, Scale: 14},
				{Stat: "tackles", Weight: 0.35, Scale: 120},
				{Stat: "forced_fumbles", Weight: 0.20, Scale: 4},
			},
			"coverage": {
				{Stat: "interceptions", Weight: 0.40, Scale: 6},
				{Stat: "passes_defended", Weight: 0.35, Scale: 18},
				{Stat: "tackles", Weight: 0.25, Scale: 90},
			},
			"blocking": {
				{Stat: "games_started", Weight: 0.50, Scale: 17},
				{Stat: "pff_grade", Weight: 0.50, Scale: 90},
			},
			"kicking": {
				{Stat: "fg_pct", Weight: 0.60, Scale: 1},
				{Stat: "games", Weight: 0.40, Scale: 17},
			},
			"general": {
				{Stat: "games", Weight: 1.0, Scale: 17},
			},
		},
		PositionGroups: map[string]string{
			"QB": "passing",
			"RB": "rushing", "FB": "rushing",
			"WR": "receiving", "TE": "receiving",
			"EDGE": "pass_rush", "DE": "pass_rush", "DT": "pass_rush", "DL": "pass_rush", "LB": "pass_rush",
			"CB": "coverage", "S": "coverage", "DB": "coverage",
			"OT": "blocking", "OG": "blocking", "C": "blocking", "OL": "blocking", "IOL": "blocking",
			"K": "kicking", "P": "kicking",
		},
		DefaultGroup: "general",
		Scarcity: map[string]float64{
			"QB": 1.0, "EDGE": 0.85, "DE": 0.85, "OT": 0.80, "CB": 0.75, "WR": 0.70,
			"DT": 0.65, "DL": 0.65, "S": 0.55, "LB": 0.50, "TE": 0.50, "IOL": 0.45,
			"OG": 0.45, "C": 0.45, "RB": 0.40, "K": 0.10, "P": 0.10,
		},
		Offseason: base.Window{StartMonth: time.February, StartDay: 10, EndMonth: time.September, EndDay: 4},
		PickCurve: base.PickCurve{FirstRound: 60, Decay: 0.55},
	}
}

func teams() []models.Team {
	return []models.Team{
		{Key: "buf", Name: "Buffalo Bills", Nickname: "Bills", Division: "AFC East"},
		{Key: "mia", Name: "Miami Dolphins", Nickname: "Dolphins", Division: "AFC East"},
		{Key: "ne", Name: "New England Patriots", Nickname: "Patriots", Division: "AFC East"},
		{Key: "nyj", Name: "New York Jets", Nickname: "Jets", Division: "AFC East"},
		{Key: "bal", Name: "Baltimore Ravens", Nickname: "Ravens", Division: "AFC North"},
		{Key: "cin", Name: "Cincinnati Bengals", Nickname: "Bengals", Division: "AFC North"},
		{Key: "cle", Name: "Cleveland Browns", Nickname: "Browns", Division: "AFC North"},
		{Key: "pit", Name: "Pittsburgh Steelers", Nickname: "Steelers", Division: "AFC North"},
		{Key: "hou", Name: "Houston Texans", Nickname: "Texans", Division: "AFC South"},
		{Key: "ind", Name: "Indianapolis Colts", Nickname: "Colts", Division: "AFC South"},
		{Key: "jax", Name: "Jacksonville Jaguars", Nickname: "Jaguars", Division: "AFC South"},
		{Key: "ten", Name: "Tennessee Titans", Nickname: "Titans", Division: "AFC South"},
		{Key: "den", Name: "Denver Broncos", Nickname: "Broncos", Division: "AFC West"},
		{Key: "kc", Name: "Kansas City Chiefs", Nickname: "Chiefs", Division: "AFC West"},
		{Key: "lv", Name: "Las Vegas Raiders", Nickname: "Raiders", Division: "AFC West"},
		{Key: "lac", Name: "Los Angeles Chargers", Nickname: "Chargers", Division: "AFC West"},
		{Key: "dal", Name: "Dallas Cowboys", Nickname: "Cowboys", Division: "NFC East"},
		{Key: "nyg", Name: "New York Giants", Nickname: "Giants", Division: "NFC East"},
		{Key: "phi", Name: "Philadelphia Eagles", Nickname: "Eagles", Division: "NFC East"},
		{Key: "was", Name: "Washington Commanders", Nickname: "Commanders", Division: "NFC East"},
		{Key: "chi", Name: "Chicago Bears", Nickname: "Bears", Division: "NFC North"},
		{Key: "det", Name: "Detroit Lions", Nickname: "Lions", Division: "NFC North"},
		{Key: "gb", Name: "Green Bay Packers", Nickname: "Packers", Division: "NFC North"},
		{Key: "min", Name: "Minnesota Vikings", Nickname: "Vikings", Division: "NFC North"},
		{Key: "atl", Name: "Atlanta Falcons", Nickname: "Falcons", Division: "NFC South"},
		{Key: "car", Name: "Carolina Panthers", Nickname: "Panthers", Division: "NFC South"},
		{Key: "no", Name: "New Orleans Saints", Nickname: "Saints", Division: "NFC South"},
		{Key: "tb", Name: "Tampa Bay Buccaneers", Nickname: "Buccaneers", Division: "NFC South"},
		{Key: "ari", Name: "Arizona Cardinals", Nickname: "Cardinals", Division: "NFC West"},
		{Key: "lar", Name: "Los Angeles Rams", Nickname: "Rams", Division: "NFC West"},
		{Key: "sf", Name: "San Francisco 49ers", Nickname: "49ers", Division: "NFC West"},
		{Key: "sea", Name: "Seattle Seahawks", Nickname: "Seahawks", Division: "NFC West"},
	}
}
