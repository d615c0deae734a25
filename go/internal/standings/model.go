package standings

import (
	"context"
	"math"
	"sort"

	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/sports/base"
)

// ValueModel is an in-process SeasonSimClient used when no simulation
// endpoint is configured. Every team starts from a .500 baseline and moves
// by the net value of what it gains and loses.
type ValueModel struct {
	profiles base.ProfileSource
	games    map[models.Sport]float64
}

// ratingPerValue converts asset value into power-rating points.
const ratingPerValue = 0.1

func NewValueModel(profiles base.ProfileSource) *ValueModel {
	return &ValueModel{
		profiles: profiles,
		games: map[models.Sport]float64{
			models.SportNFL: 17,
			models.SportNBA: 82,
			models.SportMLB: 162,
			models.SportNHL: 82,
		},
	}
}

func (m *ValueModel) SimulateSeason(_ context.Context, req *SimulateSeasonRequest) (*SimulateSeasonResponse, error) {
	profile, err := m.profiles.ProfileFor(req.Sport)
	if err != nil {
		return nil, err
	}
	games := m.games[req.Sport]

	net := make(map[string]float64)
	for _, c := range req.Changes {
		switch c.Direction {
		case DirectionIn:
			net[c.TeamKey] += c.Value
		case DirectionOut:
			net[c.TeamKey] -= c.Value
		}
	}

	res := &SimulateSeasonResponse{}
	for _, team := range profile.Teams {
		res.Baseline = append(res.Baseline, models.TeamStanding{TeamKey: team.Key, Wins: games / 2, Losses: games / 2})

		rating := net[team.Key] * ratingPerValue
		// one power-rating point is worth about 3% of a season's games
		wins := math.Max(0, math.Min(games, games/2+rating*0.03*games))
		res.Modified = append(res.Modified, models.TeamStanding{
			TeamKey:     team.Key,
			PowerRating: rating,
			Wins:        wins,
			Losses:      games - wins,
		})
	}
	sort.Slice(res.Modified, func(i, j int) bool { return res.Modified[i].TeamKey < res.Modified[j].TeamKey })
	return res, nil
}
