package base

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/chisports/gmengine/go/internal/models"
)

// MaxDecay is the steepest round-over-round ratio that keeps the pick curve
// monotone once the in-round slot factor (1.15 to 0.85) is applied.
const MaxDecay = 0.85 / 1.15

// DefaultScarcity applies to positions a profile does not list.
const DefaultScarcity = 0.5

// StatWeight is one weighted, normalized stat in a position group.
type StatWeight struct {
	Stat   string  `yaml:"stat"`
	Weight float64 `yaml:"weight"`
	Scale  float64 `yaml:"scale"`
}

// AgeBand is the inclusive prime-age range.
type AgeBand struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// PickCurve describes undiscounted round values. RoundValues wins when set;
// otherwise round r is worth FirstRound * Decay^(r-1).
type PickCurve struct {
	RoundValues []float64 `yaml:"round_values"`
	FirstRound  float64   `yaml:"first_round"`
	Decay       float64   `yaml:"decay"`
}

// Profile is everything the engine knows about a sport.
type Profile struct {
	Sport          models.Sport
	Rounds         int
	Teams          []models.Team
	PrimeAge       AgeBand
	StatGroups     map[string][]StatWeight
	PositionGroups map[string]string
	DefaultGroup   string
	Scarcity       map[string]float64
	Offseason      Window
	PickCurve      PickCurve
}

// Overrides are the per-sport knobs exposed in the yaml config.
type Overrides struct {
	PrimeAge   *AgeBand                `yaml:"prime_age"`
	Offseason  *Window                 `yaml:"offseason"`
	PickCurve  *PickCurve              `yaml:"pick_curve"`
	StatGroups map[string][]StatWeight `yaml:"stat_groups"`
	Scarcity   map[string]float64      `yaml:"scarcity"`
}

// WithOverrides returns a copy of p with overrides applied and validated.
func (p *Profile) WithOverrides(o Overrides) (*Profile, error) {
	next := *p
	next.StatGroups = maps.Clone(p.StatGroups)
	next.Scarcity = maps.Clone(p.Scarcity)
	if o.PrimeAge != nil {
		next.PrimeAge = *o.PrimeAge
	}
	if o.Offseason != nil {
		next.Offseason = *o.Offseason
	}
	if o.PickCurve != nil {
		next.PickCurve = *o.PickCurve
	}
	for group, weights := range o.StatGroups {
		next.StatGroups[group] = weights
	}
	for pos, v := range o.Scarcity {
		next.Scarcity[strings.ToUpper(pos)] = v
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return &next, nil
}

// Validate checks the profile is internally consistent.
func (p *Profile) Validate() error {
	if p.Rounds <= 0 {
		return fmt.Errorf("%s: rounds must be positive", p.Sport)
	}
	if len(p.Teams) == 0 {
		return fmt.Errorf("%s: no teams", p.Sport)
	}
	if p.PrimeAge.Min <= 0 || p.PrimeAge.Max < p.PrimeAge.Min {
		return fmt.Errorf("%s: invalid prime age band %d-%d", p.Sport, p.PrimeAge.Min, p.PrimeAge.Max)
	}
	if err := p.Offseason.Validate(); err != nil {
		return fmt.Errorf("%s: %w", p.Sport, err)
	}
	if err := p.PickCurve.validate(p.Rounds); err != nil {
		return fmt.Errorf("%s: %w", p.Sport, err)
	}
	if _, ok := p.StatGroups[p.DefaultGroup]; !ok {
		return fmt.Errorf("%s: default stat group %q not defined", p.Sport, p.DefaultGroup)
	}
	for group, weights := range p.StatGroups {
		for _, w := range weights {
			if w.Scale <= 0 || w.Weight < 0 {
				return fmt.Errorf("%s: stat %q in group %q needs positive scale and non-negative weight", p.Sport, w.Stat, group)
			}
		}
	}
	for pos, v := range p.Scarcity {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s: scarcity for %s must be within [0,1]", p.Sport, pos)
		}
	}
	return nil
}

func (c PickCurve) validate(rounds int) error {
	if len(c.RoundValues) > 0 {
		if len(c.RoundValues) != rounds {
			return fmt.Errorf("pick curve has %d round values for %d rounds", len(c.RoundValues), rounds)
		}
		for i, v := range c.RoundValues {
			if v <= 0 {
				return fmt.Errorf("pick curve round %d must be positive", i+1)
			}
			if i > 0 && v/c.RoundValues[i-1] > MaxDecay {
				return fmt.Errorf("pick curve round %d breaks monotone ordering", i+1)
			}
		}
		return nil
	}
	if c.FirstRound <= 0 {
		return fmt.Errorf("pick curve first round value must be positive")
	}
	if c.Decay <= 0 || c.Decay > MaxDecay {
		return fmt.Errorf("pick curve decay %.3f outside (0, %.3f]", c.Decay, MaxDecay)
	}
	return nil
}

// TotalPicks is rounds times teams, the size of a full draft.
func (p *Profile) TotalPicks() int {
	return p.Rounds * len(p.Teams)
}

// Team looks up a team by its canonical key.
func (p *Profile) Team(key string) (models.Team, bool) {
	for _, t := range p.Teams {
		if t.Key == key {
			return t, true
		}
	}
	return models.Team{}, false
}

// ResolveTeam maps a key or nickname ("chi", "Bears", "red sox") to the
// canonical team key.
func (p *Profile) ResolveTeam(s string) (string, bool) {
	needle := normalizeTeamName(s)
	if needle == "" {
		return "", false
	}
	for _, t := range p.Teams {
		if t.Key == needle || normalizeTeamName(t.Nickname) == needle {
			return t.Key, true
		}
	}
	return "", false
}

// SameDivision reports whether two known teams share a division.
func (p *Profile) SameDivision(a, b string) bool {
	ta, okA := p.Team(a)
	tb, okB := p.Team(b)
	return okA && okB && ta.Division == tb.Division
}

// StatGroup returns the weighted stats used to value a position.
func (p *Profile) StatGroup(position string) []StatWeight {
	if group, ok := p.PositionGroups[strings.ToUpper(position)]; ok {
		if weights, ok := p.StatGroups[group]; ok {
			return weights
		}
	}
	return p.StatGroups[p.DefaultGroup]
}

// PositionScarcity returns how hard a position is to fill, in [0,1].
func (p *Profile) PositionScarcity(position string) float64 {
	if v, ok := p.Scarcity[strings.ToUpper(position)]; ok {
		return v
	}
	return DefaultScarcity
}

// InOffseason reports whether t falls inside the sport's offseason window.
func (p *Profile) InOffseason(t time.Time) bool {
	return p.Offseason.Contains(t)
}

func normalizeTeamName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
