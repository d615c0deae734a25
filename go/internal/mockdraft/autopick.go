package mockdraft

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"

	"github.com/chisports/gmengine/go/internal/models"
)

// ErrBoardExhausted means no prospect is left to select.
var ErrBoardExhausted = errors.New("no available prospects")

// AutoPickStrategy chooses a prospect for a slot the user does not own.
type AutoPickStrategy interface {
	SelectProspect(ctx context.Context, slot models.DraftPickSlot, available []models.Prospect, needs []string) (models.Prospect, error)
}

// BestAvailableStrategy takes the best consensus-ranked prospect, but will
// reach up to NeedWindow spots down the board for a position of need.
type BestAvailableStrategy struct {
	NeedWindow int
}

func NewBestAvailableStrategy(needWindow int) *BestAvailableStrategy {
	if needWindow < 0 {
		needWindow = 0
	}
	return &BestAvailableStrategy{NeedWindow: needWindow}
}

func (s *BestAvailableStrategy) SelectProspect(_ context.Context, _ models.DraftPickSlot, available []models.Prospect, needs []string) (models.Prospect, error) {
	if len(available) == 0 {
		return models.Prospect{}, ErrBoardExhausted
	}
	ranked := slices.Clone(available)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].ConsensusRank < ranked[j].ConsensusRank })

	best := ranked[0]
	for _, p := range ranked {
		if p.ConsensusRank-best.ConsensusRank > s.NeedWindow {
			break
		}
		if containsPosition(needs, p.Position) {
			return p, nil
		}
	}
	return best, nil
}

func containsPosition(needs []string, position string) bool {
	for _, n := range needs {
		if strings.EqualFold(n, position) {
			return true
		}
	}
	return false
}
