package mockdraft

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/chisports/gmengine/go/internal/apperr"
	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/outbox"
)

// ErrNotSaved is returned by strategies that only record the failure.
var ErrNotSaved = errors.New("mock draft not saved")

// PersistStrategy is one way of writing a new draft. prior carries the
// failures of the strategies tried before it.
type PersistStrategy interface {
	Name() string
	Persist(ctx context.Context, d *models.MockDraft, event outbox.OutboxEvent, prior error) error
}

// Creator is the repository surface the default strategies need.
type Creator interface {
	CreateViaProcedure(ctx context.Context, d *models.MockDraft, event outbox.OutboxEvent) error
	CreateViaInsert(ctx context.Context, d *models.MockDraft, event outbox.OutboxEvent) error
	LogCreateFailure(ctx context.Context, d *models.MockDraft, cause error) error
}

type StoredProcedureStrategy struct{ repo Creator }

func (StoredProcedureStrategy) Name() string { return "stored_procedure" }

func (s StoredProcedureStrategy) Persist(ctx context.Context, d *models.MockDraft, event outbox.OutboxEvent, _ error) error {
	return s.repo.CreateViaProcedure(ctx, d, event)
}

type DirectInsertStrategy struct{ repo Creator }

func (DirectInsertStrategy) Name() string { return "direct_insert" }

func (s DirectInsertStrategy) Persist(ctx context.Context, d *models.MockDraft, event outbox.OutboxEvent, _ error) error {
	return s.repo.CreateViaInsert(ctx, d, event)
}

// ErrorLogStrategy never saves the draft; it records why the others failed.
type ErrorLogStrategy struct{ repo Creator }

func (ErrorLogStrategy) Name() string { return "error_log" }

func (s ErrorLogStrategy) Persist(ctx context.Context, d *models.MockDraft, _ outbox.OutboxEvent, prior error) error {
	if prior == nil {
		prior = ErrNotSaved
	}
	if err := s.repo.LogCreateFailure(ctx, d, prior); err != nil {
		return fmt.Errorf("failed to record mock draft failure: %w", err)
	}
	return ErrNotSaved
}

// DefaultStrategies is stored procedure, then direct insert, then error row.
func DefaultStrategies(repo Creator) []PersistStrategy {
	return []PersistStrategy{
		StoredProcedureStrategy{repo: repo},
		DirectInsertStrategy{repo: repo},
		ErrorLogStrategy{repo: repo},
	}
}

// persistNew tries each strategy in order until one succeeds.
func (a *App) persistNew(ctx context.Context, d *models.MockDraft, event outbox.OutboxEvent) error {
	var failures []error
	for _, s := range a.strategies {
		err := s.Persist(ctx, d, event, errors.Join(failures...))
		if a.metrics != nil {
			a.metrics.RecordPersistAttempt(s.Name(), err)
		}
		if err == nil {
			if len(failures) > 0 {
				log.Warn().
					Str("draft_id", d.ID.String()).
					Str("strategy", s.Name()).
					Int("failed_strategies", len(failures)).
					Msg("mock draft saved by fallback strategy")
			}
			return nil
		}
		log.Error().
			Err(err).
			Str("draft_id", d.ID.String()).
			Str("strategy", s.Name()).
			Msg("mock draft persist strategy failed")
		failures = append(failures, fmt.Errorf("%s: %w", s.Name(), err))
	}
	return apperr.Internal("failed to save mock draft", errors.Join(failures...))
}
