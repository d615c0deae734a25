package mockdraft

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"

	"github.com/chisports/gmengine/go/internal/apperr"
	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/outbox"
	"github.com/chisports/gmengine/go/internal/sqlutil"
)

// Repository stores mock drafts and their slots in Postgres.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type queries struct {
	db     sqlutil.DBTX
	outbox *outbox.Repository
}

func newQueries(db sqlutil.DBTX) *queries {
	return &queries{db: db, outbox: outbox.NewRepository(db)}
}

// draftRow is the header shape create_mock_draft reads.
type draftRow struct {
	ID               uuid.UUID         `json:"id"`
	UserID           string            `json:"user_id"`
	Franchise        string            `json:"franchise"`
	Sport            models.Sport      `json:"sport"`
	DraftYear        int               `json:"draft_year"`
	TotalPicks       int               `json:"total_picks"`
	CurrentPickIndex int               `json:"current_pick_index"`
	Status           string            `json:"status"`
	TeamNeeds        []string          `json:"team_needs"`
	Board            []models.Prospect `json:"board"`
	CreatedAt        time.Time         `json:"created_at"`
}

func newDraftRow(d *models.MockDraft) draftRow {
	return draftRow{
		ID:               d.ID,
		UserID:           d.UserID,
		Franchise:        d.Franchise,
		Sport:            d.Sport,
		DraftYear:        d.DraftYear,
		TotalPicks:       d.TotalPicks,
		CurrentPickIndex: d.CurrentPickIndex,
		Status:           string(d.Status),
		TeamNeeds:        nonNil(d.TeamNeeds),
		Board:            d.Board,
		CreatedAt:        d.CreatedAt,
	}
}

// CreateViaProcedure inserts the draft and its slots with one
// create_mock_draft call.
func (r *Repository) CreateViaProcedure(ctx context.Context, d *models.MockDraft, event outbox.OutboxEvent) error {
	header, err := json.Marshal(newDraftRow(d))
	if err != nil {
		return fmt.Errorf("failed to marshal mock draft: %w", err)
	}
	slots, err := json.Marshal(d.Slots)
	if err != nil {
		return fmt.Errorf("failed to marshal slots: %w", err)
	}

	return sqlutil.Run(ctx, r.db, newQueries, func(q *queries) error {
		var id uuid.UUID
		if err := q.db.QueryRowContext(ctx, `SELECT create_mock_draft($1::jsonb, $2::jsonb)`, header, slots).Scan(&id); err != nil {
			return fmt.Errorf("create_mock_draft failed: %w", err)
		}
		return q.outbox.InsertOutboxEvent(ctx, event)
	})
}

const insertDraft = `
INSERT INTO mock_drafts (id, user_id, franchise, sport, draft_year, total_picks,
	current_pick_index, status, team_needs, board, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

const insertSlot = `
INSERT INTO mock_draft_slots (mock_draft_id, pick_number, round, owning_team,
	is_user_pick, selected_prospect, is_current)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// CreateViaInsert writes the same rows with plain statements in one
// transaction.
func (r *Repository) CreateViaInsert(ctx context.Context, d *models.MockDraft, event outbox.OutboxEvent) error {
	board, err := json.Marshal(d.Board)
	if err != nil {
		return fmt.Errorf("failed to marshal board: %w", err)
	}

	return sqlutil.Run(ctx, r.db, newQueries, func(q *queries) error {
		_, err := q.db.ExecContext(ctx, insertDraft,
			d.ID, d.UserID, d.Franchise, string(d.Sport), d.DraftYear, d.TotalPicks,
			d.CurrentPickIndex, string(d.Status), pq.Array(nonNil(d.TeamNeeds)), board, d.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert mock draft: %w", err)
		}
		for _, s := range d.Slots {
			selected, err := sqlutil.ToNullJSON(s.Selected)
			if err != nil {
				return err
			}
			if _, err := q.db.ExecContext(ctx, insertSlot,
				d.ID, s.PickNumber, s.Round, s.OwningTeam, s.IsUserPick, selected, s.IsCurrent); err != nil {
				return fmt.Errorf("failed to insert slot %d: %w", s.PickNumber, err)
			}
		}
		return q.outbox.InsertOutboxEvent(ctx, event)
	})
}

// LogCreateFailure records a draft no strategy could save.
func (r *Repository) LogCreateFailure(ctx context.Context, d *models.MockDraft, cause error) error {
	payload, err := sqlutil.ToNullJSON(newDraftRow(d))
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO mock_draft_errors (id, user_id, franchise, sport, draft_year, error, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())`,
		uuid.New(), d.UserID, d.Franchise, string(d.Sport), d.DraftYear, cause.Error(), payload)
	if err != nil {
		return fmt.Errorf("failed to insert mock draft error: %w", err)
	}
	return nil
}

const draftColumns = `id, user_id, franchise, sport, draft_year, total_picks, current_pick_index,
	status, is_reset, is_best, team_needs, board, scores, created_at, completed_at`

func (r *Repository) GetMockDraft(ctx context.Context, userID string, id uuid.UUID) (*models.MockDraft, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+draftColumns+` FROM mock_drafts WHERE id = $1 AND user_id = $2`, id, userID)
	d, err := scanDraft(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound()
		}
		return nil, fmt.Errorf("failed to get mock draft: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT pick_number, round, owning_team, is_user_pick, selected_prospect, is_current
		FROM mock_draft_slots WHERE mock_draft_id = $1 ORDER BY pick_number`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query slots: %w", err)
	}
	defer rows.Close()

	d.Slots = make([]models.DraftPickSlot, 0, d.TotalPicks)
	for rows.Next() {
		var (
			s        models.DraftPickSlot
			selected pqtype.NullRawMessage
		)
		if err := rows.Scan(&s.PickNumber, &s.Round, &s.OwningTeam, &s.IsUserPick, &selected, &s.IsCurrent); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		var p models.Prospect
		ok, err := sqlutil.FromNullJSON(selected, &p)
		if err != nil {
			return nil, err
		}
		if ok {
			s.Selected = &p
		}
		d.Slots = append(d.Slots, s)
	}
	return d, rows.Err()
}

// ListMockDrafts returns draft headers without slots, newest first.
func (r *Repository) ListMockDrafts(ctx context.Context, userID string) ([]models.MockDraft, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+draftColumns+` FROM mock_drafts WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mock drafts: %w", err)
	}
	defer rows.Close()

	var drafts []models.MockDraft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mock draft: %w", err)
		}
		d.Board = nil
		drafts = append(drafts, *d)
	}
	return drafts, rows.Err()
}

const advanceDraft = `
UPDATE mock_drafts
SET current_pick_index = $3, status = $4, scores = $5, completed_at = $6
WHERE id = $1 AND user_id = $2 AND current_pick_index = $7
	AND NOT is_reset AND status = 'in_progress'`

const updateSlot = `
UPDATE mock_draft_slots SET selected_prospect = $3, is_current = $4
WHERE mock_draft_id = $1 AND pick_number = $2`

// SaveProgress commits an advance. A draft that moved or was reset since it
// was read yields a precondition error and nothing is written.
func (r *Repository) SaveProgress(ctx context.Context, d *models.MockDraft, fromIndex int, changed []int, events []outbox.OutboxEvent) error {
	scores, err := sqlutil.ToNullJSON(d.Scores)
	if err != nil {
		return err
	}

	return sqlutil.Run(ctx, r.db, newQueries, func(q *queries) error {
		res, err := q.db.ExecContext(ctx, advanceDraft,
			d.ID, d.UserID, d.CurrentPickIndex, string(d.Status), scores,
			sqlutil.ToSqlTime(d.CompletedAt), fromIndex)
		if err != nil {
			return fmt.Errorf("failed to update mock draft: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if n == 0 {
			return apperr.Precondition(apperr.CodeNotCurrentPick, "mock draft changed since it was read")
		}

		for _, i := range changed {
			s := d.Slots[i]
			selected, err := sqlutil.ToNullJSON(s.Selected)
			if err != nil {
				return err
			}
			if _, err := q.db.ExecContext(ctx, updateSlot, d.ID, s.PickNumber, selected, s.IsCurrent); err != nil {
				return fmt.Errorf("failed to update slot %d: %w", s.PickNumber, err)
			}
		}
		for _, event := range events {
			if err := q.outbox.InsertOutboxEvent(ctx, event); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) MarkReset(ctx context.Context, userID string, id uuid.UUID, event outbox.OutboxEvent) error {
	return sqlutil.Run(ctx, r.db, newQueries, func(q *queries) error {
		res, err := q.db.ExecContext(ctx,
			`UPDATE mock_drafts SET is_reset = TRUE, is_best = FALSE WHERE id = $1 AND user_id = $2`, id, userID)
		if err != nil {
			return fmt.Errorf("failed to reset mock draft: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if n == 0 {
			return apperr.NotFound()
		}
		return q.outbox.InsertOutboxEvent(ctx, event)
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDraft(s scanner) (*models.MockDraft, error) {
	var (
		d           models.MockDraft
		sport       string
		status      string
		needs       pq.StringArray
		board       []byte
		scores      pqtype.NullRawMessage
		completedAt sql.NullTime
	)
	err := s.Scan(&d.ID, &d.UserID, &d.Franchise, &sport, &d.DraftYear, &d.TotalPicks,
		&d.CurrentPickIndex, &status, &d.IsReset, &d.IsBest, &needs, &board, &scores,
		&d.CreatedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	d.Sport = models.Sport(sport)
	d.Status = models.MockDraftStatus(status)
	d.TeamNeeds = []string(needs)
	d.CompletedAt = sqlutil.FromSqlTime(completedAt)
	if err := json.Unmarshal(board, &d.Board); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board: %w", err)
	}
	var sc models.MockDraftScores
	ok, err := sqlutil.FromNullJSON(scores, &sc)
	if err != nil {
		return nil, err
	}
	if ok {
		d.Scores = &sc
	}
	return &d, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
