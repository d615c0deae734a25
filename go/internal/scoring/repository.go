package scoring

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/chisports/gmengine/go/internal/apperr"
	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/outbox"
	"github.com/chisports/gmengine/go/internal/sqlutil"
)

// Repository reads trade and mock draft history and stores score snapshots.
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

func (r *Repository) AcceptedTradeGrades(ctx context.Context, userID string) ([]float64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT grade FROM trades WHERE user_id = $1 AND status = 'accepted' ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade grades: %w", err)
	}
	defer rows.Close()

	var grades []float64
	for rows.Next() {
		var g float64
		if err := rows.Scan(&g); err != nil {
			return nil, fmt.Errorf("failed to scan grade: %w", err)
		}
		grades = append(grades, g)
	}
	return grades, rows.Err()
}

const mockSummaryColumns = `id, status, is_reset, is_best, (scores->>'mock_score')::DOUBLE PRECISION`

func (r *Repository) MockSummaries(ctx context.Context, userID string) ([]MockSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+mockSummaryColumns+` FROM mock_drafts WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mock drafts: %w", err)
	}
	defer rows.Close()

	var out []MockSummary
	for rows.Next() {
		m, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mock draft: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *Repository) GetMockSummary(ctx context.Context, userID string, id uuid.UUID) (*MockSummary, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+mockSummaryColumns+` FROM mock_drafts WHERE id = $1 AND user_id = $2`, id, userID)
	m, err := scanSummary(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound()
		}
		return nil, fmt.Errorf("failed to get mock draft: %w", err)
	}
	return m, nil
}

// SetBestMockDraft swaps the best-of-three flag. The conditional update
// guards against a reset or flag change racing the caller's checks.
func (r *Repository) SetBestMockDraft(ctx context.Context, userID string, id uuid.UUID) error {
	return sqlutil.Run(ctx, r.db, newQueries, func(q *queries) error {
		if _, err := q.db.ExecContext(ctx,
			`UPDATE mock_drafts SET is_best = FALSE WHERE user_id = $1 AND is_best`, userID); err != nil {
			return fmt.Errorf("failed to clear best mock draft: %w", err)
		}
		res, err := q.db.ExecContext(ctx, `
			UPDATE mock_drafts SET is_best = TRUE
			WHERE id = $1 AND user_id = $2 AND status = 'completed' AND NOT is_reset`, id, userID)
		if err != nil {
			return fmt.Errorf("failed to set best mock draft: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if n == 0 {
			return apperr.Precondition(apperr.CodeDraftReset, "mock draft is no longer eligible")
		}
		return nil
	})
}

const scoreColumns = `user_id, best_trade_score, best_mock_draft_score, best_mock_draft_id,
	trade_count, mock_count, trade_weight, mock_weight, combined_score, computed_at`

func (r *Repository) GetUserScore(ctx context.Context, userID string) (*models.UserScore, error) {
	var (
		s       models.UserScore
		trade   sql.NullFloat64
		mock    sql.NullFloat64
		mockID  uuid.NullUUID
		combine sql.NullFloat64
	)
	err := r.db.QueryRowContext(ctx, `SELECT `+scoreColumns+` FROM user_scores WHERE user_id = $1`, userID).
		Scan(&s.UserID, &trade, &mock, &mockID, &s.TradeCount, &s.MockCount,
			&s.TradeWeight, &s.MockWeight, &combine, &s.ComputedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound()
		}
		return nil, fmt.Errorf("failed to get user score: %w", err)
	}
	s.BestTradeScore = sqlutil.FromNullFloat64(trade)
	s.BestMockDraftScore = sqlutil.FromNullFloat64(mock)
	s.BestMockDraftID = sqlutil.FromNullUUID(mockID)
	s.CombinedScore = sqlutil.FromNullFloat64(combine)
	return &s, nil
}

const upsertScore = `
INSERT INTO user_scores (` + scoreColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (user_id) DO UPDATE SET
	best_trade_score = EXCLUDED.best_trade_score,
	best_mock_draft_score = EXCLUDED.best_mock_draft_score,
	best_mock_draft_id = EXCLUDED.best_mock_draft_id,
	trade_count = EXCLUDED.trade_count,
	mock_count = EXCLUDED.mock_count,
	trade_weight = EXCLUDED.trade_weight,
	mock_weight = EXCLUDED.mock_weight,
	combined_score = EXCLUDED.combined_score,
	computed_at = EXCLUDED.computed_at`

func (r *Repository) SaveUserScore(ctx context.Context, s *models.UserScore, event outbox.OutboxEvent) error {
	return sqlutil.Run(ctx, r.db, newQueries, func(q *queries) error {
		_, err := q.db.ExecContext(ctx, upsertScore,
			s.UserID, sqlutil.ToNullFloat64(s.BestTradeScore), sqlutil.ToNullFloat64(s.BestMockDraftScore),
			sqlutil.ToNullUUID(s.BestMockDraftID), s.TradeCount, s.MockCount,
			s.TradeWeight, s.MockWeight, sqlutil.ToNullFloat64(s.CombinedScore), s.ComputedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert user score: %w", err)
		}
		return q.outbox.InsertOutboxEvent(ctx, event)
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(s scanner) (*MockSummary, error) {
	var (
		m      MockSummary
		status string
		score  sql.NullFloat64
	)
	if err := s.Scan(&m.ID, &status, &m.IsReset, &m.IsBest, &score); err != nil {
		return nil, err
	}
	m.Status = models.MockDraftStatus(status)
	m.MockScore = sqlutil.FromNullFloat64(score)
	return &m, nil
}
