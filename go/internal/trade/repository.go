package trade

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"

	"github.com/chisports/gmengine/go/internal/apperr"
	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/outbox"
	"github.com/chisports/gmengine/go/internal/sqlutil"
)

// Repository stores trades in Postgres. Writes commit together with their
// outbox event.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// queries is the per-transaction view of the repository.
type queries struct {
	db     sqlutil.DBTX
	outbox *outbox.Repository
}

func newQueries(db sqlutil.DBTX) *queries {
	return &queries{db: db, outbox: outbox.NewRepository(db)}
}

const tradeColumns = `id, user_id, sport, proposing_team, partner_team, partner_2, sides, team_needs,
	status, grade, subscores, is_dangerous, rationale, warnings, trade_impact, created_at, decided_at`

const insertTrade = `
INSERT INTO trades (` + tradeColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

func (r *Repository) CreateTrade(ctx context.Context, t *models.Trade, event outbox.OutboxEvent) error {
	sides, err := json.Marshal(t.Sides)
	if err != nil {
		return fmt.Errorf("failed to marshal sides: %w", err)
	}
	subscores, err := json.Marshal(t.Subscores)
	if err != nil {
		return fmt.Errorf("failed to marshal subscores: %w", err)
	}
	needs, err := sqlutil.ToNullJSON(t.TeamNeeds)
	if err != nil {
		return err
	}
	impact, err := sqlutil.ToNullJSON(t.TradeImpact)
	if err != nil {
		return err
	}

	return sqlutil.Run(ctx, r.db, newQueries, func(q *queries) error {
		_, err := q.db.ExecContext(ctx, insertTrade,
			t.ID, t.UserID, string(t.Sport), t.ProposingTeam, t.PartnerTeam,
			sqlutil.ToSqlString(t.Partner2Team), sides, needs,
			string(t.Status), t.Grade, subscores, t.IsDangerous, t.Rationale,
			pq.Array(nonNil(t.Warnings)), impact, t.CreatedAt, sqlutil.ToSqlTime(t.DecidedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert trade: %w", err)
		}
		return q.outbox.InsertOutboxEvent(ctx, event)
	})
}

const decideTrade = `
UPDATE trades
SET status = $3, decided_at = $4, trade_impact = $5
WHERE id = $1 AND user_id = $2 AND status = 'proposed'`

// DecideTrade moves a proposed trade to its final status. A trade decided
// concurrently yields a precondition error.
func (r *Repository) DecideTrade(ctx context.Context, t *models.Trade, event outbox.OutboxEvent) error {
	impact, err := sqlutil.ToNullJSON(t.TradeImpact)
	if err != nil {
		return err
	}

	return sqlutil.Run(ctx, r.db, newQueries, func(q *queries) error {
		res, err := q.db.ExecContext(ctx, decideTrade,
			t.ID, t.UserID, string(t.Status), sqlutil.ToSqlTime(t.DecidedAt), impact)
		if err != nil {
			return fmt.Errorf("failed to update trade status: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if n == 0 {
			return apperr.Precondition(apperr.CodeTradeDecided, "trade was already decided")
		}
		return q.outbox.InsertOutboxEvent(ctx, event)
	})
}

func (r *Repository) GetTrade(ctx context.Context, userID string, id uuid.UUID) (*models.Trade, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tradeColumns+` FROM trades WHERE id = $1 AND user_id = $2`, id, userID)
	t, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound()
		}
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}
	return t, nil
}

func (r *Repository) ListTrades(ctx context.Context, userID string, filter ListTradesFilter) ([]models.Trade, error) {
	var (
		where = []string{"user_id = $1"}
		args  = []any{userID}
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Sport != "" {
		args = append(args, string(filter.Sport))
		where = append(where, fmt.Sprintf("sport = $%d", len(args)))
	}
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return r.queryTrades(ctx, query, args...)
}

func (r *Repository) GetTradesByIDs(ctx context.Context, userID string, ids []uuid.UUID) ([]models.Trade, error) {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	return r.queryTrades(ctx,
		`SELECT `+tradeColumns+` FROM trades WHERE user_id = $1 AND id = ANY($2::uuid[])`,
		userID, pq.Array(strs))
}

func (r *Repository) queryTrades(ctx context.Context, query string, args ...any) ([]models.Trade, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, *t)
	}
	return trades, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(s scanner) (*models.Trade, error) {
	var (
		t         models.Trade
		sport     string
		status    string
		partner2  sql.NullString
		sides     []byte
		subscores []byte
		needs     pqtype.NullRawMessage
		impact    pqtype.NullRawMessage
		warnings  pq.StringArray
		decidedAt sql.NullTime
	)
	err := s.Scan(&t.ID, &t.UserID, &sport, &t.ProposingTeam, &t.PartnerTeam, &partner2,
		&sides, &needs, &status, &t.Grade, &subscores, &t.IsDangerous, &t.Rationale,
		&warnings, &impact, &t.CreatedAt, &decidedAt)
	if err != nil {
		return nil, err
	}

	t.Sport = models.Sport(sport)
	t.Status = models.TradeStatus(status)
	t.Partner2Team = sqlutil.FromSqlString(partner2, "")
	t.DecidedAt = sqlutil.FromSqlTime(decidedAt)
	if len(warnings) > 0 {
		t.Warnings = []string(warnings)
	}
	if err := json.Unmarshal(sides, &t.Sides); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sides: %w", err)
	}
	if err := json.Unmarshal(subscores, &t.Subscores); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subscores: %w", err)
	}
	if _, err := sqlutil.FromNullJSON(needs, &t.TeamNeeds); err != nil {
		return nil, err
	}
	var ti models.TradeImpact
	ok, err := sqlutil.FromNullJSON(impact, &ti)
	if err != nil {
		return nil, err
	}
	if ok {
		t.TradeImpact = &ti
	}
	return &t, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
