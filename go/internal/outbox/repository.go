package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/chisports/gmengine/go/internal/sqlutil"
)

// ErrEventNotPending is returned when an event is missing or already sent.
var ErrEventNotPending = errors.New("outbox event not found or already sent")

type Repository struct {
	db sqlutil.DBTX
}

// NewRepository binds the repository to a *sql.DB or an open *sql.Tx.
func NewRepository(db sqlutil.DBTX) *Repository {
	return &Repository{db: db}
}

const insertOutbox = `
INSERT INTO gm_outbox (id, aggregate_id, event_type, payload, created_at)
VALUES ($1, $2, $3, $4, $5)`

func (r *Repository) InsertOutboxEvent(ctx context.Context, event OutboxEvent) error {
	_, err := r.db.ExecContext(ctx, insertOutbox,
		event.ID, event.AggregateID, event.EventType, []byte(event.Payload), event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert %s outbox event: %w", event.EventType, err)
	}
	return nil
}

const fetchUnsentOutbox = `
SELECT id, aggregate_id, event_type, payload, created_at, attempts
FROM gm_outbox
WHERE sent_at IS NULL
ORDER BY created_at
LIMIT $1`

func (r *Repository) FetchUnsentOutbox(ctx context.Context, limit int) ([]OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx, fetchUnsentOutbox, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	defer rows.Close()

	var events []OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		var payload []byte
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &payload, &e.CreatedAt, &e.Attempts); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		e.Payload = payload
		events = append(events, e)
	}
	return events, rows.Err()
}

const fetchOutboxByID = `
SELECT id, aggregate_id, event_type, payload, created_at, attempts
FROM gm_outbox
WHERE id = $1 AND sent_at IS NULL`

func (r *Repository) FetchOutboxByID(ctx context.Context, id uuid.UUID) (*OutboxEvent, error) {
	var e OutboxEvent
	var payload []byte
	err := r.db.QueryRowContext(ctx, fetchOutboxByID, id).
		Scan(&e.ID, &e.AggregateID, &e.EventType, &payload, &e.CreatedAt, &e.Attempts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotPending
		}
		return nil, fmt.Errorf("failed to fetch outbox event by ID: %w", err)
	}
	e.Payload = payload
	return &e, nil
}

func (r *Repository) MarkOutboxSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE gm_outbox SET sent_at = now() WHERE id = $1 AND sent_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox event as sent: %w", err)
	}
	return nil
}

func (r *Repository) MarkOutboxFailed(ctx context.Context, id uuid.UUID, cause string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE gm_outbox SET attempts = attempts + 1, last_error = $2 WHERE id = $1`, id, cause)
	if err != nil {
		return fmt.Errorf("failed to record outbox failure: %w", err)
	}
	return nil
}

func (r *Repository) CountUnsent(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM gm_outbox WHERE sent_at IS NULL`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count unsent outbox events: %w", err)
	}
	return n, nil
}
