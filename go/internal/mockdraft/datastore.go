package mockdraft

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/chisports/gmengine/go/internal/models"
)

// DataStore serves draft order, prospects and needs from the tables
// tools/seed_draftdata loads. It is used when no draft-data endpoint is
// configured.
type DataStore struct {
	db *sql.DB
}

func NewDataStore(db *sql.DB) *DataStore {
	return &DataStore{db: db}
}

func (s *DataStore) PickOrder(ctx context.Context, sport models.Sport, year int) ([]models.DraftOrderEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pick_number, round, team_key FROM draft_order
		WHERE sport = $1 AND draft_year = $2 ORDER BY pick_number`, string(sport), year)
	if err != nil {
		return nil, fmt.Errorf("failed to query draft order: %w", err)
	}
	defer rows.Close()

	var order []models.DraftOrderEntry
	for rows.Next() {
		var e models.DraftOrderEntry
		if err := rows.Scan(&e.PickNumber, &e.Round, &e.TeamKey); err != nil {
			return nil, fmt.Errorf("failed to scan draft order: %w", err)
		}
		order = append(order, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("no %s %d draft order loaded", sport, year)
	}
	return order, nil
}

func (s *DataStore) ProspectBoard(ctx context.Context, sport models.Sport, year int) ([]models.Prospect, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, position, school, consensus_rank, grade, risk FROM draft_prospects
		WHERE sport = $1 AND draft_year = $2 ORDER BY consensus_rank`, string(sport), year)
	if err != nil {
		return nil, fmt.Errorf("failed to query prospects: %w", err)
	}
	defer rows.Close()

	var board []models.Prospect
	for rows.Next() {
		var (
			p    models.Prospect
			risk string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Position, &p.School, &p.ConsensusRank, &p.Grade, &risk); err != nil {
			return nil, fmt.Errorf("failed to scan prospect: %w", err)
		}
		p.Risk = models.RiskTag(risk)
		board = append(board, p)
	}
	return board, rows.Err()
}

// TeamNeeds returns no needs for a team without a row.
func (s *DataStore) TeamNeeds(ctx context.Context, sport models.Sport, teamKey string) ([]string, error) {
	var positions pq.StringArray
	err := s.db.QueryRowContext(ctx,
		`SELECT positions FROM team_needs WHERE sport = $1 AND team_key = $2`, string(sport), teamKey).
		Scan(&positions)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get team needs: %w", err)
	}
	return []string(positions), nil
}
