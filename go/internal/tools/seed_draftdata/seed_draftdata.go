package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chisports/gmengine/go/internal/dbconfig"
	"github.com/chisports/gmengine/go/internal/models"
	_ "github.com/chisports/gmengine/go/internal/sports/all"
	"github.com/chisports/gmengine/go/internal/sports/base"
)

// DraftFile is one sport's draft class. An empty order is generated from
// the sport profile: every team once per round, in profile order.
type DraftFile struct {
	Sport     string                   `json:"sport"`
	Year      int                      `json:"draft_year"`
	Order     []models.DraftOrderEntry `json:"order"`
	Prospects []models.Prospect        `json:"prospects"`
	Needs     map[string][]string      `json:"needs"`
}

func main() {
	path := flag.String("file", "go/internal/assets/draft_class.json", "draft class JSON file")
	flag.Parse()
	ctx := context.Background()

	// 1) Load the draft class
	data, err := os.ReadFile(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", *path, err)
		os.Exit(1)
	}
	var file DraftFile
	if err := json.Unmarshal(data, &file); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal draft class: %v\n", err)
		os.Exit(1)
	}
	sport, err := models.ParseSport(file.Sport)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if len(file.Order) == 0 {
		plugin, err := base.GetPlugin(string(sport))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		file.Order = generateOrder(plugin.Profile())
	}

	// 2) Connect to DB
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect error: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Replace the class in one transaction
	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		return seed(ctx, tx, sport, file)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf(
		"Draft data seed: sport=%s year=%d picks=%d prospects=%d needs=%d\n",
		sport, file.Year, len(file.Order), len(file.Prospects), len(file.Needs),
	)
}

func seed(ctx context.Context, tx pgx.Tx, sport models.Sport, file DraftFile) error {
	if _, err := tx.Exec(ctx, `DELETE FROM draft_order WHERE sport = $1 AND draft_year = $2`, string(sport), file.Year); err != nil {
		return fmt.Errorf("clear draft order: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM draft_prospects WHERE sport = $1 AND draft_year = $2`, string(sport), file.Year); err != nil {
		return fmt.Errorf("clear prospects: %w", err)
	}

	orderRows := make([][]any, 0, len(file.Order))
	for _, e := range file.Order {
		orderRows = append(orderRows, []any{string(sport), file.Year, e.PickNumber, e.Round, e.TeamKey})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"draft_order"},
		[]string{"sport", "draft_year", "pick_number", "round", "team_key"},
		pgx.CopyFromRows(orderRows)); err != nil {
		return fmt.Errorf("copy draft order: %w", err)
	}

	prospectRows := make([][]any, 0, len(file.Prospects))
	for _, p := range file.Prospects {
		risk := p.Risk
		if risk == "" {
			risk = models.RiskMedium
		}
		prospectRows = append(prospectRows, []any{string(sport), file.Year, p.ID, p.Name, p.Position, p.School, p.ConsensusRank, p.Grade, string(risk)})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"draft_prospects"},
		[]string{"sport", "draft_year", "id", "name", "position", "school", "consensus_rank", "grade", "risk"},
		pgx.CopyFromRows(prospectRows)); err != nil {
		return fmt.Errorf("copy prospects: %w", err)
	}

	batch := &pgx.Batch{}
	for team, positions := range file.Needs {
		batch.Queue(`
            INSERT INTO team_needs (sport, team_key, positions) VALUES ($1, $2, $3)
            ON CONFLICT (sport, team_key) DO UPDATE SET positions = EXCLUDED.positions
        `, string(sport), team, positions)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("upsert team needs: %w", err)
		}
	}
	return nil
}

func generateOrder(p *base.Profile) []models.DraftOrderEntry {
	order := make([]models.DraftOrderEntry, 0, p.TotalPicks())
	for round := 1; round <= p.Rounds; round++ {
		for _, t := range p.Teams {
			order = append(order, models.DraftOrderEntry{PickNumber: len(order) + 1, Round: round, TeamKey: t.Key})
		}
	}
	return order
}
