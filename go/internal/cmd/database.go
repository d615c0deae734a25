package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/chisports/gmengine/go/internal/dbconfig"
	"github.com/chisports/gmengine/go/internal/dbschema"
)

// setupDatabase opens Postgres, applies the schema and returns the DSN the
// outbox listener needs for its own connection.
func setupDatabase(ctx context.Context) (*sql.DB, string, error) {
	dbConfig := dbconfig.NewConfigFromEnv()

	database, err := dbConfig.Open(ctx)
	if err != nil {
		return nil, "", err
	}
	if getEnvAsInt("DB_APPLY_SCHEMA", 1) == 1 {
		if err := dbschema.Apply(ctx, database); err != nil {
			database.Close()
			return nil, "", fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	log.Info().
		Str("user", dbConfig.User).
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("connected to database")
	return database, dbConfig.DSN(), nil
}
