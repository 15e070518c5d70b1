package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	"go.uber.org/zap"
)

// DefaultPostgresDSN is used when no DSN is configured.
const DefaultPostgresDSN = "postgres://localhost/forts?sslmode=disable"

// OpenPostgres connects to Postgres through pgx and pings it.
// The schema is not applied; call Migrate.
func OpenPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*SQLFortStore, error) {
	if dsn == "" {
		dsn = DefaultPostgresDSN
	}
	db, err := sql.Open(postgresDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return newSQLFortStore(db, postgresDialect, logger), nil
}
