package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	fortserr "github.com/amterp/forts/internal/errors"
	"github.com/amterp/forts/internal/id"
	"github.com/amterp/forts/internal/model"
)

// dialect captures the differences between the SQL backends.
type dialect struct {
	name        string
	driver      string
	placeholder func(n int) string
}

var (
	postgresDialect = dialect{
		name:        "postgres",
		driver:      "pgx",
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	}
	sqliteDialect = dialect{
		name:        "sqlite",
		driver:      "sqlite",
		placeholder: func(int) string { return "?" },
	}
)

// schema is valid for both Postgres and SQLite.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS forts (
		id                 TEXT PRIMARY KEY,
		name               TEXT NOT NULL,
		type               TEXT NOT NULL,
		district           TEXT NOT NULL,
		region             TEXT NOT NULL,
		elevation          TEXT NOT NULL DEFAULT '',
		period             TEXT NOT NULL DEFAULT '',
		built_by           TEXT NOT NULL DEFAULT '',
		significance       TEXT NOT NULL DEFAULT '',
		current_status     TEXT NOT NULL DEFAULT '',
		best_time_to_visit TEXT NOT NULL DEFAULT '',
		trek_difficulty    TEXT NOT NULL,
		entrance_fee       TEXT NOT NULL DEFAULT '',
		img                TEXT NOT NULL DEFAULT '[]',
		created_at_millis  BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS forts_name_idx ON forts (name)`,
}

const fortColumns = `id, name, type, district, region, elevation, period, built_by,
	significance, current_status, best_time_to_visit, trek_difficulty,
	entrance_fee, img, created_at_millis`

// SQLFortStore implements FortStore over database/sql.
type SQLFortStore struct {
	db      *sql.DB
	dialect dialect
	ids     id.Generator
	now     func() time.Time
	logger  *zap.Logger
}

func newSQLFortStore(db *sql.DB, d dialect, logger *zap.Logger) *SQLFortStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLFortStore{
		db:      db,
		dialect: d,
		ids:     id.NewFlexGenerator(),
		now:     time.Now,
		logger:  logger.With(zap.String("store", d.name)),
	}
}

// DB exposes the underlying handle for tests.
func (s *SQLFortStore) DB() *sql.DB { return s.db }

// Dialect returns "postgres" or "sqlite".
func (s *SQLFortStore) Dialect() string { return s.dialect.name }

// Migrate creates the forts table and its index if they are missing.
func (s *SQLFortStore) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fortserr.StoreFailed("migrate", err)
		}
	}
	s.logger.Debug("schema applied")
	return nil
}

// List returns all forts ordered by name.
func (s *SQLFortStore) List(ctx context.Context) ([]*model.Fort, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+fortColumns+` FROM forts ORDER BY name, id`)
	if err != nil {
		return nil, fortserr.StoreFailed("list", err)
	}
	defer func() { _ = rows.Close() }()

	forts := []*model.Fort{}
	for rows.Next() {
		f, err := scanFort(rows)
		if err != nil {
			return nil, fortserr.StoreFailed("list", err)
		}
		forts = append(forts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fortserr.StoreFailed("list", err)
	}
	return forts, nil
}

// Get returns one fort by ID.
func (s *SQLFortStore) Get(ctx context.Context, fortID string) (*model.Fort, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+fortColumns+` FROM forts WHERE id = `+s.dialect.placeholder(1), fortID)
	f, err := scanFort(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fortserr.FortNotFound(fortID)
	}
	if err != nil {
		return nil, fortserr.StoreFailed("get", err)
	}
	return f, nil
}

// Insert stores a validated draft.
func (s *SQLFortStore) Insert(ctx context.Context, draft *model.FortDraft) (*model.Fort, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	f := newRecord(s.ids, s.now, draft)
	img, err := json.Marshal(f.Images)
	if err != nil {
		return nil, fortserr.StoreFailed("insert", err)
	}

	placeholders := make([]string, 15)
	for i := range placeholders {
		placeholders[i] = s.dialect.placeholder(i + 1)
	}
	query := `INSERT INTO forts (` + fortColumns + `) VALUES (` + strings.Join(placeholders, ", ") + `)`

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fortserr.StoreFailed("insert", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, query,
		f.ID, f.Name, string(f.Type), f.District, string(f.Region), f.Elevation,
		f.Period, f.BuiltBy, f.Significance, f.CurrentStatus, f.BestTimeToVisit,
		string(f.TrekDifficulty), f.EntranceFee, string(img), f.CreatedAtMillis,
	); err != nil {
		return nil, fortserr.StoreFailed("insert", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fortserr.StoreFailed("insert", err)
	}
	committed = true

	s.logger.Debug("fort inserted", zap.String("id", f.ID), zap.String("name", f.Name))
	return f, nil
}

// Delete removes one fort by ID.
func (s *SQLFortStore) Delete(ctx context.Context, fortID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM forts WHERE id = `+s.dialect.placeholder(1), fortID)
	if err != nil {
		return fortserr.StoreFailed("delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fortserr.StoreFailed("delete", err)
	}
	if n == 0 {
		return fortserr.FortNotFound(fortID)
	}
	s.logger.Debug("fort deleted", zap.String("id", fortID))
	return nil
}

// Close closes the database handle.
func (s *SQLFortStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFort(sc scanner) (*model.Fort, error) {
	var (
		f                      model.Fort
		fortType, region, diff string
		img                    string
	)
	if err := sc.Scan(
		&f.ID, &f.Name, &fortType, &f.District, &region, &f.Elevation,
		&f.Period, &f.BuiltBy, &f.Significance, &f.CurrentStatus, &f.BestTimeToVisit,
		&diff, &f.EntranceFee, &img, &f.CreatedAtMillis,
	); err != nil {
		return nil, err
	}
	f.Type = model.FortType(fortType)
	f.Region = model.Region(region)
	f.TrekDifficulty = model.TrekDifficulty(diff)

	f.Images = []string{}
	if img != "" {
		if err := json.Unmarshal([]byte(img), &f.Images); err != nil {
			return nil, fmt.Errorf("decode img for %s: %w", f.ID, err)
		}
	}
	return &f, nil
}
