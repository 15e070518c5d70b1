package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	fortserr "github.com/amterp/forts/internal/errors"
)

// Driver names accepted by Open.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Driver string
	DSN    string // postgres
	Path   string // sqlite
}

// Open returns the configured store. When migrate is true the schema is
// applied before returning.
func Open(ctx context.Context, opts Options, migrate bool, logger *zap.Logger) (FortStore, error) {
	var (
		s   FortStore
		err error
	)
	switch opts.Driver {
	case DriverPostgres:
		s, err = OpenPostgres(ctx, opts.DSN, logger)
	case DriverSQLite, "":
		s, err = OpenSQLite(ctx, opts.Path, logger)
	case DriverMemory:
		s = NewMemoryFortStore()
	default:
		return nil, &fortserr.ConfigError{Message: fmt.Sprintf("unknown store driver %q (want postgres, sqlite or memory)", opts.Driver)}
	}
	if err != nil {
		return nil, fortserr.StoreFailed("open", err)
	}

	if migrate {
		if m, ok := s.(Migrator); ok {
			if err := m.Migrate(ctx); err != nil {
				_ = s.Close()
				return nil, err
			}
		}
	}
	return s, nil
}
