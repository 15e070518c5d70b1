// Package store persists fort records.
//
// The store is the only owner of persistent state. Readers get records
// ordered by name; writers hand in a validated draft and get back the stored
// record with its assigned ID and creation time.
package store

import (
	"context"

	"github.com/amterp/forts/internal/model"
)

// FortStore handles fort persistence.
type FortStore interface {
	// List returns every record ordered by name.
	List(ctx context.Context) ([]*model.Fort, error)
	// Get returns one record or a NotFoundError.
	Get(ctx context.Context, id string) (*model.Fort, error)
	// Insert validates the draft, assigns an ID and creation time, and
	// stores it.
	Insert(ctx context.Context, draft *model.FortDraft) (*model.Fort, error)
	// Delete removes one record. Deleting a missing ID is a NotFoundError.
	Delete(ctx context.Context, id string) error
	Close() error
}

// Migrator is implemented by stores that own a schema.
type Migrator interface {
	Migrate(ctx context.Context) error
}
