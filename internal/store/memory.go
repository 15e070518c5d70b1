package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	fortserr "github.com/amterp/forts/internal/errors"
	"github.com/amterp/forts/internal/id"
	"github.com/amterp/forts/internal/model"
)

// MemoryFortStore keeps records in process. It backs tests and the
// "memory" driver for demos.
type MemoryFortStore struct {
	mu    sync.Mutex
	forts map[string]*model.Fort
	ids   id.Generator
	now   func() time.Time

	failNext error
}

// NewMemoryFortStore creates a store seeded with copies of seed.
func NewMemoryFortStore(seed ...*model.Fort) *MemoryFortStore {
	s := &MemoryFortStore{
		forts: make(map[string]*model.Fort, len(seed)),
		ids:   id.NewFlexGenerator(),
		now:   time.Now,
	}
	for _, f := range seed {
		s.forts[f.ID] = f.Clone()
	}
	return s
}

// FailNext makes the next store call return err. Used to exercise failure paths.
func (s *MemoryFortStore) FailNext(err error) {
	s.mu.Lock()
	s.failNext = err
	s.mu.Unlock()
}

func (s *MemoryFortStore) takeFailure(op string) error {
	if s.failNext == nil {
		return nil
	}
	err := s.failNext
	s.failNext = nil
	return fortserr.StoreFailed(op, err)
}

// List returns copies of all forts ordered by name.
func (s *MemoryFortStore) List(ctx context.Context) ([]*model.Fort, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("list"); err != nil {
		return nil, err
	}

	forts := make([]*model.Fort, 0, len(s.forts))
	for _, f := range s.forts {
		forts = append(forts, f.Clone())
	}
	slices.SortFunc(forts, func(a, b *model.Fort) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return forts, nil
}

// Get returns a copy of one fort.
func (s *MemoryFortStore) Get(ctx context.Context, fortID string) (*model.Fort, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("get"); err != nil {
		return nil, err
	}
	f, ok := s.forts[fortID]
	if !ok {
		return nil, fortserr.FortNotFound(fortID)
	}
	return f.Clone(), nil
}

// Insert stores a validated draft.
func (s *MemoryFortStore) Insert(ctx context.Context, draft *model.FortDraft) (*model.Fort, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("insert"); err != nil {
		return nil, err
	}
	f := newRecord(s.ids, s.now, draft)
	s.forts[f.ID] = f
	return f.Clone(), nil
}

// Delete removes one fort.
func (s *MemoryFortStore) Delete(ctx context.Context, fortID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("delete"); err != nil {
		return err
	}
	if _, ok := s.forts[fortID]; !ok {
		return fortserr.FortNotFound(fortID)
	}
	delete(s.forts, fortID)
	return nil
}

// Migrate is a no-op; the memory store has no schema.
func (s *MemoryFortStore) Migrate(ctx context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryFortStore) Close() error { return nil }
