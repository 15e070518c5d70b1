package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fortserr "github.com/amterp/forts/internal/errors"
	"github.com/amterp/forts/internal/model"
	"github.com/amterp/forts/testutil"
)

// storeCase runs the same contract against every backend that needs no
// external service.
type storeCase struct {
	name string
	open func(t *testing.T) FortStore
}

func backends() []storeCase {
	return []storeCase{
		{"memory", func(t *testing.T) FortStore { return NewMemoryFortStore() }},
		{"sqlite", func(t *testing.T) FortStore {
			dir, cleanup := testutil.TempDir(t)
			t.Cleanup(cleanup)
			s, err := Open(context.Background(), Options{Driver: DriverSQLite, Path: filepath.Join(dir, "data", "forts.db")}, true, nil)
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		}},
	}
}

func mustDraft(t *testing.T, name string) *model.FortDraft {
	t.Helper()
	d, err := model.NewDraft(testutil.ValidForm(name))
	require.NoError(t, err)
	return d
}

func TestFortStore_InsertAndGet(t *testing.T) {
	for _, bc := range backends() {
		t.Run(bc.name, func(t *testing.T) {
			s := bc.open(t)
			ctx := context.Background()

			created, err := s.Insert(ctx, mustDraft(t, "Pratapgad"))
			require.NoError(t, err)
			assert.NotEmpty(t, created.ID)
			assert.NotZero(t, created.CreatedAtMillis)
			assert.Equal(t, []string{}, created.Images)

			got, err := s.Get(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, created, got)
			assert.Equal(t, model.HillFort, got.Type)
			assert.Equal(t, model.WesternMaharashtra, got.Region)
			assert.Equal(t, model.Easy, got.TrekDifficulty)
		})
	}
}

func TestFortStore_ListOrderedByName(t *testing.T) {
	for _, bc := range backends() {
		t.Run(bc.name, func(t *testing.T) {
			s := bc.open(t)
			ctx := context.Background()

			for _, name := range []string{"Sinhagad", "Raigad", "Lohagad"} {
				_, err := s.Insert(ctx, mustDraft(t, name))
				require.NoError(t, err)
			}

			forts, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, forts, 3)
			assert.Equal(t, "Lohagad", forts[0].Name)
			assert.Equal(t, "Raigad", forts[1].Name)
			assert.Equal(t, "Sinhagad", forts[2].Name)
		})
	}
}

func TestFortStore_EmptyListIsNotNil(t *testing.T) {
	for _, bc := range backends() {
		t.Run(bc.name, func(t *testing.T) {
			forts, err := bc.open(t).List(context.Background())
			require.NoError(t, err)
			assert.NotNil(t, forts)
			assert.Empty(t, forts)
		})
	}
}

func TestFortStore_DistinctIDs(t *testing.T) {
	for _, bc := range backends() {
		t.Run(bc.name, func(t *testing.T) {
			s := bc.open(t)
			seen := map[string]bool{}
			for i := 0; i < 20; i++ {
				f, err := s.Insert(context.Background(), mustDraft(t, "Fort"))
				require.NoError(t, err)
				assert.False(t, seen[f.ID])
				seen[f.ID] = true
			}
		})
	}
}

func TestFortStore_Delete(t *testing.T) {
	for _, bc := range backends() {
		t.Run(bc.name, func(t *testing.T) {
			s := bc.open(t)
			ctx := context.Background()

			f, err := s.Insert(ctx, mustDraft(t, "Torna"))
			require.NoError(t, err)

			require.NoError(t, s.Delete(ctx, f.ID))

			_, err = s.Get(ctx, f.ID)
			assert.True(t, fortserr.IsNotFound(err))

			// A second delete of the same ID fails.
			err = s.Delete(ctx, f.ID)
			assert.True(t, fortserr.IsNotFound(err))
		})
	}
}

func TestFortStore_GetMissing(t *testing.T) {
	for _, bc := range backends() {
		t.Run(bc.name, func(t *testing.T) {
			_, err := bc.open(t).Get(context.Background(), "nope")
			var nf *fortserr.NotFoundError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, "nope", nf.ID)
		})
	}
}

func TestFortStore_InsertRejectsInvalidDraft(t *testing.T) {
	for _, bc := range backends() {
		t.Run(bc.name, func(t *testing.T) {
			s := bc.open(t)
			draft := mustDraft(t, "Rajgad")
			draft.Type = model.AnyType

			_, err := s.Insert(context.Background(), draft)
			assert.True(t, fortserr.IsValidationError(err))

			forts, err := s.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, forts)
		})
	}
}

func TestSQLFortStore_ImagesRoundTrip(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()
	ctx := context.Background()

	s, err := OpenSQLite(ctx, filepath.Join(dir, "forts.db"), nil)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Migrate(ctx))
	require.Equal(t, "sqlite", s.Dialect())

	_, err = s.DB().ExecContext(ctx,
		`INSERT INTO forts (id, name, type, district, region, trek_difficulty, img, created_at_millis)
		 VALUES ('r1', 'Raigad', 'Hill Fort', 'Raigad', 'Konkan', 'Moderate', ?, 1)`,
		`["https://upload.wikimedia.org/a.jpg","https://upload.wikimedia.org/b.jpg"]`)
	require.NoError(t, err)

	f, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://upload.wikimedia.org/a.jpg", "https://upload.wikimedia.org/b.jpg"}, f.Images)
	assert.Empty(t, f.EntranceFee)
}

func TestSQLFortStore_MigrateIsIdempotent(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()
	ctx := context.Background()

	s, err := OpenSQLite(ctx, filepath.Join(dir, "forts.db"), nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.Migrate(ctx))
}

func TestSQLFortStore_CreatedAtUsesClock(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()
	ctx := context.Background()

	s, err := OpenSQLite(ctx, filepath.Join(dir, "forts.db"), nil)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Migrate(ctx))
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }

	f, err := s.Insert(ctx, mustDraft(t, "Purandar"))
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), f.CreatedAtMillis)
}

func TestMemoryFortStore_FailNext(t *testing.T) {
	s := NewMemoryFortStore(testutil.SampleSnapshot()...)
	s.FailNext(errors.New("boom"))

	err := s.Delete(context.Background(), "f1")
	assert.True(t, fortserr.IsStoreError(err))

	// Only the next call fails.
	forts, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, forts, 5)
}

func TestMemoryFortStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryFortStore(testutil.SampleSnapshot()...)

	f, err := s.Get(context.Background(), "f1")
	require.NoError(t, err)
	f.Images[0] = "changed"

	again, err := s.Get(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, "https://upload.wikimedia.org/raigad.jpg", again.Images[0])
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "mysql"}, false, nil)
	assert.ErrorIs(t, err, fortserr.ErrConfig)
}
