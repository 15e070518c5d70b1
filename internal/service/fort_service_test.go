package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amterp/forts/internal/catalog"
	fortserr "github.com/amterp/forts/internal/errors"
	"github.com/amterp/forts/internal/flow"
	"github.com/amterp/forts/internal/metrics"
	"github.com/amterp/forts/internal/model"
	"github.com/amterp/forts/internal/store"
	fixtures "github.com/amterp/forts/testutil"
)

func setupTestService(t *testing.T) (*FortService, *store.MemoryFortStore, *metrics.Recorder) {
	t.Helper()
	st := store.NewMemoryFortStore(fixtures.SampleSnapshot()...)
	cache := catalog.NewSnapshotCache(st, time.Hour, nil)
	m := metrics.New()
	svc := NewFortService(st, cache, nil)
	svc.SetMetrics(m)
	return svc, st, m
}

func visibleIDs(p *catalog.Presenter) []string {
	var out []string
	for _, f := range p.Visible() {
		out = append(out, f.ID)
	}
	return out
}

func TestFortService_CreateThenRefreshShowsNewRecord(t *testing.T) {
	svc, _, m := setupTestService(t)
	ctx := context.Background()
	before := svc.List(ctx, model.NoFilter())
	require.Equal(t, 5, before.Total())

	res, err := svc.Create(ctx, fixtures.ValidForm("Pratapgad"), "token-1")

	require.NoError(t, err)
	assert.Equal(t, flow.Succeeded, res.Outcome.State)
	assert.Equal(t, flow.ListRoute, res.Outcome.Redirect)

	after := svc.List(ctx, model.NoFilter())
	assert.Equal(t, 6, after.Total())
	assert.Contains(t, visibleIDs(after), res.Fort.ID)
	assert.NotContains(t, visibleIDs(before), res.Fort.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Flows().WithLabelValues("create", "succeeded")))
}

func TestFortService_CreateInvalidNeverWrites(t *testing.T) {
	svc, st, _ := setupTestService(t)
	in := fixtures.ValidForm("X")
	in.Region = "Goa"

	_, err := svc.Create(context.Background(), in, "token-1")

	require.Error(t, err)
	assert.True(t, fortserr.IsValidationError(err))
	var verrs fortserr.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ByField()
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "region")

	forts, _ := st.List(context.Background())
	assert.Len(t, forts, 5)
}

func TestFortService_CreateStoreFailure(t *testing.T) {
	svc, st, _ := setupTestService(t)
	st.FailNext(errors.New("connection reset"))

	res, err := svc.Create(context.Background(), fixtures.ValidForm("Pratapgad"), "token-1")

	require.NoError(t, err)
	assert.Equal(t, flow.Failed, res.Outcome.State)
	assert.Empty(t, res.Outcome.Redirect)
	assert.Equal(t, "Failed to add fort. Please try again.", res.Outcome.Notification.Description)
	assert.Nil(t, res.Fort)
}

func TestFortService_FailedDeleteLeavesSnapshotUnchanged(t *testing.T) {
	svc, st, m := setupTestService(t)
	ctx := context.Background()
	c := model.ParseCriteria("", "", string(model.Konkan))
	before := visibleIDs(svc.List(ctx, c))
	st.FailNext(errors.New("permission denied"))

	out, err := svc.Delete(ctx, "f1", true)

	require.NoError(t, err)
	assert.Equal(t, flow.Failed, out.State)
	assert.True(t, out.Notification.Destructive)
	assert.Equal(t, "Error", out.Notification.Title)
	assert.Empty(t, out.Redirect)

	assert.Equal(t, before, visibleIDs(svc.List(ctx, c)))
	assert.Equal(t, 5, svc.List(ctx, model.NoFilter()).Total())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Flows().WithLabelValues("delete", "failed")))
}

func TestFortService_DeleteSuccessInvalidates(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()
	_ = svc.List(ctx, model.NoFilter())

	out, err := svc.Delete(ctx, "f2", true)

	require.NoError(t, err)
	assert.Equal(t, flow.Succeeded, out.State)
	assert.Equal(t, "The fort has been successfully deleted.", out.Notification.Description)
	assert.NotContains(t, visibleIDs(svc.List(ctx, model.NoFilter())), "f2")
}

func TestFortService_DeleteTwiceSecondFails(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()

	_, err := svc.Delete(ctx, "f3", true)
	require.NoError(t, err)
	out, err := svc.Delete(ctx, "f3", true)

	require.NoError(t, err)
	assert.Equal(t, flow.Failed, out.State)
	assert.True(t, fortserr.IsNotFound(out.Err))
}

func TestFortService_DeleteUnconfirmed(t *testing.T) {
	svc, st, _ := setupTestService(t)

	_, err := svc.Delete(context.Background(), "f1", false)

	assert.ErrorIs(t, err, flow.ErrNotConfirmed)
	_, getErr := st.Get(context.Background(), "f1")
	assert.NoError(t, getErr)
}

func TestFortService_DuplicateDeleteRejected(t *testing.T) {
	svc, _, _ := setupTestService(t)
	key := flow.DeleteKey("f1")

	// Hold the key as if another request were mid-delete.
	holder := flow.NewDeleteFlow(nil).WithGuard(svc.Guard(), key)
	require.NoError(t, holder.RequestConfirmation())
	_, err := holder.Submit(context.Background(), func(ctx context.Context) error {
		_, dupErr := svc.Delete(ctx, "f1", true)
		assert.ErrorIs(t, dupErr, flow.ErrInFlight)
		return nil
	})
	require.NoError(t, err)
}

func TestFortService_GetMissing(t *testing.T) {
	svc, _, _ := setupTestService(t)
	_, err := svc.Get(context.Background(), "missing")
	assert.True(t, fortserr.IsNotFound(err))
}

func TestSelectOptions(t *testing.T) {
	opts := SelectOptions()
	assert.Len(t, opts.Types, 3)
	assert.Len(t, opts.Regions, 5)
	assert.Len(t, opts.TrekDifficulties, 4)
	assert.Equal(t, "All", opts.AllLabel)
}
