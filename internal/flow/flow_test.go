package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCreateFlow_Success(t *testing.T) {
	refreshed := 0
	f := NewCreateFlow(func() { refreshed++ })
	assert.Equal(t, "Add Fort", f.Label())

	out, err := f.Submit(context.Background(), func(ctx context.Context) error { return nil })

	require.NoError(t, err)
	assert.Equal(t, Succeeded, out.State)
	assert.Equal(t, Succeeded, f.State())
	assert.Equal(t, ListRoute, out.Redirect)
	assert.Equal(t, Notification{Title: "Success", Description: "Fort has been added successfully."}, out.Notification)
	assert.Equal(t, 1, refreshed)
}

func TestCreateFlow_FailureReturnsToIdle(t *testing.T) {
	refreshed := 0
	f := NewCreateFlow(func() { refreshed++ })
	boom := errors.New("insert failed")

	out, err := f.Submit(context.Background(), func(ctx context.Context) error { return boom })

	require.NoError(t, err)
	assert.Equal(t, Failed, out.State)
	assert.Equal(t, Idle, f.State())
	assert.Empty(t, out.Redirect)
	assert.True(t, out.Notification.Destructive)
	assert.Equal(t, "Failed to add fort. Please try again.", out.Notification.Description)
	assert.ErrorIs(t, out.Err, boom)
	assert.Zero(t, refreshed)

	// Manual retry is allowed.
	out, err = f.Submit(context.Background(), func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, Succeeded, out.State)
}

func TestFlow_RejectsDuplicateWhileSubmitting(t *testing.T) {
	f := NewCreateFlow(nil)
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan Outcome)

	go func() {
		out, _ := f.Submit(context.Background(), func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
		done <- out
	}()

	<-started
	assert.Equal(t, Submitting, f.State())
	assert.True(t, f.Disabled())
	assert.Equal(t, "Adding...", f.Label())

	calls := 0
	_, err := f.Submit(context.Background(), func(ctx context.Context) error { calls++; return nil })
	assert.ErrorIs(t, err, ErrInFlight)
	assert.Zero(t, calls)

	close(release)
	assert.Equal(t, Succeeded, (<-done).State)
	assert.False(t, f.Disabled())
}

func TestFlow_SucceededIsTerminal(t *testing.T) {
	f := NewCreateFlow(nil)
	_, err := f.Submit(context.Background(), func(ctx context.Context) error { return nil })
	require.NoError(t, err)

	_, err = f.Submit(context.Background(), func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrFinished)
}

func TestDeleteFlow_RequiresConfirmation(t *testing.T) {
	f := NewDeleteFlow(nil)
	calls := 0

	_, err := f.Submit(context.Background(), func(ctx context.Context) error { calls++; return nil })

	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Zero(t, calls)
	assert.Equal(t, Idle, f.State())
}

func TestDeleteFlow_CancelDoesNotCallStore(t *testing.T) {
	f := NewDeleteFlow(nil)
	require.NoError(t, f.RequestConfirmation())
	assert.Equal(t, Confirming, f.State())

	f.Cancel()

	assert.Equal(t, Idle, f.State())
	_, err := f.Submit(context.Background(), func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrNotConfirmed)
}

func TestDeleteFlow_ConfirmedSuccess(t *testing.T) {
	refreshed := false
	f := NewDeleteFlow(func() { refreshed = true })
	assert.Equal(t, "Delete Fort", f.Label())
	require.NoError(t, f.RequestConfirmation())

	out, err := f.Submit(context.Background(), func(ctx context.Context) error { return nil })

	require.NoError(t, err)
	assert.Equal(t, Succeeded, out.State)
	assert.Equal(t, "Fort deleted", out.Notification.Title)
	assert.Equal(t, ListRoute, out.Redirect)
	assert.True(t, refreshed)
	assert.ErrorIs(t, f.RequestConfirmation(), ErrFinished)
}

func TestDeleteFlow_FailureNeedsReconfirmation(t *testing.T) {
	f := NewDeleteFlow(nil)
	require.NoError(t, f.RequestConfirmation())

	out, err := f.Submit(context.Background(), func(ctx context.Context) error { return errors.New("gone") })

	require.NoError(t, err)
	assert.Equal(t, Failed, out.State)
	assert.Equal(t, Notification{Title: "Error", Description: "Failed to delete the fort. Please try again.", Destructive: true}, out.Notification)
	assert.Equal(t, Idle, f.State())
}

func TestGuard_SharedAcrossFlows(t *testing.T) {
	g := NewGuard()
	key := DeleteKey("abc")
	assert.Equal(t, "delete:abc", key)

	first := NewDeleteFlow(nil).WithGuard(g, key)
	second := NewDeleteFlow(nil).WithGuard(g, key)
	require.NoError(t, first.RequestConfirmation())
	require.NoError(t, second.RequestConfirmation())

	var inner error
	out, err := first.Submit(context.Background(), func(ctx context.Context) error {
		assert.True(t, g.InFlight(key))
		_, inner = second.Submit(ctx, func(ctx context.Context) error { return nil })
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, Succeeded, out.State)
	assert.ErrorIs(t, inner, ErrInFlight)
	assert.Equal(t, Confirming, second.State())
	assert.False(t, g.InFlight(key))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "submitting", Submitting.String())
	assert.Equal(t, "delete", Delete.String())
	assert.Equal(t, "create", Create.String())
}
