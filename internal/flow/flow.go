// Package flow models the create and delete mutation flows as small state
// machines. A flow blocks duplicate submissions, gates deletes behind an
// explicit confirmation, and turns the store's answer into exactly one
// user-facing notification.
package flow

import (
	"context"
	"errors"
	"sync"
)

// ListRoute is where a successful mutation sends the user.
const ListRoute = "/forts"

var (
	// ErrInFlight rejects a submission while another one for the same flow
	// or guard key is still running.
	ErrInFlight = errors.New("a submission is already in progress")
	// ErrNotConfirmed rejects a delete that skipped the confirmation gate.
	ErrNotConfirmed = errors.New("delete has not been confirmed")
	// ErrFinished rejects any action on a flow that already succeeded.
	ErrFinished = errors.New("flow already completed")
)

// State is a flow's position in its lifecycle.
type State int

const (
	Idle State = iota
	Confirming
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Confirming:
		return "confirming"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Kind distinguishes the two mutations.
type Kind int

const (
	Create Kind = iota
	Delete
)

func (k Kind) String() string {
	if k == Delete {
		return "delete"
	}
	return "create"
}

// Notification is a transient, dismissible message.
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Destructive bool   `json:"destructive,omitempty"`
}

// Outcome reports how one submission ended.
type Outcome struct {
	State        State
	Notification Notification
	// Redirect is the list route on success and empty on failure, in which
	// case the user stays where they are.
	Redirect string
	// Err is the store error behind a failure.
	Err error
}

// Flow is one create or delete interaction. It is safe for concurrent use.
type Flow struct {
	kind    Kind
	refresh func()

	guard *Guard
	key   string

	mu    sync.Mutex
	state State
}

// NewCreateFlow starts a create flow. refresh runs after a successful
// insert; it is expected to invalidate the snapshot cache.
func NewCreateFlow(refresh func()) *Flow {
	return &Flow{kind: Create, refresh: refresh}
}

// NewDeleteFlow starts a delete flow. It must be confirmed before Submit.
func NewDeleteFlow(refresh func()) *Flow {
	return &Flow{kind: Delete, refresh: refresh}
}

// WithGuard makes submissions also hold key in g for their duration, so
// duplicates are rejected across flows sharing g.
func (f *Flow) WithGuard(g *Guard, key string) *Flow {
	f.guard = g
	f.key = key
	return f
}

// Kind returns the flow kind.
func (f *Flow) Kind() Kind { return f.kind }

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// RequestConfirmation opens the delete confirmation gate.
// Create flows are confirmed implicitly and ignore this call.
func (f *Flow) RequestConfirmation() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.state {
	case Succeeded:
		return ErrFinished
	case Submitting:
		return ErrInFlight
	}
	if f.kind == Delete {
		f.state = Confirming
	}
	return nil
}

// Cancel closes the confirmation gate without touching the store.
func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Confirming {
		f.state = Idle
	}
}

// Submit runs op once. Duplicate or unconfirmed submissions are rejected
// with an error and op is not called. Otherwise the store's answer is
// reported through the Outcome: success ends the flow and asks for a
// redirect, failure returns the flow to Idle for a manual retry.
func (f *Flow) Submit(ctx context.Context, op func(ctx context.Context) error) (Outcome, error) {
	f.mu.Lock()
	switch {
	case f.state == Submitting:
		f.mu.Unlock()
		return Outcome{}, ErrInFlight
	case f.state == Succeeded:
		f.mu.Unlock()
		return Outcome{}, ErrFinished
	case f.kind == Delete && f.state != Confirming:
		f.mu.Unlock()
		return Outcome{}, ErrNotConfirmed
	}
	if f.guard != nil {
		if !f.guard.acquire(f.key) {
			f.mu.Unlock()
			return Outcome{}, ErrInFlight
		}
		defer f.guard.release(f.key)
	}
	f.state = Submitting
	f.mu.Unlock()

	err := op(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = Idle
		return Outcome{
			State:        Failed,
			Notification: failureNotification(f.kind),
			Err:          err,
		}, nil
	}

	f.state = Succeeded
	if f.refresh != nil {
		f.refresh()
	}
	return Outcome{
		State:        Succeeded,
		Notification: successNotification(f.kind),
		Redirect:     ListRoute,
	}, nil
}

// Label is the text of the control that triggers the flow.
func (f *Flow) Label() string {
	return LabelFor(f.kind, f.State() == Submitting)
}

// LabelFor is the trigger text for a flow of kind k. Request handlers that
// only know whether a guard key is held use it directly.
func LabelFor(k Kind, submitting bool) string {
	if k == Delete {
		if submitting {
			return "Deleting..."
		}
		return "Delete Fort"
	}
	if submitting {
		return "Adding..."
	}
	return "Add Fort"
}

// Disabled reports whether the trigger control should be disabled.
func (f *Flow) Disabled() bool {
	return f.State() == Submitting
}

func successNotification(k Kind) Notification {
	if k == Delete {
		return Notification{Title: "Fort deleted", Description: "The fort has been successfully deleted."}
	}
	return Notification{Title: "Success", Description: "Fort has been added successfully."}
}

func failureNotification(k Kind) Notification {
	if k == Delete {
		return Notification{Title: "Error", Description: "Failed to delete the fort. Please try again.", Destructive: true}
	}
	return Notification{Title: "Error", Description: "Failed to add fort. Please try again.", Destructive: true}
}
