package client

import (
	"context"
	"sync/atomic"

	"github.com/Sternrassler/lostnfound-cloud-client/pkg/response"
	"github.com/Sternrassler/lostnfound-cloud-client/pkg/route"
	"github.com/google/uuid"
)

// State is a step of the request lifecycle.
type State int32

const (
	// StateCreated is the state of a task that has not started.
	StateCreated State = iota

	// StatePreExecute is entered on the caller's goroutine, before the pre hook.
	StatePreExecute

	// StateRunning is entered on the background goroutine, before the delay
	// and the network call.
	StateRunning

	// StateCompleted is entered on the caller's context, before the
	// completion callback.
	StateCompleted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StatePreExecute:
		return "pre_execute"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Task is a single dispatched request. Tasks are never reused.
type Task struct {
	id       string
	dest     route.Destination
	state    atomic.Int32
	observer func(taskID string, state State)
	done     chan struct{}

	// Written once before done is closed.
	outcome  response.Outcome
	envelope *response.Envelope
}

func newTask(dest route.Destination, observer func(string, State)) *Task {
	return &Task{
		id:       uuid.NewString(),
		dest:     dest,
		observer: observer,
		done:     make(chan struct{}),
	}
}

// ID returns the unique task identifier used in logs.
func (t *Task) ID() string {
	return t.id
}

// Destination returns the route the task was dispatched to.
func (t *Task) Destination() route.Destination {
	return t.dest
}

// State returns the current lifecycle state.
func (t *Task) State() State {
	return State(t.state.Load())
}

// Done is closed after the completion callback has returned.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Result returns the outcome and envelope once the task is done.
// ok is false while the task is still in flight.
func (t *Task) Result() (outcome response.Outcome, envelope *response.Envelope, ok bool) {
	select {
	case <-t.done:
		return t.outcome, t.envelope, true
	default:
		return "", nil, false
	}
}

// Wait blocks until the task is done or ctx ends. Cancelling ctx does not
// cancel the task.
func (t *Task) Wait(ctx context.Context) (response.Outcome, *response.Envelope, error) {
	select {
	case <-t.done:
		return t.outcome, t.envelope, nil
	case <-ctx.Done():
		return "", nil, ctx.Err()
	}
}

func (t *Task) transition(s State) {
	t.state.Store(int32(s))
	if t.observer != nil {
		t.observer(t.id, s)
	}
}

// complete records the result, enters StateCompleted and runs post.
// It must run on the caller's context.
func (t *Task) complete(outcome response.Outcome, envelope *response.Envelope, post PostExecuteFunc) {
	t.outcome = outcome
	t.envelope = envelope
	t.transition(StateCompleted)

	defer close(t.done)
	if post != nil {
		post(outcome, envelope)
	}
}
