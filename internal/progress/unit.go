package progress

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/stagerun/internal/model"
)

// WorkFunc is the user work executed by a unit. It must set the status to completed or failed
// before returning, otherwise the unit ends as incomplete.
//
// The context carries values only, the runtime never cancels it.
type WorkFunc func(ctx context.Context, status *StatusCell)

// PanicError is the failure cause recorded when a work function panics.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("work function panicked: %v", e.Value) }

// Unit is an execution unit, a labeled work function that runs once on its own goroutine.
type Unit struct {
	id     string
	label  string
	status *StatusCell

	mu         sync.Mutex
	work       WorkFunc
	dispatched bool
	timeout    time.Duration
	finished   chan struct{}
}

// NewUnit returns a new pending unit. It panics if the work function is missing.
func NewUnit(label string, fn WorkFunc) *Unit {
	if fn == nil {
		panic(fmt.Errorf("unit %q work function is required: %w", label, model.ErrNotValid))
	}

	return &Unit{
		id:       ulid.Make().String(),
		label:    label,
		status:   newStatusCell(),
		work:     fn,
		finished: make(chan struct{}),
	}
}

// ID returns the unique ID of the unit.
func (u *Unit) ID() string { return u.id }

// Label returns the display label of the unit.
func (u *Unit) Label() string { return u.label }

// Status returns a snapshot of the unit status.
func (u *Unit) Status() model.ExecutionStatus { return u.status.Load() }

// Err returns the recorded failure cause, if any.
func (u *Unit) Err() error { return u.status.Err() }

// SetTimeout sets a timeout after which a running unit is marked as incomplete by its group.
// Zero uses the group run default. Must be called before dispatching.
func (u *Unit) SetTimeout(d time.Duration) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.dispatched {
		panic(fmt.Errorf("could not set timeout on unit %q: %w", u.label, model.ErrAlreadyDispatched))
	}
	u.timeout = d
}

func (u *Unit) getTimeout() time.Duration {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.timeout
}

// Dispatch starts the work function on a new goroutine. The work function is consumed, dispatching
// the same unit twice panics with model.ErrAlreadyDispatched.
func (u *Unit) Dispatch(ctx context.Context) {
	u.mu.Lock()
	if u.dispatched {
		u.mu.Unlock()
		panic(fmt.Errorf("could not dispatch unit %q: %w", u.label, model.ErrAlreadyDispatched))
	}
	work := u.work
	u.work = nil
	u.dispatched = true
	u.mu.Unlock()

	u.status.start()
	go u.run(context.WithoutCancel(ctx), work)
}

// Join blocks until the unit goroutine has returned. It returns immediately if the unit was never
// dispatched.
func (u *Unit) Join() {
	u.mu.Lock()
	dispatched := u.dispatched
	u.mu.Unlock()

	if !dispatched {
		return
	}
	<-u.finished
}

func (u *Unit) run(ctx context.Context, work WorkFunc) {
	defer close(u.finished)
	defer func() {
		if r := recover(); r != nil {
			u.status.FailWith(&PanicError{Value: r, Stack: debug.Stack()})
			return
		}

		// Work returned without a terminal status.
		u.status.finish(model.ExecutionStatusIncomplete, model.ErrIncomplete)
	}()

	work(ctx, u.status)
}
