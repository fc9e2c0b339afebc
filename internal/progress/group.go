package progress

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/slok/stagerun/internal/log"
	"github.com/slok/stagerun/internal/model"
)

// GroupResult is the outcome of a group run.
type GroupResult struct {
	// Failed is the first unit (in insertion order) observed as failed, nil on success.
	Failed *Unit
	Err    error
}

// OK returns true when all the units completed.
func (r GroupResult) OK() bool { return r.Failed == nil && r.Err == nil }

// RunOptions are the options of a group run.
type RunOptions struct {
	// UnitTimeout is the timeout for units that don't have their own, zero disables it.
	UnitTimeout time.Duration
	Logger      log.Logger
}

func (o *RunOptions) defaults() {
	if o.Logger == nil {
		o.Logger = log.Noop
	}
	o.Logger = o.Logger.WithValues(log.Kv{"svc": "progress.Group"})
}

// Group is an ordered set of units that run concurrently. The set is frozen once the group starts.
type Group struct {
	label string

	mu      sync.Mutex
	units   []*Unit
	started bool
}

// NewGroup returns a new empty group.
func NewGroup(label string) *Group {
	return &Group{label: label}
}

// Label returns the display label of the group.
func (g *Group) Label() string { return g.label }

// AddUnit appends a unit to the group. It panics with model.ErrGroupStarted if the group already
// started running.
func (g *Group) AddUnit(u *Unit) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.started {
		panic(fmt.Errorf("could not add unit %q to group %q: %w", u.Label(), g.label, model.ErrGroupStarted))
	}
	g.units = append(g.units, u)
}

// Units returns the group units in insertion order.
func (g *Group) Units() []*Unit {
	g.mu.Lock()
	defer g.mu.Unlock()

	units := make([]*Unit, len(g.units))
	copy(units, g.units)
	return units
}

// Started returns true once Run has been called.
func (g *Group) Started() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.started
}

// Run dispatches all the units and blocks until all of them complete or any of them fails.
// Failures are reported as soon as they are observed, running siblings are not waited for.
// A cancelled context stops the wait (not the units) and returns the context error.
func (g *Group) Run(ctx context.Context, opts RunOptions) GroupResult {
	opts.defaults()
	logger := opts.Logger.WithValues(log.Kv{"group": g.label})

	g.mu.Lock()
	if g.started {
		g.mu.Unlock()
		panic(fmt.Errorf("could not run group %q: %w", g.label, model.ErrGroupStarted))
	}
	g.started = true
	units := g.units
	g.mu.Unlock()

	stop := make(chan struct{})
	defer close(stop)

	finished := make(chan int, len(units))
	for i, u := range units {
		u.Dispatch(ctx)
		logger.Debugf("Unit %q (%s) dispatched", u.Label(), u.ID())

		go func() {
			select {
			case <-u.status.Done():
				finished <- i
			case <-stop:
			}
		}()

		timeout := u.getTimeout()
		if timeout == 0 {
			timeout = opts.UnitTimeout
		}
		if timeout > 0 {
			t := time.AfterFunc(timeout, func() {
				err := fmt.Errorf("%w after %s", model.ErrUnitTimeout, timeout)
				if u.status.finish(model.ExecutionStatusIncomplete, err) {
					logger.Warningf("Unit %q timed out after %s", u.Label(), timeout)
				}
			})
			defer t.Stop()
		}
	}

	for remaining := len(units); remaining > 0; remaining-- {
		select {
		case <-ctx.Done():
			return GroupResult{Err: ctx.Err()}
		case i := <-finished:
			logger.Debugf("Unit %q finished with status %s", units[i].Label(), units[i].Status())
		}

		if failed := firstFailed(units); failed != nil {
			return GroupResult{Failed: failed, Err: unitError(failed)}
		}
	}

	return GroupResult{}
}

// Join blocks until all the dispatched unit goroutines have returned.
func (g *Group) Join() {
	for _, u := range g.Units() {
		u.Join()
	}
}

func firstFailed(units []*Unit) *Unit {
	for _, u := range units {
		if u.Status().IsFailure() {
			return u
		}
	}
	return nil
}

func unitError(u *Unit) error {
	cause := u.Err()
	switch {
	case u.Status() == model.ExecutionStatusIncomplete:
		return fmt.Errorf("unit %q: %w", u.Label(), cause)
	case cause != nil:
		return fmt.Errorf("unit %q: %w: %w", u.Label(), model.ErrUnitFailed, cause)
	default:
		return fmt.Errorf("unit %q: %w", u.Label(), model.ErrUnitFailed)
	}
}
