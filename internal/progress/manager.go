package progress

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/stagerun/internal/log"
	"github.com/slok/stagerun/internal/model"
)

// DefaultInterval is the default render loop interval.
const DefaultInterval = 100 * time.Millisecond

// Phase is the phase of a manager run.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunningGroup
	PhaseAllGroupsCompleted
	PhaseHalted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunningGroup:
		return "running-group"
	case PhaseAllGroupsCompleted:
		return "all-groups-completed"
	case PhaseHalted:
		return "halted"
	}
	return "unknown"
}

// State is the manager state. Group is the 1-based index of the running (or halted) group.
type State struct {
	Phase Phase
	Group int
}

// StageFailedError is returned when a group fails.
type StageFailedError struct {
	Stage int
	Total int
	Group string
	Unit  string
	Err   error
}

func (e *StageFailedError) Error() string {
	return fmt.Sprintf("stage %d failed: %s", e.Stage, e.Unit)
}

func (e *StageFailedError) Unwrap() error { return e.Err }

// ManagerConfig is the configuration of the progress manager.
type ManagerConfig struct {
	// Screen is where the progress is rendered, by default stdout.
	Screen *Screen
	// Interval is the render loop interval.
	Interval time.Duration
	// UnitTimeout is the default timeout of the units, zero disables it.
	UnitTimeout time.Duration
	// Exit is called by Start on failure, by default os.Exit.
	Exit   func(code int)
	RunID  string
	Logger log.Logger
}

func (c *ManagerConfig) defaults() error {
	if c.Interval < 0 {
		return fmt.Errorf("interval can't be negative")
	}
	if c.Interval == 0 {
		c.Interval = DefaultInterval
	}
	if c.UnitTimeout < 0 {
		return fmt.Errorf("unit timeout can't be negative")
	}
	if c.Screen == nil {
		c.Screen = NewScreen(ScreenConfig{})
	}
	if c.Exit == nil {
		c.Exit = os.Exit
	}
	if c.RunID == "" {
		c.RunID = ulid.Make().String()
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "progress.Manager", "run-id": c.RunID})
	return nil
}

// Manager runs groups one after another while rendering the progress of the running group.
type Manager struct {
	screen      *Screen
	interval    time.Duration
	unitTimeout time.Duration
	exit        func(int)
	runID       string
	logger      log.Logger

	mu      sync.Mutex
	groups  []*Group
	started bool
	state   State
}

// NewManager returns a new progress manager.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Manager{
		screen:      cfg.Screen,
		interval:    cfg.Interval,
		unitTimeout: cfg.UnitTimeout,
		exit:        cfg.Exit,
		runID:       cfg.RunID,
		logger:      cfg.Logger,
	}, nil
}

// RunID returns the ID of the manager run.
func (m *Manager) RunID() string { return m.runID }

// AddGroup appends a group. It panics with model.ErrManagerStarted once the manager started.
func (m *Manager) AddGroup(g *Group) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		panic(fmt.Errorf("could not add group %q: %w", g.Label(), model.ErrManagerStarted))
	}
	m.groups = append(m.groups, g)
}

// State returns the current manager state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

// Start runs all the groups and terminates the process with a non-zero exit code on the first
// failure. It only returns when all the groups succeeded (or when a custom exit function returns).
func (m *Manager) Start(ctx context.Context) {
	err := m.Run(ctx)
	if err == nil {
		return
	}

	m.screen.Failure(err.Error())
	m.logger.Errorf("Run halted: %s", err)
	m.exit(1)
}

// Run runs all the groups in order. Group N+1 is never dispatched before group N returned.
// The first failed group halts the run and returns a *StageFailedError.
func (m *Manager) Run(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		panic(fmt.Errorf("could not run manager: %w", model.ErrManagerStarted))
	}
	m.started = true
	groups := m.groups
	m.mu.Unlock()

	ctx = m.logger.SetValuesOnCtx(ctx, log.Kv{"run-id": m.runID})
	total := len(groups)
	m.logger.Infof("Running %d stages", total)

	for i, g := range groups {
		stage := i + 1
		m.setState(State{Phase: PhaseRunningGroup, Group: stage})
		logger := m.logger.WithValues(log.Kv{"stage": stage})
		logger.Debugf("Stage %q started", g.Label())

		m.screen.Header(stage, total, g.Label())
		start := time.Now()
		res := m.runGroup(ctx, g, stage, total, logger)

		if res.Failed == nil && res.Err != nil {
			m.setState(State{Phase: PhaseHalted, Group: stage})
			return fmt.Errorf("stage %d interrupted: %w", stage, res.Err)
		}

		if !res.OK() {
			m.setState(State{Phase: PhaseHalted, Group: stage})
			logger.Debugf("Stage %q failed on unit %q after %s", g.Label(), res.Failed.Label(), time.Since(start))
			return &StageFailedError{
				Stage: stage,
				Total: total,
				Group: g.Label(),
				Unit:  res.Failed.Label(),
				Err:   res.Err,
			}
		}

		g.Join()
		logger.Infof("Stage %q completed in %s", g.Label(), time.Since(start).Round(time.Millisecond))
	}

	m.setState(State{Phase: PhaseAllGroupsCompleted, Group: total})
	return nil
}

// runGroup runs the group while the render loop redraws it on every tick.
func (m *Manager) runGroup(ctx context.Context, g *Group, stage, total int, logger log.Logger) GroupResult {
	resC := make(chan GroupResult, 1)
	go func() {
		resC <- g.Run(ctx, RunOptions{UnitTimeout: m.unitTimeout, Logger: logger})
	}()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	tick := 0
	m.screen.Draw(frameView(g, stage, total, tick, false))
	for {
		select {
		case res := <-resC:
			m.screen.Draw(frameView(g, stage, total, tick, true))
			return res
		case <-ticker.C:
			tick++
			m.screen.Draw(frameView(g, stage, total, tick, false))
		}
	}
}

func frameView(g *Group, stage, total, tick int, final bool) FrameView {
	units := g.Units()
	views := make([]UnitView, 0, len(units))
	for _, u := range units {
		views = append(views, UnitView{Label: u.Label(), Status: u.Status()})
	}

	return FrameView{
		Stage: stage,
		Total: total,
		Units: views,
		Tick:  tick,
		Final: final,
	}
}

// IsStageFailed returns the stage failure if the error is one.
func IsStageFailed(err error) (*StageFailedError, bool) {
	var sfe *StageFailedError
	if errors.As(err, &sfe) {
		return sfe, true
	}
	return nil, false
}
