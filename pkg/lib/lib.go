package lib

import (
	"fmt"
	"io"
	"time"

	"github.com/slok/stagerun/internal/log"
	"github.com/slok/stagerun/internal/model"
	"github.com/slok/stagerun/internal/progress"
)

type (
	// Manager runs groups one after another rendering their progress.
	Manager = progress.Manager
	// Group is a set of units that run concurrently.
	Group = progress.Group
	// Unit is a labeled work function executed once.
	Unit = progress.Unit
	// StatusCell is the status of a unit shared with its work function.
	StatusCell = progress.StatusCell
	// WorkFunc is the work executed by a unit.
	WorkFunc = progress.WorkFunc
	// GroupResult is the result of a group run.
	GroupResult = progress.GroupResult
	// StageFailedError is returned by [Manager.Run] when a stage fails.
	StageFailedError = progress.StageFailedError
	// PanicError is the failure cause of a unit whose work function panicked.
	PanicError = progress.PanicError
	// Status is the lifecycle status of a unit.
	Status = model.ExecutionStatus
)

const (
	StatusPending    = model.ExecutionStatusPending
	StatusRunning    = model.ExecutionStatusRunning
	StatusCompleted  = model.ExecutionStatusCompleted
	StatusFailed     = model.ExecutionStatusFailed
	StatusIncomplete = model.ExecutionStatusIncomplete
)

var (
	ErrAlreadyDispatched = model.ErrAlreadyDispatched
	ErrGroupStarted      = model.ErrGroupStarted
	ErrManagerStarted    = model.ErrManagerStarted
	ErrUnitFailed        = model.ErrUnitFailed
	ErrIncomplete        = model.ErrIncomplete
	ErrUnitTimeout       = model.ErrUnitTimeout
)

// OutputMode controls how the progress is drawn.
type OutputMode = progress.ScreenMode

const (
	// OutputAuto redraws in place when the output is a terminal, plain otherwise.
	OutputAuto = progress.ScreenModeAuto
	// OutputInteractive always redraws in place.
	OutputInteractive = progress.ScreenModeInteractive
	// OutputPlain only prints the final state of each stage.
	OutputPlain = progress.ScreenModePlain
)

// Config configures the SDK manager.
//
// All fields are optional, an empty Config{} renders on stdout every 100ms.
type Config struct {
	// Out is where the progress is rendered.
	// Default: stdout.
	Out io.Writer

	// OutputMode selects between live redraws and plain output.
	// Default: [OutputAuto].
	OutputMode OutputMode

	// NoColor disables the status colors.
	NoColor bool

	// Interval is the redraw interval.
	// Default: 100ms.
	Interval time.Duration

	// UnitTimeout marks units running longer than this as incomplete.
	// Default: no timeout.
	UnitTimeout time.Duration

	// Exit is called by [Manager.Start] on failure.
	// Default: os.Exit.
	Exit func(code int)

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger
}

// NewManager returns a new manager.
func NewManager(cfg Config) (*Manager, error) {
	m, err := progress.NewManager(progress.ManagerConfig{
		Screen: progress.NewScreen(progress.ScreenConfig{
			Out:     cfg.Out,
			Mode:    cfg.OutputMode,
			NoColor: cfg.NoColor,
		}),
		Interval:    cfg.Interval,
		UnitTimeout: cfg.UnitTimeout,
		Exit:        cfg.Exit,
		Logger:      cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create manager: %w", err)
	}

	return m, nil
}

// NewGroup returns a new empty group.
func NewGroup(label string) *Group { return progress.NewGroup(label) }

// NewUnit returns a new pending unit.
func NewUnit(label string, fn WorkFunc) *Unit { return progress.NewUnit(label, fn) }

// IsStageFailed returns the stage failure if err is one.
func IsStageFailed(err error) (*StageFailedError, bool) { return progress.IsStageFailed(err) }
