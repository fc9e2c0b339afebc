package run

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/slok/stagerun/internal/engine"
	"github.com/slok/stagerun/internal/log"
	"github.com/slok/stagerun/internal/model"
	"github.com/slok/stagerun/internal/progress"
)

// ServiceConfig is the configuration for the run service.
type ServiceConfig struct {
	Engine engine.Engine
	// Screen is where the progress is rendered.
	Screen *progress.Screen
	// Interval is the render loop interval.
	Interval time.Duration
	// UnitTimeout marks steps running longer than this as incomplete, zero disables it.
	UnitTimeout time.Duration
	Logger      log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Engine == nil {
		return fmt.Errorf("engine is required")
	}
	if c.Screen == nil {
		c.Screen = progress.NewScreen(progress.ScreenConfig{})
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Run"})
	return nil
}

// Service runs pipelines.
type Service struct {
	engine      engine.Engine
	screen      *progress.Screen
	interval    time.Duration
	unitTimeout time.Duration
	logger      log.Logger
}

// NewService creates a new run service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		engine:      cfg.Engine,
		screen:      cfg.Screen,
		interval:    cfg.Interval,
		unitTimeout: cfg.UnitTimeout,
		logger:      cfg.Logger,
	}, nil
}

// Request contains the parameters for running a pipeline.
type Request struct {
	Pipeline model.Pipeline
}

// Run runs the pipeline stages in order, the steps of a stage run concurrently. The first failed
// step halts the run returning a *progress.StageFailedError.
func (s *Service) Run(ctx context.Context, req Request) error {
	if err := req.Pipeline.Validate(); err != nil {
		return fmt.Errorf("invalid pipeline: %w", err)
	}

	m, err := progress.NewManager(progress.ManagerConfig{
		Screen:      s.screen,
		Interval:    s.interval,
		UnitTimeout: s.unitTimeout,
		Logger:      s.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create progress manager: %w", err)
	}

	for _, stage := range req.Pipeline.Stages {
		g := progress.NewGroup(stage.Name)
		for _, step := range stage.Steps {
			g.AddUnit(progress.NewUnit(step.Name, s.stepWork(step)))
		}
		m.AddGroup(g)
	}

	s.logger.Infof("Running pipeline %q (%s): %d stages, %d steps", req.Pipeline.Name, m.RunID(), len(req.Pipeline.Stages), req.Pipeline.StepCount())

	if err := m.Run(ctx); err != nil {
		return err
	}

	s.logger.Infof("Pipeline %q completed", req.Pipeline.Name)
	return nil
}

func (s *Service) stepWork(step model.Step) progress.WorkFunc {
	return func(ctx context.Context, status *progress.StatusCell) {
		res, err := s.engine.Exec(ctx, step)
		if err != nil {
			status.FailWith(fmt.Errorf("could not execute step: %w", err))
			return
		}

		if res.ExitCode != 0 {
			status.FailWith(&StepError{ExitCode: res.ExitCode, Output: res.Output})
			return
		}

		status.Complete()
	}
}

// StepError is the failure cause of a step that exited with a non zero code.
type StepError struct {
	ExitCode int
	Output   string
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("exit code %d", e.ExitCode)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ":\n" + out
	}
	return msg
}
