package fake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/slok/stagerun/internal/log"
	"github.com/slok/stagerun/internal/model"
)

// StepResult is the simulated result of a step.
type StepResult struct {
	Delay    time.Duration
	ExitCode int
	Output   string
	Err      error
}

// EngineConfig is the configuration for the fake engine.
type EngineConfig struct {
	// Results by step name, steps without result succeed after DefaultDelay.
	Results      map[string]StepResult
	DefaultDelay time.Duration
	Logger       log.Logger
}

func (c *EngineConfig) defaults() error {
	if c.DefaultDelay < 0 {
		return fmt.Errorf("default delay can't be negative")
	}
	if c.Results == nil {
		c.Results = map[string]StepResult{}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "engine.Fake"})
	return nil
}

// Engine is a fake implementation of the engine.Engine interface.
// It simulates step executions without running any command.
type Engine struct {
	results      map[string]StepResult
	defaultDelay time.Duration
	executed     []string
	mu           sync.Mutex
	logger       log.Logger
}

// NewEngine creates a new fake engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		results:      cfg.Results,
		defaultDelay: cfg.DefaultDelay,
		logger:       cfg.Logger,
	}, nil
}

// Exec simulates the execution of a step.
func (e *Engine) Exec(ctx context.Context, step model.Step) (*model.ExecResult, error) {
	e.mu.Lock()
	e.executed = append(e.executed, step.Name)
	res, ok := e.results[step.Name]
	e.mu.Unlock()

	if !ok {
		res = StepResult{Delay: e.defaultDelay}
	}

	if res.Delay > 0 {
		select {
		case <-time.After(res.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if res.Err != nil {
		return nil, res.Err
	}

	e.logger.Debugf("Executed fake step %q: exit code %d", step.Name, res.ExitCode)

	return &model.ExecResult{
		ExitCode: res.ExitCode,
		Output:   res.Output,
	}, nil
}

// Executed returns the names of the executed steps in execution start order.
func (e *Engine) Executed() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	executed := make([]string, len(e.executed))
	copy(executed, e.executed)
	return executed
}
