package engine

import (
	"context"

	"github.com/slok/stagerun/internal/model"
)

// Engine is the interface for step execution.
type Engine interface {
	// Exec executes the step and returns its result. A non zero exit code is not an error,
	// errors are returned when the step could not be executed at all.
	Exec(ctx context.Context, step model.Step) (*model.ExecResult, error)
}

//go:generate mockery --case underscore --output enginemock --outpkg enginemock --name Engine
