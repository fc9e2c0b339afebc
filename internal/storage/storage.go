package storage

import (
	"context"

	"github.com/slok/stagerun/internal/model"
)

// PipelineRepository is the interface to load pipeline definitions.
type PipelineRepository interface {
	GetPipeline(ctx context.Context, path string) (*model.Pipeline, error)
}
