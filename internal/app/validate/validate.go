package validate

import (
	"context"
	"fmt"

	"github.com/slok/stagerun/internal/log"
	"github.com/slok/stagerun/internal/model"
	"github.com/slok/stagerun/internal/storage"
)

// ServiceConfig is the configuration for the validate service.
type ServiceConfig struct {
	Repository storage.PipelineRepository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Validate"})
	return nil
}

// Service loads and validates pipeline definitions.
type Service struct {
	repo   storage.PipelineRepository
	logger log.Logger
}

// NewService creates a new validate service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request contains the parameters for validating a pipeline.
type Request struct {
	Path string
}

// Run loads the pipeline and returns it once validated.
func (s *Service) Run(ctx context.Context, req Request) (*model.Pipeline, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("pipeline path is required: %w", model.ErrNotValid)
	}

	p, err := s.repo.GetPipeline(ctx, req.Path)
	if err != nil {
		return nil, fmt.Errorf("could not load pipeline: %w", err)
	}

	s.logger.Debugf("Pipeline %q loaded from %s: %d stages, %d steps", p.Name, req.Path, len(p.Stages), p.StepCount())

	return p, nil
}
