package io

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/slok/stagerun/internal/model"
	"github.com/slok/stagerun/internal/utils/env"
)

// PipelineYAMLRepository loads pipeline definitions from YAML files.
type PipelineYAMLRepository struct {
	fs fs.FS
}

// NewPipelineYAMLRepository creates a new YAML pipeline repository.
func NewPipelineYAMLRepository(filesystem fs.FS) *PipelineYAMLRepository {
	return &PipelineYAMLRepository{fs: filesystem}
}

// GetPipeline loads a pipeline from a YAML file and returns a validated domain model.
func (r *PipelineYAMLRepository) GetPipeline(ctx context.Context, path string) (*model.Pipeline, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("pipeline file %q: %w", path, model.ErrNotFound)
		}
		return nil, fmt.Errorf("reading pipeline file: %w", err)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var cfg PipelineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	p, err := cfg.toModel()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return p, nil
}

// PipelineConfig represents the YAML structure of a pipeline.
type PipelineConfig struct {
	Name   string        `yaml:"name"`
	Env    Env           `yaml:"env"`
	Stages []StageConfig `yaml:"stages"`
}

// StageConfig represents the YAML structure of a stage.
type StageConfig struct {
	Name  string       `yaml:"name"`
	Env   Env          `yaml:"env"`
	Steps []StepConfig `yaml:"steps"`
}

// StepConfig represents the YAML structure of a step.
type StepConfig struct {
	Name    string   `yaml:"name"`
	Command []string `yaml:"command"`
	Shell   string   `yaml:"shell"`
	Dir     string   `yaml:"dir"`
	Env     Env      `yaml:"env"`
	Timeout string   `yaml:"timeout"`
}

// Env is a set of environment variables.
type Env map[string]string

func (c PipelineConfig) toModel() (*model.Pipeline, error) {
	p := &model.Pipeline{Name: c.Name}

	for _, st := range c.Stages {
		stage := model.Stage{Name: st.Name}
		for _, sp := range st.Steps {
			var timeout time.Duration
			if sp.Timeout != "" {
				d, err := time.ParseDuration(sp.Timeout)
				if err != nil {
					return nil, fmt.Errorf("stage %q step %q timeout: %w", st.Name, sp.Name, err)
				}
				timeout = d
			}

			stage.Steps = append(stage.Steps, model.Step{
				Name:    sp.Name,
				Command: sp.Command,
				Shell:   sp.Shell,
				Dir:     sp.Dir,
				Env:     env.Merge(c.Env, st.Env, sp.Env),
				Timeout: timeout,
			})
		}
		p.Stages = append(p.Stages, stage)
	}

	return p, nil
}

