package model

import (
	"fmt"
	"time"
)

// Pipeline is an ordered list of stages, each stage runs after the previous one succeeded.
type Pipeline struct {
	Name   string
	Stages []Stage
}

// Stage is a group of steps that run concurrently.
type Stage struct {
	Name  string
	Steps []Step
}

// Step is a single command executed as an execution unit.
type Step struct {
	Name string
	// Command is executed directly (argv form).
	Command []string
	// Shell is executed with `sh -c`.
	Shell string
	Dir   string
	Env   map[string]string
	// Timeout when set overrides the run level unit timeout for this step.
	Timeout time.Duration
}

// Validate validates the pipeline definition.
func (p *Pipeline) Validate() error {
	if len(p.Stages) == 0 {
		return fmt.Errorf("at least one stage is required: %w", ErrNotValid)
	}

	for i, st := range p.Stages {
		if st.Name == "" {
			return fmt.Errorf("stage %d name is required: %w", i+1, ErrNotValid)
		}
		if len(st.Steps) == 0 {
			return fmt.Errorf("stage %q requires at least one step: %w", st.Name, ErrNotValid)
		}
		for j, step := range st.Steps {
			if err := step.Validate(); err != nil {
				return fmt.Errorf("stage %q step %d: %w", st.Name, j+1, err)
			}
		}
	}

	return nil
}

// Validate validates the step definition.
func (s *Step) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required: %w", ErrNotValid)
	}

	hasCmd := len(s.Command) > 0
	hasShell := s.Shell != ""
	if hasCmd == hasShell {
		return fmt.Errorf("exactly one of command or shell is required: %w", ErrNotValid)
	}

	if s.Timeout < 0 {
		return fmt.Errorf("timeout can't be negative: %w", ErrNotValid)
	}

	return nil
}

// StepCount returns the total number of steps in the pipeline.
func (p Pipeline) StepCount() int {
	n := 0
	for _, st := range p.Stages {
		n += len(st.Steps)
	}
	return n
}
