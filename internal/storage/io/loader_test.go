package io

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/stagerun/internal/model"
)

func TestPipelineYAMLRepository_GetPipeline(t *testing.T) {
	tests := map[string]struct {
		fs          fstest.MapFS
		path        string
		expPipeline *model.Pipeline
		expErr      bool
		errMsg      string
	}{
		"Valid pipeline should load successfully": {
			fs: fstest.MapFS{
				"stages.yaml": &fstest.MapFile{
					Data: []byte(`name: deploy
stages:
  - name: build
    steps:
      - name: compile
        command: ["go", "build", "./..."]
      - name: lint
        shell: golangci-lint run
        dir: ~/src/app
        timeout: 2m
  - name: release
    steps:
      - name: push
        shell: make push
`),
				},
			},
			path: "stages.yaml",
			expPipeline: &model.Pipeline{
				Name: "deploy",
				Stages: []model.Stage{
					{Name: "build", Steps: []model.Step{
						{Name: "compile", Command: []string{"go", "build", "./..."}},
						{Name: "lint", Shell: "golangci-lint run", Dir: "~/src/app", Timeout: 2 * time.Minute},
					}},
					{Name: "release", Steps: []model.Step{
						{Name: "push", Shell: "make push"},
					}},
				},
			},
		},

		"Env should be merged from pipeline, stage and step": {
			fs: fstest.MapFS{
				"stages.yaml": &fstest.MapFile{
					Data: []byte(`env:
  A: pipeline
  B: pipeline
stages:
  - name: build
    env:
      B: stage
      C: stage
    steps:
      - name: compile
        shell: make
        env:
          C: step
`),
				},
			},
			path: "stages.yaml",
			expPipeline: &model.Pipeline{
				Stages: []model.Stage{
					{Name: "build", Steps: []model.Step{
						{Name: "compile", Shell: "make", Env: map[string]string{"A": "pipeline", "B": "stage", "C": "step"}},
					}},
				},
			},
		},

		"Missing file should return error": {
			fs:     fstest.MapFS{},
			path:   "nonexistent.yaml",
			expErr: true,
			errMsg: `pipeline file "nonexistent.yaml"`,
		},

		"Invalid YAML should return error": {
			fs: fstest.MapFS{
				"invalid.yaml": &fstest.MapFile{Data: []byte(`invalid: yaml: content: {}`)},
			},
			path:   "invalid.yaml",
			expErr: true,
			errMsg: "parsing YAML",
		},

		"Invalid timeout should return error": {
			fs: fstest.MapFS{
				"stages.yaml": &fstest.MapFile{
					Data: []byte(`stages:
  - name: build
    steps:
      - name: compile
        shell: make
        timeout: soon
`),
				},
			},
			path:   "stages.yaml",
			expErr: true,
			errMsg: "invalid configuration",
		},

		"A pipeline without stages should return error": {
			fs: fstest.MapFS{
				"stages.yaml": &fstest.MapFile{Data: []byte("name: empty\n")},
			},
			path:   "stages.yaml",
			expErr: true,
			errMsg: "at least one stage is required",
		},

		"A step without command should return error": {
			fs: fstest.MapFS{
				"stages.yaml": &fstest.MapFile{
					Data: []byte(`stages:
  - name: build
    steps:
      - name: compile
`),
				},
			},
			path:   "stages.yaml",
			expErr: true,
			errMsg: "exactly one of command or shell is required",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			repo := NewPipelineYAMLRepository(tt.fs)
			p, err := repo.GetPipeline(context.Background(), tt.path)

			if tt.expErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expPipeline, p)
		})
	}
}

func TestPipelineYAMLRepository_CancelledContext(t *testing.T) {
	fs := fstest.MapFS{"stages.yaml": &fstest.MapFile{Data: []byte("name: x\n")}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPipelineYAMLRepository(fs).GetPipeline(ctx, "stages.yaml")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipelineYAMLRepository_MissingFile(t *testing.T) {
	_, err := NewPipelineYAMLRepository(fstest.MapFS{}).GetPipeline(context.Background(), "stages.yaml")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
