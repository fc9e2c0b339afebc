package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/stagerun/internal/log"
	"github.com/slok/stagerun/internal/model"
)

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/test")

	tests := map[string]struct {
		path    string
		expPath string
	}{
		"Home should be expanded.": {
			path:    "~",
			expPath: "/home/test",
		},

		"Paths under home should be expanded.": {
			path:    "~/ci/pipeline.yaml",
			expPath: "/home/test/ci/pipeline.yaml",
		},

		"Other paths should be untouched.": {
			path:    "./pipeline.yaml",
			expPath: "./pipeline.yaml",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expPath, expandHome(test.path))
		})
	}
}

func TestLoadPipeline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	err := os.WriteFile(path, []byte(`name: deploy
stages:
  - name: build
    steps:
      - name: compile
        shell: make
`), 0o644)
	require.NoError(t, err)

	p, gotDir, err := loadPipeline(context.Background(), path, log.Noop)
	require.NoError(t, err)
	assert.Equal(t, "deploy", p.Name)
	assert.Equal(t, filepath.Clean(dir), filepath.Clean(gotDir))

	_, _, err = loadPipeline(context.Background(), filepath.Join(dir, "missing.yaml"), log.Noop)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("name: bad\n"), 0o644))
	_, _, err = loadPipeline(context.Background(), bad, log.Noop)
	assert.ErrorIs(t, err, model.ErrNotValid)
}
