package stagerun

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/slok/stagerun/test/integration/testutils"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	Binary string
}

func (c *Config) defaults() error {
	if c.Binary == "" {
		c.Binary = "stagerun"
	}

	// go test changes the CWD to the test package directory, relative paths would be ambiguous.
	if !filepath.IsAbs(c.Binary) {
		return fmt.Errorf("STAGERUN_INTEGRATION_BINARY must be an absolute path, got %q", c.Binary)
	}
	if _, err := os.Stat(c.Binary); err != nil {
		return fmt.Errorf("stagerun binary not found at %q: %w", c.Binary, err)
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation = "STAGERUN_INTEGRATION"
		envBinary     = "STAGERUN_INTEGRATION_BINARY"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{
		Binary: os.Getenv(envBinary),
	}

	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// WritePipeline writes the pipeline YAML on a temporary directory and returns its path.
func WritePipeline(t *testing.T, data string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("could not write pipeline: %s", err)
	}

	return path
}

// RunPipeline runs `stagerun run` with plain output.
func RunPipeline(ctx context.Context, config Config, path string, extraArgs ...string) (stdout, stderr []byte, exitCode int, err error) {
	args := append([]string{"--no-color", "run", "--output", "plain"}, extraArgs...)
	args = append(args, path)
	return testutils.RunStagerun(ctx, nil, config.Binary, args, true)
}

// RunValidate runs `stagerun validate`.
func RunValidate(ctx context.Context, config Config, path string, format string) (stdout, stderr []byte, exitCode int, err error) {
	return testutils.RunStagerun(ctx, nil, config.Binary, []string{"validate", "--format", format, path}, true)
}
