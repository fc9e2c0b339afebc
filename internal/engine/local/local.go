package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"k8s.io/client-go/util/homedir"

	"github.com/slok/stagerun/internal/log"
	"github.com/slok/stagerun/internal/model"
	"github.com/slok/stagerun/internal/utils/env"
)

const (
	defaultOutputTailLines = 20
	maxOutputLineBytes     = 4 * 1024
	waitDelay              = time.Second
)

// EngineConfig is the configuration for the local engine.
type EngineConfig struct {
	// WorkDir is the base directory for steps with a relative dir.
	WorkDir string
	// Shell is the shell used for shell steps.
	Shell string
	// BaseEnv is the environment inherited by all the steps, by default the process one.
	BaseEnv []string
	// OutputTailLines is the number of output lines kept on the result.
	OutputTailLines int
	Logger          log.Logger
}

func (c *EngineConfig) defaults() error {
	if c.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("could not get working directory: %w", err)
		}
		c.WorkDir = wd
	}
	if c.Shell == "" {
		c.Shell = "sh"
	}
	if c.BaseEnv == nil {
		c.BaseEnv = os.Environ()
	}
	if c.OutputTailLines <= 0 {
		c.OutputTailLines = defaultOutputTailLines
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "engine.Local"})
	return nil
}

// Engine executes the steps as local processes.
type Engine struct {
	workDir   string
	shell     string
	baseEnv   []string
	tailLines int
	logger    log.Logger
}

// NewEngine creates a new local engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		workDir:   cfg.WorkDir,
		shell:     cfg.Shell,
		baseEnv:   cfg.BaseEnv,
		tailLines: cfg.OutputTailLines,
		logger:    cfg.Logger,
	}, nil
}

// Exec runs the step command. The step timeout, if any, kills the process.
func (e *Engine) Exec(ctx context.Context, step model.Step) (*model.ExecResult, error) {
	if step.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, step.Timeout)
		defer cancel()
	}

	args := step.Command
	if step.Shell != "" {
		args = []string{e.shell, "-c", step.Shell}
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("step %q has no command: %w", step.Name, model.ErrNotValid)
	}

	logger := e.logger.WithCtxValues(ctx).WithValues(log.Kv{"step": step.Name})
	logger.Debugf("Executing command: %v", args)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = e.resolveDir(step.Dir)
	cmd.Env = append(append([]string{}, e.baseEnv...), env.List(step.Env)...)

	out := newTailWriter(e.tailLines, maxOutputLineBytes)
	cmd.Stdout = out
	cmd.Stderr = out
	// Don't wait for orphaned children holding the output open once the process is killed.
	cmd.WaitDelay = waitDelay

	err := cmd.Run()

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("failed to execute command: %w", err)
		}
		exitCode = exitErr.ExitCode()
		if ctx.Err() != nil {
			return nil, fmt.Errorf("step %q killed: %w", step.Name, ctx.Err())
		}
	}

	output := out.String()
	logger.Debugf("Command exited with code %d", exitCode)
	if output != "" {
		logger.Debugf("Command output:\n%s", output)
	}

	return &model.ExecResult{
		ExitCode: exitCode,
		Output:   output,
	}, nil
}

func (e *Engine) resolveDir(dir string) string {
	switch {
	case dir == "":
		return e.workDir
	case dir == "~":
		return homedir.HomeDir()
	case strings.HasPrefix(dir, "~/"):
		return filepath.Join(homedir.HomeDir(), dir[2:])
	case filepath.IsAbs(dir):
		return dir
	}
	return filepath.Join(e.workDir, dir)
}

// tailWriter keeps the last N lines written, lines longer than maxLineBytes keep their end.
type tailWriter struct {
	mu           sync.Mutex
	max          int
	maxLineBytes int
	lines        []string
	partial      []byte
}

func newTailWriter(max, maxLineBytes int) *tailWriter {
	return &tailWriter{max: max, maxLineBytes: maxLineBytes}
}

func (w *tailWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := len(p)
	for len(p) > 0 {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			w.appendPartial(p)
			break
		}
		w.appendPartial(p[:i])
		w.push(string(w.partial))
		w.partial = w.partial[:0]
		p = p[i+1:]
	}

	return n, nil
}

func (w *tailWriter) appendPartial(p []byte) {
	if len(p) >= w.maxLineBytes {
		w.partial = append(w.partial[:0], p[len(p)-w.maxLineBytes:]...)
		return
	}
	w.partial = append(w.partial, p...)
	if extra := len(w.partial) - w.maxLineBytes; extra > 0 {
		w.partial = append(w.partial[:0], w.partial[extra:]...)
	}
}

func (w *tailWriter) push(line string) {
	w.lines = append(w.lines, line)
	if len(w.lines) > w.max {
		w.lines = w.lines[len(w.lines)-w.max:]
	}
}

func (w *tailWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	lines := w.lines
	if len(w.partial) > 0 {
		lines = append(append([]string{}, lines...), string(w.partial))
		if len(lines) > w.max {
			lines = lines[len(lines)-w.max:]
		}
	}
	return strings.Join(lines, "\n")
}
