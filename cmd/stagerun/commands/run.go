package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/stagerun/internal/app/run"
	"github.com/slok/stagerun/internal/engine"
	"github.com/slok/stagerun/internal/engine/fake"
	"github.com/slok/stagerun/internal/engine/local"
	"github.com/slok/stagerun/internal/log"
	"github.com/slok/stagerun/internal/progress"
	"github.com/slok/stagerun/internal/utils/env"
)

const (
	engineLocal = "local"
	engineFake  = "fake"

	outputAuto        = "auto"
	outputInteractive = "interactive"
	outputPlain       = "plain"
)

type RunCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	path        string
	unitTimeout time.Duration
	interval    time.Duration
	engine      string
	fakeDelay   time.Duration
	output      string
	envSpecs    []string
}

// NewRunCommand returns the run command.
func NewRunCommand(rootCmd *RootCommand, app *kingpin.Application) *RunCommand {
	c := &RunCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("run", "Run a pipeline file.")
	c.Cmd.Arg("file", "Pipeline YAML file.").Required().StringVar(&c.path)
	c.Cmd.Flag("unit-timeout", "Marks steps running longer than this as incomplete (0 disables it).").Default("0s").DurationVar(&c.unitTimeout)
	c.Cmd.Flag("interval", "Progress redraw interval.").Default(progress.DefaultInterval.String()).DurationVar(&c.interval)
	c.Cmd.Flag("engine", "Step execution engine.").Default(engineLocal).EnumVar(&c.engine, engineLocal, engineFake)
	c.Cmd.Flag("fake-delay", "Time each step takes on the fake engine.").Default("500ms").DurationVar(&c.fakeDelay)
	c.Cmd.Flag("output", "Progress output mode.").Default(outputAuto).EnumVar(&c.output, outputAuto, outputInteractive, outputPlain)
	c.Cmd.Flag("env", "Environment variables for all steps (KEY=VALUE or KEY from current environment). Can be repeated.").Short('e').StringsVar(&c.envSpecs)

	return c
}

func (c RunCommand) Name() string { return c.Cmd.FullCommand() }

func (c RunCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	extraEnv, err := env.ParseSpecs(c.envSpecs)
	if err != nil {
		return fmt.Errorf("invalid --env value: %w", err)
	}

	p, dir, err := loadPipeline(ctx, c.path, logger)
	if err != nil {
		return fmt.Errorf("could not load pipeline: %w", err)
	}

	eng, err := c.newEngine(dir, extraEnv, logger)
	if err != nil {
		return fmt.Errorf("could not create engine: %w", err)
	}

	screen := progress.NewScreen(progress.ScreenConfig{
		Out:     c.rootCmd.Stdout,
		Mode:    screenMode(c.output),
		NoColor: c.rootCmd.NoColor,
	})

	svc, err := run.NewService(run.ServiceConfig{
		Engine:      eng,
		Screen:      screen,
		Interval:    c.interval,
		UnitTimeout: c.unitTimeout,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	err = svc.Run(ctx, run.Request{Pipeline: *p})
	if err == nil {
		return nil
	}

	var sfe *progress.StageFailedError
	if errors.As(err, &sfe) {
		screen.Failure(sfe.Error())
		if sfe.Err != nil {
			fmt.Fprintf(c.rootCmd.Stderr, "%s\n", sfe.Err)
		}
	}

	return err
}

func (c RunCommand) newEngine(dir string, extraEnv map[string]string, logger log.Logger) (engine.Engine, error) {
	if c.engine == engineFake {
		return fake.NewEngine(fake.EngineConfig{
			DefaultDelay: c.fakeDelay,
			Logger:       logger,
		})
	}

	return local.NewEngine(local.EngineConfig{
		WorkDir: dir,
		BaseEnv: append(os.Environ(), env.List(extraEnv)...),
		Logger:  logger,
	})
}

func screenMode(output string) progress.ScreenMode {
	switch output {
	case outputInteractive:
		return progress.ScreenModeInteractive
	case outputPlain:
		return progress.ScreenModePlain
	default:
		return progress.ScreenModeAuto
	}
}
