package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/stagerun/internal/printer"
)

type ValidateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	path   string
	format string
	quiet  bool
}

// NewValidateCommand returns the validate command.
func NewValidateCommand(rootCmd *RootCommand, app *kingpin.Application) *ValidateCommand {
	c := &ValidateCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("validate", "Validate a pipeline file and print its plan.")
	c.Cmd.Arg("file", "Pipeline YAML file.").Required().StringVar(&c.path)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")
	c.Cmd.Flag("quiet", "Only print the validation result, not the plan.").Short('q').BoolVar(&c.quiet)

	return c
}

func (c ValidateCommand) Name() string { return c.Cmd.FullCommand() }

func (c ValidateCommand) Run(ctx context.Context) error {
	p, _, err := loadPipeline(ctx, c.path, c.rootCmd.Logger)
	if err != nil {
		return fmt.Errorf("invalid pipeline: %w", err)
	}

	var pr printer.Printer
	switch c.format {
	case "json":
		pr = printer.NewJSONPrinter(c.rootCmd.Stdout)
	default: // table
		pr = printer.NewTablePrinter(c.rootCmd.Stdout)
	}

	if c.quiet {
		if err := pr.PrintMessage(fmt.Sprintf("pipeline %q is valid", p.Name)); err != nil {
			return fmt.Errorf("could not print message: %w", err)
		}
		return nil
	}

	if err := pr.PrintPlan(*p); err != nil {
		return fmt.Errorf("could not print plan: %w", err)
	}

	return nil
}
