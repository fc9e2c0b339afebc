package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/slok/stagerun/internal/model"
)

// TablePrinter prints pipeline information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintPlan prints the stages and steps of a pipeline in execution order.
func (t *TablePrinter) PrintPlan(p model.Pipeline) error {
	if p.Name != "" {
		fmt.Fprintf(t.writer, "Pipeline:   %s\n", p.Name)
	}
	fmt.Fprintf(t.writer, "Stages:     %d\n", len(p.Stages))
	fmt.Fprintf(t.writer, "Steps:      %d\n\n", p.StepCount())

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header
	fmt.Fprintln(tw, "STAGE\tSTEP\tRUN\tTIMEOUT")

	// Print rows
	for i, st := range p.Stages {
		for _, step := range st.Steps {
			timeout := "-"
			if step.Timeout > 0 {
				timeout = step.Timeout.String()
			}
			fmt.Fprintf(tw, "%d/%d %s\t%s\t%s\t%s\n", i+1, len(p.Stages), st.Name, step.Name, stepRun(step), timeout)
		}
	}

	return nil
}

// PrintMessage prints a simple message.
func (t *TablePrinter) PrintMessage(msg string) error {
	_, err := fmt.Fprintln(t.writer, msg)
	return err
}

func stepRun(s model.Step) string {
	if s.Shell != "" {
		return s.Shell
	}
	return strings.Join(s.Command, " ")
}
