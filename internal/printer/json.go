package printer

import (
	"encoding/json"
	"io"

	"github.com/slok/stagerun/internal/model"
)

// JSONPrinter prints pipeline information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// planOutput represents the pipeline plan output.
type planOutput struct {
	Name   string        `json:"name,omitempty"`
	Stages []stageOutput `json:"stages"`
}

type stageOutput struct {
	Index int          `json:"index"`
	Name  string       `json:"name"`
	Steps []stepOutput `json:"steps"`
}

type stepOutput struct {
	Name    string            `json:"name"`
	Command []string          `json:"command,omitempty"`
	Shell   string            `json:"shell,omitempty"`
	Dir     string            `json:"dir,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	Timeout string            `json:"timeout,omitempty"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintPlan prints the pipeline plan as JSON.
func (j *JSONPrinter) PrintPlan(p model.Pipeline) error {
	out := planOutput{Name: p.Name, Stages: make([]stageOutput, 0, len(p.Stages))}
	for i, st := range p.Stages {
		so := stageOutput{Index: i + 1, Name: st.Name, Steps: make([]stepOutput, 0, len(st.Steps))}
		for _, step := range st.Steps {
			stp := stepOutput{
				Name:    step.Name,
				Command: step.Command,
				Shell:   step.Shell,
				Dir:     step.Dir,
				Env:     step.Env,
			}
			if step.Timeout > 0 {
				stp.Timeout = step.Timeout.String()
			}
			so.Steps = append(so.Steps, stp)
		}
		out.Stages = append(out.Stages, so)
	}

	return j.encode(out)
}

// PrintMessage prints a simple message as JSON.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
