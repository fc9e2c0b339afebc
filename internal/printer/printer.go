package printer

import "github.com/slok/stagerun/internal/model"

// Printer knows how to print pipeline information in different formats.
type Printer interface {
	PrintPlan(p model.Pipeline) error
	PrintMessage(msg string) error
}
