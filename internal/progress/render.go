package progress

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/slok/stagerun/internal/model"
)

var spinnerFrames = []string{"—", "\\", "|", "/"}

// Every rendered unit must take a single line so the redraws can count them.
var lineBreakReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

const (
	glyphPending    = "·"
	glyphCompleted  = "✔"
	glyphFailed     = "✘"
	glyphIncomplete = "?"
	// glyphAbandoned is used on final frames for units that were still running when the group
	// returned.
	glyphAbandoned = "…"
)

// UnitView is the render input of a single unit.
type UnitView struct {
	Label  string
	Status model.ExecutionStatus
}

// FrameView is the render input of a group frame.
type FrameView struct {
	Stage int
	Total int
	Units []UnitView
	// Tick selects the spinner animation frame.
	Tick int
	// Final frames are the last ones of a group, they stay on the terminal.
	Final bool
}

// Decorator decorates a rendered line based on the unit status.
type Decorator func(status model.ExecutionStatus, line string) string

// NoDecoration returns the lines untouched.
func NoDecoration(_ model.ExecutionStatus, line string) string { return line }

// NewColorDecorator returns a decorator that colors the lines based on their status.
// It follows color.NoColor, so it writes plain lines when fatih/color disabled the colors.
func NewColorDecorator() Decorator {
	running := color.New(color.FgHiBlack).SprintFunc()
	completed := color.New(color.FgGreen).SprintFunc()
	failed := color.New(color.FgRed).SprintFunc()
	incomplete := color.New(color.FgYellow).SprintFunc()

	return func(status model.ExecutionStatus, line string) string {
		switch status {
		case model.ExecutionStatusRunning, model.ExecutionStatusPending:
			return running(line)
		case model.ExecutionStatusCompleted:
			return completed(line)
		case model.ExecutionStatusFailed:
			return failed(line)
		case model.ExecutionStatusIncomplete:
			return incomplete(line)
		}
		return line
	}
}

// RenderHeader renders the header line of a group.
func RenderHeader(stage, total int, label string) string {
	return fmt.Sprintf("[%d/%d] %s", stage, total, lineBreakReplacer.Replace(label))
}

// RenderLines renders one line per unit, in unit order.
func RenderLines(view FrameView, deco Decorator) []string {
	if deco == nil {
		deco = NoDecoration
	}

	lines := make([]string, 0, len(view.Units))
	for _, u := range view.Units {
		line := fmt.Sprintf("  [%d/%d] %s %s", view.Stage, view.Total, lineBreakReplacer.Replace(u.Label), glyph(u.Status, view.Tick, view.Final))
		lines = append(lines, deco(u.Status, line))
	}

	return lines
}

// RenderFrame returns the terminal output that replaces the previous frame of prevLines lines
// with the new lines. Lines wider than the terminal wrap and are not fully erased.
func RenderFrame(prevLines int, lines []string) string {
	var b strings.Builder
	if prevLines > 0 {
		// Move the cursor to the first line of the previous frame.
		fmt.Fprintf(&b, "\x1b[%dA", prevLines)
	}
	for _, l := range lines {
		b.WriteString("\r\x1b[2K")
		b.WriteString(l)
		b.WriteString("\n")
	}

	// Clear leftovers if the new frame is shorter.
	for i := len(lines); i < prevLines; i++ {
		b.WriteString("\r\x1b[2K\n")
	}

	return b.String()
}

func glyph(s model.ExecutionStatus, tick int, final bool) string {
	switch s {
	case model.ExecutionStatusPending:
		return glyphPending
	case model.ExecutionStatusRunning:
		if final {
			return glyphAbandoned
		}
		return spinnerFrames[tick%len(spinnerFrames)]
	case model.ExecutionStatusCompleted:
		return glyphCompleted
	case model.ExecutionStatusFailed:
		return glyphFailed
	case model.ExecutionStatusIncomplete:
		return glyphIncomplete
	}
	return glyphIncomplete
}
