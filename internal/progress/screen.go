package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ScreenMode sets how the screen draws the frames.
type ScreenMode int

const (
	// ScreenModeAuto uses interactive mode when the output is a terminal.
	ScreenModeAuto ScreenMode = iota
	// ScreenModeInteractive redraws the frames in place on every tick.
	ScreenModeInteractive
	// ScreenModePlain only writes the final frame of each group.
	ScreenModePlain
)

// ScreenConfig is the configuration of the screen.
type ScreenConfig struct {
	Out     io.Writer
	Mode    ScreenMode
	NoColor bool
}

func (c *ScreenConfig) defaults() {
	if c.Out == nil {
		c.Out = os.Stdout
	}
}

// Screen writes the render frames into the terminal.
type Screen struct {
	mu          sync.Mutex
	out         io.Writer
	interactive bool
	deco        Decorator
	colored     bool
	lines       int
}

// NewScreen returns a new screen.
func NewScreen(cfg ScreenConfig) *Screen {
	cfg.defaults()

	terminal := isTerminal(cfg.Out)
	interactive := cfg.Mode == ScreenModeInteractive
	if cfg.Mode == ScreenModeAuto {
		interactive = terminal
	}

	colored := interactive && useColor(cfg.NoColor, terminal)
	deco := NoDecoration
	if colored {
		deco = NewColorDecorator()
	}

	return &Screen{
		out:         cfg.Out,
		interactive: interactive,
		deco:        deco,
		colored:     colored,
	}
}

// Header writes a group header.
func (s *Screen) Header(stage, total int, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := RenderHeader(stage, total, label)
	if s.colored {
		h = color.New(color.Bold).Sprint(h)
	}
	fmt.Fprintln(s.out, h)
	s.lines = 0
}

// Draw replaces the previous frame with a new one. Plain screens ignore non final frames.
func (s *Screen) Draw(view FrameView) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !view.Final && !s.interactive {
		return
	}

	lines := RenderLines(view, s.deco)
	if !s.interactive {
		for _, l := range lines {
			fmt.Fprintln(s.out, l)
		}
		return
	}
	fmt.Fprint(s.out, RenderFrame(s.lines, lines))

	s.lines = len(lines)
	if view.Final {
		s.lines = 0
	}
}

// Failure writes a failure message.
func (s *Screen) Failure(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.colored {
		msg = color.New(color.FgRed, color.Bold).Sprint(msg)
	}
	fmt.Fprintln(s.out, msg)
}

// useColor reports if colors can be written, only terminals get them and NO_COLOR
// (https://no-color.org) disables them.
func useColor(noColor, terminal bool) bool {
	return !noColor && terminal && os.Getenv("NO_COLOR") == ""
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
