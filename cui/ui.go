// Package cui defines charcter user interfaces for I/O.
package cui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"
	isatty "github.com/mattn/go-isatty"
)

// UI provides formatted output for the application.
type UI interface {
	// Output writes out the passed argument s to Writer with a line break.
	Output(s string)
	// Info is the same as Output, but distinguish these for composition.
	Info(s string)
	// Warn writes out the passed argument s to ErrWriter with a line break.
	Warn(s string)
	// Error writes out the passed argument s to ErrWriter with a line break.
	Error(s string)

	Writer() io.Writer
	ErrWriter() io.Writer
}

type basicUI struct {
	writer, errWriter io.Writer
}

// New creates a new UI with passed options. The default writers are
// stdout and stderr, which translate escape sequences on Windows.
func New(opts ...Option) UI {
	ui := &basicUI{
		writer:    colorable.NewColorableStdout(),
		errWriter: colorable.NewColorableStderr(),
	}
	for _, opt := range opts {
		opt(ui)
	}
	return ui
}

// Option represents an option for New.
type Option func(*basicUI)

// Writer modifies the default writer to w.
func Writer(w io.Writer) Option {
	return func(u *basicUI) {
		u.writer = w
	}
}

// ErrWriter modifies the default error writer to w.
func ErrWriter(ew io.Writer) Option {
	return func(u *basicUI) {
		u.errWriter = ew
	}
}

func (u *basicUI) Output(s string) {
	fmt.Fprintln(u.writer, s)
}

func (u *basicUI) Info(s string) {
	u.Output(s)
}

func (u *basicUI) Warn(s string) {
	fmt.Fprintln(u.errWriter, s)
}

func (u *basicUI) Error(s string) {
	fmt.Fprintln(u.errWriter, s)
}

func (u *basicUI) Writer() io.Writer {
	return u.writer
}

func (u *basicUI) ErrWriter() io.Writer {
	return u.errWriter
}

type coloredUI struct {
	UI
}

// NewColored wraps provided ui with coloredUI.
// If ui is *coloredUI, NewColored returns it as it is.
// Colored UI writes Info in blue, Warn in yellow and Error in red.
func NewColored(ui UI) UI {
	if ui, ok := ui.(*coloredUI); ok {
		return ui
	}
	return &coloredUI{ui}
}

func (u *coloredUI) Info(s string) {
	u.UI.Info(color.BlueString(s))
}

func (u *coloredUI) Warn(s string) {
	u.UI.Warn(color.YellowString(s))
}

func (u *coloredUI) Error(s string) {
	u.UI.Error(color.RedString(s))
}

// IsTerminal reports whether f is a terminal, including Cygwin and MSYS2 ones.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
