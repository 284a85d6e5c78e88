// Package term resolves whether output is colored and holds the lipgloss
// styles shared by logging and display.
//
// [Configure] runs once during startup. When colors are disabled every
// style renders its input unchanged.
package term

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/backmassage/axon/internal/config"
)

var enabled bool

// Styles are the shared text styles.
var Styles = struct {
	Info    lipgloss.Style
	Success lipgloss.Style
	Warn    lipgloss.Style
	Error   lipgloss.Style
	Debug   lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Old     lipgloss.Style // A name being renamed away from.
	New     lipgloss.Style // The name it becomes.
}{
	Info:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
	Success: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
	Warn:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
	Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	Debug:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
	Bold:    lipgloss.NewStyle().Bold(true),
	Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	Old:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	New:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
}

// Configure resolves the color mode and sets the lipgloss color profile
// accordingly. Call once during startup (from [logging.NewLogger]).
func Configure(mode config.ColorMode) {
	enabled = resolve(mode)
	if enabled {
		lipgloss.SetColorProfile(termenv.ANSI256)
	} else {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// Enabled reports whether colors are currently active.
func Enabled() bool { return enabled }

// resolve determines whether colors should be enabled based on the configured
// mode, TTY detection, and the NO_COLOR env var (https://no-color.org).
func resolve(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default: // ColorAuto
		return IsTerminal(os.Stdout) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is attached to a TTY.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Interactive reports whether the user can answer a prompt.
func Interactive() bool {
	return IsTerminal(os.Stdin) && IsTerminal(os.Stdout)
}
