package display

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/backmassage/axon/internal/config"
)

var bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))

// PrintBanner prints the ASCII art banner and version.
func PrintBanner(w io.Writer) {
	art := `    _
   / \   __  _____  _ __
  / _ \  \ \/ / _ \| '_ \
 / ___ \  >  < (_) | | | |
/_/   \_\/_/\_\___/|_| |_|`
	fmt.Fprintln(w, bannerStyle.Render(art))
	fmt.Fprintln(w, "naming conventions for notes, v"+config.Version)
	fmt.Fprintln(w)
}
