// Package cli holds the terminal output helpers of the jp2mi command
package cli

import (
	"fmt"
	"io"
	"strings"

	"jp2mi/internal/config"

	"github.com/charmbracelet/lipgloss"
)

// Palette is a set of styles for command output
type Palette struct {
	Name    string
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Header  lipgloss.Style
	Box     lipgloss.Style
}

// CurrentTheme is the palette in use, starts with default
var CurrentTheme = NewPalette("default")

// NewPalette builds a palette from a configured theme name. Unknown names get
// the default theme.
func NewPalette(name string) Palette {
	c := config.GetTheme(name)
	return Palette{
		Name:    name,
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(c["primary"])),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(c["error"])),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(c["dimmed"])),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color(c["info"])),
		Header:  lipgloss.NewStyle().Foreground(lipgloss.Color(c["primary"])).Bold(true),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(c["border"])).
			Padding(0, 1),
	}
}

// SetTheme switches CurrentTheme
func SetTheme(name string) {
	CurrentTheme = NewPalette(name)
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintln(w, CurrentTheme.Success.Render("✓ "+message))
}

// PrintError prints an error message
func PrintError(w io.Writer, message string) {
	fmt.Fprintln(w, CurrentTheme.Error.Render("✗ "+message))
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintln(w, CurrentTheme.Warning.Render("! "+message))
}

// PrintInfo prints an informational message
func PrintInfo(w io.Writer, message string) {
	fmt.Fprintln(w, CurrentTheme.Info.Render("ℹ "+message))
}

// PrintHeader prints a section header
func PrintHeader(w io.Writer, message string) {
	fmt.Fprintln(w, "\n"+CurrentTheme.Header.Render(message))
	fmt.Fprintln(w, strings.Repeat("─", lipgloss.Width(message)))
}

// DrawBox frames content with the current theme's border
func DrawBox(content string) string {
	return CurrentTheme.Box.Render(content)
}

// Logo is the banner shown above the help text
func Logo() string {
	return CurrentTheme.Header.Render(`
     _       ____            _
    (_)_ __ |___ \ _ __ ___ (_)
    | | '_ \  __) | '_ ' _ \| |
    | | |_) |/ __/| | | | | | |
   _/ | .__/|_____|_| |_| |_|_|
  |__/|_|`)
}
