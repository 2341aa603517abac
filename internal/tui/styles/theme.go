package styles

import (
	"jp2mi/internal/config"

	"github.com/charmbracelet/lipgloss"
)

// Styles defines the core UI styles
type Styles struct {
	App     lipgloss.Style
	Title   lipgloss.Style
	Full    lipgloss.Style
	Dimmed  lipgloss.Style
	Focused lipgloss.Style
	Error   lipgloss.Style
	Help    lipgloss.Style
}

// Theme holds the styles in use
var Theme = FromPalette(config.GetTheme("default"))

// Apply switches Theme to the named palette
func Apply(name string) {
	Theme = FromPalette(config.GetTheme(name))
}

// FromPalette builds styles from a palette of lipgloss colours keyed by role
func FromPalette(p map[string]string) Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p["border"])),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p["primary"])).
			MarginBottom(1),
		Full: lipgloss.NewStyle(),
		Dimmed: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p["dimmed"])).
			Faint(true),
		Focused: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p["primary"])).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p["error"])),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p["info"])),
	}
}
