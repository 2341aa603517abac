package components

import (
	"jp2mi/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// StatusBar shows the last message, with a spinner while a codec runs
type StatusBar struct {
	text    string
	isError bool
	spinner spinner.Model
	loading bool
}

func NewStatusBar() *StatusBar {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Theme.Help

	return &StatusBar{spinner: s}
}

func (s *StatusBar) SetLoading(loading bool) {
	s.loading = loading
}

func (s *StatusBar) Loading() bool {
	return s.loading
}

func (s *StatusBar) SetText(text string) {
	s.text = text
	s.isError = false
}

func (s *StatusBar) SetError(text string) {
	s.text = text
	s.isError = true
}

func (s *StatusBar) Text() string {
	return s.text
}

// Tick starts the spinner animation
func (s *StatusBar) Tick() tea.Cmd {
	return s.spinner.Tick
}

func (s *StatusBar) Update(msg tea.Msg) tea.Cmd {
	if s.loading {
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return cmd
	}
	return nil
}

func (s *StatusBar) View() string {
	if s.text == "" && !s.loading {
		return ""
	}

	style := styles.Theme.Help
	if s.isError {
		style = styles.Theme.Error
	}
	if s.loading {
		return style.Render(s.spinner.View() + " " + s.text)
	}
	return style.Render(s.text)
}
