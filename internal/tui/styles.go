// Package tui provides terminal user interface components.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color palette for the TUI.
type Theme struct {
	Primary    lipgloss.AdaptiveColor
	Secondary  lipgloss.AdaptiveColor
	Success    lipgloss.AdaptiveColor
	Warning    lipgloss.AdaptiveColor
	Error      lipgloss.AdaptiveColor
	Muted      lipgloss.AdaptiveColor
	Foreground lipgloss.AdaptiveColor
	Border     lipgloss.AdaptiveColor
}

// DefaultTheme returns the default dvnt theme. The primary color is
// the DeviantArt green.
func DefaultTheme() Theme {
	return Theme{
		Primary:    lipgloss.AdaptiveColor{Light: "#00a865", Dark: "#00e59b"},
		Secondary:  lipgloss.AdaptiveColor{Light: "#5f6368", Dark: "#9aa0a6"},
		Success:    lipgloss.AdaptiveColor{Light: "#1e8e3e", Dark: "#81c995"},
		Warning:    lipgloss.AdaptiveColor{Light: "#f9ab00", Dark: "#fdd663"},
		Error:      lipgloss.AdaptiveColor{Light: "#d93025", Dark: "#f28b82"},
		Muted:      lipgloss.AdaptiveColor{Light: "#80868b", Dark: "#6e7681"},
		Foreground: lipgloss.AdaptiveColor{Light: "#202124", Dark: "#e8eaed"},
		Border:     lipgloss.AdaptiveColor{Light: "#dadce0", Dark: "#3c4043"},
	}
}

// Styles holds the styled components for the TUI.
type Styles struct {
	theme Theme

	Title    lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Selected lipgloss.Style
	Cursor   lipgloss.Style
	Box      lipgloss.Style
}

// NewStyles creates a new Styles with the resolved theme.
func NewStyles() *Styles {
	return NewStylesWithTheme(ResolveTheme())
}

// NewStylesWithTheme creates a new Styles with a custom theme.
func NewStylesWithTheme(theme Theme) *Styles {
	s := &Styles{theme: theme}

	s.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.Primary).
		MarginBottom(1)

	s.Body = lipgloss.NewStyle().
		Foreground(theme.Foreground)

	s.Muted = lipgloss.NewStyle().
		Foreground(theme.Muted)

	s.Success = lipgloss.NewStyle().
		Foreground(theme.Success)

	s.Warning = lipgloss.NewStyle().
		Foreground(theme.Warning)

	s.Error = lipgloss.NewStyle().
		Foreground(theme.Error)

	s.Selected = lipgloss.NewStyle().
		Background(theme.Primary).
		Foreground(lipgloss.Color("#ffffff")).
		Padding(0, 1)

	s.Cursor = lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	s.Box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(1, 2)

	return s
}

// Theme returns the current theme.
func (s *Styles) Theme() Theme {
	return s.theme
}

// RenderKeyValue renders a key-value pair.
func (s *Styles) RenderKeyValue(key, value string) string {
	return s.Muted.Render(key+": ") + s.Body.Render(value)
}

// RenderStatus renders a status message with appropriate styling.
func (s *Styles) RenderStatus(ok bool, message string) string {
	if ok {
		return s.Success.Render("✓ " + message)
	}
	return s.Error.Render("✗ " + message)
}
