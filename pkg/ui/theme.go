package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme carries the renderer and adaptive colors every view draws with.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor

	Open    lipgloss.AdaptiveColor // success, committed values
	Blocked lipgloss.AdaptiveColor // errors, missing fields
	Warning lipgloss.AdaptiveColor

	Base lipgloss.Style
}

// DefaultTheme returns the Dracula-inspired palette adapted for light and
// dark terminals.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: string(ColorPrimary)},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: string(ColorSecondary)},
		Subtext:   lipgloss.AdaptiveColor{Light: "#777777", Dark: string(ColorSubtext)},
		Border:    lipgloss.AdaptiveColor{Light: "#DDDDDD", Dark: string(ColorBgHighlight)},
		Highlight: lipgloss.AdaptiveColor{Light: "#EEEEEE", Dark: string(ColorBgSubtle)},

		Open:    lipgloss.AdaptiveColor{Light: "#00A800", Dark: string(ColorSuccess)},
		Blocked: lipgloss.AdaptiveColor{Light: "#D70000", Dark: string(ColorDanger)},
		Warning: lipgloss.AdaptiveColor{Light: "#B36B00", Dark: string(ColorWarning)},
	}
	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: string(ColorText)})
	return t
}

// ThemeFor returns DefaultTheme with the background forced when name is
// "dark" or "light". "auto" keeps terminal detection.
func ThemeFor(name string, r *lipgloss.Renderer) Theme {
	switch name {
	case "dark":
		r.SetHasDarkBackground(true)
	case "light":
		r.SetHasDarkBackground(false)
	}
	return DefaultTheme(r)
}
