package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ══════════════════════════════════════════════════════════════════════════════
// DESIGN TOKENS - Consistent spacing, colors, and visual language
// ══════════════════════════════════════════════════════════════════════════════

// Spacing constants for consistent layout (in characters)
const (
	SpaceXS = 1
	SpaceSM = 2
	SpaceMD = 3
	SpaceLG = 4
)

// ══════════════════════════════════════════════════════════════════════════════
// COLOR PALETTE - Dracula-inspired
// ══════════════════════════════════════════════════════════════════════════════

var (
	// Base colors
	ColorBgSubtle    = lipgloss.Color("#363949")
	ColorBgHighlight = lipgloss.Color("#44475A")
	ColorText        = lipgloss.Color("#F8F8F2")
	ColorSubtext     = lipgloss.Color("#BFBFBF")
	ColorMuted       = lipgloss.Color("#6272A4")

	// Accent colors
	ColorPrimary   = lipgloss.Color("#BD93F9")
	ColorSecondary = lipgloss.Color("#6272A4")
	ColorInfo      = lipgloss.Color("#8BE9FD")
	ColorSuccess   = lipgloss.Color("#50FA7B")
	ColorWarning   = lipgloss.Color("#FFB86C")
	ColorDanger    = lipgloss.Color("#FF5555")
)

// ══════════════════════════════════════════════════════════════════════════════
// FIELD STYLES
// ══════════════════════════════════════════════════════════════════════════════

// inputBoxStyle is the bordered box around a text input
func inputBoxStyle(t Theme, focused bool, width int) lipgloss.Style {
	border := t.Border
	if focused {
		border = t.Primary
	}
	return t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(width)
}

// RenderFieldLabel renders a field caption, marking required fields
func RenderFieldLabel(t Theme, label string, required, missing bool) string {
	style := t.Renderer.NewStyle().Foreground(t.Secondary).Bold(true)
	if missing {
		style = style.Foreground(t.Blocked)
	}
	if required {
		label += " *"
	}
	return style.Render(label)
}

// RenderStepBadge renders "Step 1/3 · Title"
func RenderStepBadge(t Theme, step, total int, title string) string {
	badge := t.Renderer.NewStyle().
		Foreground(t.Primary).
		Bold(true).
		Render(fmt.Sprintf("Step %d/%d", step, total))
	return badge + t.Renderer.NewStyle().Foreground(t.Subtext).Render(" · "+title)
}

// ══════════════════════════════════════════════════════════════════════════════
// DIVIDERS AND SEPARATORS
// ══════════════════════════════════════════════════════════════════════════════

// RenderDivider renders a horizontal divider line
func RenderDivider(t Theme, width int) string {
	if width <= 0 {
		return ""
	}
	return t.Renderer.NewStyle().
		Foreground(t.Border).
		Render(strings.Repeat("─", width))
}

// RenderSubtleDivider renders a more subtle divider using dots
func RenderSubtleDivider(t Theme, width int) string {
	if width <= 0 {
		return ""
	}
	return t.Renderer.NewStyle().
		Foreground(t.Subtext).
		Render(strings.Repeat("·", width))
}
