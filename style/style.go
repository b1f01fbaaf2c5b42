// Package style provides a functional API for composing and applying lipgloss-based styles to CLI output.
package style

import (
	"github.com/charmbracelet/lipgloss"
)

// New returns an empty lipgloss.Style used as a foundation for visual composition.
func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Fg returns a stateless rendering function that applies the specified foreground color to a string.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return New().Foreground(c).Render(s) }
}

// Text transformation helpers.
var (
	Faint  = func(s string) string { return New().Faint(true).Render(s) }
	Bold   = func(s string) string { return New().Bold(true).Render(s) }
	Italic = func(s string) string { return New().Italic(true).Render(s) }
)
