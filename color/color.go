// Package color provides the curated palette used for CLI output.
package color

import "github.com/charmbracelet/lipgloss"

// New initializes a lipgloss.Color from a string value.
func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

// Standard ANSI palette.
var (
	Red    = New("1")
	Green  = New("2")
	Yellow = New("3")
	Blue   = New("4")
	Purple = New("5")
	Cyan   = New("6")
)

// High-intensity extension.
var (
	HiRed    = New("9")
	HiPurple = New("13")
)

// Gray marks secondary values such as timestamps.
var Gray = New("#808080")
