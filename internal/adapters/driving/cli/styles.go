package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Colour palette shared by all command output.
var (
	colourPrimary = lipgloss.Color("#7C3AED")
	colourAccent  = lipgloss.Color("#06B6D4")
	colourMuted   = lipgloss.Color("#6C7086")
	colourSuccess = lipgloss.Color("#A6E3A1")
	colourWarning = lipgloss.Color("#F9E2AF")
	colourError   = lipgloss.Color("#F38BA8")
)

// Output styles. They carry no padding or margins so piped output stays
// plain text when colour is unavailable.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colourPrimary)
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(colourAccent)
	mutedStyle   = lipgloss.NewStyle().Foreground(colourMuted)
	successStyle = lipgloss.NewStyle().Foreground(colourSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colourWarning)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colourError)
)

// statusText renders a configured/not configured marker.
func statusText(ok bool) string {
	if ok {
		return successStyle.Render("configured")
	}
	return warningStyle.Render("not configured")
}
