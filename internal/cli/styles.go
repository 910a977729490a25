// Package cli renders terminal output for the phone-manager commands.
package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	AccentColor  = lipgloss.Color("#5B8DEF")
	MoneyColor   = lipgloss.Color("#4ECDC4")
	WarningColor = lipgloss.Color("#FFE66D")
	MutedColor   = lipgloss.Color("#666666")
	BorderColor  = lipgloss.Color("#333333")
)

var (
	// TitleStyle is used for command headings and box titles.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(AccentColor)

	// SuccessStyle marks completed work.
	SuccessStyle = lipgloss.NewStyle().Foreground(MoneyColor)

	// WarningStyle marks absorbed row failures.
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)

	// SubtleStyle is for footers and empty states.
	SubtleStyle = lipgloss.NewStyle().Foreground(MutedColor)

	// BoxStyle frames cycle summaries and migration status.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 2)

	// TableHeaderStyle is used for record table headers.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(AccentColor).
				Padding(0, 1)

	// TableCellStyle pads record table cells.
	TableCellStyle = lipgloss.NewStyle().Padding(0, 1)

	// AmountStyle right-aligns money columns.
	AmountStyle = TableCellStyle.Foreground(MoneyColor).Align(lipgloss.Right)

	// ProvenanceStyle dims the classifier that chose a record's type.
	ProvenanceStyle = lipgloss.NewStyle().Foreground(MutedColor).Italic(true)
)

// Icons.
const (
	PhoneIcon   = "📱"
	SuccessIcon = "✓"
	WarningIcon = "⚠"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatTitle formats a heading with the app icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(PhoneIcon + " " + title)
}

// FormatCount renders "label: n", as a warning when n is non-zero.
func FormatCount(label string, n int) string {
	line := fmt.Sprintf("%s: %d", label, n)
	if n > 0 {
		return FormatWarning(line)
	}
	return SubtleStyle.Render(line)
}

// RenderBox renders content under a title inside a rounded border.
func RenderBox(title, content string) string {
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render(title),
		"",
		content,
	))
}
