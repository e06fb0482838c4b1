package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/usage-analytics/internal/models"
)

// Color definitions for the report theme.
var (
	Primary   = lipgloss.Color("205") // Pink
	Secondary = lipgloss.Color("63")  // Purple
	Subtle    = lipgloss.Color("240") // Gray

	Success = lipgloss.Color("42")  // Green
	Error   = lipgloss.Color("196") // Red
	Warning = lipgloss.Color("220") // Yellow
	Info    = lipgloss.Color("39")  // Blue

	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")
)

// TitleStyle is used for the report heading.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// SectionStyle is used for section headings.
var SectionStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Secondary)

// LabelStyle styles the left column of key/value rows.
var LabelStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Width(22)

// ValueStyle styles the right column of key/value rows.
var ValueStyle = lipgloss.NewStyle().
	Foreground(TextPrimary)

// MutedStyle is used for secondary text.
var MutedStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// CardStyle creates a bordered card container.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(0, 1).
	MarginBottom(1)

// Severity styles, from most to least urgent.
var (
	CriticalStyle = lipgloss.NewStyle().Foreground(Error).Bold(true)
	HighStyle     = lipgloss.NewStyle().Foreground(Error)
	MediumStyle   = lipgloss.NewStyle().Foreground(Warning)
	LowStyle      = lipgloss.NewStyle().Foreground(Info)
	InfoStyle     = lipgloss.NewStyle().Foreground(TextSecondary)
)

// SeverityStyle returns the style for a severity.
func SeverityStyle(s models.Severity) lipgloss.Style {
	switch s {
	case models.SeverityCritical:
		return CriticalStyle
	case models.SeverityHigh:
		return HighStyle
	case models.SeverityMedium:
		return MediumStyle
	case models.SeverityLow:
		return LowStyle
	default:
		return InfoStyle
	}
}

// BudgetStyle colors a budget usage percentage.
func BudgetStyle(b *models.BudgetAnalysis) lipgloss.Style {
	switch {
	case b.IsAlertExceeded:
		return CriticalStyle
	case b.IsWarningExceeded:
		return MediumStyle
	default:
		return lipgloss.NewStyle().Foreground(Success)
	}
}

// DirectionStyle colors a trend direction.
func DirectionStyle(d models.TrendDirection) lipgloss.Style {
	switch d {
	case models.TrendIncreasing:
		return lipgloss.NewStyle().Foreground(Warning)
	case models.TrendDecreasing:
		return lipgloss.NewStyle().Foreground(Success)
	default:
		return InfoStyle
	}
}
