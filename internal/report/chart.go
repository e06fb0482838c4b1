package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/usage-analytics/internal/models"
)

// RenderCostChart plots daily cost and, when present, the forecast that
// continues it from the last observed day.
func RenderCostChart(daily []models.TrendPoint, forecast *models.Forecast, width, height int) string {
	if len(daily) == 0 {
		return MutedStyle.Render("No data available")
	}

	// Ensure minimum dimensions
	width = max(width, 20)
	height = max(height, 3)

	observed := make([]float64, len(daily))
	for i, p := range daily {
		observed[i] = p.Value
	}

	if forecast == nil || len(forecast.Points) == 0 {
		return asciigraph.Plot(observed,
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Caption("Daily cost"),
		)
	}

	n := len(observed)
	total := n + len(forecast.Points)
	actual := make([]float64, total)
	predicted := make([]float64, total)
	for i := 0; i < total; i++ {
		actual[i] = math.NaN()
		predicted[i] = math.NaN()
	}
	copy(actual, observed)
	predicted[n-1] = observed[n-1]
	for i, p := range forecast.Points {
		predicted[n+i] = p.Cost
	}

	return asciigraph.PlotMany([][]float64{actual, predicted},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("Daily cost (blue) and forecast (red)"),
		asciigraph.SeriesColors(
			asciigraph.Blue,
			asciigraph.Red,
		),
	)
}

// RenderBarChart creates a simple horizontal bar chart.
func RenderBarChart(values []float64, labels []string, width int) string {
	if len(values) == 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	maxLabelLen := 0
	for _, l := range labels {
		maxLabelLen = max(maxLabelLen, lipgloss.Width(l))
	}

	barWidth := max(width-maxLabelLen-12, 10) // Leave room for label and value

	lines := make([]string, 0, len(values))
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}

		barLen := max(int(v/maxVal*float64(barWidth)), 0)
		lines = append(lines, fmt.Sprintf("%*s │%s %.2f", maxLabelLen, label, strings.Repeat("█", barLen), v))
	}

	return strings.Join(lines, "\n")
}

// HeatmapBlocks are Unicode block characters for heatmaps (low to high intensity).
var HeatmapBlocks = []rune{'░', '▒', '▓', '█'}

// RenderHourlyHeatmap creates a 24-hour request heatmap.
func RenderHourlyHeatmap(hourly [24]int) string {
	maxVal := 0
	for _, v := range hourly {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	var b strings.Builder
	b.WriteString("00 ")
	for i, v := range hourly {
		intensity := min(v*(len(HeatmapBlocks)-1)/maxVal, len(HeatmapBlocks)-1)

		var style lipgloss.Style
		switch intensity {
		case 0:
			style = lipgloss.NewStyle().Foreground(Subtle)
		case 1:
			style = lipgloss.NewStyle().Foreground(Success)
		case 2:
			style = lipgloss.NewStyle().Foreground(Warning)
		default:
			style = lipgloss.NewStyle().Foreground(Error)
		}
		b.WriteString(style.Render(string(HeatmapBlocks[intensity])))

		// Gap at noon for readability
		if i == 11 {
			b.WriteString(" ")
		}
	}
	b.WriteString(" 23")
	return b.String()
}

// sparkChars are the sparkline levels, lowest first.
var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderWeeklyPattern renders one sparkline level per weekday, Monday first.
func RenderWeeklyPattern(weekday [7]int) string {
	maxVal := 0
	for _, v := range weekday {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	parts := make([]string, 0, len(weekday))
	for i, v := range weekday {
		level := min(v*(len(sparkChars)-1)/maxVal, len(sparkChars)-1)
		parts = append(parts, fmt.Sprintf("%s %c", models.WeekdayNames[i][:3], sparkChars[level]))
	}
	return strings.Join(parts, " ")
}
