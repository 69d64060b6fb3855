package playerbar

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const (
	filledBlock = "━"
	emptyBlock  = "─"
)

// RenderProgressBar renders a progress line.
// Format: ▶  1:23  ━━━━━─────  4:56
func RenderProgressBar(position, duration time.Duration, width int, status string) string {
	posStr := formatDuration(position)
	durStr := formatDuration(duration)

	fixedWidth := lipgloss.Width(status) + 2 + lipgloss.Width(posStr) + 2 + 2 + lipgloss.Width(durStr)
	barWidth := width - fixedWidth

	if barWidth < 3 {
		return status + "  " + posStr + " / " + durStr
	}

	return status + "  " + progressTimeStyle().Render(posStr) + "  " +
		renderBar(position, duration, barWidth) + "  " +
		progressTimeStyle().Render(durStr)
}

// renderBar fills width cells in proportion to position/duration. An
// unknown duration renders an empty bar.
func renderBar(position, duration time.Duration, width int) string {
	var ratio float64
	if duration > 0 {
		ratio = float64(position) / float64(duration)
	}
	ratio = min(max(ratio, 0), 1)
	filled := min(int(float64(width)*ratio), width)
	return progressBarFilled().Render(strings.Repeat(filledBlock, filled)) +
		progressBarEmpty().Render(strings.Repeat(emptyBlock, width-filled))
}
