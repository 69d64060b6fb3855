package nowplaying

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/octaai/octaplay/internal/ui/playerbar"
	"github.com/octaai/octaplay/internal/ui/render"
	"github.com/octaai/octaplay/internal/ui/styles"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

func (m Model) View() string {
	width, height := m.width, m.height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	t := styles.T()
	header := render.Row(
		t.Header("octaplay"),
		playerbar.RenderModes(m.status.Repeat, m.status.Shuffle)+"  "+playerbar.RenderVolume(m.volume),
		width,
	)

	bar := playerbar.Render(playerbar.NewState(m.status, len(m.tracks), m.volume), width)
	helpView := m.help.View(m.keys)

	var errLine string
	if m.lastErr != "" {
		errLine = t.S().Error.Render(render.Truncate(m.lastErr, width))
	}

	fixed := lipgloss.Height(header) + lipgloss.Height(helpView) + 1
	if bar != "" {
		fixed += lipgloss.Height(bar)
	}
	if errLine != "" {
		fixed++
	}
	listHeight := max(height-fixed, 1)

	parts := []string{header, m.renderPlaylist(width, listHeight)}
	if errLine != "" {
		parts = append(parts, errLine)
	}
	if bar != "" {
		parts = append(parts, bar)
	}
	parts = append(parts, helpView)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderPlaylist shows a window of the playlist around the cursor.
func (m Model) renderPlaylist(width, height int) string {
	s := styles.T().S()
	if len(m.tracks) == 0 {
		return s.Muted.Render("No tracks. Pass files, directories, URLs or feeds on the command line.")
	}

	start := 0
	if m.cursor >= height {
		start = m.cursor - height + 1
	}
	end := min(start+height, len(m.tracks))

	numWidth := len(fmt.Sprint(len(m.tracks)))
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		tr := m.tracks[i]
		label := tr.Title
		if tr.Artist != "" {
			label += " · " + tr.Artist
		}

		marker := "  "
		if i == m.cursor {
			marker = "> "
		}
		line := fmt.Sprintf("%s%*d  %s", marker, numWidth, i+1, render.Sanitize(label))
		line = render.Truncate(line, width)

		switch {
		case i == m.status.Index:
			line = s.Playing.Render(line)
		case i == m.cursor:
			line = s.Base.Render(line)
		default:
			line = s.Muted.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
