package playerbar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/octaai/octaplay/internal/playback"
	"github.com/octaai/octaplay/internal/ui/render"
)

const (
	playSymbol    = "▶"
	pauseSymbol   = "⏸"
	loadingSymbol = "…"
	endedSymbol   = "■"
)

// State holds everything needed to render the player bar.
type State struct {
	State    playback.State
	Playing  bool
	Title    string
	Artist   string
	Position time.Duration
	Duration time.Duration
	Index    int // -1 for a track outside the playlist
	Total    int
	Repeat   bool
	Shuffle  bool
	Volume   float64
}

// Height returns the total height of the player bar.
func Height() int {
	return 3 // top border + content + bottom border
}

// NewState builds a State from a playback status.
func NewState(st playback.Status, total int, volume float64) State {
	s := State{
		State:    st.State,
		Playing:  st.Playing,
		Position: st.Position,
		Duration: st.Duration,
		Index:    st.Index,
		Total:    total,
		Repeat:   st.Repeat,
		Shuffle:  st.Shuffle,
		Volume:   volume,
	}
	if st.Track != nil {
		s.Title = st.Track.Title
		s.Artist = st.Track.Artist
		if s.Duration == 0 {
			s.Duration = st.Track.Duration
		}
	}
	return s
}

// Status returns the symbol for the current lifecycle state.
func (s State) Status() string {
	switch {
	case s.State == playback.StateLoading:
		return loadingSymbol
	case s.State == playback.StateEnded && !s.Playing:
		return endedSymbol
	case s.Playing:
		return playSymbol
	default:
		return pauseSymbol
	}
}

// Render returns the player bar string for the given width.
// Returns an empty string when nothing is loaded.
func Render(s State, width int) string {
	if s.State == playback.StateIdle && s.Title == "" {
		return ""
	}
	return renderCompact(s, width)
}

func renderCompact(s State, width int) string {
	// border + padding
	innerWidth := max(width-6, 0)

	title := render.Sanitize(s.Title)
	if title == "" {
		title = "Unknown Track"
	}
	info := render.Sanitize(s.Artist)

	var trackNum string
	if s.Index >= 0 && s.Total > 0 {
		trackNum = fmt.Sprintf("%d/%d", s.Index+1, s.Total)
	}

	status := s.Status()
	timeStr := fmt.Sprintf("%s / %s", formatDuration(s.Position), formatDuration(s.Duration))

	separator := "   "
	sepWidth := lipgloss.Width(separator)
	timeWidth := lipgloss.Width(timeStr)
	statusWidth := lipgloss.Width(status + "  ")
	titleWidth := lipgloss.Width(title)
	infoWidth := lipgloss.Width(info)

	minBarWidth := 10

	trackNumSpace := 0
	if trackNum != "" {
		trackNumSpace = lipgloss.Width(trackNum) + sepWidth
	}
	availableForContent := innerWidth - statusWidth - timeWidth - sepWidth*2 - minBarWidth - trackNumSpace

	var styledTitle, styledInfo string
	var usedContentWidth int

	switch {
	case info != "" && titleWidth+sepWidth+infoWidth <= availableForContent:
		styledTitle = titleStyle().Render(title)
		styledInfo = artistStyle().Render(info)
		usedContentWidth = titleWidth + sepWidth + infoWidth
	case info != "" && titleWidth+sepWidth < availableForContent:
		maxInfo := availableForContent - titleWidth - sepWidth
		styledTitle = titleStyle().Render(title)
		styledInfo = artistStyle().Render(render.Truncate(info, maxInfo))
		usedContentWidth = titleWidth + sepWidth + maxInfo
	default:
		maxTitle := max(availableForContent, 10)
		styledTitle = titleStyle().Render(render.Truncate(title, maxTitle))
		usedContentWidth = min(titleWidth, maxTitle)
	}

	barWidth := max(innerWidth-usedContentWidth-trackNumSpace-statusWidth-timeWidth-sepWidth*2, 5)

	// Title   Artist   3/12   ▶  ━━━───   1:23 / 3:58
	var content strings.Builder
	content.WriteString(styledTitle)
	if styledInfo != "" {
		content.WriteString(separator)
		content.WriteString(styledInfo)
	}
	if trackNum != "" {
		content.WriteString(separator)
		content.WriteString(metaStyle().Render(trackNum))
	}
	content.WriteString(separator)
	content.WriteString(status)
	content.WriteString("  ")
	content.WriteString(renderBar(s.Position, s.Duration, barWidth))
	content.WriteString(separator)
	content.WriteString(progressTimeStyle().Render(timeStr))

	line := render.Clamp(content.String(), innerWidth)
	return barStyle().Padding(0, 2).Width(max(width-2, 0)).Render(line)
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
