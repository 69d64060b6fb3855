package nowplaying

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/octaai/octaplay/internal/playback"
)

// EventMsg wraps any playback event. The model re-reads the service
// status on each one, so the payload is only inspected for errors.
type EventMsg struct {
	Event any
}

// ClosedMsg is sent when the playback service shuts down.
type ClosedMsg struct{}

// waitForEvent blocks on the subscription until one event arrives.
func waitForEvent(sub *playback.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case e := <-sub.StateChanged:
			return EventMsg{Event: e}
		case e := <-sub.PlayingChanged:
			return EventMsg{Event: e}
		case e := <-sub.TrackChanged:
			return EventMsg{Event: e}
		case e := <-sub.PositionChanged:
			return EventMsg{Event: e}
		case e := <-sub.QueueChanged:
			return EventMsg{Event: e}
		case e := <-sub.ModeChanged:
			return EventMsg{Event: e}
		case e := <-sub.Error:
			return EventMsg{Event: e}
		case <-sub.Done:
			return ClosedMsg{}
		}
	}
}
