// Package nowplaying is the terminal front end: the playlist, the player
// bar and key bindings driving the playback service.
package nowplaying

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/octaai/octaplay/internal/errmsg"
	"github.com/octaai/octaplay/internal/playback"
	"github.com/octaai/octaplay/internal/playlist"
)

const volumeStep = 0.05

// Model is the bubbletea model for the now playing screen.
type Model struct {
	svc  playback.Service
	sub  *playback.Subscription
	keys keyMap
	help help.Model

	status  playback.Status
	tracks  []playlist.Track
	volume  float64
	cursor  int
	lastErr string

	width  int
	height int
}

// New creates the model and subscribes to svc.
func New(svc playback.Service) Model {
	m := Model{
		svc:  svc,
		sub:  svc.Subscribe(),
		keys: defaultKeys(),
		help: help.New(),
	}
	m.refresh()
	if m.status.Index >= 0 {
		m.cursor = m.status.Index
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle("octaplay"), waitForEvent(m.sub))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case EventMsg:
		m.handleEvent(msg.Event)
		return m, waitForEvent(m.sub)

	case ClosedMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleEvent(e any) {
	switch e := e.(type) {
	case playback.ErrorEvent:
		m.lastErr = errmsg.FormatSource(errmsg.PlaybackOp(e.Op), e.Source, e.Err)
	case playback.TrackChange:
		m.lastErr = ""
		if e.Index >= 0 {
			m.cursor = e.Index
		}
	}
	m.refresh()
}

func (m *Model) refresh() {
	m.status = m.svc.Status()
	m.tracks = m.svc.Playlist()
	m.volume = m.svc.Volume()
	m.cursor = min(max(m.cursor, 0), max(len(m.tracks)-1, 0))
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Toggle):
		m.svc.TogglePlayPause()
	case key.Matches(msg, m.keys.Stop):
		m.svc.Stop()
	case key.Matches(msg, m.keys.Next):
		_ = m.svc.PlayNext()
	case key.Matches(msg, m.keys.Previous):
		_ = m.svc.PlayPrevious()
	case key.Matches(msg, m.keys.Forward):
		m.svc.SkipForward(0)
	case key.Matches(msg, m.keys.Backward):
		m.svc.SkipBackward(0)
	case key.Matches(msg, m.keys.SeekPct):
		digit := int(msg.String()[0] - '0')
		m.svc.SeekToPercent(float64(digit) / 10)
	case key.Matches(msg, m.keys.Up):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.cursor = min(m.cursor+1, max(len(m.tracks)-1, 0))
	case key.Matches(msg, m.keys.Select):
		_ = m.svc.PlayIndex(m.cursor)
	case key.Matches(msg, m.keys.Repeat):
		m.svc.ToggleRepeat()
	case key.Matches(msg, m.keys.Shuffle):
		m.svc.ToggleShuffle()
	case key.Matches(msg, m.keys.VolUp):
		m.svc.SetVolume(m.volume + volumeStep)
	case key.Matches(msg, m.keys.VolDown):
		m.svc.SetVolume(m.volume - volumeStep)
	default:
		return m, nil
	}
	// Commands return before the engine reacts; events update the rest.
	m.status = m.svc.Status()
	m.volume = m.svc.Volume()
	return m, nil
}
