// internal/player/mock.go
package player

import (
	"sync"
	"time"
)

// Mock is a scripted Engine for tests.
//
// Load only records the request; tests drive the lifecycle with
// SimulateReady, SimulateFailed and SimulateEnded. Play and Pause emit
// PlayingChanged like a real engine would.
type Mock struct {
	mu sync.Mutex

	gen      uint64
	status   Status
	playing  bool
	position time.Duration
	duration time.Duration
	volume   float64

	loadErr  error
	playErr  error
	pauseErr error
	seekErr  error

	loadCalls  []string
	seekCalls  []time.Duration
	playCalls  int
	pauseCalls int
	stopCalls  int
	closeCalls int

	queue *eventQueue
}

// NewMock creates a new mock engine.
func NewMock() *Mock {
	return &Mock{
		volume: 1,
		queue:  newEventQueue(),
	}
}

func (m *Mock) Load(gen uint64, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadCalls = append(m.loadCalls, source)
	if m.loadErr != nil {
		return m.loadErr
	}
	m.gen = gen
	m.status = Loading
	m.position = 0
	m.duration = 0
	m.queue.push(StateEvent(gen, Loading, 0))
	return nil
}

func (m *Mock) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playCalls++
	if m.playErr != nil {
		return m.playErr
	}
	if !m.playing && m.status.Loaded() {
		m.playing = true
		m.queue.push(PlayingEvent(m.gen, true))
	}
	return nil
}

func (m *Mock) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauseCalls++
	if m.pauseErr != nil {
		return m.pauseErr
	}
	if m.playing {
		m.playing = false
		m.queue.push(PlayingEvent(m.gen, false))
	}
	return nil
}

func (m *Mock) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalls++
	if m.playing {
		m.playing = false
		m.queue.push(PlayingEvent(m.gen, false))
	}
	if m.status != Idle {
		m.status = Idle
		m.queue.push(StateEvent(m.gen, Idle, 0))
	}
	m.position = 0
	return nil
}

func (m *Mock) Seek(pos time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, pos)
	if m.seekErr != nil {
		return m.seekErr
	}
	m.position = pos
	if m.status == Ended && pos < m.duration {
		m.status = Ready
		m.queue.push(StateEvent(m.gen, Ready, m.duration))
	}
	return nil
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *Mock) Events() <-chan Event {
	return m.queue.events()
}

func (m *Mock) Close() error {
	m.mu.Lock()
	m.closeCalls++
	m.mu.Unlock()
	m.queue.close()
	return nil
}

func (m *Mock) SetVolume(level float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = level
}

func (m *Mock) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// Test helpers

func (m *Mock) SetLoadError(err error) { m.lock(func() { m.loadErr = err }) }

func (m *Mock) SetPlayError(err error) { m.lock(func() { m.playErr = err }) }

func (m *Mock) SetPauseError(err error) { m.lock(func() { m.pauseErr = err }) }

func (m *Mock) SetSeekError(err error) { m.lock(func() { m.seekErr = err }) }

// SetPosition sets the position reported to pollers.
func (m *Mock) SetPosition(d time.Duration) { m.lock(func() { m.position = d }) }

// Generation returns the generation of the last successful Load.
func (m *Mock) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

func (m *Mock) LoadCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.loadCalls...)
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

func (m *Mock) PlayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCalls
}

func (m *Mock) PauseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseCalls
}

func (m *Mock) StopCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalls
}

func (m *Mock) CloseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCalls
}

// SimulateReady reports the current source as prepared.
func (m *Mock) SimulateReady(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = Ready
	m.duration = duration
	m.queue.push(StateEvent(m.gen, Ready, duration))
}

// SimulateFailed reports a load failure for the current source.
func (m *Mock) SimulateFailed(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = Idle
	m.queue.push(FailedEvent(m.gen, err))
}

// SimulateEnded reports natural end of media.
func (m *Mock) SimulateEnded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = m.duration
	m.status = Ended
	if m.playing {
		m.playing = false
		m.queue.push(PlayingEvent(m.gen, false))
	}
	m.queue.push(StateEvent(m.gen, Ended, m.duration))
}

// Emit pushes an arbitrary event, e.g. one tagged with an old generation.
func (m *Mock) Emit(e Event) {
	m.queue.push(e)
}

func (m *Mock) lock(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
}
