// internal/playback/service_impl.go
package playback

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/octaai/octaplay/internal/player"
	"github.com/octaai/octaplay/internal/playlist"
)

// Verify serviceImpl implements Service at compile time.
var _ Service = (*serviceImpl)(nil)

// serviceImpl owns exactly one engine.
//
// Published fields (state, playing, position, duration) are written by the
// run goroutine from engine events and poll ticks. Commands write them only
// when they start or abandon a generation, under the same mutex, so that
// every event of the old generation is discarded afterwards.
type serviceImpl struct {
	mu     sync.Mutex
	opts   Options
	log    *zap.Logger
	engine player.Engine

	gen      uint64
	state    State
	playing  bool
	position time.Duration
	duration time.Duration
	track    *playlist.Track
	index    int
	list     playlist.Snapshot
	repeat   bool
	shuffle  bool

	// Per-generation load intent.
	autoplay bool
	startAt  time.Duration

	seek      pendingSeek
	loadTimer *time.Timer

	// Last values sent to subscribers.
	sentPosition time.Duration
	sentDuration time.Duration

	subs   []*Subscription
	subsMu sync.RWMutex

	loopStarted bool
	done        chan struct{}
	wg          sync.WaitGroup
	closed      bool
}

// New creates a playback service that takes ownership of engine.
// Close releases the engine.
func New(engine player.Engine, opts Options) Service {
	opts = opts.withDefaults()
	return &serviceImpl{
		opts:    opts,
		log:     opts.Logger.Named("playback"),
		engine:  engine,
		index:   -1,
		repeat:  opts.Repeat,
		shuffle: opts.Shuffle,
		done:    make(chan struct{}),
	}
}

// PlayTrack loads t and starts playback once the engine is ready.
func (s *serviceImpl) PlayTrack(t playlist.Track) error {
	return s.load(t, 0, true)
}

// PlayTrackAt loads t and starts playback at the given position.
func (s *serviceImpl) PlayTrackAt(t playlist.Track, at time.Duration) error {
	return s.load(t, at, true)
}

// CueTrack loads t paused at the given position.
func (s *serviceImpl) CueTrack(t playlist.Track, at time.Duration) error {
	return s.load(t, at, false)
}

func (s *serviceImpl) load(t playlist.Track, at time.Duration, autoplay bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.loadLocked(t, at, autoplay)
}

// PlayIndex plays the track at index in the current playlist.
// An out-of-range index is a no-op.
func (s *serviceImpl) PlayIndex(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	t, ok := s.list.Track(index)
	if !ok {
		return nil
	}
	return s.loadLocked(t, 0, true)
}

func (s *serviceImpl) loadLocked(t playlist.Track, at time.Duration, autoplay bool) error {
	if !t.Playable() {
		s.reportLocked(OpPlay, t.Source, ErrInvalidSource)
		return ErrInvalidSource
	}

	s.stopLoadTimerLocked()
	if s.state != StateIdle {
		if err := s.engine.Stop(); err != nil {
			s.log.Debug("stop before load failed", zap.Error(err))
		}
	}

	s.gen++
	gen := s.gen
	prev, prevIndex := s.track, s.index

	tr := t
	s.track = &tr
	s.index = s.list.IndexOf(t.ID)
	s.autoplay = autoplay
	s.startAt = max(at, 0)
	s.resetPublishedLocked()

	s.log.Debug("loading track",
		zap.String("id", t.ID),
		zap.String("source", t.Source),
		zap.Uint64("generation", gen))

	if err := s.engine.Load(gen, t.Source); err != nil {
		err = wrapEngine(err)
		s.emitTrackLocked(prev, prevIndex)
		s.failLocked(OpLoad, t.Source, err)
		return err
	}

	s.setStateLocked(StateLoading)
	s.emitTrackLocked(prev, prevIndex)
	s.startLoadTimerLocked(gen)
	s.ensureLoopLocked()
	return nil
}

// resetPublishedLocked clears values that belonged to the previous source.
func (s *serviceImpl) resetPublishedLocked() {
	s.seek = pendingSeek{}
	s.setPlayingLocked(false)
	s.duration = 0
	s.publishPositionLocked(0)
}

// TogglePlayPause pauses when the engine reports playing, plays otherwise.
// While loading it flips whether playback starts once ready.
func (s *serviceImpl) TogglePlayPause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	switch s.state {
	case StateIdle:
		return
	case StateLoading:
		s.autoplay = !s.autoplay
		return
	case StateReady, StateEnded:
	}

	var err error
	if s.engine.IsPlaying() {
		err = s.engine.Pause()
	} else {
		err = s.engine.Play()
	}
	if err != nil {
		s.failLocked(OpToggle, s.sourceLocked(), wrapEngine(err))
	}
}

// Stop releases the current source. The current track is kept so that
// navigation still works from it.
func (s *serviceImpl) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state == StateIdle {
		return
	}

	s.stopLoadTimerLocked()
	s.gen++
	if err := s.engine.Stop(); err != nil {
		s.log.Warn("stop failed", zap.Error(err))
	}
	s.resetPublishedLocked()
	s.setStateLocked(StateIdle)
}

// SeekTo seeks to pos clamped to [0, duration].
func (s *serviceImpl) SeekTo(pos time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seekLocked(pos)
}

// SeekToPercent seeks to fraction of the duration, fraction clamped to [0, 1].
func (s *serviceImpl) SeekToPercent(fraction float64) {
	if math.IsNaN(fraction) {
		fraction = 0
	}
	fraction = min(max(fraction, 0), 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seekLocked(time.Duration(fraction * float64(s.duration)))
}

// SkipForward seeks forward by delta, or by the skip step if delta <= 0.
func (s *serviceImpl) SkipForward(delta time.Duration) {
	if delta <= 0 {
		delta = s.opts.SkipStep
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seekLocked(s.position + delta)
}

// SkipBackward seeks backward by delta, or by the skip step if delta <= 0.
func (s *serviceImpl) SkipBackward(delta time.Duration) {
	if delta <= 0 {
		delta = s.opts.SkipStep
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seekLocked(s.position - delta)
}

func (s *serviceImpl) seekLocked(pos time.Duration) {
	if s.closed || !s.state.Loaded() {
		return
	}

	target := s.clampLocked(pos)
	if err := s.engine.Seek(target); err != nil {
		s.failLocked(OpSeek, s.sourceLocked(), wrapEngine(err))
		return
	}

	// The target stays authoritative until a poll confirms it landed.
	s.seek = pendingSeek{active: true, target: target}
	s.publishPositionLocked(target)
}

// clampLocked clamps pos to [0, duration]; 0 when duration is unknown.
func (s *serviceImpl) clampLocked(pos time.Duration) time.Duration {
	return min(max(pos, 0), s.duration)
}

// SetPlaylist replaces the playlist snapshot. Playback is not interrupted.
func (s *serviceImpl) SetPlaylist(tracks []playlist.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.list = playlist.NewSnapshot(tracks...)
	s.index = -1
	if s.track != nil {
		s.index = s.list.IndexOf(s.track.ID)
	}

	e := QueueChange{Tracks: s.list.Tracks(), Index: s.index}
	s.broadcast(func(sub *Subscription) { sub.sendQueue(e) })
}

// SetRepeat enables or disables repeating the current track.
func (s *serviceImpl) SetRepeat(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repeat == enabled {
		return
	}
	s.repeat = enabled
	s.emitModeLocked()
}

// ToggleRepeat flips repeat and returns the new value.
func (s *serviceImpl) ToggleRepeat() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repeat = !s.repeat
	s.emitModeLocked()
	return s.repeat
}

// SetShuffle enables or disables shuffled navigation.
func (s *serviceImpl) SetShuffle(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shuffle == enabled {
		return
	}
	s.shuffle = enabled
	s.emitModeLocked()
}

// ToggleShuffle flips shuffle and returns the new value.
func (s *serviceImpl) ToggleShuffle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shuffle = !s.shuffle
	s.emitModeLocked()
	return s.shuffle
}

// SetVolume forwards level to engines that support volume control.
func (s *serviceImpl) SetVolume(level float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vc, ok := s.engine.(player.VolumeControl)
	if !ok || s.closed {
		return
	}
	vc.SetVolume(min(max(level, 0), 1))
	s.emitModeLocked()
}

// Status returns a consistent copy of the observable outputs.
func (s *serviceImpl) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		State:    s.state,
		Playing:  s.playing,
		Position: s.position,
		Duration: s.duration,
		Track:    s.currentTrackLocked(),
		Index:    s.index,
		Repeat:   s.repeat,
		Shuffle:  s.shuffle,
	}
}

func (s *serviceImpl) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *serviceImpl) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *serviceImpl) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

func (s *serviceImpl) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// CurrentTrack returns a copy of the current track, or nil if none.
func (s *serviceImpl) CurrentTrack() *playlist.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentTrackLocked()
}

func (s *serviceImpl) currentTrackLocked() *playlist.Track {
	if s.track == nil {
		return nil
	}
	t := *s.track
	return &t
}

// CurrentIndex returns the current playlist index (-1 if none).
func (s *serviceImpl) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Playlist returns a copy of the current playlist.
func (s *serviceImpl) Playlist() []playlist.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.Tracks()
}

func (s *serviceImpl) Repeat() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repeat
}

func (s *serviceImpl) Shuffle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shuffle
}

// Volume returns the engine volume, or 1 if the engine has no volume control.
func (s *serviceImpl) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volumeLocked()
}

func (s *serviceImpl) volumeLocked() float64 {
	if vc, ok := s.engine.(player.VolumeControl); ok {
		return vc.Volume()
	}
	return 1
}

// Subscribe creates a new event subscription.
func (s *serviceImpl) Subscribe() *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	sub := newSubscription()
	if s.isClosed() {
		sub.close()
		return sub
	}
	s.subs = append(s.subs, sub)
	return sub
}

func (s *serviceImpl) isClosed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Close stops the polling loop and releases the engine. Safe to call twice.
func (s *serviceImpl) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.stopLoadTimerLocked()
	close(s.done)
	s.mu.Unlock()

	s.wg.Wait()
	err := s.engine.Close()

	s.subsMu.Lock()
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
	s.subsMu.Unlock()

	return err
}

// failLocked abandons the current generation after an engine failure and
// reports it once. The service is Idle and accepts the next command.
func (s *serviceImpl) failLocked(op, source string, err error) {
	s.stopLoadTimerLocked()
	s.gen++
	if stopErr := s.engine.Stop(); stopErr != nil {
		s.log.Debug("stop after failure failed", zap.Error(stopErr))
	}
	s.resetPublishedLocked()
	s.setStateLocked(StateIdle)
	s.reportLocked(op, source, err)
}

func (s *serviceImpl) reportLocked(op, source string, err error) {
	s.log.Warn("playback error",
		zap.String("op", op),
		zap.String("source", source),
		zap.Error(err))
	e := ErrorEvent{Op: op, Source: source, Err: err}
	s.broadcast(func(sub *Subscription) { sub.sendError(e) })
}

func (s *serviceImpl) sourceLocked() string {
	if s.track == nil {
		return ""
	}
	return s.track.Source
}

func (s *serviceImpl) setStateLocked(st State) {
	if s.state == st {
		return
	}
	e := StateChange{Previous: s.state, Current: st}
	s.state = st
	s.broadcast(func(sub *Subscription) { sub.sendState(e) })
}

func (s *serviceImpl) setPlayingLocked(playing bool) {
	if s.playing == playing {
		return
	}
	s.playing = playing
	e := PlayingChange{Playing: playing}
	s.broadcast(func(sub *Subscription) { sub.sendPlaying(e) })
}

func (s *serviceImpl) publishPositionLocked(pos time.Duration) {
	s.position = pos
	if pos == s.sentPosition && s.duration == s.sentDuration {
		return
	}
	s.sentPosition, s.sentDuration = pos, s.duration
	e := PositionChange{Position: pos, Duration: s.duration}
	s.broadcast(func(sub *Subscription) { sub.sendPosition(e) })
}

func (s *serviceImpl) emitTrackLocked(prev *playlist.Track, prevIndex int) {
	e := TrackChange{
		Previous:      prev,
		Current:       s.currentTrackLocked(),
		PreviousIndex: prevIndex,
		Index:         s.index,
	}
	s.broadcast(func(sub *Subscription) { sub.sendTrack(e) })
}

func (s *serviceImpl) emitModeLocked() {
	e := ModeChange{Repeat: s.repeat, Shuffle: s.shuffle, Volume: s.volumeLocked()}
	s.broadcast(func(sub *Subscription) { sub.sendMode(e) })
}

func (s *serviceImpl) broadcast(send func(*Subscription)) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		send(sub)
	}
}
