package playback

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/octaai/octaplay/internal/player"
)

const (
	// maxSeekWaitTicks bounds how long a pending seek target overrides
	// engine samples that never converge.
	maxSeekWaitTicks = 5

	minSeekTolerance = time.Second
)

// pendingSeek holds the last seek target until the engine reports a
// position near it.
type pendingSeek struct {
	active bool
	target time.Duration
	ticks  int
}

func (s *serviceImpl) seekTolerance() time.Duration {
	return max(minSeekTolerance, 4*s.opts.PollInterval)
}

// ensureLoopLocked starts the run goroutine on first use.
func (s *serviceImpl) ensureLoopLocked() {
	if s.loopStarted || s.closed {
		return
	}
	s.loopStarted = true
	s.wg.Add(1)
	go s.run()
}

// run serializes engine events and position polling until Close.
func (s *serviceImpl) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	events := s.engine.Events()
	for {
		select {
		case <-s.done:
			return
		case e, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			s.handleEvent(e)
		case <-ticker.C:
			s.poll()
		}
	}
}

func (s *serviceImpl) handleEvent(e player.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if e.Generation != s.gen {
		s.log.Debug("discarding stale engine event",
			zap.Stringer("kind", e.Kind),
			zap.Uint64("generation", e.Generation),
			zap.Uint64("current", s.gen))
		return
	}

	switch e.Kind {
	case player.EventStateChanged:
		s.handleStatusLocked(e)
	case player.EventPlayingChanged:
		if s.state == StateIdle {
			return
		}
		s.setPlayingLocked(e.Playing)
	case player.EventFailed:
		err := e.Err
		if err == nil {
			err = ErrAdapterLoadFailure
		} else {
			err = wrapEngine(err)
		}
		s.failLocked(OpLoad, s.sourceLocked(), err)
	}
}

func (s *serviceImpl) handleStatusLocked(e player.Event) {
	switch e.Status {
	case player.Loading:
		// Already entered when the load command was issued.
	case player.Ready:
		if e.Duration > 0 {
			s.duration = e.Duration
		}
		prev := s.state
		s.setStateLocked(StateReady)
		if prev == StateLoading {
			s.onReadyLocked()
			return
		}
		s.publishPositionLocked(s.clampLocked(s.position))
	case player.Ended:
		s.onEndedLocked()
	case player.Idle:
		if s.state == StateIdle {
			return
		}
		s.stopLoadTimerLocked()
		s.resetPublishedLocked()
		s.setStateLocked(StateIdle)
	}
}

// onReadyLocked applies the load intent of the current generation.
func (s *serviceImpl) onReadyLocked() {
	s.stopLoadTimerLocked()

	if s.startAt > 0 {
		target := s.clampLocked(s.startAt)
		s.startAt = 0
		if err := s.engine.Seek(target); err != nil {
			s.failLocked(OpSeek, s.sourceLocked(), wrapEngine(err))
			return
		}
		s.seek = pendingSeek{active: true, target: target}
		s.publishPositionLocked(target)
	} else {
		s.publishPositionLocked(0)
	}

	if !s.autoplay {
		return
	}
	if err := s.engine.Play(); err != nil {
		s.failLocked(OpPlay, s.sourceLocked(), wrapEngine(err))
	}
}

// poll samples the engine position. A pending seek target wins over
// samples that have not caught up with it yet.
func (s *serviceImpl) poll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.state.Loaded() {
		return
	}

	sample := s.clampLocked(s.engine.Position())
	if s.seek.active {
		diff := sample - s.seek.target
		if diff < 0 {
			diff = -diff
		}
		s.seek.ticks++
		switch {
		case diff <= s.seekTolerance():
			s.seek = pendingSeek{}
		case s.seek.ticks >= maxSeekWaitTicks:
			s.log.Debug("seek target not confirmed",
				zap.Duration("target", s.seek.target),
				zap.Duration("sample", sample))
			s.seek = pendingSeek{}
		default:
			return
		}
	}
	s.publishPositionLocked(sample)
}

func (s *serviceImpl) startLoadTimerLocked(gen uint64) {
	if s.opts.LoadTimeout < 0 {
		return
	}
	s.loadTimer = time.AfterFunc(s.opts.LoadTimeout, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || s.gen != gen || s.state != StateLoading {
			return
		}
		s.failLocked(OpLoad, s.sourceLocked(),
			fmt.Errorf("%w: %w after %s", ErrAdapterLoadFailure, ErrLoadTimeout, s.opts.LoadTimeout))
	})
}

func (s *serviceImpl) stopLoadTimerLocked() {
	if s.loadTimer != nil {
		s.loadTimer.Stop()
		s.loadTimer = nil
	}
}
