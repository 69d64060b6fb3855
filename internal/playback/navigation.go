package playback

import (
	"go.uber.org/zap"
)

// PlayNext plays the track after the current one, wrapping to the first.
// With shuffle on, a random other track is chosen. An empty playlist, or a
// current track that is not in it, is a silent no-op.
func (s *serviceImpl) PlayNext() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.advanceLocked(true)
}

// PlayPrevious plays the track before the current one, wrapping to the last.
func (s *serviceImpl) PlayPrevious() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.advanceLocked(false)
}

func (s *serviceImpl) advanceLocked(forward bool) error {
	// A current track missing from the playlist has no neighbours.
	if s.list.IsEmpty() || s.index < 0 {
		return nil
	}

	idx := s.targetIndexLocked(forward)
	t, ok := s.list.Track(idx)
	if !ok {
		return nil
	}
	return s.loadLocked(t, 0, true)
}

func (s *serviceImpl) targetIndexLocked(forward bool) int {
	cur := s.index
	if s.shuffle {
		return s.list.Random(cur, s.opts.Rand)
	}
	if forward {
		return s.list.Next(cur)
	}
	return s.list.Previous(cur)
}

// onEndedLocked reacts to natural end of media. Repeat replays the
// track; a track in the playlist advances; an ad-hoc track is cued at
// the start and paused.
func (s *serviceImpl) onEndedLocked() {
	s.stopLoadTimerLocked()
	s.seek = pendingSeek{}
	s.setPlayingLocked(false)
	s.publishPositionLocked(s.duration)
	s.setStateLocked(StateEnded)

	if s.repeat {
		s.log.Debug("repeating track")
		s.rewindLocked(true)
		return
	}

	if s.index >= 0 && !s.list.IsEmpty() {
		if err := s.advanceLocked(true); err != nil {
			s.log.Debug("advance after end failed", zap.Error(err))
		}
		return
	}

	s.rewindLocked(false)
}

// rewindLocked seeks back to the start, then plays or pauses.
func (s *serviceImpl) rewindLocked(play bool) {
	if err := s.engine.Seek(0); err != nil {
		s.failLocked(OpSeek, s.sourceLocked(), wrapEngine(err))
		return
	}
	s.seek = pendingSeek{active: true, target: 0}
	s.publishPositionLocked(0)

	var err error
	if play {
		err = s.engine.Play()
	} else {
		err = s.engine.Pause()
	}
	if err != nil {
		s.failLocked(OpToggle, s.sourceLocked(), wrapEngine(err))
	}
}
