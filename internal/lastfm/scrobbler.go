package lastfm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/octaai/octaplay/internal/playback"
	"github.com/octaai/octaplay/internal/playlist"
)

const (
	minScrobbleDuration = 30 * time.Second
	maxScrobbleWait     = 4 * time.Minute
)

// Submitter is the part of Client the Scrobbler needs.
type Submitter interface {
	UpdateNowPlaying(track ScrobbleTrack) error
	Scrobble(track ScrobbleTrack) error
}

// Scrobbler reports plays from a playback service to Last.fm.
type Scrobbler struct {
	api   Submitter
	log   *zap.Logger
	sub   *playback.Subscription
	state *scrobbleState
}

// NewScrobbler subscribes to svc immediately.
func NewScrobbler(svc playback.Service, api Submitter, log *zap.Logger) *Scrobbler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scrobbler{api: api, log: log.Named("lastfm"), sub: svc.Subscribe()}
}

// Run reports until ctx is done or the service closes.
func (s *Scrobbler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.sub.Done:
			return
		case e := <-s.sub.TrackChanged:
			s.startTrack(e.Current)
		case e := <-s.sub.PositionChanged:
			s.checkThreshold(e.Position, e.Duration)
		}
	}
}

// startTrack resets the scrobble state. Tracks without an artist or a
// title cannot be scrobbled.
func (s *Scrobbler) startTrack(t *playlist.Track) {
	s.state = nil
	if t == nil || t.Artist == "" || t.Title == "" {
		return
	}
	s.state = &scrobbleState{
		trackID: t.ID,
		track: ScrobbleTrack{
			Artist:    t.Artist,
			Track:     t.Title,
			Duration:  t.Duration,
			Timestamp: time.Now(),
		},
	}
	if err := s.api.UpdateNowPlaying(s.state.track); err != nil {
		s.log.Debug("now playing failed", zap.Error(err))
	}
}

// checkThreshold scrobbles after half the track or four minutes,
// whichever comes first. Tracks shorter than 30 seconds are skipped.
func (s *Scrobbler) checkThreshold(position, duration time.Duration) {
	if s.state == nil || s.state.scrobbled {
		return
	}
	if duration < minScrobbleDuration {
		return
	}
	if position < min(duration/2, maxScrobbleWait) {
		return
	}

	s.state.scrobbled = true
	s.state.track.Duration = duration
	if err := s.api.Scrobble(s.state.track); err != nil {
		s.log.Warn("scrobble failed",
			zap.String("track", s.state.trackID),
			zap.Error(err))
		return
	}
	s.log.Debug("scrobbled", zap.String("track", s.state.trackID))
}
