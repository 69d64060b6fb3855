package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/octaai/octaplay/internal/playback"
	"github.com/octaai/octaplay/internal/playlist"
	"github.com/octaai/octaplay/internal/state"
)

// positionSaveEvery saves the session on every Nth position update.
const positionSaveEvery = 25

// SessionSync saves the playback session whenever it changes.
type SessionSync struct {
	svc   playback.Service
	store state.Interface
	log   *zap.Logger
	sub   *playback.Subscription
}

// NewSessionSync subscribes to svc immediately so no change is missed
// before Run starts.
func NewSessionSync(svc playback.Service, store state.Interface, log *zap.Logger) *SessionSync {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionSync{
		svc:   svc,
		store: store,
		log:   log.Named("session"),
		sub:   svc.Subscribe(),
	}
}

// Run saves on track, playlist and mode changes and periodically while
// the position advances. It saves once more when ctx is cancelled and
// returns when ctx is done or the service closes.
func (s *SessionSync) Run(ctx context.Context) {
	positions := 0
	for {
		select {
		case <-ctx.Done():
			s.save()
			return
		case <-s.sub.Done:
			return
		case <-s.sub.TrackChanged:
			s.save()
		case <-s.sub.QueueChanged:
			s.save()
		case <-s.sub.ModeChanged:
			s.save()
		case e := <-s.sub.StateChanged:
			if e.Current == playback.StateIdle {
				s.save()
			}
		case <-s.sub.PositionChanged:
			positions++
			if positions%positionSaveEvery == 0 {
				s.save()
			}
		}
	}
}

func (s *SessionSync) save() {
	sess := Snapshot(s.svc)
	s.log.Debug("saving session",
		zap.String("current", sess.CurrentID),
		zap.Duration("position", sess.Position),
		zap.Int("tracks", len(sess.Tracks)))
	s.store.SaveSession(sess)
}

// Snapshot captures the persisted part of the service state.
func Snapshot(svc playback.Service) state.Session {
	st := svc.Status()
	sess := state.Session{
		Position: st.Position,
		Volume:   svc.Volume(),
		Repeat:   st.Repeat,
		Shuffle:  st.Shuffle,
		Tracks:   svc.Playlist(),
	}
	if st.Track != nil {
		sess.CurrentID = st.Track.ID
	}
	return sess
}

// Overrides are command-line choices that win over the saved session.
type Overrides struct {
	Repeat  bool
	Shuffle bool
}

// Restore sets up svc from tracks and the saved session. When tracks is
// empty the saved playlist is used. With resume on, the saved current
// track is cued (paused) at its saved position if it is still in the
// playlist. Returns true if a track was cued.
func Restore(svc playback.Service, sess *state.Session, tracks []playlist.Track, resume bool, o Overrides) (bool, error) {
	if len(tracks) == 0 && sess != nil {
		tracks = sess.Tracks
	}
	svc.SetPlaylist(tracks)

	if sess != nil {
		svc.SetRepeat(sess.Repeat)
		svc.SetShuffle(sess.Shuffle)
		svc.SetVolume(sess.Volume)
	}
	if o.Repeat {
		svc.SetRepeat(true)
	}
	if o.Shuffle {
		svc.SetShuffle(true)
	}

	if !resume || sess == nil || sess.CurrentID == "" {
		return false, nil
	}

	snap := playlist.NewSnapshot(tracks...)
	t, ok := snap.Track(snap.IndexOf(sess.CurrentID))
	if !ok {
		return false, nil
	}
	if err := svc.CueTrack(t, sess.Position); err != nil {
		return false, err
	}
	return true, nil
}
