package notify

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/octaai/octaplay/internal/errmsg"
	"github.com/octaai/octaplay/internal/playback"
	"github.com/octaai/octaplay/internal/playlist"
)

const trackTimeout = 4000 // ms

// Watcher turns playback events into desktop notifications. Each new
// track replaces the previous track notification.
type Watcher struct {
	n      Notifier
	log    *zap.Logger
	sub    *playback.Subscription
	lastID uint32
}

// NewWatcher subscribes to svc immediately.
func NewWatcher(svc playback.Service, n Notifier, log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{n: n, log: log.Named("notify"), sub: svc.Subscribe()}
}

// Run sends notifications until ctx is done or the service closes.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.sub.Done:
			return
		case e := <-w.sub.TrackChanged:
			if e.Current != nil {
				w.send(trackNotification(*e.Current), true)
			}
		case e := <-w.sub.Error:
			w.send(Notification{
				Title:   "Playback error",
				Body:    errmsg.FormatSource(errmsg.PlaybackOp(e.Op), e.Source, e.Err),
				Timeout: -1,
				Urgency: UrgencyCritical,
			}, false)
		}
	}
}

func (w *Watcher) send(n Notification, replace bool) {
	if replace {
		n.ReplacesID = w.lastID
	}
	id, err := w.n.Notify(n)
	if err != nil {
		w.log.Debug("notification failed", zap.Error(err))
		return
	}
	if replace {
		w.lastID = id
	}
}

func trackNotification(t playlist.Track) Notification {
	n := Notification{
		Title:   t.Title,
		Body:    t.Artist,
		Timeout: trackTimeout,
		Urgency: UrgencyLow,
	}
	if n.Title == "" {
		n.Title = "Unknown Track"
	}
	if filepath.IsAbs(t.Artwork) {
		n.Icon = t.Artwork
	}
	return n
}
