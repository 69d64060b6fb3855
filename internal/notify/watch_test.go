package notify

import (
	"context"
	"sync"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octaai/octaplay/internal/playback"
	"github.com/octaai/octaplay/internal/player"
	"github.com/octaai/octaplay/internal/playlist"
)

type fakeNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

func (f *fakeNotifier) Notify(n Notification) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	return uint32(len(f.sent)), nil
}

func (f *fakeNotifier) Close(uint32) error { return nil }

func (f *fakeNotifier) Sent() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Notification(nil), f.sent...)
}

func TestWatcher_TrackChanges(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc := playback.New(player.NewMock(), playback.Options{})
		defer svc.Close()
		n := &fakeNotifier{}

		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()
		go NewWatcher(svc, n, nil).Run(ctx)

		require.NoError(t, svc.PlayTrack(playlist.Track{
			ID: "a", Title: "Song", Artist: "Band", Artwork: "/music/cover.jpg", Source: "/music/a.mp3",
		}))
		synctest.Wait()
		require.NoError(t, svc.PlayTrack(playlist.Track{ID: "b", Source: "/music/b.mp3"}))
		synctest.Wait()

		sent := n.Sent()
		require.Len(t, sent, 2)
		assert.Equal(t, "Song", sent[0].Title)
		assert.Equal(t, "Band", sent[0].Body)
		assert.Equal(t, "/music/cover.jpg", sent[0].Icon)
		assert.Zero(t, sent[0].ReplacesID)

		assert.Equal(t, "Unknown Track", sent[1].Title)
		assert.Equal(t, uint32(1), sent[1].ReplacesID)
	})
}

func TestWatcher_Errors(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc := playback.New(player.NewMock(), playback.Options{})
		defer svc.Close()
		n := &fakeNotifier{}

		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()
		go NewWatcher(svc, n, nil).Run(ctx)

		require.Error(t, svc.PlayTrack(playlist.Track{ID: "bad"}))
		synctest.Wait()

		sent := n.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "Playback error", sent[0].Title)
		assert.Equal(t, UrgencyCritical, sent[0].Urgency)
		assert.NotEmpty(t, sent[0].Body)
	})
}

func TestWatcher_StopsWhenServiceCloses(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc := playback.New(player.NewMock(), playback.Options{})
		w := NewWatcher(svc, &fakeNotifier{}, nil)

		done := make(chan struct{})
		go func() {
			w.Run(t.Context())
			close(done)
		}()

		require.NoError(t, svc.Close())
		<-done
	})
}

func TestTrackNotification_RemoteArtworkNotUsedAsIcon(t *testing.T) {
	n := trackNotification(playlist.Track{Title: "x", Artwork: "https://cdn.example.com/a.jpg"})
	assert.Empty(t, n.Icon)
}
