package lastfm

import (
	"context"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octaai/octaplay/internal/playback"
	"github.com/octaai/octaplay/internal/player"
	"github.com/octaai/octaplay/internal/playlist"
)

type fakeSubmitter struct {
	mu         sync.Mutex
	nowPlaying []ScrobbleTrack
	scrobbles  []ScrobbleTrack
}

func (f *fakeSubmitter) UpdateNowPlaying(t ScrobbleTrack) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nowPlaying = append(f.nowPlaying, t)
	return nil
}

func (f *fakeSubmitter) Scrobble(t ScrobbleTrack) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scrobbles = append(f.scrobbles, t)
	return nil
}

func (f *fakeSubmitter) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.nowPlaying), len(f.scrobbles)
}

func (f *fakeSubmitter) scrobbled() []ScrobbleTrack {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ScrobbleTrack(nil), f.scrobbles...)
}

func song(id string) playlist.Track {
	return playlist.Track{ID: id, Title: "Song " + id, Artist: "Band", Source: "/music/" + id + ".mp3"}
}

func startScrobbler(t *testing.T, svc playback.Service, api Submitter) {
	t.Helper()
	ctx, cancel := context.WithCancel(t.Context())
	t.Cleanup(cancel)
	go NewScrobbler(svc, api, nil).Run(ctx)
}

func TestScrobbler_ScrobblesAfterHalf(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := player.NewMock()
		svc := playback.New(m, playback.Options{})
		defer svc.Close()
		api := &fakeSubmitter{}
		startScrobbler(t, svc, api)

		require.NoError(t, svc.PlayTrack(song("a")))
		synctest.Wait()
		m.SimulateReady(2 * time.Minute)
		synctest.Wait()

		np, sc := api.counts()
		assert.Equal(t, 1, np)
		assert.Zero(t, sc)

		svc.SeekTo(59 * time.Second)
		synctest.Wait()
		_, sc = api.counts()
		assert.Zero(t, sc)

		svc.SeekTo(61 * time.Second)
		svc.SeekTo(90 * time.Second)
		synctest.Wait()
		got := api.scrobbled()
		require.Len(t, got, 1, "scrobbled once")
		assert.Equal(t, "Song a", got[0].Track)
		assert.Equal(t, 2*time.Minute, got[0].Duration)
	})
}

func TestScrobbler_FourMinuteCap(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := player.NewMock()
		svc := playback.New(m, playback.Options{})
		defer svc.Close()
		api := &fakeSubmitter{}
		startScrobbler(t, svc, api)

		require.NoError(t, svc.PlayTrack(song("a")))
		synctest.Wait()
		m.SimulateReady(time.Hour)
		synctest.Wait()

		svc.SeekTo(4 * time.Minute)
		synctest.Wait()
		_, sc := api.counts()
		assert.Equal(t, 1, sc)
	})
}

func TestScrobbler_SkipsShortAndUntagged(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := player.NewMock()
		svc := playback.New(m, playback.Options{})
		defer svc.Close()
		api := &fakeSubmitter{}
		startScrobbler(t, svc, api)

		require.NoError(t, svc.PlayTrack(song("short")))
		synctest.Wait()
		m.SimulateReady(20 * time.Second)
		synctest.Wait()
		svc.SeekTo(20 * time.Second)
		synctest.Wait()

		require.NoError(t, svc.PlayTrack(playlist.Track{ID: "u", Source: "/music/u.mp3"}))
		synctest.Wait()
		m.SimulateReady(2 * time.Minute)
		synctest.Wait()
		svc.SeekTo(time.Minute + time.Second)
		synctest.Wait()

		np, sc := api.counts()
		assert.Equal(t, 1, np, "untagged track sends no now playing")
		assert.Zero(t, sc)
	})
}

func TestClient_RequiresSession(t *testing.T) {
	c := New("key", "secret", "")
	assert.False(t, c.IsAuthenticated())
	assert.ErrorIs(t, c.Scrobble(ScrobbleTrack{}), ErrNotAuthenticated)
	assert.ErrorIs(t, c.UpdateNowPlaying(ScrobbleTrack{}), ErrNotAuthenticated)

	assert.True(t, New("key", "secret", "session").IsAuthenticated())
}

func TestParams(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	p := params(ScrobbleTrack{Artist: "A", Track: "T", Duration: 90 * time.Second, Timestamp: ts}, true)
	assert.Equal(t, "A", p["artist"])
	assert.Equal(t, "T", p["track"])
	assert.Equal(t, int64(1700000000), p["timestamp"])
	assert.Equal(t, 90, p["duration"])

	p = params(ScrobbleTrack{Artist: "A", Track: "T"}, false)
	assert.NotContains(t, p, "timestamp")
	assert.NotContains(t, p, "duration")
}
