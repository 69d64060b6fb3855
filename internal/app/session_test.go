package app

import (
	"context"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/octaai/octaplay/internal/playback"
	"github.com/octaai/octaplay/internal/player"
	"github.com/octaai/octaplay/internal/playlist"
	"github.com/octaai/octaplay/internal/state"
)

func track(id string) playlist.Track {
	return playlist.Track{ID: id, Title: "Song " + id, Source: "/music/" + id + ".mp3"}
}

func tracks(ids ...string) []playlist.Track {
	out := make([]playlist.Track, len(ids))
	for i, id := range ids {
		out[i] = track(id)
	}
	return out
}

func TestSnapshot(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := player.NewMock()
		svc := playback.New(m, playback.Options{})
		defer svc.Close()

		svc.SetPlaylist(tracks("a", "b"))
		svc.SetRepeat(true)
		require.NoError(t, svc.PlayIndex(1))
		synctest.Wait()
		m.SimulateReady(time.Minute)
		synctest.Wait()
		svc.SeekTo(20 * time.Second)

		sess := Snapshot(svc)
		assert.Equal(t, "b", sess.CurrentID)
		assert.Equal(t, 20*time.Second, sess.Position)
		assert.True(t, sess.Repeat)
		assert.False(t, sess.Shuffle)
		assert.Len(t, sess.Tracks, 2)
	})
}

func TestSnapshot_NothingLoaded(t *testing.T) {
	svc := playback.New(player.NewMock(), playback.Options{})
	defer svc.Close()

	sess := Snapshot(svc)
	assert.Empty(t, sess.CurrentID)
	assert.Empty(t, sess.Tracks)
	assert.InDelta(t, 1.0, sess.Volume, 0)
}

func TestRestore_NoSession(t *testing.T) {
	m := player.NewMock()
	svc := playback.New(m, playback.Options{})
	defer svc.Close()

	cued, err := Restore(svc, nil, tracks("a", "b"), true, Overrides{Shuffle: true})
	require.NoError(t, err)
	assert.False(t, cued)
	assert.Len(t, svc.Playlist(), 2)
	assert.True(t, svc.Shuffle())
	assert.False(t, svc.Repeat())
	assert.Empty(t, m.LoadCalls())
}

func TestRestore_CuesSavedTrack(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := player.NewMock()
		svc := playback.New(m, playback.Options{})
		defer svc.Close()

		sess := &state.Session{
			CurrentID: "b",
			Position:  42 * time.Second,
			Volume:    0.5,
			Repeat:    true,
			Tracks:    tracks("a", "b", "c"),
		}

		cued, err := Restore(svc, sess, nil, true, Overrides{})
		require.NoError(t, err)
		assert.True(t, cued)
		assert.Len(t, svc.Playlist(), 3)
		assert.True(t, svc.Repeat())
		assert.InDelta(t, 0.5, svc.Volume(), 0.001)
		assert.Equal(t, []string{"/music/b.mp3"}, m.LoadCalls())

		synctest.Wait()
		m.SimulateReady(time.Minute)
		synctest.Wait()

		assert.Equal(t, playback.StateReady, svc.State())
		assert.Equal(t, 1, svc.CurrentIndex())
		assert.Equal(t, 42*time.Second, svc.Position())
		assert.Equal(t, []time.Duration{42 * time.Second}, m.SeekCalls())
		assert.Zero(t, m.PlayCalls())
	})
}

func TestRestore_ResumeDisabled(t *testing.T) {
	m := player.NewMock()
	svc := playback.New(m, playback.Options{})
	defer svc.Close()

	sess := &state.Session{CurrentID: "a", Position: time.Second, Volume: 1, Tracks: tracks("a")}
	cued, err := Restore(svc, sess, nil, false, Overrides{})
	require.NoError(t, err)
	assert.False(t, cued)
	assert.Len(t, svc.Playlist(), 1)
	assert.Empty(t, m.LoadCalls())
}

func TestRestore_SavedTrackGone(t *testing.T) {
	m := player.NewMock()
	svc := playback.New(m, playback.Options{})
	defer svc.Close()

	sess := &state.Session{CurrentID: "old", Volume: 1, Tracks: tracks("old")}
	cued, err := Restore(svc, sess, tracks("a", "b"), true, Overrides{})
	require.NoError(t, err)
	assert.False(t, cued)
	assert.Equal(t, "a", svc.Playlist()[0].ID)
	assert.Empty(t, m.LoadCalls())
}

func TestRestore_OverridesWin(t *testing.T) {
	svc := playback.New(player.NewMock(), playback.Options{})
	defer svc.Close()

	sess := &state.Session{Volume: 1}
	_, err := Restore(svc, sess, tracks("a"), true, Overrides{Repeat: true, Shuffle: true})
	require.NoError(t, err)
	assert.True(t, svc.Repeat())
	assert.True(t, svc.Shuffle())
}

func TestSessionSync_SavesOnChanges(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := player.NewMock()
		svc := playback.New(m, playback.Options{})
		defer svc.Close()
		store := state.NewMock(nil)

		ctx, cancel := context.WithCancel(t.Context())
		ss := NewSessionSync(svc, store, nil)
		done := make(chan struct{})
		go func() {
			ss.Run(ctx)
			close(done)
		}()

		svc.SetPlaylist(tracks("a", "b"))
		synctest.Wait()
		assert.Equal(t, 1, store.Saves())

		require.NoError(t, svc.PlayIndex(0))
		synctest.Wait()
		saved, err := store.GetSession()
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, "a", saved.CurrentID)

		svc.ToggleShuffle()
		synctest.Wait()
		saved, _ = store.GetSession()
		assert.True(t, saved.Shuffle)

		before := store.Saves()
		cancel()
		<-done
		assert.Equal(t, before+1, store.Saves())
	})
}

func TestSessionSync_SavesPeriodicallyWhilePlaying(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := player.NewMock()
		svc := playback.New(m, playback.Options{PollInterval: 200 * time.Millisecond})
		defer svc.Close()
		store := state.NewMock(nil)

		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()
		go NewSessionSync(svc, store, nil).Run(ctx)

		require.NoError(t, svc.PlayTrack(track("a")))
		synctest.Wait()
		m.SimulateReady(time.Hour)
		synctest.Wait()
		before := store.Saves()

		for i := range positionSaveEvery {
			m.SetPosition(time.Duration(i+1) * time.Second)
			time.Sleep(200 * time.Millisecond)
			synctest.Wait()
		}

		assert.Greater(t, store.Saves(), before)
		saved, _ := store.GetSession()
		assert.Positive(t, saved.Position)
	})
}

func TestSessionSync_StopsWhenServiceCloses(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc := playback.New(player.NewMock(), playback.Options{})
		store := state.NewMock(nil)

		done := make(chan struct{})
		go func() {
			NewSessionSync(svc, store, nil).Run(t.Context())
			close(done)
		}()

		require.NoError(t, svc.Close())
		<-done
		assert.Zero(t, store.Saves())
	})
}

func TestRestoreSession_NoStore(t *testing.T) {
	svc := playback.New(player.NewMock(), playback.Options{})
	defer svc.Close()

	cued, err := restoreSession(svc, nil, tracks("a"), true, Overrides{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, cued)
	assert.Len(t, svc.Playlist(), 1)
}

func TestRestoreSession_FromStore(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := player.NewMock()
		svc := playback.New(m, playback.Options{})
		defer svc.Close()
		store := state.NewMock(&state.Session{CurrentID: "a", Volume: 1, Tracks: tracks("a", "b")})

		cued, err := restoreSession(svc, store, nil, true, Overrides{}, zap.NewNop())
		require.NoError(t, err)
		assert.True(t, cued)
		assert.Equal(t, []string{"/music/a.mp3"}, m.LoadCalls())
	})
}
