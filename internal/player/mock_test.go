package player

import (
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMock_Lifecycle(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := NewMock()
		defer m.Close()

		require.NoError(t, m.Load(7, "/a.mp3"))
		m.SimulateReady(3 * time.Minute)
		require.NoError(t, m.Play())
		m.SimulateEnded()

		got := drain(t, m.Events(), 5)
		assert.Equal(t, StateEvent(7, Loading, 0), got[0])
		assert.Equal(t, StateEvent(7, Ready, 3*time.Minute), got[1])
		assert.Equal(t, PlayingEvent(7, true), got[2])
		assert.Equal(t, PlayingEvent(7, false), got[3])
		assert.Equal(t, StateEvent(7, Ended, 3*time.Minute), got[4])
		assert.Equal(t, 3*time.Minute, m.Position())
	})
}

func TestMock_PlayBeforeReadyIsSilent(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := NewMock()
		defer m.Close()

		require.NoError(t, m.Load(1, "/a.mp3"))
		require.NoError(t, m.Play())

		assert.False(t, m.IsPlaying())
		assert.Equal(t, 1, m.PlayCalls())
	})
}

func TestMock_SeekFromEndedReportsReady(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := NewMock()
		defer m.Close()

		require.NoError(t, m.Load(1, "/a.mp3"))
		m.SimulateReady(time.Minute)
		m.SimulateEnded()
		require.NoError(t, m.Seek(0))

		got := drain(t, m.Events(), 4)
		assert.Equal(t, StateEvent(1, Ready, time.Minute), got[3])
		assert.Equal(t, []time.Duration{0}, m.SeekCalls())
	})
}

func TestMock_InjectedErrors(t *testing.T) {
	errBoom := errors.New("boom")
	m := NewMock()
	defer m.Close()

	m.SetLoadError(errBoom)
	require.ErrorIs(t, m.Load(1, "/a.mp3"), errBoom)
	assert.Equal(t, []string{"/a.mp3"}, m.LoadCalls())
	assert.Equal(t, uint64(0), m.Generation())

	m.SetPlayError(errBoom)
	require.ErrorIs(t, m.Play(), errBoom)

	m.SetSeekError(errBoom)
	require.ErrorIs(t, m.Seek(time.Second), errBoom)
}
