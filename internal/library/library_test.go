package library

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `[
  {"id": "gen-1", "title": "Night Drive", "genre": "synthwave",
   "music_url": "https://cdn.example.com/gen-1.mp3",
   "cover_url": "https://cdn.example.com/gen-1.jpg", "duration": 180},
  {"music_id": "m-2", "prompt": "lofi rain", "music_url": "https://cdn.example.com/gen-2.mp3"},
  {"title": "No audio yet"}
]`

func writeFile(t *testing.T, p, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
}

func TestParseFeed_Array(t *testing.T) {
	tracks, err := ParseFeed(strings.NewReader(sampleFeed))
	require.NoError(t, err)
	require.Len(t, tracks, 3)

	assert.Equal(t, "gen-1", tracks[0].ID)
	assert.Equal(t, "Night Drive", tracks[0].Title)
	assert.Equal(t, "synthwave", tracks[0].Artist)
	assert.Equal(t, "https://cdn.example.com/gen-1.jpg", tracks[0].Artwork)
	assert.Equal(t, 3*time.Minute, tracks[0].Duration)
	assert.True(t, tracks[0].Playable())

	assert.Equal(t, "m-2", tracks[1].ID)
	assert.Equal(t, "lofi rain", tracks[1].Title)

	assert.Equal(t, "No audio yet", tracks[2].Title)
	assert.False(t, tracks[2].Playable())
}

func TestParseFeed_WrappedObject(t *testing.T) {
	doc := `{"data": [{"id": "a", "music_url": "https://x/a.mp3"}], "songs": [{"id": "b", "music_url": "https://x/b.mp3"}]}`

	tracks, err := ParseFeed(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "b", tracks[0].ID)
	assert.Equal(t, "a", tracks[1].ID)
	assert.Equal(t, "Untitled", tracks[1].Title)
}

func TestParseFeed_EmptyAndInvalid(t *testing.T) {
	tracks, err := ParseFeed(strings.NewReader("  "))
	require.NoError(t, err)
	assert.Empty(t, tracks)

	_, err = ParseFeed(strings.NewReader("[{"))
	require.Error(t, err)
}

func TestFeedEntry_IDFromURL(t *testing.T) {
	e := feedEntry{MusicURL: "https://cdn.example.com/x.mp3"}
	assert.Equal(t, urlID("https://cdn.example.com/x.mp3"), e.track().ID)
}

func TestURLTrack(t *testing.T) {
	tr := urlTrack("https://cdn.example.com/music/Song%20One.mp3?token=abc")

	assert.Equal(t, "Song One", tr.Title)
	assert.Equal(t, "https://cdn.example.com/music/Song%20One.mp3?token=abc", tr.Source)
	assert.Equal(t, tr.ID, urlTrack(tr.Source).ID, "ids are deterministic")
	assert.NotEqual(t, tr.ID, urlTrack("https://cdn.example.com/other.mp3").ID)
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b", "02 second.mp3"), "not really audio")
	writeFile(t, filepath.Join(dir, "a", "01 first.flac"), "not really audio")
	writeFile(t, filepath.Join(dir, "a", "cover.jpg"), "jpeg")
	writeFile(t, filepath.Join(dir, "notes.txt"), "skip me")
	writeFile(t, filepath.Join(dir, ".hidden", "x.mp3"), "skip me")

	tracks, err := New(nil, nil).Load(context.Background(), []string{dir})
	require.NoError(t, err)
	require.Len(t, tracks, 2)

	assert.Equal(t, "01 first", tracks[0].Title)
	assert.Equal(t, filepath.Join(dir, "a", "01 first.flac"), tracks[0].Source)
	assert.Equal(t, tracks[0].Source, tracks[0].ID)
	assert.Equal(t, filepath.Join(dir, "a", "cover.jpg"), tracks[0].Artwork)

	assert.Equal(t, "02 second", tracks[1].Title)
	assert.Empty(t, tracks[1].Artwork)
}

func TestLoad_MixedSourcesAndDuplicates(t *testing.T) {
	dir := t.TempDir()
	song := filepath.Join(dir, "song.wav")
	feed := filepath.Join(dir, "songs.json")
	writeFile(t, song, "RIFF")
	writeFile(t, feed, sampleFeed)

	sources := []string{
		song,
		"file://" + song,
		feed,
		"https://cdn.example.com/stream.ogg",
	}

	tracks, err := New(nil, nil).Load(context.Background(), sources)
	require.NoError(t, err)
	require.Len(t, tracks, 5)

	assert.Equal(t, song, tracks[0].Source)
	assert.Equal(t, "gen-1", tracks[1].ID)
	assert.Equal(t, "stream", tracks[4].Title)
}

func TestLoad_ReportsFailedSources(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.mp3")
	bad := filepath.Join(dir, "readme.md")
	writeFile(t, good, "x")
	writeFile(t, bad, "x")
	missing := filepath.Join(dir, "missing.mp3")

	tracks, err := New(nil, nil).Load(context.Background(), []string{bad, good, missing})
	require.Error(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, good, tracks[0].Source)

	assert.ErrorIs(t, err, ErrUnsupportedSource)
	assert.ErrorIs(t, err, os.ErrNotExist)

	var se *SourceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, bad, se.Source)
}

func TestLoad_RemoteFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/feed.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	l := New(srv.Client(), nil)

	tracks, err := l.Load(context.Background(), []string{srv.URL + "/feed.json"})
	require.NoError(t, err)
	assert.Len(t, tracks, 3)

	_, err = l.Load(context.Background(), []string{srv.URL + "/missing.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestLoad_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil, nil).Load(ctx, []string{t.TempDir()})
	assert.True(t, errors.Is(err, context.Canceled))
}
