// Package library turns song sources into playlist tracks.
//
// A source is an audio file, a directory of audio files, an http(s) URL
// of an audio stream, or a generation feed (a JSON file or URL listing
// generated songs).
package library

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/octaai/octaplay/internal/player"
	"github.com/octaai/octaplay/internal/playlist"
)

const feedExt = ".json"

// ErrUnsupportedSource is returned for sources that are neither audio nor feeds.
var ErrUnsupportedSource = errors.New("unsupported source")

// SourceError reports which source failed to load.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string { return e.Source + ": " + e.Err.Error() }

func (e *SourceError) Unwrap() error { return e.Err }

// Loader resolves sources into tracks.
type Loader struct {
	log    *zap.Logger
	client *http.Client
}

// New creates a loader. A nil client uses a client with a 30s timeout.
func New(client *http.Client, log *zap.Logger) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{log: log.Named("library"), client: client}
}

// Load resolves every source in order. Sources that fail are skipped and
// reported together in the returned error; tracks from the others are
// still returned. Duplicate track IDs keep their first occurrence.
func (l *Loader) Load(ctx context.Context, sources []string) ([]playlist.Track, error) {
	var (
		tracks []playlist.Track
		errs   []error
		seen   = make(map[string]bool)
	)

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return tracks, err
		}

		found, err := l.loadSource(ctx, strings.TrimSpace(src))
		if err != nil {
			l.log.Warn("skipping source", zap.String("source", src), zap.Error(err))
			errs = append(errs, &SourceError{Source: src, Err: err})
		}
		for _, t := range found {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			tracks = append(tracks, t)
		}
	}

	l.log.Info("loaded songs", zap.Int("tracks", len(tracks)), zap.Int("sources", len(sources)))
	return tracks, errors.Join(errs...)
}

func (l *Loader) loadSource(ctx context.Context, src string) ([]playlist.Track, error) {
	switch {
	case src == "":
		return nil, ErrUnsupportedSource
	case isRemote(src):
		if strings.EqualFold(path.Ext(urlPath(src)), feedExt) {
			return l.fetchFeed(ctx, src)
		}
		return []playlist.Track{urlTrack(src)}, nil
	}

	p := strings.TrimPrefix(src, "file://")
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}

	switch {
	case info.IsDir():
		return l.scanDir(ctx, p)
	case strings.EqualFold(filepath.Ext(p), feedExt):
		return l.readFeedFile(p)
	case player.IsSupportedFile(p):
		return []playlist.Track{l.fileTrack(p)}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, filepath.Ext(p))
	}
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// urlTrack builds a track for a bare audio URL.
func urlTrack(u string) playlist.Track {
	title := strings.TrimSuffix(path.Base(urlPath(u)), path.Ext(urlPath(u)))
	if title == "" || title == "." || title == "/" {
		title = u
	}
	return playlist.Track{
		ID:     urlID(u),
		Title:  title,
		Source: u,
	}
}

// urlID derives a stable identity from a URL.
func urlID(u string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(u)).String()
}
