package library

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dhowden/tag"
	"go.uber.org/zap"

	"github.com/octaai/octaplay/internal/errmsg"
	"github.com/octaai/octaplay/internal/player"
	"github.com/octaai/octaplay/internal/playlist"
)

// EmbeddedArtworkPrefix marks artwork stored inside the audio file itself.
const EmbeddedArtworkPrefix = "embedded:"

// Common cover art filenames to look for next to audio files.
var coverArtFilenames = []string{
	"cover.jpg", "cover.jpeg", "cover.png",
	"folder.jpg", "folder.jpeg", "folder.png",
	"front.jpg", "front.png",
}

// scanDir walks dir and returns its audio files sorted by path.
func (l *Loader) scanDir(ctx context.Context, dir string) ([]playlist.Track, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			l.log.Debug("walk error", zap.String("path", p), zap.Error(walkErr))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if player.IsSupportedFile(p) {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	tracks := make([]playlist.Track, 0, len(paths))
	for _, p := range paths {
		tracks = append(tracks, l.fileTrack(p))
	}
	return tracks, nil
}

// fileTrack reads tags from path. Files without readable tags are
// titled by their file name.
func (l *Loader) fileTrack(p string) playlist.Track {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}

	t := playlist.Track{
		ID:     p,
		Title:  strings.TrimSuffix(filepath.Base(p), filepath.Ext(p)),
		Source: p,
	}

	embedded := false
	m, err := readTags(p)
	if err != nil {
		l.log.Debug(errmsg.Format(errmsg.OpTagsRead, err), zap.String("path", p))
	} else {
		if title := strings.TrimSpace(m.Title()); title != "" {
			t.Title = title
		}
		t.Artist = strings.TrimSpace(m.Artist())
		if t.Artist == "" {
			t.Artist = strings.TrimSpace(m.AlbumArtist())
		}
		embedded = m.Picture() != nil
	}

	switch {
	case embedded:
		t.Artwork = EmbeddedArtworkPrefix + p
	default:
		t.Artwork = findFolderArt(filepath.Dir(p))
	}
	return t
}

func readTags(p string) (tag.Metadata, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tag.ReadFrom(f)
}

// findFolderArt returns the first common cover image in dir, or "".
func findFolderArt(dir string) string {
	for _, name := range coverArtFilenames {
		for _, candidate := range []string{name, strings.ToUpper(name)} {
			p := filepath.Join(dir, candidate)
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p
			}
		}
	}
	return ""
}
