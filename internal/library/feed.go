package library

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/octaai/octaplay/internal/errmsg"
	"github.com/octaai/octaplay/internal/playlist"
)

// maxFeedSize bounds how much of a remote feed is read.
const maxFeedSize = 8 << 20

// feedEntry is one generated song as stored by the generation backend.
type feedEntry struct {
	ID       string `json:"id"`
	MusicID  string `json:"music_id"`
	Title    string `json:"title"`
	Prompt   string `json:"prompt"`
	Genre    string `json:"genre"`
	MusicURL string `json:"music_url"`
	CoverURL string `json:"cover_url"`
	Duration int64  `json:"duration"` // seconds
}

// feedDocument accepts either a bare array or an object wrapping it.
type feedDocument struct {
	Songs []feedEntry `json:"songs"`
	Data  []feedEntry `json:"data"`
}

// ParseFeed decodes a generation feed. Entries without a music URL are
// kept; they surface as invalid sources when played.
func ParseFeed(r io.Reader) ([]playlist.Track, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)

	var entries []feedEntry
	switch {
	case len(data) == 0:
		return nil, nil
	case data[0] == '[':
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("%s: %w", errmsg.OpFeedParse, err)
		}
	default:
		var doc feedDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%s: %w", errmsg.OpFeedParse, err)
		}
		entries = append(doc.Songs, doc.Data...)
	}

	tracks := make([]playlist.Track, 0, len(entries))
	for _, e := range entries {
		tracks = append(tracks, e.track())
	}
	return tracks, nil
}

func (e feedEntry) track() playlist.Track {
	source := strings.TrimSpace(e.MusicURL)

	id := strings.TrimSpace(e.ID)
	if id == "" {
		id = strings.TrimSpace(e.MusicID)
	}
	if id == "" && source != "" {
		id = urlID(source)
	}

	title := strings.TrimSpace(e.Title)
	if title == "" {
		title = strings.TrimSpace(e.Prompt)
	}
	if title == "" {
		title = "Untitled"
	}

	return playlist.Track{
		ID:       id,
		Title:    title,
		Artist:   strings.TrimSpace(e.Genre),
		Artwork:  strings.TrimSpace(e.CoverURL),
		Source:   source,
		Duration: time.Duration(max(e.Duration, 0)) * time.Second,
	}
}

func (l *Loader) readFeedFile(p string) ([]playlist.Track, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseFeed(f)
}

func (l *Loader) fetchFeed(ctx context.Context, u string) ([]playlist.Track, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed: unexpected status %s", resp.Status)
	}

	body := io.LimitReader(resp.Body, maxFeedSize+1)
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(data) > maxFeedSize {
		return nil, fmt.Errorf("fetch feed: larger than %s", humanize.IBytes(maxFeedSize))
	}
	return ParseFeed(bytes.NewReader(data))
}

// urlPath returns the path component of u, or u itself if it does not parse.
func urlPath(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return u
	}
	return parsed.Path
}
