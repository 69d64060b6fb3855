package playlist

import (
	"strings"
	"time"
)

// Track represents a single playable item.
type Track struct {
	ID       string // stable identity within a snapshot
	Title    string
	Artist   string
	Artwork  string        // artwork locator (URL or path), optional
	Source   string        // source locator for playback
	Duration time.Duration // hint only, the engine reports the real duration
}

// Playable returns true if the track has a source to load.
func (t Track) Playable() bool {
	return strings.TrimSpace(t.Source) != ""
}

// Snapshot is an immutable ordered list of tracks.
// Replacing the list means building a new Snapshot.
type Snapshot struct {
	tracks []Track
}

// NewSnapshot creates a snapshot holding a copy of tracks.
func NewSnapshot(tracks ...Track) Snapshot {
	if len(tracks) == 0 {
		return Snapshot{}
	}
	c := make([]Track, len(tracks))
	copy(c, tracks)
	return Snapshot{tracks: c}
}

// Len returns the number of tracks.
func (s Snapshot) Len() int {
	return len(s.tracks)
}

// IsEmpty returns true if the snapshot has no tracks.
func (s Snapshot) IsEmpty() bool {
	return len(s.tracks) == 0
}

// Tracks returns a copy of all tracks.
func (s Snapshot) Tracks() []Track {
	result := make([]Track, len(s.tracks))
	copy(result, s.tracks)
	return result
}

// Track returns the track at the given index.
func (s Snapshot) Track(index int) (Track, bool) {
	if index < 0 || index >= len(s.tracks) {
		return Track{}, false
	}
	return s.tracks[index], true
}

// IndexOf returns the index of the first track with the given ID, or -1.
func (s Snapshot) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.tracks {
		if s.tracks[i].ID == id {
			return i
		}
	}
	return -1
}
