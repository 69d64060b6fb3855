package playback

import (
	"time"

	"github.com/octaai/octaplay/internal/playlist"
)

// StateChange is emitted when the lifecycle state changes.
type StateChange struct {
	Previous State
	Current  State
}

// PlayingChange is emitted when the engine reports a new playing flag.
type PlayingChange struct {
	Playing bool
}

// TrackChange is emitted when a new track is handed to the engine.
//
// Emitted by PlayTrack, PlayIndex, CueTrack, PlayNext/PlayPrevious and
// automatic advance on end of media. Not emitted by SetPlaylist, even when
// the current index moves.
type TrackChange struct {
	Previous      *playlist.Track
	Current       *playlist.Track
	PreviousIndex int
	Index         int
}

// QueueChange is emitted when the playlist snapshot is replaced.
type QueueChange struct {
	Tracks []playlist.Track
	Index  int
}

// ModeChange is emitted when repeat, shuffle or volume change.
type ModeChange struct {
	Repeat  bool
	Shuffle bool
	Volume  float64
}

// PositionChange is emitted when the published position or duration changes.
type PositionChange struct {
	Position time.Duration
	Duration time.Duration
}

// ErrorEvent is emitted once per user-facing failure.
type ErrorEvent struct {
	Op     string // e.g. "load", "seek"
	Source string // source locator if applicable
	Err    error
}
