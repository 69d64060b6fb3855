package playback

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSource is reported when a track has no source locator.
	// No engine command is issued.
	ErrInvalidSource = errors.New("track has no playable source")

	// ErrAdapterLoadFailure wraps any engine failure while loading or
	// commanding a source.
	ErrAdapterLoadFailure = errors.New("playback engine failure")

	// ErrLoadTimeout is wrapped in ErrAdapterLoadFailure when a source
	// stays in Loading longer than the configured timeout.
	ErrLoadTimeout = errors.New("load timed out")

	// ErrClosed is returned by commands issued after Close.
	ErrClosed = errors.New("playback service closed")
)

// Operation names carried by ErrorEvent.
const (
	OpPlay   = "play"
	OpLoad   = "load"
	OpToggle = "toggle"
	OpSeek   = "seek"
	OpStop   = "stop"
)

func wrapEngine(err error) error {
	return fmt.Errorf("%w: %w", ErrAdapterLoadFailure, err)
}
