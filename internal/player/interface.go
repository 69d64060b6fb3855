// internal/player/interface.go
package player

import "time"

// Engine is the command/event boundary around a media engine.
//
// Commands return immediately. Their effect is observed through Events,
// never assumed from the command itself. Every event carries the
// generation passed to the Load that produced the current source.
type Engine interface {
	// Load stops the current source and starts preparing source
	// asynchronously. The engine eventually emits StateChanged(Ready)
	// with the duration, or EventFailed.
	Load(gen uint64, source string) error
	Play() error
	Pause() error
	Stop() error
	Seek(pos time.Duration) error
	Position() time.Duration
	IsPlaying() bool
	Events() <-chan Event
	Close() error
}

// VolumeControl is implemented by engines with an output volume.
type VolumeControl interface {
	SetVolume(level float64)
	Volume() float64
}

// Verify implementations at compile time.
var (
	_ Engine        = (*Player)(nil)
	_ VolumeControl = (*Player)(nil)
	_ Engine        = (*Mock)(nil)
)
