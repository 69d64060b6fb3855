package playback

import (
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/octaai/octaplay/internal/playlist"
)

// Service defines the playback orchestrator contract.
//
// Commands only issue engine commands and return immediately; the outcome
// is observed through Status and Subscribe. A failing command never leaves
// the service unusable.
type Service interface {
	// Playback control
	PlayTrack(t playlist.Track) error
	PlayTrackAt(t playlist.Track, at time.Duration) error // seek to at once ready
	CueTrack(t playlist.Track, at time.Duration) error    // load paused at at
	PlayIndex(index int) error
	TogglePlayPause()
	Stop()
	SeekTo(pos time.Duration)
	SeekToPercent(fraction float64)
	SkipForward(delta time.Duration)
	SkipBackward(delta time.Duration)

	// Playlist navigation
	PlayNext() error
	PlayPrevious() error
	SetPlaylist(tracks []playlist.Track)

	// Mode control
	SetRepeat(enabled bool)
	ToggleRepeat() bool
	SetShuffle(enabled bool)
	ToggleShuffle() bool
	SetVolume(level float64)

	// State queries
	Status() Status
	State() State
	IsPlaying() bool
	Position() time.Duration
	Duration() time.Duration
	CurrentTrack() *playlist.Track
	CurrentIndex() int
	Playlist() []playlist.Track
	Repeat() bool
	Shuffle() bool
	Volume() float64

	// Event subscription
	Subscribe() *Subscription

	// Lifecycle
	Close() error
}

// Status is a consistent copy of the observable outputs.
type Status struct {
	State    State
	Playing  bool
	Position time.Duration
	Duration time.Duration
	Track    *playlist.Track // nil if nothing was ever loaded
	Index    int             // -1 if the track is not in the playlist
	Repeat   bool
	Shuffle  bool
}

const (
	DefaultPollInterval = 200 * time.Millisecond
	DefaultLoadTimeout  = 30 * time.Second
	DefaultSkipStep     = 10 * time.Second
)

// Options configures the service. Zero values select defaults.
type Options struct {
	PollInterval time.Duration
	LoadTimeout  time.Duration // negative disables the timeout
	SkipStep     time.Duration
	Repeat       bool
	Shuffle      bool
	Rand         playlist.Rand
	Logger       *zap.Logger
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.LoadTimeout == 0 {
		o.LoadTimeout = DefaultLoadTimeout
	}
	if o.SkipStep <= 0 {
		o.SkipStep = DefaultSkipStep
	}
	if o.Rand == nil {
		o.Rand = globalRand{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
