// internal/player/state.go
package player

// Status is the lifecycle of the source loaded into an engine.
//
//	┌──────┐  Load   ┌─────────┐  prepared  ┌───────┐  end of media  ┌───────┐
//	│ Idle │ ──────▶ │ Loading │ ─────────▶ │ Ready │ ─────────────▶ │ Ended │
//	└──────┘         └─────────┘            └───────┘                └───────┘
//	    ▲                 │ failed              │ Stop                   │ Seek+Play
//	    └─────────────────┴─────────────────────┘                        ▼
//	                                                                   Ready
//
// Playing and paused are not statuses: the playing flag is reported
// separately with EventPlayingChanged and can toggle in Ready or Ended.
type Status int

const (
	Idle Status = iota
	Loading
	Ready
	Ended
)

// String returns the status name for debugging.
func (s Status) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Loading:
		return "Loading"
	case Ready:
		return "Ready"
	case Ended:
		return "Ended"
	default:
		return "Unknown"
	}
}

// Loaded returns true if a source is prepared (Ready or Ended).
func (s Status) Loaded() bool {
	return s == Ready || s == Ended
}
