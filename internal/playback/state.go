// internal/playback/state.go
package playback

// State is the orchestrator lifecycle state.
// Playing/paused is tracked separately and can toggle in Loading, Ready or Ended.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateEnded
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLoading:
		return "Loading"
	case StateReady:
		return "Ready"
	case StateEnded:
		return "Ended"
	default:
		return "Unknown"
	}
}

// Loaded returns true if a prepared source is in the engine.
func (s State) Loaded() bool {
	return s == StateReady || s == StateEnded
}
