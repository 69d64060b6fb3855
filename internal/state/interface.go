// internal/state/interface.go
package state

// Interface defines the session store contract for dependency injection and testing.
type Interface interface {
	SaveSession(s Session)
	GetSession() (*Session, error)
	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
