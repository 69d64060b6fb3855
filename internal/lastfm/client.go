package lastfm

import (
	"errors"
	"fmt"

	"github.com/shkh/lastfm-go/lastfm"
)

// ErrNotAuthenticated is returned when an operation requires a session key.
var ErrNotAuthenticated = errors.New("not authenticated")

// Client wraps the Last.fm API for scrobbling.
type Client struct {
	api        *lastfm.Api
	sessionKey string
}

// New creates a client with the given API credentials and session key.
// The session key comes from Last.fm's desktop auth flow.
func New(apiKey, apiSecret, sessionKey string) *Client {
	c := &Client{api: lastfm.New(apiKey, apiSecret)}
	if sessionKey != "" {
		c.sessionKey = sessionKey
		c.api.SetSession(sessionKey)
	}
	return c
}

// IsAuthenticated returns true if a session key is set.
func (c *Client) IsAuthenticated() bool {
	return c.sessionKey != ""
}

// UpdateNowPlaying sends a "now playing" notification to Last.fm.
func (c *Client) UpdateNowPlaying(track ScrobbleTrack) error {
	if !c.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if _, err := c.api.Track.UpdateNowPlaying(params(track, false)); err != nil {
		return fmt.Errorf("update now playing: %w", err)
	}
	return nil
}

// Scrobble submits a track play to Last.fm.
func (c *Client) Scrobble(track ScrobbleTrack) error {
	if !c.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if _, err := c.api.Track.Scrobble(params(track, true)); err != nil {
		return fmt.Errorf("scrobble: %w", err)
	}
	return nil
}

func params(track ScrobbleTrack, withTimestamp bool) lastfm.P {
	p := lastfm.P{
		"artist": track.Artist,
		"track":  track.Track,
	}
	if withTimestamp {
		p["timestamp"] = track.Timestamp.Unix()
	}
	if track.Duration > 0 {
		p["duration"] = int(track.Duration.Seconds())
	}
	return p
}
