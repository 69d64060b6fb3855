//go:build linux

package mpris

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/octaai/octaplay/internal/playback"
)

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil
}

func (r *rootAdapter) Quit() error {
	return nil // the terminal UI owns the lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "octaplay", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file", "http", "https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/wav", "audio/ogg"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter and the
// optional loop status and shuffle interfaces.
type playerAdapter struct {
	svc playback.Service
}

func (p *playerAdapter) Next() error {
	return p.svc.PlayNext()
}

func (p *playerAdapter) Previous() error {
	return p.svc.PlayPrevious()
}

func (p *playerAdapter) Pause() error {
	if p.svc.IsPlaying() {
		p.svc.TogglePlayPause()
	}
	return nil
}

func (p *playerAdapter) PlayPause() error {
	if p.svc.State() == playback.StateIdle {
		return p.Play()
	}
	p.svc.TogglePlayPause()
	return nil
}

func (p *playerAdapter) Stop() error {
	p.svc.Stop()
	return nil
}

// Play resumes, reloads a stopped track or starts the playlist.
func (p *playerAdapter) Play() error {
	if p.svc.State() != playback.StateIdle {
		if !p.svc.IsPlaying() {
			p.svc.TogglePlayPause()
		}
		return nil
	}
	if t := p.svc.CurrentTrack(); t != nil {
		return p.svc.PlayTrack(*t)
	}
	if len(p.svc.Playlist()) == 0 {
		return nil
	}
	return p.svc.PlayIndex(0)
}

// Seek moves relative to the current position.
func (p *playerAdapter) Seek(offset types.Microseconds) error {
	d := time.Duration(offset) * time.Microsecond
	switch {
	case d > 0:
		p.svc.SkipForward(d)
	case d < 0:
		p.svc.SkipBackward(-d)
	}
	return nil
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	p.svc.SeekTo(time.Duration(position) * time.Microsecond)
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch {
	case p.svc.State() == playback.StateIdle:
		return types.PlaybackStatusStopped, nil
	case p.svc.IsPlaying():
		return types.PlaybackStatusPlaying, nil
	default:
		return types.PlaybackStatusPaused, nil
	}
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	st := p.svc.Status()
	if st.Track == nil {
		return types.Metadata{}, nil
	}

	length := st.Duration
	if length == 0 {
		length = st.Track.Duration
	}

	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(st.Track.ID)),
		Length:  types.Microseconds(length.Microseconds()),
		Title:   st.Track.Title,
		ArtUrl:  ArtURL(st.Track.Artwork),
	}
	if st.Track.Artist != "" {
		meta.Artist = []string{st.Track.Artist}
	}
	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return p.svc.Volume(), nil
}

func (p *playerAdapter) SetVolume(level float64) error {
	p.svc.SetVolume(level)
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return p.svc.Position().Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

// Navigation wraps around, so it is possible whenever the current track
// is part of the playlist.
func (p *playerAdapter) CanGoNext() (bool, error) {
	return p.svc.CurrentIndex() >= 0, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return p.svc.CurrentIndex() >= 0, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return len(p.svc.Playlist()) > 0 || p.svc.CurrentTrack() != nil, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return p.svc.State() != playback.StateIdle, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return p.svc.State().Loaded(), nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
// The playlist always wraps, so "None" and "Playlist" both mean repeat off.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	if p.svc.Repeat() {
		return types.LoopStatusTrack, nil
	}
	return types.LoopStatusPlaylist, nil
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	p.svc.SetRepeat(status == types.LoopStatusTrack)
	return nil
}

// Shuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) Shuffle() (bool, error) {
	return p.svc.Shuffle(), nil
}

// SetShuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) SetShuffle(shuffle bool) error {
	p.svc.SetShuffle(shuffle)
	return nil
}

func formatTrackID(id string) string {
	h := fnv.New64a()
	h.Write([]byte(id))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
