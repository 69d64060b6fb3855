// Package app wires configuration, logging, the audio engine, the
// playback service, session persistence and the terminal UI together.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/octaai/octaplay/internal/config"
	"github.com/octaai/octaplay/internal/errmsg"
	"github.com/octaai/octaplay/internal/lastfm"
	"github.com/octaai/octaplay/internal/library"
	"github.com/octaai/octaplay/internal/logger"
	"github.com/octaai/octaplay/internal/mpris"
	"github.com/octaai/octaplay/internal/notify"
	"github.com/octaai/octaplay/internal/playback"
	"github.com/octaai/octaplay/internal/player"
	"github.com/octaai/octaplay/internal/playlist"
	"github.com/octaai/octaplay/internal/state"
	"github.com/octaai/octaplay/internal/stderr"
	"github.com/octaai/octaplay/internal/ui/nowplaying"
)

// Params are the command-line inputs.
type Params struct {
	ConfigPath string
	LogLevel   string   // overrides the configured level when set
	Sources    []string // overrides the configured library sources when set
	NoResume   bool
	Shuffle    bool
	Repeat     bool
}

// Run starts the player and blocks until the UI exits or ctx is done.
func Run(ctx context.Context, p Params) error {
	cfg, err := config.Load(p.ConfigPath)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}

	lc := cfg.GetLogConfig()
	if p.LogLevel != "" {
		lc.Level = p.LogLevel
	}
	log, err := logger.New(logger.Config{
		Level:      logger.Level(lc.Level),
		File:       lc.File,
		MaxSizeMB:  lc.MaxSizeMB,
		MaxBackups: lc.MaxBackups,
		MaxAgeDays: lc.MaxAgeDays,
	})
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer func() { _ = log.Sync() }()

	// Audio backends may print to stderr, which would corrupt the UI.
	capture, err := stderr.Start(log)
	if err != nil {
		log.Warn("stderr capture unavailable", zap.Error(err))
	} else {
		defer capture.Stop()
	}

	audio := cfg.GetAudioConfig()
	engine := player.New(player.Options{
		SampleRate:  audio.SampleRate,
		Buffer:      audio.Buffer,
		MaxDownload: audio.MaxDownload,
		HTTPTimeout: audio.HTTPTimeout,
		Volume:      audio.Volume,
		Logger:      log,
	})

	pc := cfg.GetPlaybackConfig()
	svc := playback.New(engine, playback.Options{
		PollInterval: pc.PollInterval,
		LoadTimeout:  pc.LoadTimeout,
		SkipStep:     pc.SkipStep,
		Repeat:       pc.Repeat || p.Repeat,
		Shuffle:      pc.Shuffle || p.Shuffle,
		Logger:       log,
	})
	defer func() {
		if err := svc.Close(); err != nil {
			log.Warn("close playback", zap.Error(err))
		}
	}()

	var store state.Interface
	mgr, err := state.Open(cfg.Session.DBPath, log)
	if err != nil {
		log.Warn("session store unavailable", zap.Error(err))
	} else {
		store = mgr
		defer func() {
			if err := mgr.Close(); err != nil {
				log.Warn(errmsg.Format(errmsg.OpSessionSave, err))
			}
		}()
	}

	sources := p.Sources
	if len(sources) == 0 {
		sources = cfg.Library.Sources
	}
	loader := library.New(&http.Client{Timeout: audio.HTTPTimeout}, log)
	tracks, err := loader.Load(ctx, sources)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Partial failures still yield the tracks that loaded.
		log.Warn(errmsg.Format(errmsg.OpLibraryLoad, err), zap.Int("tracks", len(tracks)))
	}
	log.Info("library loaded", zap.Int("sources", len(sources)), zap.Int("tracks", len(tracks)))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Observers subscribe before the session is restored so the first
	// track change reaches them.
	model := nowplaying.New(svc)

	desktop := cfg.GetDesktopConfig()
	if desktop.MPRIS {
		adapter, err := mpris.New(svc, log)
		if err != nil {
			log.Info("mpris disabled", zap.Error(err))
		} else {
			defer func() { _ = adapter.Close() }()
		}
	}
	if desktop.Notifications {
		go notify.NewWatcher(svc, notify.New(), log).Run(ctx)
	}
	if lc := cfg.Lastfm; lc.Enabled() {
		client := lastfm.New(lc.APIKey, lc.APISecret, lc.SessionKey)
		go lastfm.NewScrobbler(svc, client, log).Run(ctx)
	}

	resume := pc.Resume && !p.NoResume
	overrides := Overrides{Repeat: p.Repeat, Shuffle: p.Shuffle}
	cued, err := restoreSession(svc, store, tracks, resume, overrides, log)
	if err != nil {
		log.Warn(errmsg.Format(errmsg.OpSessionRestore, err))
	}

	if !cued && len(p.Sources) > 0 && len(tracks) > 0 {
		if err := svc.PlayIndex(0); err != nil {
			log.Warn(errmsg.Format(errmsg.OpPlaybackStart, err))
		}
	}

	// Started after the restore so the saved position is not overwritten
	// before the cued track is ready.
	syncDone := make(chan struct{})
	if store != nil {
		ss := NewSessionSync(svc, store, log)
		go func() {
			defer close(syncDone)
			ss.Run(ctx)
		}()
	} else {
		close(syncDone)
	}

	prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := prog.Run()

	// Final save happens before the store closes.
	cancel()
	<-syncDone

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("run ui: %w", runErr)
	}
	return nil
}

// restoreSession applies the saved session, if any, on top of tracks.
func restoreSession(
	svc playback.Service,
	store state.Interface,
	tracks []playlist.Track,
	resume bool,
	o Overrides,
	log *zap.Logger,
) (bool, error) {
	var sess *state.Session
	if store != nil {
		s, err := store.GetSession()
		if err != nil {
			log.Warn(errmsg.Format(errmsg.OpSessionLoad, err))
		}
		sess = s
	}
	return Restore(svc, sess, tracks, resume, o)
}
