package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/dustin/go-humanize"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "octaplay"

type Config struct {
	Playback PlaybackConfig `koanf:"playback"`
	Audio    AudioConfig    `koanf:"audio"`
	Log      LogConfig      `koanf:"log"`
	Library  LibraryConfig  `koanf:"library"`
	Session  SessionConfig  `koanf:"session"`
	Desktop  DesktopConfig  `koanf:"desktop"`
	Lastfm   LastfmConfig   `koanf:"lastfm"`
}

// PlaybackConfig holds orchestrator settings. Durations use Go syntax ("200ms").
type PlaybackConfig struct {
	PollInterval string `koanf:"poll_interval"` // 150ms-250ms (default: 200ms)
	LoadTimeout  string `koanf:"load_timeout"`  // "0" disables (default: 30s)
	SkipStep     string `koanf:"skip_step"`     // default: 10s
	Repeat       bool   `koanf:"repeat"`
	Shuffle      bool   `koanf:"shuffle"`
	Resume       *bool  `koanf:"resume"` // restore last session (default: true)
}

// AudioConfig holds output device and source fetching settings.
type AudioConfig struct {
	SampleRate  int      `koanf:"sample_rate"`  // default: 44100
	Buffer      string   `koanf:"buffer"`       // speaker buffer (default: 100ms)
	Volume      *float64 `koanf:"volume"`       // 0.0-1.0 (default: 1.0)
	MaxDownload string   `koanf:"max_download"` // e.g. "64MB" (default: 64 MiB)
	HTTPTimeout string   `koanf:"http_timeout"` // response header timeout (default: 30s)
}

// LogConfig holds log file settings.
type LogConfig struct {
	Level      string `koanf:"level"` // debug, info, warn, error (default: info)
	File       string `koanf:"file"`  // default: $XDG_STATE_HOME/octaplay/octaplay.log
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
}

// LibraryConfig lists song sources loaded when none are given on the command line.
type LibraryConfig struct {
	Sources []string `koanf:"sources"` // files, directories, URLs or feed files
}

// SessionConfig holds session persistence settings.
type SessionConfig struct {
	DBPath string `koanf:"db_path"` // default: $XDG_DATA_HOME/octaplay/octaplay.db
}

// DesktopConfig controls desktop integration on Linux.
type DesktopConfig struct {
	MPRIS         *bool `koanf:"mpris"`         // media keys and widgets (default: true)
	Notifications bool  `koanf:"notifications"` // notify on track change and errors
}

// LastfmConfig enables scrobbling when all three values are set.
type LastfmConfig struct {
	APIKey     string `koanf:"api_key"`
	APISecret  string `koanf:"api_secret"`
	SessionKey string `koanf:"session_key"`
}

// Enabled reports whether scrobbling is configured.
func (l LastfmConfig) Enabled() bool {
	return l.APIKey != "" && l.APISecret != "" && l.SessionKey != ""
}

// Load merges config files in priority order (last wins). An explicit path
// must exist; the default locations are optional.
func Load(explicit string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	if explicit != "" {
		explicit = expandPath(explicit)
		if err := k.Load(file.Provider(explicit), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", explicit, err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	for i, src := range cfg.Library.Sources {
		cfg.Library.Sources[i] = expandPath(src)
	}
	cfg.Log.File = expandPath(cfg.Log.File)
	cfg.Session.DBPath = expandPath(cfg.Session.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/octaplay/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// Validate reports values that cannot be parsed.
func (c *Config) Validate() error {
	durations := map[string]string{
		"playback.poll_interval": c.Playback.PollInterval,
		"playback.load_timeout":  c.Playback.LoadTimeout,
		"playback.skip_step":     c.Playback.SkipStep,
		"audio.buffer":           c.Audio.Buffer,
		"audio.http_timeout":     c.Audio.HTTPTimeout,
	}
	for key, v := range durations {
		if _, err := parseDuration(v, 0); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	if _, err := parseSize(c.Audio.MaxDownload, 0); err != nil {
		return fmt.Errorf("audio.max_download: %w", err)
	}
	if c.Audio.Volume != nil && (*c.Audio.Volume < 0 || *c.Audio.Volume > 1) {
		return fmt.Errorf("audio.volume: %v out of range [0, 1]", *c.Audio.Volume)
	}
	return nil
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def, err
	}
	if d < 0 {
		return def, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}

func parseSize(s string, def int64) (int64, error) {
	if s == "" {
		return def, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return def, err
	}
	return int64(n), nil
}

const (
	DefaultPollInterval = 200 * time.Millisecond
	MinPollInterval     = 150 * time.Millisecond
	MaxPollInterval     = 250 * time.Millisecond
	DefaultLoadTimeout  = 30 * time.Second
	DefaultSkipStep     = 10 * time.Second

	DefaultSampleRate  = 44100
	DefaultBuffer      = 100 * time.Millisecond
	DefaultMaxDownload = 64 << 20
	DefaultHTTPTimeout = 30 * time.Second

	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 28
)

// Playback is the resolved playback configuration.
type Playback struct {
	PollInterval time.Duration
	LoadTimeout  time.Duration // negative when disabled
	SkipStep     time.Duration
	Repeat       bool
	Shuffle      bool
	Resume       bool
}

// GetPlaybackConfig returns the playback configuration with defaults applied.
func (c *Config) GetPlaybackConfig() Playback {
	p := c.Playback

	poll, _ := parseDuration(p.PollInterval, DefaultPollInterval)
	if poll == 0 {
		poll = DefaultPollInterval
	}
	poll = min(max(poll, MinPollInterval), MaxPollInterval)

	timeout := DefaultLoadTimeout
	if p.LoadTimeout != "" {
		timeout, _ = parseDuration(p.LoadTimeout, DefaultLoadTimeout)
		if timeout == 0 {
			timeout = -1
		}
	}

	skip, _ := parseDuration(p.SkipStep, DefaultSkipStep)
	if skip == 0 {
		skip = DefaultSkipStep
	}

	resume := true
	if p.Resume != nil {
		resume = *p.Resume
	}

	return Playback{
		PollInterval: poll,
		LoadTimeout:  timeout,
		SkipStep:     skip,
		Repeat:       p.Repeat,
		Shuffle:      p.Shuffle,
		Resume:       resume,
	}
}

// Audio is the resolved audio configuration.
type Audio struct {
	SampleRate  int
	Buffer      time.Duration
	Volume      float64
	MaxDownload int64
	HTTPTimeout time.Duration
}

// GetAudioConfig returns the audio configuration with defaults applied.
func (c *Config) GetAudioConfig() Audio {
	a := c.Audio

	rate := a.SampleRate
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	buf, _ := parseDuration(a.Buffer, DefaultBuffer)
	if buf == 0 {
		buf = DefaultBuffer
	}
	vol := 1.0
	if a.Volume != nil {
		vol = min(max(*a.Volume, 0), 1)
	}
	maxDL, _ := parseSize(a.MaxDownload, DefaultMaxDownload)
	if maxDL <= 0 {
		maxDL = DefaultMaxDownload
	}
	timeout, _ := parseDuration(a.HTTPTimeout, DefaultHTTPTimeout)
	if timeout == 0 {
		timeout = DefaultHTTPTimeout
	}

	return Audio{
		SampleRate:  rate,
		Buffer:      buf,
		Volume:      vol,
		MaxDownload: maxDL,
		HTTPTimeout: timeout,
	}
}

// GetLogConfig returns the log configuration with defaults applied.
func (c *Config) GetLogConfig() LogConfig {
	l := c.Log
	if l.Level == "" {
		l.Level = "info"
	}
	if l.File == "" {
		l.File = DefaultLogFile()
	}
	if l.MaxSizeMB <= 0 {
		l.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if l.MaxBackups <= 0 {
		l.MaxBackups = DefaultLogMaxBackups
	}
	if l.MaxAgeDays <= 0 {
		l.MaxAgeDays = DefaultLogMaxAgeDays
	}
	return l
}

// DefaultLogFile returns the log path under the XDG state directory.
func DefaultLogFile() string {
	return filepath.Join(xdg.StateHome, appName, appName+".log")
}

// Desktop is the resolved desktop integration configuration.
type Desktop struct {
	MPRIS         bool
	Notifications bool
}

// GetDesktopConfig returns the desktop configuration with defaults applied.
func (c *Config) GetDesktopConfig() Desktop {
	d := Desktop{MPRIS: true, Notifications: c.Desktop.Notifications}
	if c.Desktop.MPRIS != nil {
		d.MPRIS = *c.Desktop.MPRIS
	}
	return d
}
