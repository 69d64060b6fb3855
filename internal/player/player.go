package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"go.uber.org/zap"
)

var (
	ErrNoSource     = errors.New("no source loaded")
	ErrEngineClosed = errors.New("engine closed")
)

// Options configures the beep engine.
type Options struct {
	SampleRate  int           // speaker sample rate, default 44100
	Buffer      time.Duration // speaker buffer, default 100ms
	MaxDownload int64         // max bytes for remote sources, default 64 MiB
	HTTPTimeout time.Duration // response header timeout, default 30s
	Volume      float64       // initial volume level 0..1, default 1
	Client      *http.Client
	Logger      *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.SampleRate <= 0 {
		o.SampleRate = 44100
	}
	if o.Buffer <= 0 {
		o.Buffer = 100 * time.Millisecond
	}
	if o.MaxDownload <= 0 {
		o.MaxDownload = 64 << 20
	}
	if o.HTTPTimeout <= 0 {
		o.HTTPTimeout = 30 * time.Second
	}
	if o.Volume <= 0 || o.Volume > 1 {
		o.Volume = 1
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// The speaker is process-global in beep.
var (
	speakerMu   sync.Mutex
	speakerRate beep.SampleRate
)

func initSpeaker(rate beep.SampleRate, buffer time.Duration) (beep.SampleRate, error) {
	speakerMu.Lock()
	defer speakerMu.Unlock()
	if speakerRate != 0 {
		return speakerRate, nil
	}
	if err := speaker.Init(rate, rate.N(buffer)); err != nil {
		return 0, fmt.Errorf("init speaker: %w", err)
	}
	speakerRate = rate
	return rate, nil
}

// source is a decoded, prepared track.
type source struct {
	raw      io.Closer
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	detached bool // the sequence finished and left the speaker mixer
}

func (s *source) duration() time.Duration {
	return s.format.SampleRate.D(s.streamer.Len())
}

func (s *source) close() {
	s.streamer.Close()
	s.raw.Close()
}

// Player is an Engine backed by the beep speaker.
type Player struct {
	opts   Options
	log    *zap.Logger
	client *http.Client

	mu          sync.Mutex
	gen         uint64
	status      Status
	playing     bool
	src         *source
	cancelLoad  context.CancelFunc
	volumeLevel float64
	muted       bool
	closed      bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	queue  *eventQueue
}

// New creates a beep engine. The speaker is initialized on the first
// prepared source.
func New(opts Options) *Player {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	p := &Player{
		opts:        opts,
		log:         opts.Logger.Named("player"),
		client:      opts.Client,
		volumeLevel: opts.Volume,
		ctx:         ctx,
		cancel:      cancel,
		queue:       newEventQueue(),
	}
	if p.client == nil {
		p.client = newHTTPClient(opts.HTTPTimeout)
	}
	return p
}

// Load stops the current source and prepares source in the background.
func (p *Player) Load(gen uint64, src string) error {
	if err := validateSource(src); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrEngineClosed
	}

	p.stopLocked(false)

	ctx, cancel := context.WithCancel(p.ctx)
	p.gen = gen
	p.status = Loading
	p.cancelLoad = cancel
	p.queue.push(StateEvent(gen, Loading, 0))

	p.wg.Add(1)
	go p.prepare(ctx, gen, src)
	return nil
}

func (p *Player) prepare(ctx context.Context, gen uint64, src string) {
	defer p.wg.Done()

	s, err := p.decodeSource(ctx, src)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.gen != gen || ctx.Err() != nil {
		// Superseded while decoding.
		if s != nil {
			s.close()
		}
		return
	}
	if err != nil {
		p.log.Warn("load failed", zap.String("source", src), zap.Error(err))
		p.status = Idle
		p.queue.push(FailedEvent(gen, err))
		return
	}

	p.src = s
	p.status = Ready
	p.applyVolumeLocked()
	speaker.Play(p.sequence(s, gen))

	p.log.Debug("source ready",
		zap.String("source", src),
		zap.Uint64("generation", gen),
		zap.Duration("duration", s.duration()))
	p.queue.push(StateEvent(gen, Ready, s.duration()))
}

func (p *Player) decodeSource(ctx context.Context, src string) (*source, error) {
	r, ext, err := p.openSource(ctx, src)
	if err != nil {
		return nil, err
	}

	streamer, format, err := decode(r, ext)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("decode %s: %w", ext, err)
	}

	rate, err := initSpeaker(beep.SampleRate(p.opts.SampleRate), p.opts.Buffer)
	if err != nil {
		streamer.Close()
		r.Close()
		return nil, err
	}

	// Resample if the track's sample rate differs from the speaker's
	var out beep.Streamer = streamer
	if format.SampleRate != rate {
		out = beep.Resample(4, format.SampleRate, rate, streamer)
	}

	ctrl := &beep.Ctrl{Streamer: out, Paused: true}
	return &source{
		raw:      r,
		streamer: streamer,
		format:   format,
		ctrl:     ctrl,
		volume:   &effects.Volume{Streamer: ctrl, Base: 2},
	}, nil
}

// sequence wraps s with an end-of-media callback. The callback runs on the
// speaker goroutine with the speaker lock held, so it hands off to finished.
func (p *Player) sequence(s *source, gen uint64) beep.Streamer {
	return beep.Seq(s.volume, beep.Callback(func() {
		go p.finished(s, gen)
	}))
}

func (p *Player) finished(s *source, gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen || p.src != s {
		return
	}
	s.detached = true
	if p.playing {
		p.playing = false
		p.queue.push(PlayingEvent(gen, false))
	}
	p.status = Ended
	p.queue.push(StateEvent(gen, Ended, s.duration()))
}

// Play resumes output.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.src == nil {
		return ErrNoSource
	}
	if p.playing {
		return nil
	}
	if p.src.detached {
		p.src.detached = false
		speaker.Play(p.sequence(p.src, p.gen))
	}
	speaker.Lock()
	p.src.ctrl.Paused = false
	speaker.Unlock()

	p.playing = true
	p.queue.push(PlayingEvent(p.gen, true))
	return nil
}

// Pause pauses output.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.src == nil {
		return ErrNoSource
	}
	speaker.Lock()
	p.src.ctrl.Paused = true
	speaker.Unlock()

	if p.playing {
		p.playing = false
		p.queue.push(PlayingEvent(p.gen, false))
	}
	return nil
}

// Stop releases the current source.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked(true)
	return nil
}

func (p *Player) stopLocked(emit bool) {
	if p.cancelLoad != nil {
		p.cancelLoad()
		p.cancelLoad = nil
	}
	if p.src != nil {
		speaker.Clear()
		p.src.close()
		p.src = nil
	}
	if p.playing {
		p.playing = false
		if emit {
			p.queue.push(PlayingEvent(p.gen, false))
		}
	}
	if p.status != Idle {
		p.status = Idle
		if emit {
			p.queue.push(StateEvent(p.gen, Idle, 0))
		}
	}
}

// Seek moves to an absolute position, clamped to the stream.
func (p *Player) Seek(pos time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.src == nil {
		return ErrNoSource
	}

	length := p.src.streamer.Len()
	n := p.src.format.SampleRate.N(pos)
	n = max(min(n, length-1), 0)

	speaker.Lock()
	err := p.src.streamer.Seek(n)
	speaker.Unlock()
	if err != nil {
		return fmt.Errorf("seek: %w", err)
	}

	if p.status == Ended && n < length-1 {
		p.status = Ready
		p.queue.push(StateEvent(p.gen, Ready, p.src.duration()))
	}
	return nil
}

// Position returns the current position of the loaded source.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.src == nil {
		return 0
	}
	speaker.Lock()
	pos := p.src.format.SampleRate.D(p.src.streamer.Position())
	speaker.Unlock()
	return pos
}

// IsPlaying reports whether output is running.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Events returns the engine's event stream.
func (p *Player) Events() <-chan Event {
	return p.queue.events()
}

// Close stops playback, waits for pending loads and closes Events.
func (p *Player) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.stopLocked(false)
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
	p.queue.close()
	return nil
}
