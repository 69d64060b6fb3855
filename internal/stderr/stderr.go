//go:build !windows

// Package stderr captures output that audio backends write directly to
// file descriptor 2 (ALSA, oto), bypassing os.Stderr, so it cannot corrupt
// the terminal UI. Captured lines are handed to a zap logger.
package stderr

import (
	"bufio"
	"os"
	"strings"
	"sync"
	"syscall"

	"go.uber.org/zap"
)

// Capture redirects fd 2 into a pipe until Stop is called.
type Capture struct {
	log       *zap.Logger
	orig      int
	pipeRead  *os.File
	pipeWrite *os.File
	done      chan struct{}
	stopOnce  sync.Once
}

// Start begins capturing stderr and logs every non-empty line at warn level.
// Must be called before the audio output is initialized. On error the
// program can continue without capture.
func Start(log *zap.Logger) (*Capture, error) {
	if log == nil {
		log = zap.NewNop()
	}

	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	orig, err := syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}

	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		syscall.Close(orig)
		r.Close()
		w.Close()
		return nil, err
	}

	c := &Capture{
		log:       log.Named("stderr"),
		orig:      orig,
		pipeRead:  r,
		pipeWrite: w,
		done:      make(chan struct{}),
	}
	go c.forward()
	return c, nil
}

func (c *Capture) forward() {
	defer close(c.done)
	scanLines(c.pipeRead, func(line string) {
		c.log.Warn("captured output", zap.String("line", line))
	})
}

// scanLines calls fn for each trimmed, non-empty line read from f.
func scanLines(f *os.File, fn func(string)) {
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			fn(line)
		}
	}
}

// WriteOriginal writes directly to the original stderr, bypassing capture.
// Used for fatal errors that must stay visible.
func (c *Capture) WriteOriginal(msg string) {
	if c == nil {
		_, _ = os.Stderr.WriteString(msg)
		return
	}
	_, _ = syscall.Write(c.orig, []byte(msg))
}

// Stop restores the original stderr and waits for pending lines to be logged.
func (c *Capture) Stop() {
	if c == nil {
		return
	}
	c.stopOnce.Do(func() {
		_ = syscall.Dup2(c.orig, int(os.Stderr.Fd()))
		_ = syscall.Close(c.orig)

		// Closing the write end lets the scanner drain and exit.
		c.pipeWrite.Close()
		<-c.done
		c.pipeRead.Close()
	})
}
