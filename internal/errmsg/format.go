// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Playback operations
	OpPlaybackStart  Op = "start playback"
	OpPlaybackLoad   Op = "load track"
	OpPlaybackToggle Op = "toggle playback"
	OpPlaybackSeek   Op = "seek"
	OpPlaybackStop   Op = "stop playback"

	// Library operations
	OpLibraryLoad Op = "load songs"
	OpFeedParse   Op = "read generation feed"
	OpTagsRead    Op = "read file tags"

	// Session operations
	OpSessionLoad    Op = "restore session"
	OpSessionSave    Op = "save session"
	OpSessionRestore Op = "resume last track"

	// Initialization
	OpInitialize Op = "initialize application"
	OpConfigLoad Op = "load configuration"
)

// playbackOps maps playback error event operations to user-facing ones.
var playbackOps = map[string]Op{
	"play":   OpPlaybackStart,
	"load":   OpPlaybackLoad,
	"toggle": OpPlaybackToggle,
	"seek":   OpPlaybackSeek,
	"stop":   OpPlaybackStop,
}

// PlaybackOp returns the user-facing operation for a playback event op.
func PlaybackOp(op string) Op {
	if o, ok := playbackOps[op]; ok {
		return o
	}
	return Op(op)
}

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}

// FormatSource formats an error about a track source, shortening local
// paths to their file name.
func FormatSource(op Op, source string, err error) string {
	return FormatWith(op, displaySource(source), err)
}

func displaySource(source string) string {
	if source == "" || strings.Contains(source, "://") {
		return source
	}
	return filepath.Base(source)
}

// Root returns the innermost wrapped error, for short status lines.
func Root(err error) error {
	for err != nil {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
	return nil
}
