//nolint:goconst // test cases intentionally repeat strings for readability
package errmsg

import (
	"errors"
	"fmt"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpPlaybackLoad,
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with operation",
			op:       OpPlaybackLoad,
			err:      errors.New("file not found"),
			expected: "Failed to load track: file not found",
		},
		{
			name:     "session save operation",
			op:       OpSessionSave,
			err:      errors.New("disk full"),
			expected: "Failed to save session: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpFeedParse,
			context:  "songs.json",
			err:      nil,
			expected: "",
		},
		{
			name:     "formats with context",
			op:       OpFeedParse,
			context:  "songs.json",
			err:      errors.New("unexpected EOF"),
			expected: "Failed to read generation feed 'songs.json': unexpected EOF",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpLibraryLoad,
			context:  "",
			err:      errors.New("no such directory"),
			expected: "Failed to load songs: no such directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestFormatSource(t *testing.T) {
	err := errors.New("unsupported format")

	tests := []struct {
		source   string
		expected string
	}{
		{"/music/album/song.mp3", "Failed to load track 'song.mp3': unsupported format"},
		{"https://cdn.example.com/a.mp3", "Failed to load track 'https://cdn.example.com/a.mp3': unsupported format"},
		{"", "Failed to load track: unsupported format"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			if got := FormatSource(OpPlaybackLoad, tt.source, err); got != tt.expected {
				t.Errorf("FormatSource() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestPlaybackOp(t *testing.T) {
	tests := map[string]Op{
		"play":   OpPlaybackStart,
		"load":   OpPlaybackLoad,
		"toggle": OpPlaybackToggle,
		"seek":   OpPlaybackSeek,
		"stop":   OpPlaybackStop,
		"rewind": Op("rewind"),
	}
	for in, want := range tests {
		if got := PlaybackOp(in); got != want {
			t.Errorf("PlaybackOp(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRoot(t *testing.T) {
	base := errors.New("connection refused")
	wrapped := fmt.Errorf("load: %w", fmt.Errorf("fetch: %w", base))

	if got := Root(wrapped); got != base {
		t.Errorf("Root() = %v, want %v", got, base)
	}
	if Root(nil) != nil {
		t.Error("Root(nil) should be nil")
	}
}

func TestOpConstants(t *testing.T) {
	ops := []Op{
		OpPlaybackStart, OpPlaybackLoad, OpPlaybackToggle, OpPlaybackSeek, OpPlaybackStop,
		OpLibraryLoad, OpFeedParse, OpTagsRead,
		OpSessionLoad, OpSessionSave, OpSessionRestore,
		OpInitialize, OpConfigLoad,
	}
	for _, op := range ops {
		if op == "" {
			t.Error("operation constant should not be empty")
		}
	}
}
