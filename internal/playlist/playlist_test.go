//nolint:goconst // test file with repeated string literals
package playlist

import "testing"

func abc() Snapshot {
	return NewSnapshot(
		Track{ID: "a", Source: "/a.mp3"},
		Track{ID: "b", Source: "/b.mp3"},
		Track{ID: "c", Source: "/c.mp3"},
	)
}

func TestTrack_Playable(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   bool
	}{
		{"path", "/music/a.mp3", true},
		{"url", "https://cdn.example.com/a.mp3", true},
		{"empty", "", false},
		{"blank", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Track{Source: tt.source}).Playable(); got != tt.want {
				t.Errorf("Playable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewSnapshot_CopiesInput(t *testing.T) {
	tracks := []Track{{ID: "a"}, {ID: "b"}}
	s := NewSnapshot(tracks...)

	tracks[0].ID = "changed"

	if got, _ := s.Track(0); got.ID != "a" {
		t.Errorf("Track(0).ID = %q, want a (snapshot must not alias input)", got.ID)
	}
}

func TestSnapshot_TracksReturnsCopy(t *testing.T) {
	s := abc()

	out := s.Tracks()
	out[1].ID = "changed"

	if got, _ := s.Track(1); got.ID != "b" {
		t.Errorf("Track(1).ID = %q, want b", got.ID)
	}
}

func TestSnapshot_Empty(t *testing.T) {
	var s Snapshot

	if !s.IsEmpty() {
		t.Error("zero Snapshot should be empty")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
	if _, ok := s.Track(0); ok {
		t.Error("Track(0) on empty snapshot should fail")
	}
	if s.Next(0) != -1 || s.Previous(0) != -1 {
		t.Error("navigation on empty snapshot should return -1")
	}
}

func TestSnapshot_IndexOf(t *testing.T) {
	s := abc()

	tests := []struct {
		id   string
		want int
	}{
		{"a", 0},
		{"c", 2},
		{"missing", -1},
		{"", -1},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := s.IndexOf(tt.id); got != tt.want {
				t.Errorf("IndexOf(%q) = %d, want %d", tt.id, got, tt.want)
			}
		})
	}
}

func TestSnapshot_IndexOf_FirstDuplicateWins(t *testing.T) {
	s := NewSnapshot(Track{ID: "x"}, Track{ID: "y"}, Track{ID: "x"})

	if got := s.IndexOf("x"); got != 0 {
		t.Errorf("IndexOf(x) = %d, want 0", got)
	}
}

func TestSnapshot_NextWraps(t *testing.T) {
	s := abc()

	tests := []struct{ from, want int }{
		{0, 1},
		{1, 2},
		{2, 0},
		{-1, -1},
		{3, -1},
	}
	for _, tt := range tests {
		if got := s.Next(tt.from); got != tt.want {
			t.Errorf("Next(%d) = %d, want %d", tt.from, got, tt.want)
		}
	}
}

func TestSnapshot_PreviousWraps(t *testing.T) {
	s := abc()

	tests := []struct{ from, want int }{
		{2, 1},
		{1, 0},
		{0, 2},
		{-1, -1},
		{3, -1},
	}
	for _, tt := range tests {
		if got := s.Previous(tt.from); got != tt.want {
			t.Errorf("Previous(%d) = %d, want %d", tt.from, got, tt.want)
		}
	}
}

func TestSnapshot_WraparoundLaw(t *testing.T) {
	for n := 1; n <= 7; n++ {
		tracks := make([]Track, n)
		s := NewSnapshot(tracks...)
		for start := range n {
			i := start
			for range n {
				i = s.Next(i)
			}
			if i != start {
				t.Errorf("n=%d: %d Next calls from %d ended at %d", n, n, start, i)
			}

			i = start
			for range n {
				i = s.Previous(i)
			}
			if i != start {
				t.Errorf("n=%d: %d Previous calls from %d ended at %d", n, n, start, i)
			}
		}
	}
}

type fixedRand []int

func (f *fixedRand) IntN(n int) int {
	v := (*f)[0] % n
	*f = (*f)[1:]
	return v
}

func TestSnapshot_RandomSkipsCurrent(t *testing.T) {
	s := abc()

	tests := []struct {
		name    string
		current int
		draw    int
		want    int
	}{
		{"below current", 2, 0, 0},
		{"equal to current skips", 1, 1, 2},
		{"above current", 0, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := fixedRand{tt.draw}
			if got := s.Random(tt.current, &r); got != tt.want {
				t.Errorf("Random(%d) = %d, want %d", tt.current, got, tt.want)
			}
		})
	}
}

func TestSnapshot_RandomSingleTrack(t *testing.T) {
	s := NewSnapshot(Track{ID: "only"})
	r := fixedRand{}

	if got := s.Random(0, &r); got != 0 {
		t.Errorf("Random(0) = %d, want 0", got)
	}
}
