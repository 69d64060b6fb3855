package playlist

// Rand is the subset of math/rand/v2 used for shuffle.
type Rand interface {
	IntN(n int) int
}

// Next returns the index after index, wrapping to 0 past the end.
// Returns -1 if the snapshot is empty or index is out of range.
func (s Snapshot) Next(index int) int {
	if !s.valid(index) {
		return -1
	}
	return (index + 1) % len(s.tracks)
}

// Previous returns the index before index, wrapping to the last track at 0.
// Returns -1 if the snapshot is empty or index is out of range.
func (s Snapshot) Previous(index int) int {
	if !s.valid(index) {
		return -1
	}
	if index > 0 {
		return index - 1
	}
	return len(s.tracks) - 1
}

// Random returns a random index other than index.
// A single-track snapshot returns index itself.
func (s Snapshot) Random(index int, rng Rand) int {
	if !s.valid(index) {
		return -1
	}
	n := len(s.tracks)
	if n == 1 {
		return index
	}
	// Draw from n-1 slots and skip over the current one.
	r := rng.IntN(n - 1)
	if r >= index {
		r++
	}
	return r
}

func (s Snapshot) valid(index int) bool {
	return index >= 0 && index < len(s.tracks)
}
