package player

import (
	"sync"
	"time"
)

// EventKind identifies what an Event reports.
type EventKind int

const (
	EventStateChanged EventKind = iota
	EventPlayingChanged
	EventFailed
)

// String returns the kind name.
func (k EventKind) String() string {
	switch k {
	case EventStateChanged:
		return "StateChanged"
	case EventPlayingChanged:
		return "PlayingChanged"
	case EventFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Event is emitted by an engine.
type Event struct {
	Generation uint64
	Kind       EventKind
	Status     Status        // EventStateChanged
	Duration   time.Duration // EventStateChanged with Status Ready
	Playing    bool          // EventPlayingChanged
	Err        error         // EventFailed
}

// StateEvent builds a StateChanged event.
func StateEvent(gen uint64, s Status, d time.Duration) Event {
	return Event{Generation: gen, Kind: EventStateChanged, Status: s, Duration: d}
}

// PlayingEvent builds a PlayingChanged event.
func PlayingEvent(gen uint64, playing bool) Event {
	return Event{Generation: gen, Kind: EventPlayingChanged, Playing: playing}
}

// FailedEvent builds a Failed event.
func FailedEvent(gen uint64, err error) Event {
	return Event{Generation: gen, Kind: EventFailed, Err: err}
}

// eventQueue is an unbounded FIFO in front of the Events channel.
// push never blocks, so engine commands and the audio callback
// cannot stall on a slow consumer.
type eventQueue struct {
	mu      sync.Mutex
	pending []Event
	closed  bool

	notify chan struct{}
	out    chan Event
	done   chan struct{}
}

func newEventQueue() *eventQueue {
	q := &eventQueue{
		notify: make(chan struct{}, 1),
		out:    make(chan Event),
		done:   make(chan struct{}),
	}
	go q.pump()
	return q
}

// push appends an event. Events pushed after close are dropped.
func (q *eventQueue) push(e Event) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.pending = append(q.pending, e)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *eventQueue) events() <-chan Event {
	return q.out
}

// close stops delivery and closes the output channel.
func (q *eventQueue) close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()
	close(q.done)
}

func (q *eventQueue) pump() {
	defer close(q.out)
	for {
		select {
		case <-q.done:
			return
		case <-q.notify:
		}

		q.mu.Lock()
		batch := q.pending
		q.pending = nil
		q.mu.Unlock()

		for _, e := range batch {
			select {
			case q.out <- e:
			case <-q.done:
				return
			}
		}
	}
}
