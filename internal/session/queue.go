package session

import (
	"errors"
	"sync"
)

// ErrClosed is returned when pushing into a closed queue.
var ErrClosed = errors.New("session: queue closed")

// EventKind discriminates transport events arriving from the live session.
type EventKind string

const (
	KindAudio       EventKind = "audio"
	KindText        EventKind = "text"
	KindInterrupted EventKind = "interrupted"
)

// TransportEvent is one part of a conversational turn. Text carries model
// output for the response pipeline; Audio carries a playback chunk;
// Interrupted signals that the user barged in.
type TransportEvent struct {
	Kind  EventKind `json:"kind"`
	Text  string    `json:"text,omitempty"`
	Audio []byte    `json:"audio,omitempty"`
}

// Queue consumes transport events strictly one at a time in arrival order,
// regardless of how callers interleave Push. Text parts are handed to the
// response pipeline, audio parts accumulate as queued playback, and an
// interrupt flushes everything still queued for playback.
type Queue struct {
	mu       sync.Mutex
	pending  []TransportEvent
	playback [][]byte
	draining bool
	closed   bool

	onText      func(string)
	onInterrupt func()
}

// NewQueue creates a queue delivering text parts to onText. onInterrupt
// may be nil.
func NewQueue(onText func(string), onInterrupt func()) *Queue {
	return &Queue{onText: onText, onInterrupt: onInterrupt}
}

// Push enqueues one event and drains the queue unless a drain is already
// running higher up the stack. Reentrant pushes from inside a handler are
// queued behind the event being handled, preserving arrival order.
func (q *Queue) Push(ev TransportEvent) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.pending = append(q.pending, ev)
	if q.draining {
		q.mu.Unlock()
		return nil
	}
	q.draining = true
	q.mu.Unlock()

	q.drain()
	return nil
}

func (q *Queue) drain() {
	for {
		q.mu.Lock()
		if q.closed || len(q.pending) == 0 {
			q.draining = false
			q.mu.Unlock()
			return
		}
		ev := q.pending[0]
		q.pending = q.pending[1:]

		switch ev.Kind {
		case KindAudio:
			q.playback = append(q.playback, ev.Audio)
			q.mu.Unlock()

		case KindInterrupted:
			q.playback = nil
			onInterrupt := q.onInterrupt
			q.mu.Unlock()
			if onInterrupt != nil {
				onInterrupt()
			}

		case KindText:
			onText := q.onText
			q.mu.Unlock()
			if onText != nil {
				onText(ev.Text)
			}

		default:
			q.mu.Unlock()
		}
	}
}

// NextAudio pops the oldest queued playback chunk; ok is false when none
// is queued.
func (q *Queue) NextAudio() (chunk []byte, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.playback) == 0 {
		return nil, false
	}
	chunk = q.playback[0]
	q.playback = q.playback[1:]
	return chunk, true
}

// QueuedPlayback reports how many audio chunks are waiting for playback.
func (q *Queue) QueuedPlayback() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.playback)
}

// Close discards all in-flight state; subsequent pushes fail with
// ErrClosed.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.pending = nil
	q.playback = nil
}
