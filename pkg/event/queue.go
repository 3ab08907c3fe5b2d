package event

import (
	"errors"
	"fmt"
	"iter"
	"sort"
)

// ErrInvalidTimestamp is returned when an event's time falls outside the
// current block.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// CollisionPolicy decides what happens when an event is queued at exactly the
// same time as an event that is already queued.
type CollisionPolicy uint8

const (
	// InsertNewAfterOld queues the new event after the old one(s).
	InsertNewAfterOld CollisionPolicy = iota
	// InsertNewBeforeOld queues the new event before the old one(s).
	InsertNewBeforeOld
	// IgnoreNew keeps the old event and discards the new one.
	IgnoreNew
	// RemoveOld discards the old event and keeps the new one in its place.
	RemoveOld
)

// String returns the configuration name of the policy.
func (p CollisionPolicy) String() string {
	switch p {
	case InsertNewAfterOld:
		return "insert-new-after-old"
	case InsertNewBeforeOld:
		return "insert-new-before-old"
	case IgnoreNew:
		return "ignore-new"
	case RemoveOld:
		return "remove-old"
	default:
		return fmt.Sprintf("CollisionPolicy(%d)", uint8(p))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p CollisionPolicy) MarshalText() ([]byte, error) {
	if p > RemoveOld {
		return nil, fmt.Errorf("unknown collision policy %d", uint8(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *CollisionPolicy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "insert-new-after-old", "after":
		*p = InsertNewAfterOld
	case "insert-new-before-old", "before":
		*p = InsertNewBeforeOld
	case "ignore-new":
		*p = IgnoreNew
	case "remove-old":
		*p = RemoveOld
	default:
		return fmt.Errorf("unknown collision policy %q", text)
	}
	return nil
}

// InsertOutcome reports what Insert did with the event.
type InsertOutcome uint8

const (
	// Inserted means the event was queued and nothing was discarded.
	Inserted InsertOutcome = iota
	// Replaced means the event was queued and a same-time event was discarded.
	Replaced
	// Ignored means the event was discarded because of a same-time event.
	Ignored
)

func (o InsertOutcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Replaced:
		return "replaced"
	case Ignored:
		return "ignored"
	default:
		return "unknown"
	}
}

// EventQueue keeps timed events sorted by time. It is meant to be owned by a
// single audio thread: there is no locking.
//
// Events live in events[head:]; draining advances head instead of shifting so
// that consuming a block is linear.
type EventQueue[T any] struct {
	events  []Timed[T]
	head    int
	policy  CollisionPolicy
	limit   int
	version uint64
	grows   int
}

// NewEventQueue creates a queue with room for capacity events before it has to
// grow.
func NewEventQueue[T any](capacity int, policy CollisionPolicy) *EventQueue[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &EventQueue[T]{
		events: make([]Timed[T], 0, capacity),
		policy: policy,
	}
}

// Policy returns the collision policy the queue was created with.
func (q *EventQueue[T]) Policy() CollisionPolicy {
	return q.policy
}

// Enforce sets the block length that inserted times are checked against.
// A limit of zero disables the upper bound.
func (q *EventQueue[T]) Enforce(limit int) {
	if limit < 0 {
		limit = 0
	}
	q.limit = limit
}

// Limit returns the enforced block length, or zero if none.
func (q *EventQueue[T]) Limit() int {
	return q.limit
}

// Insert queues ev in time order, resolving collisions with the queue's
// policy. An out-of-range time is rejected with ErrInvalidTimestamp and leaves
// the queue untouched.
func (q *EventQueue[T]) Insert(ev Timed[T]) (InsertOutcome, error) {
	if ev.Time < 0 || (q.limit > 0 && ev.Time >= q.limit) {
		return Ignored, fmt.Errorf("%w: time %d outside block of %d frames", ErrInvalidTimestamp, ev.Time, q.limit)
	}

	q.compact()
	q.version++

	n := len(q.events)
	lo := sort.Search(n, func(i int) bool {
		return q.events[i].Time >= ev.Time
	})
	hi := lo
	for hi < n && q.events[hi].Time == ev.Time {
		hi++
	}

	pos := lo
	if lo < hi {
		switch q.policy {
		case IgnoreNew:
			return Ignored, nil
		case RemoveOld:
			q.events[lo] = ev
			if hi-lo > 1 {
				q.remove(lo+1, hi)
			}
			return Replaced, nil
		case InsertNewBeforeOld:
			pos = lo
		default:
			pos = hi
		}
	}

	if n == cap(q.events) {
		q.grows++
	}
	var zero Timed[T]
	q.events = append(q.events, zero)
	copy(q.events[pos+1:], q.events[pos:n])
	q.events[pos] = ev
	return Inserted, nil
}

// PeekNext returns the earliest queued event without removing it.
func (q *EventQueue[T]) PeekNext() (Timed[T], bool) {
	if q.head >= len(q.events) {
		var zero Timed[T]
		return zero, false
	}
	return q.events[q.head], true
}

// DrainUntil returns a one-shot sequence that removes and yields every event
// with a time strictly before limit, in queue order. The drain stops yielding
// as soon as the queue is modified by anything other than the drain itself.
func (q *EventQueue[T]) DrainUntil(limit int) Drain[T] {
	return Drain[T]{q: q, limit: limit, version: q.version}
}

// Clear removes all events.
func (q *EventQueue[T]) Clear() {
	clear(q.events)
	q.events = q.events[:0]
	q.head = 0
	q.version++
}

// Len returns the number of queued events.
func (q *EventQueue[T]) Len() int {
	return len(q.events) - q.head
}

// Cap returns the number of events the queue holds without growing.
func (q *EventQueue[T]) Cap() int {
	return cap(q.events)
}

// Grows returns how many times an insert had to grow the backing storage.
// A non-zero value means the queue was sized too small.
func (q *EventQueue[T]) Grows() int {
	return q.grows
}

// Events returns the queued events in order. The slice aliases the queue and
// is only valid until the next mutation.
func (q *EventQueue[T]) Events() []Timed[T] {
	return q.events[q.head:]
}

// LastBefore returns the latest queued event with a time strictly before t.
func (q *EventQueue[T]) LastBefore(t int) (Timed[T], bool) {
	live := q.events[q.head:]
	idx := sort.Search(len(live), func(i int) bool {
		return live[i].Time >= t
	})
	if idx == 0 {
		var zero Timed[T]
		return zero, false
	}
	return live[idx-1], true
}

// ForgetBefore drops every event with a time strictly before t and returns
// how many were dropped.
func (q *EventQueue[T]) ForgetBefore(t int) int {
	q.compact()
	q.version++
	idx := sort.Search(len(q.events), func(i int) bool {
		return q.events[i].Time >= t
	})
	if idx > 0 {
		q.remove(0, idx)
	}
	return idx
}

// ShiftTime moves every queued event frames earlier, typically after a block
// of that length has been consumed. Events that would end up before frame zero
// are dropped; the number dropped is returned.
func (q *EventQueue[T]) ShiftTime(frames int) int {
	if frames <= 0 {
		return 0
	}
	dropped := q.ForgetBefore(frames)
	for i := range q.events {
		q.events[i].Time -= frames
	}
	return dropped
}

// compact moves the live events back to the start of the backing array.
func (q *EventQueue[T]) compact() {
	if q.head == 0 {
		return
	}
	n := copy(q.events, q.events[q.head:])
	clear(q.events[n:])
	q.events = q.events[:n]
	q.head = 0
}

// remove deletes events[from:to] from a compacted queue.
func (q *EventQueue[T]) remove(from, to int) {
	n := len(q.events)
	copy(q.events[from:], q.events[to:])
	clear(q.events[n-(to-from):])
	q.events = q.events[:n-(to-from)]
}

// Drain is the sequence returned by EventQueue.DrainUntil.
type Drain[T any] struct {
	q       *EventQueue[T]
	limit   int
	version uint64
}

// Next removes and returns the next event before the drain limit. It returns
// false once the limit is reached, the queue is empty or the queue has been
// modified since the drain was created.
func (d Drain[T]) Next() (Timed[T], bool) {
	var zero Timed[T]
	q := d.q
	if q == nil || q.version != d.version || q.head >= len(q.events) {
		return zero, false
	}
	ev := q.events[q.head]
	if ev.Time >= d.limit {
		return zero, false
	}
	q.events[q.head] = zero
	q.head++
	if q.head == len(q.events) {
		q.events = q.events[:0]
		q.head = 0
	}
	return ev, true
}

// All returns the drain as a range-over-func sequence.
func (d Drain[T]) All() iter.Seq[Timed[T]] {
	return func(yield func(Timed[T]) bool) {
		for {
			ev, ok := d.Next()
			if !ok || !yield(ev) {
				return
			}
		}
	}
}
