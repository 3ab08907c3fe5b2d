// Package event provides the timing wrappers, the collision-aware event queue
// and the classification contract shared by the voice engine.
package event

import "fmt"

// NoIndex marks an Indexed event that is not bound to any voice or channel.
const NoIndex = -1

// Timed bundles an event with its frame offset inside the current block.
type Timed[T any] struct {
	Time  int
	Event T
}

// NewTimed creates a timed event.
func NewTimed[T any](time int, ev T) Timed[T] {
	return Timed[T]{Time: time, Event: ev}
}

func (t Timed[T]) String() string {
	return fmt.Sprintf("Timed{t:%d, %v}", t.Time, t.Event)
}

// Indexed bundles an event with an index, usually a voice or an input port.
type Indexed[T any] struct {
	Index int
	Event T
}

// NewIndexed creates an indexed event.
func NewIndexed[T any](index int, ev T) Indexed[T] {
	return Indexed[T]{Index: index, Event: ev}
}

// HasIndex reports whether the event is bound to an index.
func (i Indexed[T]) HasIndex() bool {
	return i.Index != NoIndex
}

func (i Indexed[T]) String() string {
	return fmt.Sprintf("Indexed{i:%d, %v}", i.Index, i.Event)
}

// Delta bundles an event with the number of frames since the previous event.
type Delta[T any] struct {
	Delta int
	Event T
}

// ToDelta appends the delta form of src to dst. src must be sorted by time;
// the first delta is relative to frame zero.
func ToDelta[T any](dst []Delta[T], src []Timed[T]) []Delta[T] {
	prev := 0
	for _, ev := range src {
		dst = append(dst, Delta[T]{Delta: ev.Time - prev, Event: ev.Event})
		prev = ev.Time
	}
	return dst
}

// FromDelta appends the absolute-time form of src to dst, starting at frame zero.
func FromDelta[T any](dst []Timed[T], src []Delta[T]) []Timed[T] {
	now := 0
	for _, ev := range src {
		now += ev.Delta
		dst = append(dst, Timed[T]{Time: now, Event: ev.Event})
	}
	return dst
}
