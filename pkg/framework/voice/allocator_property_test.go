package voice

import (
	"testing"

	"github.com/justyntemme/voicecore/pkg/event"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// decode turns a generated integer into an identity and a start/end class.
func decode(op int) (event.ID, event.Class) {
	class := event.ClassStart
	if op%2 == 1 {
		class = event.ClassEnd
	}
	return event.ID(op/2 + 1), class
}

func run(voices int, opts Options, ops []int) ([]Decision, *Allocator) {
	a, _ := NewAllocator(voices, opts)
	out := make([]Decision, 0, len(ops))
	for i, op := range ops {
		id, class := decode(op)
		out = append(out, a.Handle(id, class, int64(i)))
	}
	return out, a
}

func tableIsConsistent(a *Allocator) bool {
	seen := map[event.ID]bool{}
	assigned := 0
	for i := 0; i < a.Voices(); i++ {
		s := a.Slot(i)
		if s.State != Assigned {
			continue
		}
		if s.ID == event.NoID || seen[s.ID] {
			return false
		}
		seen[s.ID] = true
		assigned++
	}
	return assigned == a.Active()
}

func TestPropertyAllocator(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("an identity never holds two voices", prop.ForAll(
		func(voices int, ops []int, steal bool) bool {
			opts := Options{Stealing: StealNone}
			if steal {
				opts.Stealing = StealOldest
			}
			a, _ := NewAllocator(voices, opts)
			for i, op := range ops {
				id, class := decode(op)
				a.Handle(id, class, int64(i))
				if !tableIsConsistent(a) {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 4),
		gen.SliceOf(gen.IntRange(0, 15)),
		gen.Bool(),
	))

	properties.Property("decisions are deterministic", prop.ForAll(
		func(voices int, ops []int) bool {
			first, _ := run(voices, Options{}, ops)
			second, _ := run(voices, Options{}, ops)
			for i := range first {
				if first[i] != second[i] {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 4),
		gen.SliceOf(gen.IntRange(0, 15)),
	))

	properties.Property("steals always take the oldest assignment", prop.ForAll(
		func(voices int, ops []int) bool {
			a, _ := NewAllocator(voices, Options{Stealing: StealOldest})
			for i, op := range ops {
				id, class := decode(op)

				_, playing := a.Lookup(id)
				full := a.Active() == a.Voices()
				oldest := 0
				for v := 1; v < a.Voices(); v++ {
					if a.Slot(v).Started < a.Slot(oldest).Started {
						oldest = v
					}
				}

				d := a.Handle(id, class, int64(i))
				if class != event.ClassStart || playing || !full {
					continue
				}
				if d.Kind != DecisionSteal || d.Voice.Slot != oldest {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 4),
		gen.SliceOf(gen.IntRange(0, 15)),
	))

	properties.Property("rejects leave the table untouched", prop.ForAll(
		func(voices int, ops []int) bool {
			a, _ := NewAllocator(voices, Options{Stealing: StealNone})
			for i, op := range ops {
				id, class := decode(op)
				before := make([]Slot, a.Voices())
				for v := range before {
					before[v] = a.Slot(v)
				}
				d := a.Handle(id, class, int64(i))
				if d.Kind != DecisionReject && d.Kind != DecisionDanglingRelease {
					continue
				}
				for v := range before {
					if a.Slot(v) != before[v] {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(1, 4),
		gen.SliceOf(gen.IntRange(0, 15)),
	))

	properties.TestingRun(t)
}
