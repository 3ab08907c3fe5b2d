package event

import (
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// expectedOrder returns the insertion indices that should come out of a queue
// fed with times under policy.
func expectedOrder(times []int, policy CollisionPolicy) []int {
	byTime := map[int][]int{}
	var keys []int
	for i, tm := range times {
		if _, ok := byTime[tm]; !ok {
			keys = append(keys, tm)
		}
		byTime[tm] = append(byTime[tm], i)
	}
	sort.Ints(keys)

	var out []int
	for _, tm := range keys {
		idx := byTime[tm]
		switch policy {
		case InsertNewAfterOld:
			out = append(out, idx...)
		case InsertNewBeforeOld:
			for j := len(idx) - 1; j >= 0; j-- {
				out = append(out, idx[j])
			}
		case IgnoreNew:
			out = append(out, idx[0])
		case RemoveOld:
			out = append(out, idx[len(idx)-1])
		}
	}
	return out
}

func TestPropertyDrainOrder(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("drain is non-decreasing and ties follow the policy", prop.ForAll(
		func(times []int, p int) bool {
			policy := CollisionPolicy(p)
			q := NewEventQueue[int](len(times), policy)
			for i, tm := range times {
				if _, err := q.Insert(NewTimed(tm, i)); err != nil {
					return false
				}
			}

			want := expectedOrder(times, policy)
			prev := -1
			n := 0
			for ev := range q.DrainUntil(1 << 30).All() {
				if ev.Time < prev {
					return false
				}
				if n >= len(want) || ev.Event != want[n] {
					return false
				}
				prev = ev.Time
				n++
			}
			return n == len(want) && q.Len() == 0
		},
		gen.SliceOf(gen.IntRange(0, 15)),
		gen.IntRange(0, 3),
	))

	properties.Property("drain stops at the limit", prop.ForAll(
		func(times []int, limit int) bool {
			q := NewEventQueue[int](len(times), InsertNewAfterOld)
			below := 0
			for i, tm := range times {
				q.Insert(NewTimed(tm, i))
				if tm < limit {
					below++
				}
			}
			n := 0
			for ev := range q.DrainUntil(limit).All() {
				if ev.Time >= limit {
					return false
				}
				n++
			}
			return n == below && q.Len() == len(times)-below
		},
		gen.SliceOf(gen.IntRange(0, 63)),
		gen.IntRange(0, 64),
	))

	properties.Property("clear always empties the queue", prop.ForAll(
		func(times []int) bool {
			q := NewEventQueue[int](4, InsertNewBeforeOld)
			for i, tm := range times {
				q.Insert(NewTimed(tm, i))
			}
			q.Clear()
			_, ok := q.DrainUntil(1 << 30).Next()
			return !ok && q.Len() == 0
		},
		gen.SliceOf(gen.IntRange(0, 255)),
	))

	properties.TestingRun(t)
}
