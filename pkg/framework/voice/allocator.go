package voice

import (
	"errors"
	"fmt"

	"github.com/justyntemme/voicecore/pkg/event"
)

// ErrNoVoices is returned when an allocator is configured without voices.
var ErrNoVoices = errors.New("at least one voice is required")

// StealingMode defines what happens to a start event when every voice is in use
type StealingMode int

const (
	// StealOldest steals the voice whose current note started first
	StealOldest StealingMode = iota
	// StealNone doesn't steal - new notes are rejected when full
	StealNone
)

func (m StealingMode) String() string {
	switch m {
	case StealOldest:
		return "oldest"
	case StealNone:
		return "none"
	default:
		return fmt.Sprintf("StealingMode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m StealingMode) MarshalText() ([]byte, error) {
	if m != StealOldest && m != StealNone {
		return nil, fmt.Errorf("unknown stealing mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *StealingMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "oldest":
		*m = StealOldest
	case "none", "off":
		*m = StealNone
	default:
		return fmt.Errorf("unknown stealing mode %q", text)
	}
	return nil
}

// RetriggerMode defines what a start event does to a voice that is already
// playing the same identity
type RetriggerMode int

const (
	// RetriggerLegato keeps the voice and its generation untouched
	RetriggerLegato RetriggerMode = iota
	// RetriggerForced treats the start as a new note on the same voice:
	// the generation is bumped and the start time refreshed
	RetriggerForced
)

func (m RetriggerMode) String() string {
	switch m {
	case RetriggerLegato:
		return "legato"
	case RetriggerForced:
		return "forced"
	default:
		return fmt.Sprintf("RetriggerMode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m RetriggerMode) MarshalText() ([]byte, error) {
	if m != RetriggerLegato && m != RetriggerForced {
		return nil, fmt.Errorf("unknown retrigger mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *RetriggerMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "legato":
		*m = RetriggerLegato
	case "forced":
		*m = RetriggerForced
	default:
		return fmt.Errorf("unknown retrigger mode %q", text)
	}
	return nil
}

// Options configures an Allocator.
type Options struct {
	Stealing  StealingMode
	Retrigger RetriggerMode
}

// State of a voice slot.
type State uint8

const (
	Free State = iota
	Assigned
)

func (s State) String() string {
	if s == Assigned {
		return "assigned"
	}
	return "free"
}

// Slot is one entry of the voice table.
type Slot struct {
	State      State
	ID         event.ID
	Generation uint32
	// Started is the absolute frame at which the current assignment began.
	Started int64

	seq uint64
}

// Ref identifies one assignment of a voice. It goes stale as soon as the slot
// is released or reassigned.
type Ref struct {
	Slot       int
	Generation uint32
}

// NoRef is carried by decisions that do not target a voice.
var NoRef = Ref{Slot: event.NoIndex}

// Valid reports whether the ref points at a slot.
func (r Ref) Valid() bool {
	return r.Slot >= 0
}

// DecisionKind is the outcome of handling one classified event.
type DecisionKind uint8

const (
	// DecisionPassThrough: identity-independent event, no voice involved.
	DecisionPassThrough DecisionKind = iota
	// DecisionAssign: the identity got a free voice.
	DecisionAssign
	// DecisionRetrigger: the identity was already playing on the voice.
	DecisionRetrigger
	// DecisionSteal: the identity took over the oldest voice.
	DecisionSteal
	// DecisionReject: no voice was free and stealing is disabled.
	DecisionReject
	// DecisionRelease: the identity's voice was freed.
	DecisionRelease
	// DecisionDanglingRelease: end event for an identity that holds no voice.
	DecisionDanglingRelease
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionPassThrough:
		return "pass-through"
	case DecisionAssign:
		return "assign"
	case DecisionRetrigger:
		return "retrigger"
	case DecisionSteal:
		return "steal"
	case DecisionReject:
		return "reject"
	case DecisionRelease:
		return "release"
	case DecisionDanglingRelease:
		return "dangling-release"
	default:
		return "unknown"
	}
}

// Decision is returned by Allocator.Handle.
type Decision struct {
	Kind  DecisionKind
	Voice Ref
	// Displaced is the identity that lost its voice on DecisionSteal.
	Displaced event.ID
}

// Allocator owns a fixed table of voice slots and assigns identities to them.
// It is not safe for concurrent use; the audio thread owns it.
type Allocator struct {
	slots  []Slot
	opts   Options
	seq    uint64
	active int
}

// NewAllocator creates an allocator with the given number of voices, all free
func NewAllocator(voices int, opts Options) (*Allocator, error) {
	if voices <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrNoVoices, voices)
	}
	return &Allocator{
		slots: make([]Slot, voices),
		opts:  opts,
	}, nil
}

// Options returns the allocator configuration.
func (a *Allocator) Options() Options {
	return a.opts
}

// Handle applies one classified event to the voice table. time is an absolute
// frame position and only needs to be non-decreasing across calls.
func (a *Allocator) Handle(id event.ID, class event.Class, time int64) Decision {
	if id == event.NoID {
		class = event.ClassOther
	}
	switch class {
	case event.ClassStart:
		return a.start(id, time)
	case event.ClassEnd:
		return a.end(id)
	default:
		return Decision{Kind: DecisionPassThrough, Voice: NoRef}
	}
}

func (a *Allocator) start(id event.ID, time int64) Decision {
	if i := a.find(id); i >= 0 {
		if a.opts.Retrigger == RetriggerForced {
			s := &a.slots[i]
			s.Generation++
			s.Started = time
			a.seq++
			s.seq = a.seq
		}
		return Decision{Kind: DecisionRetrigger, Voice: a.ref(i)}
	}

	if i := a.firstFree(); i >= 0 {
		a.assign(i, id, time)
		a.active++
		return Decision{Kind: DecisionAssign, Voice: a.ref(i)}
	}

	if a.opts.Stealing == StealNone {
		return Decision{Kind: DecisionReject, Voice: NoRef}
	}

	i := a.oldest()
	displaced := a.slots[i].ID
	a.assign(i, id, time)
	return Decision{Kind: DecisionSteal, Voice: a.ref(i), Displaced: displaced}
}

func (a *Allocator) end(id event.ID) Decision {
	i := a.find(id)
	if i < 0 {
		return Decision{Kind: DecisionDanglingRelease, Voice: NoRef}
	}
	ref := a.ref(i)
	a.free(i)
	return Decision{Kind: DecisionRelease, Voice: ref}
}

func (a *Allocator) assign(i int, id event.ID, time int64) {
	s := &a.slots[i]
	s.State = Assigned
	s.ID = id
	s.Generation++
	s.Started = time
	a.seq++
	s.seq = a.seq
}

func (a *Allocator) free(i int) {
	s := &a.slots[i]
	s.State = Free
	s.ID = event.NoID
	a.active--
}

func (a *Allocator) ref(i int) Ref {
	return Ref{Slot: i, Generation: a.slots[i].Generation}
}

// find returns the slot assigned to id, or -1.
func (a *Allocator) find(id event.ID) int {
	for i := range a.slots {
		if a.slots[i].State == Assigned && a.slots[i].ID == id {
			return i
		}
	}
	return -1
}

// firstFree returns the lowest free slot index, or -1.
func (a *Allocator) firstFree() int {
	for i := range a.slots {
		if a.slots[i].State == Free {
			return i
		}
	}
	return -1
}

// oldest returns the assigned slot whose assignment began first. Equal start
// times are ordered by assignment sequence.
func (a *Allocator) oldest() int {
	best := -1
	for i := range a.slots {
		s := &a.slots[i]
		if s.State != Assigned {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		b := &a.slots[best]
		if s.Started < b.Started || (s.Started == b.Started && s.seq < b.seq) {
			best = i
		}
	}
	return best
}

// Release frees the voice held by ref. It returns false, without touching the
// table, when ref is stale or the slot is already free.
func (a *Allocator) Release(ref Ref) bool {
	if !a.IsCurrent(ref) {
		return false
	}
	a.free(ref.Slot)
	return true
}

// IsCurrent reports whether ref still names the live assignment of its slot.
func (a *Allocator) IsCurrent(ref Ref) bool {
	if ref.Slot < 0 || ref.Slot >= len(a.slots) {
		return false
	}
	s := &a.slots[ref.Slot]
	return s.State == Assigned && s.Generation == ref.Generation
}

// Lookup returns the voice currently assigned to id.
func (a *Allocator) Lookup(id event.ID) (Ref, bool) {
	if id == event.NoID {
		return NoRef, false
	}
	i := a.find(id)
	if i < 0 {
		return NoRef, false
	}
	return a.ref(i), true
}

// Slot returns a copy of slot i.
func (a *Allocator) Slot(i int) Slot {
	return a.slots[i]
}

// Voices returns the number of slots.
func (a *Allocator) Voices() int {
	return len(a.slots)
}

// Active returns the number of assigned slots.
func (a *Allocator) Active() int {
	return a.active
}

// Reset frees every slot. Generations are kept so refs handed out before the
// reset stay stale.
func (a *Allocator) Reset() {
	for i := range a.slots {
		a.slots[i].State = Free
		a.slots[i].ID = event.NoID
	}
	a.active = 0
}
