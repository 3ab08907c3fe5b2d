package event

import "fmt"

// ID names a logical "thing that can be on or off", independent of how the
// underlying protocol encodes it.
type ID uint32

// NoID is carried by events that do not belong to any identity.
const NoID ID = 0

func (id ID) String() string {
	if id == NoID {
		return "none"
	}
	return fmt.Sprintf("#%d", uint32(id))
}

// Class tells the voice engine what a classified event does to its identity.
type Class uint8

const (
	// ClassOther is an identity-independent event (controllers, clock, ...).
	ClassOther Class = iota
	// ClassStart begins a new identity.
	ClassStart
	// ClassEnd ends an existing identity.
	ClassEnd
)

// String returns the string representation of the class.
func (c Class) String() string {
	switch c {
	case ClassStart:
		return "start"
	case ClassEnd:
		return "end"
	default:
		return "other"
	}
}

// Classifier maps a raw event to its identity and class. Implementations must
// be pure and total: unknown events classify as (NoID, ClassOther).
type Classifier[E any] interface {
	Classify(ev E) (ID, Class)
}

// ClassifierFunc adapts an ordinary function to the Classifier interface.
type ClassifierFunc[E any] func(ev E) (ID, Class)

// Classify calls f(ev).
func (f ClassifierFunc[E]) Classify(ev E) (ID, Class) {
	return f(ev)
}
