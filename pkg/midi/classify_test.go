package midi

import (
	"testing"

	"github.com/justyntemme/voicecore/pkg/event"
)

func TestNoteClassifier(t *testing.T) {
	c := NoteClassifier{}

	tests := []struct {
		name  string
		event RawEvent
		id    event.ID
		class event.Class
	}{
		{"note on", NoteOn(0, 60, 100), NoteID(0, 60), event.ClassStart},
		{"note on other channel", NoteOn(9, 36, 1), NoteID(9, 36), event.ClassStart},
		{"note on zero velocity", NoteOn(0, 60, 0), NoteID(0, 60), event.ClassEnd},
		{"note off", NoteOff(0, 60), NoteID(0, 60), event.ClassEnd},
		{"note off with velocity", NoteOffVelocity(2, 61, 64), NoteID(2, 61), event.ClassEnd},
		{"control change", ControlChange(0, CCSustain, 127), event.NoID, event.ClassOther},
		{"pitch bend", PitchBend(0, 100), event.NoID, event.ClassOther},
		{"poly pressure", PolyPressure(0, 60, 20), event.NoID, event.ClassOther},
		{"zero value", RawEvent{}, event.NoID, event.ClassOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, class := c.Classify(tt.event)
			if id != tt.id {
				t.Errorf("Expected id %v, got %v", tt.id, id)
			}
			if class != tt.class {
				t.Errorf("Expected class %v, got %v", tt.class, class)
			}
		})
	}
}

func TestNoteClassifierOmni(t *testing.T) {
	c := NoteClassifier{Omni: true}

	a, _ := c.Classify(NoteOn(3, 60, 100))
	b, _ := c.Classify(NoteOff(7, 60))
	if a != b {
		t.Errorf("Omni classifier should ignore the channel, got %v and %v", a, b)
	}
}

func TestNoteIDDistinct(t *testing.T) {
	seen := map[event.ID]bool{}
	for ch := uint8(0); ch < 16; ch++ {
		for key := uint8(0); key < 128; key++ {
			id := NoteID(ch, key)
			if id == event.NoID {
				t.Fatalf("NoteID(%d, %d) collides with NoID", ch, key)
			}
			if seen[id] {
				t.Fatalf("NoteID(%d, %d) is not unique", ch, key)
			}
			seen[id] = true

			gotCh, gotKey, ok := SplitNoteID(id)
			if !ok || gotCh != ch || gotKey != key {
				t.Fatalf("SplitNoteID(%v) = %d, %d, %v", id, gotCh, gotKey, ok)
			}
		}
	}

	if _, _, ok := SplitNoteID(event.ID(42)); ok {
		t.Error("Expected SplitNoteID to reject foreign identifiers")
	}
}

func TestNoteName(t *testing.T) {
	if got := NoteName(NoteID(0, 60)); got != "ch1:C4" {
		t.Errorf("Expected ch1:C4, got %s", got)
	}
}
