package midi

import (
	"fmt"

	"github.com/justyntemme/voicecore/pkg/event"
	gomidi "gitlab.com/gomidi/midi/v2"
)

const noteIDTag = 1 << 16

// NoteID derives the identity of a key on a channel.
func NoteID(channel, key uint8) event.ID {
	return event.ID(noteIDTag | uint32(channel&0x0F)<<8 | uint32(key&0x7F))
}

// SplitNoteID returns the channel and key a NoteID was built from. ok is false
// for identifiers that were not produced by NoteID.
func SplitNoteID(id event.ID) (channel, key uint8, ok bool) {
	if uint32(id)&^0xFFFF != noteIDTag {
		return 0, 0, false
	}
	return uint8(id>>8) & 0x0F, uint8(id) & 0x7F, true
}

// NoteName formats a NoteID for logs, e.g. "ch1:C4".
func NoteName(id event.ID) string {
	ch, key, ok := SplitNoteID(id)
	if !ok {
		return id.String()
	}
	return fmt.Sprintf("ch%d:%s", ch+1, NoteNumberToName(key))
}

// NoteClassifier is the canonical classifier: note-on with a non-zero
// velocity starts NoteID(channel, key), note-off or note-on with velocity 0
// ends it, and everything else is ClassOther.
//
// With Omni set, every channel maps onto channel 0 so a key is one identity
// regardless of the channel it arrives on.
type NoteClassifier struct {
	Omni bool
}

var _ event.Classifier[RawEvent] = NoteClassifier{}

// Classify implements event.Classifier.
func (c NoteClassifier) Classify(e RawEvent) (event.ID, event.Class) {
	if e.n < 3 {
		return event.NoID, event.ClassOther
	}
	msg := gomidi.Message(e.data[:e.n])
	var ch, key, vel uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		return c.id(ch, key), event.ClassStart
	case msg.GetNoteEnd(&ch, &key):
		return c.id(ch, key), event.ClassEnd
	}
	return event.NoID, event.ClassOther
}

func (c NoteClassifier) id(ch, key uint8) event.ID {
	if c.Omni {
		ch = 0
	}
	return NoteID(ch, key)
}
