// Package midi provides the fixed-size raw MIDI event used as the engine's
// payload and the canonical note classifier.
package midi

import (
	"errors"
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// ErrInvalidMessage is returned when raw bytes do not form a complete,
// well-formed short MIDI message.
var ErrInvalidMessage = errors.New("invalid midi message")

type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeNoteOff
	EventTypeNoteOn
	EventTypePolyPressure
	EventTypeControlChange
	EventTypeProgramChange
	EventTypeChannelPressure
	EventTypePitchBend
	EventTypeSystemCommon
	EventTypeClock
	EventTypeStart
	EventTypeContinue
	EventTypeStop
	EventTypeActiveSensing
	EventTypeReset
)

func (t EventType) String() string {
	switch t {
	case EventTypeNoteOff:
		return "NoteOff"
	case EventTypeNoteOn:
		return "NoteOn"
	case EventTypePolyPressure:
		return "PolyPressure"
	case EventTypeControlChange:
		return "CC"
	case EventTypeProgramChange:
		return "ProgramChange"
	case EventTypeChannelPressure:
		return "ChannelPressure"
	case EventTypePitchBend:
		return "PitchBend"
	case EventTypeSystemCommon:
		return "SystemCommon"
	case EventTypeClock:
		return "Clock"
	case EventTypeStart:
		return "Start"
	case EventTypeContinue:
		return "Continue"
	case EventTypeStop:
		return "Stop"
	case EventTypeActiveSensing:
		return "ActiveSensing"
	case EventTypeReset:
		return "Reset"
	default:
		return "Unknown"
	}
}

const (
	CCModWheel       uint8 = 1
	CCBreath         uint8 = 2
	CCFoot           uint8 = 4
	CCPortamentoTime uint8 = 5
	CCVolume         uint8 = 7
	CCBalance        uint8 = 8
	CCPan            uint8 = 10
	CCExpression     uint8 = 11
	CCSustain        uint8 = 64
	CCPortamento     uint8 = 65
	CCSostenuto      uint8 = 66
	CCSoft           uint8 = 67
	CCLegato         uint8 = 68
	CCHold2          uint8 = 69
	CCAllSoundOff    uint8 = 120
	CCResetAll       uint8 = 121
	CCLocalControl   uint8 = 122
	CCAllNotesOff    uint8 = 123
)

// RawEvent is a short (one to three byte) MIDI message stored inline, so it
// can be queued and copied on the audio thread without allocating.
// System exclusive messages are not representable.
type RawEvent struct {
	data [3]byte
	n    uint8
}

// NewRawEvent validates b and copies it into a RawEvent.
func NewRawEvent(b []byte) (RawEvent, error) {
	var e RawEvent
	if len(b) == 0 || len(b) > 3 {
		return e, fmt.Errorf("%w: length %d", ErrInvalidMessage, len(b))
	}
	status := b[0]
	want := messageLength(status)
	if want == 0 {
		return e, fmt.Errorf("%w: status byte 0x%02X", ErrInvalidMessage, status)
	}
	if len(b) != want {
		return e, fmt.Errorf("%w: status 0x%02X needs %d bytes, got %d", ErrInvalidMessage, status, want, len(b))
	}
	for _, d := range b[1:] {
		if d&0x80 != 0 {
			return e, fmt.Errorf("%w: data byte 0x%02X", ErrInvalidMessage, d)
		}
	}
	copy(e.data[:], b)
	e.n = uint8(len(b))
	return e, nil
}

// messageLength returns the full length of a message starting with status,
// or zero when status cannot start a short message.
func messageLength(status byte) int {
	switch {
	case status < 0x80:
		return 0
	case status < 0xC0, status >= 0xE0 && status < 0xF0:
		return 3
	case status < 0xE0:
		return 2
	}
	switch status {
	case 0xF1, 0xF3:
		return 2
	case 0xF2:
		return 3
	case 0xF6, 0xF8, 0xFA, 0xFB, 0xFC, 0xFE, 0xFF:
		return 1
	default:
		return 0
	}
}

func fromMessage(m gomidi.Message) RawEvent {
	var e RawEvent
	e.n = uint8(copy(e.data[:], m))
	return e
}

func NoteOn(channel, key, velocity uint8) RawEvent {
	return fromMessage(gomidi.NoteOn(channel, key, velocity))
}

func NoteOff(channel, key uint8) RawEvent {
	return fromMessage(gomidi.NoteOff(channel, key))
}

func NoteOffVelocity(channel, key, velocity uint8) RawEvent {
	return fromMessage(gomidi.NoteOffVelocity(channel, key, velocity))
}

func ControlChange(channel, controller, value uint8) RawEvent {
	return fromMessage(gomidi.ControlChange(channel, controller, value))
}

func ProgramChange(channel, program uint8) RawEvent {
	return fromMessage(gomidi.ProgramChange(channel, program))
}

// PitchBend takes a value from -8192 to 8191, 0 is center.
func PitchBend(channel uint8, value int16) RawEvent {
	return fromMessage(gomidi.Pitchbend(channel, value))
}

func ChannelPressure(channel, pressure uint8) RawEvent {
	return fromMessage(gomidi.AfterTouch(channel, pressure))
}

func PolyPressure(channel, key, pressure uint8) RawEvent {
	return fromMessage(gomidi.PolyAfterTouch(channel, key, pressure))
}

// Len returns the number of bytes in the message.
func (e RawEvent) Len() int {
	return int(e.n)
}

// Bytes returns a copy of the message bytes.
func (e RawEvent) Bytes() []byte {
	out := make([]byte, e.n)
	copy(out, e.data[:e.n])
	return out
}

// Message returns the event as a gomidi message. The result aliases e.
func (e *RawEvent) Message() gomidi.Message {
	return gomidi.Message(e.data[:e.n])
}

func (e RawEvent) Status() uint8 {
	return e.data[0]
}

// Channel returns the channel of a channel message, 0 for system messages.
func (e RawEvent) Channel() uint8 {
	if e.data[0] >= 0xF0 {
		return 0
	}
	return e.data[0] & 0x0F
}

func (e RawEvent) Data1() uint8 {
	return e.data[1]
}

func (e RawEvent) Data2() uint8 {
	return e.data[2]
}

func (e RawEvent) Type() EventType {
	if e.n == 0 {
		return EventTypeUnknown
	}
	status := e.data[0]
	if status < 0xF0 {
		switch status & 0xF0 {
		case 0x80:
			return EventTypeNoteOff
		case 0x90:
			return EventTypeNoteOn
		case 0xA0:
			return EventTypePolyPressure
		case 0xB0:
			return EventTypeControlChange
		case 0xC0:
			return EventTypeProgramChange
		case 0xD0:
			return EventTypeChannelPressure
		case 0xE0:
			return EventTypePitchBend
		}
	}
	switch status {
	case 0xF8:
		return EventTypeClock
	case 0xFA:
		return EventTypeStart
	case 0xFB:
		return EventTypeContinue
	case 0xFC:
		return EventTypeStop
	case 0xFE:
		return EventTypeActiveSensing
	case 0xFF:
		return EventTypeReset
	case 0xF1, 0xF2, 0xF3, 0xF6:
		return EventTypeSystemCommon
	}
	return EventTypeUnknown
}

func (e RawEvent) String() string {
	if e.n == 0 {
		return "RawEvent{}"
	}
	return e.Message().String()
}

func NoteNumberToName(note uint8) string {
	noteNames := []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	octave := int(note/12) - 1
	noteName := noteNames[note%12]
	return fmt.Sprintf("%s%d", noteName, octave)
}
