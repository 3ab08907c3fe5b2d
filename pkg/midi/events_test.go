package midi

import (
	"errors"
	"testing"
)

func TestNoteOnEvent(t *testing.T) {
	event := NoteOn(0, 60, 64)

	if event.Type() != EventTypeNoteOn {
		t.Errorf("Expected type %v, got %v", EventTypeNoteOn, event.Type())
	}
	if event.Channel() != 0 {
		t.Errorf("Expected channel 0, got %d", event.Channel())
	}
	if event.Data1() != 60 || event.Data2() != 64 {
		t.Errorf("Expected note 60 vel 64, got %d %d", event.Data1(), event.Data2())
	}
	if event.Len() != 3 {
		t.Errorf("Expected 3 bytes, got %d", event.Len())
	}
}

func TestNoteOffEvent(t *testing.T) {
	event := NoteOff(1, 72)

	if event.Type() != EventTypeNoteOff {
		t.Errorf("Expected type %v, got %v", EventTypeNoteOff, event.Type())
	}
	if event.Channel() != 1 {
		t.Errorf("Expected channel 1, got %d", event.Channel())
	}
}

func TestControlChangeEvent(t *testing.T) {
	event := ControlChange(2, CCSustain, 127)

	if event.Type() != EventTypeControlChange {
		t.Errorf("Expected type %v, got %v", EventTypeControlChange, event.Type())
	}
	if event.Data1() != CCSustain {
		t.Errorf("Expected controller %d, got %d", CCSustain, event.Data1())
	}
}

func TestConstructorTypes(t *testing.T) {
	tests := []struct {
		event    RawEvent
		expected EventType
		length   int
	}{
		{ProgramChange(0, 5), EventTypeProgramChange, 2},
		{PitchBend(0, 1000), EventTypePitchBend, 3},
		{ChannelPressure(3, 90), EventTypeChannelPressure, 2},
		{PolyPressure(3, 60, 90), EventTypePolyPressure, 3},
		{NoteOffVelocity(0, 60, 40), EventTypeNoteOff, 3},
	}

	for _, tt := range tests {
		if tt.event.Type() != tt.expected {
			t.Errorf("Expected type %v, got %v", tt.expected, tt.event.Type())
		}
		if tt.event.Len() != tt.length {
			t.Errorf("%v: expected %d bytes, got %d", tt.expected, tt.length, tt.event.Len())
		}
	}
}

func TestNewRawEvent(t *testing.T) {
	tests := []struct {
		name     string
		bytes    []byte
		valid    bool
		expected EventType
	}{
		{"note on", []byte{0x90, 60, 100}, true, EventTypeNoteOn},
		{"program change", []byte{0xC1, 7}, true, EventTypeProgramChange},
		{"clock", []byte{0xF8}, true, EventTypeClock},
		{"start", []byte{0xFA}, true, EventTypeStart},
		{"song position", []byte{0xF2, 0, 1}, true, EventTypeSystemCommon},
		{"empty", nil, false, EventTypeUnknown},
		{"too long", []byte{0x90, 60, 100, 1}, false, EventTypeUnknown},
		{"running status", []byte{60, 100}, false, EventTypeUnknown},
		{"truncated", []byte{0x90, 60}, false, EventTypeUnknown},
		{"sysex", []byte{0xF0, 0x7E, 0xF7}, false, EventTypeUnknown},
		{"bad data byte", []byte{0x90, 0x80, 1}, false, EventTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := NewRawEvent(tt.bytes)
			if tt.valid {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if ev.Type() != tt.expected {
					t.Errorf("Expected type %v, got %v", tt.expected, ev.Type())
				}
				if string(ev.Bytes()) != string(tt.bytes) {
					t.Errorf("Expected bytes %v, got %v", tt.bytes, ev.Bytes())
				}
				return
			}
			if !errors.Is(err, ErrInvalidMessage) {
				t.Errorf("Expected ErrInvalidMessage, got %v", err)
			}
		})
	}
}

func TestRawEventMessage(t *testing.T) {
	ev := NoteOn(0, 60, 100)
	msg := ev.Message()

	var ch, key, vel uint8
	if !msg.GetNoteOn(&ch, &key, &vel) {
		t.Fatal("Expected the gomidi message to decode as note on")
	}
	if key != 60 || vel != 100 {
		t.Errorf("Expected key 60 vel 100, got %d %d", key, vel)
	}
	if ev.String() == "" {
		t.Error("Expected a non-empty string")
	}
}

func TestNoteNumberToName(t *testing.T) {
	tests := []struct {
		note     uint8
		expected string
	}{
		{60, "C4"},
		{69, "A4"},
		{0, "C-1"},
		{127, "G9"},
	}

	for _, tt := range tests {
		name := NoteNumberToName(tt.note)
		if name != tt.expected {
			t.Errorf("Note %d: expected %s, got %s", tt.note, tt.expected, name)
		}
	}
}
