// Package process turns the raw events of one audio block into an ordered,
// voice-tagged event stream for the synthesis stage.
package process

import (
	"fmt"

	"github.com/justyntemme/voicecore/pkg/event"
	"github.com/justyntemme/voicecore/pkg/framework/voice"
)

// Record is one dispatched event: the payload at its frame offset, tagged
// with the target voice (event.NoIndex when there is none) and the decision
// that produced it.
type Record[E any] struct {
	event.Indexed[event.Timed[E]]
	Kind       voice.DecisionKind
	Generation uint32
	ID         event.ID
	// Displaced is the identity that lost the voice, for voice.DecisionSteal.
	Displaced event.ID
}

// Voice returns the target voice index, or event.NoIndex.
func (r Record[E]) Voice() int {
	return r.Index
}

// Offset returns the frame offset inside the block.
func (r Record[E]) Offset() int {
	return r.Event.Time
}

// Payload returns the raw event.
func (r Record[E]) Payload() E {
	return r.Event.Event
}

// Ref returns the voice handle the record targets.
func (r Record[E]) Ref() voice.Ref {
	if r.Index == event.NoIndex {
		return voice.NoRef
	}
	return voice.Ref{Slot: r.Index, Generation: r.Generation}
}

func (r Record[E]) String() string {
	return fmt.Sprintf("Record{voice:%d, gen:%d, offset:%d, %s, id:%v, %v}",
		r.Index, r.Generation, r.Event.Time, r.Kind, r.ID, r.Event.Event)
}

// BlockStats counts decisions made while dispatching.
type BlockStats struct {
	Processed     int
	Assigned      int
	Retriggered   int
	Stolen        int
	Rejected      int
	Released      int
	Dangling      int
	PassedThrough int
	// Ignored and Replaced count events discarded by the collision policy.
	Ignored  int
	Replaced int
}

func (s *BlockStats) count(kind voice.DecisionKind) {
	s.Processed++
	switch kind {
	case voice.DecisionAssign:
		s.Assigned++
	case voice.DecisionRetrigger:
		s.Retriggered++
	case voice.DecisionSteal:
		s.Stolen++
	case voice.DecisionReject:
		s.Rejected++
	case voice.DecisionRelease:
		s.Released++
	case voice.DecisionDanglingRelease:
		s.Dangling++
	default:
		s.PassedThrough++
	}
}

func (s *BlockStats) add(o BlockStats) {
	s.Processed += o.Processed
	s.Assigned += o.Assigned
	s.Retriggered += o.Retriggered
	s.Stolen += o.Stolen
	s.Rejected += o.Rejected
	s.Released += o.Released
	s.Dangling += o.Dangling
	s.PassedThrough += o.PassedThrough
	s.Ignored += o.Ignored
	s.Replaced += o.Replaced
}

// Dropped returns the number of input events that produced no voice work:
// rejected starts plus collision discards.
func (s BlockStats) Dropped() int {
	return s.Rejected + s.Ignored + s.Replaced
}

// Block is the output of one DispatchBlock call. The dispatcher reuses it, so
// it is only valid until the next call.
type Block[E any] struct {
	// FrameStart is the absolute frame of offset 0.
	FrameStart int64
	Length     int
	Records    []Record[E]
	Stats      BlockStats
}

func (b *Block[E]) reset(frameStart int64, length int) {
	b.FrameStart = frameStart
	b.Length = length
	clear(b.Records)
	b.Records = b.Records[:0]
	b.Stats = BlockStats{}
}

// ForVoice calls fn for each record targeting voice v, in order.
func (b *Block[E]) ForVoice(v int, fn func(Record[E])) {
	for i := range b.Records {
		if b.Records[i].Index == v {
			fn(b.Records[i])
		}
	}
}

// Global calls fn for each record that targets no voice: pass-through events
// plus rejected starts and dangling releases.
func (b *Block[E]) Global(fn func(Record[E])) {
	b.ForVoice(event.NoIndex, fn)
}
