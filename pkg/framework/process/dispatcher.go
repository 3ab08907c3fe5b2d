package process

import (
	"errors"
	"fmt"
	"time"

	"github.com/justyntemme/voicecore/pkg/config"
	"github.com/justyntemme/voicecore/pkg/event"
	"github.com/justyntemme/voicecore/pkg/framework/debug"
	"github.com/justyntemme/voicecore/pkg/framework/voice"
)

// ErrBlockLength is returned for a block length of zero or one larger than
// the configured maximum.
var ErrBlockLength = errors.New("invalid block length")

// ProfileSection is the profiler section DispatchBlock records into.
const ProfileSection = "DispatchBlock"

// Dispatcher owns the event queue and the voice table of one audio stream and
// turns each block of raw events into a voice-tagged stream. It must only be
// called from one thread; nothing in it locks.
type Dispatcher[E any] struct {
	cfg        config.Config
	classifier event.Classifier[E]
	queue      *event.EventQueue[E]
	voices     *voice.Allocator
	block      Block[E]
	frame      int64
	totals     BlockStats
	grows      int

	logger   *debug.Logger
	profiler *debug.Profiler
}

// NewDispatcher builds a dispatcher with every buffer sized from cfg. All
// configuration errors surface here, before the first block.
func NewDispatcher[E any](cfg config.Config, classifier event.Classifier[E]) (*Dispatcher[E], error) {
	if classifier == nil {
		return nil, fmt.Errorf("%w: classifier is required", config.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	voices, err := voice.NewAllocator(cfg.Voices, cfg.VoiceOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create voice allocator: %w", err)
	}

	return &Dispatcher[E]{
		cfg:        cfg,
		classifier: classifier,
		queue:      event.NewEventQueue[E](cfg.QueueCapacity, cfg.Collision),
		voices:     voices,
		block: Block[E]{
			Records: make([]Record[E], 0, cfg.QueueCapacity),
		},
		logger: debug.Default(),
	}, nil
}

// SetLogger replaces the logger; nil silences the dispatcher.
func (d *Dispatcher[E]) SetLogger(l *debug.Logger) {
	d.logger = l
}

// SetProfiler attaches a profiler that times every DispatchBlock call.
func (d *Dispatcher[E]) SetProfiler(p *debug.Profiler) {
	d.profiler = p
}

// Config returns the configuration the dispatcher was built with.
func (d *Dispatcher[E]) Config() config.Config {
	return d.cfg
}

// DispatchBlock queues events, drains them in time order and runs each one
// through the classifier and the voice allocator. Events may arrive in any
// order; same-time events are resolved by the configured collision policy.
//
// If blockLength or any event time is out of range nothing is touched and the
// error wraps ErrBlockLength or event.ErrInvalidTimestamp.
func (d *Dispatcher[E]) DispatchBlock(events []event.Timed[E], blockLength int) (*Block[E], error) {
	if blockLength <= 0 || blockLength > d.cfg.MaxBlockSize {
		return nil, fmt.Errorf("%w: %d frames (max %d)", ErrBlockLength, blockLength, d.cfg.MaxBlockSize)
	}
	for i := range events {
		if t := events[i].Time; t < 0 || t >= blockLength {
			return nil, fmt.Errorf("%w: event %d at frame %d outside block of %d frames",
				event.ErrInvalidTimestamp, i, t, blockLength)
		}
	}

	var start time.Time
	if d.profiler.IsEnabled() {
		start = time.Now()
	}

	b := &d.block
	b.reset(d.frame, blockLength)

	d.queue.Clear()
	d.queue.Enforce(blockLength)
	for i := range events {
		outcome, _ := d.queue.Insert(events[i])
		switch outcome {
		case event.Ignored:
			b.Stats.Ignored++
		case event.Replaced:
			b.Stats.Replaced++
		}
	}

	drain := d.queue.DrainUntil(blockLength)
	for {
		ev, ok := drain.Next()
		if !ok {
			break
		}
		d.dispatch(b, ev)
	}

	d.frame += int64(blockLength)
	d.totals.add(b.Stats)

	if d.profiler.IsEnabled() {
		d.profiler.Record(ProfileSection, time.Since(start))
	}
	d.report(b)
	return b, nil
}

func (d *Dispatcher[E]) dispatch(b *Block[E], ev event.Timed[E]) {
	id, class := d.classifier.Classify(ev.Event)
	dec := d.voices.Handle(id, class, b.FrameStart+int64(ev.Time))

	b.Records = append(b.Records, Record[E]{
		Indexed:    event.Indexed[event.Timed[E]]{Index: dec.Voice.Slot, Event: ev},
		Kind:       dec.Kind,
		Generation: dec.Voice.Generation,
		ID:         id,
		Displaced:  dec.Displaced,
	})
	b.Stats.count(dec.Kind)
}

// report logs what the caller may want to know about a block. It only formats
// anything when the logger would write it.
func (d *Dispatcher[E]) report(b *Block[E]) {
	if g := d.queue.Grows(); g != d.grows {
		d.grows = g
		if d.logger.Enabled(debug.LogLevelWarn) {
			d.logger.Warn("event queue grew past %d events at frame %d; raise queue_capacity",
				d.cfg.QueueCapacity, b.FrameStart)
		}
	}
	if b.Stats.Rejected+b.Stats.Dangling+b.Stats.Ignored+b.Stats.Replaced == 0 {
		return
	}
	if d.logger.Enabled(debug.LogLevelDebug) {
		d.logger.Debug("block at frame %d: %d rejected, %d dangling releases, %d ignored, %d replaced",
			b.FrameStart, b.Stats.Rejected, b.Stats.Dangling, b.Stats.Ignored, b.Stats.Replaced)
	}
}

// Release frees a voice on behalf of the synthesis stage, e.g. once its
// release tail has finished. Stale refs are ignored.
func (d *Dispatcher[E]) Release(ref voice.Ref) bool {
	return d.voices.Release(ref)
}

// IsCurrent reports whether ref still names a live assignment.
func (d *Dispatcher[E]) IsCurrent(ref voice.Ref) bool {
	return d.voices.IsCurrent(ref)
}

// Voice returns a copy of voice slot i.
func (d *Dispatcher[E]) Voice(i int) voice.Slot {
	return d.voices.Slot(i)
}

// ActiveVoices returns the number of assigned voices.
func (d *Dispatcher[E]) ActiveVoices() int {
	return d.voices.Active()
}

// Frame returns the absolute frame at which the next block starts.
func (d *Dispatcher[E]) Frame() int64 {
	return d.frame
}

// Totals returns the statistics accumulated since construction or Reset.
func (d *Dispatcher[E]) Totals() BlockStats {
	return d.totals
}

// Reset is called at transport boundaries: the queue is emptied, every voice
// freed and the frame counter rewound.
func (d *Dispatcher[E]) Reset() {
	d.queue.Clear()
	d.voices.Reset()
	d.block.reset(0, 0)
	d.frame = 0
	d.totals = BlockStats{}
}

// Lookup returns the voice currently assigned to id.
func (d *Dispatcher[E]) Lookup(id event.ID) (voice.Ref, bool) {
	return d.voices.Lookup(id)
}
