package config

import (
	"github.com/justyntemme/voicecore/pkg/event"
	"github.com/justyntemme/voicecore/pkg/framework/voice"
)

// Builder provides a fluent API for creating configurations
type Builder struct {
	cfg Config
}

// New creates a builder starting from Default
func New() *Builder {
	return &Builder{cfg: Default()}
}

// Voices sets the number of voice slots
func (b *Builder) Voices(n int) *Builder {
	b.cfg.Voices = n
	return b
}

// Collision sets the same-timestamp policy of the event queue
func (b *Builder) Collision(p event.CollisionPolicy) *Builder {
	b.cfg.Collision = p
	return b
}

// Stealing sets what happens when every voice is busy
func (b *Builder) Stealing(m voice.StealingMode) *Builder {
	b.cfg.Stealing = m
	return b
}

// NoStealing rejects new notes when every voice is busy
func (b *Builder) NoStealing() *Builder {
	b.cfg.Stealing = voice.StealNone
	return b
}

// Retrigger sets what a repeated start does to a playing voice
func (b *Builder) Retrigger(m voice.RetriggerMode) *Builder {
	b.cfg.Retrigger = m
	return b
}

// QueueCapacity sets how many events a block can hold before the queue grows
func (b *Builder) QueueCapacity(n int) *Builder {
	b.cfg.QueueCapacity = n
	return b
}

// MaxBlockSize sets the largest block length, in frames
func (b *Builder) MaxBlockSize(frames int) *Builder {
	b.cfg.MaxBlockSize = frames
	return b
}

// LogLevel sets the log level name
func (b *Builder) LogLevel(level string) *Builder {
	b.cfg.Log.Level = level
	return b
}

// Build validates and returns the configuration
func (b *Builder) Build() (Config, error) {
	if err := b.cfg.Validate(); err != nil {
		return Config{}, err
	}
	return b.cfg, nil
}
