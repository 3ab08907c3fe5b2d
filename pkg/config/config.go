// Package config holds the construction-time settings of a voice dispatcher.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/justyntemme/voicecore/pkg/event"
	"github.com/justyntemme/voicecore/pkg/framework/debug"
	"github.com/justyntemme/voicecore/pkg/framework/voice"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// MaxVoices bounds the voice table so slot scans stay cheap.
const MaxVoices = 1024

// Config is fixed once a dispatcher is built; nothing in it changes per block.
type Config struct {
	Voices        int                   `yaml:"voices"`
	Collision     event.CollisionPolicy `yaml:"collision"`
	Stealing      voice.StealingMode    `yaml:"stealing"`
	Retrigger     voice.RetriggerMode   `yaml:"retrigger"`
	QueueCapacity int                   `yaml:"queue_capacity"` // events per block before the queue grows
	MaxBlockSize  int                   `yaml:"max_block_size"` // frames
	Log           LogConfig             `yaml:"log"`
}

// LogConfig selects where and how much the engine logs.
type LogConfig struct {
	Level  string `yaml:"level"` // debug, info, warn, error, off
	Prefix string `yaml:"prefix"`
	File   string `yaml:"file,omitempty"` // stderr when empty
}

// Default returns a 16 voice configuration that steals the oldest voice and
// queues colliding events after the ones already queued.
func Default() Config {
	return Config{
		Voices:        16,
		Collision:     event.InsertNewAfterOld,
		Stealing:      voice.StealOldest,
		Retrigger:     voice.RetriggerLegato,
		QueueCapacity: 256,
		MaxBlockSize:  4096,
		Log: LogConfig{
			Level:  "info",
			Prefix: "voicecore",
		},
	}
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Validate reports configurations that cannot run without allocating or
// looping on the audio thread.
func (c Config) Validate() error {
	if c.Voices < 1 || c.Voices > MaxVoices {
		return fmt.Errorf("%w: voices must be between 1 and %d, got %d", ErrInvalidConfig, MaxVoices, c.Voices)
	}
	if c.QueueCapacity < 1 {
		return fmt.Errorf("%w: queue_capacity must be positive, got %d", ErrInvalidConfig, c.QueueCapacity)
	}
	if c.MaxBlockSize < 1 {
		return fmt.Errorf("%w: max_block_size must be positive, got %d", ErrInvalidConfig, c.MaxBlockSize)
	}
	if _, err := c.Collision.MarshalText(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := c.Stealing.MarshalText(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := c.Retrigger.MarshalText(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := debug.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// VoiceOptions returns the allocator options of the configuration.
func (c Config) VoiceOptions() voice.Options {
	return voice.Options{
		Stealing:  c.Stealing,
		Retrigger: c.Retrigger,
	}
}

// Logger builds the logger described by the Log section.
func (c Config) Logger() (*debug.Logger, error) {
	level, err := debug.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	logger := debug.New(os.Stderr, c.Log.Prefix, debug.DefaultFlags)
	if c.Log.File != "" {
		logger, err = debug.NewFileLogger(c.Log.File, c.Log.Prefix, debug.DefaultFlags)
		if err != nil {
			return nil, err
		}
	}
	logger.SetLevel(level)
	return logger, nil
}

// Marshal encodes the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
