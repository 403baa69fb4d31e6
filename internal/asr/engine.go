package asr

import (
	"context"
	"fmt"
)

// Engine transcribes audio sample buffers to text. Implementations own
// their model handles and release them on Close.
type Engine interface {
	Transcribe(ctx context.Context, samples []float32, sampleRate int) (*Result, error)
	Close() error
}

// NewEngine creates the engine selected by the configuration. A load
// failure (missing or corrupt model assets) fails initialization as a
// whole; there is no degraded mode.
func NewEngine(config *Config) (Engine, error) {
	switch config.Engine {
	case EngineMoonshine, "":
		return NewMoonshineEngine(config)
	case EngineWhisper:
		return NewWhisperRecognizer(config)
	default:
		return nil, fmt.Errorf("unknown engine: %q", config.Engine)
	}
}
