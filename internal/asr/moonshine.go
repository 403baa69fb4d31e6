package asr

import (
	"context"
	"fmt"
	"time"

	"sawt/internal/audio"
	"sawt/internal/moonshine"
	"sawt/internal/tokenizer"
)

// MoonshineEngine runs the full on-device pipeline: normalization,
// encoder, greedy autoregressive decoding, and detokenization.
type MoonshineEngine struct {
	config  *Config
	vocab   *tokenizer.Vocabulary
	encoder moonshine.EncoderModel
	decoder moonshine.DecoderModel
	session *moonshine.Session
}

// NewMoonshineEngine loads the ONNX sessions and the tokenizer.
func NewMoonshineEngine(config *Config) (*MoonshineEngine, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	vocab, err := tokenizer.Load(config.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}

	session, err := moonshine.NewSession(moonshine.SessionConfig{
		EncoderPath: config.EncoderPath,
		DecoderPath: config.DecoderPath,
		NumThreads:  config.NumThreads,
		LibraryPath: config.ORTLibrary,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	return &MoonshineEngine{
		config:  config,
		vocab:   vocab,
		encoder: session,
		decoder: session,
		session: session,
	}, nil
}

// Transcribe converts raw audio samples into text. The sample buffer is
// normalized to zero mean and unit variance before encoding; the input
// buffer itself is left untouched.
func (e *MoonshineEngine) Transcribe(ctx context.Context, samples []float32, sampleRate int) (*Result, error) {
	startTime := time.Now()

	if sampleRate != e.config.SampleRate {
		return nil, fmt.Errorf("unsupported sample rate %d, model expects %d", sampleRate, e.config.SampleRate)
	}
	if len(samples) == 0 {
		return &Result{Text: "", Duration: time.Since(startTime).Seconds()}, nil
	}

	normalized := audio.Normalize(samples)

	encoded, err := e.encoder.Encode(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("encoding failed: %w", err)
	}

	tokens, err := moonshine.Decode(ctx, e.decoder, moonshine.DecoderConfig{
		BOSTokenID:   e.vocab.BOS(),
		EOSTokenID:   e.vocab.EOS(),
		MaxNewTokens: e.config.MaxNewTokens,
	}, encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding failed: %w", err)
	}

	return &Result{
		Text:     e.vocab.Detokenize(tokens),
		Tokens:   len(tokens),
		Duration: time.Since(startTime).Seconds(),
	}, nil
}

// Close releases the model sessions.
func (e *MoonshineEngine) Close() error {
	if e.session != nil {
		err := e.session.Close()
		e.session = nil
		return err
	}
	return nil
}
