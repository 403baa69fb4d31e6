package asr

import (
	"context"
	"fmt"
	"time"

	sherpa "github.com/k2-fsa/sherpa-onnx-go/sherpa_onnx"
)

// WhisperRecognizer is the alternate engine backed by sherpa-onnx
// Whisper exports. It is useful for comparing Moonshine output against
// a reference model on the same audio.
type WhisperRecognizer struct {
	recognizer *sherpa.OfflineRecognizer
	config     *Config
}

// NewWhisperRecognizer creates a Whisper recognizer from a model
// directory containing sherpa-onnx Whisper exports.
func NewWhisperRecognizer(config *Config) (*WhisperRecognizer, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	encoderCandidates := []string{
		"encoder.int8.onnx",
		"encoder.onnx",
		"tiny-encoder.int8.onnx",
		"tiny-encoder.onnx",
		"small-encoder.int8.onnx",
		"small-encoder.onnx",
	}
	decoderCandidates := []string{
		"decoder.int8.onnx",
		"decoder.onnx",
		"tiny-decoder.int8.onnx",
		"tiny-decoder.onnx",
		"small-decoder.int8.onnx",
		"small-decoder.onnx",
	}
	tokensCandidates := []string{
		"tokens.txt",
		"tiny-tokens.txt",
		"small-tokens.txt",
	}

	encoderPath := findModelFile(config.ModelPath, encoderCandidates)
	decoderPath := findModelFile(config.ModelPath, decoderCandidates)
	tokensPath := findModelFile(config.ModelPath, tokensCandidates)

	if encoderPath == "" {
		return nil, fmt.Errorf("whisper encoder model not found in %s", config.ModelPath)
	}
	if decoderPath == "" {
		return nil, fmt.Errorf("whisper decoder model not found in %s", config.ModelPath)
	}
	if tokensPath == "" {
		return nil, fmt.Errorf("whisper tokens file not found in %s", config.ModelPath)
	}

	language := config.Language
	if language == "" {
		language = "ar"
	}

	sherpaConfig := sherpa.OfflineRecognizerConfig{
		FeatConfig: sherpa.FeatureConfig{
			SampleRate: config.SampleRate,
			FeatureDim: 80,
		},
		ModelConfig: sherpa.OfflineModelConfig{
			Whisper: sherpa.OfflineWhisperModelConfig{
				Encoder:  encoderPath,
				Decoder:  decoderPath,
				Language: language,
				Task:     "transcribe",
			},
			Tokens:     tokensPath,
			NumThreads: config.NumThreads,
			Debug:      0,
		},
	}

	recognizer := sherpa.NewOfflineRecognizer(&sherpaConfig)
	if recognizer == nil {
		return nil, fmt.Errorf("failed to create whisper recognizer")
	}

	return &WhisperRecognizer{
		recognizer: recognizer,
		config:     config,
	}, nil
}

// Transcribe transcribes raw audio samples.
func (r *WhisperRecognizer) Transcribe(ctx context.Context, samples []float32, sampleRate int) (*Result, error) {
	startTime := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return &Result{Text: "", Duration: time.Since(startTime).Seconds()}, nil
	}

	stream := sherpa.NewOfflineStream(r.recognizer)
	defer sherpa.DeleteOfflineStream(stream)

	stream.AcceptWaveform(sampleRate, samples)
	r.recognizer.Decode(stream)

	result := stream.GetResult()
	if result == nil {
		return nil, fmt.Errorf("whisper decoding produced no result")
	}

	return &Result{
		Text:     result.Text,
		Duration: time.Since(startTime).Seconds(),
	}, nil
}

// Close releases the recognizer resources.
func (r *WhisperRecognizer) Close() error {
	if r.recognizer != nil {
		sherpa.DeleteOfflineRecognizer(r.recognizer)
		r.recognizer = nil
	}
	return nil
}
