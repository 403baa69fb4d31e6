package asr

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"sawt/internal/moonshine"
)

// Engine names accepted by NewEngine.
const (
	EngineMoonshine = "moonshine"
	EngineWhisper   = "whisper"
)

// Config holds the configuration for the transcription engines.
type Config struct {
	Engine        string // moonshine or whisper
	ModelPath     string // base directory for the model
	EncoderPath   string // path to encoder_model.onnx or encoder_model_int8.onnx
	DecoderPath   string // path to decoder_model.onnx or decoder_model_int8.onnx
	TokenizerPath string // path to tokenizer.json
	ORTLibrary    string // optional path to the onnxruntime shared library
	NumThreads    int    // number of threads for inference
	SampleRate    int    // audio sample rate (typically 16000)
	MaxNewTokens  int    // decoding step budget per request
	Language      string // whisper engine only
}

// DefaultConfig returns the default configuration for the Moonshine
// Arabic model exported under the given directory.
func DefaultConfig(modelDir string) *Config {
	return &Config{
		Engine:       EngineMoonshine,
		ModelPath:    modelDir,
		NumThreads:   2,
		SampleRate:   16000,
		MaxNewTokens: moonshine.DefaultMaxNewTokens,
		Language:     "ar",
	}
}

// NewConfig creates a configuration from a model directory, detecting
// the model files automatically. Quantized int8 exports are preferred
// when present.
func NewConfig(modelDir string) (*Config, error) {
	config := DefaultConfig(modelDir)

	encoderPath := findModelFile(modelDir, []string{
		"encoder_model_int8.onnx",
		"encoder_model.onnx",
		"encoder.int8.onnx",
		"encoder.onnx",
	})
	if encoderPath == "" {
		return nil, fmt.Errorf("encoder model not found in %s", modelDir)
	}
	config.EncoderPath = encoderPath

	decoderPath := findModelFile(modelDir, []string{
		"decoder_model_int8.onnx",
		"decoder_model.onnx",
		"decoder.int8.onnx",
		"decoder.onnx",
	})
	if decoderPath == "" {
		return nil, fmt.Errorf("decoder model not found in %s", modelDir)
	}
	config.DecoderPath = decoderPath

	tokenizerPath := findModelFile(modelDir, []string{"tokenizer.json"})
	if tokenizerPath == "" {
		return nil, fmt.Errorf("tokenizer.json not found in %s", modelDir)
	}
	config.TokenizerPath = tokenizerPath

	return config, nil
}

// FromEnv builds a configuration from environment variables, falling
// back to automatic discovery under SAWT_MODEL_DIR.
func FromEnv() (*Config, error) {
	modelDir := os.Getenv("SAWT_MODEL_DIR")
	if modelDir == "" {
		modelDir = "models/moonshine-tiny-ar"
	}
	engine := os.Getenv("SAWT_ENGINE")

	var config *Config
	if engine == "" || engine == EngineMoonshine {
		// Moonshine assets are discovered up front so a missing model
		// fails initialization instead of the first request.
		var err error
		config, err = NewConfig(modelDir)
		if err != nil {
			return nil, err
		}
	} else {
		config = DefaultConfig(modelDir)
	}
	if engine != "" {
		config.Engine = engine
	}
	if lib := os.Getenv("SAWT_ORT_LIBRARY"); lib != "" {
		config.ORTLibrary = lib
	}
	if lang := os.Getenv("SAWT_LANGUAGE"); lang != "" {
		config.Language = lang
	}
	if threads := os.Getenv("SAWT_NUM_THREADS"); threads != "" {
		n, err := strconv.Atoi(threads)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid SAWT_NUM_THREADS: %q", threads)
		}
		config.NumThreads = n
	}

	return config, nil
}

// Validate checks that all required model files exist.
func (c *Config) Validate() error {
	files := map[string]string{
		"encoder":   c.EncoderPath,
		"decoder":   c.DecoderPath,
		"tokenizer": c.TokenizerPath,
	}

	for name, path := range files {
		if path == "" {
			return fmt.Errorf("%s path is not set", name)
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("%s file not found: %s", name, path)
		}
	}

	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", c.SampleRate)
	}
	if c.MaxNewTokens <= 0 {
		return fmt.Errorf("invalid max new tokens: %d", c.MaxNewTokens)
	}

	return nil
}

// findModelFile searches for a model file in the given directory.
// Returns the first matching file path or empty string if not found.
func findModelFile(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
