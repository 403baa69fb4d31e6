package asr

import (
	"os"
	"path/filepath"
	"testing"
)

func writeModelDir(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("stub"), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

func TestNewConfigDiscovery(t *testing.T) {
	dir := writeModelDir(t, "encoder_model.onnx", "decoder_model.onnx", "tokenizer.json")

	config, err := NewConfig(dir)
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}
	if config.EncoderPath != filepath.Join(dir, "encoder_model.onnx") {
		t.Errorf("EncoderPath = %s", config.EncoderPath)
	}
	if config.DecoderPath != filepath.Join(dir, "decoder_model.onnx") {
		t.Errorf("DecoderPath = %s", config.DecoderPath)
	}
	if config.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want 16000", config.SampleRate)
	}
	if config.MaxNewTokens != 448 {
		t.Errorf("MaxNewTokens = %d, want 448", config.MaxNewTokens)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestNewConfigPrefersQuantized(t *testing.T) {
	dir := writeModelDir(t,
		"encoder_model.onnx", "encoder_model_int8.onnx",
		"decoder_model.onnx", "decoder_model_int8.onnx",
		"tokenizer.json")

	config, err := NewConfig(dir)
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}
	if filepath.Base(config.EncoderPath) != "encoder_model_int8.onnx" {
		t.Errorf("EncoderPath = %s, want int8 variant", config.EncoderPath)
	}
	if filepath.Base(config.DecoderPath) != "decoder_model_int8.onnx" {
		t.Errorf("DecoderPath = %s, want int8 variant", config.DecoderPath)
	}
}

func TestNewConfigMissingFiles(t *testing.T) {
	tests := []struct {
		name  string
		files []string
	}{
		{"empty dir", nil},
		{"no decoder", []string{"encoder_model.onnx", "tokenizer.json"}},
		{"no tokenizer", []string{"encoder_model.onnx", "decoder_model.onnx"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeModelDir(t, tt.files...)
			if _, err := NewConfig(dir); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	dir := writeModelDir(t, "encoder_model.onnx", "decoder_model.onnx", "tokenizer.json")
	config, err := NewConfig(dir)
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}

	config.SampleRate = 0
	if err := config.Validate(); err == nil {
		t.Error("expected error for zero sample rate")
	}

	config.SampleRate = 16000
	config.MaxNewTokens = -1
	if err := config.Validate(); err == nil {
		t.Error("expected error for negative step budget")
	}
}

func TestNewEngineUnknown(t *testing.T) {
	config := DefaultConfig("testdata")
	config.Engine = "parakeet"
	if _, err := NewEngine(config); err == nil {
		t.Error("expected error for unknown engine")
	}
}
