package moonshine

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// stubDecoder returns scripted next-token predictions, one per step.
type stubDecoder struct {
	vocabSize int
	script    []int64
	calls     int
}

func (d *stubDecoder) Step(ctx context.Context, tokens []int64, encoderState Tensor) (Tensor, error) {
	next := d.script[len(d.script)-1]
	if d.calls < len(d.script) {
		next = d.script[d.calls]
	}
	d.calls++

	// Logits for every position; only the final row matters.
	seqLen := len(tokens)
	data := make([]float32, seqLen*d.vocabSize)
	data[(seqLen-1)*d.vocabSize+int(next)] = 1
	return Tensor{
		Shape: []int64{1, int64(seqLen), int64(d.vocabSize)},
		Data:  data,
	}, nil
}

// failingDecoder always errors.
type failingDecoder struct{}

func (failingDecoder) Step(ctx context.Context, tokens []int64, encoderState Tensor) (Tensor, error) {
	return Tensor{}, errors.New("session run failed")
}

func testConfig() DecoderConfig {
	return DecoderConfig{BOSTokenID: 1, EOSTokenID: 2, MaxNewTokens: DefaultMaxNewTokens}
}

func TestDecodeImmediateEOS(t *testing.T) {
	model := &stubDecoder{vocabSize: 32, script: []int64{2}}
	tokens, err := Decode(context.Background(), model, testConfig(), Tensor{})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(tokens) != 0 {
		t.Errorf("expected empty sequence, got %v", tokens)
	}
}

func TestDecodeFixedScript(t *testing.T) {
	model := &stubDecoder{vocabSize: 32, script: []int64{10, 11, 2}}
	tokens, err := Decode(context.Background(), model, testConfig(), Tensor{})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	want := []int64{10, 11}
	if len(tokens) != len(want) {
		t.Fatalf("got %v, want %v", tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("got %v, want %v", tokens, want)
		}
	}
	if model.calls != 3 {
		t.Errorf("expected 3 decoder invocations, got %d", model.calls)
	}
}

func TestDecodeStepBudget(t *testing.T) {
	// Never predicts EOS; must stop at the step cap.
	model := &stubDecoder{vocabSize: 32, script: []int64{7}}
	cfg := testConfig()
	cfg.MaxNewTokens = 16

	tokens, err := Decode(context.Background(), model, cfg, Tensor{})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(tokens) != cfg.MaxNewTokens {
		t.Errorf("got %d tokens, want %d", len(tokens), cfg.MaxNewTokens)
	}
	for _, id := range tokens {
		if id == cfg.EOSTokenID {
			t.Errorf("end-of-sequence id %d appeared in output %v", cfg.EOSTokenID, tokens)
		}
	}
}

func TestDecodeNeverReturnsEOS(t *testing.T) {
	scripts := [][]int64{
		{2},
		{5, 2},
		{10, 11, 2},
		{3, 3, 3, 2},
	}
	for _, script := range scripts {
		model := &stubDecoder{vocabSize: 32, script: script}
		tokens, err := Decode(context.Background(), model, testConfig(), Tensor{})
		if err != nil {
			t.Fatalf("Decode failed for script %v: %v", script, err)
		}
		for _, id := range tokens {
			if id == 2 {
				t.Errorf("script %v: EOS id in output %v", script, tokens)
			}
		}
		if len(tokens) != len(script)-1 {
			t.Errorf("script %v: got %d tokens, want %d", script, len(tokens), len(script)-1)
		}
	}
}

func TestDecodeModelFailure(t *testing.T) {
	_, err := Decode(context.Background(), failingDecoder{}, testConfig(), Tensor{})
	if err == nil {
		t.Fatal("expected error from failing decoder, got nil")
	}
}

func TestDecodeCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	model := &stubDecoder{vocabSize: 32, script: []int64{7}}
	_, err := Decode(ctx, model, testConfig(), Tensor{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if model.calls != 0 {
		t.Errorf("decoder was invoked %d times after cancellation", model.calls)
	}
}

func TestDecodeMalformedLogits(t *testing.T) {
	tests := []struct {
		name  string
		shape []int64
		data  int
	}{
		{"rank 2", []int64{4, 8}, 32},
		{"batch > 1", []int64{2, 1, 8}, 16},
		{"data mismatch", []int64{1, 1, 8}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := shapeDecoder{shape: tt.shape, dataLen: tt.data}
			_, err := Decode(context.Background(), model, testConfig(), Tensor{})
			if err == nil {
				t.Fatal("expected error for malformed logits, got nil")
			}
		})
	}
}

type shapeDecoder struct {
	shape   []int64
	dataLen int
}

func (d shapeDecoder) Step(ctx context.Context, tokens []int64, encoderState Tensor) (Tensor, error) {
	return Tensor{Shape: d.shape, Data: make([]float32, d.dataLen)}, nil
}

func TestDecodeInvalidConfig(t *testing.T) {
	model := &stubDecoder{vocabSize: 8, script: []int64{2}}
	for _, cfg := range []DecoderConfig{
		{BOSTokenID: -1, EOSTokenID: 2, MaxNewTokens: 10},
		{BOSTokenID: 1, EOSTokenID: -2, MaxNewTokens: 10},
		{BOSTokenID: 1, EOSTokenID: 2, MaxNewTokens: 0},
	} {
		if _, err := Decode(context.Background(), model, cfg, Tensor{}); err == nil {
			t.Errorf("expected error for config %+v, got nil", cfg)
		}
	}
}

func TestArgmaxTieBreak(t *testing.T) {
	tests := []struct {
		values []float32
		want   int64
	}{
		{[]float32{0, 1, 1, 0}, 1},
		{[]float32{3, 3, 3}, 0},
		{[]float32{-1, -1, 0, 0}, 2},
		{[]float32{5}, 0},
	}
	for _, tt := range tests {
		if got := argmax(tt.values); got != tt.want {
			t.Errorf("argmax(%v) = %d, want %d", tt.values, got, tt.want)
		}
	}
}

func TestLastLogits(t *testing.T) {
	logits := Tensor{
		Shape: []int64{1, 2, 3},
		Data:  []float32{0, 1, 2, 10, 11, 12},
	}
	row, err := lastLogits(logits)
	if err != nil {
		t.Fatalf("lastLogits failed: %v", err)
	}
	want := []float32{10, 11, 12}
	for i := range want {
		if row[i] != want[i] {
			t.Fatalf("lastLogits = %v, want %v", row, want)
		}
	}
}

func ExampleDecode() {
	model := &stubDecoder{vocabSize: 16, script: []int64{10, 11, 2}}
	cfg := DecoderConfig{BOSTokenID: 1, EOSTokenID: 2, MaxNewTokens: 448}
	tokens, _ := Decode(context.Background(), model, cfg, Tensor{})
	fmt.Println(tokens)
	// Output: [10 11]
}
