// Package moonshine implements greedy autoregressive decoding for the
// Moonshine encoder/decoder speech model exported to ONNX.
package moonshine

import (
	"context"
	"fmt"
)

// Tensor is a dense float32 tensor in row-major order. The encoder
// output is carried as an opaque Tensor for the lifetime of one
// transcription request.
type Tensor struct {
	Shape []int64
	Data  []float32
}

// NumElements returns the element count implied by the shape.
func (t Tensor) NumElements() int64 {
	n := int64(1)
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// EncoderModel maps a normalized waveform to encoder hidden states.
type EncoderModel interface {
	Encode(ctx context.Context, samples []float32) (Tensor, error)
}

// DecoderModel runs one forward pass of the autoregressive decoder.
// The returned logits are shaped [1, len(tokens), vocabularySize].
type DecoderModel interface {
	Step(ctx context.Context, tokens []int64, encoderState Tensor) (Tensor, error)
}

// lastLogits extracts the logit row for the final sequence position
// from a [1, seqLen, vocabSize] tensor.
func lastLogits(logits Tensor) ([]float32, error) {
	if len(logits.Shape) != 3 {
		return nil, fmt.Errorf("logits must have rank 3, got shape %v", logits.Shape)
	}
	if logits.Shape[0] != 1 {
		return nil, fmt.Errorf("logits batch dimension must be 1, got shape %v", logits.Shape)
	}
	seqLen, vocabSize := logits.Shape[1], logits.Shape[2]
	if seqLen < 1 || vocabSize < 1 {
		return nil, fmt.Errorf("logits have empty dimensions: shape %v", logits.Shape)
	}
	if int64(len(logits.Data)) != logits.NumElements() {
		return nil, fmt.Errorf("logits data length %d does not match shape %v", len(logits.Data), logits.Shape)
	}
	start := (seqLen - 1) * vocabSize
	return logits.Data[start : start+vocabSize], nil
}

// argmax returns the index of the maximum value. Ties are broken by the
// lowest index (first occurrence wins under a left-to-right scan).
func argmax(values []float32) int64 {
	best := int64(0)
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = int64(i)
		}
	}
	return best
}
