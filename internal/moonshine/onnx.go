package moonshine

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// initRuntime initializes the process-wide ONNX Runtime environment.
// The environment stays alive for the rest of the process; sessions are
// created and destroyed individually.
func initRuntime(libraryPath string) error {
	ortInitOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// SessionConfig configures an ONNX-backed encoder/decoder pair.
type SessionConfig struct {
	EncoderPath string
	DecoderPath string
	NumThreads  int
	// LibraryPath optionally points at the onnxruntime shared library.
	LibraryPath string
}

// Session owns the encoder and decoder ONNX sessions for one loaded
// model. The decoder input binding is resolved from the model's declared
// input names when the session is created. Model invocations are
// serialized with a mutex; the underlying session handles are not safe
// for concurrent Run calls from unrelated requests.
type Session struct {
	mu sync.Mutex

	encoder *ort.DynamicAdvancedSession
	decoder *ort.DynamicAdvancedSession

	encoderInputName  string
	encoderOutputName string
	decoderInputNames []string
	decoderOutputName string
	binding           *InputBinding
}

// NewSession loads the encoder and decoder models and resolves the
// decoder's input binding, failing on any contract mismatch.
func NewSession(cfg SessionConfig) (*Session, error) {
	if err := initRuntime(cfg.LibraryPath); err != nil {
		return nil, fmt.Errorf("failed to initialize onnxruntime: %w", err)
	}

	encInputs, encOutputs, err := ort.GetInputOutputInfo(cfg.EncoderPath)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect encoder model: %w", err)
	}
	if len(encInputs) != 1 || len(encOutputs) != 1 {
		return nil, fmt.Errorf("encoder model must declare 1 input and 1 output, got %d/%d", len(encInputs), len(encOutputs))
	}

	decInputs, decOutputs, err := ort.GetInputOutputInfo(cfg.DecoderPath)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect decoder model: %w", err)
	}
	if len(decOutputs) < 1 {
		return nil, fmt.Errorf("decoder model declares no outputs")
	}

	decInputNames := make([]string, len(decInputs))
	for i, info := range decInputs {
		decInputNames[i] = info.Name
	}
	binding, err := ResolveInputBinding(decInputNames)
	if err != nil {
		return nil, fmt.Errorf("decoder input contract mismatch: %w", err)
	}

	var options *ort.SessionOptions
	if cfg.NumThreads > 0 {
		options, err = ort.NewSessionOptions()
		if err != nil {
			return nil, fmt.Errorf("failed to create session options: %w", err)
		}
		defer options.Destroy()
		if err := options.SetIntraOpNumThreads(cfg.NumThreads); err != nil {
			return nil, fmt.Errorf("failed to set thread count: %w", err)
		}
	}

	encoderSession, err := ort.NewDynamicAdvancedSession(cfg.EncoderPath,
		[]string{encInputs[0].Name}, []string{encOutputs[0].Name}, options)
	if err != nil {
		return nil, fmt.Errorf("failed to load encoder model: %w", err)
	}

	decoderSession, err := ort.NewDynamicAdvancedSession(cfg.DecoderPath,
		decInputNames, []string{decOutputs[0].Name}, options)
	if err != nil {
		encoderSession.Destroy()
		return nil, fmt.Errorf("failed to load decoder model: %w", err)
	}

	return &Session{
		encoder:           encoderSession,
		decoder:           decoderSession,
		encoderInputName:  encInputs[0].Name,
		encoderOutputName: encOutputs[0].Name,
		decoderInputNames: decInputNames,
		decoderOutputName: decOutputs[0].Name,
		binding:           binding,
	}, nil
}

// Binding returns the resolved decoder input binding.
func (s *Session) Binding() InputBinding { return *s.binding }

// Encode runs the encoder over a normalized waveform shaped [1, n].
func (s *Session) Encode(ctx context.Context, samples []float32) (Tensor, error) {
	if err := ctx.Err(); err != nil {
		return Tensor{}, err
	}
	if len(samples) == 0 {
		return Tensor{}, fmt.Errorf("empty audio buffer")
	}

	input, err := ort.NewTensor(ort.NewShape(1, int64(len(samples))), samples)
	if err != nil {
		return Tensor{}, fmt.Errorf("failed to create audio tensor: %w", err)
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}

	s.mu.Lock()
	err = s.encoder.Run([]ort.Value{input}, outputs)
	s.mu.Unlock()
	if err != nil {
		return Tensor{}, fmt.Errorf("encoder invocation failed: %w", err)
	}
	defer outputs[0].Destroy()

	return copyTensor(outputs[0])
}

// Step runs one decoder forward pass with the current token sequence and
// the encoder state, returning logits shaped [1, len(tokens), vocab].
func (s *Session) Step(ctx context.Context, tokens []int64, encoderState Tensor) (Tensor, error) {
	if err := ctx.Err(); err != nil {
		return Tensor{}, err
	}

	tokenTensor, err := ort.NewTensor(ort.NewShape(1, int64(len(tokens))), tokens)
	if err != nil {
		return Tensor{}, fmt.Errorf("failed to create token tensor: %w", err)
	}
	defer tokenTensor.Destroy()

	stateTensor, err := ort.NewTensor(ort.NewShape(encoderState.Shape...), encoderState.Data)
	if err != nil {
		return Tensor{}, fmt.Errorf("failed to create encoder-state tensor: %w", err)
	}
	defer stateTensor.Destroy()

	// Inputs are passed in the model's declared order via the binding.
	inputs := make([]ort.Value, len(s.decoderInputNames))
	inputs[s.binding.TokenInput] = tokenTensor
	inputs[s.binding.EncoderInput] = stateTensor

	outputs := []ort.Value{nil}

	s.mu.Lock()
	err = s.decoder.Run(inputs, outputs)
	s.mu.Unlock()
	if err != nil {
		return Tensor{}, fmt.Errorf("decoder invocation failed: %w", err)
	}
	defer outputs[0].Destroy()

	return copyTensor(outputs[0])
}

// Close releases both model sessions.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.encoder != nil {
		s.encoder.Destroy()
		s.encoder = nil
	}
	if s.decoder != nil {
		s.decoder.Destroy()
		s.decoder = nil
	}
	return nil
}

// copyTensor copies an onnxruntime output into an owned Tensor so the
// underlying native buffer can be released immediately.
func copyTensor(value ort.Value) (Tensor, error) {
	t, ok := value.(*ort.Tensor[float32])
	if !ok {
		return Tensor{}, fmt.Errorf("model output is not a float32 tensor")
	}
	shape := t.GetShape()
	out := Tensor{
		Shape: append([]int64(nil), shape...),
		Data:  append([]float32(nil), t.GetData()...),
	}
	return out, nil
}
