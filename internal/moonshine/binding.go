package moonshine

import (
	"fmt"
	"strings"
)

// InputBinding maps the decoder model's declared inputs to their logical
// roles. It is resolved once at model load time from the model's input
// names and asserted against them; an input contract that cannot be
// matched unambiguously is a configuration error, never a silent
// positional guess.
type InputBinding struct {
	// TokenInput is the index of the token-id input in the model's
	// declared input order.
	TokenInput int
	// EncoderInput is the index of the encoder hidden-state input.
	EncoderInput int

	TokenInputName   string
	EncoderInputName string
}

// Name substrings that identify each input role. Token-id patterns are
// checked before encoder patterns so "decoder_input_ids" never matches
// the encoder role via "decoder".
var (
	tokenInputPatterns   = []string{"decoder_input_ids", "input_ids"}
	encoderInputPatterns = []string{"encoder", "hidden"}
)

// ResolveInputBinding resolves the role of every declared decoder input.
// It fails if either role is missing, matched by more than one input, or
// if the model declares inputs that match no role.
func ResolveInputBinding(inputNames []string) (*InputBinding, error) {
	if len(inputNames) != 2 {
		return nil, fmt.Errorf("decoder model must declare exactly 2 inputs (token ids, encoder state), got %d: %v", len(inputNames), inputNames)
	}

	b := &InputBinding{TokenInput: -1, EncoderInput: -1}
	for i, name := range inputNames {
		switch role := classifyInput(name); role {
		case roleTokens:
			if b.TokenInput >= 0 {
				return nil, fmt.Errorf("ambiguous token-id inputs: %q and %q", b.TokenInputName, name)
			}
			b.TokenInput = i
			b.TokenInputName = name
		case roleEncoder:
			if b.EncoderInput >= 0 {
				return nil, fmt.Errorf("ambiguous encoder-state inputs: %q and %q", b.EncoderInputName, name)
			}
			b.EncoderInput = i
			b.EncoderInputName = name
		default:
			return nil, fmt.Errorf("decoder input %q matches no known role", name)
		}
	}

	if b.TokenInput < 0 {
		return nil, fmt.Errorf("no token-id input found among %v", inputNames)
	}
	if b.EncoderInput < 0 {
		return nil, fmt.Errorf("no encoder-state input found among %v", inputNames)
	}
	return b, nil
}

type inputRole int

const (
	roleUnknown inputRole = iota
	roleTokens
	roleEncoder
)

func classifyInput(name string) inputRole {
	lower := strings.ToLower(name)
	for _, p := range tokenInputPatterns {
		if strings.Contains(lower, p) {
			return roleTokens
		}
	}
	for _, p := range encoderInputPatterns {
		if strings.Contains(lower, p) {
			return roleEncoder
		}
	}
	return roleUnknown
}
