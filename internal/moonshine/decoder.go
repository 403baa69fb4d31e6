package moonshine

import (
	"context"
	"fmt"
)

// DefaultMaxNewTokens caps the number of decoding steps per request.
const DefaultMaxNewTokens = 448

// DecoderConfig holds the token ids and step budget for greedy decoding.
// The ids must come from the loaded tokenizer, not from constants; ids
// differ between model exports.
type DecoderConfig struct {
	BOSTokenID   int64
	EOSTokenID   int64
	MaxNewTokens int
}

// Validate checks the configuration before decoding.
func (c DecoderConfig) Validate() error {
	if c.BOSTokenID < 0 {
		return fmt.Errorf("invalid beginning-of-sequence token id: %d", c.BOSTokenID)
	}
	if c.EOSTokenID < 0 {
		return fmt.Errorf("invalid end-of-sequence token id: %d", c.EOSTokenID)
	}
	if c.MaxNewTokens <= 0 {
		return fmt.Errorf("max new tokens must be positive, got %d", c.MaxNewTokens)
	}
	return nil
}

// Decode runs the greedy autoregressive loop: starting from the
// beginning-of-sequence token, it repeatedly invokes the decoder model
// with the growing token sequence, picks the argmax of the final
// position's logits, and stops at the end-of-sequence token or the step
// budget. The returned sequence excludes both the beginning-of-sequence
// and end-of-sequence tokens.
//
// Each step depends on the previous step's appended token, so the loop
// is strictly sequential. The context is checked between steps; a
// cancelled request discards the partial sequence.
func Decode(ctx context.Context, model DecoderModel, cfg DecoderConfig, encoded Tensor) ([]int64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid decoder config: %w", err)
	}

	tokens := make([]int64, 1, cfg.MaxNewTokens+1)
	tokens[0] = cfg.BOSTokenID

	for step := 0; step < cfg.MaxNewTokens; step++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("decoding cancelled at step %d: %w", step, err)
		}

		logits, err := model.Step(ctx, tokens, encoded)
		if err != nil {
			return nil, fmt.Errorf("decoder step %d failed: %w", step, err)
		}

		row, err := lastLogits(logits)
		if err != nil {
			return nil, fmt.Errorf("decoder step %d returned malformed logits: %w", step, err)
		}

		next := argmax(row)
		if next == cfg.EOSTokenID {
			break
		}
		tokens = append(tokens, next)
	}

	return tokens[1:], nil
}
