package moonshine

import "testing"

func TestResolveInputBinding(t *testing.T) {
	tests := []struct {
		name        string
		inputs      []string
		wantToken   int
		wantEncoder int
		wantErr     bool
	}{
		{
			name:        "optimum export names",
			inputs:      []string{"input_ids", "encoder_hidden_states"},
			wantToken:   0,
			wantEncoder: 1,
		},
		{
			name:        "reversed order",
			inputs:      []string{"encoder_hidden_states", "decoder_input_ids"},
			wantToken:   1,
			wantEncoder: 0,
		},
		{
			name:        "hidden alias",
			inputs:      []string{"input_ids", "last_hidden_state"},
			wantToken:   0,
			wantEncoder: 1,
		},
		{
			name:        "case insensitive",
			inputs:      []string{"Input_IDs", "Encoder_Outputs"},
			wantToken:   0,
			wantEncoder: 1,
		},
		{
			name:    "unmatched input",
			inputs:  []string{"input_ids", "attention_mask"},
			wantErr: true,
		},
		{
			name:    "two token inputs",
			inputs:  []string{"input_ids", "decoder_input_ids"},
			wantErr: true,
		},
		{
			name:    "two encoder inputs",
			inputs:  []string{"encoder_outputs", "hidden_states"},
			wantErr: true,
		},
		{
			name:    "too few inputs",
			inputs:  []string{"input_ids"},
			wantErr: true,
		},
		{
			name:    "too many inputs",
			inputs:  []string{"input_ids", "encoder_hidden_states", "use_cache_branch"},
			wantErr: true,
		},
		{
			name:    "no inputs",
			inputs:  nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ResolveInputBinding(tt.inputs)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %v, got binding %+v", tt.inputs, b)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveInputBinding(%v) failed: %v", tt.inputs, err)
			}
			if b.TokenInput != tt.wantToken {
				t.Errorf("TokenInput = %d, want %d", b.TokenInput, tt.wantToken)
			}
			if b.EncoderInput != tt.wantEncoder {
				t.Errorf("EncoderInput = %d, want %d", b.EncoderInput, tt.wantEncoder)
			}
			if b.TokenInputName != tt.inputs[tt.wantToken] {
				t.Errorf("TokenInputName = %q, want %q", b.TokenInputName, tt.inputs[tt.wantToken])
			}
		})
	}
}

// "decoder_input_ids" contains "decoder" but must never resolve to the
// encoder role.
func TestResolveInputBindingTokenPatternPriority(t *testing.T) {
	b, err := ResolveInputBinding([]string{"decoder_input_ids", "encoder_hidden_states"})
	if err != nil {
		t.Fatalf("ResolveInputBinding failed: %v", err)
	}
	if b.TokenInput != 0 || b.EncoderInput != 1 {
		t.Errorf("binding = %+v, want token=0 encoder=1", b)
	}
}
