// Package tokenizer loads a HuggingFace tokenizer.json and converts
// decoded token ids back to text. The id-to-piece mapping is built once
// at load time and is immutable afterwards.
package tokenizer

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// wordBoundary is the byte-level BPE marker for a preceding word boundary.
// It is rendered as a literal space in the final text.
const wordBoundary = "Ġ"

// specialOpen/specialClose bracket special tokens such as <s> and </s>.
const (
	specialOpen  = "<"
	specialClose = ">"
)

// Vocabulary maps token ids to their string pieces.
type Vocabulary struct {
	pieces  map[int64]string
	special map[int64]bool

	bosID int64
	eosID int64
	padID int64
}

// tokenizerFile mirrors the parts of tokenizer.json we need.
type tokenizerFile struct {
	AddedTokens []struct {
		ID      int64  `json:"id"`
		Content string `json:"content"`
		Special bool   `json:"special"`
	} `json:"added_tokens"`
	Model struct {
		Vocab map[string]int64 `json:"vocab"`
	} `json:"model"`
}

// Load reads a tokenizer.json from disk and builds the vocabulary.
func Load(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tokenizer file: %w", err)
	}
	return Parse(data)
}

// Parse builds the vocabulary from tokenizer.json contents. The vocab
// mapping is inverted into id-to-piece form; added tokens overlay the
// base vocab. Fails if the beginning-of-sequence or end-of-sequence
// token cannot be resolved.
func Parse(data []byte) (*Vocabulary, error) {
	var tf tokenizerFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("failed to parse tokenizer file: %w", err)
	}
	if len(tf.Model.Vocab) == 0 && len(tf.AddedTokens) == 0 {
		return nil, fmt.Errorf("tokenizer file has no vocabulary")
	}

	v := &Vocabulary{
		pieces:  make(map[int64]string, len(tf.Model.Vocab)+len(tf.AddedTokens)),
		special: make(map[int64]bool),
		bosID:   -1,
		eosID:   -1,
		padID:   -1,
	}

	for piece, id := range tf.Model.Vocab {
		v.pieces[id] = piece
	}
	for _, tok := range tf.AddedTokens {
		v.pieces[tok.ID] = tok.Content
		if tok.Special {
			v.special[tok.ID] = true
		}
	}

	for id, piece := range v.pieces {
		switch piece {
		case "<s>":
			v.bosID = id
		case "</s>":
			v.eosID = id
		case "<pad>":
			v.padID = id
		}
	}
	if v.bosID < 0 {
		return nil, fmt.Errorf("beginning-of-sequence token <s> not found in vocabulary")
	}
	if v.eosID < 0 {
		return nil, fmt.Errorf("end-of-sequence token </s> not found in vocabulary")
	}

	return v, nil
}

// BOS returns the beginning-of-sequence token id.
func (v *Vocabulary) BOS() int64 { return v.bosID }

// EOS returns the end-of-sequence token id.
func (v *Vocabulary) EOS() int64 { return v.eosID }

// Pad returns the padding token id, or -1 if the tokenizer declares none.
func (v *Vocabulary) Pad() int64 { return v.padID }

// Size returns the number of known token ids.
func (v *Vocabulary) Size() int { return len(v.pieces) }

// Piece returns the string piece for a token id.
func (v *Vocabulary) Piece(id int64) (string, bool) {
	piece, ok := v.pieces[id]
	return piece, ok
}

// Detokenize converts a token id sequence to text. Unknown ids and
// special tokens are skipped, the word-boundary marker becomes a space,
// and the result is trimmed of leading/trailing whitespace.
func (v *Vocabulary) Detokenize(ids []int64) string {
	var sb strings.Builder
	for _, id := range ids {
		piece, ok := v.pieces[id]
		if !ok {
			continue
		}
		if v.isSpecial(id, piece) {
			continue
		}
		sb.WriteString(strings.ReplaceAll(piece, wordBoundary, " "))
	}
	return strings.TrimSpace(sb.String())
}

func (v *Vocabulary) isSpecial(id int64, piece string) bool {
	if v.special[id] {
		return true
	}
	return len(piece) > 1 && strings.HasPrefix(piece, specialOpen) && strings.HasSuffix(piece, specialClose)
}
