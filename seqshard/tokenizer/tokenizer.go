package tokenizer

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/seqshard/seqshard/common"
)

// Tokenizer splits one raw line into string tokens.
// Implementations must be deterministic: the corpus caches results by line position.
type Tokenizer interface {
	Tokenize(line string) ([]string, error)
}

// Whitespace splits on Unicode white space.
type Whitespace struct{}

// NewWhitespace returns a whitespace tokenizer
func NewWhitespace() *Whitespace { return &Whitespace{} }

func (Whitespace) Tokenize(line string) ([]string, error) {
	return strings.Fields(line), nil
}

// New selects a tokenizer by name ("whitespace", "wordpiece").
// vocabPath is only used by vocabulary-backed tokenizers.
func New(name, vocabPath string) (Tokenizer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "whitespace", "space":
		return NewWhitespace(), nil
	case "wordpiece", "bert":
		if vocabPath == "" {
			return nil, fmt.Errorf("wordpiece tokenizer needs a vocab file: %w", common.ErrTokenizerUnsupported)
		}
		return NewSugarWordPiece(vocabPath)
	default:
		return nil, fmt.Errorf("tokenizer %q: %w", name, common.ErrTokenizerUnsupported)
	}
}
