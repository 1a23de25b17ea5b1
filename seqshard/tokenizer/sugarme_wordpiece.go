package tokenizer

import (
	"fmt"
	"os"

	tk "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/model/wordpiece"
	"github.com/sugarme/tokenizer/normalizer"
	"github.com/sugarme/tokenizer/pretokenizer"
)

// SugarWordPiece wraps sugarme/tokenizer WordPiece (BERT-style) and returns
// word pieces as strings. No special tokens are added here: the corpus wraps
// every sequence with the vocabulary's BOS/EOS itself.
type SugarWordPiece struct {
	t *tk.Tokenizer
}

// NewSugarWordPiece loads vocab.txt and builds a BERT WordPiece tokenizer
func NewSugarWordPiece(vocabPath string) (*SugarWordPiece, error) {
	fi, err := os.Stat(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("wordpiece vocab %s: %w", vocabPath, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("wordpiece vocab %s is a directory", vocabPath)
	}

	var wp wordpiece.WordPiece
	if nw, err := wordpiece.NewWordPieceFromFile(vocabPath, "[UNK]"); err == nil {
		wp = nw
	} else {
		wp = wordpiece.NewWordPieceBuilder().Files(vocabPath).Build()
	}

	t := tk.NewTokenizer(wp)
	t.WithNormalizer(normalizer.NewBertNormalizer(true, true, true, true))
	t.WithPreTokenizer(pretokenizer.NewBertPreTokenizer())

	return &SugarWordPiece{t: t}, nil
}

func (s *SugarWordPiece) Tokenize(line string) ([]string, error) {
	enc, err := s.t.Encode(tk.NewSingleEncodeInput(tk.NewInputSequence(line)), false)
	if err != nil {
		return nil, fmt.Errorf("wordpiece encode: %w", err)
	}
	tokens := enc.GetTokens()
	out := make([]string, len(tokens))
	copy(out, tokens)
	return out, nil
}
