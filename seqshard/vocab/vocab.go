package vocab

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/seqshard/seqshard/common"

	"github.com/armon/go-radix"
)

// Special tokens always occupy the first four indices of a Vocab.
const (
	StrPad = "<pad>"
	StrUnk = "<unk>"
	StrBOS = "<bos>"
	StrEOS = "<eos>"

	IdxPad = 0
	IdxUnk = 1
	IdxBOS = 2
	IdxEOS = 3

	// StrWordPieceUnk is what BERT-style WordPiece emits for unknown
	// words. It resolves to IdxUnk instead of getting an entry of its own.
	StrWordPieceUnk = "[UNK]"
)

// Vocabulary is the token<->index lookup the corpus needs.
// Index must return UnkIndex() for tokens it does not know.
type Vocabulary interface {
	Index(token string) int
	Token(idx int) string
	Size() int
	PadIndex() int
	UnkIndex() int
	BOSIndex() int
	EOSIndex() int
	BOSToken() string
	EOSToken() string
}

// Vocab stores tokens in a patricia tree for O(k) lookups, k being the
// token length, plus a dense slice for the reverse direction.
// It is read-only after construction and safe for concurrent use.
type Vocab struct {
	tree   *radix.Tree
	tokens []string
}

// New builds a Vocab from tokens in order. Specials are placed first;
// repeated tokens keep their first index.
func New(tokens []string) *Vocab {
	v := &Vocab{
		tree:   radix.New(),
		tokens: make([]string, 0, len(tokens)+4),
	}
	for _, s := range []string{StrPad, StrUnk, StrBOS, StrEOS} {
		v.add(s)
	}
	v.tree.Insert(StrWordPieceUnk, IdxUnk)
	for _, t := range tokens {
		v.add(t)
	}
	return v
}

func (v *Vocab) add(token string) {
	if token == "" {
		return
	}
	if v.Contains(token) {
		return
	}
	v.tree.Insert(token, len(v.tokens))
	v.tokens = append(v.tokens, token)
}

// Load reads a vocabulary file with one token per line. Anything after a
// tab (e.g. a frequency column) is ignored.
func Load(path string) (*Vocab, error) {
	if strings.TrimSpace(path) == "" {
		return nil, common.ErrPathEmpty
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocab %s: %w", path, err)
	}
	defer f.Close()

	tokens := make([]string, 0, 1024)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		tok, _, _ := strings.Cut(scanner.Text(), "\t")
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		tokens = append(tokens, tok)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read vocab %s: %w", path, err)
	}
	return New(tokens), nil
}

func (v *Vocab) Index(token string) int {
	if idx, ok := v.tree.Get(token); ok {
		return idx.(int)
	}
	return IdxUnk
}

// Contains reports whether token resolves to an index without falling
// back to UnkIndex.
func (v *Vocab) Contains(token string) bool {
	_, ok := v.tree.Get(token)
	return ok
}

func (v *Vocab) Token(idx int) string {
	if idx < 0 || idx >= len(v.tokens) {
		return StrUnk
	}
	return v.tokens[idx]
}

func (v *Vocab) Size() int        { return len(v.tokens) }
func (v *Vocab) PadIndex() int    { return IdxPad }
func (v *Vocab) UnkIndex() int    { return IdxUnk }
func (v *Vocab) BOSIndex() int    { return IdxBOS }
func (v *Vocab) EOSIndex() int    { return IdxEOS }
func (v *Vocab) BOSToken() string { return StrBOS }
func (v *Vocab) EOSToken() string { return StrEOS }

// WithPrefix returns all tokens starting with prefix in lexical order.
func (v *Vocab) WithPrefix(prefix string) []string {
	var out []string
	v.tree.WalkPrefix(prefix, func(key string, _ interface{}) bool {
		out = append(out, key)
		return false
	})
	return out
}

// CheckCompatible fails if src and tgt disagree on the pad, bos or eos index.
func CheckCompatible(src, tgt Vocabulary) error {
	if src.PadIndex() != tgt.PadIndex() {
		return fmt.Errorf("pad %d != %d: %w", src.PadIndex(), tgt.PadIndex(), common.ErrSpecialIndexMismatch)
	}
	if src.BOSIndex() != tgt.BOSIndex() {
		return fmt.Errorf("bos %d != %d: %w", src.BOSIndex(), tgt.BOSIndex(), common.ErrSpecialIndexMismatch)
	}
	if src.EOSIndex() != tgt.EOSIndex() {
		return fmt.Errorf("eos %d != %d: %w", src.EOSIndex(), tgt.EOSIndex(), common.ErrSpecialIndexMismatch)
	}
	return nil
}

var _ Vocabulary = (*Vocab)(nil)
