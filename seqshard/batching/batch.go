package batching

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/seqshard/seqshard/common"
)

// BatchType selects the capacity rule of a batch.
type BatchType string

const (
	// Sentences caps the number of examples per batch.
	Sentences BatchType = "sentences"
	// Tokens caps the padded token cost (longest sequence x examples) per batch.
	Tokens BatchType = "tokens"
)

// ParseBatchType validates a configured batch type.
func ParseBatchType(s string) (BatchType, error) {
	switch BatchType(strings.ToLower(strings.TrimSpace(s))) {
	case Sentences:
		return Sentences, nil
	case Tokens:
		return Tokens, nil
	default:
		return "", fmt.Errorf("%q (want %q or %q): %w", s, Sentences, Tokens, common.ErrBadBatchType)
	}
}

// Batch is an open group of corpus positions plus the running maxima
// needed to test capacity online.
type Batch struct {
	size      int
	batchType BatchType
	positions []int
	maxSrc    int
	maxTgt    int
}

// NewBatch returns an empty batch with capacity size under batchType.
func NewBatch(size int, batchType BatchType) *Batch {
	return &Batch{size: size, batchType: batchType}
}

// Fits reports whether an example with lengths (lsrc, ltgt) can join the batch.
// Monolingual examples pass ltgt = 0.
func (b *Batch) Fits(lsrc, ltgt int) bool {
	n := len(b.positions) + 1
	switch b.batchType {
	case Tokens:
		if max(lsrc, b.maxSrc)*n > b.size {
			return false
		}
		if max(ltgt, b.maxTgt)*n > b.size {
			return false
		}
		return true
	case Sentences:
		return len(b.positions) < b.size
	default:
		return false
	}
}

// Add appends pos without checking capacity; call Fits first.
func (b *Batch) Add(pos, lsrc, ltgt int) {
	b.positions = append(b.positions, pos)
	b.maxSrc = max(lsrc, b.maxSrc)
	b.maxTgt = max(ltgt, b.maxTgt)
}

// Len returns the number of examples in the batch.
func (b *Batch) Len() int { return len(b.positions) }

// Positions returns the member positions in insertion order.
func (b *Batch) Positions() []int { return b.positions }

// MaxLengths returns the longest source and target lengths seen so far.
func (b *Batch) MaxLengths() (int, int) { return b.maxSrc, b.maxTgt }
