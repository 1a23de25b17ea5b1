// Package tensorize turns emitted batches into padded gomlx tensors for a
// training loop.
package tensorize

import (
	"fmt"

	"github.com/ZanzyTHEbar/seqshard/seqshard/corpus"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// Pad copies seqs into a dense [len(seqs)][maxLen] matrix filled with pad.
func Pad(seqs [][]int, pad int) [][]int32 {
	maxLen := 0
	for _, s := range seqs {
		maxLen = max(maxLen, len(s))
	}
	out := make([][]int32, len(seqs))
	for i, s := range seqs {
		row := make([]int32, maxLen)
		for j := range row {
			if j < len(s) {
				row[j] = int32(s[j])
			} else {
				row[j] = int32(pad)
			}
		}
		out[i] = row
	}
	return out
}

// ToTensors converts b into int32 tensors shaped [batch, maxLen]. target is
// nil for monolingual batches.
func ToTensors(b corpus.Batch, pad int) (source, target *tensors.Tensor, err error) {
	if b.Len() == 0 {
		return nil, nil, fmt.Errorf("cannot tensorize an empty batch")
	}
	if len(b.Source) != b.Len() {
		return nil, nil, fmt.Errorf("batch has %d positions but %d source sequences", b.Len(), len(b.Source))
	}
	source = tensors.FromAnyValue(Pad(b.Source, pad))
	if b.Target != nil {
		if len(b.Target) != b.Len() {
			return nil, nil, fmt.Errorf("batch has %d positions but %d target sequences", b.Len(), len(b.Target))
		}
		target = tensors.FromAnyValue(Pad(b.Target, pad))
	}
	return source, target, nil
}
