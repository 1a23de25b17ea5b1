package corpus

import (
	"github.com/ZanzyTHEbar/seqshard/seqshard/common"

	"github.com/rs/zerolog"
)

// shardResult is the filtered, indexed view of one shard.
type shardResult struct {
	// lens[i] is the source length of positions[i].
	lens      []int
	positions []int
	filtered  []int
	counts    common.ShardCounts
}

// getShard indexes the positions of shard that are not cached yet, drops
// examples longer than maxLength and returns the survivors with their
// source lengths. The target of an example whose source is too long is
// never indexed.
func (s *Store) getShard(shard []int, logger zerolog.Logger) (shardResult, error) {
	res := shardResult{
		lens:      make([]int, 0, len(shard)),
		positions: make([]int, 0, len(shard)),
	}
	for _, pos := range shard {
		if s.srcIdx[pos] == nil {
			seq, err := index(s.src, pos)
			if err != nil {
				return res, err
			}
			s.srcIdx[pos] = seq
		}
		if s.maxLength > 0 && len(s.srcIdx[pos]) > s.maxLength {
			res.filtered = append(res.filtered, pos)
			continue
		}

		if s.tgt != nil {
			if s.tgtIdx[pos] == nil {
				seq, err := index(s.tgt, pos)
				if err != nil {
					return res, err
				}
				s.tgtIdx[pos] = seq
			}
			if s.maxLength > 0 && len(s.tgtIdx[pos]) > s.maxLength {
				res.filtered = append(res.filtered, pos)
				continue
			}
		}

		res.positions = append(res.positions, pos)
		res.lens = append(res.lens, len(s.srcIdx[pos]))

		res.counts.SourceTokens += len(s.srcIdx[pos])
		res.counts.SourceUnks += countUnks(s.srcIdx[pos], s.src.Vocab.UnkIndex())
		if s.tgt != nil {
			res.counts.TargetTokens += len(s.tgtIdx[pos])
			res.counts.TargetUnks += countUnks(s.tgtIdx[pos], s.tgt.Vocab.UnkIndex())
		}

		// Shard slices never exceed shardSize; this only bounds the output
		// if slicing ever changes.
		if len(res.positions) == s.shardSize {
			break
		}
	}
	res.counts.Kept = len(res.positions)
	res.counts.Filtered = len(res.filtered)

	logger.Info().
		Int("examples", res.counts.Kept).
		Int("src_tokens", res.counts.SourceTokens).
		Int("tgt_tokens", res.counts.TargetTokens).
		Int("src_oovs", res.counts.SourceUnks).
		Int("tgt_oovs", res.counts.TargetUnks).
		Int("filtered", res.counts.Filtered).
		Msg("Built shard")
	return res, nil
}
