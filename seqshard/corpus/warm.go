package corpus

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"
)

// Warm indexes every uncached position of positions (all positions when
// nil) using up to workers goroutines. Positions are split into disjoint
// contiguous ranges, one per task, so each cache slot has a single writer.
// positions must not contain duplicates.
func (s *Store) Warm(ctx context.Context, positions []int, workers int) error {
	if positions == nil {
		positions = make([]int, s.Len())
		for i := range positions {
			positions[i] = i
		}
	}
	if len(positions) == 0 {
		return nil
	}
	workers = min(max(workers, 1), len(positions))
	chunk := (len(positions) + workers - 1) / workers

	p := pool.New().WithMaxGoroutines(workers).WithContext(ctx).WithCancelOnError()
	for start := 0; start < len(positions); start += chunk {
		part := positions[start:min(start+chunk, len(positions))]
		p.Go(func(ctx context.Context) error {
			for _, pos := range part {
				if err := ctx.Err(); err != nil {
					return err
				}
				if s.srcIdx[pos] == nil {
					seq, err := index(s.src, pos)
					if err != nil {
						return err
					}
					s.srcIdx[pos] = seq
				}
				if s.tgt != nil && s.tgtIdx[pos] == nil {
					seq, err := index(s.tgt, pos)
					if err != nil {
						return err
					}
					s.tgtIdx[pos] = seq
				}
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return fmt.Errorf("warm %d positions: %w", len(positions), err)
	}

	s.logger.Debug().
		Int("positions", len(positions)).
		Int("workers", workers).
		Msg("Warmed index cache")
	return nil
}
