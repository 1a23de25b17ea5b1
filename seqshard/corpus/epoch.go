package corpus

import (
	"context"
	"io"
	"iter"
	"slices"
	"time"

	"github.com/ZanzyTHEbar/seqshard/seqshard/batching"
	"github.com/ZanzyTHEbar/seqshard/seqshard/common"
	"github.com/ZanzyTHEbar/seqshard/seqshard/indexing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Batch is one unit handed to the training loop. The three slices are
// co-indexed. Target is nil for monolingual stores. Sequences alias the
// store cache and must be treated as read-only.
type Batch struct {
	Positions []int
	Source    [][]int
	Target    [][]int
}

// Len returns the number of examples in the batch.
func (b Batch) Len() int { return len(b.Positions) }

// EpochStats accounts for every position of one pass over the corpus:
// each one is either emitted once, filtered or discarded.
type EpochStats struct {
	ID        uuid.UUID
	Shards    int
	Batches   int
	Emitted   int
	Counts    common.ShardCounts
	Excluded  *indexing.PositionSet
	Started   time.Time
	Completed bool
}

// Filtered returns the number of examples dropped for exceeding max length.
func (es EpochStats) Filtered() int { return es.Excluded.Count(indexing.Filtered) }

// Discarded returns the number of examples that did not fit an empty batch.
func (es EpochStats) Discarded() int { return es.Excluded.Count(indexing.Discarded) }

// Dropped returns the number of distinct examples that reached no batch.
func (es EpochStats) Dropped() int { return int(es.Excluded.Union().GetCardinality()) }

// Epoch is a single randomized pass over a Store. Shards are materialized
// and packed only when their first batch is requested.
type Epoch struct {
	store  *Store
	logger zerolog.Logger

	shards    [][]int
	nextShard int

	batches   [][]int
	nextBatch int

	stats EpochStats
	done  bool
}

// Epoch shuffles the position permutation and returns a fresh pass over it.
// Only the index cache carries over between epochs.
func (s *Store) Epoch() *Epoch {
	s.rng.Shuffle(len(s.order), func(i, j int) { s.order[i], s.order[j] = s.order[j], s.order[i] })

	id := uuid.New()
	e := &Epoch{
		store:  s,
		logger: s.logger.With().Str("epoch", id.String()).Logger(),
		stats: EpochStats{
			ID:       id,
			Excluded: indexing.NewPositionSet(),
			Started:  time.Now(),
		},
	}
	e.logger.Info().Int("examples", len(s.order)).Msg("Shuffled Dataset")

	perm := slices.Clone(s.order)
	for i := 0; i < len(perm); i += s.shardSize {
		e.shards = append(e.shards, perm[i:min(i+s.shardSize, len(perm))])
	}
	return e
}

// Next returns the next batch, or io.EOF once every shard is exhausted.
// A cancelled ctx stops the pass before the next shard is loaded.
func (e *Epoch) Next(ctx context.Context) (Batch, error) {
	for e.nextBatch >= len(e.batches) {
		if e.done {
			return Batch{}, io.EOF
		}
		if e.nextShard >= len(e.shards) {
			e.finish()
			return Batch{}, io.EOF
		}
		if err := ctx.Err(); err != nil {
			return Batch{}, err
		}
		if err := e.loadShard(ctx, e.shards[e.nextShard]); err != nil {
			return Batch{}, common.NewErrorUtils().LogAndWrapError(e.logger, err, "load shard %d of %d", e.nextShard+1, len(e.shards))
		}
		e.nextShard++
	}

	positions := e.batches[e.nextBatch]
	e.nextBatch++
	e.stats.Batches++
	e.stats.Emitted += len(positions)
	e.store.metrics.RecordBatch(len(positions))
	return e.store.materialize(positions), nil
}

// Stats returns the accounting gathered so far.
func (e *Epoch) Stats() EpochStats { return e.stats }

// ID identifies the epoch in logs.
func (e *Epoch) ID() uuid.UUID { return e.stats.ID }

func (e *Epoch) loadShard(ctx context.Context, shard []int) error {
	s := e.store
	if s.workers > 1 {
		if err := s.Warm(ctx, shard, s.workers); err != nil {
			return err
		}
	}

	res, err := s.getShard(shard, e.logger)
	if err != nil {
		return err
	}
	for _, pos := range res.filtered {
		e.stats.Excluded.Add(indexing.Filtered, pos)
	}

	plan := s.planner.Build(res.lens, res.positions, s.lengths)
	for _, pos := range plan.Discarded {
		e.stats.Excluded.Add(indexing.Discarded, pos)
	}

	s.rng.Shuffle(len(plan.Batches), func(i, j int) {
		plan.Batches[i], plan.Batches[j] = plan.Batches[j], plan.Batches[i]
	})
	e.batches = plan.Batches
	e.nextBatch = 0

	e.stats.Shards++
	e.stats.Counts.Add(res.counts)
	s.metrics.RecordShard(res.counts)
	s.metrics.RecordDiscarded(len(plan.Discarded))

	if e.logger.GetLevel() <= zerolog.DebugLevel {
		summary := batching.Summarize(plan, s.lengths)
		e.logger.Debug().
			Float64("mean_src_len", summary.MeanSourceLen).
			Float64("max_src_len", summary.MaxSourceLen).
			Float64("padding_efficiency", summary.PaddingEfficiency).
			Msg("Packed shard")
	}
	e.logger.Info().Int("batches", len(plan.Batches)).Msg("Shuffled shard")
	return nil
}

func (e *Epoch) finish() {
	e.done = true
	e.stats.Completed = true
	e.store.metrics.RecordEpoch(e.stats.Started)
	e.logger.Info().
		Int("shards", e.stats.Shards).
		Int("batches", e.stats.Batches).
		Int("emitted", e.stats.Emitted).
		Int("filtered", e.stats.Filtered()).
		Int("discarded", e.stats.Discarded()).
		Int("dropped", e.stats.Dropped()).
		Str("elapsed", common.FormatDuration(time.Since(e.stats.Started))).
		Msg("Finished epoch")
}

// materialize gathers the cached sequences of positions.
func (s *Store) materialize(positions []int) Batch {
	b := Batch{
		Positions: positions,
		Source:    make([][]int, len(positions)),
	}
	if s.tgtIdx != nil {
		b.Target = make([][]int, len(positions))
	}
	for i, pos := range positions {
		b.Source[i] = s.srcIdx[pos]
		if b.Target != nil {
			b.Target[i] = s.tgtIdx[pos]
		}
	}
	return b
}

// Batches starts a new epoch and yields its batches. Iteration stops at the
// end of the epoch, on the first error, or when the consumer breaks out.
func (s *Store) Batches(ctx context.Context) iter.Seq2[Batch, error] {
	return func(yield func(Batch, error) bool) {
		e := s.Epoch()
		for {
			b, err := e.Next(ctx)
			if err == io.EOF {
				return
			}
			if !yield(b, err) || err != nil {
				return
			}
		}
	}
}
