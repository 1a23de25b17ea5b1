package batching

import (
	"cmp"
	"slices"

	internal "github.com/ZanzyTHEbar/seqshard/seqshard"
	"github.com/ZanzyTHEbar/seqshard/seqshard/common"

	"github.com/rs/zerolog"
)

// LengthFunc returns the indexed source and target length of a position.
// Target length is 0 for monolingual corpora.
type LengthFunc func(pos int) (lsrc, ltgt int)

// Plan is the packing result for one shard.
type Plan struct {
	// Batches hold corpus positions in length-sorted packing order.
	Batches [][]int
	// Discarded positions did not fit even an empty batch.
	Discarded []int
}

// Examples returns the number of positions placed in batches.
func (p Plan) Examples() int {
	n := 0
	for _, b := range p.Batches {
		n += len(b)
	}
	return n
}

// Planner packs the kept positions of a shard into capacity-respecting batches.
type Planner struct {
	batchSize int
	batchType BatchType
	logger    zerolog.Logger
}

// Option configures a Planner
type Option func(*Planner)

// WithLogger sets the logger used for discard warnings
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Planner) { p.logger = logger }
}

// NewPlanner validates the capacity settings.
func NewPlanner(batchSize int, batchType BatchType, opts ...Option) (*Planner, error) {
	parsed, err := ParseBatchType(string(batchType))
	if err != nil {
		return nil, err
	}
	if err := common.NewValidationUtils().ValidatePositive(batchSize, "batch size"); err != nil {
		return nil, err
	}
	p := &Planner{
		batchSize: batchSize,
		batchType: parsed,
		logger:    internal.GetLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With().Str("component", "planner").Logger()
	return p, nil
}

func (p *Planner) BatchSize() int       { return p.batchSize }
func (p *Planner) BatchType() BatchType { return p.batchType }

// Build sorts positions by lens (stable, ascending) and packs them greedily.
// lens and positions are correlated by slice index. For each example the
// open batch is closed if the example does not fit, then the fit is tested
// once more; an example that does not fit an empty batch is discarded.
func (p *Planner) Build(lens []int, positions []int, lengthOf LengthFunc) Plan {
	order := make([]int, len(positions))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(lens[a], lens[b])
	})

	var plan Plan
	b := NewBatch(p.batchSize, p.batchType)
	for _, i := range order {
		pos := positions[i]
		lsrc, ltgt := lengthOf(pos)

		if !b.Fits(lsrc, ltgt) && b.Len() > 0 {
			plan.Batches = append(plan.Batches, b.Positions())
			b = NewBatch(p.batchSize, p.batchType)
		}

		if b.Fits(lsrc, ltgt) {
			b.Add(pos, lsrc, ltgt)
			continue
		}

		plan.Discarded = append(plan.Discarded, pos)
		p.logger.Warn().
			Int("pos", pos).
			Int("src_len", lsrc).
			Int("tgt_len", ltgt).
			Int("batch_size", p.batchSize).
			Msg("Example does not fit in empty batch [Discarded]")
	}

	if b.Len() > 0 {
		plan.Batches = append(plan.Batches, b.Positions())
	}
	return plan
}
