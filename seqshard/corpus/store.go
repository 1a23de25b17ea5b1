package corpus

import (
	"fmt"
	"math/rand/v2"
	"time"

	internal "github.com/ZanzyTHEbar/seqshard/seqshard"
	"github.com/ZanzyTHEbar/seqshard/seqshard/batching"
	"github.com/ZanzyTHEbar/seqshard/seqshard/common"
	"github.com/ZanzyTHEbar/seqshard/seqshard/tokenizer"
	"github.com/ZanzyTHEbar/seqshard/seqshard/vocab"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

// Side is one language of a dataset: its raw lines plus the collaborators
// that turn a line into an index sequence.
type Side struct {
	Name      string
	Lines     []string
	Tokenizer tokenizer.Tokenizer
	Vocab     vocab.Vocabulary
}

// LoadSide reads path (plain, .gz or .xz) into a Side.
func LoadSide(path string, tok tokenizer.Tokenizer, voc vocab.Vocabulary) (*Side, int64, error) {
	lines, size, err := ReadLines(path)
	if err != nil {
		return nil, 0, err
	}
	return &Side{Name: path, Lines: lines, Tokenizer: tok, Vocab: voc}, size, nil
}

// Settings is the capacity and filtering configuration of a Store.
type Settings struct {
	// ShardSize is the number of positions per shard; 0 means the whole corpus.
	ShardSize int
	BatchSize int
	BatchType batching.BatchType
	// MaxLength drops examples whose source or target index sequence is
	// longer; 0 disables filtering.
	MaxLength int
	// Workers > 1 pre-tokenizes each shard in parallel before filtering.
	Workers int
}

// Store holds the raw lines of a source and optional target corpus, the
// lazily filled index cache and the iteration permutation.
//
// A Store is driven by one Epoch at a time; it is not safe to iterate two
// epochs of the same Store concurrently.
type Store struct {
	src *Side
	tgt *Side

	// srcIdx[pos] is nil until the source line at pos has been indexed.
	srcIdx [][]int
	tgtIdx [][]int
	order  []int

	shardSize int
	maxLength int
	workers   int

	planner     *batching.Planner
	rng         *rand.Rand
	logger      zerolog.Logger
	metrics     *common.PipelineMetrics
	fingerprint string
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger of the store and its planner
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithRand injects the random source used for both shuffles
func WithRand(rng *rand.Rand) Option {
	return func(s *Store) { s.rng = rng }
}

// WithSeed makes shuffling reproducible
func WithSeed(seed uint64) Option {
	return func(s *Store) { s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithMetrics shares a metrics collector across stores
func WithMetrics(m *common.PipelineMetrics) Option {
	return func(s *Store) { s.metrics = m }
}

// New builds a Store over src and, if not nil, the parallel tgt.
// It fails when the vocabularies disagree on special indices, when the two
// sides have different line counts, or when the settings are invalid.
func New(src, tgt *Side, settings Settings, opts ...Option) (*Store, error) {
	vu := common.NewValidationUtils()
	if src == nil {
		return nil, fmt.Errorf("source side is required: %w", common.ErrInvalidConfig)
	}
	if err := vu.ValidateNonNegative(settings.ShardSize, "shard size"); err != nil {
		return nil, err
	}
	if err := vu.ValidateNonNegative(settings.MaxLength, "max length"); err != nil {
		return nil, err
	}
	if tgt != nil {
		if err := vocab.CheckCompatible(src.Vocab, tgt.Vocab); err != nil {
			return nil, err
		}
		if len(src.Lines) != len(tgt.Lines) {
			return nil, fmt.Errorf("%d-%d lines in %s-%s: %w",
				len(src.Lines), len(tgt.Lines), src.Name, tgt.Name, common.ErrLineCountMismatch)
		}
	}
	if len(src.Lines) == 0 {
		return nil, fmt.Errorf("%s: %w", src.Name, common.ErrEmptyCorpus)
	}

	s := &Store{
		src:       src,
		tgt:       tgt,
		srcIdx:    make([][]int, len(src.Lines)),
		order:     make([]int, len(src.Lines)),
		shardSize: settings.ShardSize,
		maxLength: settings.MaxLength,
		workers:   max(settings.Workers, 1),
		logger:    internal.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		now := uint64(time.Now().UnixNano())
		s.rng = rand.New(rand.NewPCG(now, now>>1))
	}
	if s.metrics == nil {
		s.metrics = common.NewPipelineMetrics()
	}
	s.logger = s.logger.With().Str("component", "corpus").Logger()

	planner, err := batching.NewPlanner(settings.BatchSize, settings.BatchType, batching.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	s.planner = planner

	if tgt != nil {
		s.tgtIdx = make([][]int, len(tgt.Lines))
	}
	for i := range s.order {
		s.order[i] = i
	}
	if s.shardSize == 0 {
		s.shardSize = len(s.order)
		s.logger.Info().Int("shard_size", s.shardSize).Msg("shard_size set to corpus size")
	}

	var tgtLines []string
	tgtName := ""
	if tgt != nil {
		tgtLines = tgt.Lines
		tgtName = tgt.Name
	}
	s.fingerprint = fingerprint(src.Lines, tgtLines)

	s.logger.Info().
		Str("source", src.Name).
		Str("target", tgtName).
		Str("sentences", fmt.Sprintf("%s-%s", humanize.Comma(int64(len(src.Lines))), humanize.Comma(int64(len(tgtLines))))).
		Str("fingerprint", s.fingerprint).
		Msg("Read dataset")
	return s, nil
}

// Len returns the number of examples in the corpus.
func (s *Store) Len() int { return len(s.src.Lines) }

// Paired reports whether the store has a target side.
func (s *Store) Paired() bool { return s.tgt != nil }

// ShardSize returns the effective shard size (never 0).
func (s *Store) ShardSize() int { return s.shardSize }

// Fingerprint is a BLAKE3 hex digest of all lines of the dataset.
func (s *Store) Fingerprint() string { return s.fingerprint }

// Metrics returns the collector updated by every epoch.
func (s *Store) Metrics() *common.PipelineMetrics { return s.metrics }

// Vocabularies returns the source vocabulary and, for paired stores, the
// target one.
func (s *Store) Vocabularies() (src, tgt vocab.Vocabulary) {
	if s.tgt != nil {
		tgt = s.tgt.Vocab
	}
	return s.src.Vocab, tgt
}

// Planner returns the batch planner configured for this store.
func (s *Store) Planner() *batching.Planner { return s.planner }

// Indexed returns the cached index sequences of pos. ok is false until the
// source side of pos has been indexed; tgt is nil when not yet indexed or
// for monolingual stores. The slices must not be modified.
func (s *Store) Indexed(pos int) (src, tgt []int, ok bool) {
	if pos < 0 || pos >= len(s.srcIdx) || s.srcIdx[pos] == nil {
		return nil, nil, false
	}
	if s.tgtIdx != nil {
		tgt = s.tgtIdx[pos]
	}
	return s.srcIdx[pos], tgt, true
}

// lengths returns the cached source and target lengths of a kept position.
func (s *Store) lengths(pos int) (int, int) {
	ltgt := 0
	if s.tgtIdx != nil {
		ltgt = len(s.tgtIdx[pos])
	}
	return len(s.srcIdx[pos]), ltgt
}

// index converts one line into [BOS] + vocab(tokens) + [EOS].
func index(side *Side, pos int) ([]int, error) {
	tokens, err := side.Tokenizer.Tokenize(side.Lines[pos])
	if err != nil {
		return nil, fmt.Errorf("tokenize %s:%d: %w", side.Name, pos+1, err)
	}
	seq := make([]int, 0, len(tokens)+2)
	seq = append(seq, side.Vocab.Index(side.Vocab.BOSToken()))
	for _, t := range tokens {
		seq = append(seq, side.Vocab.Index(t))
	}
	seq = append(seq, side.Vocab.Index(side.Vocab.EOSToken()))
	return seq, nil
}

func countUnks(seq []int, unk int) int {
	n := 0
	for _, idx := range seq {
		if idx == unk {
			n++
		}
	}
	return n
}
