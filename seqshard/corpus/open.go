package corpus

import (
	"github.com/ZanzyTHEbar/seqshard/seqshard/batching"
	"github.com/ZanzyTHEbar/seqshard/seqshard/common"
	"github.com/ZanzyTHEbar/seqshard/seqshard/config"
	"github.com/ZanzyTHEbar/seqshard/seqshard/tokenizer"
	"github.com/ZanzyTHEbar/seqshard/seqshard/vocab"

	"github.com/dustin/go-humanize"
)

// Open builds the tokenizers and vocabularies named by ds, reads the corpus
// files and returns a ready Store. A non-zero ds.Seed makes shuffling
// reproducible unless opts inject their own random source.
func Open(ds config.DatasetConfig, opts ...Option) (*Store, error) {
	batchType, err := batching.ParseBatchType(ds.BatchType)
	if err != nil {
		return nil, err
	}

	eu := common.NewErrorUtils()
	src, srcBytes, err := openSide(ds.Source)
	if err != nil {
		return nil, eu.WrapError(err, "source %s", ds.Source.Path)
	}
	var tgt *Side
	var tgtBytes int64
	if ds.Paired() {
		tgt, tgtBytes, err = openSide(ds.Target)
		if err != nil {
			return nil, eu.WrapError(err, "target %s", ds.Target.Path)
		}
	}

	if ds.Seed != 0 {
		opts = append([]Option{WithSeed(ds.Seed)}, opts...)
	}
	s, err := New(src, tgt, Settings{
		ShardSize: ds.ShardSize,
		BatchSize: ds.BatchSize,
		BatchType: batchType,
		MaxLength: ds.MaxLength,
		Workers:   ds.Workers,
	}, opts...)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("source_bytes", humanize.Bytes(uint64(srcBytes))).
		Str("target_bytes", humanize.Bytes(uint64(tgtBytes))).
		Msg("Loaded corpus files")
	return s, nil
}

func openSide(sc config.SideConfig) (*Side, int64, error) {
	var voc vocab.Vocabulary
	if sc.Vocab != "" {
		v, err := vocab.Load(sc.Vocab)
		if err != nil {
			return nil, 0, err
		}
		voc = v
	} else {
		// every token maps to <unk>; useful for length-only runs
		voc = vocab.New(nil)
	}

	tok, err := tokenizer.New(sc.Tokenizer, sc.Vocab)
	if err != nil {
		return nil, 0, err
	}
	return LoadSide(sc.Path, tok, voc)
}
