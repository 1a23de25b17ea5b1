package batching

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes how well a plan packs its examples.
type Summary struct {
	Batches       int
	Examples      int
	Discarded     int
	MeanSourceLen float64
	MaxSourceLen  float64
	// PaddingEfficiency is real source tokens over padded source tokens
	// (longest member x batch size, summed over batches). 1 means no padding.
	PaddingEfficiency float64
}

// Summarize computes length and padding statistics for plan.
func Summarize(plan Plan, lengthOf LengthFunc) Summary {
	s := Summary{
		Batches:   len(plan.Batches),
		Examples:  plan.Examples(),
		Discarded: len(plan.Discarded),
	}
	if s.Examples == 0 {
		return s
	}

	lens := make([]float64, 0, s.Examples)
	var padded float64
	for _, batch := range plan.Batches {
		batchLens := make([]float64, len(batch))
		for i, pos := range batch {
			lsrc, _ := lengthOf(pos)
			batchLens[i] = float64(lsrc)
		}
		padded += floats.Max(batchLens) * float64(len(batch))
		lens = append(lens, batchLens...)
	}

	s.MeanSourceLen = stat.Mean(lens, nil)
	s.MaxSourceLen = floats.Max(lens)
	if padded > 0 {
		s.PaddingEfficiency = floats.Sum(lens) / padded
	}
	return s
}
