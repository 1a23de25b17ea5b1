package common

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationUtils(t *testing.T) {
	vu := NewValidationUtils()

	assert.NoError(t, vu.ValidateRequiredString("a.txt", "path"))
	err := vu.ValidateRequiredString("   ", "path")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Contains(t, err.Error(), "path cannot be empty")

	assert.NoError(t, vu.ValidateNonNegative(0, "shardSize"))
	assert.ErrorIs(t, vu.ValidateNonNegative(-1, "shardSize"), ErrInvalidConfig)

	assert.NoError(t, vu.ValidatePositive(1, "batchSize"))
	assert.ErrorIs(t, vu.ValidatePositive(0, "batchSize"), ErrInvalidConfig)
}

func TestErrorUtils(t *testing.T) {
	eu := NewErrorUtils()

	assert.Nil(t, eu.WrapError(nil, "ignored"))

	wrapped := eu.WrapError(ErrLineCountMismatch, "loading %s", "corpus")
	assert.ErrorIs(t, wrapped, ErrLineCountMismatch)
	assert.Equal(t, "loading corpus: "+ErrLineCountMismatch.Error(), wrapped.Error())

	logged := eu.LogAndWrapError(zerolog.Nop(), ErrBadBatchType, "batch type %q", "words")
	assert.ErrorIs(t, logged, ErrBadBatchType)
}

func TestPipelineMetrics(t *testing.T) {
	pm := NewPipelineMetrics()

	pm.RecordShard(ShardCounts{Kept: 3, Filtered: 1, SourceTokens: 12, TargetTokens: 10, SourceUnks: 2})
	pm.RecordShard(ShardCounts{Kept: 2, SourceTokens: 8, TargetTokens: 9, TargetUnks: 1})
	pm.RecordBatch(2)
	pm.RecordBatch(2)
	pm.RecordDiscarded(1)
	pm.RecordEpoch(time.Now().Add(-time.Millisecond))

	m := pm.GetMetrics()
	assert.Equal(t, int64(2), m["shards"])
	assert.Equal(t, int64(2), m["batches"])
	assert.Equal(t, int64(4), m["emitted"])
	assert.Equal(t, int64(1), m["discarded"])
	assert.Equal(t, 1, m["filtered"])
	assert.Equal(t, 20, m["source_tokens"])
	assert.Equal(t, 19, m["target_tokens"])
	assert.Equal(t, 2, m["source_unks"])
	assert.Equal(t, 1, m["target_unks"])
	assert.Equal(t, int64(1), m["epochs"])
	assert.Equal(t, int64(2), m["total_operations"])
	assert.Positive(t, pm.AverageTime)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1.50ms", FormatDuration(1500*time.Microsecond))
	assert.Equal(t, "2.00s", FormatDuration(2*time.Second))
	assert.Equal(t, "3.00m", FormatDuration(3*time.Minute))
}
