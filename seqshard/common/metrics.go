package common

import (
	"fmt"
	"sync"
	"time"
)

// PerformanceMetrics defines the interface for performance tracking
type PerformanceMetrics interface {
	GetMetrics() map[string]interface{}
}

// BaseMetrics provides common fields used across different metrics types
type BaseMetrics struct {
	TotalOperations int64
	LastOperation   time.Time
	Mu              sync.RWMutex
}

// GetBaseMetrics returns the common metrics as a map
func (bm *BaseMetrics) GetBaseMetrics() map[string]interface{} {
	bm.Mu.RLock()
	defer bm.Mu.RUnlock()

	return map[string]interface{}{
		"total_operations": bm.TotalOperations,
		"last_operation":   bm.LastOperation,
	}
}

// ShardCounts are the observability counters produced while materializing one shard.
type ShardCounts struct {
	Kept         int
	Filtered     int
	SourceTokens int
	TargetTokens int
	SourceUnks   int
	TargetUnks   int
}

// Add accumulates other into c.
func (c *ShardCounts) Add(other ShardCounts) {
	c.Kept += other.Kept
	c.Filtered += other.Filtered
	c.SourceTokens += other.SourceTokens
	c.TargetTokens += other.TargetTokens
	c.SourceUnks += other.SourceUnks
	c.TargetUnks += other.TargetUnks
}

// PipelineMetrics tracks totals across every epoch of a dataset.
// The counters never influence batching decisions.
type PipelineMetrics struct {
	BaseMetrics
	Epochs      int64
	Shards      int64
	Batches     int64
	Emitted     int64
	Discarded   int64
	Counts      ShardCounts
	AverageTime time.Duration // per epoch
}

// NewPipelineMetrics creates an empty PipelineMetrics
func NewPipelineMetrics() *PipelineMetrics {
	return &PipelineMetrics{}
}

// RecordShard adds the counters of one materialized shard
func (pm *PipelineMetrics) RecordShard(counts ShardCounts) {
	pm.Mu.Lock()
	defer pm.Mu.Unlock()

	pm.TotalOperations++
	pm.Shards++
	pm.Counts.Add(counts)
	pm.LastOperation = time.Now()
}

// RecordBatch counts one emitted batch of size n
func (pm *PipelineMetrics) RecordBatch(n int) {
	pm.Mu.Lock()
	defer pm.Mu.Unlock()

	pm.Batches++
	pm.Emitted += int64(n)
}

// RecordDiscarded counts n examples dropped by the batch planner
func (pm *PipelineMetrics) RecordDiscarded(n int) {
	pm.Mu.Lock()
	defer pm.Mu.Unlock()

	pm.Discarded += int64(n)
}

// RecordEpoch marks the end of an epoch that started at start
func (pm *PipelineMetrics) RecordEpoch(start time.Time) {
	pm.Mu.Lock()
	defer pm.Mu.Unlock()

	pm.Epochs++
	duration := time.Since(start)

	// Calculate rolling average
	if pm.Epochs == 1 {
		pm.AverageTime = duration
	} else {
		pm.AverageTime = (pm.AverageTime*time.Duration(pm.Epochs-1) + duration) / time.Duration(pm.Epochs)
	}

	pm.LastOperation = time.Now()
}

// GetMetrics returns pipeline metrics as a map
func (pm *PipelineMetrics) GetMetrics() map[string]interface{} {
	metrics := pm.GetBaseMetrics()
	pm.Mu.RLock()
	defer pm.Mu.RUnlock()

	metrics["epochs"] = pm.Epochs
	metrics["shards"] = pm.Shards
	metrics["batches"] = pm.Batches
	metrics["emitted"] = pm.Emitted
	metrics["discarded"] = pm.Discarded
	metrics["filtered"] = pm.Counts.Filtered
	metrics["source_tokens"] = pm.Counts.SourceTokens
	metrics["target_tokens"] = pm.Counts.TargetTokens
	metrics["source_unks"] = pm.Counts.SourceUnks
	metrics["target_unks"] = pm.Counts.TargetUnks
	metrics["average_epoch_time"] = pm.AverageTime
	return metrics
}

// FormatDuration formats a duration for human-readable display
func FormatDuration(duration time.Duration) string {
	if duration < time.Millisecond {
		return fmt.Sprintf("%.2fµs", float64(duration.Nanoseconds())/1000)
	} else if duration < time.Second {
		return fmt.Sprintf("%.2fms", float64(duration.Nanoseconds())/1000000)
	} else if duration < time.Minute {
		return fmt.Sprintf("%.2fs", duration.Seconds())
	}
	return fmt.Sprintf("%.2fm", duration.Minutes())
}
