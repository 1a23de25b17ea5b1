package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/seqshard/seqshard/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataset(t *testing.T, batchType string) string {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "train.src")
	tgt := filepath.Join(dir, "train.tgt")
	require.NoError(t, os.WriteFile(src, []byte("a b c\nd e\nf\ng h i j k l m n o p q\n"), 0o644))
	require.NoError(t, os.WriteFile(tgt, []byte("x\ny z\nw\nv\n"), 0o644))

	cfg := fmt.Sprintf(`
dataset:
  source:
    path: %q
  target:
    path: %q
  shardSize: 2
  batchSize: 8
  batchType: %q
  maxLength: 10
  seed: 9
log:
  level: "error"
`, src, tgt, batchType)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func TestCommands(t *testing.T) {
	CLI.Config = writeDataset(t, "tokens")
	t.Cleanup(func() { CLI.Config = "" })

	s, err := loadStore(0)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, 2, s.ShardSize())

	assert.NoError(t, (&InspectCmd{}).Run())
	assert.NoError(t, (&InspectCmd{Prefix: "<"}).Run())
	assert.NoError(t, (&EpochsCmd{Count: 2, Seed: 4}).Run())
	assert.Error(t, (&EpochsCmd{Count: 0}).Run())
	assert.NoError(t, (&VersionCmd{}).Run())
}

func TestCommandsInvalidConfig(t *testing.T) {
	CLI.Config = writeDataset(t, "paragraphs")
	t.Cleanup(func() { CLI.Config = "" })

	_, err := loadStore(0)
	assert.Error(t, err)
	assert.Error(t, (&EpochsCmd{Count: 1}).Run())
}

func TestPrintMetrics(t *testing.T) {
	m := common.NewPipelineMetrics()
	m.RecordShard(common.ShardCounts{Kept: 3, Filtered: 1, SourceTokens: 12})
	m.RecordBatch(3)
	m.RecordEpoch(time.Now())

	var buf bytes.Buffer
	printMetrics(&buf, m)
	out := buf.String()
	assert.Contains(t, out, "totals: ")
	assert.Contains(t, out, "batches=1")
	assert.Contains(t, out, "emitted=3")
	assert.Contains(t, out, "filtered=1")
	assert.Contains(t, out, "source_tokens=12")
	assert.NotContains(t, out, "last_operation")
	assert.Less(t, strings.Index(out, "batches="), strings.Index(out, "emitted="))
}
