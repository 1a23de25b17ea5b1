// Command seqshard drives the batching pipeline from a config file: it can
// run epochs and report how examples were packed, filtered and discarded.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"time"

	internal "github.com/ZanzyTHEbar/seqshard/seqshard"
	"github.com/ZanzyTHEbar/seqshard/seqshard/common"
	"github.com/ZanzyTHEbar/seqshard/seqshard/config"
	"github.com/ZanzyTHEbar/seqshard/seqshard/corpus"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
)

const version = "0.1.0"

// CLI defines the command-line interface for seqshard.
var CLI struct {
	Config   string `name:"config" short:"c" help:"Config file (YAML)" type:"path"`
	LogLevel string `name:"log-level" help:"Override log.level (debug, info, warn, error)"`

	Epochs  EpochsCmd  `cmd:"" help:"Iterate over the dataset and print per-epoch statistics"`
	Inspect InspectCmd `cmd:"" help:"Load the dataset and print its size and fingerprint"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// EpochsCmd runs full passes over the dataset.
type EpochsCmd struct {
	Count int    `name:"count" short:"n" default:"1" help:"Number of epochs"`
	Seed  uint64 `name:"seed" help:"Override dataset.seed"`
}

// InspectCmd reports dataset metadata.
type InspectCmd struct {
	Prefix string `name:"prefix" help:"List source vocabulary entries starting with this prefix"`
}

// prefixLister is implemented by vocabularies that support prefix scans.
type prefixLister interface {
	WithPrefix(prefix string) []string
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("%s %s\n", internal.DefaultAppName, version)
	return nil
}

func loadStore(seed uint64) (*corpus.Store, error) {
	cfg, err := config.LoadConfig(CLI.Config)
	if err != nil {
		return nil, err
	}
	if seed != 0 {
		cfg.Dataset.Seed = seed
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level := cfg.Log.Level
	if CLI.LogLevel != "" {
		level = CLI.LogLevel
	}
	return corpus.Open(cfg.Dataset, corpus.WithLogger(internal.GetLoggerWithLevel(level)))
}

func (c *InspectCmd) Run() error {
	s, err := loadStore(0)
	if err != nil {
		return err
	}
	fmt.Printf("examples:    %s\n", humanize.Comma(int64(s.Len())))
	fmt.Printf("paired:      %t\n", s.Paired())
	fmt.Printf("shard size:  %s\n", humanize.Comma(int64(s.ShardSize())))
	fmt.Printf("batch:       %d %s\n", s.Planner().BatchSize(), s.Planner().BatchType())
	fmt.Printf("fingerprint: %s\n", s.Fingerprint())

	srcVocab, tgtVocab := s.Vocabularies()
	fmt.Printf("vocab:       %s", humanize.Comma(int64(srcVocab.Size())))
	if tgtVocab != nil {
		fmt.Printf("-%s", humanize.Comma(int64(tgtVocab.Size())))
	}
	fmt.Println()

	if c.Prefix != "" {
		pl, ok := srcVocab.(prefixLister)
		if !ok {
			return fmt.Errorf("source vocabulary does not support prefix listing")
		}
		matches := pl.WithPrefix(c.Prefix)
		fmt.Printf("prefix %q:  %d entries\n", c.Prefix, len(matches))
		for _, tok := range matches {
			fmt.Printf("  %d\t%s\n", srcVocab.Index(tok), tok)
		}
	}
	return nil
}

// printMetrics writes a collector's counters in key order.
func printMetrics(w io.Writer, m common.PerformanceMetrics) {
	values := m.GetMetrics()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		switch v := values[k].(type) {
		case time.Duration:
			parts = append(parts, fmt.Sprintf("%s=%s", k, common.FormatDuration(v)))
		case time.Time:
			continue
		default:
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
	}
	fmt.Fprintf(w, "totals: %s\n", strings.Join(parts, " "))
}

func (c *EpochsCmd) Run() error {
	if c.Count <= 0 {
		return fmt.Errorf("--count must be > 0")
	}
	s, err := loadStore(c.Seed)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	for i := 1; i <= c.Count; i++ {
		e := s.Epoch()
		for {
			_, err := e.Next(ctx)
			if err == io.EOF {
				break
			}
			if err != nil {
				return fmt.Errorf("epoch %d: %w", i, err)
			}
		}
		st := e.Stats()
		fmt.Printf("epoch %d (%s): shards=%d batches=%d emitted=%d filtered=%d discarded=%d dropped=%d src_tokens=%d tgt_tokens=%d src_oovs=%d tgt_oovs=%d\n",
			i, st.ID, st.Shards, st.Batches, st.Emitted, st.Filtered(), st.Discarded(), st.Dropped(),
			st.Counts.SourceTokens, st.Counts.TargetTokens, st.Counts.SourceUnks, st.Counts.TargetUnks)
	}
	printMetrics(os.Stdout, s.Metrics())
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(internal.DefaultAppName),
		kong.Description("Length-aware, shard-bounded batching for sequence-to-sequence corpora"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
