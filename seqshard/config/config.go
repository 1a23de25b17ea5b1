package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	internal "github.com/ZanzyTHEbar/seqshard/seqshard"
	"github.com/ZanzyTHEbar/seqshard/seqshard/batching"
	"github.com/ZanzyTHEbar/seqshard/seqshard/common"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Dataset DatasetConfig `mapstructure:"dataset"`
	Log     LogConfig     `mapstructure:"log"`
}

// SideConfig describes one language of a dataset.
type SideConfig struct {
	Path      string `mapstructure:"path"`
	Tokenizer string `mapstructure:"tokenizer"`
	// Vocab is the vocabulary file; a wordpiece tokenizer reads it too.
	Vocab string `mapstructure:"vocab"`
}

// DatasetConfig stores the batching configuration.
type DatasetConfig struct {
	Source    SideConfig `mapstructure:"source"`
	Target    SideConfig `mapstructure:"target"`
	ShardSize int        `mapstructure:"shardSize"`
	BatchSize int        `mapstructure:"batchSize"`
	BatchType string     `mapstructure:"batchType"`
	MaxLength int        `mapstructure:"maxLength"`
	Seed      uint64     `mapstructure:"seed"`
	Workers   int        `mapstructure:"workers"`
}

// LogConfig stores logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Paired reports whether a target corpus is configured.
func (d DatasetConfig) Paired() bool {
	return strings.TrimSpace(d.Target.Path) != ""
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		v.AddConfigPath(internal.DefaultConfigPath)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetDefault("dataset.source.path", "")
	v.SetDefault("dataset.source.tokenizer", internal.DefaultTokenizer)
	v.SetDefault("dataset.source.vocab", "")
	v.SetDefault("dataset.target.path", "")
	v.SetDefault("dataset.target.tokenizer", internal.DefaultTokenizer)
	v.SetDefault("dataset.target.vocab", "")
	v.SetDefault("dataset.shardSize", internal.DefaultShardSize)
	v.SetDefault("dataset.batchSize", internal.DefaultBatchSize)
	v.SetDefault("dataset.batchType", internal.DefaultBatchType)
	v.SetDefault("dataset.maxLength", internal.DefaultMaxLength)
	v.SetDefault("dataset.seed", 0)
	v.SetDefault("dataset.workers", internal.DefaultWorkers)
	v.SetDefault("log.level", internal.DefaultLogLevel)

	v.SetEnvPrefix(strings.ToUpper(internal.DefaultAppName))
	v.AutomaticEnv()                                   // Read in environment variables that match
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // dataset.batchSize becomes SEQSHARD_DATASET_BATCHSIZE

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; defaults and environment are used.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &cfg, nil
}

// Validate checks the dataset settings before any corpus is read.
func (c *Config) Validate() error {
	vu := common.NewValidationUtils()
	d := c.Dataset
	if err := vu.ValidateRequiredString(d.Source.Path, "dataset.source.path"); err != nil {
		return err
	}
	if err := vu.ValidateNonNegative(d.ShardSize, "dataset.shardSize"); err != nil {
		return err
	}
	if err := vu.ValidatePositive(d.BatchSize, "dataset.batchSize"); err != nil {
		return err
	}
	if err := vu.ValidateNonNegative(d.MaxLength, "dataset.maxLength"); err != nil {
		return err
	}
	if _, err := batching.ParseBatchType(d.BatchType); err != nil {
		return fmt.Errorf("dataset.batchType: %w", err)
	}
	return nil
}
