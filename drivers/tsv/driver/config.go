package driver

import (
	"errors"
	"fmt"
	"os"

	"github.com/datazip-inc/tsvingest/constants"
	"github.com/datazip-inc/tsvingest/pkg/parser"
	"github.com/datazip-inc/tsvingest/utils"
)

var (
	ErrInvalidConfig  = errors.New("invalid config")
	ErrNoFiles        = errors.New("no TSV files found")
	ErrHeaderMismatch = errors.New("header mismatch")
)

// Config represents the source options of an ingestion run
type Config struct {
	Dir          string `json:"dir" validate:"required"`
	Recursive    bool   `json:"recursive"`
	BatchSize    int    `json:"batch_size" validate:"gte=0"`
	UniqueField  string `json:"unique_field"`
	StrictHeader bool   `json:"strict_header"`
	Limit        int64  `json:"limit" validate:"gte=0"` // 0 means unbounded
	NoInt64Only  bool   `json:"no_int64_only"`
	DryRun       bool   `json:"dry_run"`
}

// Validate checks the configuration and fills defaults
func (c *Config) Validate() error {
	if err := utils.Validate(c); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}

	info, err := os.Stat(c.Dir)
	if err != nil {
		return fmt.Errorf("%w: cannot access dir %s: %s", ErrInvalidConfig, c.Dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidConfig, c.Dir)
	}

	if c.BatchSize == 0 {
		c.BatchSize = constants.DefaultBatchSize
	}
	return nil
}

// InferOptions returns the type inference settings derived from the config
func (c *Config) InferOptions() parser.InferOptions {
	return parser.InferOptions{Int64Only: !c.NoInt64Only}
}
