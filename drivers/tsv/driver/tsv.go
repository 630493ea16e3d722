package driver

import (
	"context"
	"fmt"

	"github.com/datazip-inc/tsvingest/utils/logger"
)

// TSV is the local directory source of an ingestion run
type TSV struct {
	config *Config
	files  []string
}

// GetConfigRef returns a reference to the config struct
func (t *TSV) GetConfigRef() *Config {
	if t.config == nil {
		t.config = &Config{}
	}
	return t.config
}

// Type returns the source type identifier
func (t *TSV) Type() string {
	return "tsv"
}

// Setup validates the configuration
func (t *TSV) Setup(_ context.Context) error {
	if err := t.GetConfigRef().Validate(); err != nil {
		return fmt.Errorf("failed to validate config: %w", err)
	}
	return nil
}

// Discover lists the files of the run; finding none is a configuration error
func (t *TSV) Discover(_ context.Context) ([]string, error) {
	logger.Infof("Discovering TSV files in %s (recursive: %t)", t.config.Dir, t.config.Recursive)
	files, err := DiscoverFiles(t.config.Dir, t.config.Recursive)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFiles, t.config.Dir)
	}

	t.files = files
	logger.Infof("Found %d TSV file(s).", len(files))
	return files, nil
}

// Stream returns a reader over the discovered files honouring the header and limit options
func (t *TSV) Stream() *StreamReader {
	return NewStreamReader(t.files, NewHeaderGuard(t.config.StrictHeader), t.config.InferOptions(), t.config.Limit)
}

// Files returns the files found by the last Discover call
func (t *TSV) Files() []string {
	return t.files
}

// Config returns the validated configuration
func (t *TSV) Config() *Config {
	return t.GetConfigRef()
}
