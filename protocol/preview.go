package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/datazip-inc/tsvingest/constants"
	driver "github.com/datazip-inc/tsvingest/drivers/tsv/driver"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the first documents parsed from the TSV files as JSON lines",
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadSourceConfig(cmd.Flags()); err != nil {
			return err
		}
		config := connector.GetConfigRef()
		if config.Limit == 0 {
			config.Limit = constants.DefaultPreviewRows
		}
		config.DryRun = true
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := Preview(cmd.Context(), connector, cmd.OutOrStdout())
		return err
	},
}

// Preview writes the documents of source, up to its row limit, to out as one JSON object
// per line and returns how many were written
func Preview(ctx context.Context, source *driver.TSV, out io.Writer) (int, error) {
	if err := source.Setup(ctx); err != nil {
		return 0, err
	}
	if _, err := source.Discover(ctx); err != nil {
		return 0, err
	}

	stream := source.Stream()
	defer stream.Close()

	encoder := json.NewEncoder(out)
	written := 0
	for {
		doc, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			return written, nil
		}
		if err != nil {
			return written, err
		}
		if err := encoder.Encode(doc); err != nil {
			return written, fmt.Errorf("failed to write document: %s", err)
		}
		written++
	}
}
