package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/datazip-inc/tsvingest/constants"
	"github.com/datazip-inc/tsvingest/destination"
	driver "github.com/datazip-inc/tsvingest/drivers/tsv/driver"
	"github.com/datazip-inc/tsvingest/types"
	"github.com/datazip-inc/tsvingest/utils"
	"github.com/datazip-inc/tsvingest/utils/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ConnectFunc opens the store written by a run. It is only called for non dry runs, after
// the input files were found.
type ConnectFunc func(ctx context.Context) (destination.Store, error)

// Summary describes a finished run
type Summary struct {
	RunID        string
	Files        int
	Rows         int64
	Inserted     int64
	Upserted     int64
	Flushes      int64
	LimitReached bool
	DryRun       bool
	Elapsed      time.Duration
	// TypeCounts tallies the inferred type of every field value read
	TypeCounts map[types.DataType]int64
	// StoredCount is the post run document count, -1 when it could not be read
	StoredCount int64
	Sample      []types.Document
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest TSV files into MongoDB",
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadSourceConfig(cmd.Flags()); err != nil {
			return err
		}
		config := connector.GetConfigRef()
		if config.DryRun {
			return nil
		}
		if viper.GetString(flagDatabase) == "" || viper.GetString(flagCollection) == "" {
			return fmt.Errorf("%w: --db and --collection are required unless --dry-run is set", driver.ErrInvalidConfig)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		connect := func(ctx context.Context) (destination.Store, error) {
			return destination.NewStore(ctx, constants.MongoDB, map[string]any{
				"uri":        viper.GetString(flagMongoURI),
				"database":   viper.GetString(flagDatabase),
				"collection": viper.GetString(flagCollection),
			})
		}
		_, err := RunIngest(cmd.Context(), connector, connect)
		return err
	},
}

// RunIngest discovers the input files of source, streams every row through the batch
// writer and reports the outcome. Rows flushed before a failure stay written.
func RunIngest(ctx context.Context, source *driver.TSV, connect ConnectFunc) (*Summary, error) {
	summary := &Summary{
		RunID:       utils.ULID(),
		TypeCounts:  map[types.DataType]int64{},
		StoredCount: -1,
	}
	logger.WithField("run_id", summary.RunID)
	logger.Infof("Starting ingestion run %s", summary.RunID)

	if err := source.Setup(ctx); err != nil {
		return nil, err
	}
	files, err := source.Discover(ctx)
	if err != nil {
		return nil, err
	}

	config := source.Config()
	summary.Files = len(files)
	summary.DryRun = config.DryRun
	startTime := time.Now()

	var store destination.Store
	if !config.DryRun {
		store, err = connect(ctx)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := store.Close(context.Background()); err != nil {
				logger.Warnf("failed to close destination: %s", err)
			}
		}()

		if config.UniqueField != "" {
			if err := store.CreateIndex(ctx, config.UniqueField); err != nil {
				logger.Warnf("could not create index on %s, continuing without it: %s", config.UniqueField, err)
			}
		}
	}

	writer := destination.NewBatchWriter(store,
		destination.WithBatchSize(config.BatchSize),
		destination.WithUniqueField(config.UniqueField),
		destination.WithDryRun(config.DryRun),
	)

	stream := source.Stream()
	pipelineErr := pipe(ctx, stream, writer, summary.TypeCounts)
	// an aborted run leaves earlier batches committed and drops what is still buffered
	if pipelineErr == nil {
		pipelineErr = writer.Close(ctx)
	}
	if err := stream.Close(); err != nil {
		logger.Warnf("failed to close input file: %s", err)
	}

	stats := writer.GetStats()
	summary.Rows = stream.TotalRows()
	summary.Inserted = stats.InsertedCount.Load()
	summary.Upserted = stats.UpsertedCount.Load()
	summary.Flushes = stats.FlushCount.Load()
	summary.LimitReached = stream.LimitReached()
	summary.Elapsed = time.Since(startTime)
	if pipelineErr != nil {
		return summary, pipelineErr
	}

	if config.DryRun {
		logger.Infof("Dry run complete. Parsed %d rows across %d file(s) in %.2fs.", summary.Rows, summary.Files, summary.Elapsed.Seconds())
		logger.Infof("Inferred value types: %s", formatTypeCounts(summary.TypeCounts))
		return summary, nil
	}

	logger.Infof("Ingestion complete. Total rows processed: %d in %.2fs.", summary.Rows, summary.Elapsed.Seconds())
	verify(ctx, store, summary)
	return summary, nil
}

func pipe(ctx context.Context, stream *driver.StreamReader, writer *destination.BatchWriter, typeCounts map[types.DataType]int64) error {
	for {
		doc, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		for _, field := range doc {
			typeCounts[types.TypeOf(field.Value)]++
		}
		if err := writer.Push(ctx, doc); err != nil {
			return err
		}
	}
}

// verify reads back the document count and a few documents. Failures are only logged.
func verify(ctx context.Context, store destination.Store, summary *Summary) {
	count, err := store.CountDocuments(ctx, types.Document{})
	if err != nil {
		logger.Warnf("(Warning) Could not fetch verification data: %s", err)
		return
	}
	summary.StoredCount = count
	logger.Infof("Collection '%s' now has %d document(s).", store.Namespace(), count)

	sample, err := store.Sample(ctx, constants.DefaultSampleSize)
	if err != nil {
		logger.Warnf("(Warning) Could not fetch verification data: %s", err)
		return
	}
	summary.Sample = sample
	if len(sample) == 0 {
		return
	}
	logger.Infof("Sample docs (first %d):", constants.DefaultSampleSize)
	for _, doc := range sample {
		encoded, err := doc.MarshalJSON()
		if err != nil {
			logger.Warnf("failed to encode sample document: %s", err)
			continue
		}
		logger.Info(string(encoded))
	}
}

func formatTypeCounts(counts map[types.DataType]int64) string {
	if len(counts) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(counts))
	for dataType := range counts {
		keys = append(keys, string(dataType))
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", key, counts[types.DataType(key)]))
	}
	return strings.Join(parts, " ")
}

func init() {
	ingestCmd.Flags().IntP(flagBatchSize, "", constants.DefaultBatchSize, "(Optional) Documents per write batch")
	ingestCmd.Flags().StringP(flagUniqueField, "", "", "(Optional) Field used to upsert documents instead of inserting them")
	ingestCmd.Flags().BoolP(flagStrictHeader, "", false, "(Optional) Abort when a file header differs from the first file")
	ingestCmd.Flags().BoolP(flagDryRun, "", false, "(Optional) Parse files without writing to the destination")
	ingestCmd.Flags().StringP(flagMongoURI, "", constants.DefaultMongoURI, "(Optional) MongoDB connection string, MONGO_URI is honoured")
	ingestCmd.Flags().StringP(flagDatabase, "", "", "Destination database, required unless --dry-run")
	ingestCmd.Flags().StringP(flagCollection, "", "", "Destination collection, required unless --dry-run")
}
