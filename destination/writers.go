package destination

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/datazip-inc/tsvingest/constants"
	"github.com/datazip-inc/tsvingest/types"
	"github.com/datazip-inc/tsvingest/utils"
	"github.com/datazip-inc/tsvingest/utils/logger"
	"github.com/hashicorp/go-multierror"
)

type (
	NewFunc func() Store

	Options struct {
		BatchSize   int
		UniqueField string
		DryRun      bool
	}

	WriterOption func(opt *Options)

	Stats struct {
		ReadCount     atomic.Int64 // documents pushed to the writer
		InsertedCount atomic.Int64 // documents written by insert flushes
		UpsertedCount atomic.Int64 // documents written by upsert flushes
		FlushCount    atomic.Int64 // store calls issued
	}

	// BatchWriter buffers documents and flushes them to a Store in batches. Documents
	// carrying a value for the unique field become upserts, every other document is a
	// plain insert. The two buffers fill and flush independently.
	BatchWriter struct {
		store   Store
		stats   *Stats
		options Options
		inserts []types.Document
		upserts []types.Document
		err     error
		closed  bool
	}
)

var RegisteredStores = map[constants.DestinationType]NewFunc{}

func WithBatchSize(size int) WriterOption {
	return func(opt *Options) {
		opt.BatchSize = size
	}
}

func WithUniqueField(field string) WriterOption {
	return func(opt *Options) {
		opt.UniqueField = field
	}
}

func WithDryRun(dryRun bool) WriterOption {
	return func(opt *Options) {
		opt.DryRun = dryRun
	}
}

// NewStore creates the store registered for storeType, loads config into it and connects
func NewStore(ctx context.Context, storeType constants.DestinationType, config any) (Store, error) {
	newfunc, found := RegisteredStores[storeType]
	if !found {
		return nil, fmt.Errorf("invalid destination type has been passed [%s]", storeType)
	}

	store := newfunc()
	if err := utils.Unmarshal(config, store.GetConfigRef()); err != nil {
		return nil, err
	}
	if err := store.GetConfigRef().Validate(); err != nil {
		return nil, fmt.Errorf("invalid destination config: %s", err)
	}
	if err := store.Setup(ctx); err != nil {
		return nil, fmt.Errorf("failed to setup destination: %s", err)
	}
	return store, nil
}

// NewBatchWriter returns a writer flushing to store. store may be nil for dry runs.
func NewBatchWriter(store Store, options ...WriterOption) *BatchWriter {
	opts := Options{BatchSize: constants.DefaultBatchSize}
	for _, one := range options {
		one(&opts)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = constants.DefaultBatchSize
	}

	return &BatchWriter{
		store:   store,
		stats:   &Stats{},
		options: opts,
		inserts: make([]types.Document, 0, utils.Ternary(opts.DryRun, 0, opts.BatchSize).(int)),
		upserts: []types.Document{},
	}
}

func (w *BatchWriter) GetStats() *Stats {
	return w.stats
}

// Push routes doc to the insert or upsert buffer and flushes that buffer once it holds a
// full batch. In dry run mode documents are only counted.
func (w *BatchWriter) Push(ctx context.Context, doc types.Document) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("context closed: %w", ctx.Err())
	default:
	}
	if w.err != nil {
		return w.err
	}
	if w.closed {
		return fmt.Errorf("writer already closed")
	}

	w.stats.ReadCount.Add(1)
	if w.options.DryRun {
		return nil
	}

	if w.isUpsert(doc) {
		w.upserts = append(w.upserts, doc)
		if len(w.upserts) >= w.options.BatchSize {
			return w.flushUpserts(ctx)
		}
		return nil
	}

	w.inserts = append(w.inserts, doc)
	if len(w.inserts) >= w.options.BatchSize {
		return w.flushInserts(ctx)
	}
	return nil
}

func (w *BatchWriter) isUpsert(doc types.Document) bool {
	if w.options.UniqueField == "" {
		return false
	}
	value, found := doc.Get(w.options.UniqueField)
	return found && value != nil
}

func (w *BatchWriter) flushInserts(ctx context.Context) error {
	if len(w.inserts) == 0 {
		return nil
	}

	w.stats.FlushCount.Add(1)
	written, err := w.store.InsertMany(ctx, w.inserts)
	if err != nil {
		w.err = fmt.Errorf("failed to insert batch of %d documents: %w", len(w.inserts), err)
		return w.err
	}

	w.stats.InsertedCount.Add(written)
	logger.Infof("Inserted batch of %d documents", len(w.inserts))
	w.inserts = make([]types.Document, 0, w.options.BatchSize)
	return nil
}

func (w *BatchWriter) flushUpserts(ctx context.Context) error {
	if len(w.upserts) == 0 {
		return nil
	}

	w.stats.FlushCount.Add(1)
	written, err := w.store.UpsertMany(ctx, w.options.UniqueField, w.upserts)
	if err != nil {
		w.err = fmt.Errorf("failed to upsert batch of %d documents on %s: %w", len(w.upserts), w.options.UniqueField, err)
		return w.err
	}

	w.stats.UpsertedCount.Add(written)
	logger.Infof("Upserted batch of %d documents on %s", len(w.upserts), w.options.UniqueField)
	w.upserts = []types.Document{}
	return nil
}

// Close flushes whatever is left in both buffers. Both flushes are attempted and their
// errors combined. Nothing is flushed after an earlier flush failed.
func (w *BatchWriter) Close(ctx context.Context) error {
	if w.closed {
		return w.err
	}
	w.closed = true
	if w.options.DryRun || w.err != nil {
		return w.err
	}

	var result *multierror.Error
	if err := w.flushInserts(ctx); err != nil {
		result = multierror.Append(result, err)
	}
	if err := w.flushUpserts(ctx); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
