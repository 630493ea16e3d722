package destination_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/datazip-inc/tsvingest/constants"
	"github.com/datazip-inc/tsvingest/destination"
	"github.com/datazip-inc/tsvingest/types"
	"github.com/datazip-inc/tsvingest/utils/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(fields ...any) types.Document {
	d := types.Document{}
	for idx := 0; idx+1 < len(fields); idx += 2 {
		d = append(d, types.Field{Key: fields[idx].(string), Value: fields[idx+1]})
	}
	return d
}

func pushAll(t *testing.T, writer *destination.BatchWriter, docs ...types.Document) {
	t.Helper()
	for _, d := range docs {
		require.NoError(t, writer.Push(context.Background(), d))
	}
}

func TestBatchWriterInsertBatches(t *testing.T) {
	store := testutils.NewMemoryStore()
	writer := destination.NewBatchWriter(store, destination.WithBatchSize(2))

	for i := 1; i <= 5; i++ {
		pushAll(t, writer, doc("n", int64(i)))
	}
	assert.Len(t, store.InsertCalls, 2, "two full batches flushed while pushing")

	require.NoError(t, writer.Close(context.Background()))
	require.Len(t, store.InsertCalls, 3)
	assert.Len(t, store.InsertCalls[0], 2)
	assert.Len(t, store.InsertCalls[1], 2)
	assert.Len(t, store.InsertCalls[2], 1)
	assert.Empty(t, store.UpsertCalls)

	assert.Len(t, store.Docs, 5)
	stats := writer.GetStats()
	assert.Equal(t, int64(5), stats.ReadCount.Load())
	assert.Equal(t, int64(5), stats.InsertedCount.Load())
	assert.Equal(t, int64(3), stats.FlushCount.Load())
}

func TestBatchWriterExactMultipleHasNoEmptyFlush(t *testing.T) {
	store := testutils.NewMemoryStore()
	writer := destination.NewBatchWriter(store, destination.WithBatchSize(2))

	pushAll(t, writer, doc("n", int64(1)), doc("n", int64(2)))
	require.NoError(t, writer.Close(context.Background()))
	assert.Len(t, store.InsertCalls, 1)
}

func TestBatchWriterRouting(t *testing.T) {
	store := testutils.NewMemoryStore()
	writer := destination.NewBatchWriter(store, destination.WithBatchSize(10), destination.WithUniqueField("id"))

	pushAll(t, writer,
		doc("id", int64(1), "v", "a"),
		doc("v", "no key"),
		doc("id", nil, "v", "null key"),
		doc("id", "x-2", "v", "b"),
	)
	require.NoError(t, writer.Close(context.Background()))

	require.Len(t, store.UpsertCalls, 1)
	require.Len(t, store.InsertCalls, 1)
	assert.Equal(t, []types.Document{doc("id", int64(1), "v", "a"), doc("id", "x-2", "v", "b")}, store.UpsertCalls[0])
	assert.Equal(t, []types.Document{doc("v", "no key"), doc("id", nil, "v", "null key")}, store.InsertCalls[0])
	assert.Equal(t, int64(2), writer.GetStats().UpsertedCount.Load())
	assert.Equal(t, int64(2), writer.GetStats().InsertedCount.Load())
}

func TestBatchWriterBuffersFlushIndependently(t *testing.T) {
	store := testutils.NewMemoryStore()
	writer := destination.NewBatchWriter(store, destination.WithBatchSize(2), destination.WithUniqueField("id"))

	pushAll(t, writer, doc("id", int64(1)), doc("v", int64(1)), doc("id", int64(2)))
	assert.Len(t, store.UpsertCalls, 1, "upsert buffer reached the batch size")
	assert.Empty(t, store.InsertCalls, "insert buffer still holds a single document")

	require.NoError(t, writer.Close(context.Background()))
	assert.Len(t, store.InsertCalls, 1)
	assert.Len(t, store.UpsertCalls, 1)
}

func TestBatchWriterLastWriteWins(t *testing.T) {
	store := testutils.NewMemoryStore()
	writer := destination.NewBatchWriter(store, destination.WithBatchSize(2), destination.WithUniqueField("id"))

	pushAll(t, writer,
		doc("id", int64(1), "v", "first"),
		doc("id", int64(2), "v", "other"),
		doc("id", int64(1), "v", "second"),
		doc("id", int64(1), "v", "third"),
	)
	require.NoError(t, writer.Close(context.Background()))

	count, err := store.CountDocuments(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = store.CountDocuments(context.Background(), doc("id", int64(1), "v", "third"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "the latest document for a key is kept")
}

func TestBatchWriterDryRun(t *testing.T) {
	store := testutils.NewMemoryStore()
	writer := destination.NewBatchWriter(store, destination.WithBatchSize(1), destination.WithUniqueField("id"), destination.WithDryRun(true))

	pushAll(t, writer, doc("id", int64(1)), doc("v", int64(2)), doc("id", int64(3)))
	require.NoError(t, writer.Close(context.Background()))

	assert.Equal(t, 0, store.StoreCalls())
	assert.Equal(t, int64(3), writer.GetStats().ReadCount.Load())
	assert.Equal(t, int64(0), writer.GetStats().FlushCount.Load())
}

func TestBatchWriterDryRunWithoutStore(t *testing.T) {
	writer := destination.NewBatchWriter(nil, destination.WithDryRun(true))
	pushAll(t, writer, doc("a", int64(1)))
	assert.NoError(t, writer.Close(context.Background()))
}

func TestBatchWriterFlushError(t *testing.T) {
	store := testutils.NewMemoryStore()
	store.InsertErr = errors.New("connection reset")
	writer := destination.NewBatchWriter(store, destination.WithBatchSize(2))

	require.NoError(t, writer.Push(context.Background(), doc("n", int64(1))))
	err := writer.Push(context.Background(), doc("n", int64(2)))
	require.Error(t, err)
	assert.ErrorIs(t, err, store.InsertErr)

	// no retry and no further writes
	assert.ErrorIs(t, writer.Push(context.Background(), doc("n", int64(3))), store.InsertErr)
	assert.ErrorIs(t, writer.Close(context.Background()), store.InsertErr)
	assert.Len(t, store.InsertCalls, 1)
}

func TestBatchWriterFinalFlushAttemptsBoth(t *testing.T) {
	store := testutils.NewMemoryStore()
	store.InsertErr = errors.New("insert failed")
	writer := destination.NewBatchWriter(store, destination.WithBatchSize(10), destination.WithUniqueField("id"))

	pushAll(t, writer, doc("v", int64(1)), doc("id", int64(1)))
	err := writer.Close(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, store.InsertErr)
	assert.Len(t, store.UpsertCalls, 1, "upserts are flushed even though inserts failed")
	assert.Len(t, store.Docs, 1)
}

func TestBatchWriterClosed(t *testing.T) {
	writer := destination.NewBatchWriter(testutils.NewMemoryStore())
	require.NoError(t, writer.Close(context.Background()))
	assert.Error(t, writer.Push(context.Background(), doc("a", int64(1))))
	assert.NoError(t, writer.Close(context.Background()))
}

func TestBatchWriterContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	writer := destination.NewBatchWriter(testutils.NewMemoryStore())
	assert.ErrorIs(t, writer.Push(ctx, doc("a", int64(1))), context.Canceled)
}

func TestBatchWriterDefaultBatchSize(t *testing.T) {
	store := testutils.NewMemoryStore()
	writer := destination.NewBatchWriter(store, destination.WithBatchSize(0))
	for i := 0; i < constants.DefaultBatchSize; i++ {
		pushAll(t, writer, doc("n", int64(i)))
	}
	assert.Len(t, store.InsertCalls, 1)
	assert.Len(t, store.InsertCalls[0], constants.DefaultBatchSize)
}

func TestNewStoreUnknownType(t *testing.T) {
	_, err := destination.NewStore(context.Background(), constants.DestinationType("unknown"), nil)
	assert.ErrorContains(t, err, fmt.Sprintf("[%s]", "unknown"))
}
