package destination

import (
	"context"

	"github.com/datazip-inc/tsvingest/types"
)

type Config interface {
	Validate() error
}

// Store is the document store capability used by the ingestion pipeline
type Store interface {
	GetConfigRef() Config
	Type() string
	// Namespace names where documents are written, e.g. database.collection
	Namespace() string
	// Setup connects to the store and checks it is reachable
	Setup(ctx context.Context) error
	// InsertMany writes docs as new documents and returns how many were written
	InsertMany(ctx context.Context, docs []types.Document) (int64, error)
	// UpsertMany matches each doc on keyField, merging it into the existing document or
	// creating it when absent. Operations apply in order, so the last doc for a key wins.
	UpsertMany(ctx context.Context, keyField string, docs []types.Document) (int64, error)
	// CreateIndex creates a non-unique index on field; it is a no-op if the index exists
	CreateIndex(ctx context.Context, field string) error
	CountDocuments(ctx context.Context, filter types.Document) (int64, error)
	Sample(ctx context.Context, n int64) ([]types.Document, error)
	Close(ctx context.Context) error
}
