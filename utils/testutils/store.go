package testutils

import (
	"context"
	"reflect"
	"slices"

	"github.com/datazip-inc/tsvingest/destination"
	"github.com/datazip-inc/tsvingest/types"
)

type memoryConfig struct{}

func (memoryConfig) Validate() error {
	return nil
}

// MemoryStore is an in-memory destination.Store recording every call, for tests
type MemoryStore struct {
	Docs        []types.Document
	InsertCalls [][]types.Document
	UpsertCalls [][]types.Document
	Indexes     []string

	SetupErr  error
	InsertErr error
	UpsertErr error
	IndexErr  error
	CountErr  error
	SampleErr error

	Closed bool
}

var _ destination.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) GetConfigRef() destination.Config {
	return memoryConfig{}
}

func (m *MemoryStore) Type() string {
	return "memory"
}

func (m *MemoryStore) Namespace() string {
	return "memory.documents"
}

func (m *MemoryStore) Setup(_ context.Context) error {
	return m.SetupErr
}

func (m *MemoryStore) InsertMany(_ context.Context, docs []types.Document) (int64, error) {
	m.InsertCalls = append(m.InsertCalls, slices.Clone(docs))
	if m.InsertErr != nil {
		return 0, m.InsertErr
	}
	for _, doc := range docs {
		m.Docs = append(m.Docs, slices.Clone(doc))
	}
	return int64(len(docs)), nil
}

func (m *MemoryStore) UpsertMany(_ context.Context, keyField string, docs []types.Document) (int64, error) {
	m.UpsertCalls = append(m.UpsertCalls, slices.Clone(docs))
	if m.UpsertErr != nil {
		return 0, m.UpsertErr
	}
	for _, doc := range docs {
		key, _ := doc.Get(keyField)
		idx := slices.IndexFunc(m.Docs, func(existing types.Document) bool {
			value, found := existing.Get(keyField)
			return found && reflect.DeepEqual(value, key)
		})
		if idx < 0 {
			m.Docs = append(m.Docs, slices.Clone(doc))
			continue
		}
		m.Docs[idx] = merge(m.Docs[idx], doc)
	}
	return int64(len(docs)), nil
}

// merge sets every field of update on existing, like a $set
func merge(existing, update types.Document) types.Document {
	merged := slices.Clone(existing)
	for _, field := range update {
		idx := slices.IndexFunc(merged, func(f types.Field) bool { return f.Key == field.Key })
		if idx < 0 {
			merged = append(merged, field)
			continue
		}
		merged[idx].Value = field.Value
	}
	return merged
}

func (m *MemoryStore) CreateIndex(_ context.Context, field string) error {
	if m.IndexErr != nil {
		return m.IndexErr
	}
	if !slices.Contains(m.Indexes, field) {
		m.Indexes = append(m.Indexes, field)
	}
	return nil
}

func (m *MemoryStore) CountDocuments(_ context.Context, filter types.Document) (int64, error) {
	if m.CountErr != nil {
		return 0, m.CountErr
	}
	var count int64
	for _, doc := range m.Docs {
		if matches(doc, filter) {
			count++
		}
	}
	return count, nil
}

func matches(doc, filter types.Document) bool {
	for _, field := range filter {
		value, found := doc.Get(field.Key)
		if !found || !reflect.DeepEqual(value, field.Value) {
			return false
		}
	}
	return true
}

func (m *MemoryStore) Sample(_ context.Context, n int64) ([]types.Document, error) {
	if m.SampleErr != nil {
		return nil, m.SampleErr
	}
	if n > int64(len(m.Docs)) {
		n = int64(len(m.Docs))
	}
	return slices.Clone(m.Docs[:n]), nil
}

func (m *MemoryStore) Close(_ context.Context) error {
	m.Closed = true
	return nil
}

// StoreCalls is the number of write calls the store received
func (m *MemoryStore) StoreCalls() int {
	return len(m.InsertCalls) + len(m.UpsertCalls)
}
