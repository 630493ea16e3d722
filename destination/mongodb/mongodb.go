package mongodb

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/datazip-inc/tsvingest/constants"
	"github.com/datazip-inc/tsvingest/destination"
	"github.com/datazip-inc/tsvingest/types"
	"github.com/datazip-inc/tsvingest/utils/backoff"
	"github.com/datazip-inc/tsvingest/utils/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo writes documents into a single MongoDB collection
type Mongo struct {
	config     *Config
	client     *mongo.Client
	collection *mongo.Collection
}

var _ destination.Store = (*Mongo)(nil)

func (m *Mongo) GetConfigRef() destination.Config {
	m.config = &Config{}
	return m.config
}

func (m *Mongo) Type() string {
	return string(constants.MongoDB)
}

func (m *Mongo) Namespace() string {
	return m.config.Database + "." + m.config.Collection
}

func (m *Mongo) Setup(ctx context.Context) error {
	opts := options.Client().ApplyURI(m.config.URI)
	if m.config.ConnectTimeout > 0 {
		opts.SetConnectTimeout(time.Duration(m.config.ConnectTimeout) * time.Second)
		opts.SetServerSelectionTimeout(time.Duration(m.config.ConnectTimeout) * time.Second)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %s", err)
	}
	err = backoff.Retry(ctx, m.config.RetryCount, time.Second, func() error {
		return client.Ping(ctx, readpref.Primary())
	}, func(err error) bool {
		return ctx.Err() == nil && !isAuthError(err)
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("failed to ping mongodb: %s", err)
	}

	m.client = client
	m.collection = client.Database(m.config.Database).Collection(m.config.Collection)
	logger.Infof("Connected to mongodb collection %s.%s", m.config.Database, m.config.Collection)
	return nil
}

func (m *Mongo) InsertMany(ctx context.Context, docs []types.Document) (int64, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	records := make([]any, 0, len(docs))
	for _, doc := range docs {
		records = append(records, toBSON(doc))
	}
	result, err := m.collection.InsertMany(ctx, records, options.InsertMany().SetOrdered(true))
	if err != nil {
		return 0, fmt.Errorf("failed to insert documents: %s", err)
	}
	return int64(len(result.InsertedIDs)), nil
}

// UpsertMany issues one ordered bulk write so that operations on the same key apply in
// document order
func (m *Mongo) UpsertMany(ctx context.Context, keyField string, docs []types.Document) (int64, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	models := make([]mongo.WriteModel, 0, len(docs))
	for _, doc := range docs {
		key, found := doc.Get(keyField)
		if !found || key == nil {
			return 0, fmt.Errorf("document has no value for upsert key %s", keyField)
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: keyField, Value: toBSONValue(key)}}).
			SetUpdate(bson.D{{Key: "$set", Value: toBSON(doc)}}).
			SetUpsert(true))
	}

	result, err := m.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	if err != nil {
		return 0, fmt.Errorf("failed to upsert documents: %s", err)
	}
	return result.UpsertedCount + result.MatchedCount, nil
}

func (m *Mongo) CreateIndex(ctx context.Context, field string) error {
	name, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: field, Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create index on %s: %s", field, err)
	}
	logger.Debugf("Index %s ready on %s", name, field)
	return nil
}

func (m *Mongo) CountDocuments(ctx context.Context, filter types.Document) (int64, error) {
	count, err := m.collection.CountDocuments(ctx, toBSON(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %s", err)
	}
	return count, nil
}

func (m *Mongo) Sample(ctx context.Context, n int64) ([]types.Document, error) {
	cursor, err := m.collection.Find(ctx, bson.D{}, options.Find().SetLimit(n))
	if err != nil {
		return nil, fmt.Errorf("failed to create cursor: %s", err)
	}
	defer cursor.Close(ctx)

	var docs []types.Document
	for cursor.Next(ctx) {
		var raw bson.D
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode document: %s", err)
		}
		docs = append(docs, fromBSON(raw))
	}
	return docs, cursor.Err()
}

func (m *Mongo) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	err := m.client.Disconnect(ctx)
	m.client = nil
	return err
}

// isAuthError reports errors no retry can fix
func isAuthError(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == 18 || cmdErr.Code == 13 // AuthenticationFailed, Unauthorized
	}
	return false
}

func toBSON(doc types.Document) bson.D {
	out := make(bson.D, 0, len(doc))
	for _, field := range doc {
		out = append(out, bson.E{Key: field.Key, Value: toBSONValue(field.Value)})
	}
	return out
}

// toBSONValue stores integers wider than int64 as Decimal128. Values beyond its 34 digit
// precision are stored as their decimal text.
func toBSONValue(value any) any {
	bigInt, ok := value.(*big.Int)
	if !ok {
		return value
	}
	decimal, ok := primitive.ParseDecimal128FromBigInt(bigInt, 0)
	if !ok {
		return bigInt.String()
	}
	return decimal
}

func fromBSON(raw bson.D) types.Document {
	doc := make(types.Document, 0, len(raw))
	for _, elem := range raw {
		doc = append(doc, types.Field{Key: elem.Key, Value: fromBSONValue(elem.Value)})
	}
	return doc
}

func fromBSONValue(value any) any {
	switch v := value.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case int32:
		return int64(v)
	case primitive.Decimal128:
		bigInt, exp, err := v.BigInt()
		if err != nil || exp != 0 {
			return v.String()
		}
		return bigInt
	case bson.D:
		return fromBSON(v)
	default:
		return v
	}
}

func init() {
	destination.RegisteredStores[constants.MongoDB] = func() destination.Store {
		return new(Mongo)
	}
}
