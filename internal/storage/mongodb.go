package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDB implements Storage using MongoDB with Atlas Vector Search
type MongoDB struct {
	client      *mongo.Client
	db          *mongo.Database
	knowledge   *mongo.Collection
	vectorIndex string
}

// MongoDBOptions configures NewMongoDB
type MongoDBOptions struct {
	URI         string
	Database    string
	Collection  string
	VectorIndex string
}

// knowledgeDoc is the MongoDB document structure: {text, category, embedding}
type knowledgeDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Text      string             `bson:"text"`
	Category  string             `bson:"category"`
	Embedding []float32          `bson:"embedding"`
}

// scannedDoc decodes vectors written by any client; doubles that are not
// exactly representable as float32 would fail a float32 decode.
type scannedDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Text      string             `bson:"text"`
	Category  string             `bson:"category"`
	Embedding []float64          `bson:"embedding"`
}

// scoredDoc is the projection returned by $vectorSearch
type scoredDoc struct {
	ID       primitive.ObjectID `bson:"_id"`
	Text     string             `bson:"text"`
	Category string             `bson:"category"`
	Score    float64            `bson:"score"`
}

// NewMongoDB creates a new MongoDB storage
func NewMongoDB(ctx context.Context, opts MongoDBOptions) (*MongoDB, error) {
	clientOpts := options.Client().ApplyURI(opts.URI)
	if clientOpts.ServerSelectionTimeout == nil {
		clientOpts.SetServerSelectionTimeout(10 * time.Second)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(opts.Database)

	m := &MongoDB{
		client:      client,
		db:          db,
		knowledge:   db.Collection(opts.Collection),
		vectorIndex: opts.VectorIndex,
	}

	if err := m.initIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return m, nil
}

func (m *MongoDB) initIndexes(ctx context.Context) error {
	// The vector index itself is an Atlas Search index managed outside the driver.
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
	}

	_, err := m.knowledge.Indexes().CreateMany(ctx, indexes)
	return err
}

func (m *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func (m *MongoDB) Clear(ctx context.Context) (int64, error) {
	result, err := m.knowledge.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to clear knowledge: %w", err)
	}
	return result.DeletedCount, nil
}

func (m *MongoDB) Insert(ctx context.Context, doc Document) (*Document, error) {
	result, err := m.knowledge.InsertOne(ctx, knowledgeDoc{
		Text:      doc.Text,
		Category:  doc.Category,
		Embedding: doc.Embedding,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert document: %w", err)
	}

	id := ""
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		id = oid.Hex()
	}

	return &Document{
		ID:       id,
		Category: doc.Category,
		Text:     doc.Text,
	}, nil
}

func (m *MongoDB) Search(ctx context.Context, embedding []float32, opts SearchOpts) ([]SearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 5
	}

	vectorSearch := bson.D{
		{Key: "index", Value: m.vectorIndex},
		{Key: "path", Value: "embedding"},
		{Key: "queryVector", Value: embedding},
		{Key: "numCandidates", Value: limit * 20},
		{Key: "limit", Value: limit},
	}
	if opts.Category != "" {
		vectorSearch = append(vectorSearch, bson.E{Key: "filter", Value: bson.D{{Key: "category", Value: opts.Category}}})
	}

	// Atlas Vector Search pipeline
	// Note: This requires an Atlas Vector Search index (default "vector_index")
	// Servers that reject the stage fall back to a plain list (no scores)
	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: vectorSearch}},
		{{Key: "$project", Value: bson.D{
			{Key: "text", Value: 1},
			{Key: "category", Value: 1},
			{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
	}

	cursor, err := m.knowledge.Aggregate(ctx, pipeline)
	if err != nil {
		if vectorSearchUnsupported(err) {
			return m.listFallback(ctx, opts)
		}
		return nil, fmt.Errorf("failed to run vector search: %w", err)
	}
	defer cursor.Close(ctx)

	var results []SearchResult
	for cursor.Next(ctx) {
		var doc scoredDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		results = append(results, SearchResult{
			Document: Document{ID: doc.ID.Hex(), Category: doc.Category, Text: doc.Text},
			Score:    doc.Score,
		})
	}

	return results, cursor.Err()
}

func (m *MongoDB) listFallback(ctx context.Context, opts SearchOpts) ([]SearchResult, error) {
	docs, err := m.List(ctx, ListOpts{Limit: opts.Limit, Category: opts.Category})
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(docs))
	for _, d := range docs {
		results = append(results, SearchResult{Document: d})
	}
	return results, nil
}

// Server error codes meaning $vectorSearch cannot run on this deployment
const (
	codeUnrecognizedStage = 40324
	codeSearchNotEnabled  = 31082
)

// vectorSearchUnsupported reports whether err is the server refusing the
// $vectorSearch stage itself. Network, auth and context errors are not.
func vectorSearchUnsupported(err error) bool {
	var cmdErr mongo.CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	if cmdErr.HasErrorCode(codeUnrecognizedStage) || cmdErr.HasErrorCode(codeSearchNotEnabled) {
		return true
	}
	return strings.Contains(cmdErr.Message, "$vectorSearch")
}

func categoryFilter(category string) bson.D {
	filter := bson.D{}
	if category != "" {
		filter = append(filter, bson.E{Key: "category", Value: category})
	}
	return filter
}

func (m *MongoDB) List(ctx context.Context, opts ListOpts) ([]Document, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.D{{Key: "embedding", Value: 0}}).
		SetSkip(int64(opts.Offset)).
		SetLimit(int64(limit))

	cursor, err := m.knowledge.Find(ctx, categoryFilter(opts.Category), findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []Document
	for cursor.Next(ctx) {
		var doc knowledgeDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: doc.ID.Hex(), Category: doc.Category, Text: doc.Text})
	}

	return docs, cursor.Err()
}

func (m *MongoDB) Count(ctx context.Context, category string) (int64, error) {
	return m.knowledge.CountDocuments(ctx, categoryFilter(category))
}

func (m *MongoDB) Scan(ctx context.Context, fn func(Document) error) error {
	cursor, err := m.knowledge.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc scannedDoc
		if err := cursor.Decode(&doc); err != nil {
			return err
		}
		embedding := make([]float32, len(doc.Embedding))
		for i, v := range doc.Embedding {
			embedding[i] = float32(v)
		}
		if err := fn(Document{
			ID:        doc.ID.Hex(),
			Category:  doc.Category,
			Text:      doc.Text,
			Embedding: embedding,
		}); err != nil {
			return err
		}
	}

	return cursor.Err()
}
