// Package qdrant provides a Qdrant vector database driver using the native gRPC client.
package qdrant

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/thinkbooklabs/thinkbook/pkg/vector"
)

const (
	// DefaultCollectionName is the default collection name for storing chunk embeddings.
	DefaultCollectionName = "thinkbook"

	// DefaultPort is the Qdrant gRPC port (not the HTTP REST port).
	DefaultPort = 6334
)

// QdrantDriver implements vector.VectorDriver using Qdrant's gRPC API.
type QdrantDriver struct {
	client         *qdrant.Client
	collectionName string
	logger         *zap.Logger
}

// Config holds configuration for the Qdrant driver.
type Config struct {
	// Host is the Qdrant server hostname or IP address.
	Host string

	// Port is the Qdrant gRPC port. Defaults to DefaultPort if zero.
	Port int

	// CollectionName is the name of the collection to use.
	// Defaults to DefaultCollectionName if empty.
	CollectionName string

	// Dimensions is the number of dimensions for the embedding vectors.
	Dimensions uint

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool
}

// NewQdrantDriver creates a new Qdrant vector driver and ensures the
// collection exists.
func NewQdrantDriver(c Config, logger *zap.Logger) (*QdrantDriver, error) {
	if c.Host == "" {
		return nil, fmt.Errorf("qdrant host is required")
	}
	if c.Dimensions == 0 {
		return nil, fmt.Errorf("qdrant embedding dimensions cannot be 0, must be configured")
	}

	port := c.Port
	if port == 0 {
		port = DefaultPort
	}

	collectionName := c.CollectionName
	if collectionName == "" {
		collectionName = DefaultCollectionName
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   c.Host,
		Port:   port,
		UseTLS: c.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vector.ErrConnection, err)
	}

	d := &QdrantDriver{
		client:         client,
		collectionName: collectionName,
		logger:         logger,
	}

	if err := d.ensureCollection(context.Background(), uint64(c.Dimensions)); err != nil {
		client.Close()
		return nil, fmt.Errorf("ensuring collection %q: %w", collectionName, err)
	}

	logger.Info("connected to Qdrant",
		zap.String("host", c.Host),
		zap.Int("port", port),
		zap.String("collection", collectionName),
		zap.Uint("dimensions", c.Dimensions),
	)

	return d, nil
}

// ensureCollection creates the collection if it does not exist yet.
func (d *QdrantDriver) ensureCollection(ctx context.Context, dimensions uint64) error {
	exists, err := d.client.CollectionExists(ctx, d.collectionName)
	if err != nil {
		return fmt.Errorf("checking collection: %w", err)
	}
	if exists {
		return nil
	}

	err = d.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: d.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimensions,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	return nil
}

// pointID derives a stable Qdrant UUID from a chunk ID so that re-adding the
// same chunk updates its point in place. The original ID is preserved in
// payload["id"] for retrieval.
func pointID(id string) *qdrant.PointId {
	return qdrant.NewIDUUID(uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String())
}

// docPayload flattens a document into a Qdrant payload map. The free-form
// metadata map is stored as a JSON string to keep payload values scalar.
func docPayload(doc vector.Document) map[string]*qdrant.Value {
	payload := map[string]*qdrant.Value{
		"id":              {Kind: &qdrant.Value_StringValue{StringValue: doc.ID}},
		"content":         {Kind: &qdrant.Value_StringValue{StringValue: doc.Content}},
		"source_file":     {Kind: &qdrant.Value_StringValue{StringValue: doc.SourceFile}},
		"source_type":     {Kind: &qdrant.Value_StringValue{StringValue: doc.SourceType}},
		"page_number":     {Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(doc.PageNumber)}},
		"chunk_index":     {Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(doc.ChunkIndex)}},
		"start_char":      {Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(doc.StartChar)}},
		"end_char":        {Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(doc.EndChar)}},
		"embedding_model": {Kind: &qdrant.Value_StringValue{StringValue: doc.EmbeddingModel}},
	}
	if len(doc.Metadata) > 0 {
		if b, err := json.Marshal(doc.Metadata); err == nil {
			payload["metadata"] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: string(b)}}
		}
	}
	return payload
}

// docFromPayload rebuilds a document from a Qdrant payload map.
func docFromPayload(payload map[string]*qdrant.Value) vector.Document {
	doc := vector.Document{
		StartChar: -1,
		EndChar:   -1,
	}

	str := func(key string) string {
		if v, ok := payload[key]; ok {
			return v.GetStringValue()
		}
		return ""
	}
	num := func(key string, def int) int {
		if v, ok := payload[key]; ok {
			if _, isInt := v.Kind.(*qdrant.Value_IntegerValue); isInt {
				return int(v.GetIntegerValue())
			}
		}
		return def
	}

	doc.ID = str("id")
	doc.Content = str("content")
	doc.SourceFile = str("source_file")
	doc.SourceType = str("source_type")
	doc.EmbeddingModel = str("embedding_model")
	doc.PageNumber = num("page_number", 0)
	doc.ChunkIndex = num("chunk_index", 0)
	doc.StartChar = num("start_char", -1)
	doc.EndChar = num("end_char", -1)

	if raw := str("metadata"); raw != "" {
		var meta map[string]any
		if err := json.Unmarshal([]byte(raw), &meta); err == nil {
			doc.Metadata = meta
		}
	}

	return doc
}

// idFilter builds a payload filter matching any of the given chunk IDs.
func idFilter(ids []string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			{
				ConditionOneOf: &qdrant.Condition_Field{
					Field: &qdrant.FieldCondition{
						Key: "id",
						Match: &qdrant.Match{
							MatchValue: &qdrant.Match_Keywords{
								Keywords: &qdrant.RepeatedStrings{Strings: ids},
							},
						},
					},
				},
			},
		},
	}
}

// Add stores documents with their embeddings. Point IDs are derived from
// chunk IDs, so adding the same document twice updates it in place.
func (d *QdrantDriver) Add(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(docs))
	for i, doc := range docs {
		points[i] = &qdrant.PointStruct{
			Id:      pointID(doc.ID),
			Vectors: qdrant.NewVectors(doc.Embedding...),
			Payload: docPayload(doc),
		}
	}

	_, err := d.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: d.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	d.logger.Debug("added documents to qdrant",
		zap.Int("count", len(docs)),
	)

	return nil
}

// Query finds the topK nearest documents to the given embedding.
func (d *QdrantDriver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	points, err := d.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: d.collectionName,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", d.collectionName, err)
	}

	results := make([]vector.QueryResult, 0, len(points))
	for _, point := range points {
		// Qdrant reports cosine similarity (higher = closer);
		// convert to a distance so lower is always the better match.
		results = append(results, vector.QueryResult{
			Document: docFromPayload(point.Payload),
			Score:    1.0 - float64(point.Score),
		})
	}

	d.logger.Debug("queried qdrant",
		zap.Int("results", len(results)),
	)

	return results, nil
}

// Get retrieves documents by their IDs using a payload scroll.
func (d *QdrantDriver) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	points, err := d.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: d.collectionName,
		Filter:         idFilter(ids),
		Limit:          qdrant.PtrOf(uint32(len(ids))),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("scrolling documents: %w", err)
	}

	docs := make([]vector.Document, 0, len(points))
	for _, point := range points {
		doc := docFromPayload(point.Payload)
		if v := point.Vectors.GetVector(); v != nil {
			doc.Embedding = v.GetData()
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// Delete removes documents by their IDs.
func (d *QdrantDriver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := d.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: d.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: idFilter(ids),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting points: %w", err)
	}

	d.logger.Debug("deleted documents from qdrant",
		zap.Int("count", len(ids)),
	)

	return nil
}

// Drop removes the collection and everything in it.
func (d *QdrantDriver) Drop(ctx context.Context) error {
	if err := d.client.DeleteCollection(ctx, d.collectionName); err != nil {
		return fmt.Errorf("deleting collection %s: %w", d.collectionName, err)
	}

	d.logger.Debug("dropped qdrant collection",
		zap.String("collection", d.collectionName),
	)

	return nil
}

// Close releases the gRPC connection held by the driver.
func (d *QdrantDriver) Close() error {
	return d.client.Close()
}
