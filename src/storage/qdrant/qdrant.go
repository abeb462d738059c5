// Package qdrant stores document chunks in a Qdrant collection.
package qdrant

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

const payloadText = "text"

type Config struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool
}

// NewClient opens a gRPC connection to Qdrant.
func NewClient(cfg Config) (*qdrant.Client, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}
	return client, nil
}

// PointsClient is the part of *qdrant.Client used by Store.
type PointsClient interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	DeleteCollection(ctx context.Context, collectionName string) error
	Count(ctx context.Context, request *qdrant.CountPoints) (uint64, error)
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Close() error
}

// Store is a vectorstores.VectorStore over one collection.
type Store struct {
	client     PointsClient
	collection string
	embedder   embeddings.Embedder
}

var _ vectorstores.VectorStore = (*Store)(nil)

func NewStore(client PointsClient, collection string, embedder embeddings.Embedder) *Store {
	return &Store{
		client:     client,
		collection: collection,
		embedder:   embedder,
	}
}

func (s *Store) Collection() string {
	return s.collection
}

// ensure creates the collection sized for vectorSize when it is missing.
func (s *Store) ensure(ctx context.Context, vectorSize int) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(vectorSize),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// Reset drops the collection. It is recreated by the next AddDocuments.
func (s *Store) Reset(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if !exists {
		return nil
	}
	if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return nil
}

// Count returns the number of stored chunks, 0 when the collection is missing.
func (s *Store) Count(ctx context.Context) (int, error) {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return 0, fmt.Errorf("failed to check collection: %w", err)
	}
	if !exists {
		return 0, nil
	}
	n, err := s.client.Count(ctx, &qdrant.CountPoints{CollectionName: s.collection})
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return int(n), nil
}

func (s *Store) AddDocuments(ctx context.Context, docs []schema.Document, _ ...vectorstores.Option) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.PageContent
	}
	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed documents: %w", err)
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(docs))
	}

	if err := s.ensure(ctx, len(vectors[0])); err != nil {
		return nil, err
	}

	ids := make([]string, len(docs))
	points := make([]*qdrant.PointStruct, len(docs))
	for i, d := range docs {
		ids[i] = uuid.NewString()
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(ids[i]),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(payload(d)),
		}
	}

	wait := true
	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           &wait,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert points: %w", err)
	}
	return ids, nil
}

func (s *Store) SimilaritySearch(ctx context.Context, query string, numDocuments int, options ...vectorstores.Option) ([]schema.Document, error) {
	opts := vectorstores.Options{}
	for _, opt := range options {
		opt(&opts)
	}

	// An empty domain never creates its collection.
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return nil, fmt.Errorf("failed to check collection: %w", err)
	}
	if !exists {
		return []schema.Document{}, nil
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	limit := uint64(numDocuments)
	req := &qdrant.QueryPoints{
		CollectionName: s.collection,
		Limit:          &limit,
		Query:          qdrant.NewQuery(vector...),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if opts.ScoreThreshold > 0 {
		threshold := opts.ScoreThreshold
		req.ScoreThreshold = &threshold
	}

	resp, err := s.client.Query(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to query points: %w", err)
	}

	docs := make([]schema.Document, 0, len(resp))
	for _, r := range resp {
		docs = append(docs, toDocument(r.Payload, r.Score))
	}
	return docs, nil
}

// Close releases the gRPC connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// payload keeps only string metadata; other values are dropped.
func payload(d schema.Document) map[string]any {
	out := map[string]any{payloadText: d.PageContent}
	for k, v := range d.Metadata {
		if str, ok := v.(string); ok && k != payloadText {
			out[k] = str
		}
	}
	return out
}

func toDocument(p map[string]*qdrant.Value, score float32) schema.Document {
	metadata := make(map[string]any, len(p))
	var text string
	for k, v := range p {
		if k == payloadText {
			text = v.GetStringValue()
			continue
		}
		if val := convertValue(v); val != nil {
			metadata[k] = val
		}
	}
	return schema.Document{PageContent: text, Metadata: metadata, Score: score}
}

func convertValue(v *qdrant.Value) any {
	switch val := v.GetKind().(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_ListValue:
		out := make([]any, len(val.ListValue.GetValues()))
		for i, lv := range val.ListValue.GetValues() {
			out[i] = convertValue(lv)
		}
		return out
	case *qdrant.Value_StructValue:
		out := make(map[string]any)
		for k, nv := range val.StructValue.GetFields() {
			out[k] = convertValue(nv)
		}
		return out
	}
	return nil
}
