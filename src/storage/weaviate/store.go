package weaviate

import (
	"context"
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
	"github.com/weaviate/weaviate/entities/models"
)

const (
	propText     = "text"
	propSource   = "source"
	propFilename = "filename"
	propDomain   = "domain"
)

var documentProperties = []*models.Property{
	{Name: propText, DataType: []string{"text"}},
	{Name: propSource, DataType: []string{"text"}},
	{Name: propFilename, DataType: []string{"text"}},
	{Name: propDomain, DataType: []string{"text"}},
}

// Store is a vectorstores.VectorStore over a single Weaviate class.
type Store struct {
	sdk       *SDK
	className string
	embedder  embeddings.Embedder
	alpha     float32
}

var _ vectorstores.VectorStore = (*Store)(nil)

type StoreOption func(*Store)

// WithHybridAlpha switches similarity search to hybrid search weighted by alpha.
func WithHybridAlpha(alpha float32) StoreOption {
	return func(s *Store) {
		s.alpha = alpha
	}
}

func NewStore(sdk *SDK, className string, embedder embeddings.Embedder, opts ...StoreOption) *Store {
	s := &Store{
		sdk:       sdk,
		className: className,
		embedder:  embedder,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) ClassName() string {
	return s.className
}

// Ensure creates the backing class if it is missing.
func (s *Store) Ensure(ctx context.Context) error {
	return s.sdk.EnsureClass(ctx, s.className, documentProperties)
}

// Reset drops and recreates the backing class.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.sdk.DeleteClass(ctx, s.className); err != nil {
		return err
	}
	return s.Ensure(ctx)
}

// Count returns the number of stored chunks, 0 when the class is missing.
func (s *Store) Count(ctx context.Context) (int, error) {
	exists, err := s.sdk.ClassExists(ctx, s.className)
	if err != nil || !exists {
		return 0, err
	}
	return s.sdk.Count(ctx, s.className)
}

// AddDocuments embeds docs and stores them with their metadata.
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

	ids := make([]string, len(docs))
	objects := make([]VectorObject, len(docs))
	for i, d := range docs {
		ids[i] = uuid.NewString()
		props := map[string]interface{}{propText: d.PageContent}
		for _, key := range []string{propSource, propFilename, propDomain} {
			if v, ok := d.Metadata[key].(string); ok {
				props[key] = v
			}
		}
		objects[i] = VectorObject{ID: ids[i], Vector: vectors[i], Properties: props}
	}

	if err := s.sdk.BatchAddVectors(ctx, s.className, objects); err != nil {
		return nil, err
	}
	return ids, nil
}

// SimilaritySearch returns the numDocuments chunks closest to query.
func (s *Store) SimilaritySearch(ctx context.Context, query string, numDocuments int, options ...vectorstores.Option) ([]schema.Document, error) {
	opts := vectorstores.Options{}
	for _, opt := range options {
		opt(&opts)
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	fields := []string{propText, propSource, propFilename, propDomain}

	var results []QueryResult
	if s.alpha > 0 {
		results, err = s.sdk.QueryHybrid(ctx, s.className, vector, HybridConfig{
			Query:  query,
			Alpha:  s.alpha,
			Fields: fields,
			Limit:  numDocuments,
		})
	} else {
		results, err = s.sdk.QueryVectors(ctx, s.className, vector, QueryConfig{
			Fields:    fields,
			Limit:     numDocuments,
			Certainty: float64(opts.ScoreThreshold),
		})
	}
	if err != nil {
		return nil, err
	}

	docs := make([]schema.Document, 0, len(results))
	for _, r := range results {
		docs = append(docs, toDocument(r))
	}
	return docs, nil
}

func toDocument(r QueryResult) schema.Document {
	text, _ := r.Properties[propText].(string)
	metadata := make(map[string]any, len(r.Properties))
	for k, v := range r.Properties {
		if k != propText && v != nil {
			metadata[k] = v
		}
	}
	return schema.Document{
		PageContent: text,
		Metadata:    metadata,
		Score:       float32(r.Score),
	}
}

func toUUID(id string) strfmt.UUID {
	if id == "" {
		return ""
	}
	return strfmt.UUID(id)
}
