package weaviate

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

// SDK encapsulates all Weaviate operations
type SDK struct {
	client *weaviate.Client
}

// NewSDK creates a new instance of SDK
func NewSDK(client *weaviate.Client) *SDK {
	return &SDK{
		client: client,
	}
}

// NewClient connects to the Weaviate instance at host.
func NewClient(host, scheme string) *SDK {
	if scheme == "" {
		scheme = "http"
	}
	return NewSDK(weaviate.New(weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}))
}

// EnsureClass creates className unless it already exists. Vectors are
// supplied by the caller, so the class never has a vectorizer.
func (w *SDK) EnsureClass(ctx context.Context, className string, properties []*models.Property) error {
	exists, err := w.classExists(ctx, className)
	if err != nil {
		return fmt.Errorf("failed to check if class exists: %w", err)
	}
	if exists {
		return nil
	}

	class := &models.Class{
		Class:      className,
		Properties: properties,
		Vectorizer: "none",
	}

	if err := w.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("failed to create Weaviate class: %w", err)
	}

	return nil
}

// ClassExists reports whether className is part of the schema.
func (w *SDK) ClassExists(ctx context.Context, className string) (bool, error) {
	return w.classExists(ctx, className)
}

// classExists checks if a class exists in the schema
func (w *SDK) classExists(ctx context.Context, className string) (bool, error) {
	schema, err := w.client.Schema().Getter().Do(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get schema: %w", err)
	}

	for _, class := range schema.Classes {
		if class.Class == className {
			return true, nil
		}
	}

	return false, nil
}

// DeleteClass deletes a class and all of its objects.
func (w *SDK) DeleteClass(ctx context.Context, className string) error {
	exists, err := w.classExists(ctx, className)
	if err != nil {
		return fmt.Errorf("failed to check if class exists: %w", err)
	}
	if !exists {
		return nil
	}

	if err := w.client.Schema().ClassDeleter().WithClassName(className).Do(ctx); err != nil {
		return fmt.Errorf("failed to delete Weaviate class: %w", err)
	}

	return nil
}

// Ready reports whether the Weaviate node accepts traffic.
func (w *SDK) Ready(ctx context.Context) (bool, error) {
	ok, err := w.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check weaviate readiness: %w", err)
	}
	return ok, nil
}

// Count returns the number of objects stored in className.
func (w *SDK) Count(ctx context.Context, className string) (int, error) {
	meta := graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}

	result, err := w.client.GraphQL().Aggregate().
		WithClassName(className).
		WithFields(meta).
		Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count objects: %w", err)
	}
	if len(result.Errors) > 0 {
		return 0, fmt.Errorf("failed to count objects: %s", result.Errors[0].Message)
	}

	aggregate, _ := result.Data["Aggregate"].(map[string]interface{})
	groups, _ := aggregate[className].([]interface{})
	if len(groups) == 0 {
		return 0, nil
	}
	group, _ := groups[0].(map[string]interface{})
	m, _ := group["meta"].(map[string]interface{})
	count, _ := m["count"].(float64)
	return int(count), nil
}

// VectorObject represents a single object with its vector and properties
type VectorObject struct {
	ID         string
	Vector     []float32
	Properties map[string]interface{}
}

// BatchAddVectors adds multiple vector objects to a class in a single operation
func (w *SDK) BatchAddVectors(ctx context.Context, className string, objects []VectorObject) error {
	if len(objects) == 0 {
		return nil
	}

	objs := make([]*models.Object, len(objects))
	for i, obj := range objects {
		objs[i] = &models.Object{
			Class:      className,
			ID:         toUUID(obj.ID),
			Properties: obj.Properties,
			Vector:     obj.Vector,
		}
	}

	resp, err := w.client.Batch().ObjectsBatcher().WithObjects(objs...).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to batch add vectors: %w", err)
	}
	if len(resp) == 0 {
		return fmt.Errorf("batch operation returned no results")
	}
	for _, r := range resp {
		if r.Result != nil && r.Result.Errors != nil && len(r.Result.Errors.Error) > 0 {
			return fmt.Errorf("failed to batch add vectors: %s", r.Result.Errors.Error[0].Message)
		}
	}

	return nil
}

// QueryConfig represents configuration for vector similarity search
type QueryConfig struct {
	Fields    []string // Fields to return in the result
	Limit     int      // Maximum number of results
	Distance  float64  // Optional distance threshold
	Certainty float64  // Optional certainty threshold
}

const DefaultQueryLimit = 20

// QueryResult represents a single result from vector similarity search
type QueryResult struct {
	ID         string
	Score      float64 // Certainty for vector search, fused score for hybrid search
	Properties map[string]interface{}
}

// QueryVectors performs vector similarity search in a class
func (w *SDK) QueryVectors(ctx context.Context, className string, vector []float32, config QueryConfig) ([]QueryResult, error) {
	fields := make([]graphql.Field, len(config.Fields))
	for i, field := range config.Fields {
		fields[i] = graphql.Field{Name: field}
	}
	fields = append(fields, graphql.Field{Name: "_additional { id distance certainty }"})

	nearVectorBuilder := w.client.GraphQL().NearVectorArgBuilder().
		WithVector(vector)

	if config.Distance > 0 {
		nearVectorBuilder.WithDistance(float32(config.Distance))
	}
	if config.Certainty > 0 {
		nearVectorBuilder.WithCertainty(float32(config.Certainty))
	}

	if config.Limit <= 0 {
		config.Limit = DefaultQueryLimit
	}

	result, err := w.client.GraphQL().Get().
		WithClassName(className).
		WithFields(fields...).
		WithNearVector(nearVectorBuilder).
		WithLimit(config.Limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("failed to query vectors: %s", result.Errors[0].Message)
	}

	return parseGetResults(result.Data, className, "certainty"), nil
}

// parseGetResults flattens the objects of a Get query. scoreField names the
// _additional value reported as the result score.
func parseGetResults(data map[string]models.JSONObject, className, scoreField string) []QueryResult {
	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return nil
	}
	objects, ok := get[className].([]interface{})
	if !ok {
		return nil
	}

	var results []QueryResult
	for _, obj := range objects {
		objMap, ok := obj.(map[string]interface{})
		if !ok {
			continue
		}
		additional, _ := objMap["_additional"].(map[string]interface{})

		properties := make(map[string]interface{}, len(objMap))
		for k, v := range objMap {
			if k != "_additional" {
				properties[k] = v
			}
		}

		id, _ := additional["id"].(string)
		results = append(results, QueryResult{
			ID:         id,
			Score:      toFloat(additional[scoreField]),
			Properties: properties,
		})
	}
	return results
}

// toFloat accepts both numbers and the numeric strings Weaviate uses for
// hybrid scores.
func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		var f float64
		if _, err := fmt.Sscanf(n, "%g", &f); err == nil {
			return f
		}
	}
	return 0
}
