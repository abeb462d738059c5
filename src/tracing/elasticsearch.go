package tracing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ElasticsearchTracer indexes each event as a document.
type ElasticsearchTracer struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchTracer(addresses []string, index string) (*ElasticsearchTracer, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &ElasticsearchTracer{client: client, index: index}, nil
}

type esDocument struct {
	Event
	Timestamp  string `json:"@timestamp"`
	DurationMs int64  `json:"duration_ms"`
}

func (t *ElasticsearchTracer) Record(ctx context.Context, e Event) error {
	body, err := json.Marshal(esDocument{
		Event:      e,
		Timestamp:  e.StartedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		DurationMs: e.Duration.Milliseconds(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode trace event: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      t.index,
		DocumentID: strconv.FormatInt(e.ID, 10),
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, t.client)
	if err != nil {
		return fmt.Errorf("failed to index trace event: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return fmt.Errorf("failed to index trace event: %s: %s", res.Status(), msg)
	}
	return nil
}

// Ping reports whether the cluster answers.
func (t *ElasticsearchTracer) Ping(ctx context.Context) error {
	res, err := t.client.Ping(t.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to ping elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch ping returned %s", res.Status())
	}
	return nil
}

func (t *ElasticsearchTracer) Close() error {
	return nil
}

func (t *ElasticsearchTracer) Enabled() bool {
	return true
}
