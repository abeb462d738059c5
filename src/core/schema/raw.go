package schema

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// FromRaw shapes loosely typed data, such as a result decoded from JSON, into
// a QueryResult. It never returns nil: missing input or a failed conversion
// produce an empty result carrying the reason.
func FromRaw(data map[string]any, query string) *QueryResult {
	if len(data) == 0 {
		return NewEmptyResult(query, "Query processing failed")
	}

	result, err := decodeRaw(data)
	if err != nil {
		return NewEmptyResult(query, fmt.Sprintf("Schema conversion failed: %v", err))
	}
	if result.Query == "" {
		result.Query = query
	}
	return result
}

func decodeRaw(data map[string]any) (*QueryResult, error) {
	clean := make(map[string]any, len(data))
	for k, v := range data {
		clean[k] = v
	}

	routing, hasRouting := asObject(clean["routing"])
	if hasRouting {
		if _, ok := routing["intent"]; !ok {
			return nil, errors.New("routing: intent is required")
		}
	} else {
		delete(clean, "routing")
	}

	if response, ok := asObject(clean["response"]); ok {
		clean["response"] = cleanResponse(response)
	} else {
		delete(clean, "response")
	}

	if _, ok := asObject(clean["evaluation"]); !ok {
		delete(clean, "evaluation")
	}

	var out QueryResult
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(clean); err != nil {
		return nil, err
	}
	return &out, nil
}

// cleanResponse drops source document entries that are not objects and
// fills in the agent name when it is missing.
func cleanResponse(response map[string]any) map[string]any {
	out := make(map[string]any, len(response))
	for k, v := range response {
		out[k] = v
	}
	if _, ok := out["agent"]; !ok {
		out["agent"] = "unknown"
	}

	docs, _ := out["source_documents"].([]any)
	kept := make([]any, 0, len(docs))
	for _, d := range docs {
		if m, ok := asObject(d); ok {
			kept = append(kept, m)
		}
	}
	out["source_documents"] = kept
	return out
}

// asObject reports whether v is a non-empty JSON object.
func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil, false
	}
	return m, true
}
