package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragrouter/src/core/schema"
	"ragrouter/src/core/system"
	"ragrouter/src/infrastructure/job"
)

type stubQueryService struct {
	err     error
	healthy bool
	query   string
	intent  string
}

func (s *stubQueryService) ProcessQuery(_ context.Context, query string, _ bool) (*schema.QueryResult, error) {
	s.query = query
	if s.err != nil {
		return nil, s.err
	}
	return &schema.QueryResult{
		Query:    query,
		Routing:  &schema.RoutingInfo{Intent: "hr", Confidence: 0.9, RouteTo: "hr_agent"},
		Response: &schema.ResponseInfo{Agent: "hr_agent", Answer: "20 days", SourceDocuments: []schema.SourceDocument{}},
	}, nil
}

func (s *stubQueryService) Classify(_ context.Context, query string) (*schema.RoutingInfo, error) {
	s.query = query
	return &schema.RoutingInfo{Intent: "tech", Confidence: 0.8, RouteTo: "tech_agent"}, s.err
}

func (s *stubQueryService) Answer(_ context.Context, intent, query string) (*schema.ResponseInfo, error) {
	s.intent, s.query = intent, query
	if intent != "finance" {
		return nil, fmt.Errorf("%w: %q", system.ErrUnknownIntent, intent)
	}
	return &schema.ResponseInfo{Agent: "finance_agent", Answer: "$75"}, nil
}

func (s *stubQueryService) Info() system.Info {
	return system.Info{Agents: []string{"orchestrator"}, VectorStores: []string{"hr"}, Provider: "openai", Model: "gpt-3.5-turbo"}
}

func (s *stubQueryService) CheckHealth(context.Context) *system.HealthStatus {
	if s.healthy {
		return &system.HealthStatus{Status: "healthy", Components: map[string]system.ComponentStatus{"weaviate": system.StatusUp}}
	}
	return &system.HealthStatus{Status: "unhealthy", Components: map[string]system.ComponentStatus{"weaviate": system.StatusDown}}
}

type stubJobs struct {
	jobs map[int]*job.Job
}

func (s *stubJobs) EnqueueQuery(_ context.Context, query string, evaluate bool) (*job.Job, error) {
	payload, _ := json.Marshal(job.QueryPayload{Query: query, Evaluate: evaluate})
	j := &job.Job{ID: len(s.jobs) + 1, TaskType: job.TaskTypeQuery, Payload: payload, Status: job.JobStatusPending}
	s.jobs[j.ID] = j
	return j, nil
}

func (s *stubJobs) Result(_ context.Context, id int) (*job.Job, *schema.QueryResult, error) {
	j, ok := s.jobs[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %d", job.ErrJobNotFound, id)
	}
	return j, nil, nil
}

func newTestRouter(qs QueryService, jobs JobQueue) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(qs, jobs).RegisterRoutes(r)
	return r
}

func doRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProcessQuery(t *testing.T) {
	qs := &stubQueryService{}
	r := newTestRouter(qs, nil)

	w := doRequest(r, http.MethodPost, "/api/v1/query", queryRequest{Query: "How many vacation days?"})
	require.Equal(t, http.StatusOK, w.Code)

	var result schema.QueryResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "hr", result.Intent())
	assert.Equal(t, "20 days", result.Answer())
	assert.Equal(t, "How many vacation days?", qs.query)
}

func TestProcessQueryErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     any
		err      error
		wantCode int
		wantErr  string
	}{
		{"missing query", map[string]any{"evaluate": true}, nil, http.StatusBadRequest, "BAD_REQUEST"},
		{"pipeline failure", queryRequest{Query: "q"}, errors.New("llm down"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&stubQueryService{err: tt.err}, nil)
			w := doRequest(r, http.MethodPost, "/api/v1/query", tt.body)
			assert.Equal(t, tt.wantCode, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantErr, resp.Code)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestClassify(t *testing.T) {
	r := newTestRouter(&stubQueryService{}, nil)

	w := doRequest(r, http.MethodPost, "/api/v1/classify", queryRequest{Query: "My laptop won't boot"})
	require.Equal(t, http.StatusOK, w.Code)

	var routing schema.RoutingInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &routing))
	assert.Equal(t, "tech", routing.Intent)
	assert.Equal(t, "tech_agent", routing.RouteTo)
}

func TestAnswer(t *testing.T) {
	qs := &stubQueryService{}
	r := newTestRouter(qs, nil)

	w := doRequest(r, http.MethodPost, "/api/v1/agents/finance/answer", queryRequest{Query: "Meal limit?"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "finance", qs.intent)

	w = doRequest(r, http.MethodPost, "/api/v1/agents/legal/answer", queryRequest{Query: "Meal limit?"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_FOUND", resp.Code)
}

func TestSystemAndHealth(t *testing.T) {
	qs := &stubQueryService{healthy: true}
	r := newTestRouter(qs, nil)

	w := doRequest(r, http.MethodGet, "/api/v1/system", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info system.Info
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "openai", info.Provider)

	w = doRequest(r, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	qs.healthy = false
	w = doRequest(r, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"weaviate":"down"`)
}

func TestJobRoutes(t *testing.T) {
	r := newTestRouter(&stubQueryService{}, &stubJobs{jobs: map[int]*job.Job{}})

	w := doRequest(r, http.MethodPost, "/api/v1/jobs", queryRequest{Query: "Reset my password", Evaluate: true})
	require.Equal(t, http.StatusAccepted, w.Code)
	var created job.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, job.JobStatusPending, created.Status)

	w = doRequest(r, http.MethodGet, "/api/v1/jobs/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got jobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Job.ID)
	assert.Nil(t, got.Result)

	w = doRequest(r, http.MethodGet, "/api/v1/jobs/7", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodGet, "/api/v1/jobs/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJobRoutesDisabledWithoutQueue(t *testing.T) {
	r := newTestRouter(&stubQueryService{}, nil)
	w := doRequest(r, http.MethodPost, "/api/v1/jobs", queryRequest{Query: "q"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
