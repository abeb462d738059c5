package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ragrouter/src/core/schema"
	"ragrouter/src/core/system"
	"ragrouter/src/infrastructure/job"
)

// QueryService is the query pipeline served over HTTP.
type QueryService interface {
	ProcessQuery(ctx context.Context, query string, evaluate bool) (*schema.QueryResult, error)
	Classify(ctx context.Context, query string) (*schema.RoutingInfo, error)
	Answer(ctx context.Context, intent, query string) (*schema.ResponseInfo, error)
	Info() system.Info
	CheckHealth(ctx context.Context) *system.HealthStatus
}

// JobQueue runs queries in the background.
type JobQueue interface {
	EnqueueQuery(ctx context.Context, query string, evaluate bool) (*job.Job, error)
	Result(ctx context.Context, id int) (*job.Job, *schema.QueryResult, error)
}

type Handler struct {
	queryService QueryService
	jobs         JobQueue
}

// NewHandler builds the API handler. jobs may be nil, in which case the job
// routes are not registered.
func NewHandler(queryService QueryService, jobs JobQueue) *Handler {
	return &Handler{
		queryService: queryService,
		jobs:         jobs,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	v1 := r.Group("/api/v1")

	// Query routes
	v1.POST("/query", h.ProcessQuery)
	v1.POST("/classify", h.Classify)
	v1.POST("/agents/:intent/answer", h.Answer)

	// Job routes
	if h.jobs != nil {
		v1.POST("/jobs", h.EnqueueJob)
		v1.GET("/jobs/:id", h.GetJob)
	}

	// System routes
	v1.GET("/system", h.SystemInfo)
	v1.GET("/health", h.CheckHealth)
}

// Common error response structure
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func sendError(c *gin.Context, status int, err error) {
	var code string
	switch {
	case errors.Is(err, system.ErrUnknownIntent), errors.Is(err, job.ErrJobNotFound):
		code = "NOT_FOUND"
		status = http.StatusNotFound
	case status == http.StatusBadRequest:
		code = "BAD_REQUEST"
	default:
		code = "INTERNAL_ERROR"
		status = http.StatusInternalServerError
	}

	c.JSON(status, ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
}

func sendJSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}
