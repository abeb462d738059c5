package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ragrouter/src/core/schema"
	"ragrouter/src/infrastructure/job"
)

type jobResponse struct {
	Job    *job.Job            `json:"job"`
	Result *schema.QueryResult `json:"result,omitempty"`
}

// EnqueueJob godoc
// @Summary Process a question in the background
// @Tags jobs
// @Accept json
// @Produce json
// @Param body body queryRequest true "Question"
// @Success 202 {object} job.Job
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /jobs [post]
func (h *Handler) EnqueueJob(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, err)
		return
	}

	j, err := h.jobs.EnqueueQuery(c.Request.Context(), req.Query, req.Evaluate)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	sendJSON(c, http.StatusAccepted, j)
}

// GetJob godoc
// @Summary Get a job and, once finished, its result
// @Tags jobs
// @Param id path int true "Job ID"
// @Produce json
// @Success 200 {object} jobResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /jobs/{id} [get]
func (h *Handler) GetJob(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, fmt.Errorf("invalid job id %q", c.Param("id")))
		return
	}

	j, result, err := h.jobs.Result(c.Request.Context(), id)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	sendJSON(c, http.StatusOK, jobResponse{Job: j, Result: result})
}
