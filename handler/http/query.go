package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type queryRequest struct {
	Query    string `json:"query" binding:"required"`
	Evaluate bool   `json:"evaluate"`
}

// ProcessQuery godoc
// @Summary Route a question and answer it
// @Tags query
// @Accept json
// @Produce json
// @Param body body queryRequest true "Question"
// @Success 200 {object} schema.QueryResult
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /query [post]
func (h *Handler) ProcessQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, err)
		return
	}

	result, err := h.queryService.ProcessQuery(c.Request.Context(), req.Query, req.Evaluate)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	sendJSON(c, http.StatusOK, result)
}

// Classify godoc
// @Summary Classify a question without answering it
// @Tags query
// @Accept json
// @Produce json
// @Param body body queryRequest true "Question"
// @Success 200 {object} schema.RoutingInfo
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /classify [post]
func (h *Handler) Classify(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, err)
		return
	}

	routing, err := h.queryService.Classify(c.Request.Context(), req.Query)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	sendJSON(c, http.StatusOK, routing)
}

// Answer godoc
// @Summary Ask one domain agent directly
// @Tags query
// @Accept json
// @Produce json
// @Param intent path string true "Agent intent (hr, tech, finance)"
// @Param body body queryRequest true "Question"
// @Success 200 {object} schema.ResponseInfo
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /agents/{intent}/answer [post]
func (h *Handler) Answer(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, err)
		return
	}

	response, err := h.queryService.Answer(c.Request.Context(), c.Param("intent"), req.Query)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	sendJSON(c, http.StatusOK, response)
}
