package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SystemInfo godoc
// @Summary Describe agents, vector stores and the model in use
// @Tags system
// @Produce json
// @Success 200 {object} system.Info
// @Router /system [get]
func (h *Handler) SystemInfo(c *gin.Context) {
	sendJSON(c, http.StatusOK, h.queryService.Info())
}

// CheckHealth godoc
// @Summary Check system health status
// @Tags system
// @Produce json
// @Success 200 {object} system.HealthStatus
// @Failure 503 {object} system.HealthStatus
// @Router /health [get]
func (h *Handler) CheckHealth(c *gin.Context) {
	status := h.queryService.CheckHealth(c.Request.Context())
	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	sendJSON(c, code, status)
}
