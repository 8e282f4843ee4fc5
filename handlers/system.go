package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quickpaste/quickpaste/config"
	"github.com/quickpaste/quickpaste/internal/services"
)

// SystemHandler handles system endpoints
type SystemHandler struct {
	service *services.PasteService
	config  *config.Config
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(service *services.PasteService, config *config.Config) *SystemHandler {
	return &SystemHandler{
		service: service,
		config:  config,
	}
}

// Root handles GET /, returning service info and the API map.
func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":           "Quick Paste",
		"version":        h.config.Version,
		"total_pastes":   h.service.Total(),
		"max_size_bytes": h.config.MaxSize,
		"api": gin.H{
			"create": "POST /api/paste",
			"list":   "GET /api/pastes",
			"view":   "GET /{id}",
			"raw":    "GET /{id}/raw",
			"delete": "DELETE /api/paste/{id}",
		},
	})
}

// Health handles health check via GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"pastes": h.service.Total(),
	})
}
