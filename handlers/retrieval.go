package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quickpaste/quickpaste/config"
	"github.com/quickpaste/quickpaste/internal/render"
	"github.com/quickpaste/quickpaste/internal/services"
)

// RetrievalHandler serves paste content: the rendered HTML view and the
// raw bytes. For burn-after-read pastes the service removes the record
// as part of the read, before the response is written here.
type RetrievalHandler struct {
	service *services.PasteService
	config  *config.Config
}

// NewRetrievalHandler creates a new retrieval handler
func NewRetrievalHandler(service *services.PasteService, config *config.Config) *RetrievalHandler {
	return &RetrievalHandler{
		service: service,
		config:  config,
	}
}

// View handles GET /:id, rendering the syntax-highlighted HTML page.
func (h *RetrievalHandler) View(c *gin.Context) {
	id := c.Param("id")

	paste, content, err := h.service.Read(id)
	if err != nil {
		respondError(c, err)
		return
	}

	page, err := render.Page(paste, content)
	if err != nil {
		log.Printf("[ERROR] View: failed to render paste %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render paste"})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// Raw handles GET /:id/raw, serving the stored bytes verbatim.
func (h *RetrievalHandler) Raw(c *gin.Context) {
	id := c.Param("id")

	_, content, err := h.service.Read(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", content)
}
