package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quickpaste/quickpaste/config"
	"github.com/quickpaste/quickpaste/internal/services"
	"github.com/quickpaste/quickpaste/models"
)

// defaultListLimit bounds GET /api/pastes when no limit is given.
const defaultListLimit = 50

// PasteHandler handles the paste management API: create, list, delete,
// and metadata retrieval.
type PasteHandler struct {
	service *services.PasteService
	config  *config.Config
}

// NewPasteHandler creates a new paste API handler
func NewPasteHandler(service *services.PasteService, config *config.Config) *PasteHandler {
	return &PasteHandler{
		service: service,
		config:  config,
	}
}

type createRequest struct {
	Content        string        `json:"content"`
	Language       string        `json:"language"`
	Title          string        `json:"title"`
	ExpiresInHours optionalHours `json:"expires_in_hours"`
	BurnAfterRead  bool          `json:"burn_after_read"`
}

// optionalHours distinguishes an omitted expires_in_hours field from an
// explicit JSON null: omitted gets the configured default expiry, null
// (like zero) means the paste never expires.
type optionalHours struct {
	set   bool
	value int
}

func (o *optionalHours) UnmarshalJSON(data []byte) error {
	o.set = true
	if string(data) == "null" {
		o.value = 0
		return nil
	}
	return json.Unmarshal(data, &o.value)
}

// Create handles POST /api/paste
func (h *PasteHandler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	// An omitted expiry gets the configured default; an explicit null,
	// zero, or negative value means the paste never expires.
	hours := h.config.DefaultExpiryHours
	if req.ExpiresInHours.set {
		hours = req.ExpiresInHours.value
	}

	paste, err := h.service.Create(services.CreateRequest{
		Content:        []byte(req.Content),
		Title:          req.Title,
		Language:       req.Language,
		ExpiresInHours: hours,
		BurnAfterRead:  req.BurnAfterRead,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         paste.ID,
		"url":        h.config.PasteURL(paste.ID),
		"raw_url":    h.config.RawURL(paste.ID),
		"created_at": paste.CreatedAt,
		"expires_at": paste.ExpiresAt,
		"language":   paste.Language,
	})
}

// List handles GET /api/pastes
func (h *PasteHandler) List(c *gin.Context) {
	limit := defaultListLimit
	if val := c.Query("limit"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			limit = n
		}
	}

	pastes := h.service.List(limit)
	result := make([]gin.H, 0, len(pastes))
	for _, p := range pastes {
		result = append(result, h.summary(p))
	}

	c.JSON(http.StatusOK, gin.H{
		"pastes": result,
		"total":  h.service.Total(),
	})
}

// Delete handles DELETE /api/paste/:id
func (h *PasteHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.service.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": id})
}

// Meta handles GET /api/paste/:id, returning metadata without content.
// Metadata access does not consume a burn-after-read paste.
func (h *PasteHandler) Meta(c *gin.Context) {
	id := c.Param("id")

	paste, err := h.service.GetMeta(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":              paste.ID,
		"title":           paste.Title,
		"language":        paste.Language,
		"created_at":      paste.CreatedAt,
		"expires_at":      paste.ExpiresAt,
		"burn_after_read": paste.BurnAfterRead,
		"size":            paste.Size,
	})
}

// summary builds the list entry for a paste record.
func (h *PasteHandler) summary(p *models.Paste) gin.H {
	return gin.H{
		"id":         p.ID,
		"url":        h.config.PasteURL(p.ID),
		"title":      p.Title,
		"language":   p.Language,
		"size":       p.Size,
		"created_at": p.CreatedAt,
		"expires_at": p.ExpiresAt,
	}
}

// respondError maps service errors to client-facing status codes.
// Storage faults are logged and surfaced as a generic 500 so callers
// cannot tell integrity details apart.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrContentTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrEmptyContent):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Paste not found"})
	default:
		log.Printf("[ERROR] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
