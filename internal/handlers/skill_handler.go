package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/rfp-manager/internal/dtos"
	"github.com/justsurfingit/rfp-manager/internal/services"
)

type SkillHandler struct {
	Skills *services.SkillService
}

func NewSkillHandler(skills *services.SkillService) *SkillHandler {
	return &SkillHandler{Skills: skills}
}

// Extract is the POST /skills/extract endpoint
func (h *SkillHandler) Extract(c *gin.Context) {
	var req dtos.SkillExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	res, err := h.Skills.Extract(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *SkillHandler) Health(c *gin.Context) {
	stats := h.Skills.Stats()
	if !stats.Ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_loaded", "stats": stats})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "stats": stats})
}

// Reload swaps in a matcher built from the configured taxonomy or a sibling file.
func (h *SkillHandler) Reload(c *gin.Context) {
	var req dtos.ReloadRequest
	// An empty body reloads the configured taxonomy.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}
	if err := h.Skills.Reload(req.Path); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reloaded", "stats": h.Skills.Stats()})
}
