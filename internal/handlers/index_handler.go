package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/rfp-manager/internal/dtos"
)

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Index lists the API and the level vocabularies clients should offer.
func Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "rfp-manager",
		"endpoints": []string{
			"GET /api/v1/health",
			"GET /api/v1/rfps",
			"POST /api/v1/rfps",
			"GET /api/v1/rfps/:id",
			"PUT /api/v1/rfps/:id",
			"DELETE /api/v1/rfps/:id",
			"GET /api/v1/rfps/:id/events",
			"POST /api/v1/rfps/:id/scan",
			"POST /api/v1/rfps/draft",
			"POST /api/v1/skills/extract",
			"GET /api/v1/skills/health",
			"POST /api/v1/skills/reload",
			"POST /api/v1/mail",
			"POST /api/v1/imports/boond",
		},
		"skill_levels":    strings.Fields(dtos.SkillLevels),
		"language_levels": strings.Fields(dtos.LanguageLevels),
	})
}
