package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Router struct {
	RFP         *RFPHandler
	Skill       *SkillHandler
	Mail        *MailHandler
	Import      *ImportHandler
	CORSOrigins []string // empty allows every origin
}

// Engine builds the gin engine with CORS and every API route.
func (rt *Router) Engine() *gin.Engine {
	r := gin.Default()

	config := cors.DefaultConfig()
	if len(rt.CORSOrigins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = rt.CORSOrigins
	}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(config))

	r.GET("/", Index)

	api := r.Group("/api/v1")
	{
		api.GET("/health", HealthCheck)

		// RFP Routes
		api.GET("/rfps", rt.RFP.List)
		api.POST("/rfps", rt.RFP.Create)
		api.POST("/rfps/draft", rt.RFP.Draft)
		api.GET("/rfps/:id", rt.RFP.Get)
		api.PUT("/rfps/:id", rt.RFP.Update)
		api.DELETE("/rfps/:id", rt.RFP.Delete)
		api.GET("/rfps/:id/events", rt.RFP.Events)
		api.POST("/rfps/:id/scan", rt.RFP.Scan)

		// Skill extraction
		api.POST("/skills/extract", rt.Skill.Extract)
		api.GET("/skills/health", rt.Skill.Health)
		api.POST("/skills/reload", rt.Skill.Reload)

		api.POST("/mail", rt.Mail.Send)
		api.POST("/imports/boond", rt.Import.SyncBoond)
	}
	return r
}
