package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/rfp-manager/internal/dtos"
	"github.com/justsurfingit/rfp-manager/internal/services"
)

type RFPHandler struct {
	RFPs   *services.RFPService
	Skills *services.SkillService
	Mail   *services.MailService
	LLM    *services.LLMService
}

func NewRFPHandler(rfps *services.RFPService, skills *services.SkillService, mail *services.MailService, llm *services.LLMService) *RFPHandler {
	return &RFPHandler{RFPs: rfps, Skills: skills, Mail: mail, LLM: llm}
}

func (h *RFPHandler) List(c *gin.Context) {
	rfps, err := h.RFPs.List(c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rfps)
}

func (h *RFPHandler) Get(c *gin.Context) {
	rfp, err := h.RFPs.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rfp)
}

func (h *RFPHandler) Create(c *gin.Context) {
	var req dtos.RFPCreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	rfp, err := h.RFPs.Create(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	// Notification must outlive the request.
	go h.Mail.NotifyRFPCreated(context.WithoutCancel(c.Request.Context()), rfp)
	c.JSON(http.StatusCreated, rfp)
}

func (h *RFPHandler) Update(c *gin.Context) {
	var req dtos.RFPUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	rfp, err := h.RFPs.Update(c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rfp)
}

func (h *RFPHandler) Delete(c *gin.Context) {
	if err := h.RFPs.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RFPHandler) Events(c *gin.Context) {
	if _, err := h.RFPs.Get(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	events, err := h.RFPs.Events(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// Scan proposes skills and languages from the stored job description. It
// answers 200 even when extraction fails, with empty lists and a warning.
func (h *RFPHandler) Scan(c *gin.Context) {
	rfp, err := h.RFPs.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	p := h.Skills.Propose(c.Request.Context(), rfp.JobDescription)
	h.RFPs.LogEvent(rfp.ID, services.EventScanned, "")

	c.JSON(http.StatusOK, dtos.ScanResponse{
		RFPID:     rfp.ID,
		Skills:    p.Skills,
		Languages: p.Languages,
		Warning:   p.Warning,
	})
}

// Draft is the POST /rfps/draft endpoint: an LLM reads a raw posting and the
// description is scanned for skills.
func (h *RFPHandler) Draft(c *gin.Context) {
	var req dtos.RFPDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	draft, err := h.LLM.DraftRFP(c.Request.Context(), req.RawHTML)
	if err != nil {
		if err == services.ErrLLMDisabled {
			respondError(c, err)
			return
		}
		respondUpstream(c, "AI extraction failed", err)
		return
	}

	p := h.Skills.Propose(c.Request.Context(), draft.JobDescription)
	c.JSON(http.StatusOK, gin.H{
		"draft":     draft,
		"url":       req.URL,
		"skills":    p.Skills,
		"languages": p.Languages,
		"warning":   p.Warning,
	})
}
