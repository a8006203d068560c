package handlers

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/rfp-manager/internal/dtos"
	"github.com/justsurfingit/rfp-manager/internal/services"
)

type MailHandler struct {
	Mail *services.MailService
}

func NewMailHandler(mail *services.MailService) *MailHandler {
	return &MailHandler{Mail: mail}
}

// Send is the POST /mail endpoint. Bodies are HTML unless is_html is false.
func (h *MailHandler) Send(c *gin.Context) {
	var req dtos.MailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	msg := &services.Message{
		To:      req.To,
		Cc:      req.Cc,
		Bcc:     req.Bcc,
		Subject: req.Subject,
		Body:    req.Body,
		HTML:    req.IsHTML == nil || *req.IsHTML,
	}
	for _, a := range req.Attachments {
		content, err := base64.StdEncoding.DecodeString(a.ContentBase64)
		if err != nil {
			respondBindError(c, err)
			return
		}
		if len(content) > services.MaxAttachmentSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "attachment " + a.Name + " exceeds 25 MB", "kind": KindValidation})
			return
		}
		msg.Attachments = append(msg.Attachments, services.Attachment{Name: a.Name, ContentType: a.ContentType, Content: content})
	}

	if err := h.Mail.Send(c.Request.Context(), msg, req.RFPID); err != nil {
		if err == services.ErrMailerDisabled {
			respondError(c, err)
			return
		}
		respondUpstream(c, "Mail delivery failed", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "sent"})
}
