package dtos

import "github.com/justsurfingit/rfp-manager/internal/models"

// SkillExtractionRequest is validated by the skill service, not by binding,
// so blank text maps to the extraction validation error.
type SkillExtractionRequest struct {
	Text string `json:"text"`
}

// ReloadRequest names a taxonomy file next to the configured one. Empty means
// the configured file itself.
type ReloadRequest struct {
	Path string `json:"path"`
}

// ScanResponse seeds the editable skill and language lists of an RFP.
type ScanResponse struct {
	RFPID     string                `json:"rfp_id"`
	Skills    []models.SkillItem    `json:"skills"`
	Languages []models.LanguageItem `json:"languages"`
	Warning   string                `json:"warning,omitempty"`
}

type AttachmentPayload struct {
	Name          string `json:"name" binding:"required,notblank"`
	ContentType   string `json:"content_type"`
	ContentBase64 string `json:"content_base64" binding:"required,base64"`
}

type MailRequest struct {
	To          []string            `json:"to" binding:"required,min=1,dive,email"`
	Cc          []string            `json:"cc" binding:"omitempty,dive,email"`
	Bcc         []string            `json:"bcc" binding:"omitempty,dive,email"`
	Subject     string              `json:"subject" binding:"required,notblank"`
	Body        string              `json:"body" binding:"required"`
	IsHTML      *bool               `json:"is_html"`
	RFPID       string              `json:"rfp_id" binding:"omitempty,uuid"`
	Attachments []AttachmentPayload `json:"attachments" binding:"omitempty,dive"`
}
