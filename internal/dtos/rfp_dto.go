package dtos

import (
	"time"

	"github.com/justsurfingit/rfp-manager/internal/models"
)

// Level vocabularies offered by the RFP editor.
const (
	SkillLevels    = "Beginner Intermediate Advanced Expert"
	LanguageLevels = "NativeOrBilingual Fluent Professional Intermediate NiceToHave"
)

type SkillItem struct {
	Name  string `json:"name" binding:"required,notblank"`
	Level string `json:"level" binding:"omitempty,oneof=Beginner Intermediate Advanced Expert"`
}

type LanguageItem struct {
	Name  string `json:"name" binding:"required,notblank"`
	Level string `json:"level" binding:"omitempty,oneof=NativeOrBilingual Fluent Professional Intermediate NiceToHave"`
}

type RFPCreationRequest struct {
	Role           string `json:"role" binding:"required,notblank"`
	CompanyName    string `json:"company_name" binding:"required,notblank"`
	CompanyCity    string `json:"company_city" binding:"required"`
	JobDescription string `json:"job_description" binding:"required"`

	// Optional Fields
	Skills    []SkillItem    `json:"skills" binding:"omitempty,dive"`
	Languages []LanguageItem `json:"languages" binding:"omitempty,dive"`
	StartDate *time.Time     `json:"start_date"`
	Remote    bool           `json:"remote"`
}

// RFPUpdateRequest carries only the fields to change; nil means untouched.
type RFPUpdateRequest struct {
	Role           *string         `json:"role" binding:"omitempty,notblank"`
	CompanyName    *string         `json:"company_name" binding:"omitempty,notblank"`
	CompanyCity    *string         `json:"company_city"`
	JobDescription *string         `json:"job_description"`
	Skills         *[]SkillItem    `json:"skills" binding:"omitempty,dive"`
	Languages      *[]LanguageItem `json:"languages" binding:"omitempty,dive"`
	Status         *string         `json:"status" binding:"omitempty,oneof=OPEN CLOSED"`
	StartDate      *time.Time      `json:"start_date"`
	Remote         *bool           `json:"remote"`
}

// Empty reports whether the update carries no field at all.
func (r *RFPUpdateRequest) Empty() bool {
	return r.Role == nil && r.CompanyName == nil && r.CompanyCity == nil &&
		r.JobDescription == nil && r.Skills == nil && r.Languages == nil &&
		r.Status == nil && r.StartDate == nil && r.Remote == nil
}

type RFPDraftRequest struct {
	RawHTML string `json:"raw_html" binding:"required"`
	URL     string `json:"url"`
}

// RFPDraft is what the LLM reads out of a raw posting.
type RFPDraft struct {
	Role           string `json:"role"`
	CompanyName    string `json:"company_name"`
	CompanyCity    string `json:"company_city"`
	JobDescription string `json:"job_description"`
}

func ToSkillItems(in []SkillItem) []models.SkillItem {
	out := make([]models.SkillItem, 0, len(in))
	for _, s := range in {
		out = append(out, models.SkillItem{Name: s.Name, Level: s.Level})
	}
	return out
}

func ToLanguageItems(in []LanguageItem) []models.LanguageItem {
	out := make([]models.LanguageItem, 0, len(in))
	for _, l := range in {
		out = append(out, models.LanguageItem{Name: l.Name, Level: l.Level})
	}
	return out
}
