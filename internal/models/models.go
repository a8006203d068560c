package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusOpen   = "OPEN"
	StatusClosed = "CLOSED"

	SourceManual = "manual"
	SourceBoond  = "boond"
	SourceDraft  = "draft"
)

// SkillItem is a required skill with an optional seniority level.
type SkillItem struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

// LanguageItem is a required spoken language with an optional proficiency.
type LanguageItem struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

type RFP struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Role           string `gorm:"not null" json:"role"`
	CompanyName    string `gorm:"index" json:"company_name"`
	CompanyCity    string `json:"company_city"`
	JobDescription string `gorm:"type:text" json:"job_description"`

	// Stored as JSON documents, the way the UI edits them.
	Skills    []SkillItem    `gorm:"type:text;serializer:json" json:"skills"`
	Languages []LanguageItem `gorm:"type:text;serializer:json" json:"languages"`

	Status    string     `gorm:"default:'OPEN'" json:"status"`
	StartDate *time.Time `json:"start_date,omitempty"`
	Remote    bool       `json:"remote"`

	Source     string `gorm:"default:'manual'" json:"source"`
	ExternalID string `gorm:"index" json:"external_id,omitempty"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (r *RFP) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

type RFPEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	RFPID     string    `gorm:"index;size:36" json:"rfp_id"`
	EventType string    `json:"event_type"`
	Details   string    `gorm:"type:text" json:"details"`
}

// SyncState is the importer bookmark, one row per external source.
type SyncState struct {
	Source      string    `gorm:"primaryKey"`
	LastUpdated time.Time `json:"last_updated"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProcessedOpportunity struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time
}
