package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/justsurfingit/rfp-manager/internal/dtos"
	"github.com/justsurfingit/rfp-manager/internal/models"
	"gorm.io/gorm"
)

var (
	ErrRFPNotFound      = errors.New("rfp not found")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
)

const (
	EventCreated  = "CREATED"
	EventUpdated  = "UPDATED"
	EventDeleted  = "DELETED"
	EventMailed   = "MAILED"
	EventImported = "IMPORTED"
	EventScanned  = "SCANNED"
)

type RFPService struct {
	DB *gorm.DB
}

func NewRFPService(db *gorm.DB) *RFPService {
	return &RFPService{DB: db}
}

// List returns RFPs newest first, optionally filtered by status.
func (s *RFPService) List(status string) ([]models.RFP, error) {
	var rfps []models.RFP
	q := s.DB.Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", strings.ToUpper(status))
	}
	if err := q.Find(&rfps).Error; err != nil {
		return nil, err
	}
	return rfps, nil
}

func (s *RFPService) Get(id string) (*models.RFP, error) {
	var rfp models.RFP
	err := s.DB.First(&rfp, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRFPNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rfp, nil
}

func (s *RFPService) Create(req *dtos.RFPCreationRequest) (*models.RFP, error) {
	rfp := &models.RFP{
		Role:           strings.TrimSpace(req.Role),
		CompanyName:    strings.TrimSpace(req.CompanyName),
		CompanyCity:    strings.TrimSpace(req.CompanyCity),
		JobDescription: req.JobDescription,
		Skills:         dtos.ToSkillItems(req.Skills),
		Languages:      dtos.ToLanguageItems(req.Languages),
		StartDate:      req.StartDate,
		Remote:         req.Remote,
		Status:         models.StatusOpen,
		Source:         models.SourceManual,
	}
	if err := s.Insert(rfp); err != nil {
		return nil, err
	}
	return rfp, nil
}

// Insert stores a prepared RFP and logs its creation event in one transaction.
func (s *RFPService) Insert(rfp *models.RFP) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rfp).Error; err != nil {
			return err
		}
		return tx.Create(&models.RFPEvent{
			RFPID:     rfp.ID,
			EventType: EventCreated,
			Details:   fmt.Sprintf("%s at %s (source: %s)", rfp.Role, rfp.CompanyName, rfp.Source),
		}).Error
	})
}

// Update applies the non-nil fields of req.
func (s *RFPService) Update(id string, req *dtos.RFPUpdateRequest) (*models.RFP, error) {
	if req.Empty() {
		return nil, ErrNoFieldsToUpdate
	}
	rfp, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	var changed []string
	if req.Role != nil {
		rfp.Role = strings.TrimSpace(*req.Role)
		changed = append(changed, "role")
	}
	if req.CompanyName != nil {
		rfp.CompanyName = strings.TrimSpace(*req.CompanyName)
		changed = append(changed, "company_name")
	}
	if req.CompanyCity != nil {
		rfp.CompanyCity = strings.TrimSpace(*req.CompanyCity)
		changed = append(changed, "company_city")
	}
	if req.JobDescription != nil {
		rfp.JobDescription = *req.JobDescription
		changed = append(changed, "job_description")
	}
	if req.Skills != nil {
		rfp.Skills = dtos.ToSkillItems(*req.Skills)
		changed = append(changed, "skills")
	}
	if req.Languages != nil {
		rfp.Languages = dtos.ToLanguageItems(*req.Languages)
		changed = append(changed, "languages")
	}
	if req.Status != nil {
		rfp.Status = *req.Status
		changed = append(changed, "status")
	}
	if req.StartDate != nil {
		rfp.StartDate = req.StartDate
		changed = append(changed, "start_date")
	}
	if req.Remote != nil {
		rfp.Remote = *req.Remote
		changed = append(changed, "remote")
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(rfp).Error; err != nil {
			return err
		}
		return tx.Create(&models.RFPEvent{
			RFPID:     rfp.ID,
			EventType: EventUpdated,
			Details:   "Changed: " + strings.Join(changed, ", "),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return rfp, nil
}

func (s *RFPService) Delete(id string) error {
	res := s.DB.Delete(&models.RFP{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRFPNotFound
	}
	s.LogEvent(id, EventDeleted, "")
	return nil
}

// Events returns the lifecycle log of an RFP, oldest first.
func (s *RFPService) Events(id string) ([]models.RFPEvent, error) {
	var events []models.RFPEvent
	if err := s.DB.Where("rfp_id = ?", id).Order("id ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// LogEvent records an event. Failures are logged, never returned.
func (s *RFPService) LogEvent(rfpID, eventType, details string) {
	event := models.RFPEvent{RFPID: rfpID, EventType: eventType, Details: details}
	if err := s.DB.Create(&event).Error; err != nil {
		log.Printf("⚠️  Could not log %s event for RFP %s: %v", eventType, rfpID, err)
	}
}
