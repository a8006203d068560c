package services

import (
	"strings"

	"github.com/justsurfingit/rfp-manager/internal/models"
	"gorm.io/gorm"
)

type MatcherService struct {
	DB *gorm.DB
}

func NewMatcherService(db *gorm.DB) *MatcherService {
	return &MatcherService{DB: db}
}

// FindOpenRFP looks for a manually entered, still open RFP describing the
// same requisition as an imported opportunity. It returns nil unless exactly
// one RFP matches both company and role.
func (s *MatcherService) FindOpenRFP(companyName, role string) *models.RFP {
	company := strings.ToLower(strings.TrimSpace(companyName))
	// Very short names ("X", "Go") would match everything.
	if len(company) < 3 {
		return nil
	}
	roleLower := strings.ToLower(strings.TrimSpace(role))

	var candidates []models.RFP
	s.DB.Where("status = ? AND (external_id = '' OR external_id IS NULL)", models.StatusOpen).Find(&candidates)

	var found *models.RFP
	for i := range candidates {
		c := &candidates[i]
		name := strings.ToLower(c.CompanyName)
		if len(name) < 3 {
			continue
		}
		// Either name may carry a suffix ("Stripe" vs "Stripe Inc").
		if !strings.Contains(name, company) && !strings.Contains(company, name) {
			continue
		}
		if !sameRole(strings.ToLower(c.Role), roleLower) {
			continue
		}
		if found != nil {
			return nil
		}
		found = c
	}
	return found
}

func sameRole(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}
