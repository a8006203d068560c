package services

import (
	"testing"

	"github.com/justsurfingit/rfp-manager/internal/dtos"
	"github.com/justsurfingit/rfp-manager/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCreation() *dtos.RFPCreationRequest {
	return &dtos.RFPCreationRequest{
		Role:           " Data Engineer ",
		CompanyName:    "TechCorp",
		CompanyCity:    "Paris",
		JobDescription: "<p>Python and Docker</p>",
		Skills:         []dtos.SkillItem{{Name: "Python", Level: "Expert"}},
	}
}

func TestRFPService_CreateAndGet(t *testing.T) {
	svc := NewRFPService(newTestDB(t))

	rfp, err := svc.Create(sampleCreation())
	require.NoError(t, err)
	assert.Equal(t, "Data Engineer", rfp.Role)
	assert.Equal(t, models.StatusOpen, rfp.Status)
	assert.Equal(t, models.SourceManual, rfp.Source)
	assert.NotNil(t, rfp.Languages)

	got, err := svc.Get(rfp.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.SkillItem{{Name: "Python", Level: "Expert"}}, got.Skills)

	events, err := svc.Events(rfp.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventCreated, events[0].EventType)
}

func TestRFPService_GetUnknown(t *testing.T) {
	svc := NewRFPService(newTestDB(t))

	_, err := svc.Get("00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrRFPNotFound)
}

func TestRFPService_ListFiltersByStatus(t *testing.T) {
	svc := NewRFPService(newTestDB(t))

	open, err := svc.Create(sampleCreation())
	require.NoError(t, err)
	closed, err := svc.Create(sampleCreation())
	require.NoError(t, err)
	status := models.StatusClosed
	_, err = svc.Update(closed.ID, &dtos.RFPUpdateRequest{Status: &status})
	require.NoError(t, err)

	all, err := svc.List("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyOpen, err := svc.List("open")
	require.NoError(t, err)
	require.Len(t, onlyOpen, 1)
	assert.Equal(t, open.ID, onlyOpen[0].ID)
}

func TestRFPService_UpdateIsPartial(t *testing.T) {
	svc := NewRFPService(newTestDB(t))
	rfp, err := svc.Create(sampleCreation())
	require.NoError(t, err)

	city := "Brussels"
	langs := []dtos.LanguageItem{{Name: "Dutch", Level: "Fluent"}}
	updated, err := svc.Update(rfp.ID, &dtos.RFPUpdateRequest{CompanyCity: &city, Languages: &langs})
	require.NoError(t, err)

	assert.Equal(t, "Brussels", updated.CompanyCity)
	assert.Equal(t, "Data Engineer", updated.Role)
	assert.Equal(t, []models.SkillItem{{Name: "Python", Level: "Expert"}}, updated.Skills)

	reloaded, err := svc.Get(rfp.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.LanguageItem{{Name: "Dutch", Level: "Fluent"}}, reloaded.Languages)

	events, err := svc.Events(rfp.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Changed: company_city, languages", events[1].Details)
}

func TestRFPService_UpdateErrors(t *testing.T) {
	svc := NewRFPService(newTestDB(t))
	rfp, err := svc.Create(sampleCreation())
	require.NoError(t, err)

	_, err = svc.Update(rfp.ID, &dtos.RFPUpdateRequest{})
	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)

	role := "QA"
	_, err = svc.Update("missing", &dtos.RFPUpdateRequest{Role: &role})
	assert.ErrorIs(t, err, ErrRFPNotFound)
}

func TestRFPService_Delete(t *testing.T) {
	svc := NewRFPService(newTestDB(t))
	rfp, err := svc.Create(sampleCreation())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(rfp.ID))
	_, err = svc.Get(rfp.ID)
	assert.ErrorIs(t, err, ErrRFPNotFound)
	assert.ErrorIs(t, svc.Delete(rfp.ID), ErrRFPNotFound)
}
