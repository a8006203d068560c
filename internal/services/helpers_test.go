package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/rfp-manager/internal/database"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testTaxonomy = `{
	"KS1": {"skill_name": "Python (Programming Language)", "low_surface_forms": ["python"]},
	"KS2": {"skill_name": "Docker"},
	"KS3": {"skill_name": "English language"},
	"KS4": {"skill_name": "French language"},
	"KS5": {"skill_name": "PowerShell"},
	"KS6": {"skill_type": "Hard Skill"}
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newTestSkillService(t *testing.T) *SkillService {
	t.Helper()
	path := writeFile(t, "skills.json", testTaxonomy)
	m, err := LoadMatcher(path, "")
	require.NoError(t, err)
	return NewSkillService(m, SkillSettings{TaxonomyPath: path, Threshold: 0.5, Timeout: 5 * time.Second})
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect("sqlite://file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	return db
}
