package extraction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const fixtureTaxonomy = `{
	"KS1": {
		"skill_name": "Python (Programming Language)",
		"skill_type": "Hard Skill",
		"high_surfce_forms": {"full": "python programming language"},
		"low_surface_forms": ["python", "python programming"]
	},
	"KS2": {"skill_name": "Docker"},
	"KS3": {"skill_name": "English language"},
	"KS4": {"skill_name": "French language"},
	"KS5": {"skill_name": "Active Directory"},
	"KS6": {"skill_name": "Root Cause Analysis"},
	"KS7": {"skill_name": "C++"},
	"KS8": {"skill_name": "Node.js"},
	"KS9": {"skill_type": "Soft Skill"}
}`

func fixture(t *testing.T) *Taxonomy {
	t.Helper()
	tax, err := ParseTaxonomy(strings.NewReader(fixtureTaxonomy), FormatJSON)
	require.NoError(t, err)
	return tax
}

func fixtureMatcher(t *testing.T, opts ...MatcherOption) *Matcher {
	t.Helper()
	m, err := BuildMatcher(fixture(t), opts...)
	require.NoError(t, err)
	return m
}

// taxonomyOf builds a taxonomy directly, bypassing the loader's checks.
func taxonomyOf(names map[string]string) *Taxonomy {
	tax := &Taxonomy{entries: make(map[string]*Entry)}
	for id, name := range names {
		tax.entries[id] = &Entry{ID: id, Name: name, Len: len(strings.Fields(name)), FullForms: []string{name}}
		tax.ids = append(tax.ids, id)
	}
	return tax
}
