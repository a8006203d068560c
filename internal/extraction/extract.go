package extraction

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Result is the outcome of one extraction. The counts always equal the list lengths.
type Result struct {
	Skills         []string `json:"skills"`
	Languages      []string `json:"languages"`
	SkillsCount    int      `json:"skills_count"`
	LanguagesCount int      `json:"languages_count"`
}

// NewResult splits names and fills in the counts.
func NewResult(names []string) *Result {
	skills, languages := Split(names)
	return &Result{
		Skills:         skills,
		Languages:      languages,
		SkillsCount:    len(skills),
		LanguagesCount: len(languages),
	}
}

// Run executes annotation, normalization and splitting as one unit of work.
func Run(ctx context.Context, m *Matcher, text string, threshold float64) (*Result, error) {
	ann, err := m.Annotate(ctx, PlainText(text), threshold)
	if err != nil {
		return nil, err
	}
	return NewResult(Normalize(ann, m.Taxonomy())), nil
}

const blockSelector = "br, p, div, li, ul, ol, tr, td, th, h1, h2, h3, h4, h5, h6"

// PlainText strips markup from HTML job descriptions so block boundaries
// become line breaks. Text without markup is returned unchanged.
func PlainText(text string) string {
	if !strings.Contains(text, "<") {
		return text
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}
	doc.Find("script, style").Remove()
	doc.Find(blockSelector).AfterHtml("\n")
	return doc.Text()
}
