package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/justsurfingit/rfp-manager/internal/extraction"
	"github.com/justsurfingit/rfp-manager/internal/models"
)

const DefaultExtractionTimeout = 120 * time.Second

type SkillSettings struct {
	TaxonomyPath string
	HintsPath    string
	Threshold    float64
	Timeout      time.Duration
}

// SkillService owns the loaded matcher. It is built once at startup and
// shared by every handler; Reload swaps the matcher without blocking readers.
type SkillService struct {
	matcher  atomic.Pointer[extraction.Matcher]
	settings SkillSettings
}

// ExtractOutcome is delivered by ExtractAsync.
type ExtractOutcome struct {
	Result *extraction.Result
	Err    error
}

// Proposal is what the scan action offers for human review. Levels are left empty.
type Proposal struct {
	Skills    []models.SkillItem
	Languages []models.LanguageItem
	Warning   string
}

type SkillStats struct {
	Ready     bool    `json:"ready"`
	Entries   int     `json:"entries"`
	Dropped   int     `json:"dropped"`
	Forms     int     `json:"surface_forms"`
	Weighted  bool    `json:"weighted"`
	Threshold float64 `json:"threshold"`
	Timeout   string  `json:"timeout"`
}

// NewSkillService wraps matcher, which may be nil when loading failed at startup.
func NewSkillService(matcher *extraction.Matcher, settings SkillSettings) *SkillService {
	if settings.Timeout <= 0 {
		settings.Timeout = DefaultExtractionTimeout
	}
	s := &SkillService{settings: settings}
	if matcher != nil {
		s.matcher.Store(matcher)
	}
	return s
}

// LoadMatcher reads a taxonomy and optional frequency hints and builds a matcher.
func LoadMatcher(taxonomyPath, hintsPath string) (*extraction.Matcher, error) {
	tax, err := extraction.LoadTaxonomy(taxonomyPath)
	if err != nil {
		return nil, err
	}

	hints, err := extraction.LoadFrequencyHints(hintsPath)
	if err != nil {
		// Hints only tune scoring.
		log.Printf("⚠️  Frequency hints ignored: %v", err)
		hints = nil
	}

	m, err := extraction.BuildMatcher(tax, extraction.WithFrequencyHints(hints))
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Skill matcher ready: %d skills, %d surface forms (dropped %d)", tax.Len(), m.Forms(), tax.Dropped())
	return m, nil
}

func (s *SkillService) Ready() bool {
	return s.matcher.Load() != nil
}

func (s *SkillService) Stats() SkillStats {
	st := SkillStats{Threshold: s.settings.Threshold, Timeout: s.settings.Timeout.String()}
	m := s.matcher.Load()
	if m == nil {
		return st
	}
	st.Ready = true
	st.Entries = m.Taxonomy().Len()
	st.Dropped = m.Taxonomy().Dropped()
	st.Forms = m.Forms()
	st.Weighted = m.Weighted()
	return st
}

// Reload builds a matcher from path (the configured taxonomy when empty) and
// swaps it in. path must name a file in the configured taxonomy's directory.
// Calls already running keep the matcher they started with.
func (s *SkillService) Reload(path string) error {
	path, err := s.taxonomyFile(path)
	if err != nil {
		log.Printf("❌ Reload rejected: %v", err)
		return err
	}
	log.Printf("🔄 Reloading skill taxonomy from %s", path)
	m, err := LoadMatcher(path, s.settings.HintsPath)
	if err != nil {
		log.Printf("❌ Reload failed, keeping current matcher: %v", err)
		return err
	}
	s.matcher.Store(m)
	return nil
}

// taxonomyFile resolves a reload target. Relative names are taken from the
// configured taxonomy's directory; anything outside it is refused.
func (s *SkillService) taxonomyFile(path string) (string, error) {
	if path == "" {
		return s.settings.TaxonomyPath, nil
	}
	dir := filepath.Dir(s.settings.TaxonomyPath)
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil || !filepath.IsLocal(rel) {
		return "", &extraction.ValidationError{Field: "path", Message: "taxonomy must be in " + dir}
	}
	return path, nil
}

// Extract runs the pipeline on text within the configured time limit.
func (s *SkillService) Extract(ctx context.Context, text string) (*extraction.Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &extraction.ValidationError{Field: "text", Message: "text must not be empty"}
	}
	m := s.matcher.Load()
	if m == nil {
		return nil, extraction.ErrExtractorUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, s.settings.Timeout)
	defer cancel()

	done := make(chan ExtractOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- ExtractOutcome{Err: &extraction.ExtractionInternalError{Message: fmt.Sprintf("panic: %v", r)}}
			}
		}()
		res, err := extraction.Run(ctx, m, text, s.settings.Threshold)
		done <- ExtractOutcome{Result: res, Err: err}
	}()

	select {
	case out := <-done:
		if out.Err != nil {
			return nil, s.classify(ctx, out.Err, len(text))
		}
		return out.Result, nil
	case <-ctx.Done():
		return nil, s.classify(ctx, ctx.Err(), len(text))
	}
}

// ExtractAsync runs Extract on its own goroutine. The channel receives exactly one outcome.
func (s *SkillService) ExtractAsync(ctx context.Context, text string) <-chan ExtractOutcome {
	out := make(chan ExtractOutcome, 1)
	go func() {
		res, err := s.Extract(ctx, text)
		out <- ExtractOutcome{Result: res, Err: err}
	}()
	return out
}

// Propose never fails. Any extraction problem yields empty lists and a warning.
func (s *SkillService) Propose(ctx context.Context, text string) Proposal {
	p := Proposal{Skills: []models.SkillItem{}, Languages: []models.LanguageItem{}}

	res, err := s.Extract(ctx, text)
	if err != nil {
		log.Printf("⚠️  Skill scan fell back to empty proposal: %v", err)
		p.Warning = err.Error()
		return p
	}
	for _, name := range res.Skills {
		p.Skills = append(p.Skills, models.SkillItem{Name: name})
	}
	for _, name := range res.Languages {
		p.Languages = append(p.Languages, models.LanguageItem{Name: name})
	}
	return p
}

func (s *SkillService) classify(ctx context.Context, err error, textLen int) error {
	var internal *extraction.ExtractionInternalError
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		log.Printf("⏱️  Extraction timed out after %s (text length %d)", s.settings.Timeout, textLen)
		return &extraction.ExtractionTimeoutError{Limit: s.settings.Timeout}
	case errors.Is(err, context.Canceled):
		log.Printf("🚫 Extraction canceled by caller (text length %d)", textLen)
		return err
	case errors.As(err, &internal):
	default:
		internal = &extraction.ExtractionInternalError{Message: "unexpected matcher failure", Cause: err}
	}
	log.Printf("❌ Extraction failed (text length %d, threshold %.2f): %v", textLen, s.settings.Threshold, internal)
	return internal
}
