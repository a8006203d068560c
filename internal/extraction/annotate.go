package extraction

import (
	"context"
	"sort"
)

// MatchKind distinguishes exact phrase hits from scored partial hits.
type MatchKind string

const (
	KindFull  MatchKind = "full"
	KindNGram MatchKind = "ngram"
)

// DefaultThreshold is the minimum n-gram score kept by Annotate.
const DefaultThreshold = 0.5

// ctxCheckInterval is how many scan steps run between context checks.
const ctxCheckInterval = 256

// Hit is a single taxonomy match. Start and End are token offsets.
type Hit struct {
	SkillID string
	Kind    MatchKind
	Score   float64
	Start   int
	End     int
}

// Annotation holds the hits of one scan, each list in text order.
type Annotation struct {
	Full  []Hit
	NGram []Hit
}

type scan struct {
	ctx    context.Context
	tokens []string
	used   []bool
	steps  int
}

func (s *scan) tick() error {
	s.steps++
	if s.steps%ctxCheckInterval == 0 {
		return s.ctx.Err()
	}
	return nil
}

func (s *scan) mark(start, end int) {
	for i := start; i < end; i++ {
		s.used[i] = true
	}
}

// Annotate scans text. Full-form phrases are matched first (longest phrase
// wins, tokens are consumed), then low surface forms and partial runs of
// multi-word skill names are matched on the remaining tokens. Partial runs
// scoring below threshold are discarded.
func (m *Matcher) Annotate(ctx context.Context, text string, threshold float64) (Annotation, error) {
	s := &scan{ctx: ctx, tokens: tokenize(text)}
	s.used = make([]bool, len(s.tokens))

	var ann Annotation
	if len(s.tokens) == 0 {
		return ann, nil
	}

	for i := 0; i < len(s.tokens); {
		if err := s.tick(); err != nil {
			return Annotation{}, err
		}
		if p, ok := m.longest(m.full, s, i); ok {
			end := i + len(p.tokens)
			ann.Full = append(ann.Full, Hit{SkillID: m.skills[p.skill].entry.ID, Kind: KindFull, Score: 1, Start: i, End: end})
			s.mark(i, end)
			i = end
			continue
		}
		i++
	}

	for i := 0; i < len(s.tokens); {
		if err := s.tick(); err != nil {
			return Annotation{}, err
		}
		if p, ok := m.longest(m.low, s, i); ok {
			end := i + len(p.tokens)
			ann.NGram = append(ann.NGram, Hit{SkillID: m.skills[p.skill].entry.ID, Kind: KindNGram, Score: 1, Start: i, End: end})
			s.mark(i, end)
			i = end
			continue
		}
		i++
	}

	for i := 0; i < len(s.tokens); {
		if err := s.tick(); err != nil {
			return Annotation{}, err
		}
		if s.used[i] || stopWords[s.tokens[i]] {
			i++
			continue
		}
		skill, score, end := m.bestPartial(s, i)
		if skill >= 0 && score >= threshold {
			ann.NGram = append(ann.NGram, Hit{SkillID: m.skills[skill].entry.ID, Kind: KindNGram, Score: score, Start: i, End: end})
			s.mark(i, end)
			i = end
			continue
		}
		i++
	}

	sort.SliceStable(ann.NGram, func(a, b int) bool {
		return ann.NGram[a].Start < ann.NGram[b].Start
	})
	return ann, nil
}

// longest returns the longest phrase starting at i whose tokens are all unused.
// Phrase lists are pre-sorted longest first.
func (m *Matcher) longest(index map[string][]phrase, s *scan, i int) (phrase, bool) {
	if s.used[i] {
		return phrase{}, false
	}
	for _, p := range index[s.tokens[i]] {
		end := i + len(p.tokens)
		if end > len(s.tokens) {
			continue
		}
		ok := true
		for k, tok := range p.tokens {
			if s.used[i+k] || s.tokens[i+k] != tok {
				ok = false
				break
			}
		}
		if ok {
			return p, true
		}
	}
	return phrase{}, false
}

// bestPartial finds the candidate skill whose name tokens best cover the run
// of unused tokens starting at i. Stop words may sit inside a run but never
// end it, and a repeated token ends it. Ties go to the longer run, then to
// the lower taxonomy position.
func (m *Matcher) bestPartial(s *scan, i int) (int, float64, int) {
	bestSkill, bestScore, bestEnd := -1, 0.0, 0
	for _, idx := range m.partial[s.tokens[i]] {
		sk := m.skills[idx]
		if sk.total <= 0 {
			continue
		}
		matched := make(map[string]bool, len(sk.tokens))
		var weight float64
		end := i
		for j := i; j < len(s.tokens) && !s.used[j]; j++ {
			tok := s.tokens[j]
			if stopWords[tok] {
				continue
			}
			if !sk.tokens[tok] || matched[tok] {
				break
			}
			matched[tok] = true
			weight += m.weight(tok)
			end = j + 1
		}
		if len(matched) < 2 && !(sk.entry.MatchOnTokens && len(matched) == 1) {
			continue
		}
		score := weight / sk.total
		if score > bestScore || (score == bestScore && end > bestEnd) {
			bestSkill, bestScore, bestEnd = idx, score, end
		}
	}
	return bestSkill, bestScore, bestEnd
}
