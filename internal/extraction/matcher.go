package extraction

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"math"
	"os"
	"sort"
	"strings"
)

// FrequencyHints maps a token to how often it occurs in a reference corpus.
type FrequencyHints map[string]float64

// LoadFrequencyHints reads a JSON object of token -> count. A missing file is
// not an error: it returns nil hints.
func LoadFrequencyHints(path string) (FrequencyHints, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var hints FrequencyHints
	if err := json.Unmarshal(data, &hints); err != nil {
		return nil, &DataFormatError{Source: path, Message: "expected a mapping of token to count", Cause: err}
	}
	return hints, nil
}

type matcherConfig struct {
	hints FrequencyHints
}

// MatcherOption configures BuildMatcher.
type MatcherOption func(*matcherConfig)

// WithFrequencyHints weights partial matches by token rarity.
func WithFrequencyHints(h FrequencyHints) MatcherOption {
	return func(c *matcherConfig) { c.hints = h }
}

type phrase struct {
	tokens []string
	skill  int
}

type indexedSkill struct {
	entry  *Entry
	tokens map[string]bool
	total  float64
}

// Matcher scans text against one taxonomy snapshot. It is never modified
// after BuildMatcher returns and is safe for concurrent use.
type Matcher struct {
	tax     *Taxonomy
	skills  []indexedSkill
	full    map[string][]phrase
	low     map[string][]phrase
	partial map[string][]int
	weights map[string]float64
	rare    float64
	forms   int
}

// BuildMatcher indexes every surface form of tax.
func BuildMatcher(tax *Taxonomy, opts ...MatcherOption) (*Matcher, error) {
	if tax == nil || tax.Len() == 0 {
		return nil, &MatcherUnavailableError{Message: "taxonomy is empty"}
	}

	var cfg matcherConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Matcher{
		tax:     tax,
		full:    make(map[string][]phrase),
		low:     make(map[string][]phrase),
		partial: make(map[string][]int),
	}
	m.applyHints(cfg.hints)

	for idx, entry := range tax.Entries() {
		seen := make(map[string]bool)
		for _, form := range entry.FullForms {
			m.addPhrase(m.full, form, idx, seen)
		}
		for _, form := range entry.LowForms {
			m.addPhrase(m.low, form, idx, seen)
		}

		sk := indexedSkill{entry: entry, tokens: make(map[string]bool)}
		for _, tok := range tokenize(entry.Name) {
			if stopWords[tok] || sk.tokens[tok] {
				continue
			}
			sk.tokens[tok] = true
			sk.total += m.weight(tok)
		}
		if len(sk.tokens) >= 2 || (entry.MatchOnTokens && len(sk.tokens) == 1) {
			for tok := range sk.tokens {
				m.partial[tok] = append(m.partial[tok], idx)
			}
		}
		m.skills = append(m.skills, sk)
	}

	if m.forms == 0 {
		return nil, &MatcherUnavailableError{Message: "no surface form produced any token"}
	}

	for _, index := range []map[string][]phrase{m.full, m.low} {
		for _, list := range index {
			sort.SliceStable(list, func(i, j int) bool {
				if len(list[i].tokens) != len(list[j].tokens) {
					return len(list[i].tokens) > len(list[j].tokens)
				}
				return list[i].skill < list[j].skill
			})
		}
	}
	for _, list := range m.partial {
		sort.Ints(list)
	}

	return m, nil
}

func (m *Matcher) addPhrase(index map[string][]phrase, form string, skill int, seen map[string]bool) {
	tokens := tokenize(form)
	if len(tokens) == 0 {
		return
	}
	key := strings.Join(tokens, " ")
	if seen[key] {
		return
	}
	seen[key] = true
	index[tokens[0]] = append(index[tokens[0]], phrase{tokens: tokens, skill: skill})
	m.forms++
}

// applyHints converts corpus counts into IDF-style token weights. Entries
// that are not a single token or carry a negative count are skipped.
func (m *Matcher) applyHints(hints FrequencyHints) {
	if len(hints) == 0 {
		return
	}
	var sum float64
	counts := make(map[string]float64, len(hints))
	skipped := 0
	for raw, count := range hints {
		tokens := tokenize(raw)
		if len(tokens) != 1 || count < 0 || math.IsNaN(count) || math.IsInf(count, 0) {
			skipped++
			continue
		}
		counts[tokens[0]] += count
		sum += count
	}
	if len(counts) == 0 || sum == 0 {
		log.Printf("⚠️  Matcher: no usable frequency hints, using uniform weights")
		return
	}
	m.weights = make(map[string]float64, len(counts))
	for tok, c := range counts {
		m.weights[tok] = math.Log(1 + sum/(1+c))
	}
	m.rare = math.Log(1 + sum)
	if skipped > 0 {
		log.Printf("⚠️  Matcher: skipped %d unsupported frequency hint(s)", skipped)
	}
}

func (m *Matcher) weight(tok string) float64 {
	if stopWords[tok] {
		return 0
	}
	if m.weights == nil {
		return 1
	}
	if w, ok := m.weights[tok]; ok {
		return w
	}
	return m.rare
}

// Taxonomy returns the snapshot the matcher was built from.
func (m *Matcher) Taxonomy() *Taxonomy {
	return m.tax
}

// Forms returns the number of indexed surface forms.
func (m *Matcher) Forms() int {
	return m.forms
}

// Weighted reports whether frequency hints were applied.
func (m *Matcher) Weighted() bool {
	return m.weights != nil
}
