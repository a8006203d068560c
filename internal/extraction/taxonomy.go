// Package extraction proposes skill and language names for job descriptions
// by matching them against a vendor skill taxonomy.
package extraction

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the serialization of a taxonomy source.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// FormatFromPath picks the format from the file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Entry is one retained taxonomy record.
type Entry struct {
	ID   string
	Name string
	// Len is the word count of Name.
	Len int

	// FullForms are exact phrases reported as full matches. Name is always first.
	FullForms []string
	// LowForms are lower-confidence phrases reported as n-gram matches.
	LowForms      []string
	MatchOnTokens bool

	// Attributes is the raw vendor record.
	Attributes map[string]any
}

// Taxonomy is an immutable id -> entry catalogue.
type Taxonomy struct {
	entries map[string]*Entry
	ids     []string
	dropped int
}

// Lookup resolves a skill id.
func (t *Taxonomy) Lookup(id string) (*Entry, bool) {
	if t == nil {
		return nil, false
	}
	e, ok := t.entries[id]
	return e, ok
}

// Len returns the number of retained entries.
func (t *Taxonomy) Len() int {
	if t == nil {
		return 0
	}
	return len(t.ids)
}

// Dropped returns how many records were excluded for lacking a skill_name.
func (t *Taxonomy) Dropped() int {
	if t == nil {
		return 0
	}
	return t.dropped
}

// Entries returns the entries in id order.
func (t *Taxonomy) Entries() []*Entry {
	if t == nil {
		return nil
	}
	out := make([]*Entry, 0, len(t.ids))
	for _, id := range t.ids {
		out = append(out, t.entries[id])
	}
	return out
}

// LoadTaxonomy reads and parses a taxonomy file.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open taxonomy %s: %w", path, err)
	}
	defer f.Close()

	tax, err := ParseTaxonomy(f, FormatFromPath(path))
	if err != nil {
		if dfe, ok := err.(*DataFormatError); ok {
			dfe.Source = path
		}
		return nil, err
	}
	return tax, nil
}

// ParseTaxonomy decodes a mapping of skill id to record. Records without a
// usable skill_name are dropped; any decoding problem aborts the whole load.
func ParseTaxonomy(r io.Reader, format Format) (*Taxonomy, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &DataFormatError{Source: format.String(), Message: "read failed", Cause: err}
	}

	var records map[string]map[string]any
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(raw, &records)
	default:
		err = json.Unmarshal(raw, &records)
	}
	if err != nil {
		return nil, &DataFormatError{Source: format.String(), Message: "expected a mapping of skill id to record", Cause: err}
	}
	if records == nil {
		return nil, &DataFormatError{Source: format.String(), Message: "document is empty or null"}
	}

	tax := &Taxonomy{entries: make(map[string]*Entry, len(records))}
	for id, rec := range records {
		entry, ok := newEntry(id, rec)
		if !ok {
			tax.dropped++
			continue
		}
		tax.entries[id] = entry
		tax.ids = append(tax.ids, id)
	}
	sort.Strings(tax.ids)

	if tax.dropped > 0 {
		log.Printf("⚠️  Taxonomy: dropped %d record(s) without skill_name", tax.dropped)
	}
	return tax, nil
}

func newEntry(id string, rec map[string]any) (*Entry, bool) {
	name, _ := rec["skill_name"].(string)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}

	entry := &Entry{
		ID:         id,
		Name:       name,
		Len:        len(strings.Fields(name)),
		FullForms:  []string{name},
		Attributes: rec,
	}
	rec["skill_len"] = entry.Len

	// The vendor file spells this key "high_surfce_forms".
	for _, key := range []string{"high_surfce_forms", "high_surface_forms"} {
		entry.FullForms = append(entry.FullForms, stringValues(rec[key])...)
	}
	entry.LowForms = stringValues(rec["low_surface_forms"])
	entry.MatchOnTokens, _ = rec["match_on_tokens"].(bool)

	return entry, true
}

// stringValues flattens a string, a list of strings or a map of strings.
// Map values are taken in key order.
func stringValues(v any) []string {
	var out []string
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			out = append(out, s)
		}
	case []any:
		for _, item := range t {
			out = append(out, stringValues(item)...)
		}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, stringValues(t[k])...)
		}
	}
	return out
}
