package extraction

import "strings"

// Normalize flattens an annotation into skill names: full hits first, then
// n-gram hits, each in the order returned. Hits whose id is not in tax and
// blank names are dropped, and each name is kept only at its first position.
func Normalize(ann Annotation, tax *Taxonomy) []string {
	names := make([]string, 0, len(ann.Full)+len(ann.NGram))
	seen := make(map[string]bool)

	add := func(hits []Hit) {
		for _, h := range hits {
			entry, ok := tax.Lookup(h.SkillID)
			if !ok {
				continue
			}
			name := strings.TrimSpace(entry.Name)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	add(ann.Full)
	add(ann.NGram)

	return names
}
