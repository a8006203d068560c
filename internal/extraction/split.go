package extraction

import "strings"

// IsLanguage reports whether a taxonomy name denotes a spoken language. The
// taxonomy names those entries "<X> language", so only the last word is
// checked; "Python (Programming Language)" ends in "Language)" and stays a
// skill.
func IsLanguage(name string) bool {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return false
	}
	return strings.EqualFold(fields[len(fields)-1], "language")
}

// Split partitions names into skills and languages, keeping order within each.
func Split(names []string) (skills, languages []string) {
	skills = make([]string, 0, len(names))
	languages = make([]string, 0)
	for _, name := range names {
		if IsLanguage(name) {
			languages = append(languages, name)
		} else {
			skills = append(skills, name)
		}
	}
	return skills, languages
}
