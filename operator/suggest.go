package operator

import (
	"strings"

	lev "github.com/agnivade/levenshtein"
)

// maxSuggestDistance bounds how far a typo may be from a real brand before
// Suggest gives up.
const maxSuggestDistance = 3

// Match returns the canonical brand equal to name ignoring case.
func (t *Table) Match(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, brand := range t.Brands() {
		if strings.EqualFold(brand, name) {
			return brand, true
		}
	}
	return "", false
}

// Suggest returns the brand closest to name by edit distance, compared case
// insensitively. It returns false when nothing is within maxSuggestDistance.
func (t *Table) Suggest(name string) (string, bool) {
	subject := strings.ToLower(strings.TrimSpace(name))
	if subject == "" {
		return "", false
	}
	best := ""
	bestDist := maxSuggestDistance + 1
	for _, brand := range t.Brands() {
		d := lev.ComputeDistance(subject, strings.ToLower(brand))
		if d < bestDist {
			best, bestDist = brand, d
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}
