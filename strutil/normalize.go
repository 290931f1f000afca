// Package strutil holds small token helpers shared by config parsing and the
// command-line tools.
package strutil

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizeUpper trims surrounding whitespace and converts to upper case.
// Use for radio names and band IDs where case is not significant.
func NormalizeUpper(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// NormalizeLower trims surrounding whitespace and converts to lower case.
func NormalizeLower(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// SplitList splits a comma or whitespace separated list, dropping empties.
func SplitList(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

// ParseInts parses a SplitList of base-10 integers ("404,405").
func ParseInts(value string) ([]int, error) {
	parts := SplitList(value)
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("strutil: %q is not an integer", p)
		}
		out = append(out, n)
	}
	return out, nil
}
