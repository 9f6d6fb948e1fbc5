package util

import "strings"

// NormalizeSpace collapses runs of whitespace into single spaces and trims.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeKey builds a lowercase cache/dedup key from its parts.
func NormalizeKey(parts ...string) string {
	norm := make([]string, 0, len(parts))
	for _, p := range parts {
		norm = append(norm, strings.ToLower(NormalizeSpace(p)))
	}
	return strings.Join(norm, "|")
}

// IsBlank reports whether s is empty or whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
