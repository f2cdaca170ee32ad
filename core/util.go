package core

import "strings"

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// CleanText is CleanString for single-line text: inner runs of whitespace collapse to one space.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
