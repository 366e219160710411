package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var multiSpace = regexp.MustCompile(`\s+`)

// NormalizeName lowercases, collapses whitespace, and trims the input.
// It is the comparison key for provider and category filters.
func NormalizeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return multiSpace.ReplaceAllString(strings.ToLower(s), " ")
}

// ProviderName trims, collapses whitespace, and title-cases a provider name
// so "  SMITH,   john " and "smith, john" land in the same group.
func ProviderName(s string) string {
	s = NormalizeName(s)
	if s == "" {
		return ""
	}
	return cases.Title(language.English).String(s)
}

// Category trims and collapses whitespace, keeping case.
func Category(s string) string {
	return multiSpace.ReplaceAllString(strings.TrimSpace(s), " ")
}
