package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	trimHyphens     = regexp.MustCompile(`^-+|-+$`)
)

// SlugWords lowercases s, strips accents and splits it on anything that is
// not a letter or digit.
func SlugWords(s string) []string {
	s = strings.ToLower(s)
	s = removeAccents(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = trimHyphens.ReplaceAllString(s, "")

	if s == "" {
		return nil
	}
	return strings.Split(s, "-")
}

// Slug joins the slug words of parts with hyphens, skipping empty parts.
func Slug(parts ...string) string {
	var words []string
	for _, p := range parts {
		words = append(words, SlugWords(p)...)
	}
	return strings.Join(words, "-")
}

// removeAccents decomposes s (NFD) and drops the nonspacing marks.
func removeAccents(s string) string {
	result := norm.NFD.String(s)

	var b strings.Builder
	for _, r := range result {
		if !unicode.Is(unicode.Mn, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
