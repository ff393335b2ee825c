// Package util holds small helpers shared across packages: slug
// generation, filesystem path safety for uploads, and sql.Null adapters
// for form input.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9-]+`)
	hyphenRuns   = regexp.MustCompile(`-{2,}`)
)

// Slugify turns a title into a URL slug. Accents are stripped via NFD
// decomposition and everything is lowercased; spaces become hyphens,
// remaining non-slug characters are deleted (so "What's" yields "whats",
// not "what-s"), and hyphen runs collapse to one.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, _ := transform.String(t, s)

	out = strings.ToLower(out)
	out = strings.ReplaceAll(out, " ", "-")
	out = nonSlugChars.ReplaceAllString(out, "")
	out = hyphenRuns.ReplaceAllString(out, "-")

	return strings.Trim(out, "-")
}

// IsValidSlug reports whether s is a well-formed slug: non-empty,
// lowercase alphanumerics and single hyphens only, no hyphen at either
// end.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}
	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	return !strings.Contains(s, "--")
}
