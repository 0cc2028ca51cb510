// Package slug converts specialty display names to URL-safe identifiers and
// back. All functions are total: degenerate input yields "" or false, never
// an error.
//
// ToSlug and ToName are approximate inverses, not a bijection: ToSlug keeps
// hyphens while ToName folds both '_' and '-' to spaces, so hyphen-containing
// names do not round-trip ("X-Ray" -> "x-ray" -> "X Ray" -> "x_ray"). Digits
// adjacent to separators have the same ambiguity. Downstream URLs depend on
// the exact transform, so the asymmetry is kept as-is.
package slug

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	separators    = regexp.MustCompile(`[\s/&,]+`)
	disallowed    = regexp.MustCompile(`[^a-z0-9_-]+`)
	underscores   = regexp.MustCompile(`_+`)
	separatorRuns = regexp.MustCompile(`[_-]+`)
	validSlug     = regexp.MustCompile(`^[a-z0-9_-]+$`)
)

// ToSlug converts a display name to a URL-safe slug.
// "Obstetrics & Gynecology" -> "obstetrics_gynecology".
func ToSlug(name string) string {
	s := strings.ToLower(name)
	s = separators.ReplaceAllString(s, "_")
	s = disallowed.ReplaceAllString(s, "")
	s = underscores.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// ToName converts a slug back to a display name.
// "internal_medicine" -> "Internal Medicine".
func ToName(slug string) string {
	s := strings.NewReplacer("_", " ", "-", " ").Replace(slug)
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = titleCase(f)
	}
	return strings.Join(fields, " ")
}

// IsValidSlug reports whether s is a well-formed slug: non-empty after
// trimming, only [a-z0-9_-], no leading/trailing separator, and no run of
// two or more consecutive separators.
func IsValidSlug(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || !validSlug.MatchString(s) {
		return false
	}
	first, last := s[0], s[len(s)-1]
	if first == '_' || first == '-' || last == '_' || last == '-' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if isSeparator(s[i]) && isSeparator(s[i-1]) {
			return false
		}
	}
	return true
}

// Normalize canonicalizes a slug: lowercase, any run of '_'/'-' collapsed to
// a single '_', leading/trailing separators trimmed.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = separatorRuns.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

func isSeparator(b byte) bool {
	return b == '_' || b == '-'
}

func titleCase(token string) string {
	runes := []rune(token)
	for i := range runes {
		if i == 0 {
			runes[i] = unicode.ToUpper(runes[i])
		} else {
			runes[i] = unicode.ToLower(runes[i])
		}
	}
	return string(runes)
}
