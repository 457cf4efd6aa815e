package services

import (
	"regexp"
	"strings"

	gosimpleslug "github.com/gosimple/slug"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9-]`)
	hyphenRun     = regexp.MustCompile(`-+`)
)

// TagSlug lowercases name and turns every whitespace run into one hyphen.
// Punctuation is kept, so "C++ Dev" becomes "c++-dev".
func TagSlug(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	return whitespaceRun.ReplaceAllString(lower, "-")
}

// PostSlug is TagSlug restricted to [a-z0-9-] with hyphen runs collapsed and
// no leading or trailing hyphen. It never appends a disambiguating suffix.
func PostSlug(title string) string {
	slug := whitespaceRun.ReplaceAllString(strings.ToLower(title), "-")
	slug = nonSlugChars.ReplaceAllString(slug, "")
	slug = hyphenRun.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func CategorySlug(name string) string {
	return gosimpleslug.Make(name)
}

func CleanTags(tags []string) []string {
	seen := make(map[string]bool)
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		value := strings.TrimSpace(tag)
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		cleaned = append(cleaned, value)
	}
	return cleaned
}

// NormalizeRequired trims value and reports field as missing when nothing is left.
func NormalizeRequired(value, field string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", ErrMissingField(field)
	}
	return trimmed, nil
}

// optionalString maps nil and blank values to nil so they are stored as NULL.
func optionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
