// Package clean holds the normalization stage: pure, empty-safe string
// cleanup applied to every record before filtering and scoring.
package clean

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"
)

// Whitespace trims and collapses runs of whitespace (including NBSP).
func Whitespace(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

var companySuffix = regexp.MustCompile(`(?i)\b(?:Inc|LLC|Ltd|Corp|Corporation|Limited|Incorporated)\.?,?\s*$`)

// CompanyName strips one trailing legal suffix and dangling punctuation.
// If nothing but a suffix was given, the whitespace-cleaned input is
// returned unchanged.
func CompanyName(name string) string {
	cleaned := Whitespace(name)
	if cleaned == "" {
		return ""
	}

	out := strings.TrimSpace(companySuffix.ReplaceAllString(cleaned, ""))
	if out != "" {
		last := rune(out[len(out)-1])
		if !unicode.IsLetter(last) && !unicode.IsDigit(last) {
			out = strings.TrimSpace(strings.TrimRight(out, ".,"))
		}
	}
	out = Whitespace(out)

	if out == "" {
		slog.Debug("company normalization emptied name, keeping original", "name", name)
		return cleaned
	}
	return out
}

// Location cleans a free-text location, dropping a leading label and
// duplicate comma-separated parts.
func Location(loc string) string {
	loc = Whitespace(loc)
	if loc == "" {
		return ""
	}

	loc = strings.TrimPrefix(loc, "Location:")
	loc = strings.TrimPrefix(loc, "LOCATIONS:")
	loc = strings.TrimSpace(loc)

	parts := strings.Split(loc, ",")
	seen := map[string]bool{}
	var out []string
	for _, p := range parts {
		p = Whitespace(p)
		if p == "" {
			continue
		}
		k := strings.ToLower(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}
