// Package rank decides which leads qualify and how they are ordered.
package rank

import (
	"strings"

	"leadhunt-engine/internal/clean"
	"leadhunt-engine/internal/domain"
)

// Scorer assigns a deterministic rank to a lead.
type Scorer interface {
	Score(lead domain.Lead) int
}

// Criteria is the configured targeting. Every list is matched as
// lowercase substrings of the lead's role or location.
type Criteria struct {
	TargetLocations    []string // "city, region"
	TargetKeywords     []string
	QualifyingKeywords []string
	SeniorityKeywords  []string
}

// NewCriteria lowercases and trims every list and drops empty entries.
// An empty qualifying list means "same as the target keywords".
func NewCriteria(locations, keywords, qualifying, seniority []string) Criteria {
	return Criteria{
		TargetLocations:    lowerList(locations),
		TargetKeywords:     lowerList(keywords),
		QualifyingKeywords: lowerList(qualifying),
		SeniorityKeywords:  lowerList(seniority),
	}
}

// qualifying falls back to the target keywords when no separate band is
// configured.
func (c Criteria) qualifying() []string {
	if len(c.QualifyingKeywords) == 0 {
		return c.TargetKeywords
	}
	return c.QualifyingKeywords
}

func lowerList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func leadLocation(l domain.Lead) string {
	loc := l.LocationNormalized
	if loc == "" {
		loc = clean.Location(l.LocationRaw)
	}
	return strings.ToLower(loc)
}

func leadRole(l domain.Lead) string {
	return strings.ToLower(clean.Whitespace(l.Role))
}
