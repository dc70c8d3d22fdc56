package serp

import (
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"leadhunt-engine/internal/domain"
)

// maxLocationLen bounds a bare snippet location, in characters.
const maxLocationLen = 50

// ParseResults turns organic results into leads. The extraction is a
// best-effort reading of how search engines render profile titles
// ("Name - Role at Company") and snippets ("City · Role · ..."); results
// without a profile link or a name are skipped.
func ParseResults(resp *Response, source string, affiliations []string, now time.Time) []domain.Lead {
	if resp == nil || len(resp.OrganicResults) == 0 {
		logEmpty(resp, source)
		return []domain.Lead{}
	}

	out := make([]domain.Lead, 0, len(resp.OrganicResults))
	for _, r := range resp.OrganicResults {
		if r.Link == "" || !strings.Contains(r.Link, "linkedin.com/in/") {
			continue
		}
		name, rest := splitName(r.Title)
		if name == "" {
			continue
		}
		role, company := splitRole(rest, r.Snippet)

		out = append(out, domain.Lead{
			Name:         name,
			ProfileURL:   r.Link,
			Role:         role,
			CompanyRaw:   company,
			LocationRaw:  snippetLocation(r.Snippet),
			Affiliations: matchAffiliations(r.Title+" "+r.Snippet, affiliations),
			Source:       source,
			CreatedAt:    now,
			Snippet:      r.Snippet,
			Status:       domain.LeadNew,
		})
	}
	slog.Info("parsed leads", "source", "serp", "src", source, "n", len(out))
	return out
}

func logEmpty(resp *Response, source string) {
	slog.Warn("no organic results", "source", "serp", "src", source)
	if resp == nil {
		return
	}
	switch {
	case strings.EqualFold(resp.SearchMetadata.Status, "error"):
		slog.Error("search metadata error", "source", "serp", "err", resp.SearchMetadata.Error)
	case resp.SearchInformation.OrganicResultsState == "Fully empty":
		slog.Info("provider reported fully empty results", "source", "serp", "src", source)
	}
}

// splitName separates the name from whatever follows the first " - ",
// or the first " | " when there is no dash.
func splitName(title string) (name, rest string) {
	sep := ""
	switch {
	case strings.Contains(title, " - "):
		sep = " - "
	case strings.Contains(title, " | "):
		sep = " | "
	}
	if sep == "" {
		return strings.TrimSpace(title), ""
	}
	name, rest, _ = strings.Cut(title, sep)
	return strings.TrimSpace(name), strings.TrimSpace(rest)
}

// splitRole reads "Role at Company" or "Role - Company" from the title
// remainder, then tries the first sentence of the snippet. When nothing
// splits, the remainder is the role.
func splitRole(rest, snippet string) (role, company string) {
	if r, c, ok := cutAt(rest); ok {
		return r, c
	}
	if i := strings.LastIndex(rest, " - "); i >= 0 {
		return strings.TrimSpace(rest[:i]), strings.TrimSpace(rest[i+3:])
	}
	if snippet != "" {
		first, _, _ := strings.Cut(snippet, ".")
		if r, c, ok := cutAt(first); ok {
			return r, c
		}
	}
	return rest, ""
}

// cutAt splits s around the first " at ", matched case-insensitively.
// The separator is ASCII, so offsets are taken from s itself; lowercasing
// first would shift them for runes whose lower form has another width.
func cutAt(s string) (before, after string, ok bool) {
	const sep = " at "
	for i := 0; i+len(sep) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(sep)], sep) {
			return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+len(sep):]), true
		}
	}
	return "", "", false
}

func snippetLocation(snippet string) string {
	if snippet == "" {
		return ""
	}
	if _, after, ok := strings.Cut(snippet, "Location:"); ok {
		after, _, _ = strings.Cut(after, "\n")
		after, _, _ = strings.Cut(after, " · ")
		return strings.TrimSpace(after)
	}
	if lead, _, ok := strings.Cut(snippet, " · "); ok {
		lead = strings.TrimSpace(lead)
		low := strings.ToLower(lead)
		if !strings.Contains(low, "connection") && !strings.Contains(low, " at ") && utf8.RuneCountInString(lead) < maxLocationLen {
			return lead
		}
	}
	return ""
}

func matchAffiliations(text string, affiliations []string) []string {
	low := strings.ToLower(text)
	var out []string
	for _, a := range affiliations {
		if a != "" && strings.Contains(low, strings.ToLower(a)) {
			out = append(out, a)
		}
	}
	return out
}
