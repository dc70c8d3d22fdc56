package util

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLToText flattens an HTML fragment to a single line of text. Greenhouse
// returns entity-escaped HTML, so the input is unescaped first.
func HTMLToText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.Contains(s, "&lt;") {
		s = html.UnescapeString(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return CleanText(s)
	}
	doc.Find("script,style").Remove()
	return CleanText(doc.Text())
}

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// Clip returns the first n runes of s followed by "..." when s is longer,
// and s+"..." otherwise, so snippets always read as excerpts.
func Clip(s string, n int) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return strings.TrimSpace(string(r)) + "..."
}
