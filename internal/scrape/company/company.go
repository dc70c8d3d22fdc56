// Package company enriches employer names with a profile found through web
// search: first the company page URL, then what the search engine knows
// about that page.
package company

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"leadhunt-engine/internal/cache"
	"leadhunt-engine/internal/domain"
	"leadhunt-engine/internal/scrape/serp"
)

const DefaultTTL = 24 * time.Hour

// Searcher runs a single web search. *serp.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, q string, num int) (*serp.Response, error)
}

type Enricher struct {
	search Searcher
	cache  *cache.Cache[domain.CompanyProfile]
	log    *slog.Logger
}

func New(search Searcher, ttl time.Duration, now cache.Clock) *Enricher {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Enricher{
		search: search,
		cache:  cache.New[domain.CompanyProfile]("company", ttl, now),
		log:    slog.Default().With("source", "company"),
	}
}

// Enrich resolves name to a company page and reads its profile. A nil
// profile means nothing usable was found; provider failures are logged,
// not returned.
func (e *Enricher) Enrich(ctx context.Context, name string) *domain.CompanyProfile {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	u := e.FindProfileURL(ctx, name)
	if u == "" {
		return nil
	}
	return e.Profile(ctx, u)
}

// FindProfileURL returns the first company-page result whose title
// mentions name, or "".
func (e *Enricher) FindProfileURL(ctx context.Context, name string) string {
	resp := e.run(ctx, name+" site:linkedin.com/company", 3)
	if resp == nil {
		return ""
	}
	want := strings.ToLower(name)
	for _, r := range resp.OrganicResults {
		if strings.Contains(strings.ToLower(r.Link), "linkedin.com/company/") &&
			strings.Contains(strings.ToLower(r.Title), want) {
			return r.Link
		}
	}
	e.log.Warn("no confident company page", "company", name)
	return ""
}

// Profile reads the company behind profileURL. The knowledge panel wins;
// the top organic result fills in what the panel lacks. Results are cached
// by URL.
func (e *Enricher) Profile(ctx context.Context, profileURL string) *domain.CompanyProfile {
	if p, ok := e.cache.Get(profileURL); ok {
		return &p
	}
	resp := e.run(ctx, profileURL, 1)
	if resp == nil {
		return nil
	}

	p := domain.CompanyProfile{ProfileURL: profileURL}
	if kg := resp.KnowledgeGraph; kg != nil {
		p.Name = kg.Title
		p.Description = kg.Description
		p.Website = kg.Website
		if strings.Contains(strings.ToLower(kg.Type), "organization") {
			p.Industry = kg.Industry
			if p.Industry == "" {
				p.Industry = kg.Type
			}
		}
	}
	if p.Name == "" {
		top := resp.OrganicResults[0]
		p.Name = top.Title
		if p.Description == "" {
			p.Description = top.Snippet
		}
		if p.Website == "" && !strings.Contains(top.Link, "linkedin.com") {
			p.Website = top.Link
		}
	}
	p.Name = stripSiteSuffix(p.Name)

	e.cache.Put(profileURL, p)
	e.log.Info("profile", "url", profileURL, "name", p.Name)
	return &p
}

// ClearCache drops every cached profile.
func (e *Enricher) ClearCache() { e.cache.InvalidateAll() }

// run returns nil on any failure, a search-level error, or an empty
// organic result list.
func (e *Enricher) run(ctx context.Context, q string, num int) *serp.Response {
	resp, err := e.search.Search(ctx, q, num)
	if err != nil {
		e.log.Error("search failed", "query", q, "err", err)
		return nil
	}
	if len(resp.OrganicResults) == 0 {
		e.log.Warn("no organic results", "query", q)
		return nil
	}
	return resp
}

func stripSiteSuffix(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, " - LinkedIn", ""))
	if before, _, ok := strings.Cut(name, " | LinkedIn"); ok {
		name = strings.TrimSpace(before)
	}
	return name
}
