// Package lever reads published postings from the Lever postings API.
package lever

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"leadhunt-engine/internal/apperr"
	"leadhunt-engine/internal/cache"
	"leadhunt-engine/internal/domain"
	"leadhunt-engine/internal/metrics"
	"leadhunt-engine/internal/retry"
	"leadhunt-engine/internal/scrape/util"
)

const (
	DefaultBaseURL = "https://api.lever.co"
	DefaultTTL     = 6 * time.Hour
	snippetLen     = 250
)

type Config struct {
	BaseURL string
	TTL     time.Duration
}

type Company struct {
	Slug string // api.lever.co/v0/postings/<slug>
	Name string
}

type Scraper struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
	cache   *cache.Cache[[]domain.JobPosting]
	log     *slog.Logger

	Policy retry.Policy
}

func New(cfg Config, limiter *util.HostLimiter, now cache.Clock) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &Scraper{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
		cache:   cache.New[[]domain.JobPosting]("lever", cfg.TTL, now),
		log:     slog.Default().With("source", "lever"),
		Policy:  retry.Default("lever"),
	}
}

func (s *Scraper) Name() string { return "lever" }

type leverPosting struct {
	ID         string `json:"id"`
	Text       string `json:"text"` // title
	HostedURL  string `json:"hostedUrl"`
	Categories struct {
		Location   string `json:"location"`
		Commitment string `json:"commitment"`
		Team       string `json:"team"`
	} `json:"categories"`
	Description      string `json:"description"` // html
	DescriptionPlain string `json:"descriptionPlain"`
}

// Fetch returns the company's postings whose title or plain description
// mentions any of keywords. Provider failures are logged and produce an
// empty list.
func (s *Scraper) Fetch(ctx context.Context, co Company, keywords []string) ([]domain.JobPosting, error) {
	slug := strings.TrimSpace(co.Slug)
	if slug == "" {
		return nil, apperr.New(apperr.Config, "lever", "fetch", fmt.Errorf("company identifier is required"))
	}
	key := cache.Key(slug, keywords, "json")
	if jobs, ok := s.cache.Get(key); ok {
		s.log.Info("cache hit", "company", slug, "jobs", len(jobs))
		return jobs, nil
	}

	apiURL := fmt.Sprintf("%s/v0/postings/%s?mode=json", strings.TrimRight(s.cfg.BaseURL, "/"), slug)
	postings, err := retry.Do(ctx, s.Policy, func(ctx context.Context) ([]leverPosting, error) {
		if err := s.limiter.WaitURL(ctx, apiURL); err != nil {
			return nil, apperr.New(apperr.Network, "lever", "rate wait", err)
		}
		var ps []leverPosting
		if err := util.GetJSON(ctx, s.hc, "lever", apiURL, &ps); err != nil {
			return nil, err
		}
		return ps, nil
	})
	if err != nil {
		s.log.Error("fetch failed", "company", co.Name, "slug", slug, "err", err)
		return []domain.JobPosting{}, nil
	}

	name := co.Name
	if name == "" {
		name = slug
	}
	out := make([]domain.JobPosting, 0, len(postings))
	for _, p := range postings {
		title := util.CleanText(p.Text)
		if title == "" || p.HostedURL == "" {
			continue
		}
		body := p.DescriptionPlain
		if body == "" {
			body = util.HTMLToText(p.Description)
		}
		if !matches(title, body, keywords) {
			continue
		}
		out = append(out, domain.JobPosting{
			ExternalID:  fmt.Sprintf("lever:%s:%s", slug, p.ID),
			Title:       title,
			CompanyName: name,
			Location:    util.CleanText(p.Categories.Location),
			URL:         p.HostedURL,
			Snippet:     util.Clip(util.CleanText(body), snippetLen),
			Commitment:  p.Categories.Commitment,
			Source:      "Lever",
		})
	}

	s.cache.Put(key, out)
	metrics.SourceRecords.WithLabelValues("lever").Add(float64(len(out)))
	s.log.Info("fetched", "company", slug, "jobs", len(out), "total", len(postings))
	return out, nil
}

// ClearCache drops cached results for slug, or everything when slug is
// empty.
func (s *Scraper) ClearCache(slug string) int {
	if slug == "" {
		n := s.cache.Len()
		s.cache.InvalidateAll()
		return n
	}
	return s.cache.Invalidate(slug + "_")
}

func matches(title, body string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	t, b := strings.ToLower(title), strings.ToLower(body)
	for _, k := range keywords {
		k = strings.ToLower(k)
		if k != "" && (strings.Contains(t, k) || strings.Contains(b, k)) {
			return true
		}
	}
	return false
}
