// Package serp is the people-search adapter. It runs site-restricted web
// searches through a SerpApi-compatible endpoint and turns the organic
// results into leads.
package serp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"leadhunt-engine/internal/apperr"
	"leadhunt-engine/internal/domain"
	"leadhunt-engine/internal/metrics"
	"leadhunt-engine/internal/retry"
	"leadhunt-engine/internal/scrape/util"
)

const (
	DefaultBaseURL = "https://serpapi.com"
	maxNum         = 100
	profileSite    = "site:linkedin.com/in/"
)

type Config struct {
	BaseURL      string // defaults to DefaultBaseURL
	APIKey       string
	MaxResults   int      // capped at 100
	Keywords     []string // default role keywords for location searches
	Affiliations []string // schools matched in titles and snippets
}

type Client struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
	log     *slog.Logger

	// Policy governs every search call. Tests replace Sleep.
	Policy retry.Policy
	Now    func() time.Time
}

func New(cfg Config, limiter *util.HostLimiter) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxResults <= 0 || cfg.MaxResults > maxNum {
		cfg.MaxResults = maxNum
	}
	return &Client{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
		log:     slog.Default().With("source", "serp"),
		Policy:  retry.Default("serp"),
		Now:     time.Now,
	}
}

func (c *Client) Name() string { return "serp" }

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return strings.TrimSpace(c.cfg.APIKey) != "" }

// Response is the subset of a search.json payload the adapters read.
type Response struct {
	SearchMetadata struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Error  string `json:"error"`
	} `json:"search_metadata"`
	SearchInformation struct {
		OrganicResultsState string `json:"organic_results_state"`
	} `json:"search_information"`
	OrganicResults []OrganicResult `json:"organic_results"`
	KnowledgeGraph *KnowledgeGraph `json:"knowledge_graph"`
	Error          string          `json:"error"`
}

type OrganicResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type KnowledgeGraph struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Website     string `json:"website"`
	Industry    string `json:"industry"`
}

// Search runs one query under the client's retry policy. Errors are
// *apperr.Error values; callers decide whether to degrade.
func (c *Client) Search(ctx context.Context, q string, num int) (*Response, error) {
	if !c.Configured() {
		return nil, apperr.New(apperr.Config, "serp", "search", fmt.Errorf("api key not configured"))
	}
	if num <= 0 || num > maxNum {
		num = maxNum
	}
	v := url.Values{}
	v.Set("engine", "google")
	v.Set("q", q)
	v.Set("api_key", c.cfg.APIKey)
	v.Set("num", strconv.Itoa(num))
	v.Set("gl", "us")
	v.Set("hl", "en")
	apiURL := strings.TrimRight(c.cfg.BaseURL, "/") + "/search.json?" + v.Encode()

	return retry.Do(ctx, c.Policy, func(ctx context.Context) (*Response, error) {
		if err := c.limiter.WaitURL(ctx, apiURL); err != nil {
			return nil, apperr.New(apperr.Network, "serp", "rate wait", err)
		}
		var resp Response
		if err := util.GetJSON(ctx, c.hc, "serp", apiURL, &resp); err != nil {
			return nil, err
		}
		if resp.Error != "" {
			return nil, apperr.New(apperr.Unknown, "serp", "search", fmt.Errorf("%s", resp.Error))
		}
		return &resp, nil
	})
}

// SearchByLocation finds profiles matching any of keywords in location.
// An empty keyword list falls back to the configured defaults. Failures
// are logged and yield no leads; only a missing API key is returned.
func (c *Client) SearchByLocation(ctx context.Context, keywords []string, location string) ([]domain.Lead, error) {
	if len(keywords) == 0 {
		keywords = c.cfg.Keywords
	}
	return c.searchLeads(ctx, LocationQuery(keywords, location), "People Search: "+location)
}

// SearchByInstitution finds profiles that mention school.
func (c *Client) SearchByInstitution(ctx context.Context, school string) ([]domain.Lead, error) {
	return c.searchLeads(ctx, InstitutionQuery(school), "Alumni Search: "+school)
}

func (c *Client) searchLeads(ctx context.Context, q, source string) ([]domain.Lead, error) {
	if !c.Configured() {
		return nil, apperr.New(apperr.Config, "serp", "search", fmt.Errorf("api key not configured"))
	}
	c.log.Info("search", "query", q)
	resp, err := c.Search(ctx, q, c.cfg.MaxResults)
	if err != nil {
		c.log.Error("search failed", "src", source, "err", err)
		return []domain.Lead{}, nil
	}
	leads := ParseResults(resp, source, c.cfg.Affiliations, c.Now())
	metrics.SourceRecords.WithLabelValues("serp").Add(float64(len(leads)))
	c.log.Info("search done", "src", source, "leads", len(leads))
	return leads, nil
}

// Ping runs a throwaway query and returns the provider's search id.
func (c *Client) Ping(ctx context.Context) (string, error) {
	resp, err := c.Search(ctx, "coffee", 1)
	if err != nil {
		return "", err
	}
	if strings.EqualFold(resp.SearchMetadata.Status, "error") {
		return "", apperr.New(apperr.Unknown, "serp", "ping", fmt.Errorf("%s", resp.SearchMetadata.Error))
	}
	return resp.SearchMetadata.ID, nil
}

// LocationQuery builds ("kw1" OR "kw2") "location" site:linkedin.com/in/.
func LocationQuery(keywords []string, location string) string {
	quoted := make([]string, 0, len(keywords))
	for _, k := range keywords {
		quoted = append(quoted, strconv.Quote(k))
	}
	return fmt.Sprintf("(%s) %q %s", strings.Join(quoted, " OR "), location, profileSite)
}

func InstitutionQuery(school string) string {
	return fmt.Sprintf("%q %s", school, profileSite)
}
