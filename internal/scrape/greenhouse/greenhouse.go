// Package greenhouse reads public job boards from the Greenhouse boards API.
package greenhouse

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
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
	DefaultBaseURL = "https://boards-api.greenhouse.io"
	DefaultTTL     = 6 * time.Hour
	snippetLen     = 500
)

type Config struct {
	BaseURL string
	TTL     time.Duration
	// Content asks the API for full job bodies; keyword filtering then
	// also looks at the description.
	Content bool
}

// Board identifies one company's board.
type Board struct {
	Token string // boards-api.greenhouse.io/v1/boards/<token>
	Name  string // display name; the token when empty
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
		cache:   cache.New[[]domain.JobPosting]("greenhouse", cfg.TTL, now),
		log:     slog.Default().With("source", "greenhouse"),
		Policy:  retry.Default("greenhouse"),
	}
}

func (s *Scraper) Name() string { return "greenhouse" }

type ghJob struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	AbsoluteURL string `json:"absolute_url"`
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
	Content string `json:"content"` // entity-escaped html
}

type ghResponse struct {
	Jobs []ghJob `json:"jobs"`
}

// Fetch returns the board's postings that mention any of keywords. Results
// are cached per token, keyword set and content flag. Provider failures are
// logged and produce an empty list.
func (s *Scraper) Fetch(ctx context.Context, b Board, keywords []string) ([]domain.JobPosting, error) {
	token := strings.TrimSpace(b.Token)
	if token == "" {
		return nil, apperr.New(apperr.Config, "greenhouse", "fetch", fmt.Errorf("board token is required"))
	}
	key := cache.Key(token, keywords, strconv.FormatBool(s.cfg.Content))
	if jobs, ok := s.cache.Get(key); ok {
		s.log.Info("cache hit", "board", token, "jobs", len(jobs))
		return jobs, nil
	}

	apiURL := fmt.Sprintf("%s/v1/boards/%s/jobs", strings.TrimRight(s.cfg.BaseURL, "/"), token)
	if s.cfg.Content {
		apiURL += "?content=true"
	}

	resp, err := retry.Do(ctx, s.Policy, func(ctx context.Context) (*ghResponse, error) {
		if err := s.limiter.WaitURL(ctx, apiURL); err != nil {
			return nil, apperr.New(apperr.Network, "greenhouse", "rate wait", err)
		}
		var r ghResponse
		if err := util.GetJSON(ctx, s.hc, "greenhouse", apiURL, &r); err != nil {
			return nil, err
		}
		return &r, nil
	})
	if err != nil {
		s.log.Error("fetch failed", "board", token, "err", err)
		return []domain.JobPosting{}, nil
	}

	name := b.Name
	if name == "" {
		name = token
	}
	out := make([]domain.JobPosting, 0, len(resp.Jobs))
	for _, j := range resp.Jobs {
		title := util.CleanText(j.Title)
		body := util.HTMLToText(j.Content)
		if !matches(title+" "+body, keywords) {
			continue
		}
		out = append(out, domain.JobPosting{
			ExternalID:  fmt.Sprintf("greenhouse:%s:%d", token, j.ID),
			Title:       title,
			CompanyName: name,
			Location:    util.CleanText(j.Location.Name),
			URL:         j.AbsoluteURL,
			Snippet:     util.Clip(body, snippetLen),
			Source:      "Greenhouse",
		})
	}

	s.cache.Put(key, out)
	metrics.SourceRecords.WithLabelValues("greenhouse").Add(float64(len(out)))
	s.log.Info("fetched", "board", token, "jobs", len(out), "total", len(resp.Jobs))
	return out, nil
}

// ClearCache drops cached results for token, or everything when token is
// empty.
func (s *Scraper) ClearCache(token string) int {
	if token == "" {
		n := s.cache.Len()
		s.cache.InvalidateAll()
		return n
	}
	return s.cache.Invalidate(token + "_")
}

func matches(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	low := strings.ToLower(text)
	for _, k := range keywords {
		if k != "" && strings.Contains(low, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
