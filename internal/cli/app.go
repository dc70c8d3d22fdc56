package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"leadhunt-engine/internal/apperr"
	"leadhunt-engine/internal/config"
	"leadhunt-engine/internal/events"
	"leadhunt-engine/internal/pipeline"
	"leadhunt-engine/internal/runlock"
	"leadhunt-engine/internal/scrape/company"
	"leadhunt-engine/internal/scrape/greenhouse"
	"leadhunt-engine/internal/scrape/lever"
	"leadhunt-engine/internal/scrape/serp"
	"leadhunt-engine/internal/scrape/util"
	"leadhunt-engine/internal/secrets"
	"leadhunt-engine/internal/store"
)

const defaultConfigPath = "config/config.yml"

// app is everything a command needs, built once from the config.
type app struct {
	cfg     config.Config
	cfgPath string
	dataDir string

	lock  *runlock.Lock
	store *store.Store
	hub   *events.Hub
	orch  *pipeline.Orchestrator

	search *serp.Client // nil when no search feature is on
}

// loadConfig resolves the data dir and config path, then loads, overlays
// and normalizes the config. Warnings are logged; errors are fatal.
func loadConfig() (config.Config, string, string, error) {
	dir := config.DataDir(dataDir)
	path := cfgPath
	if path == "" {
		p, err := config.EnsureUserConfig(dir, defaultConfigPath)
		if err != nil {
			return config.Config{}, "", "", fmt.Errorf("config bootstrap: %w", err)
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, "", "", err
	}
	if err := config.OverlayCompanies(&cfg, filepath.Join(filepath.Dir(path), "companies.yml")); err != nil {
		return config.Config{}, "", "", err
	}
	if dataDir == "" && cfg.App.DataDir != "" {
		dir = config.DataDir(cfg.App.DataDir)
	}

	cfg, res := config.NormalizeAndValidate(cfg)
	for _, w := range res.Warnings {
		slog.Warn("config", "warning", w)
	}
	if !res.OK() {
		return cfg, path, dir, fmt.Errorf("invalid config %s: %v", path, res.Errors)
	}
	return cfg, path, dir, nil
}

// newSearch builds the people search client from cfg, resolving the key.
func newSearch(cfg config.Config) (*serp.Client, error) {
	key, err := secrets.SearchAPIKey(cfg.Search.APIKey)
	if err != nil {
		return nil, apperr.New(apperr.Config, "serp", "api key", err)
	}
	searchLimiter := util.NewHostLimiter(0.5, 1).WithPause(cfg.SearchPause())
	return serp.New(serp.Config{
		BaseURL:      cfg.Search.BaseURL,
		APIKey:       key,
		MaxResults:   cfg.Search.MaxResults,
		Keywords:     cfg.Targets.Keywords,
		Affiliations: cfg.Targets.Schools,
	}, searchLimiter), nil
}

func newApp() (*app, error) {
	cfg, path, dir, err := loadConfig()
	if err != nil {
		return nil, err
	}
	setupLogging(cfg.App.LogLevel)

	lock, err := runlock.Acquire(dir)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(filepath.Join(dir, "leadhunt.db"))
	if err != nil {
		_ = lock.Release()
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := &app{
		cfg:     cfg,
		cfgPath: path,
		dataDir: dir,
		lock:    lock,
		store:   st,
		hub:     events.NewHub(),
	}
	d, err := a.deps()
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.orch = pipeline.New(d)
	slog.Info("engine ready", "config", path, "data_dir", dir)
	return a, nil
}

// deps wires the sources. People search and enrichment need an API key;
// job boards need none.
func (a *app) deps() (pipeline.Deps, error) {
	cfg := a.cfg
	d := pipeline.Deps{
		Store:    a.store,
		Criteria: BuildCriteria(cfg),
		Plan:     BuildPlan(cfg),
		Hub:      a.hub,
		Log:      slog.Default(),
	}

	boardLimiter := util.NewHostLimiter(1, 1).WithPause(cfg.BoardPause())
	d.Greenhouse = greenhouse.New(greenhouse.Config{
		TTL:     cfg.GreenhouseTTL(),
		Content: cfg.Sources.Greenhouse.Content,
	}, boardLimiter, time.Now)
	d.Lever = lever.New(lever.Config{TTL: cfg.LeverTTL()}, boardLimiter, time.Now)

	wantSearch := cfg.Search.PeopleSearch || cfg.Search.AlumniSearch || cfg.Search.EnrichCompanies
	if !wantSearch {
		return d, nil
	}
	sc, err := newSearch(cfg)
	if err != nil {
		return d, err
	}
	d.People = sc
	a.search = sc
	if cfg.Search.EnrichCompanies {
		d.Enricher = company.New(sc, cfg.CompanyTTL(), time.Now)
	}
	return d, nil
}

// prune drops job postings older than the retention window.
func (a *app) prune(ctx context.Context) {
	keep := a.cfg.Retention()
	if keep <= 0 {
		return
	}
	n, err := a.store.PruneJobPostings(ctx, time.Now().Add(-keep))
	if err != nil {
		slog.Warn("prune failed", "err", err)
		return
	}
	if n > 0 {
		slog.Info("pruned job postings", "deleted", n, "older_than", keep)
	}
}

func (a *app) Close() error {
	return errors.Join(a.store.Close(), a.lock.Release())
}
