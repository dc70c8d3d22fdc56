package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Company struct {
	Slug string `yaml:"slug" validate:"required"`
	Name string `yaml:"name"`
}

type Board struct {
	Enabled    bool      `yaml:"enabled"`
	TTLHours   int       `yaml:"ttl_hours" validate:"min=0"`
	Companies  []Company `yaml:"companies" validate:"dive"`
	CompanyMap string    `yaml:"company_map"` // "Name:token,Other:token2"
}

type Config struct {
	App struct {
		Port            int    `yaml:"port" validate:"min=1,max=65535"`
		DataDir         string `yaml:"data_dir"`
		ScheduleMinutes int    `yaml:"schedule_minutes" validate:"min=0"`
		RetentionDays   int    `yaml:"retention_days" validate:"min=0"`
		LogLevel        string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	} `yaml:"app"`

	Search struct {
		BaseURL          string `yaml:"base_url" validate:"omitempty,url"`
		APIKey           string `yaml:"api_key"`
		MaxResults       int    `yaml:"max_results" validate:"min=0,max=100"`
		EnrichCompanies  bool   `yaml:"enrich_companies"`
		CompanyTTLHours  int    `yaml:"company_ttl_hours" validate:"min=0"`
		AlumniSearch     bool   `yaml:"alumni_search"`
		PeopleSearch     bool   `yaml:"people_search"`
	} `yaml:"search"`

	Targets struct {
		Keywords           []string `yaml:"keywords" validate:"min=1,dive,required"`
		Locations          []string `yaml:"locations" validate:"dive,required"`
		LocationPairs      string   `yaml:"location_pairs"` // "New York, NY, Austin, TX"
		QualifyingKeywords []string `yaml:"qualifying_keywords"`
		SeniorityKeywords  []string `yaml:"seniority_keywords"`
		Schools            []string `yaml:"schools"`
	} `yaml:"targets"`

	Sources struct {
		Greenhouse struct {
			Board   `yaml:",inline"`
			Content bool `yaml:"content"`
		} `yaml:"greenhouse"`
		Lever    Board    `yaml:"lever"`
		Keywords []string `yaml:"keywords"` // job-board filter; falls back to targets.keywords
	} `yaml:"sources"`

	Courtesy struct {
		SearchMinMS int `yaml:"search_min_ms" validate:"min=0"`
		SearchMaxMS int `yaml:"search_max_ms" validate:"gtefield=SearchMinMS"`
		BoardMinMS  int `yaml:"board_min_ms" validate:"min=0"`
		BoardMaxMS  int `yaml:"board_max_ms" validate:"gtefield=BoardMinMS"`
	} `yaml:"courtesy"`
}

// Load reads path, expands ${VAR} references from the environment and fills
// defaults.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(b))), &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Port == 0 {
		cfg.App.Port = 38471
	}
	if cfg.Search.CompanyTTLHours == 0 {
		cfg.Search.CompanyTTLHours = 24
	}
	if cfg.Sources.Greenhouse.TTLHours == 0 {
		cfg.Sources.Greenhouse.TTLHours = 6
	}
	if cfg.Sources.Lever.TTLHours == 0 {
		cfg.Sources.Lever.TTLHours = 6
	}
	if cfg.Courtesy.SearchMaxMS == 0 && cfg.Courtesy.SearchMinMS == 0 {
		cfg.Courtesy.SearchMinMS, cfg.Courtesy.SearchMaxMS = 2000, 5000
	}
	if cfg.Courtesy.BoardMaxMS == 0 && cfg.Courtesy.BoardMinMS == 0 {
		cfg.Courtesy.BoardMinMS, cfg.Courtesy.BoardMaxMS = 1000, 3000
	}
}

func hours(n int) time.Duration { return time.Duration(n) * time.Hour }
func ms(n int) time.Duration    { return time.Duration(n) * time.Millisecond }

func (c Config) GreenhouseTTL() time.Duration { return hours(c.Sources.Greenhouse.TTLHours) }
func (c Config) LeverTTL() time.Duration      { return hours(c.Sources.Lever.TTLHours) }
func (c Config) CompanyTTL() time.Duration    { return hours(c.Search.CompanyTTLHours) }

func (c Config) SearchPause() (time.Duration, time.Duration) {
	return ms(c.Courtesy.SearchMinMS), ms(c.Courtesy.SearchMaxMS)
}

func (c Config) BoardPause() (time.Duration, time.Duration) {
	return ms(c.Courtesy.BoardMinMS), ms(c.Courtesy.BoardMaxMS)
}

// Schedule is the interval between scheduled runs; zero disables them.
func (c Config) Schedule() time.Duration {
	return time.Duration(c.App.ScheduleMinutes) * time.Minute
}

// Retention is how long job postings are kept; zero keeps them forever.
func (c Config) Retention() time.Duration {
	return time.Duration(c.App.RetentionDays) * 24 * time.Hour
}

// BoardKeywords is the keyword filter applied to job boards.
func (c Config) BoardKeywords() []string {
	if len(c.Sources.Keywords) > 0 {
		return c.Sources.Keywords
	}
	return c.Targets.Keywords
}
