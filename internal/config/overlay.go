package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CompaniesFile is an optional companies.yml next to the config that
// replaces the board lists.
type CompaniesFile struct {
	Sources struct {
		Greenhouse struct {
			Companies []Company `yaml:"companies"`
		} `yaml:"greenhouse"`
		Lever struct {
			Companies []Company `yaml:"companies"`
		} `yaml:"lever"`
	} `yaml:"sources"`
}

func OverlayCompanies(cfg *Config, companiesPath string) error {
	b, err := os.ReadFile(companiesPath)
	if err != nil {
		// Missing companies file should not kill startup
		return nil
	}

	var cf CompaniesFile
	if err := yaml.Unmarshal(b, &cf); err != nil {
		return fmt.Errorf("parse %s: %w", companiesPath, err)
	}

	if len(cf.Sources.Greenhouse.Companies) > 0 {
		cfg.Sources.Greenhouse.Companies = cf.Sources.Greenhouse.Companies
	}
	if len(cf.Sources.Lever.Companies) > 0 {
		cfg.Sources.Lever.Companies = cf.Sources.Lever.Companies
	}
	return nil
}

// ParseCompanyMap reads "Acme:acme,Globex Corp:globex" into companies. A
// bare token is used as its own name.
func ParseCompanyMap(raw string) ([]Company, error) {
	var out []Company
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, slug, ok := strings.Cut(part, ":")
		if !ok {
			name, slug = part, part
		}
		name, slug = strings.TrimSpace(name), strings.TrimSpace(slug)
		if slug == "" {
			return nil, fmt.Errorf("entry %q has no identifier", part)
		}
		if name == "" {
			name = slug
		}
		out = append(out, Company{Slug: slug, Name: name})
	}
	return out, nil
}

// mergeCompanyMap appends map entries whose slug is not listed yet.
func mergeCompanyMap(list []Company, raw string) ([]Company, error) {
	extra, err := ParseCompanyMap(raw)
	if err != nil {
		return list, err
	}
	seen := map[string]bool{}
	for _, c := range list {
		seen[strings.ToLower(c.Slug)] = true
	}
	for _, c := range extra {
		if seen[strings.ToLower(c.Slug)] {
			continue
		}
		seen[strings.ToLower(c.Slug)] = true
		list = append(list, c)
	}
	return list, nil
}

// SplitLocationPairs turns "New York, NY, Austin, TX" into
// ["New York, NY", "Austin, TX"], keeping the original casing for queries.
func SplitLocationPairs(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for i := 0; i+1 < len(parts); i += 2 {
		city, region := strings.TrimSpace(parts[i]), strings.TrimSpace(parts[i+1])
		if city == "" || region == "" {
			continue
		}
		out = append(out, city+", "+region)
	}
	return out
}
