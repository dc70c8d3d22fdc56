package cli

import (
	"leadhunt-engine/internal/config"
	"leadhunt-engine/internal/pipeline"
	"leadhunt-engine/internal/rank"
	"leadhunt-engine/internal/scrape/greenhouse"
	"leadhunt-engine/internal/scrape/lever"
)

// BuildPlan turns the targets and sources sections into the work one
// RunAll performs. cfg must already be normalized.
func BuildPlan(cfg config.Config) pipeline.Plan {
	var p pipeline.Plan

	if cfg.Search.PeopleSearch {
		for _, loc := range cfg.Targets.Locations {
			p.Leads = append(p.Leads, pipeline.LeadQuery{
				Keywords: cfg.Targets.Keywords,
				Location: loc,
			})
		}
	}
	if cfg.Search.AlumniSearch {
		for _, school := range cfg.Targets.Schools {
			p.Leads = append(p.Leads, pipeline.LeadQuery{School: school})
		}
	}

	p.Jobs.Keywords = cfg.BoardKeywords()
	if cfg.Sources.Greenhouse.Enabled {
		for _, c := range cfg.Sources.Greenhouse.Companies {
			p.Jobs.Greenhouse = append(p.Jobs.Greenhouse, greenhouse.Board{Token: c.Slug, Name: c.Name})
		}
	}
	if cfg.Sources.Lever.Enabled {
		for _, c := range cfg.Sources.Lever.Companies {
			p.Jobs.Lever = append(p.Jobs.Lever, lever.Company{Slug: c.Slug, Name: c.Name})
		}
	}
	return p
}

func BuildCriteria(cfg config.Config) rank.Criteria {
	return rank.NewCriteria(
		cfg.Targets.Locations,
		cfg.Targets.Keywords,
		cfg.Targets.QualifyingKeywords,
		cfg.Targets.SeniorityKeywords,
	)
}
