package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadhunt-engine/internal/clean"
	"leadhunt-engine/internal/domain"
	"leadhunt-engine/internal/metrics"
	"leadhunt-engine/internal/rank"
	"leadhunt-engine/internal/store"
)

const workflowLeads = "leads"

var errNoRecord = errors.New("sink returned no record")

// RunLeads fetches every query, processes the combined batch and persists
// the qualified leads. A failing query contributes nothing; a failing
// record is counted and skipped.
func (o *Orchestrator) RunLeads(ctx context.Context, queries []LeadQuery) (rep Report, err error) {
	rep, err = o.begin(workflowLeads)
	if err != nil {
		return rep, err
	}
	defer func() { o.finish(&rep, err) }()
	start := time.Now()
	defer func() { metrics.RunDuration.WithLabelValues(workflowLeads).Observe(time.Since(start).Seconds()) }()

	o.setState(&rep, Fetching)
	raw := o.fetchLeads(ctx, queries)
	rep.Fetched = len(raw)

	leads := o.Process(ctx, &rep, raw)
	rep.Qualified = len(leads)

	o.setState(&rep, Persisting)
	err = o.persistLeads(ctx, &rep, leads)
	return rep, err
}

func (o *Orchestrator) fetchLeads(ctx context.Context, queries []LeadQuery) []domain.Lead {
	if o.d.People == nil {
		o.log.Warn("people search not configured; skipping lead queries", "queries", len(queries))
		return nil
	}
	var out []domain.Lead
	for _, q := range queries {
		var (
			leads []domain.Lead
			err   error
			label string
		)
		if q.School != "" {
			label = "school=" + q.School
			leads, err = o.d.People.SearchByInstitution(ctx, q.School)
		} else {
			label = "location=" + q.Location
			leads, err = o.d.People.SearchByLocation(ctx, q.Keywords, q.Location)
		}
		if err != nil {
			o.log.Error("source failed", "query", label, "err", err)
			continue
		}
		o.log.Info("source done", "query", label, "leads", len(leads))
		out = append(out, leads...)
	}
	return out
}

// Process runs clean, enrich, filter and score over raw and returns the
// qualified leads ordered by descending score. rep may be nil.
func (o *Orchestrator) Process(ctx context.Context, rep *Report, raw []domain.Lead) []domain.Lead {
	if rep == nil {
		rep = &Report{Workflow: workflowLeads}
	}

	o.setState(rep, Normalizing)
	leads := make([]domain.Lead, 0, len(raw))
	for _, l := range raw {
		leads = append(leads, clean.Lead(l))
	}

	o.setState(rep, Enriching)
	o.enrich(ctx, leads)

	o.setState(rep, Filtering)
	kept := leads[:0]
	for _, l := range leads {
		if ok, why := o.d.Criteria.Explain(l); !ok {
			rep.Rejected++
			metrics.PersistResults.WithLabelValues(workflowLeads, "rejected").Inc()
			o.log.Debug("skipped", "reason", why, "name", l.Name, "role", l.Role, "loc", l.LocationNormalized)
			continue
		}
		kept = append(kept, l)
	}

	o.setState(rep, Scoring)
	scored := rank.Apply(o.d.Criteria, kept)
	rank.SortByScore(scored)
	return scored
}

// enrich attaches a company profile to leads with a company name. Each
// distinct name is looked up once per run; a miss leaves Company nil.
func (o *Orchestrator) enrich(ctx context.Context, leads []domain.Lead) {
	if o.d.Enricher == nil {
		return
	}
	seen := make(map[string]*domain.CompanyProfile)
	for i := range leads {
		name := leads[i].CompanyNormalized
		if name == "" {
			continue
		}
		p, ok := seen[name]
		if !ok {
			p = o.d.Enricher.Enrich(ctx, name)
			if p != nil {
				c := clean.Company(*p)
				p = &c
			}
			seen[name] = p
		}
		if p != nil {
			c := *p
			leads[i].Company = &c
		}
	}
}

func (o *Orchestrator) persistLeads(ctx context.Context, rep *Report, leads []domain.Lead) error {
	if len(leads) == 0 {
		return nil
	}
	var added, updated, failed int
	err := o.d.Store.InBatch(ctx, func(tx store.Sink) error {
		for _, l := range leads {
			var created bool
			err := tx.Guard(ctx, func() error {
				var err error
				created, err = upsertLead(ctx, tx, l)
				return err
			})
			switch {
			case err != nil:
				failed++
				metrics.PersistResults.WithLabelValues(workflowLeads, "failed").Inc()
				o.log.Error("persist lead", "key", l.Key(), "name", l.Name, "err", err)
			case created:
				added++
				metrics.PersistResults.WithLabelValues(workflowLeads, "added").Inc()
			default:
				updated++
				metrics.PersistResults.WithLabelValues(workflowLeads, "updated").Inc()
			}
		}
		return nil
	})
	if err != nil {
		// nothing reached the database
		rep.Failed += len(leads)
		return fmt.Errorf("persist leads: %w", err)
	}
	rep.Added += added
	rep.Updated += updated
	rep.Failed += failed
	return nil
}

func upsertLead(ctx context.Context, tx store.Sink, l domain.Lead) (created bool, err error) {
	var filter store.Fields
	switch {
	case l.Email != "":
		filter = store.Fields{"email": l.Email}
	case l.ProfileURL != "":
		filter = store.Fields{"profile_url": l.ProfileURL}
	default:
		return false, fmt.Errorf("lead %q has neither email nor profile url", l.Name)
	}

	f := leadFields(l)
	if l.CompanyNormalized != "" {
		id, err := resolveCompany(ctx, tx, l.CompanyNormalized, l.Company)
		if err != nil {
			return false, err
		}
		f["company_id"] = id
	}

	existing, err := tx.FindOne(ctx, store.Leads, filter)
	if err != nil {
		return false, err
	}
	var rec *store.Record
	if existing != nil {
		rec, err = tx.Update(ctx, store.Leads, existing.ID, f)
	} else {
		rec, err = tx.Create(ctx, store.Leads, f)
		created = true
	}
	if err != nil {
		return false, err
	}
	if rec == nil {
		return false, errNoRecord
	}
	return created, nil
}

func leadFields(l domain.Lead) store.Fields {
	loc := l.LocationNormalized
	if loc == "" {
		loc = l.LocationRaw
	}
	affiliations := l.Affiliations
	if affiliations == nil {
		affiliations = []string{}
	}
	f := store.Fields{
		"name":         l.Name,
		"email":        l.Email,
		"profile_url":  l.ProfileURL,
		"role":         l.Role,
		"location":     loc,
		"affiliations": affiliations,
		"source":       l.Source,
		"snippet":      l.Snippet,
		"status":       string(l.Status),
	}
	if l.Score != nil {
		f["score"] = *l.Score
	}
	return f
}

// resolveCompany finds the company by normalized name or creates it,
// carrying enrichment data when there is any.
func resolveCompany(ctx context.Context, tx store.Sink, name string, p *domain.CompanyProfile) (int64, error) {
	rec, err := tx.FindOne(ctx, store.Companies, store.Fields{"name": name})
	if err != nil {
		return 0, err
	}
	if rec != nil {
		return rec.ID, nil
	}
	f := store.Fields{"name": name}
	if p != nil {
		f["website"] = p.Website
		f["industry"] = p.Industry
		f["size"] = p.Size
		f["location"] = p.Location
		f["description"] = p.Description
		f["profile_url"] = p.ProfileURL
	}
	rec, err = tx.Create(ctx, store.Companies, f)
	if err != nil {
		return 0, err
	}
	if rec == nil {
		return 0, errNoRecord
	}
	return rec.ID, nil
}
