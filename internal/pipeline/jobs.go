package pipeline

import (
	"context"
	"fmt"
	"time"

	"leadhunt-engine/internal/clean"
	"leadhunt-engine/internal/domain"
	"leadhunt-engine/internal/metrics"
	"leadhunt-engine/internal/store"
)

const workflowJobs = "jobs"

// RunJobBoards fetches every configured board, cleans the postings and
// stores the ones not seen before. Postings are deduplicated by URL within
// their company. A board whose fetch errors counts as one failure.
func (o *Orchestrator) RunJobBoards(ctx context.Context, t JobBoardTargets) (rep Report, err error) {
	rep, err = o.begin(workflowJobs)
	if err != nil {
		return rep, err
	}
	defer func() { o.finish(&rep, err) }()
	start := time.Now()
	defer func() { metrics.RunDuration.WithLabelValues(workflowJobs).Observe(time.Since(start).Seconds()) }()

	o.setState(&rep, Fetching)
	var raw []domain.JobPosting
	collect := func(source, id string, jobs []domain.JobPosting, err error) {
		if err != nil {
			rep.Failed++
			metrics.PersistResults.WithLabelValues(workflowJobs, "failed").Inc()
			o.log.Error("source failed", "source", source, "company", id, "err", err)
			return
		}
		o.log.Info("source done", "source", source, "company", id, "jobs", len(jobs))
		raw = append(raw, jobs...)
	}
	if o.d.Greenhouse != nil {
		for _, b := range t.Greenhouse {
			jobs, err := o.d.Greenhouse.Fetch(ctx, b, t.Keywords)
			collect("greenhouse", b.Token, jobs, err)
		}
	}
	if o.d.Lever != nil {
		for _, co := range t.Lever {
			jobs, err := o.d.Lever.Fetch(ctx, co, t.Keywords)
			collect("lever", co.Slug, jobs, err)
		}
	}
	rep.Fetched = len(raw)

	o.setState(&rep, Normalizing)
	jobs := make([]domain.JobPosting, 0, len(raw))
	for _, j := range raw {
		j = clean.Job(j)
		if j.URL == "" || j.CompanyName == "" {
			rep.Rejected++
			continue
		}
		jobs = append(jobs, j)
	}
	rep.Qualified = len(jobs)

	o.setState(&rep, Persisting)
	err = o.persistJobs(ctx, &rep, jobs)
	return rep, err
}

func (o *Orchestrator) persistJobs(ctx context.Context, rep *Report, jobs []domain.JobPosting) error {
	if len(jobs) == 0 {
		return nil
	}
	var added, skipped, failed int
	err := o.d.Store.InBatch(ctx, func(tx store.Sink) error {
		for _, j := range jobs {
			var created bool
			err := tx.Guard(ctx, func() error {
				var err error
				created, err = insertJob(ctx, tx, j)
				return err
			})
			switch {
			case err != nil:
				failed++
				metrics.PersistResults.WithLabelValues(workflowJobs, "failed").Inc()
				o.log.Error("persist job", "company", j.CompanyName, "url", j.URL, "err", err)
			case created:
				added++
				metrics.PersistResults.WithLabelValues(workflowJobs, "added").Inc()
			default:
				skipped++
			}
		}
		return nil
	})
	if err != nil {
		rep.Failed += len(jobs)
		return fmt.Errorf("persist jobs: %w", err)
	}
	rep.Added += added
	rep.Skipped += skipped
	rep.Failed += failed
	return nil
}

// insertJob stores j unless its company already has a posting at the same
// URL.
func insertJob(ctx context.Context, tx store.Sink, j domain.JobPosting) (created bool, err error) {
	companyID, err := resolveCompany(ctx, tx, j.CompanyName, nil)
	if err != nil {
		return false, err
	}
	existing, err := tx.FindOne(ctx, store.JobPostings, store.Fields{"url": j.URL, "company_id": companyID})
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	rec, err := tx.Create(ctx, store.JobPostings, store.Fields{
		"company_id":  companyID,
		"title":       j.Title,
		"location":    j.Location,
		"url":         j.URL,
		"snippet":     j.Snippet,
		"commitment":  j.Commitment,
		"source":      j.Source,
		"external_id": j.ExternalID,
		"status":      j.Status,
	})
	if err != nil {
		return false, err
	}
	if rec == nil {
		return false, errNoRecord
	}
	return true, nil
}
