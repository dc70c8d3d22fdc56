// Package pipeline drives a run: fetch from every configured source, clean,
// enrich, filter, score and persist, isolating failures per source and per
// record.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"leadhunt-engine/internal/domain"
	"leadhunt-engine/internal/events"
	"leadhunt-engine/internal/rank"
	"leadhunt-engine/internal/scrape/greenhouse"
	"leadhunt-engine/internal/scrape/lever"
	"leadhunt-engine/internal/store"
)

type State string

const (
	Idle        State = "idle"
	Fetching    State = "fetching"
	Normalizing State = "normalizing"
	Enriching   State = "enriching"
	Filtering   State = "filtering"
	Scoring     State = "scoring"
	Persisting  State = "persisting"
	Done        State = "done"
)

// ErrBusy is returned when a run is requested while another is in flight.
var ErrBusy = errors.New("pipeline: run already in progress")

var ErrUnknownWorkflow = errors.New("pipeline: unknown workflow")

type PeopleSearch interface {
	SearchByLocation(ctx context.Context, keywords []string, location string) ([]domain.Lead, error)
	SearchByInstitution(ctx context.Context, school string) ([]domain.Lead, error)
}

type Enricher interface {
	Enrich(ctx context.Context, name string) *domain.CompanyProfile
}

type GreenhouseSource interface {
	Fetch(ctx context.Context, b greenhouse.Board, keywords []string) ([]domain.JobPosting, error)
}

type LeverSource interface {
	Fetch(ctx context.Context, co lever.Company, keywords []string) ([]domain.JobPosting, error)
}

type Storage interface {
	InBatch(ctx context.Context, fn func(store.Sink) error) error
}

// LeadQuery is one people search: by location, or by school when School
// is set.
type LeadQuery struct {
	Keywords []string
	Location string
	School   string
}

type JobBoardTargets struct {
	Greenhouse []greenhouse.Board
	Lever      []lever.Company
	Keywords   []string
}

// Plan is what RunAll executes.
type Plan struct {
	Leads []LeadQuery
	Jobs  JobBoardTargets
}

type Deps struct {
	People     PeopleSearch // optional
	Enricher   Enricher     // optional
	Greenhouse GreenhouseSource
	Lever      LeverSource
	Store      Storage
	Criteria   rank.Criteria
	Plan       Plan
	Hub        *events.Hub
	Log        *slog.Logger
	Now        func() time.Time
}

type Report struct {
	RunID     string    `json:"run_id"`
	Workflow  string    `json:"workflow"`
	Fetched   int       `json:"fetched"`
	Qualified int       `json:"qualified"`
	Rejected  int       `json:"rejected"`
	Added     int       `json:"added"`
	Updated   int       `json:"updated"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	Started   time.Time `json:"started"`
	Finished  time.Time `json:"finished"`
}

type Orchestrator struct {
	d   Deps
	log *slog.Logger

	run     sync.Mutex // held for the duration of a run
	running atomic.Bool

	mu     sync.Mutex
	state  State
	runID  string
	latest map[string]Report
}

func New(d Deps) *Orchestrator {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Orchestrator{
		d:      d,
		log:    d.Log.With("component", "pipeline"),
		state:  Idle,
		latest: make(map[string]Report),
	}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Status is a snapshot for operators.
type Status struct {
	State  State             `json:"state"`
	RunID  string            `json:"run_id,omitempty"`
	Latest map[string]Report `json:"latest"`
}

func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	latest := make(map[string]Report, len(o.latest))
	for k, v := range o.latest {
		latest[k] = v
	}
	return Status{State: o.state, RunID: o.runID, Latest: latest}
}

// RunAll runs the lead workflow and then the job-board workflow from the
// configured plan.
func (o *Orchestrator) RunAll(ctx context.Context) ([]Report, error) {
	var out []Report
	if len(o.d.Plan.Leads) > 0 {
		r, err := o.RunLeads(ctx, o.d.Plan.Leads)
		if err != nil {
			return out, err
		}
		out = append(out, r)
	}
	jt := o.d.Plan.Jobs
	if len(jt.Greenhouse)+len(jt.Lever) > 0 {
		r, err := o.RunJobBoards(ctx, jt)
		if err != nil {
			return out, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Run executes one named workflow ("leads", "jobs" or "all") from the
// configured plan.
func (o *Orchestrator) Run(ctx context.Context, workflow string) ([]Report, error) {
	switch workflow {
	case workflowLeads:
		r, err := o.RunLeads(ctx, o.d.Plan.Leads)
		return []Report{r}, err
	case workflowJobs:
		r, err := o.RunJobBoards(ctx, o.d.Plan.Jobs)
		return []Report{r}, err
	case "all", "":
		return o.RunAll(ctx)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownWorkflow, workflow)
}

// Running reports whether a run is in flight.
func (o *Orchestrator) Running() bool { return o.running.Load() }

func (o *Orchestrator) begin(workflow string) (Report, error) {
	if !o.run.TryLock() {
		return Report{}, ErrBusy
	}
	o.running.Store(true)
	r := Report{RunID: events.NewRunID(), Workflow: workflow, Started: o.d.Now()}
	o.mu.Lock()
	o.runID = r.RunID
	o.mu.Unlock()
	o.log.Info("run start", "workflow", workflow, "run_id", r.RunID)
	return r, nil
}

func (o *Orchestrator) finish(r *Report, err error) {
	r.Finished = o.d.Now()
	o.setState(r, Done)

	o.mu.Lock()
	o.latest[r.Workflow] = *r
	o.mu.Unlock()

	if err != nil {
		o.log.Error("run failed", "workflow", r.Workflow, "run_id", r.RunID, "err", err)
		o.d.Hub.Publish(events.New(r.RunID, events.TypeError, map[string]string{"workflow": r.Workflow, "error": err.Error()}))
	}
	o.d.Hub.Publish(events.New(r.RunID, events.TypeDone, r))
	o.log.Info("run done",
		"workflow", r.Workflow,
		"fetched", r.Fetched,
		"qualified", r.Qualified,
		"rejected", r.Rejected,
		"added", r.Added,
		"updated", r.Updated,
		"skipped", r.Skipped,
		"failed", r.Failed,
	)

	o.running.Store(false)
	o.run.Unlock()
}

func (o *Orchestrator) setState(r *Report, s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	o.log.Debug("state", "workflow", r.Workflow, "state", s)
	o.d.Hub.Publish(events.New(r.RunID, events.TypeState, map[string]string{"workflow": r.Workflow, "state": string(s)}))
}
