package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"leadhunt-engine/internal/apperr"
	"leadhunt-engine/internal/domain"
	"leadhunt-engine/internal/events"
	"leadhunt-engine/internal/rank"
	"leadhunt-engine/internal/scrape/greenhouse"
	"leadhunt-engine/internal/scrape/lever"
	"leadhunt-engine/internal/store"
)

type fakePeople struct {
	byLocation map[string][]domain.Lead
	bySchool   map[string][]domain.Lead
	fail       map[string]error
}

func (f *fakePeople) SearchByLocation(_ context.Context, _ []string, loc string) ([]domain.Lead, error) {
	if err := f.fail[loc]; err != nil {
		return nil, err
	}
	return f.byLocation[loc], nil
}

func (f *fakePeople) SearchByInstitution(_ context.Context, school string) ([]domain.Lead, error) {
	return f.bySchool[school], nil
}

type fakeEnricher map[string]*domain.CompanyProfile

func (f fakeEnricher) Enrich(_ context.Context, name string) *domain.CompanyProfile { return f[name] }

// flakyStorage fails the nth lead Create inside a batch.
type flakyStorage struct {
	*store.Store
	failOn int
}

func (f *flakyStorage) InBatch(ctx context.Context, fn func(store.Sink) error) error {
	return f.Store.InBatch(ctx, func(tx store.Sink) error {
		return fn(&flakySink{Sink: tx, failOn: f.failOn})
	})
}

type flakySink struct {
	store.Sink
	failOn int
	n      int
}

func (s *flakySink) Create(ctx context.Context, kind store.Kind, f store.Fields) (*store.Record, error) {
	if kind == store.Leads {
		s.n++
		if s.n == s.failOn {
			return nil, apperr.New(apperr.Persistence, "store", "create", errors.New("disk on fire"))
		}
	}
	return s.Sink.Create(ctx, kind, f)
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "p.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func criteria() rank.Criteria {
	return rank.NewCriteria([]string{"new york, ny"}, []string{"product manager"}, nil, []string{"senior"})
}

func lead(name, role, company string) domain.Lead {
	return domain.Lead{
		Name:        name,
		ProfileURL:  "https://www.linkedin.com/in/" + name,
		Role:        role,
		CompanyRaw:  company,
		LocationRaw: "New York, NY",
		Source:      "People Search: New York, NY",
	}
}

func TestRunLeadsCountsPerRecordFailure(t *testing.T) {
	st := openStore(t)
	people := &fakePeople{byLocation: map[string][]domain.Lead{
		"New York, NY": {
			lead("ann", "Product Manager", "Acme Inc."),
			lead("bob", "Product Manager", "Globex"),
			lead("cat", "Product Manager", "Initech LLC"),
		},
	}}
	o := New(Deps{
		People:   people,
		Store:    &flakyStorage{Store: st, failOn: 2},
		Criteria: criteria(),
	})

	rep, err := o.RunLeads(context.Background(), []LeadQuery{{Location: "New York, NY"}})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Fetched != 3 || rep.Qualified != 3 || rep.Added != 2 || rep.Failed != 1 {
		t.Fatalf("report = %+v, want fetched=3 qualified=3 added=2 failed=1", rep)
	}
	for _, name := range []string{"ann", "cat"} {
		r, err := st.FindOne(context.Background(), store.Leads, store.Fields{"profile_url": "https://www.linkedin.com/in/" + name})
		if err != nil || r == nil {
			t.Errorf("lead %s not committed: %v", name, err)
		}
	}
	if r, _ := st.FindOne(context.Background(), store.Companies, store.Fields{"name": "Globex"}); r != nil {
		t.Errorf("company of the failed record survived its rollback")
	}
	if o.State() != Done {
		t.Errorf("State = %v, want done", o.State())
	}
}

func TestRunLeadsIsolatesSourceFailure(t *testing.T) {
	st := openStore(t)
	people := &fakePeople{
		byLocation: map[string][]domain.Lead{"New York, NY": {lead("ann", "Product Manager", "Acme")}},
		bySchool:   map[string][]domain.Lead{"BU": {lead("dan", "Senior Product Manager", "Hooli")}},
		fail:       map[string]error{"Austin, TX": apperr.New(apperr.Config, "serp", "search", errors.New("no key"))},
	}
	o := New(Deps{People: people, Store: st, Criteria: criteria()})

	rep, err := o.RunLeads(context.Background(), []LeadQuery{
		{Location: "Austin, TX"},
		{Location: "New York, NY"},
		{School: "BU"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Fetched != 2 || rep.Added != 1 || rep.Rejected != 1 {
		t.Fatalf("report = %+v", rep)
	}
}

func TestRunLeadsUpdatesExisting(t *testing.T) {
	st := openStore(t)
	l := lead("ann", "Product Manager", "Acme")
	l.Email = "Ann@Acme.com"
	people := &fakePeople{byLocation: map[string][]domain.Lead{"New York, NY": {l}}}
	o := New(Deps{People: people, Store: st, Criteria: criteria()})
	q := []LeadQuery{{Location: "New York, NY"}}

	if rep, _ := o.RunLeads(context.Background(), q); rep.Added != 1 {
		t.Fatalf("first run = %+v", rep)
	}
	rep, err := o.RunLeads(context.Background(), q)
	if err != nil || rep.Added != 0 || rep.Updated != 1 {
		t.Fatalf("second run = %+v, %v", rep, err)
	}
	r, _ := st.FindOne(context.Background(), store.Leads, store.Fields{"email": "ann@acme.com"})
	if r == nil {
		t.Fatal("email not lowercased on persist")
	}
}

func TestProcessEnrichesFiltersAndScores(t *testing.T) {
	o := New(Deps{
		Enricher: fakeEnricher{"Acme": {Name: "Acme", Website: "https://acme.com"}},
		Criteria: criteria(),
	})
	raw := []domain.Lead{
		lead("bob", "Product Manager", "Globex"),
		lead("ann", "Product Manager", "Acme Corp."),
		lead("eve", "Senior Product Manager", "Acme"),
		{Name: "zed", Role: "Product Manager"},
	}
	rep := &Report{}
	got := o.Process(context.Background(), rep, raw)
	if len(got) != 2 || rep.Rejected != 2 {
		t.Fatalf("kept %d rejected %d, want 2 and 2", len(got), rep.Rejected)
	}
	if got[0].Name != "ann" || *got[0].Score != 14 || got[0].Company == nil {
		t.Errorf("top = %s score=%v company=%v", got[0].Name, got[0].Score, got[0].Company)
	}
	if got[1].Name != "bob" || *got[1].Score != 12 || got[1].Company != nil {
		t.Errorf("second = %s score=%v", got[1].Name, *got[1].Score)
	}
}

type fakeGreenhouse map[string][]domain.JobPosting

func (f fakeGreenhouse) Fetch(_ context.Context, b greenhouse.Board, _ []string) ([]domain.JobPosting, error) {
	if b.Token == "" {
		return nil, apperr.New(apperr.Config, "greenhouse", "fetch", errors.New("board token is required"))
	}
	return f[b.Token], nil
}

type fakeLever map[string][]domain.JobPosting

func (f fakeLever) Fetch(_ context.Context, co lever.Company, _ []string) ([]domain.JobPosting, error) {
	return f[co.Slug], nil
}

func TestRunJobBoardsDedupesAndCountsBoardFailure(t *testing.T) {
	st := openStore(t)
	gh := fakeGreenhouse{"acme": {
		{Title: "PM", CompanyName: "Acme Inc.", URL: "https://boards.greenhouse.io/acme/jobs/1?utm_source=x", Source: "Greenhouse"},
		{Title: "APM", CompanyName: "Acme Inc.", URL: "https://boards.greenhouse.io/acme/jobs/2", Source: "Greenhouse"},
	}}
	lv := fakeLever{"globex": {
		{Title: "PM", CompanyName: "Globex", URL: "https://jobs.lever.co/globex/a1", Source: "Lever"},
	}}
	hub := events.NewHub()
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	o := New(Deps{Greenhouse: gh, Lever: lv, Store: st, Hub: hub})
	targets := JobBoardTargets{
		Greenhouse: []greenhouse.Board{{Token: "acme"}, {Token: ""}},
		Lever:      []lever.Company{{Slug: "globex"}},
	}

	rep, err := o.RunJobBoards(context.Background(), targets)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Fetched != 3 || rep.Added != 3 || rep.Failed != 1 {
		t.Fatalf("first run = %+v", rep)
	}

	rep, err = o.RunJobBoards(context.Background(), targets)
	if err != nil || rep.Added != 0 || rep.Skipped != 3 {
		t.Fatalf("second run = %+v, %v", rep, err)
	}

	acme, _ := st.FindOne(context.Background(), store.Companies, store.Fields{"name": "Acme"})
	if acme == nil {
		t.Fatal("company not created under its normalized name")
	}
	job, _ := st.FindOne(context.Background(), store.JobPostings, store.Fields{"url": "https://boards.greenhouse.io/acme/jobs/1"})
	if job == nil || job.String("status") != domain.JobStatusOpen || job.Int("company_id") != acme.ID {
		t.Fatalf("job = %+v", job)
	}
	if len(sub) == 0 {
		t.Error("no events published")
	}
}

func TestBusyRun(t *testing.T) {
	o := New(Deps{Store: openStore(t)})
	o.run.Lock()
	defer o.run.Unlock()
	if _, err := o.RunLeads(context.Background(), nil); !errors.Is(err, ErrBusy) {
		t.Fatalf("err = %v, want ErrBusy", err)
	}
}

func TestRunAllFollowsPlan(t *testing.T) {
	st := openStore(t)
	o := New(Deps{
		People:     &fakePeople{byLocation: map[string][]domain.Lead{"New York, NY": {lead("ann", "Product Manager", "")}}},
		Greenhouse: fakeGreenhouse{"acme": {{Title: "PM", CompanyName: "Acme", URL: "https://x/1"}}},
		Store:      st,
		Criteria:   criteria(),
		Plan: Plan{
			Leads: []LeadQuery{{Location: "New York, NY"}},
			Jobs:  JobBoardTargets{Greenhouse: []greenhouse.Board{{Token: "acme"}}},
		},
	})
	reps, err := o.RunAll(context.Background())
	if err != nil || len(reps) != 2 {
		t.Fatalf("RunAll = %+v, %v", reps, err)
	}
	if reps[0].Workflow != "leads" || reps[0].Added != 1 || reps[1].Workflow != "jobs" || reps[1].Added != 1 {
		t.Fatalf("reports = %+v", reps)
	}
	if st := o.Status(); len(st.Latest) != 2 {
		t.Errorf("Status.Latest = %v", st.Latest)
	}
}

func TestRunByWorkflowName(t *testing.T) {
	o := New(Deps{
		Greenhouse: fakeGreenhouse{"acme": {{Title: "PM", CompanyName: "Acme", URL: "https://x/1"}}},
		Store:      openStore(t),
		Criteria:   criteria(),
		Plan:       Plan{Jobs: JobBoardTargets{Greenhouse: []greenhouse.Board{{Token: "acme"}}}},
	})
	reps, err := o.Run(context.Background(), "jobs")
	if err != nil || len(reps) != 1 || reps[0].Workflow != "jobs" {
		t.Fatalf("Run(jobs) = %+v, %v", reps, err)
	}
	if o.Running() {
		t.Error("Running = true after run finished")
	}
	if _, err := o.Run(context.Background(), "nope"); !errors.Is(err, ErrUnknownWorkflow) {
		t.Errorf("err = %v, want ErrUnknownWorkflow", err)
	}
}
