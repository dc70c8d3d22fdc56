package serp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"leadhunt-engine/internal/apperr"
)

var fixedNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestParseResults(t *testing.T) {
	resp := &Response{OrganicResults: []OrganicResult{
		{
			Title:   "Jane Doe - Product Manager at Innovate Inc.",
			Link:    "https://www.linkedin.com/in/janedoe",
			Snippet: "New York, NY · Product Manager · Boston University alum",
		},
		{
			Title:   "John Roe | Associate PM at Globex",
			Link:    "https://www.linkedin.com/in/johnroe",
			Snippet: "500+ connections · Globex",
		},
		{
			Title: "Amy Lin - Product Owner - Initech",
			Link:  "https://www.linkedin.com/in/amylin",
		},
		{
			Title:   "Bob Stone - Product Manager",
			Link:    "https://www.linkedin.com/in/bobstone",
			Snippet: "Product Manager at Hooli. Location: Austin, TX\nMore text",
		},
		{Title: "Company Page - Acme", Link: "https://www.linkedin.com/company/acme"},
		{Title: "", Link: "https://www.linkedin.com/in/ghost"},
	}}

	leads := ParseResults(resp, "People Search: New York, NY", []string{"Boston University", "Stanford"}, fixedNow)
	if len(leads) != 4 {
		t.Fatalf("len(leads) = %d, want 4", len(leads))
	}

	tests := []struct {
		name, role, company, location string
	}{
		{"Jane Doe", "Product Manager", "Innovate Inc.", "New York, NY"},
		{"John Roe", "Associate PM", "Globex", ""},
		{"Amy Lin", "Product Owner", "Initech", ""},
		{"Bob Stone", "Product Manager", "Hooli", "Austin, TX"},
	}
	for i, tt := range tests {
		l := leads[i]
		if l.Name != tt.name || l.Role != tt.role || l.CompanyRaw != tt.company || l.LocationRaw != tt.location {
			t.Errorf("lead %d = {%q %q %q %q}, want {%q %q %q %q}", i,
				l.Name, l.Role, l.CompanyRaw, l.LocationRaw,
				tt.name, tt.role, tt.company, tt.location)
		}
		if l.Source != "People Search: New York, NY" || !l.CreatedAt.Equal(fixedNow) {
			t.Errorf("lead %d source/date = %q %v", i, l.Source, l.CreatedAt)
		}
	}
	if !reflect.DeepEqual(leads[0].Affiliations, []string{"Boston University"}) {
		t.Errorf("Affiliations = %v, want [Boston University]", leads[0].Affiliations)
	}
	if leads[1].Affiliations != nil {
		t.Errorf("Affiliations = %v, want none", leads[1].Affiliations)
	}
}

func TestParseResultsEmpty(t *testing.T) {
	resp := &Response{}
	resp.SearchMetadata.Status = "Error"
	if got := ParseResults(resp, "x", nil, fixedNow); len(got) != 0 {
		t.Fatalf("got %d leads from empty response", len(got))
	}
	if got := ParseResults(nil, "x", nil, fixedNow); got == nil || len(got) != 0 {
		t.Fatalf("nil response should yield an empty slice")
	}
}

func TestRoleSplitCaseInsensitive(t *testing.T) {
	tests := []struct {
		in, role, company string
	}{
		{"Product Manager AT Acme", "Product Manager", "Acme"},
		{"İK Uzmanı at Foo", "İK Uzmanı", "Foo"},
		{"İİİİ Yöneticisi At Şirket İstanbul", "İİİİ Yöneticisi", "Şirket İstanbul"},
		{"ȺȺȺȺȺȺ at X", "ȺȺȺȺȺȺ", "X"},
		{"Ürün Müdürü aT Ⱥcme", "Ürün Müdürü", "Ⱥcme"},
	}
	for _, tt := range tests {
		role, company := splitRole(tt.in, "")
		if role != tt.role || company != tt.company {
			t.Errorf("splitRole(%q) = %q, %q, want %q, %q", tt.in, role, company, tt.role, tt.company)
		}
		if !utf8.ValidString(role) || !utf8.ValidString(company) {
			t.Errorf("splitRole(%q) produced invalid UTF-8: %q, %q", tt.in, role, company)
		}
	}
}

func TestCutAtNoSeparator(t *testing.T) {
	for _, in := range []string{"", "İİİ", "Ⱥ at", "Data Scientist"} {
		if _, _, ok := cutAt(in); ok {
			t.Errorf("cutAt(%q) ok = true, want false", in)
		}
	}
}

func TestRoleWithoutSnippetKeepsRemainder(t *testing.T) {
	role, company := splitRole("Growth Lead", "")
	if role != "Growth Lead" || company != "" {
		t.Errorf("splitRole = %q, %q, want remainder as role and no company", role, company)
	}
}

func TestSnippetLocationCountsCharacters(t *testing.T) {
	// 30 runes, 60 bytes
	loc := strings.Repeat("ö", 30)
	if got := snippetLocation(loc + " · 500+ connections"); got != loc {
		t.Errorf("snippetLocation = %q, want %q", got, loc)
	}
	long := strings.Repeat("ö", 50)
	if got := snippetLocation(long + " · x"); got != "" {
		t.Errorf("snippetLocation(50 runes) = %q, want empty", got)
	}
}

func TestQueries(t *testing.T) {
	got := LocationQuery([]string{"Product Manager", "APM"}, "New York")
	want := `("Product Manager" OR "APM") "New York" site:linkedin.com/in/`
	if got != want {
		t.Errorf("LocationQuery = %s, want %s", got, want)
	}
	if got := InstitutionQuery("Test University"); got != `"Test University" site:linkedin.com/in/` {
		t.Errorf("InstitutionQuery = %s", got)
	}
}

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := New(Config{BaseURL: srv.URL, APIKey: "k", Affiliations: []string{"Stanford"}}, nil)
	c.Policy.Sleep = func(context.Context, time.Duration) error { return nil }
	c.Now = func() time.Time { return fixedNow }
	return c, srv
}

func TestSearchByInstitution(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/search.json" || q.Get("engine") != "google" || q.Get("api_key") != "k" ||
			q.Get("num") != "100" || q.Get("gl") != "us" || q.Get("hl") != "en" {
			t.Errorf("unexpected request %s", r.URL)
		}
		if q.Get("q") != `"Stanford" site:linkedin.com/in/` {
			t.Errorf("q = %s", q.Get("q"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"organic_results": []map[string]string{{
				"title":   "Ann Park - APM at Stanford Health",
				"link":    "https://www.linkedin.com/in/annpark",
				"snippet": "Palo Alto, CA · APM",
			}},
		})
	})

	leads, err := c.SearchByInstitution(context.Background(), "Stanford")
	if err != nil {
		t.Fatal(err)
	}
	if len(leads) != 1 || leads[0].Source != "Alumni Search: Stanford" {
		t.Fatalf("leads = %+v", leads)
	}
	if !reflect.DeepEqual(leads[0].Affiliations, []string{"Stanford"}) {
		t.Errorf("Affiliations = %v", leads[0].Affiliations)
	}
}

func TestSearchRetriesThenDegrades(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	leads, err := c.SearchByLocation(context.Background(), []string{"PM"}, "Austin")
	if err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
	if len(leads) != 0 {
		t.Errorf("leads = %d, want 0", len(leads))
	}
	if got := calls.Load(); got != 4 {
		t.Errorf("calls = %d, want 4", got)
	}
}

func TestSearchAuthNotRetried(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Search(context.Background(), "x", 1)
	if !apperr.Is(err, apperr.Auth) {
		t.Fatalf("err = %v, want auth", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestMissingKeyIsConfigError(t *testing.T) {
	c := New(Config{}, nil)
	_, err := c.SearchByLocation(context.Background(), []string{"PM"}, "Austin")
	if !apperr.Is(err, apperr.Config) {
		t.Fatalf("err = %v, want config", err)
	}
}

func TestPing(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"search_metadata":{"id":"abc","status":"Success"}}`))
	})
	id, err := c.Ping(context.Background())
	if err != nil || id != "abc" {
		t.Fatalf("Ping = %q, %v", id, err)
	}
}
