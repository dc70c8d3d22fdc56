package clean

import (
	"testing"

	"leadhunt-engine/internal/domain"
)

func TestCompanyName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Example Corp.", "Example"},
		{"Test, Inc.", "Test"},
		{"ACME LLC", "ACME"},
		{"Global Limited", "Global"},
		{"  Whitespace Corp  ", "Whitespace"},
		{"Initech Incorporated", "Initech"},
		{"Hooli Ltd", "Hooli"},
		{"Umbrella Corporation", "Umbrella"},
		{"No Suffix Co", "No Suffix Co"},
		{"Inc.", "Inc."},
		{"  LLC  ", "LLC"},
		{"Incorporeal Labs", "Incorporeal Labs"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := CompanyName(tt.in); got != tt.want {
			t.Errorf("CompanyName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWhitespaceAndLocation(t *testing.T) {
	if got := Whitespace("  John    Doe \n"); got != "John Doe" {
		t.Errorf("Whitespace = %q", got)
	}
	tests := []struct {
		in, want string
	}{
		{"  New York, NY  ", "New York, NY"},
		{" London ,  UK", "London, UK"},
		{"Location: Austin, TX, Austin", "Austin, TX"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Location(tt.in); got != tt.want {
			t.Errorf("Location(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{" https://WWW.LinkedIn.com/in/jane-doe?trk=abc#top ", "https://www.linkedin.com/in/jane-doe"},
		{"https://boards.greenhouse.io/acme/jobs/1?gh_jid=1&utm_source=x", "https://boards.greenhouse.io/acme/jobs/1?gh_jid=1"},
		{"not a url", "not a url"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := URL(tt.in); got != tt.want {
			t.Errorf("URL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLeadReturnsCleanCopy(t *testing.T) {
	in := domain.Lead{
		Name:        "  Jane   Doe ",
		Email:       " JANE@Example.com ",
		CompanyRaw:  "Example, Inc. ",
		LocationRaw: " new york city, ny",
		Company:     &domain.CompanyProfile{Name: "Example Corp."},
	}
	out := Lead(in)

	if out.Name != "Jane Doe" || out.Email != "jane@example.com" {
		t.Fatalf("identity fields not cleaned: %+v", out)
	}
	if out.CompanyNormalized != "Example" || out.CompanyRaw != "Example, Inc." {
		t.Fatalf("company = %q / %q", out.CompanyRaw, out.CompanyNormalized)
	}
	if out.LocationNormalized != "new york city, ny" {
		t.Fatalf("location = %q", out.LocationNormalized)
	}
	if out.Company.Name != "Example" || in.Company.Name != "Example Corp." {
		t.Fatalf("company profile: out=%q in=%q", out.Company.Name, in.Company.Name)
	}
	if out.Status != domain.LeadNew {
		t.Fatalf("status = %q", out.Status)
	}
}

func TestJob(t *testing.T) {
	j := Job(domain.JobPosting{Title: " PM ", CompanyName: "Acme Corp", URL: " https://jobs.lever.co/acme/1 "})
	if j.Title != "PM" || j.CompanyName != "Acme" || j.URL != "https://jobs.lever.co/acme/1" || j.Status != domain.JobStatusOpen {
		t.Fatalf("Job = %+v", j)
	}
}
