package clean

import (
	"strings"

	"leadhunt-engine/internal/domain"
)

// Lead returns a cleaned copy of l; l itself is not modified.
func Lead(l domain.Lead) domain.Lead {
	out := l.Clone()
	out.Name = Whitespace(l.Name)
	out.Email = strings.ToLower(Whitespace(l.Email))
	out.ProfileURL = URL(l.ProfileURL)
	out.Role = Whitespace(l.Role)
	out.CompanyRaw = Whitespace(l.CompanyRaw)
	out.CompanyNormalized = CompanyName(l.CompanyRaw)
	out.LocationRaw = Whitespace(l.LocationRaw)
	out.LocationNormalized = Location(l.LocationRaw)
	out.Source = Whitespace(l.Source)
	out.Snippet = Whitespace(l.Snippet)
	if out.Company != nil {
		c := Company(*out.Company)
		out.Company = &c
	}
	if out.Status == "" {
		out.Status = domain.LeadNew
	}
	return out
}

func Company(c domain.CompanyProfile) domain.CompanyProfile {
	return domain.CompanyProfile{
		Name:        CompanyName(c.Name),
		Website:     Whitespace(c.Website),
		Industry:    Whitespace(c.Industry),
		Size:        Whitespace(c.Size),
		Location:    Location(c.Location),
		Description: Whitespace(c.Description),
		ProfileURL:  URL(c.ProfileURL),
	}
}

func Job(j domain.JobPosting) domain.JobPosting {
	out := j
	out.Title = Whitespace(j.Title)
	out.CompanyName = CompanyName(j.CompanyName)
	out.Location = Location(j.Location)
	out.URL = URL(j.URL)
	out.Snippet = Whitespace(j.Snippet)
	out.Commitment = Whitespace(j.Commitment)
	out.Source = Whitespace(j.Source)
	if out.Status == "" {
		out.Status = domain.JobStatusOpen
	}
	return out
}
