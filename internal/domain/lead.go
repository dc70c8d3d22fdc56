package domain

import (
	"strings"
	"time"
)

type LeadStatus string

const (
	LeadNew           LeadStatus = "new"
	LeadContacted     LeadStatus = "contacted"
	LeadInterested    LeadStatus = "interested"
	LeadNotInterested LeadStatus = "not_interested"
	LeadConverted     LeadStatus = "converted"
	LeadArchived      LeadStatus = "archived"
)

type Lead struct {
	Email      string
	ProfileURL string

	Name               string
	Role               string
	CompanyRaw         string
	CompanyNormalized  string
	LocationRaw        string
	LocationNormalized string
	Affiliations       []string
	Source             string
	CreatedAt          time.Time
	Snippet            string
	Status             LeadStatus

	Company *CompanyProfile
	Score   *int
}

// Key is the dedup identity: email when known, profile URL otherwise.
func (l Lead) Key() string {
	if e := strings.TrimSpace(l.Email); e != "" {
		return e
	}
	return strings.TrimSpace(l.ProfileURL)
}

// Clone returns a copy that shares no slices or pointers with l.
func (l Lead) Clone() Lead {
	out := l
	if l.Affiliations != nil {
		out.Affiliations = append([]string(nil), l.Affiliations...)
	}
	if l.Company != nil {
		c := *l.Company
		out.Company = &c
	}
	if l.Score != nil {
		s := *l.Score
		out.Score = &s
	}
	return out
}
