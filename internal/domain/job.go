package domain

type JobPosting struct {
	ExternalID  string // provider id, e.g. greenhouse:acme:123
	Title       string
	CompanyName string // normalized
	Location    string
	URL         string // dedup key within a company
	Snippet     string
	Commitment  string // Full-time, Contract, ...
	Source      string // Greenhouse / Lever
	Status      string
}

const JobStatusOpen = "Open"
