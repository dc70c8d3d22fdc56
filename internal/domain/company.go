package domain

// CompanyProfile is what the enrichment adapter learns about an employer.
type CompanyProfile struct {
	Name        string
	Website     string
	Industry    string
	Size        string
	Location    string
	Description string
	ProfileURL  string // company page the data was read from
}
