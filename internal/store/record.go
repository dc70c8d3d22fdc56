package store

import (
	"fmt"
	"slices"
	"strconv"
)

// Kind names a table the pipeline writes to.
type Kind string

const (
	Companies   Kind = "companies"
	Leads       Kind = "leads"
	JobPostings Kind = "job_postings"
)

// columns whitelists what callers may filter on or write, which keeps
// caller-supplied names out of the SQL text.
var columns = map[Kind][]string{
	Companies: {"name", "website", "industry", "size", "location", "description", "profile_url"},
	Leads: {"name", "email", "profile_url", "role", "company_id", "location", "affiliations",
		"source", "snippet", "score", "status"},
	JobPostings: {"company_id", "title", "location", "url", "snippet", "commitment", "source",
		"external_id", "status"},
}

// Fields maps column names to values.
type Fields map[string]any

type Record struct {
	ID     int64
	Kind   Kind
	Fields Fields
}

func (r *Record) String(col string) string {
	switch v := r.Fields[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

func (r *Record) Int(col string) int64 {
	switch v := r.Fields[col].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

func checkColumns(kind Kind, f Fields, allowID bool) error {
	allowed, ok := columns[kind]
	if !ok {
		return fmt.Errorf("unknown kind %q", kind)
	}
	for col := range f {
		if allowID && col == "id" {
			continue
		}
		if !slices.Contains(allowed, col) {
			return fmt.Errorf("%s: unknown column %q", kind, col)
		}
	}
	return nil
}

func sortedKeys(f Fields) []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
