package store

import (
	"context"
	"fmt"
	"time"
)

// PruneJobPostings deletes postings first stored before cutoff.
func (s *Store) PruneJobPostings(ctx context.Context, cutoff time.Time) (deleted int64, err error) {
	res, err := s.Pool.ExecContext(ctx, `
DELETE FROM job_postings
WHERE created_at < ?;
`, cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, persistErr("prune job postings", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Counts reports rows per kind, for status output.
func (s *Store) Counts(ctx context.Context) (map[Kind]int64, error) {
	out := make(map[Kind]int64, len(columns))
	for _, k := range []Kind{Companies, Leads, JobPostings} {
		var n int64
		if err := s.Pool.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s;`, k)).Scan(&n); err != nil {
			return nil, persistErr("count "+string(k), err)
		}
		out[k] = n
	}
	return out, nil
}
