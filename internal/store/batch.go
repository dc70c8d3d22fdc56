package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Tx is a batch in progress. Every write goes through the surrounding
// transaction; Guard scopes a record's writes to a savepoint.
type Tx struct {
	ops
	tx *sql.Tx
}

// InBatch runs fn inside one transaction and commits whatever fn leaves
// behind. Records that failed under Guard were already rolled back to
// their savepoint, so the commit carries only the successful subset.
func (s *Store) InBatch(ctx context.Context, fn func(Sink) error) error {
	tx, err := s.Pool.BeginTx(ctx, nil)
	if err != nil {
		return persistErr("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&Tx{ops: ops{q: tx, now: s.now}, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return persistErr("commit", err)
	}
	return nil
}

func (t *Tx) Guard(ctx context.Context, fn func() error) error {
	if _, err := t.tx.ExecContext(ctx, `SAVEPOINT record;`); err != nil {
		return persistErr("savepoint", err)
	}
	if ferr := fn(); ferr != nil {
		if _, err := t.tx.ExecContext(ctx, `ROLLBACK TO record;`); err != nil {
			return persistErr("savepoint", fmt.Errorf("rollback after %v: %w", ferr, err))
		}
		_, _ = t.tx.ExecContext(ctx, `RELEASE record;`)
		return ferr
	}
	if _, err := t.tx.ExecContext(ctx, `RELEASE record;`); err != nil {
		return persistErr("savepoint", err)
	}
	return nil
}
