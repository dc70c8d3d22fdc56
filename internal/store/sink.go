package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadhunt-engine/internal/apperr"
)

// Sink is the write surface the pipeline persists through. FindOne returns
// a nil record and nil error when nothing matches.
type Sink interface {
	FindOne(ctx context.Context, kind Kind, filter Fields) (*Record, error)
	Create(ctx context.Context, kind Kind, f Fields) (*Record, error)
	Update(ctx context.Context, kind Kind, id int64, f Fields) (*Record, error)
	// Guard runs fn so that a failure undoes only fn's writes.
	Guard(ctx context.Context, fn func() error) error
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type ops struct {
	q   querier
	now func() time.Time
}

func (s *Store) ops() ops { return ops{q: s.Pool, now: s.now} }

func (s *Store) FindOne(ctx context.Context, kind Kind, filter Fields) (*Record, error) {
	return s.ops().FindOne(ctx, kind, filter)
}

func (s *Store) Create(ctx context.Context, kind Kind, f Fields) (*Record, error) {
	return s.ops().Create(ctx, kind, f)
}

func (s *Store) Update(ctx context.Context, kind Kind, id int64, f Fields) (*Record, error) {
	return s.ops().Update(ctx, kind, id, f)
}

func (o ops) FindOne(ctx context.Context, kind Kind, filter Fields) (*Record, error) {
	if len(filter) == 0 {
		return nil, persistErr("find", fmt.Errorf("%s: empty filter", kind))
	}
	if err := checkColumns(kind, filter, true); err != nil {
		return nil, persistErr("find", err)
	}
	keys := sortedKeys(filter)
	where := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		where[i] = k + " = ?"
		args[i] = encode(filter[k])
	}
	query := fmt.Sprintf(`SELECT * FROM %s WHERE %s ORDER BY id LIMIT 1;`, kind, strings.Join(where, " AND "))
	rec, err := o.queryOne(ctx, kind, query, args...)
	if err != nil {
		return nil, persistErr("find", err)
	}
	return rec, nil
}

func (o ops) Create(ctx context.Context, kind Kind, f Fields) (*Record, error) {
	if err := checkColumns(kind, f, false); err != nil {
		return nil, persistErr("create", err)
	}
	ts := o.now().UTC().Format(time.RFC3339)
	keys := sortedKeys(f)
	cols := append(keys, "created_at", "updated_at")
	args := make([]any, 0, len(cols))
	for _, k := range keys {
		args = append(args, encode(f[k]))
	}
	args = append(args, ts, ts)

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s);`,
		kind, strings.Join(cols, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))
	res, err := o.q.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr("create", fmt.Errorf("insert %s: %w", kind, err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, persistErr("create", err)
	}
	return o.get(ctx, "create", kind, id)
}

func (o ops) Update(ctx context.Context, kind Kind, id int64, f Fields) (*Record, error) {
	if err := checkColumns(kind, f, false); err != nil {
		return nil, persistErr("update", err)
	}
	keys := sortedKeys(f)
	set := make([]string, 0, len(keys)+1)
	args := make([]any, 0, len(keys)+2)
	for _, k := range keys {
		set = append(set, k+" = ?")
		args = append(args, encode(f[k]))
	}
	set = append(set, "updated_at = ?")
	args = append(args, o.now().UTC().Format(time.RFC3339), id)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = ?;`, kind, strings.Join(set, ", "))
	res, err := o.q.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr("update", fmt.Errorf("update %s: %w", kind, err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, persistErr("update", fmt.Errorf("%s id=%d not found", kind, id))
	}
	return o.get(ctx, "update", kind, id)
}

func (o ops) get(ctx context.Context, op string, kind Kind, id int64) (*Record, error) {
	rec, err := o.queryOne(ctx, kind, fmt.Sprintf(`SELECT * FROM %s WHERE id = ?;`, kind), id)
	if err != nil {
		return nil, persistErr(op, err)
	}
	if rec == nil {
		return nil, persistErr(op, fmt.Errorf("%s id=%d vanished", kind, id))
	}
	return rec, nil
}

func (o ops) queryOne(ctx context.Context, kind Kind, query string, args ...any) (*Record, error) {
	rows, err := o.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	rec := &Record{Kind: kind, Fields: make(Fields, len(cols))}
	for i, c := range cols {
		v := vals[i]
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		rec.Fields[c] = v
	}
	rec.ID = rec.Int("id")
	return rec, rows.Err()
}

// encode stores string slices as JSON arrays, the way the affiliations
// column expects them.
func encode(v any) any {
	switch t := v.(type) {
	case []string:
		if t == nil {
			t = []string{}
		}
		b, _ := json.Marshal(t)
		return string(b)
	case *int64:
		if t == nil {
			return nil
		}
		return *t
	default:
		return v
	}
}

func persistErr(op string, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.New(apperr.Persistence, "store", op, err)
}
