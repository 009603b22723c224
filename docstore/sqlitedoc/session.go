package sqlitedoc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jonwraymond/viewcache/docstore"
)

type queries struct {
	put, get, findByType, del, delAll, all, countByType string
}

func newQueries(table string) queries {
	return queries{
		put: fmt.Sprintf(`INSERT INTO %s (fingerprint_id, type_fingerprint, payload) VALUES (?, ?, ?)
			ON CONFLICT(fingerprint_id) DO UPDATE SET type_fingerprint = excluded.type_fingerprint, payload = excluded.payload`, table),
		get:         fmt.Sprintf(`SELECT fingerprint_id, type_fingerprint, payload FROM %s WHERE fingerprint_id = ?`, table),
		findByType:  fmt.Sprintf(`SELECT fingerprint_id, type_fingerprint, payload FROM %s WHERE type_fingerprint = ? ORDER BY fingerprint_id`, table),
		del:         fmt.Sprintf(`DELETE FROM %s WHERE fingerprint_id = ?`, table),
		delAll:      fmt.Sprintf(`DELETE FROM %s`, table),
		all:         fmt.Sprintf(`SELECT fingerprint_id, type_fingerprint, payload FROM %s ORDER BY fingerprint_id`, table),
		countByType: fmt.Sprintf(`SELECT type_fingerprint, COUNT(*) FROM %s GROUP BY type_fingerprint`, table),
	}
}

type session struct {
	id    string
	conn  *sql.Conn
	q     queries
	store *Store
}

func (s *session) ID() string { return s.id }

func (s *session) live() error {
	if s.conn == nil {
		return docstore.ErrSessionClosed
	}
	return nil
}

func (s *session) Put(ctx context.Context, r docstore.Record) error {
	if err := s.live(); err != nil {
		return err
	}
	if _, err := s.conn.ExecContext(ctx, s.q.put, r.ID, r.TypeFingerprint, r.Payload); err != nil {
		return fmt.Errorf("sqlitedoc: put %d: %w", r.ID, err)
	}
	return nil
}

func (s *session) Get(ctx context.Context, id int64) (docstore.Record, bool, error) {
	if err := s.live(); err != nil {
		return docstore.Record{}, false, err
	}
	var r docstore.Record
	err := s.conn.QueryRowContext(ctx, s.q.get, id).Scan(&r.ID, &r.TypeFingerprint, &r.Payload)
	if errors.Is(err, sql.ErrNoRows) {
		return docstore.Record{}, false, nil
	}
	if err != nil {
		return docstore.Record{}, false, fmt.Errorf("sqlitedoc: get %d: %w", id, err)
	}
	return r, true, nil
}

func (s *session) FindByType(ctx context.Context, tf int32) ([]docstore.Record, error) {
	return s.query(ctx, s.q.findByType, tf)
}

func (s *session) All(ctx context.Context) ([]docstore.Record, error) {
	return s.query(ctx, s.q.all)
}

func (s *session) query(ctx context.Context, q string, args ...any) ([]docstore.Record, error) {
	if err := s.live(); err != nil {
		return nil, err
	}
	rows, err := s.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlitedoc: query: %w", err)
	}
	defer rows.Close()

	var out []docstore.Record
	for rows.Next() {
		var r docstore.Record
		if err := rows.Scan(&r.ID, &r.TypeFingerprint, &r.Payload); err != nil {
			return nil, fmt.Errorf("sqlitedoc: scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *session) Delete(ctx context.Context, id int64) (bool, error) {
	if err := s.live(); err != nil {
		return false, err
	}
	res, err := s.conn.ExecContext(ctx, s.q.del, id)
	if err != nil {
		return false, fmt.Errorf("sqlitedoc: delete %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *session) DeleteAll(ctx context.Context) (int64, error) {
	if err := s.live(); err != nil {
		return 0, err
	}
	res, err := s.conn.ExecContext(ctx, s.q.delAll)
	if err != nil {
		return 0, fmt.Errorf("sqlitedoc: delete all: %w", err)
	}
	return res.RowsAffected()
}

func (s *session) CountByType(ctx context.Context) (map[int32]int64, error) {
	if err := s.live(); err != nil {
		return nil, err
	}
	rows, err := s.conn.QueryContext(ctx, s.q.countByType)
	if err != nil {
		return nil, fmt.Errorf("sqlitedoc: count: %w", err)
	}
	defer rows.Close()

	counts := make(map[int32]int64)
	for rows.Next() {
		var (
			tf int32
			n  int64
		)
		if err := rows.Scan(&tf, &n); err != nil {
			return nil, fmt.Errorf("sqlitedoc: scan: %w", err)
		}
		counts[tf] = n
	}
	return counts, rows.Err()
}

func (s *session) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.store.open.Add(-1)
	return err
}
