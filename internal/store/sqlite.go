package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLiteKV keeps per-player key/value slots in the kv table.
// Writes are last-writer-wins.
type SQLiteKV struct{ db *sql.DB }

func NewSQLiteKV(db *sql.DB) *SQLiteKV { return &SQLiteKV{db: db} }

func (s *SQLiteKV) Get(ctx context.Context, owner, key string) ([]byte, bool, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE owner_id=? AND key=?`, owner, key,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (s *SQLiteKV) Put(ctx context.Context, owner, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO kv (owner_id, key, value, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT (owner_id, key) DO UPDATE
            SET value = excluded.value, updated_at = excluded.updated_at`,
		owner, key, value, time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteKV) Delete(ctx context.Context, owner, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE owner_id=? AND key=?`, owner, key)
	return err
}
