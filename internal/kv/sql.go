package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLStore persists entries in the kv_entries table. It runs on either
// driver the app supports (sqlite, pgx).
type SQLStore struct {
	db *sqlx.DB
	// mu serializes Update inside this process; SQLite allows one writer
	// at a time anyway and Postgres additionally locks the row.
	mu sync.Mutex
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	query := `SELECT entry_value FROM kv_entries WHERE entry_key = $1`

	err := s.db.GetContext(ctx, &value, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %q: %w", key, err)
	}
	return []byte(value), nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	return s.upsert(ctx, s.db, key, value)
}

func (s *SQLStore) Remove(ctx context.Context, key string) error {
	query := `DELETE FROM kv_entries WHERE entry_key = $1`
	_, err := s.db.ExecContext(ctx, query, key)
	if err != nil {
		return fmt.Errorf("failed to remove key %q: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys := []string{}
	query := `SELECT entry_key FROM kv_entries WHERE entry_key LIKE $1 ESCAPE '\' ORDER BY entry_key`

	err := s.db.SelectContext(ctx, &keys, query, escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list keys with prefix %q: %w", prefix, err)
	}
	return keys, nil
}

// Update runs fn inside a transaction. On Postgres the row is locked with
// FOR UPDATE so concurrent servers cannot lose increments.
func (s *SQLStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `SELECT entry_value FROM kv_entries WHERE entry_key = $1`
	if s.db.DriverName() == "pgx" {
		query += ` FOR UPDATE`
	}

	var current string
	found := true
	err = tx.GetContext(ctx, &current, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		found = false
	} else if err != nil {
		return fmt.Errorf("failed to read key %q: %w", key, err)
	}

	var currentBytes []byte
	if found {
		currentBytes = []byte(current)
	}
	next, write, err := fn(currentBytes, found)
	if err != nil {
		return err
	}
	if !write {
		return nil
	}

	err = s.upsert(ctx, tx, key, next)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) upsert(ctx context.Context, exec sqlx.ExecerContext, key string, value []byte) error {
	query := `INSERT INTO kv_entries (entry_key, entry_value, updated_at) VALUES ($1, $2, $3)
	          ON CONFLICT (entry_key) DO UPDATE SET entry_value = excluded.entry_value, updated_at = excluded.updated_at`

	_, err := exec.ExecContext(ctx, query, key, string(value), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set key %q: %w", key, err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
