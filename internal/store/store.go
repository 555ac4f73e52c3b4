// Package store keeps the cogs' configuration as JSON documents in SQLite,
// addressed by a scope (global, guild, member, user) and a key.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a scope has no value for a key
var ErrNotFound = errors.New("not found")

const Global = "global"

func Guild(guildID string) string {
	return "guild:" + guildID
}

func Member(guildID string, userID string) string {
	return "member:" + guildID + ":" + userID
}

func User(userID string) string {
	return "user:" + userID
}

type Store struct {
	db *sql.DB
	// Serialises read-modify-write cycles issued through Update
	mu sync.Mutex
}

// Open creates the database file if needed and applies the schema
func Open(path string) (*Store, error) {

	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	log.Debug().Msg(fmt.Sprintf("Opened store at %s", path))
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		scope      TEXT    NOT NULL,
		key        TEXT    NOT NULL,
		value      TEXT    NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (scope, key)
	)`)
	return err
}

// Get decodes the value stored under scope/key into dst.
// ErrNotFound is returned if there is nothing stored
func (s *Store) Get(ctx context.Context, scope string, key string, dst any) error {

	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE scope = ? AND key = ?`, scope, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s/%s: %w", scope, key, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode %s/%s: %w", scope, key, err)
	}
	return nil
}

func (s *Store) Set(ctx context.Context, scope string, key string, value any) error {

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", scope, key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kv (scope, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (scope, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		scope, key, string(data), time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", scope, key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, scope string, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE scope = ? AND key = ?`, scope, key); err != nil {
		return fmt.Errorf("delete %s/%s: %w", scope, key, err)
	}
	return nil
}

// Scopes lists the scopes starting with prefix that hold a value for key
func (s *Store) Scopes(ctx context.Context, prefix string, key string) ([]string, error) {

	rows, err := s.db.QueryContext(ctx, `SELECT scope FROM kv WHERE key = ? AND scope LIKE ? ORDER BY scope`, key, prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("list scopes for %s: %w", key, err)
	}
	defer rows.Close()

	scopes := []string{}
	for rows.Next() {
		var scope string
		if err := rows.Scan(&scope); err != nil {
			return nil, err
		}
		scopes = append(scopes, scope)
	}
	return scopes, rows.Err()
}

// Update loads the value under scope/key (the zero value when absent),
// lets fn modify it and writes it back. Nothing is written if fn fails
func Update[T any](ctx context.Context, s *Store, scope string, key string, fn func(value *T) error) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	var value T
	if err := s.Get(ctx, scope, key, &value); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if err := fn(&value); err != nil {
		return err
	}
	return s.Set(ctx, scope, key, value)
}

// Load returns the value under scope/key, or the zero value when absent
func Load[T any](ctx context.Context, s *Store, scope string, key string) (T, error) {
	var value T
	if err := s.Get(ctx, scope, key, &value); err != nil && !errors.Is(err, ErrNotFound) {
		return value, err
	}
	return value, nil
}
