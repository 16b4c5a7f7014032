// Package store is the client-local persistence layer: a small sqlite
// key-value file standing in for the browser's localStorage.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // sqlite driver
)

// watchlistKey is the fixed key the serialized watchlist lives under.
const watchlistKey = "stockgpt_watchlist"

// ErrEmptyWatchlist is returned by SaveWatchlist for an empty list. An
// empty list is never persisted, so a cleared in-memory watchlist cannot
// overwrite a previously saved one.
var ErrEmptyWatchlist = errors.New("store: refusing to persist empty watchlist")

// Local is a client-local key-value store.
type Local struct {
	db *sql.DB
}

// Open opens (creating if needed) the store file at path.
func Open(path string) (*Local, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dsn := path + "?_journal=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping store: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Local{db: db}, nil
}

// Close closes the store file.
func (l *Local) Close() error {
	return l.db.Close()
}

// Get returns the value stored under key, or ("", false) when absent.
func (l *Local) Get(key string) (string, bool, error) {
	var value string
	err := l.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (l *Local) Set(key, value string) error {
	_, err := l.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	return nil
}

// LoadWatchlist returns the persisted watchlist, empty when none was ever
// saved.
func (l *Local) LoadWatchlist() ([]WatchlistEntry, error) {
	value, ok, err := l.Get(watchlistKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []WatchlistEntry{}, nil
	}

	var entries []WatchlistEntry
	if err := json.Unmarshal([]byte(value), &entries); err != nil {
		return nil, fmt.Errorf("decode watchlist: %w", err)
	}
	return entries, nil
}

// SaveWatchlist persists a non-empty watchlist under the fixed key. An
// empty list returns ErrEmptyWatchlist and leaves the stored value alone.
func (l *Local) SaveWatchlist(entries []WatchlistEntry) error {
	if len(entries) == 0 {
		return ErrEmptyWatchlist
	}

	value, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode watchlist: %w", err)
	}
	return l.Set(watchlistKey, string(value))
}

// WatchlistEntry is the persisted subset of a stock summary.
type WatchlistEntry struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}
