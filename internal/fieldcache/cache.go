// Package fieldcache persists form-field values across restarts. Values
// are plain strings keyed by a stable field identifier; any stored string
// is echoed back verbatim, with no expiry and no validation.
package fieldcache

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Store is a SQLite-backed key/value store for field values.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the field store at the given DSN.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open field store: %w", err)
	}
	// In-memory SQLite gives every connection its own database.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate field store: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS fields (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the stored value for a key and whether one exists.
func (s *Store) Get(key string) (string, bool) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM fields WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		log.Printf("WARN: field store read for %q failed: %v", key, err)
		return "", false
	}
	return value, true
}

// Put stores a value for a key, replacing any previous value.
func (s *Store) Put(key, value string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO fields (key, value) VALUES (?, ?)`, key, value)
	return err
}

// Field mirrors a single named value between memory and the store. A nil
// store degrades to memory-only operation; storage errors are logged and
// otherwise ignored.
type Field struct {
	key   string
	value string
	store *Store
}

// NewField binds a field to the store and restores its last stored value,
// if any.
func NewField(store *Store, key string) *Field {
	f := &Field{key: key, store: store}
	if store != nil {
		if v, ok := store.Get(key); ok {
			f.value = v
		}
	}
	return f
}

// Key returns the field's stable identifier.
func (f *Field) Key() string { return f.key }

// Value returns the field's current value.
func (f *Field) Value() string { return f.value }

// Set updates the field and writes the new value through to the store.
func (f *Field) Set(value string) {
	f.value = value
	if f.store == nil {
		return
	}
	if err := f.store.Put(f.key, value); err != nil {
		log.Printf("WARN: field store write for %q failed: %v", f.key, err)
	}
}
