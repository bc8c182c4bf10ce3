package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Account is a registered backend user.
type Account struct {
	UID       int
	Name      string
	Pass      string
	CreatedAt time.Time
}

// Session is a server-side login session.
type Session struct {
	SessionID   string
	SessionName string
	UID         int
	CreatedAt   time.Time
}

// File is an uploaded picture, stored base64-encoded as received.
type File struct {
	FID       int64
	Filename  string
	UID       int
	Content   string
	CreatedAt time.Time
}

// Node is a published post. FieldImages and Locations keep the exact
// JSON the client sent.
type Node struct {
	NID         int64
	UID         int
	Name        string
	Title       string
	Body        string
	Type        string
	FieldImages json.RawMessage
	Locations   json.RawMessage
	CreatedAt   time.Time
}

// Store implements the backend's persistence using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens the database at dsn and runs migrations.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			uid INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			pass TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		// uid 0 marks an anonymous session, so no foreign key here.
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			session_name TEXT NOT NULL,
			uid INTEGER NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS files (
			fid INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT NOT NULL,
			uid INTEGER NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS nodes (
			nid INTEGER PRIMARY KEY AUTOINCREMENT,
			uid INTEGER NOT NULL,
			name TEXT NOT NULL,
			title TEXT NOT NULL,
			body TEXT,
			type TEXT NOT NULL,
			field_images TEXT,
			locations TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_uid ON nodes(uid, created_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureAccount creates the account if it does not exist and returns it.
func (s *Store) EnsureAccount(ctx context.Context, name, pass string) (*Account, error) {
	existing, err := s.GetAccountByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (name, pass) VALUES (?, ?)`,
		name, pass)
	if err != nil {
		return nil, err
	}
	uid, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Account{UID: int(uid), Name: name, Pass: pass}, nil
}

// GetAccountByName retrieves an account by login name.
func (s *Store) GetAccountByName(ctx context.Context, name string) (*Account, error) {
	var a Account
	err := s.db.QueryRowContext(ctx,
		`SELECT uid, name, pass, created_at FROM accounts WHERE name = ?`,
		name).Scan(&a.UID, &a.Name, &a.Pass, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAccount retrieves an account by uid.
func (s *Store) GetAccount(ctx context.Context, uid int) (*Account, error) {
	var a Account
	err := s.db.QueryRowContext(ctx,
		`SELECT uid, name, pass, created_at FROM accounts WHERE uid = ?`,
		uid).Scan(&a.UID, &a.Name, &a.Pass, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateSession stores a new login session.
func (s *Store) CreateSession(ctx context.Context, sess *Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, session_name, uid) VALUES (?, ?, ?)`,
		sess.SessionID, sess.SessionName, sess.UID)
	return err
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	var sess Session
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, session_name, uid, created_at FROM sessions WHERE session_id = ?`,
		sessionID).Scan(&sess.SessionID, &sess.SessionName, &sess.UID, &sess.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// DeleteSession removes a session. Deleting a missing session is not an error.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE session_id = ?`, sessionID)
	return err
}

// CreateFile stores an uploaded file and assigns its fid.
func (s *Store) CreateFile(ctx context.Context, file *File) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO files (filename, uid, content) VALUES (?, ?, ?)`,
		file.Filename, file.UID, file.Content)
	if err != nil {
		return err
	}
	file.FID, err = res.LastInsertId()
	return err
}

// GetFile retrieves a file by fid.
func (s *Store) GetFile(ctx context.Context, fid int64) (*File, error) {
	var f File
	err := s.db.QueryRowContext(ctx,
		`SELECT fid, filename, uid, content, created_at FROM files WHERE fid = ?`,
		fid).Scan(&f.FID, &f.Filename, &f.UID, &f.Content, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateNode stores a post and assigns its nid.
func (s *Store) CreateNode(ctx context.Context, node *Node) error {
	images, locations := nullStringBytes(node.FieldImages), nullStringBytes(node.Locations)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO nodes (uid, name, title, body, type, field_images, locations) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		node.UID, node.Name, node.Title, node.Body, node.Type, images, locations)
	if err != nil {
		return err
	}
	node.NID, err = res.LastInsertId()
	return err
}

// GetNode retrieves a node by nid.
func (s *Store) GetNode(ctx context.Context, nid int64) (*Node, error) {
	var n Node
	var images, locations sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT nid, uid, name, title, body, type, field_images, locations, created_at FROM nodes WHERE nid = ?`,
		nid).Scan(&n.NID, &n.UID, &n.Name, &n.Title, &n.Body, &n.Type, &images, &locations, &n.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if images.Valid {
		n.FieldImages = json.RawMessage(images.String)
	}
	if locations.Valid {
		n.Locations = json.RawMessage(locations.String)
	}
	return &n, nil
}

// ListNodes returns posts newest first.
func (s *Store) ListNodes(ctx context.Context, limit int) ([]Node, error) {
	query := `SELECT nid, uid, name, title, body, type, field_images, locations, created_at FROM nodes ORDER BY created_at DESC, nid DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []Node
	for rows.Next() {
		var n Node
		var images, locations sql.NullString
		if err := rows.Scan(&n.NID, &n.UID, &n.Name, &n.Title, &n.Body, &n.Type, &images, &locations, &n.CreatedAt); err != nil {
			return nil, err
		}
		if images.Valid {
			n.FieldImages = json.RawMessage(images.String)
		}
		if locations.Valid {
			n.Locations = json.RawMessage(locations.String)
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func nullStringBytes(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
