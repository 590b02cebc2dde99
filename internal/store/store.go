// Package store keeps named, validated term texts in a SQLite database.
// Every text is parsed before it is written, so the store only ever holds
// closed terms in canonical form.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/funvibe/ljson/internal/parser"
	"github.com/funvibe/ljson/internal/term"
)

// ErrNotFound is returned when no term matches a name or id.
var ErrNotFound = errors.New("term not found")

const schema = `
CREATE TABLE IF NOT EXISTS terms (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	text       TEXT NOT NULL,
	arity      INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Entry is one stored term.
type Entry struct {
	ID        string
	Name      string
	Text      string
	Arity     int // parameter count, or -1 when the term is not a lambda
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Term parses the stored text.
func (e Entry) Term() (term.Term, error) {
	return parser.Parse(e.Text)
}

type Store struct {
	db *sql.DB
	// ParseOptions validate texts passed to Put.
	ParseOptions parser.Options
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing store %s: %w", path, err)
	}
	return &Store{db: db, ParseOptions: parser.DefaultOptions()}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Put validates text and stores its canonical form under name, replacing
// any previous text. The entry keeps its id across replacements.
func (s *Store) Put(ctx context.Context, name, text string) (Entry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Entry{}, errors.New("term name must not be empty")
	}
	if _, err := uuid.Parse(name); err == nil {
		return Entry{}, fmt.Errorf("term name %s must not be a uuid", name)
	}
	t, err := parser.ParseWith(text, s.ParseOptions)
	if err != nil {
		return Entry{}, fmt.Errorf("storing %s: %w", name, err)
	}

	arity := -1
	if lam, ok := t.(*term.Lambda); ok {
		arity = len(lam.Params)
	}
	now := time.Now().UnixMilli()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO terms (id, name, text, arity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			text = excluded.text,
			arity = excluded.arity,
			updated_at = excluded.updated_at`,
		uuid.New().String(), name, t.String(), arity, now, now)
	if err != nil {
		return Entry{}, fmt.Errorf("storing %s: %w", name, err)
	}
	return s.Get(ctx, name)
}

// Get finds a term by id or name. An id match wins.
func (s *Store) Get(ctx context.Context, key string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, text, arity, created_at, updated_at
		FROM terms WHERE id = ? OR name = ?
		ORDER BY id = ? DESC LIMIT 1`, key, key, key)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("reading %s: %w", key, err)
	}
	return e, nil
}

// List returns every entry ordered by name.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, text, arity, created_at, updated_at
		FROM terms ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes the one term Get would return for key.
func (s *Store) Delete(ctx context.Context, key string) error {
	e, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM terms WHERE id = ?`, e.ID)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (Entry, error) {
	var e Entry
	var created, updated int64
	if err := row.Scan(&e.ID, &e.Name, &e.Text, &e.Arity, &created, &updated); err != nil {
		return Entry{}, err
	}
	e.CreatedAt = time.UnixMilli(created)
	e.UpdatedAt = time.UnixMilli(updated)
	return e, nil
}
