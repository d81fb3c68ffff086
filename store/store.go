// Package store caches built programs in a SQLite database, keyed by source
// path and addressable by content hash.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/quill/ast"
	"github.com/chazu/quill/hash"
)

// ErrNotFound indicates the requested program is not in the store.
var ErrNotFound = errors.New("program not found")

var log = commonlog.GetLogger("quill.store")

// Record is one stored program.
type Record struct {
	ID          string
	Path        string
	ContentHash string
	Encoded     []byte
	Assignments int
	BuiltAt     time.Time
}

// Program decodes the stored encoding. The result carries no spans.
func (r *Record) Program() (*ast.Program, error) {
	return hash.Decode(r.Encoded)
}

// Store is a SQLite-backed program cache. It is safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// Open opens (creating if needed) the store at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS programs (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL UNIQUE,
		content_hash TEXT NOT NULL,
		encoded BLOB NOT NULL,
		assignments INTEGER NOT NULL,
		built_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS programs_content_hash ON programs(content_hash)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating index: %w", err)
	}

	log.Debugf("opened program store %s", path)
	return &Store{db: db, path: path, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Put stores prog under path, replacing any previous entry for that path.
// The entry keeps its ID across updates.
func (s *Store) Put(ctx context.Context, path string, prog *ast.Program) (*Record, error) {
	encoded, err := hash.Encode(prog)
	if err != nil {
		return nil, err
	}
	sum, err := hash.SumHex(prog)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := &Record{
		ID:          uuid.New().String(),
		Path:        path,
		ContentHash: sum,
		Encoded:     encoded,
		Assignments: len(prog.Assignments),
		BuiltAt:     s.now().UTC(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO programs (id, path, content_hash, encoded, assignments, built_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			content_hash = excluded.content_hash,
			encoded = excluded.encoded,
			assignments = excluded.assignments,
			built_at = excluded.built_at`,
		rec.ID, rec.Path, rec.ContentHash, rec.Encoded, rec.Assignments, rec.BuiltAt)
	if err != nil {
		return nil, fmt.Errorf("storing %s: %w", path, err)
	}

	// An update keeps the original row ID.
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM programs WHERE path = ?`, path).Scan(&rec.ID); err != nil {
		return nil, fmt.Errorf("reading back %s: %w", path, err)
	}

	log.Debugf("stored %s (%s)", path, sum[:12])
	return rec, nil
}

const selectColumns = `SELECT id, path, content_hash, encoded, assignments, built_at FROM programs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var rec Record
	if err := row.Scan(&rec.ID, &rec.Path, &rec.ContentHash, &rec.Encoded, &rec.Assignments, &rec.BuiltAt); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Get returns the entry stored for path.
func (s *Store) Get(ctx context.Context, path string) (*Record, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx, selectColumns+` WHERE path = ?`, path))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return rec, nil
}

// FindByHash returns every entry whose content hash is sum, ordered by path.
// It returns ErrNotFound when there are none.
func (s *Store) FindByHash(ctx context.Context, sum string) ([]*Record, error) {
	recs, err := s.query(ctx, selectColumns+` WHERE content_hash = ? ORDER BY path`, sum)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("hash %s: %w", sum, ErrNotFound)
	}
	return recs, nil
}

// List returns every entry ordered by path.
func (s *Store) List(ctx context.Context) ([]*Record, error) {
	return s.query(ctx, selectColumns+` ORDER BY path`)
}

// Delete removes the entry for path.
func (s *Store) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM programs WHERE path = ?`, path)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s: %w", path, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return nil
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying programs: %w", err)
	}
	defer rows.Close()

	var recs []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning program: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
