package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docmind/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.MemoryRepository = (*Store)(nil)

// dbFile is the database filename inside the data directory.
const dbFile = "memory.db"

// Store is a SQLite-backed memory repository.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.docmind/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docmind", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)

	// WAL lets readers proceed while a commit is in flight.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// EnsureCollection creates the collection if missing and returns its dimensions.
// An empty collection adopts the requested dimensions.
func (s *Store) EnsureCollection(ctx context.Context, name string, dimensions int) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var stored int
	err = tx.QueryRowContext(ctx, "SELECT dimensions FROM collections WHERE name = ?", name).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx,
			"INSERT INTO collections (name, dimensions, created_at) VALUES (?, ?, ?)",
			name, dimensions, time.Now().UTC().Format(time.RFC3339Nano))
		if err != nil {
			return 0, fmt.Errorf("creating collection: %w", err)
		}
		stored = dimensions
	case err != nil:
		return 0, fmt.Errorf("reading collection: %w", err)
	case stored != dimensions:
		var count int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM memory_chunks WHERE collection = ?", name).Scan(&count); err != nil {
			return 0, fmt.Errorf("counting chunks: %w", err)
		}
		if count == 0 {
			if _, err := tx.ExecContext(ctx,
				"UPDATE collections SET dimensions = ? WHERE name = ?", dimensions, name); err != nil {
				return 0, fmt.Errorf("updating collection: %w", err)
			}
			stored = dimensions
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return stored, nil
}

// Append stores chunks in a single transaction.
func (s *Store) Append(ctx context.Context, collection string, chunks []domain.MemoryChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO memory_chunks (id, collection, document_id, kind, position, text, embedding, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		meta, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata for %s: %w", c.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			c.ID, collection, c.DocumentID, string(c.Kind), c.Position, c.Text,
			float32SliceToBytes(c.Embedding), string(meta),
			c.Metadata.Timestamp.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadAll returns every chunk of the collection in insertion order.
func (s *Store) LoadAll(ctx context.Context, collection string) ([]domain.MemoryChunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, kind, position, text, embedding, metadata
		FROM memory_chunks
		WHERE collection = ?
		ORDER BY seq
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.MemoryChunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// Clear removes every chunk of the collection.
func (s *Store) Clear(ctx context.Context, collection string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM memory_chunks WHERE collection = ?", collection); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

// migrate applies pending up migrations in version order.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_memory.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) applyMigration(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// float32SliceToBytes converts a []float32 to little-endian bytes for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts stored bytes back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

func scanChunk(rows *sql.Rows) (*domain.MemoryChunk, error) {
	var (
		c         domain.MemoryChunk
		kind      string
		embedding []byte
		meta      string
	)
	if err := rows.Scan(&c.ID, &c.DocumentID, &kind, &c.Position, &c.Text, &embedding, &meta); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}
	c.Kind = domain.ChunkKind(kind)
	c.Embedding = bytesToFloat32Slice(embedding)
	if meta != "" {
		if err := json.Unmarshal([]byte(meta), &c.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata for %s: %w", c.ID, err)
		}
	}
	return &c, nil
}
