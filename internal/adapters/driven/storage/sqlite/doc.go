// Package sqlite provides a SQLite-based implementation of the memory repository.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Chunks are stored with their embedding as little-endian float32 bytes and
// their metadata as JSON.
//
// # Data Location
//
// By default, the database is stored at ~/.docmind/data/memory.db
//
// # Thread Safety
//
// All operations are thread-safe. Appends run in a single transaction so a
// document's chunks become durable together.
package sqlite
