package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, dir
}

func testChunk(id, docID string, kind domain.ChunkKind, ts time.Time) domain.MemoryChunk {
	return domain.MemoryChunk{
		ID:         id,
		DocumentID: docID,
		Kind:       kind,
		Position:   0,
		Text:       "Cats are mammals. Cats purr.",
		Embedding:  []float32{0.25, -0.5, 1},
		Metadata: domain.ChunkMetadata{
			Preview:   "Cats are mammals. Cats purr.",
			Timestamp: ts,
			Summary:   "About cats.",
			Facts:     []string{"Cats are mammals"},
			Questions: []domain.Question{{Type: domain.QuestionFactual, Text: "Do cats purr?"}},
			DocLength: 28,
		},
	}
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	store, dir := setupTestStore(t)

	assert.Equal(t, filepath.Join(dir, dbFile), store.Path())
	_, err := os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_MigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	var versions int
	require.NoError(t, second.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 1, versions)
}

func TestStore_AppendAndLoadAll_RoundTrip(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	_, err := store.EnsureCollection(ctx, domain.DefaultCollection, 3)
	require.NoError(t, err)

	ts := time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)
	in := []domain.MemoryChunk{
		testChunk("c1", "d1", domain.ChunkKindContent, ts),
		testChunk("d1_summary", "d1", domain.ChunkKindSummary, ts),
	}
	require.NoError(t, store.Append(ctx, domain.DefaultCollection, in))

	out, err := store.LoadAll(ctx, domain.DefaultCollection)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "c1", out[0].ID)
	assert.Equal(t, "d1_summary", out[1].ID)
	assert.Equal(t, domain.ChunkKindSummary, out[1].Kind)
	assert.Equal(t, []float32{0.25, -0.5, 1}, out[0].Embedding)
	assert.True(t, ts.Equal(out[0].Metadata.Timestamp))
	assert.Equal(t, "About cats.", out[0].Metadata.Summary)
	assert.Equal(t, []string{"Cats are mammals"}, out[0].Metadata.Facts)
	assert.Equal(t, domain.QuestionFactual, out[0].Metadata.Questions[0].Type)
}

func TestStore_Append_IsAtomic(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	_, err := store.EnsureCollection(ctx, "docs", 3)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, "docs", []domain.MemoryChunk{testChunk("dup", "d1", domain.ChunkKindContent, time.Now())}))

	// The second chunk collides on id, so neither row of the batch is kept.
	err = store.Append(ctx, "docs", []domain.MemoryChunk{
		testChunk("fresh", "d2", domain.ChunkKindContent, time.Now()),
		testChunk("dup", "d2", domain.ChunkKindContent, time.Now()),
	})
	require.Error(t, err)

	out, err := store.LoadAll(ctx, "docs")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "dup", out[0].ID)
}

func TestStore_EnsureCollection_Dimensions(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	dims, err := store.EnsureCollection(ctx, "docs", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, dims)

	require.NoError(t, store.Append(ctx, "docs", []domain.MemoryChunk{testChunk("c1", "d1", domain.ChunkKindContent, time.Now())}))

	dims, err = store.EnsureCollection(ctx, "docs", 768)
	require.NoError(t, err)
	assert.Equal(t, 3, dims, "populated collection keeps its dimensions")

	require.NoError(t, store.Clear(ctx, "docs"))
	dims, err = store.EnsureCollection(ctx, "docs", 768)
	require.NoError(t, err)
	assert.Equal(t, 768, dims, "empty collection adopts new dimensions")
}

func TestStore_Clear_ScopedToCollection(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b"} {
		_, err := store.EnsureCollection(ctx, name, 3)
		require.NoError(t, err)
		require.NoError(t, store.Append(ctx, name, []domain.MemoryChunk{testChunk("c-"+name, "d", domain.ChunkKindContent, time.Now())}))
	}

	require.NoError(t, store.Clear(ctx, "a"))

	a, err := store.LoadAll(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, a)

	b, err := store.LoadAll(ctx, "b")
	require.NoError(t, err)
	assert.Len(t, b, 1)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	_, err = store.EnsureCollection(ctx, "docs", 3)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, "docs", []domain.MemoryChunk{testChunk("c1", "d1", domain.ChunkKindContent, time.Now())}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	out, err := reopened.LoadAll(ctx, "docs")
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestFloat32Conversion(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3.4028235e38}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
