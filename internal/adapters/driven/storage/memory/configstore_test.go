package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("llm.groq.model", "llama-3.1-8b-instant"))
	require.NoError(t, store.Set("llm.groq.model", "llama-3.3-70b"))

	val, ok := store.Get("llm.groq.model")
	assert.True(t, ok)
	assert.Equal(t, "llama-3.3-70b", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("s", "text")
	_ = store.Set("i", 42)
	_ = store.Set("i64", int64(7))
	_ = store.Set("f", 2.5)
	_ = store.Set("b", true)

	assert.Equal(t, "text", store.GetString("s"))
	assert.Empty(t, store.GetString("i"))

	assert.Equal(t, 42, store.GetInt("i"))
	assert.Equal(t, 7, store.GetInt("i64"))
	assert.Equal(t, 2, store.GetInt("f"))
	assert.Zero(t, store.GetInt("s"))

	assert.InDelta(t, 2.5, store.GetFloat("f"), 1e-9)
	assert.InDelta(t, 42.0, store.GetFloat("i"), 1e-9)
	assert.Zero(t, store.GetFloat("b"))

	assert.True(t, store.GetBool("b"))
	assert.False(t, store.GetBool("s"))
	assert.False(t, store.GetBool("missing"))
}

func TestConfigStore_KeysSorted(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("memory.top_k", 5)
	_ = store.Set("embedding.provider", "hashing")
	_ = store.Set("llm.default_provider", "groq")

	assert.Equal(t, []string{"embedding.provider", "llm.default_provider", "memory.top_k"}, store.Keys())
}

func TestConfigStore_LoadAndPath(t *testing.T) {
	store := NewConfigStore()
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set(fmt.Sprintf("key.%d", n), n)
		}(i)
		go func(n int) {
			defer wg.Done()
			_ = store.GetInt(fmt.Sprintf("key.%d", n))
			_ = store.Keys()
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Keys(), 50)
}
