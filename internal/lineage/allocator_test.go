// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package lineage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifefork/lifefork/internal/world"
)

func TestAllocator_Sequential(t *testing.T) {
	a := New()

	assert.Equal(t, int64(0), a.NextID())
	assert.Equal(t, int64(1), a.NextID())
	assert.Equal(t, "Alice", a.NextName())
	assert.Equal(t, "Bob", a.NextName())

	id, name := a.Next()
	assert.Equal(t, int64(2), id)
	assert.Equal(t, "Charlie", name)
	assert.Equal(t, int64(3), a.Issued())
}

func TestAllocator_FallbackNames(t *testing.T) {
	a := NewWithNames([]string{"Ann", "Ben"})

	got := []string{a.NextName(), a.NextName(), a.NextName(), a.NextName()}
	assert.Equal(t, []string{"Ann", "Ben", "World_1", "World_2"}, got)
}

func TestAllocator_CuratedNamesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, n := range CuratedNames {
		assert.False(t, seen[n], "duplicate curated name %s", n)
		seen[n] = true
	}
}

func TestAllocator_Reserve(t *testing.T) {
	a := NewWithNames([]string{"Ann", "Ben"})
	a.Reserve("Ann")
	a.Reserve("World_1")

	assert.Equal(t, "Ben", a.NextName())
	assert.Equal(t, "World_2", a.NextName())
}

func TestAllocator_EnsureAtLeastNeverMovesBack(t *testing.T) {
	a := New()
	a.EnsureAtLeast(10)
	assert.Equal(t, int64(10), a.NextID())

	a.EnsureAtLeast(3)
	assert.Equal(t, int64(11), a.NextID())
}

func TestAllocator_Seed(t *testing.T) {
	a := New()
	a.Seed([]world.State{
		{ID: 4, Name: "Alice"},
		{ID: 9, Name: "Charlie"},
		{ID: 2, Name: "Bob"},
	})

	assert.Equal(t, int64(10), a.NextID())
	assert.Equal(t, "Diana", a.NextName())
}

func TestAllocator_ConcurrentUseNeverRepeats(t *testing.T) {
	a := NewWithNames([]string{"Ann"})

	const n = 200
	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		ids   = make(map[int64]bool)
		names = make(map[string]bool)
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, name := a.Next()
			mu.Lock()
			defer mu.Unlock()
			ids[id] = true
			names[name] = true
		}()
	}
	wg.Wait()

	require.Len(t, ids, n)
	assert.Len(t, names, n)
}
