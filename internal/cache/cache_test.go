// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-summarizer/pkg/types"
)

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "cache.db")
	s, err := Open(types.CacheConfig{Enabled: true, Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func sampleEntry(key string) Entry {
	return Entry{
		Key:    key,
		Model:  "claude-test",
		Source: "arXiv:2301.07041",
		Record: types.SummaryRecord{
			Title:   "Cached Paper",
			Authors: []string{"Ada Lovelace"},
			TLDR:    "Cached.",
			Results: []types.Result{{Metric: "F1", Value: "0.9"}},
		}.Complete(),
		Warnings:  []string{"page 2: no extractable text (image-only or empty page)"},
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestOpenCreatesDBFile(t *testing.T) {
	_, path := testStore(t)
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(types.CacheConfig{Enabled: true})
	assert.Error(t, err)
}

func TestPutGet(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	want := sampleEntry("k1")
	require.NoError(t, s.Put(ctx, want))

	got, ok, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Key, got.Key)
	assert.Equal(t, want.Model, got.Model)
	assert.Equal(t, want.Source, got.Source)
	assert.Equal(t, want.Record, got.Record)
	assert.Equal(t, want.Warnings, got.Warnings)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
}

func TestGetMiss(t *testing.T) {
	s, _ := testStore(t)
	_, ok, err := s.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPutReplaces(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	e := sampleEntry("k1")
	require.NoError(t, s.Put(ctx, e))
	e.Record.TLDR = "Updated."
	e.Warnings = nil
	require.NoError(t, s.Put(ctx, e))

	got, ok, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Updated.", got.Record.TLDR)
	assert.Nil(t, got.Warnings)
}

func TestPutRequiresKey(t *testing.T) {
	s, _ := testStore(t)
	assert.Error(t, s.Put(context.Background(), Entry{}))
}

func TestPutSetsCreatedAt(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	e := sampleEntry("k1")
	e.CreatedAt = time.Time{}
	before := time.Now().Add(-time.Second)
	require.NoError(t, s.Put(ctx, e))

	got, _, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.After(before))
}

func TestListNewestFirst(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, key := range []string{"a", "b", "c"} {
		e := sampleEntry(key)
		e.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, s.Put(ctx, e))
	}

	entries, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "c", entries[0].Key)
	assert.Equal(t, "a", entries[2].Key)

	entries, err = s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestDelete(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, sampleEntry("k1")))
	require.NoError(t, s.Delete(ctx, "k1"))
	require.NoError(t, s.Delete(ctx, "k1"))

	_, ok, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKey(t *testing.T) {
	known := types.KnownMetadata{Title: "T"}
	k := Key("text", "model", known)

	assert.Len(t, k, 64)
	assert.Equal(t, k, Key("text", "model", known))
	assert.NotEqual(t, k, Key("text2", "model", known))
	assert.NotEqual(t, k, Key("text", "model2", known))
	assert.NotEqual(t, k, Key("text", "model", types.KnownMetadata{Title: "U"}))
	assert.NotEqual(t, Key("ab", "c", known), Key("a", "bc", known))
}
