package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "openings.json"))
}

func TestFileStore_EmptyHistory(t *testing.T) {
	store := newTestStore(t)

	openings, err := store.Recent(context.Background(), RecallDepth)
	require.NoError(t, err)
	assert.Empty(t, openings)
}

func TestFileStore_AppendAndRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "first opening"))
	require.NoError(t, store.Append(ctx, "second opening"))

	openings, err := store.Recent(ctx, RecallDepth)
	require.NoError(t, err)
	assert.Equal(t, []string{"first opening", "second opening"}, openings)
}

func TestFileStore_CapsAtTwenty(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 25; i++ {
		require.NoError(t, store.Append(ctx, fmt.Sprintf("opening %d", i)))
	}

	openings, err := store.Recent(ctx, MaxOpenings+10)
	require.NoError(t, err)
	require.Len(t, openings, MaxOpenings)
	// Oldest five evicted, remainder in insertion order.
	assert.Equal(t, "opening 6", openings[0])
	assert.Equal(t, "opening 25", openings[len(openings)-1])
}

func TestFileStore_RecentLimitsToN(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 8; i++ {
		require.NoError(t, store.Append(ctx, fmt.Sprintf("opening %d", i)))
	}

	openings, err := store.Recent(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"opening 4", "opening 5", "opening 6", "opening 7", "opening 8"}, openings)
}

func TestFileStore_ClipsTo300Chars(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	long := strings.Repeat("a", 400) + "   "
	require.NoError(t, store.Append(ctx, long))

	openings, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, openings, 1)
	assert.Len(t, openings[0], OpeningLength)
}

func TestFileStore_CorruptFileTreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	store := NewFileStore(path)

	openings, err := store.Recent(context.Background(), RecallDepth)
	require.NoError(t, err)
	assert.Empty(t, openings)

	require.NoError(t, store.Append(context.Background(), "fresh start"))
	openings, err = store.Recent(context.Background(), RecallDepth)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh start"}, openings)
}

func TestFileStore_ConcurrentAppends(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Append(ctx, fmt.Sprintf("concurrent %d", i)))
		}(i)
	}
	wg.Wait()

	openings, err := store.Recent(ctx, MaxOpenings)
	require.NoError(t, err)
	assert.Len(t, openings, 10)
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short text", Clip("short text  "))
	assert.Len(t, Clip(strings.Repeat("x", 500)), OpeningLength)
}

func TestClip_MultiByteRuneBoundary(t *testing.T) {
	clipped := Clip(strings.Repeat("é", OpeningLength+50))
	assert.True(t, utf8.ValidString(clipped))
	assert.Equal(t, OpeningLength, utf8.RuneCountInString(clipped))
}

func TestPreamble(t *testing.T) {
	assert.Empty(t, Preamble(nil))

	out := Preamble([]string{"one", "two"})
	assert.Contains(t, out, "one\n---\ntwo")
	assert.Contains(t, out, "completely different opening")
}
