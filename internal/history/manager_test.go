package history

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yiblet/pix/internal/store/memstore"
)

func newTestManager(t *testing.T, limit int) *Manager {
	t.Helper()
	m := NewManager(memstore.NewMemoryStore().History(), limit)

	// Deterministic, strictly increasing timestamps
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return m
}

func TestNewManager_DefaultLimit(t *testing.T) {
	m := NewManager(memstore.NewMemoryStore().History(), 0)
	assert.Equal(t, DefaultLimit, m.Limit())
}

func TestManager_Record(t *testing.T) {
	m := newTestManager(t, 10)

	rec, err := m.Record("  red\tfox \n")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "red fox", rec.Query)

	queries, err := m.Queries()
	require.NoError(t, err)
	assert.Equal(t, []string{"red fox"}, queries)
}

func TestManager_RecordSkipsBlank(t *testing.T) {
	m := newTestManager(t, 10)

	for _, q := range []string{"", "   ", "\t\n"} {
		rec, err := m.Record(q)
		require.NoError(t, err)
		assert.Nil(t, rec)
	}

	size, err := m.Size()
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestManager_RepeatMovesToTop(t *testing.T) {
	m := newTestManager(t, 10)

	for _, q := range []string{"fox", "owl", "cat", "fox"} {
		_, err := m.Record(q)
		require.NoError(t, err)
	}

	queries, err := m.Queries()
	require.NoError(t, err)
	assert.Equal(t, []string{"fox", "cat", "owl"}, queries)

	top, err := m.Get(0)
	require.NoError(t, err)
	assert.Equal(t, 2, top.Count)
}

func TestManager_TrimsToLimit(t *testing.T) {
	m := newTestManager(t, 3)

	for _, q := range []string{"a", "b", "c", "d", "e"} {
		_, err := m.Record(q)
		require.NoError(t, err)
	}

	queries, err := m.Queries()
	require.NoError(t, err)
	assert.Equal(t, []string{"e", "d", "c"}, queries)

	size, _ := m.Size()
	assert.Equal(t, 3, size)
}

func TestManager_RecordTruncatesLongQueries(t *testing.T) {
	m := newTestManager(t, 10)

	rec, err := m.Record(strings.Repeat("ü", 150))
	require.NoError(t, err)
	assert.Len(t, []rune(rec.Query), MaxQueryLen)
	assert.True(t, strings.HasSuffix(rec.Query, "..."))
}

func TestManager_GetAndDelete(t *testing.T) {
	m := newTestManager(t, 10)
	for _, q := range []string{"fox", "owl"} {
		_, err := m.Record(q)
		require.NoError(t, err)
	}

	_, err := m.Get(5)
	assert.Error(t, err)

	require.NoError(t, m.Delete(0))
	queries, _ := m.Queries()
	assert.Equal(t, []string{"fox"}, queries)

	assert.Error(t, m.Delete(3))
}

func TestManager_ListLimit(t *testing.T) {
	m := newTestManager(t, 10)
	for _, q := range []string{"a", "b", "c"} {
		_, _ = m.Record(q)
	}

	records, err := m.List(2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "c", records[0].Query)

	records, err = m.List(0)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestManager_SearchAndClear(t *testing.T) {
	m := newTestManager(t, 10)
	for _, q := range []string{"red fox", "owl", "arctic fox"} {
		_, _ = m.Record(q)
	}

	found, err := m.Search("FOX", 0)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "arctic fox", found[0].Query)

	require.NoError(t, m.Clear())
	size, _ := m.Size()
	assert.Zero(t, size)
}
