package runlog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openLog(t *testing.T) *Log {
	t.Helper()
	l, err := Open(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestStartCompleteList(t *testing.T) {
	ctx := context.Background()
	l := openLog(t)

	id, err := l.Start(ctx, "match")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, l.Complete(ctx, id, Counts{Processed: 120, Skipped: 30, Failed: 2}))

	entries, err := l.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, id, e.ID)
	assert.Equal(t, "match", e.Stage)
	assert.Equal(t, "complete", e.Status)
	assert.Equal(t, int64(120), e.Processed)
	assert.Equal(t, int64(30), e.Skipped)
	assert.Equal(t, int64(2), e.Failed)
	require.NotNil(t, e.CompletedAt)
}

func TestFail(t *testing.T) {
	ctx := context.Background()
	l := openLog(t)

	id, err := l.Start(ctx, "merge")
	require.NoError(t, err)
	require.NoError(t, l.Fail(ctx, id, "no call report files"))

	entries, err := l.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "failed", entries[0].Status)
	assert.Equal(t, "no call report files", entries[0].Error)
}

func TestList_Limit(t *testing.T) {
	ctx := context.Background()
	l := openLog(t)

	for range 5 {
		_, err := l.Start(ctx, "classify")
		require.NoError(t, err)
	}
	entries, err := l.List(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestOpen_Reopens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	l, err := Open(ctx, path)
	require.NoError(t, err)
	id, err := l.Start(ctx, "aggregate")
	require.NoError(t, err)
	require.NoError(t, l.Close())

	l2, err := Open(ctx, path)
	require.NoError(t, err)
	defer l2.Close()

	entries, err := l2.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ID)
	assert.Equal(t, "running", entries[0].Status)
}
