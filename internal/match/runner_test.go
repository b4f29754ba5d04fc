package match

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loanscope/bankmatch/internal/checkpoint"
	"github.com/loanscope/bankmatch/pkg/fdic"
)

func TestRunner_WritesMasterMap(t *testing.T) {
	search := &fakeSearcher{responses: map[string][]fdic.Institution{
		`NAME:*ALPHA\ BANK*`: {inst("ALPHA BANK", 1, 101, 100)},
	}}
	path := filepath.Join(t.TempDir(), "map.csv")
	store, err := checkpoint.Open(path, Header, KeyColumn, 1)
	require.NoError(t, err)

	r := NewRunner(NewMatcher(search, DefaultConfig()), 2)
	stats, err := r.Run(context.Background(), []Input{
		{Original: "Alpha Bank", CoreName: "Alpha Bank"},
		{Original: "No Such Lender Anywhere", CoreName: "Zyzzyva Qwerty Trust"},
	}, store)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Processed)
	assert.Equal(t, int64(1), stats.Found)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
}

func TestRunner_ResumeSkipsMatchedLenders(t *testing.T) {
	search := &fakeSearcher{}
	path := filepath.Join(t.TempDir(), "map.csv")

	store, err := checkpoint.Open(path, Header, KeyColumn, 1)
	require.NoError(t, err)
	require.NoError(t, store.Append(Row(Result{Original: "Alpha Bank"})))
	require.NoError(t, store.Close())

	store2, err := checkpoint.Open(path, Header, KeyColumn, 1)
	require.NoError(t, err)

	r := NewRunner(NewMatcher(search, DefaultConfig()), 2)
	stats, err := r.Run(context.Background(), []Input{{Original: "Alpha Bank"}}, store2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Skipped)
	assert.Empty(t, search.queries)
}
