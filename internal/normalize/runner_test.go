package normalize

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loanscope/bankmatch/internal/checkpoint"
)

type scriptedNormalizer struct {
	batches int
}

func (s *scriptedNormalizer) NormalizeBatch(_ context.Context, names []string) ([]Lender, error) {
	s.batches++
	lenders := make([]Lender, len(names))
	for i, n := range names {
		lenders[i] = Lender{Original: n, LegalName: n, CoreName: n, Status: StatusActive}
	}
	return lenders, nil
}

func TestRunner_WritesDerivedQueries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.csv")
	store, err := checkpoint.Open(path, Header, KeyColumn, 1)
	require.NoError(t, err)

	r := NewRunner(&scriptedNormalizer{}, 10, 1)
	stats, err := r.Run(context.Background(), []string{"Alpha Bank"}, store)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Processed)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "Alpha Bank", rows[1][0])
	assert.Equal(t, `NAME:*ALPHA\ BANK*`, rows[1][5])
	assert.Equal(t, "", rows[1][6])
}

func TestRunner_ResumeSkipsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.csv")
	store, err := checkpoint.Open(path, Header, KeyColumn, 1)
	require.NoError(t, err)
	require.NoError(t, store.Append(Row(Lender{Original: "Alpha Bank", Status: StatusActive})))
	require.NoError(t, store.Close())

	store2, err := checkpoint.Open(path, Header, KeyColumn, 1)
	require.NoError(t, err)

	n := &scriptedNormalizer{}
	r := NewRunner(n, 10, 1)
	stats, err := r.Run(context.Background(), []string{"Alpha Bank", "Beta Savings"}, store2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Skipped)
	assert.Equal(t, int64(1), stats.Processed)
	assert.Equal(t, 1, n.batches)
}
