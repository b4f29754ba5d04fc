package match

import (
	"context"
	"sync"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loanscope/bankmatch/pkg/fdic"
)

// fakeSearcher replays canned candidate sets per query and records the
// queries it saw. Safe for concurrent workers.
type fakeSearcher struct {
	responses map[string][]fdic.Institution
	errs      map[string]error

	mu      sync.Mutex
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query string) ([]fdic.Institution, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	return f.responses[query], nil
}

func TestResolve_StrictHit(t *testing.T) {
	search := &fakeSearcher{responses: map[string][]fdic.Institution{
		`NAME:*BANK\ OF\ AMERICA*`: {inst("BANK OF AMERICA", 3510, 480228, 2500000)},
	}}
	m := NewMatcher(search, DefaultConfig())

	res, err := m.Resolve(context.Background(), Input{
		Original: "BofA Corp [Ex-NCNB]",
		CoreName: "Bank of America",
	})
	require.NoError(t, err)
	assert.Equal(t, "BofA Corp [Ex-NCNB]", res.Original)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "480228", res.Matches[0].Inst.RSSD.ID())
	assert.GreaterOrEqual(t, res.Matches[0].Score, 0.6)
	assert.Equal(t, []string{`NAME:*BANK\ OF\ AMERICA*`}, search.queries)
}

func TestResolve_FallsBackToLooseQuery(t *testing.T) {
	search := &fakeSearcher{responses: map[string][]fdic.Institution{
		`NAME:*DEXIA\ BANK*`: {inst("DEXIA BANK", 99, 999, 500)},
	}}
	m := NewMatcher(search, DefaultConfig())

	res, err := m.Resolve(context.Background(), Input{
		Original: "Dexia Bank New York Branch",
		CoreName: "Dexia Bank New York Branch",
	})
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, []string{
		`NAME:*DEXIA\ BANK\ NEW\ YORK\ BRANCH*`,
		`NAME:*DEXIA\ BANK*`,
	}, search.queries)
}

func TestResolve_SkipsLooseWhenIdentical(t *testing.T) {
	search := &fakeSearcher{}
	m := NewMatcher(search, DefaultConfig())

	res, err := m.Resolve(context.Background(), Input{
		Original: "Wells Fargo Bank",
		CoreName: "Wells Fargo Bank",
	})
	require.NoError(t, err)
	assert.Empty(t, res.Matches)
	// Strict and loose queries are identical, so only one search fires.
	assert.Equal(t, []string{`NAME:*WELLS\ FARGO\ BANK*`}, search.queries)
}

func TestResolve_PredecessorFallback(t *testing.T) {
	search := &fakeSearcher{responses: map[string][]fdic.Institution{
		`NAME:*NCNB*`: {inst("NCNB", 7, 77, 800)},
	}}
	m := NewMatcher(search, DefaultConfig())

	res, err := m.Resolve(context.Background(), Input{
		Original:    "BofA Corp",
		CoreName:    "Zyzzyva Holdings Trust Co",
		Predecessor: "NCNB",
	})
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "77", res.Matches[0].Inst.RSSD.ID())
}

func TestResolve_SearchErrorDegradesToMiss(t *testing.T) {
	search := &fakeSearcher{errs: map[string]error{
		`NAME:*BANK\ OF\ AMERICA*`: eris.New("registry unavailable"),
	}}
	m := NewMatcher(search, DefaultConfig())

	res, err := m.Resolve(context.Background(), Input{
		Original: "Bank of America",
		CoreName: "Bank of America",
	})
	require.NoError(t, err)
	assert.Empty(t, res.Matches)
}

func TestResolve_UsesOriginalWhenCoreMissing(t *testing.T) {
	search := &fakeSearcher{responses: map[string][]fdic.Institution{
		`NAME:*ALPHA\ TRUST*`: {inst("ALPHA TRUST", 5, 55, 100)},
	}}
	m := NewMatcher(search, DefaultConfig())

	res, err := m.Resolve(context.Background(), Input{Original: "Alpha Trust"})
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
}

func TestResolve_AccumulatesRawCount(t *testing.T) {
	search := &fakeSearcher{responses: map[string][]fdic.Institution{
		`NAME:*DEXIA\ BANK\ NEW\ YORK\ BRANCH*`: {
			inst("TOTALLY DIFFERENT INSTITUTION", 1, 11, 5),
		},
		`NAME:*DEXIA\ BANK*`: {inst("DEXIA BANK", 2, 22, 10)},
	}}
	m := NewMatcher(search, DefaultConfig())

	res, err := m.Resolve(context.Background(), Input{
		Original: "Dexia Bank New York Branch",
		CoreName: "Dexia Bank New York Branch",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.RawCount)
}
