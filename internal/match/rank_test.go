package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loanscope/bankmatch/pkg/fdic"
)

func inst(name string, cert, rssd, assets float64) fdic.Institution {
	return fdic.Institution{
		Name:   name,
		Cert:   fdic.Num{Value: cert, Valid: true},
		RSSD:   fdic.Num{Value: rssd, Valid: true},
		Assets: fdic.Num{Value: assets, Valid: true},
	}
}

func TestSelectTop_QualificationThreshold(t *testing.T) {
	cands := []fdic.Institution{
		inst("BANK OF AMERICA", 1, 101, 100),
		inst("COMPLETELY UNRELATED SAVINGS INSTITUTION", 2, 102, 200),
	}
	top := SelectTop("Bank of America", cands, DefaultConfig())
	require.Len(t, top, 1)
	assert.Equal(t, "101", top[0].Inst.RSSD.ID())
	assert.GreaterOrEqual(t, top[0].Score, 0.6)
}

func TestSelectTop_NoQualifiedCandidates(t *testing.T) {
	cands := []fdic.Institution{
		inst("COMPLETELY UNRELATED SAVINGS INSTITUTION", 2, 102, 200),
	}
	assert.Nil(t, SelectTop("Bank of America", cands, DefaultConfig()))
}

func TestSelectTop_PromotesLargestAssetCandidate(t *testing.T) {
	// A scores higher, B holds the assets and clears the promotion floor.
	cands := []fdic.Institution{
		inst("FIRST COMMERCE BANK", 1, 101, 10),
		inst("FIRST COMMERCE BANK OHIO", 2, 102, 1000),
	}
	top := SelectTop("First Commerce Bank", cands, DefaultConfig())
	require.Len(t, top, 2)
	assert.Equal(t, "2", top[0].Inst.Cert.ID())
	assert.Equal(t, "1", top[1].Inst.Cert.ID())
	// The promoted candidate keeps its own score, it does not inherit rank-1's.
	assert.Less(t, top[0].Score, top[1].Score)
}

func TestSelectTop_NoPromotionBelowFloor(t *testing.T) {
	// The asset giant only clears the qualification bar, not the
	// promotion floor, so the top scorer keeps rank 1.
	cfg := Config{MinScore: 0.3, PromoteScore: 0.75, TopK: 5}
	cands := []fdic.Institution{
		inst("ALPHA BANK", 1, 101, 10),
		inst("ALPHA BANK OF TEXAS", 2, 102, 1000),
	}
	top := SelectTop("Alpha Bank", cands, cfg)
	require.Len(t, top, 2)
	assert.Equal(t, "1", top[0].Inst.Cert.ID())
}

func TestSelectTop_NoPromotionWhenGiantAlreadyTop(t *testing.T) {
	cands := []fdic.Institution{
		inst("ALPHA BANK", 1, 101, 1000),
		inst("ALPHA BANK TEXAS", 2, 102, 10),
	}
	top := SelectTop("Alpha Bank", cands, DefaultConfig())
	require.NotEmpty(t, top)
	assert.Equal(t, "1", top[0].Inst.Cert.ID())
}

func TestSelectTop_TruncatesToTopK(t *testing.T) {
	var cands []fdic.Institution
	for i := 0; i < 8; i++ {
		cands = append(cands, inst("ALPHA BANK", float64(i+1), float64(100+i), float64(i)))
	}
	top := SelectTop("Alpha Bank", cands, DefaultConfig())
	assert.Len(t, top, 5)
}

func TestSelectTop_EmptyInput(t *testing.T) {
	assert.Nil(t, SelectTop("Alpha Bank", nil, DefaultConfig()))
}
