package match

import (
	"sort"

	"github.com/loanscope/bankmatch/pkg/fdic"
)

// Config holds scoring thresholds. The promotion values mirror the
// long-standing behavior of the mapping this pipeline replaces; they are
// tunable but the defaults should be preserved for output compatibility.
type Config struct {
	// MinScore is the composite score a candidate needs to qualify.
	MinScore float64
	// PromoteScore is the floor a largest-asset candidate must clear to
	// be promoted to rank 1 over a higher-scoring one.
	PromoteScore float64
	// TopK caps the ranked match list.
	TopK int
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{MinScore: 0.6, PromoteScore: 0.75, TopK: 5}
}

// Scored pairs a registry candidate with its composite score.
type Scored struct {
	Inst   fdic.Institution
	Score  float64
	Assets float64
}

// SelectTop scores candidates against targetName, keeps the qualified
// ones, orders them by score with the flagship-promotion rule applied, and
// truncates to the top K. An empty return means the stage missed.
//
// Flagship promotion: among qualified candidates, the one with the largest
// total assets is moved to rank 1 if it is not already the top scorer and
// its own score clears PromoteScore. Syndicated-loan lender fields usually
// name the flagship institution, not a similarly-named subsidiary.
func SelectTop(targetName string, cands []fdic.Institution, cfg Config) []Scored {
	if len(cands) == 0 {
		return nil
	}

	targetClean := CleanAggressive(targetName)

	var qualified []Scored
	for _, cand := range cands {
		score := composite(targetClean, CleanAggressive(cand.Name))
		if score < cfg.MinScore {
			continue
		}
		qualified = append(qualified, Scored{
			Inst:   cand,
			Score:  score,
			Assets: cand.Assets.Float(),
		})
	}
	if len(qualified) == 0 {
		return nil
	}

	byScore := make([]Scored, len(qualified))
	copy(byScore, qualified)
	sort.SliceStable(byScore, func(i, j int) bool { return byScore[i].Score > byScore[j].Score })

	flagship := qualified[0]
	for _, c := range qualified[1:] {
		if c.Assets > flagship.Assets {
			flagship = c
		}
	}

	ranked := byScore
	if flagship.Inst.Cert.ID() != byScore[0].Inst.Cert.ID() && flagship.Score > cfg.PromoteScore {
		ranked = make([]Scored, 0, len(byScore))
		ranked = append(ranked, flagship)
		for _, c := range byScore {
			if c.Inst.Cert.ID() != flagship.Inst.Cert.ID() {
				ranked = append(ranked, c)
			}
		}
	}

	if cfg.TopK > 0 && len(ranked) > cfg.TopK {
		ranked = ranked[:cfg.TopK]
	}
	return ranked
}
