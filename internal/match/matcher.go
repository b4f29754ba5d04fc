package match

import (
	"context"

	"go.uber.org/zap"

	"github.com/loanscope/bankmatch/internal/normalize"
	"github.com/loanscope/bankmatch/pkg/fdic"
)

// Input is one normalized lender ready for registry lookup.
type Input struct {
	Original    string
	CoreName    string
	Predecessor string
}

// Result carries the ranked matches for one lender.
type Result struct {
	Original string
	RawCount int
	Matches  []Scored
}

// Matcher resolves lender names against the institution registry using a
// three-stage cascade: a strict query on the core name, a loosened query on
// the core name, then a strict query on the predecessor name. The first
// stage that produces a qualified candidate wins.
type Matcher struct {
	search fdic.Searcher
	cfg    Config
}

func NewMatcher(search fdic.Searcher, cfg Config) *Matcher {
	return &Matcher{search: search, cfg: cfg}
}

// Resolve runs the cascade for one lender. A registry error on one stage is
// logged and treated as a miss for that stage; the cascade continues.
func (m *Matcher) Resolve(ctx context.Context, in Input) (Result, error) {
	res := Result{Original: in.Original}

	target := in.CoreName
	if target == "" {
		target = in.Original
	}

	strict := normalize.BuildQuery(target)
	if matched := m.stage(ctx, &res, strict, target); matched {
		return res, ctx.Err()
	}

	loose := normalize.BuildLooseQuery(target)
	if loose != "" && loose != strict {
		if matched := m.stage(ctx, &res, loose, target); matched {
			return res, ctx.Err()
		}
	}

	if in.Predecessor != "" {
		pred := normalize.BuildQuery(in.Predecessor)
		if matched := m.stage(ctx, &res, pred, in.Predecessor); matched {
			return res, ctx.Err()
		}
	}

	return res, ctx.Err()
}

func (m *Matcher) stage(ctx context.Context, res *Result, query, scoreAgainst string) bool {
	if query == "" {
		return false
	}
	cands, err := m.search.Search(ctx, query)
	if err != nil {
		zap.L().Warn("match: registry search failed",
			zap.String("lender", res.Original),
			zap.String("query", query),
			zap.Error(err))
		return false
	}
	res.RawCount += len(cands)
	if len(cands) == 0 {
		return false
	}
	top := SelectTop(scoreAgainst, cands, m.cfg)
	if len(top) == 0 {
		return false
	}
	res.Matches = top
	return true
}
