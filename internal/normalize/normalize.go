// Package normalize runs the AI name-cleaning pass: raw lender names in,
// canonical legal names, search cores, predecessors, and lifecycle status
// out, plus the registry query strings derived from them.
package normalize

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/loanscope/bankmatch/pkg/anthropic"
)

const systemPrompt = `Role: Financial Entity Analyst.
Task: Normalize bank names for FDIC database matching based on your internal knowledge.

Input: Raw bank names from syndicated loan data (e.g., "BofA", "WestLB AG [Toronto]", "ABSA Bank [Ex-Amalgamated]").

Your Goal is to generate a structured JSON with specific cleaned fields:

1. **clean_legal_name**: Restore the full legal name based on common financial knowledge.
   - Expand abbreviations (e.g., "BofA" -> "Bank of America").
   - REMOVE location/branch info (e.g., remove "[Toronto]", "New York Branch").

2. **search_core_name** (CRITICAL): Create a version STRICTLY for search algorithms.
   - REMOVE legal suffixes: "Inc", "Corp", "Ltd", "LLC", "N.A.", "AG", "SA", "NV", "BV", "Plc", "Sarl", "SpA".
   - KEEP "Bank" or "Bancorp".
   - REMOVE punctuation & extra spaces.
   - Example: "Bank of America, N.A." -> "Bank of America"

3. **predecessor_name**: If the name contains "[Ex-Name]", extract the former name.

4. **status**: Estimate status ("Active", "Failed", "Acquired") based on your knowledge.

Output: JSON Array ONLY.

Example Output:
[
  {
    "original": "WestLB AG [Toronto]",
    "clean_legal_name": "WestLB AG",
    "search_core_name": "WestLB",
    "predecessor_name": null,
    "status": "Failed"
  }
]`

// Lifecycle statuses the collaborator may assign.
const (
	StatusActive   = "Active"
	StatusFailed   = "Failed"
	StatusAcquired = "Acquired"
	StatusUnknown  = "Unknown"
)

// Lender is one normalized name. Original is the business key.
type Lender struct {
	Original    string `json:"original"`
	LegalName   string `json:"clean_legal_name"`
	CoreName    string `json:"search_core_name"`
	Predecessor string `json:"predecessor_name"`
	Status      string `json:"status"`
}

// Normalizer is the collaborator contract for this stage.
type Normalizer interface {
	NormalizeBatch(ctx context.Context, names []string) ([]Lender, error)
}

// LLMNormalizer dispatches batches to the language model.
type LLMNormalizer struct {
	completer anthropic.Completer
	model     string
}

var _ Normalizer = (*LLMNormalizer)(nil)

// NewLLMNormalizer creates a normalizer using the given model.
func NewLLMNormalizer(completer anthropic.Completer, model string) *LLMNormalizer {
	return &LLMNormalizer{completer: completer, model: model}
}

// NormalizeBatch sends one batch of names. An unparsable response yields an
// empty batch; the checkpoint retries those names on the next run.
func (n *LLMNormalizer) NormalizeBatch(ctx context.Context, names []string) ([]Lender, error) {
	raw, err := n.completer.Complete(ctx, n.model, systemPrompt, "Analyze list:\n"+strings.Join(names, "\n"))
	if err != nil {
		return nil, err
	}

	lenders, err := ParseBatchResponse(raw)
	if err != nil {
		zap.L().Warn("discarding unparsable normalization batch",
			zap.Int("batch_size", len(names)),
			zap.Error(err),
		)
		return nil, nil
	}
	return lenders, nil
}

// ParseBatchResponse decodes a collaborator response. Accepts a bare array
// or an object wrapping the list under "results" or "banks". Records with
// an empty original name are dropped; missing statuses become Unknown.
func ParseBatchResponse(raw string) ([]Lender, error) {
	var lenders []Lender
	if err := anthropic.DecodeJSON(raw, &lenders); err != nil {
		var envelope struct {
			Results []Lender `json:"results"`
			Banks   []Lender `json:"banks"`
		}
		if envErr := anthropic.DecodeJSON(raw, &envelope); envErr != nil {
			return nil, err
		}
		lenders = envelope.Results
		if len(lenders) == 0 {
			lenders = envelope.Banks
		}
		if len(lenders) == 0 {
			return nil, err
		}
	}

	out := lenders[:0]
	for _, l := range lenders {
		l.Original = strings.TrimSpace(l.Original)
		if l.Original == "" {
			continue
		}
		if l.Status == "" {
			l.Status = StatusUnknown
		}
		out = append(out, l)
	}
	return out, nil
}
