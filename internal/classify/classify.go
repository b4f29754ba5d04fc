// Package classify runs the first AI pass: deciding which candidate lender
// names actually denote FDIC-insured banks or bank holding companies.
package classify

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/loanscope/bankmatch/pkg/anthropic"
)

const systemPrompt = `Role: Financial Entity Classifier.
Task: Determine if the provided entity names are likely "FDIC-insured US Banks" or "Bank Holding Companies".

Criteria for TRUE (Keep):
- Commercial Banks, Savings Banks, Thrifts.
- Bank Holding Companies (e.g., Citigroup Inc).
- US subsidiaries of foreign banks.

Criteria for FALSE (Discard):
- Investment Funds / PE Firms / Hedge Funds.
- Insurance Companies.
- Non-Bank Financial Corps (e.g., GM Financial).
- Pure Mortgage REITs or SPVs.

Output: JSON Object with a list "results": [{"name": "...", "is_bank": true/false}, ...]
IMPORTANT: Only generate valid JSON output.`

// Verdict is one classification result.
type Verdict struct {
	Name   string `json:"name"`
	IsBank bool   `json:"is_bank"`
}

// Classifier is the collaborator contract for this stage.
type Classifier interface {
	ClassifyBatch(ctx context.Context, names []string) ([]Verdict, error)
}

// LLMClassifier dispatches batches to the language model.
type LLMClassifier struct {
	completer anthropic.Completer
	model     string
}

var _ Classifier = (*LLMClassifier)(nil)

// NewLLMClassifier creates a classifier using the given model.
func NewLLMClassifier(completer anthropic.Completer, model string) *LLMClassifier {
	return &LLMClassifier{completer: completer, model: model}
}

// ClassifyBatch sends one batch of names. An unparsable response yields an
// empty batch, not an error: the names stay out of the checkpoint and are
// retried on the next run.
func (c *LLMClassifier) ClassifyBatch(ctx context.Context, names []string) ([]Verdict, error) {
	raw, err := c.completer.Complete(ctx, c.model, systemPrompt, strings.Join(names, "\n"))
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Results []Verdict `json:"results"`
	}
	if err := anthropic.DecodeJSON(raw, &envelope); err == nil && len(envelope.Results) > 0 {
		return envelope.Results, nil
	}

	// Some responses come back as a bare array.
	var bare []Verdict
	if err := anthropic.DecodeJSON(raw, &bare); err != nil {
		zap.L().Warn("discarding unparsable classification batch",
			zap.Int("batch_size", len(names)),
			zap.Error(err),
		)
		return nil, nil
	}
	return bare, nil
}
