package anthropic

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

var codeFence = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// DecodeJSON parses a model response into v. Models wrap JSON in Markdown
// fences or lead with prose often enough that a strict decode alone loses
// usable batches, so the decode runs in three steps:
//
//  1. strip a Markdown code fence if one wraps the payload,
//  2. strict json.Unmarshal,
//  3. on failure, cut the outermost bracket- or brace-delimited span and
//     unmarshal that once.
//
// Anything still unparsable is an error; the response is discarded rather
// than guessed at further.
func DecodeJSON(raw string, v any) error {
	text := strings.TrimSpace(raw)
	if text == "" {
		return eris.New("anthropic: empty response")
	}

	if m := codeFence.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}

	if span, ok := outerSpan(text, '{', '}'); ok {
		if err := json.Unmarshal([]byte(span), v); err == nil {
			return nil
		}
	}
	if span, ok := outerSpan(text, '[', ']'); ok {
		if err := json.Unmarshal([]byte(span), v); err == nil {
			return nil
		}
	}

	return eris.New("anthropic: response is not valid JSON")
}

// outerSpan returns the substring from the first open delimiter to the last
// close delimiter.
func outerSpan(text string, open, close byte) (string, bool) {
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, close)
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
