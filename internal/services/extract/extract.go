// Package extract recovers a JSON document from noisy model output. Model
// responses wrap their JSON in prose, code fences and smart quotes; the
// extractor cuts the widest plausible span and repairs the common damage
// before handing the result to the merge layer.
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
	bareKey       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_\- ]*?)(\s*:)`)
	smartQuotes   = strings.NewReplacer(
		"“", `"`, // left double
		"”", `"`, // right double
		"‘", "'", // left single
		"’", "'", // right single
	)
)

// Result carries the recovered document and a diagnostic describing the path
// taken to recover it.
type Result struct {
	Raw        json.RawMessage
	Repaired   bool
	Diagnostic string
}

// Extract pulls the widest JSON span out of text and repairs it if needed.
// It returns a nil Raw with no error when text contains no JSON at all; a
// missing document is an expected model outcome, not a failure. The Result
// is never nil: on an unrepairable span the error is accompanied by a
// Result whose Diagnostic holds the attempted text.
func Extract(text string) (*Result, error) {
	span, ok := widestSpan(text)
	if !ok {
		return &Result{Diagnostic: "no JSON braces found"}, nil
	}

	if json.Valid([]byte(span)) {
		return &Result{Raw: json.RawMessage(span), Diagnostic: "valid as extracted"}, nil
	}

	repaired := repair(span)
	if json.Valid([]byte(repaired)) {
		return &Result{
			Raw:        json.RawMessage(repaired),
			Repaired:   true,
			Diagnostic: "repaired trailing commas and quoting",
		}, nil
	}

	// Second pass quotes bare object keys, which the first pass leaves
	// alone because quoting keys inside valid string values corrupts them.
	requoted := bareKey.ReplaceAllString(repaired, `$1"$2"$3`)
	if json.Valid([]byte(requoted)) {
		return &Result{
			Raw:        json.RawMessage(requoted),
			Repaired:   true,
			Diagnostic: "repaired with bare key quoting",
		}, nil
	}

	// The attempted span travels in the diagnostic so callers can log what
	// the repairs were run against.
	return &Result{Diagnostic: span}, fmt.Errorf("unrepairable JSON span of %d chars", len(span))
}

// widestSpan returns the substring from the first opening brace or bracket
// to the matching last closer. The greedy cut tolerates nested braces in
// string values at the cost of occasionally including trailing noise, which
// the validity check then rejects.
func widestSpan(text string) (string, bool) {
	firstBrace := strings.IndexByte(text, '{')
	firstBracket := strings.IndexByte(text, '[')

	start := firstBrace
	closer := byte('}')
	if start < 0 || (firstBracket >= 0 && firstBracket < start) {
		start = firstBracket
		closer = ']'
	}
	if start < 0 {
		return "", false
	}

	end := strings.LastIndexByte(text, closer)
	if end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func repair(span string) string {
	repaired := smartQuotes.Replace(span)
	repaired = trailingComma.ReplaceAllString(repaired, "$1")
	return repaired
}
