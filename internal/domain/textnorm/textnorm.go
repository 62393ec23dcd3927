// Package textnorm converts markup-laden catalog text into plaintext.
// Field values frequently arrive with embedded HTML and entity-encoded
// punctuation, and LLM prose can echo both back.
package textnorm

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict strips every tag and attribute, leaving text content only.
var strict = bluemonday.StrictPolicy()

var multiSpace = regexp.MustCompile(`[ \t]{2,}`)

// maxPasses bounds the decode/strip loop. Each pass resolves one level
// of entity encoding, so real catalog text converges in one or two.
const maxPasses = 4

// Clean strips markup tags and decodes entity encodings (numeric decimal,
// numeric hex, and named) into literal characters. Idempotent:
// Clean(Clean(s)) == Clean(s).
func Clean(s string) string {
	if s == "" {
		return s
	}

	// Fast path: no markup, no entities.
	if !strings.ContainsAny(s, "<&") {
		return collapse(s)
	}

	// Decode before stripping so entity-encoded markup (&lt;b&gt;) is
	// removed as markup on this pass instead of surviving into the
	// output as literal tags. The sanitizer re-encodes bare characters,
	// so the trailing unescape restores them; iterate until stable to
	// keep the result a fixpoint for multi-encoded input.
	out := s
	for i := 0; i < maxPasses; i++ {
		next := html.UnescapeString(strict.Sanitize(html.UnescapeString(out)))
		if next == out {
			break
		}
		out = next
	}

	return collapse(out)
}

func collapse(s string) string {
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
