package chunker

import (
	"fmt"
	"regexp"
	"strings"
)

// Structural citation patterns for Spanish-language legal texts.
// Declarations are anchored at line start so cross-references inside a
// sentence do not register; parenthesized spans are stripped first for
// the same reason (e.g. "(ver Artículo 5)").
var (
	parensRe = regexp.MustCompile(`\([^)]*\)`)

	articleRe = regexp.MustCompile(`(?mi)^\s*art[íi]culo\s+(\d+)\s*[°º]?\s*[.\-:]?`)

	transitoryParaRe = regexp.MustCompile(`(?mi)^\s*par[áa]grafo\s+transitorio(?:\s+(\d+))?\b`)

	// Plain parágrafo; the transitory form is matched first and masked
	// out so it is not counted twice.
	paragraphRe = regexp.MustCompile(`(?mi)^\s*par[áa]grafo(?:\s+(\d+))?\b`)
)

// resolveRef computes the article reference in effect for a piece of
// content, given the reference inherited from the preceding pieces.
//
// A primary article declaration replaces the inherited reference.
// Parágrafo markers within the same piece refine it with a suffix.
// The refined reference is what subsequent pieces inherit, until a new
// article declaration appears.
func resolveRef(content, inherited string) string {
	stripped := parensRe.ReplaceAllString(content, "")

	ref := inherited
	if m := articleRe.FindStringSubmatch(stripped); m != nil {
		ref = "Artículo " + m[1]
	}
	if ref == "" {
		return ""
	}

	if m := transitoryParaRe.FindStringSubmatch(stripped); m != nil {
		return refineRef(ref, "Parágrafo Transitorio", m[1])
	}
	if m := paragraphRe.FindStringSubmatch(stripped); m != nil {
		return refineRef(ref, "Parágrafo", m[1])
	}
	return ref
}

// refineRef appends a parágrafo suffix to the base article reference.
// Any previous suffix is replaced: the refinement always applies to the
// article declared most recently.
func refineRef(ref, marker, number string) string {
	base := ref
	if i := strings.Index(ref, ","); i >= 0 {
		base = ref[:i]
	}
	if number != "" {
		return fmt.Sprintf("%s, %s %s", base, marker, number)
	}
	return base + ", " + marker
}
