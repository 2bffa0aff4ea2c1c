// Package chunker splits normalised legal text into retrieval-sized,
// overlapping passages. Splitting is a pure function: deterministic,
// restartable and free of hidden state.
package chunker

import (
	"regexp"
	"strings"
)

// Default chunking options, in characters.
const (
	DefaultTargetSize = 1200
	DefaultMinSize    = 500
	DefaultMaxSize    = 1500
	DefaultOverlap    = 100
)

// breakWindow is how far back from the tentative end a break point
// is searched for.
const breakWindow = 200

// Options configures the chunker. Zero fields take defaults.
type Options struct {
	// TargetSize is the preferred chunk length.
	TargetSize int

	// MinSize is the minimum length of an interior chunk.
	// Undersized interior chunks are discarded rather than emitted.
	MinSize int

	// MaxSize caps how far past the cursor a chunk may extend.
	MaxSize int

	// Overlap is how many trailing characters are repeated at the
	// start of the next chunk.
	Overlap int
}

// DefaultOptions returns the chunking parameters used by the pipeline.
func DefaultOptions() Options {
	return Options{
		TargetSize: DefaultTargetSize,
		MinSize:    DefaultMinSize,
		MaxSize:    DefaultMaxSize,
		Overlap:    DefaultOverlap,
	}
}

func (o Options) withDefaults() Options {
	if o.TargetSize <= 0 {
		o.TargetSize = DefaultTargetSize
	}
	if o.MinSize <= 0 {
		o.MinSize = DefaultMinSize
	}
	if o.MaxSize <= 0 {
		o.MaxSize = DefaultMaxSize
	}
	if o.Overlap < 0 {
		o.Overlap = DefaultOverlap
	}
	return o
}

// Piece is one emitted chunk of text.
type Piece struct {
	// Index is the 0-based position in the sequence. Indices are
	// dense with no gaps.
	Index int

	// Content is the trimmed passage text.
	Content string

	// ArticleRef is the structural citation in effect for this
	// passage, empty when no article has been declared yet.
	ArticleRef string
}

var (
	crlfRe     = regexp.MustCompile(`\r\n?`)
	newlinesRe = regexp.MustCompile(`\n{3,}`)
	spacesRe   = regexp.MustCompile(`[ \t]+`)
)

// Normalize collapses line endings and whitespace runs:
// CRLF/CR become LF, 3+ consecutive newlines become exactly 2,
// runs of spaces and tabs become one space, and the result is trimmed.
func Normalize(text string) string {
	text = crlfRe.ReplaceAllString(text, "\n")
	text = newlinesRe.ReplaceAllString(text, "\n\n")
	text = spacesRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Split normalises the text and cuts it into overlapping pieces at the
// best available break points. Whitespace-only input yields no pieces;
// input at or below MinSize yields a single piece covering the whole
// normalised text.
func Split(text string, opts Options) []Piece {
	opts = opts.withDefaults()

	norm := Normalize(text)
	if norm == "" {
		return nil
	}

	runes := []rune(norm)
	n := len(runes)

	var contents []string
	if n <= opts.MinSize {
		contents = []string{norm}
	} else {
		contents = split(runes, opts)
	}

	// Thread the current article reference through the sequence as an
	// explicit accumulator: a declaration sets it, later pieces
	// inherit it until the next declaration.
	pieces := make([]Piece, len(contents))
	ref := ""
	for i, content := range contents {
		ref = resolveRef(content, ref)
		pieces[i] = Piece{
			Index:      i,
			Content:    content,
			ArticleRef: ref,
		}
	}
	return pieces
}

func split(runes []rune, opts Options) []string {
	n := len(runes)
	var contents []string

	pos := 0
	for pos < n {
		end := pos + opts.TargetSize
		if end > n {
			end = n
		}

		if end < n {
			end = findBreak(runes, pos, end, opts.MaxSize)
		}

		content := strings.TrimSpace(string(runes[pos:end]))
		// Undersized interior chunks are fragments, not passages.
		if content != "" && (len([]rune(content)) >= opts.MinSize || end >= n) {
			contents = append(contents, content)
		}

		if end >= n {
			break
		}

		// Step back by the overlap but always make forward progress,
		// even when the overlap would stall the cursor.
		next := end - opts.Overlap
		if next <= pos {
			next = pos + 1
		}
		pos = next
	}

	return contents
}

// findBreak searches backward from the tentative end for the best break
// point, trying tiers in order: paragraph break, line break, sentence
// terminator, semicolon/colon, comma, any whitespace. Within a tier the
// last match wins; the first tier with a match wins overall. Falls back
// to the tentative end (a hard cut) when nothing matches.
func findBreak(runes []rune, pos, end, maxSize int) int {
	limit := pos + maxSize
	if end > limit {
		end = limit
	}

	windowStart := end - breakWindow
	if windowStart < pos {
		windowStart = pos
	}

	// Paragraph break: cut before the blank line.
	for i := end; i > windowStart; i-- {
		if i+1 < len(runes) && runes[i] == '\n' && runes[i+1] == '\n' {
			return i
		}
	}

	// Line break.
	for i := end; i > windowStart; i-- {
		if runes[i] == '\n' {
			return i
		}
	}

	// Sentence terminator followed by whitespace: keep the terminator.
	for i := end - 1; i > windowStart; i-- {
		if isSentenceEnd(runes[i]) && i+1 < len(runes) && isBreakSpace(runes[i+1]) {
			return i + 1
		}
	}

	// Semicolon or colon followed by whitespace.
	for i := end - 1; i > windowStart; i-- {
		if (runes[i] == ';' || runes[i] == ':') && i+1 < len(runes) && isBreakSpace(runes[i+1]) {
			return i + 1
		}
	}

	// Comma followed by whitespace.
	for i := end - 1; i > windowStart; i-- {
		if runes[i] == ',' && i+1 < len(runes) && isBreakSpace(runes[i+1]) {
			return i + 1
		}
	}

	// Any whitespace.
	for i := end; i > windowStart; i-- {
		if isBreakSpace(runes[i]) {
			return i
		}
	}

	return end
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isBreakSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t'
}
