package source

import (
	"sort"
	"unicode/utf8"

	"github.com/funvibe/boundstore/internal/token"
)

// lineIndex converts byte offsets into 1-based line/column positions.
// Columns count runes, like the lexer.
type lineIndex struct {
	src    []byte
	starts []int
}

func newLineIndex(src []byte) *lineIndex {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{src: src, starts: starts}
}

func (li *lineIndex) pos(offset int) token.Pos {
	if offset > len(li.src) {
		offset = len(li.src)
	}
	line := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
	col := utf8.RuneCount(li.src[li.starts[line]:offset]) + 1
	return token.Pos{Line: line + 1, Column: col, Offset: offset}
}

func (li *lineIndex) span(start, end int) token.Span {
	return token.Span{Start: li.pos(start), End: li.pos(end)}
}

// indentAt returns the whitespace that precedes offset on its line, or "" when
// something other than whitespace comes first.
func (li *lineIndex) indentAt(offset int) string {
	p := li.pos(offset)
	lineStart := li.starts[p.Line-1]
	for _, b := range li.src[lineStart:offset] {
		if b != ' ' && b != '\t' {
			return ""
		}
	}
	return string(li.src[lineStart:offset])
}
