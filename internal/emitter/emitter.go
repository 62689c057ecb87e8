// Package emitter applies expander edits to the host source.
package emitter

import (
	"bytes"
	"sort"

	"github.com/funvibe/boundstore/internal/diagnostics"
	"github.com/funvibe/boundstore/internal/pipeline"
	"github.com/funvibe/boundstore/internal/token"
)

// EmitProcessor writes the rewritten file to ctx.Output.
type EmitProcessor struct{}

func (ep *EmitProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	out, err := Apply(ctx.Source, ctx.Edits)
	if err != nil {
		ctx.AddError(err)
		return ctx
	}
	ctx.Output = out
	return ctx
}

// Apply rewrites src with edits. Edits must not overlap. A removal that leaves
// only whitespace on its line takes the whole line with it.
func Apply(src []byte, edits []pipeline.Edit) ([]byte, *diagnostics.DiagnosticError) {
	sorted := make([]pipeline.Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var buf bytes.Buffer
	buf.Grow(len(src))
	last := 0
	for _, e := range sorted {
		if e.Text == "" {
			e = widenRemoval(src, e, last)
		}
		if e.Start < last || e.End < e.Start || e.End > len(src) {
			return nil, diagnostics.NewSpanError(diagnostics.ErrB001, spanAt(src, e.Start, e.End),
				"overlapping rewrites at offset %d", e.Start)
		}
		buf.Write(src[last:e.Start])
		buf.WriteString(e.Text)
		last = e.End
	}
	buf.Write(src[last:])
	return buf.Bytes(), nil
}

// widenRemoval grows e to cover its whole line when nothing else but blanks is
// on it. floor is the end of the previous edit.
func widenRemoval(src []byte, e pipeline.Edit, floor int) pipeline.Edit {
	start := e.Start
	for start > floor && isBlank(src[start-1]) {
		start--
	}
	if start > 0 && start > floor && src[start-1] != '\n' {
		return e
	}
	if start == floor && floor > 0 && src[floor-1] != '\n' {
		return e
	}

	end := e.End
	for end < len(src) && isBlank(src[end]) {
		end++
	}
	n := newlineAt(src, end)
	if n == 0 && end < len(src) {
		return e
	}
	end += n
	// do not leave two blank lines where there was one line between them
	if n > 0 && blankAbove(src, start) {
		end += newlineAt(src, end)
	}
	return pipeline.Edit{Start: start, End: end}
}

// newlineAt returns the length of the line break at i, or 0.
func newlineAt(src []byte, i int) int {
	switch {
	case i < len(src) && src[i] == '\n':
		return 1
	case i+1 < len(src) && src[i] == '\r' && src[i+1] == '\n':
		return 2
	}
	return 0
}

// blankAbove reports whether the line before the one starting at start is
// empty, or start is the beginning of the file.
func blankAbove(src []byte, start int) bool {
	if start == 0 {
		return true
	}
	i := start - 1 // the '\n' ending the previous line
	if i > 0 && src[i-1] == '\r' {
		i--
	}
	return i == 0 || src[i-1] == '\n'
}

func isBlank(b byte) bool { return b == ' ' || b == '\t' }

func spanAt(src []byte, start, end int) token.Span {
	return token.Span{Start: posAt(src, start), End: posAt(src, end)}
}

func posAt(src []byte, offset int) token.Pos {
	if offset < 0 {
		offset = 0
	}
	if offset > len(src) {
		offset = len(src)
	}
	line, col := 1, 1
	for _, r := range string(src[:offset]) {
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return token.Pos{Line: line, Column: col, Offset: offset}
}
