package pipeline

import (
	"log/slog"

	"github.com/funvibe/boundstore/internal/ast"
	"github.com/funvibe/boundstore/internal/diagnostics"
	"github.com/funvibe/boundstore/internal/registry"
)

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Edit replaces Source[Start:End] with Text.
type Edit struct {
	Start int
	End   int
	Text  string
}

// Options control how sites are recognised.
type Options struct {
	Macro     string // registration macro name, e.g. "bounds"
	Attribute string // application attribute name, e.g. "bound_alias"
}

// PipelineContext carries one compilation unit through the stages.
type PipelineContext struct {
	FilePath string
	Source   []byte
	Options  Options
	Logger   *slog.Logger

	// Registry is the unit's own bound-set table.
	Registry *registry.Registry

	Sites  []ast.Site // filled by the scanner, in source order
	Edits  []Edit     // filled by the expander
	Output []byte     // filled by the emitter

	Errors []*diagnostics.DiagnosticError
}

// NewContext prepares a context for one file with a fresh registry.
func NewContext(path string, src []byte, opts Options, logger *slog.Logger) *PipelineContext {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PipelineContext{
		FilePath: path,
		Source:   src,
		Options:  opts,
		Logger:   logger,
		Registry: registry.New(path),
	}
}

// AddError records err, attributing it to the context's file when it has none.
func (ctx *PipelineContext) AddError(err *diagnostics.DiagnosticError) {
	if err.File == "" {
		err.File = ctx.FilePath
	}
	ctx.Errors = append(ctx.Errors, err)
}
