package source

import (
	"github.com/funvibe/boundstore/internal/diagnostics"
	"github.com/funvibe/boundstore/internal/pipeline"
	"github.com/funvibe/boundstore/internal/token"
)

// ScanProcessor fills ctx.Sites from the host file.
type ScanProcessor struct{}

func (sp *ScanProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	scanner, err := NewScanner(ctx.Options)
	if err != nil {
		ctx.AddError(diagnostics.NewSpanError(diagnostics.ErrB001, token.Span{}, "%v", err))
		return ctx
	}
	defer scanner.Close()

	res, err := scanner.Scan(ctx.Source)
	if err != nil {
		ctx.AddError(diagnostics.NewSpanError(diagnostics.ErrB001, token.Span{}, "%v", err))
		return ctx
	}
	if res.HasSyntaxErrors {
		ctx.Logger.Warn("host file has syntax errors, scanning recovered tree", "file", ctx.FilePath)
	}
	for _, e := range res.Errors {
		ctx.AddError(e)
	}
	ctx.Sites = res.Sites
	ctx.Logger.Debug("scanned host file", "file", ctx.FilePath, "sites", len(res.Sites))
	return ctx
}
