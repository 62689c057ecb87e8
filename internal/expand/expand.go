// Package expand turns scanned sites into source edits: registrations are
// recorded and removed, annotated headers are spliced and re-emitted.
package expand

import (
	"strings"

	"github.com/funvibe/boundstore/internal/ast"
	"github.com/funvibe/boundstore/internal/diagnostics"
	"github.com/funvibe/boundstore/internal/parser"
	"github.com/funvibe/boundstore/internal/pipeline"
	"github.com/funvibe/boundstore/internal/prettyprinter"
	"github.com/funvibe/boundstore/internal/registry"
	"github.com/funvibe/boundstore/internal/splice"
	"github.com/funvibe/boundstore/internal/token"
)

// ExpandProcessor processes ctx.Sites in source order and fills ctx.Edits.
type ExpandProcessor struct{}

func (ep *ExpandProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	for _, site := range ctx.Sites {
		switch s := site.(type) {
		case *ast.MacroSite:
			if !expandMacro(ctx, s) {
				// later lookups would only repeat the failure
				return ctx
			}
		case *ast.AliasSite:
			expandAlias(ctx, s)
		}
	}
	return ctx
}

func expandMacro(ctx *pipeline.PipelineContext, site *ast.MacroSite) bool {
	decls, err := parser.ParseBoundDecls(site.Body, site.BodyStart)
	if err != nil {
		if cerr := ctx.Registry.Claim(site.Span); cerr != nil {
			ctx.AddError(asDiagnostic(cerr, site.Span))
			return false
		}
		ctx.AddError(asDiagnostic(err, site.Span))
		return false
	}
	if err := ctx.Registry.Register(site.Span, decls); err != nil {
		ctx.AddError(asDiagnostic(err, site.Span))
		return false
	}
	ctx.Logger.Debug("registered bounds",
		"file", ctx.FilePath, "unit", ctx.Registry.ID(), "names", ctx.Registry.Names())
	ctx.Edits = append(ctx.Edits, pipeline.Edit{Start: site.Span.Start.Offset, End: site.Span.End.Offset})
	return true
}

func expandAlias(ctx *pipeline.PipelineContext, site *ast.AliasSite) {
	refs, err := Refs(site)
	if err != nil {
		ctx.AddError(asDiagnostic(err, site.SiteSpan()))
		return
	}
	text, err := Header(ctx.Registry, site.Header, site.HeaderSpan.Start, refs, site.Indent, site.HasBody)
	if err != nil {
		ctx.AddError(asDiagnostic(err, site.HeaderSpan))
		return
	}

	for _, attr := range site.Attrs {
		ctx.Edits = append(ctx.Edits, pipeline.Edit{Start: attr.Span.Start.Offset, End: attr.Span.End.Offset})
	}
	ctx.Edits = append(ctx.Edits, pipeline.Edit{
		Start: site.HeaderSpan.Start.Offset,
		End:   site.HeaderSpan.End.Offset,
		Text:  text,
	})
	ctx.Logger.Debug("applied bounds", "file", ctx.FilePath, "line", site.HeaderSpan.Start.Line, "bounds", refNames(refs))
}

// Refs collects the bound names of every alias attribute on site, in order.
func Refs(site *ast.AliasSite) ([]*ast.BoundRef, error) {
	var refs []*ast.BoundRef
	for _, attr := range site.Attrs {
		names, err := parser.ParseBoundNames(attr.Args, attr.ArgsStart)
		if err != nil {
			return nil, err
		}
		refs = append(refs, names...)
	}
	return refs, nil
}

// Header splices refs into the function header text found at base and
// renders the result. hasBody selects whether the output is followed by the
// body's '{' or by ';'.
func Header(lookup registry.Lookuper, header string, base token.Pos, refs []*ast.BoundRef, indent string, hasBody bool) (string, error) {
	sig, err := parser.ParseSignature(header, base)
	if err != nil {
		return "", err
	}
	if err := splice.SpliceSignature(sig, lookup, refs); err != nil {
		return "", err
	}
	return prettyprinter.Signature(sig, indent, hasBody), nil
}

func asDiagnostic(err error, span token.Span) *diagnostics.DiagnosticError {
	if d, ok := diagnostics.AsDiagnostic(err); ok {
		return d
	}
	return diagnostics.NewSpanError(diagnostics.ErrB001, span, "%v", err)
}

func refNames(refs []*ast.BoundRef) string {
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.Name
	}
	return strings.Join(names, ", ")
}
