// Package boundstore exposes the bound registry and splicer to Go programs.
//
// A Session is one compilation unit: at most one registration, any number of
// applications. Transform processes a whole host file as a fresh unit of its own.
package boundstore

import (
	"fmt"
	"log/slog"

	"github.com/funvibe/boundstore/internal/ast"
	"github.com/funvibe/boundstore/internal/config"
	"github.com/funvibe/boundstore/internal/diagnostics"
	"github.com/funvibe/boundstore/internal/emitter"
	"github.com/funvibe/boundstore/internal/expand"
	"github.com/funvibe/boundstore/internal/parser"
	"github.com/funvibe/boundstore/internal/pipeline"
	"github.com/funvibe/boundstore/internal/registry"
	"github.com/funvibe/boundstore/internal/source"
	"github.com/funvibe/boundstore/internal/token"
)

// Re-exported diagnostic kinds, for errors.Is.
var (
	ErrSyntax            = diagnostics.ErrSyntax
	ErrAlreadyRegistered = diagnostics.ErrAlreadyRegistered
	ErrDuplicateName     = diagnostics.ErrDuplicateName
	ErrUnknownBound      = diagnostics.ErrUnknownBound
	ErrNotYetRegistered  = diagnostics.ErrNotYetRegistered
	ErrCorruptBoundSet   = diagnostics.ErrCorruptBoundSet
)

// Diagnostics is the error type returned by Transform when the host file has
// problems. Use errors.As to get at the individual diagnostics.
type Diagnostics = diagnostics.List

// Session holds the registry of one compilation unit.
type Session struct {
	file     string
	opts     pipeline.Options
	logger   *slog.Logger
	registry *registry.Registry
}

// Option configures a Session.
type Option func(*Session)

// WithFile names the unit in diagnostics.
func WithFile(name string) Option {
	return func(s *Session) { s.file = name }
}

// WithNames overrides the registration macro and application attribute names
// recognised by Transform.
func WithNames(macro, attribute string) Option {
	return func(s *Session) {
		if macro != "" {
			s.opts.Macro = macro
		}
		if attribute != "" {
			s.opts.Attribute = attribute
		}
	}
}

// WithLogger sets the logger used by Transform.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// NewSession creates an empty unit.
func NewSession(opts ...Option) *Session {
	s := &Session{
		opts: pipeline.Options{Macro: config.DefaultMacro, Attribute: config.DefaultAttribute},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	s.registry = registry.New(s.file)
	return s
}

// Names lists the registered bound sets in registration order.
func (s *Session) Names() []string {
	return s.registry.Names()
}

// Register parses the body of a registration, e.g.
//
//	Polygon => <'a, F: Float, P: Poly<'a, F>>;
//	Filter => <T> where T: Clone;
//
// and stores it. Only the first call per session is a registration; it is
// used up even when it fails, including on a syntax error.
func (s *Session) Register(src string) error {
	start := token.Pos{Line: 1, Column: 1}
	at := token.Span{Start: start, End: endOf(src)}
	decls, err := parser.ParseBoundDecls(src, start)
	if err != nil {
		if cerr := s.registry.Claim(at); cerr != nil {
			return s.attribute(cerr)
		}
		return s.attribute(err)
	}
	if err := s.registry.Register(at, decls); err != nil {
		return s.attribute(err)
	}
	return nil
}

// Apply splices the named bound sets into decl, the text of a function-like
// item with or without its body, and returns the rewritten item.
func (s *Session) Apply(decl string, names ...string) (string, error) {
	refs := make([]*ast.BoundRef, len(names))
	for i, name := range names {
		refs[i] = &ast.BoundRef{Token: token.Token{Type: token.IDENT, Lexeme: name, Literal: name, Line: 1, Column: 1}, Name: name}
	}

	sig, err := parser.ParseSignature(decl, token.Pos{Line: 1, Column: 1})
	if err != nil {
		return "", s.attribute(err)
	}
	cut := len(decl)
	if sig.Terminator.Type != token.EOF {
		cut = sig.Terminator.Offset
	}
	hasBody := sig.Terminator.Type == token.LBRACE

	header, err := expand.Header(s.registry, decl[:cut], token.Pos{Line: 1, Column: 1}, refs, "", hasBody)
	if err != nil {
		return "", s.attribute(err)
	}
	return header + decl[cut:], nil
}

// Transform rewrites a whole host file as a new unit, independent of the
// session's own registry. Problems in the file are returned as Diagnostics.
func (s *Session) Transform(path string, src []byte) ([]byte, error) {
	ctx := pipeline.NewContext(path, src, s.opts, s.logger)
	ctx = NewPipeline().Run(ctx)
	if len(ctx.Errors) > 0 {
		return nil, Diagnostics(ctx.Errors)
	}
	return ctx.Output, nil
}

// NewPipeline returns the scan, expand and emit stages in order.
func NewPipeline() *pipeline.Pipeline {
	return pipeline.New(
		&source.ScanProcessor{},
		&expand.ExpandProcessor{},
		&emitter.EmitProcessor{},
	)
}

func (s *Session) attribute(err error) error {
	if d, ok := diagnostics.AsDiagnostic(err); ok {
		if d.File == "" {
			d.File = s.file
		}
		return d
	}
	if s.file == "" {
		return err
	}
	return fmt.Errorf("%s: %w", s.file, err)
}

func endOf(src string) token.Pos {
	pos := token.Pos{Line: 1, Column: 1, Offset: len(src)}
	for _, r := range src {
		if r == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}
	return pos
}
