// Package source finds registration macros and annotated function-like items
// in Rust host files using tree-sitter.
package source

import (
	"fmt"
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/funvibe/boundstore/internal/ast"
	"github.com/funvibe/boundstore/internal/diagnostics"
	"github.com/funvibe/boundstore/internal/pipeline"
)

// Scanner wraps a tree-sitter parser configured for Rust.
type Scanner struct {
	parser *sitter.Parser
	opts   pipeline.Options
}

// NewScanner constructs a scanner. Close must be called to release the parser.
func NewScanner(opts pipeline.Options) (*Scanner, error) {
	lang := sitter.NewLanguage(tree_sitter_rust.Language())
	if lang == nil {
		return nil, fmt.Errorf("source: rust language not available")
	}
	p := sitter.NewParser()
	if err := p.SetLanguage(lang); err != nil {
		p.Close()
		return nil, fmt.Errorf("source: %w", err)
	}
	return &Scanner{parser: p, opts: opts}, nil
}

// Close releases parser resources.
func (s *Scanner) Close() {
	if s == nil || s.parser == nil {
		return
	}
	s.parser.Close()
}

// Result is what a scan found. HasSyntaxErrors reports that tree-sitter had to
// recover somewhere in the file; sites are still reported.
type Result struct {
	Sites           []ast.Site
	Errors          []*diagnostics.DiagnosticError
	HasSyntaxErrors bool
}

// Scan lists the sites of src in source order.
func (s *Scanner) Scan(src []byte) (*Result, error) {
	if s == nil || s.parser == nil {
		return nil, fmt.Errorf("source: nil scanner")
	}
	tree := s.parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("source: parse failed")
	}
	defer tree.Close()

	root := tree.RootNode()
	w := &walker{src: src, lines: newLineIndex(src), opts: s.opts}
	w.walk(root)

	sort.SliceStable(w.sites, func(i, j int) bool {
		return w.sites[i].SiteSpan().Start.Offset < w.sites[j].SiteSpan().Start.Offset
	})
	return &Result{Sites: w.sites, Errors: w.errors, HasSyntaxErrors: root.HasError()}, nil
}

type walker struct {
	src    []byte
	lines  *lineIndex
	opts   pipeline.Options
	sites  []ast.Site
	errors []*diagnostics.DiagnosticError
}

func (w *walker) text(n *sitter.Node) string {
	return string(w.src[n.StartByte():n.EndByte()])
}

func (w *walker) walk(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case "macro_invocation":
		if w.isNamed(n.ChildByFieldName("macro"), w.opts.Macro) {
			w.macroSite(n)
		}
		return
	case "function_item", "function_signature_item":
		w.functionSite(n)
	case "attribute_item":
		if attr := w.matchingAttribute(n); attr != nil && !appliesToFunction(n) {
			w.errors = append(w.errors, diagnostics.NewSpanError(diagnostics.ErrB001,
				w.lines.span(int(n.StartByte()), int(n.EndByte())),
				"'#[%s]' can only be applied to functions and methods", w.opts.Attribute))
		}
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		w.walk(n.Child(i))
	}
}

// isNamed matches a path node against name by its last segment, so that
// `bounds` and `bounds_store::bounds` both match "bounds".
func (w *walker) isNamed(path *sitter.Node, name string) bool {
	if path == nil || name == "" {
		return false
	}
	text := w.text(path)
	if i := strings.LastIndex(text, "::"); i >= 0 {
		text = text[i+2:]
	}
	return strings.TrimSpace(text) == name
}

func (w *walker) macroSite(n *sitter.Node) {
	tt := childOfKind(n, "token_tree")
	if tt == nil {
		return
	}
	start, end := int(n.StartByte()), int(n.EndByte())
	end = w.skipSemicolon(end)
	bodyStart := int(tt.StartByte()) + 1
	w.sites = append(w.sites, &ast.MacroSite{
		Span:      w.lines.span(start, end),
		Macro:     w.opts.Macro,
		Body:      string(w.src[bodyStart : int(tt.EndByte())-1]),
		BodyStart: w.lines.pos(bodyStart),
	})
}

// skipSemicolon extends end over a ';' that follows on the same line.
func (w *walker) skipSemicolon(end int) int {
	i := end
	for i < len(w.src) && (w.src[i] == ' ' || w.src[i] == '\t') {
		i++
	}
	if i < len(w.src) && w.src[i] == ';' {
		return i + 1
	}
	return end
}

func (w *walker) functionSite(n *sitter.Node) {
	var attrs []*ast.AliasAttr
	for prev := n.PrevSibling(); prev != nil; prev = prev.PrevSibling() {
		kind := prev.Kind()
		if kind == "line_comment" || kind == "block_comment" {
			continue
		}
		if kind != "attribute_item" {
			break
		}
		attr := w.matchingAttribute(prev)
		if attr == nil {
			continue
		}
		attrs = append([]*ast.AliasAttr{attr}, attrs...)
	}
	if len(attrs) == 0 {
		return
	}

	start := int(n.StartByte())
	site := &ast.AliasSite{Attrs: attrs, Indent: w.lines.indentAt(start)}
	end := int(n.EndByte())
	if body := n.ChildByFieldName("body"); body != nil {
		end = int(body.StartByte())
		site.HasBody = true
	} else if end > start && w.src[end-1] == ';' {
		end--
	}
	site.Header = string(w.src[start:end])
	site.HeaderSpan = w.lines.span(start, end)
	w.sites = append(w.sites, site)
}

// matchingAttribute returns the alias attribute held by an attribute_item, or nil.
func (w *walker) matchingAttribute(item *sitter.Node) *ast.AliasAttr {
	attr := childOfKind(item, "attribute")
	if attr == nil || attr.NamedChildCount() == 0 || !w.isNamed(attr.NamedChild(0), w.opts.Attribute) {
		return nil
	}
	out := &ast.AliasAttr{Span: w.lines.span(int(item.StartByte()), int(item.EndByte()))}
	if args := childOfKind(attr, "token_tree"); args != nil {
		argsStart := int(args.StartByte()) + 1
		out.Args = string(w.src[argsStart : int(args.EndByte())-1])
		out.ArgsStart = w.lines.pos(argsStart)
	} else {
		out.ArgsStart = out.Span.End
	}
	return out
}

// appliesToFunction reports whether the item after the attribute run that
// contains n is a function-like item.
func appliesToFunction(n *sitter.Node) bool {
	for next := n.NextSibling(); next != nil; next = next.NextSibling() {
		switch next.Kind() {
		case "attribute_item", "line_comment", "block_comment":
			continue
		case "function_item", "function_signature_item":
			return true
		default:
			return false
		}
	}
	return false
}

func childOfKind(n *sitter.Node, kind string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if c := n.NamedChild(i); c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}
