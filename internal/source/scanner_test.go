package source

import (
	"errors"
	"testing"

	"github.com/funvibe/boundstore/internal/ast"
	"github.com/funvibe/boundstore/internal/diagnostics"
	"github.com/funvibe/boundstore/internal/pipeline"
)

var testOpts = pipeline.Options{Macro: "bounds", Attribute: "bound_alias"}

func scan(t *testing.T, src string) *Result {
	t.Helper()
	s, err := NewScanner(testOpts)
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}
	defer s.Close()
	res, err := s.Scan([]byte(src))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	return res
}

func TestScanSites(t *testing.T) {
	src := "bounds! {\n    A => <T>\n}\n\n#[bound_alias(A)]\nfn f(t: T) {}\n"
	res := scan(t, src)
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Sites) != 2 {
		t.Fatalf("expected 2 sites, got %d", len(res.Sites))
	}

	m, ok := res.Sites[0].(*ast.MacroSite)
	if !ok {
		t.Fatalf("site 0 is %T", res.Sites[0])
	}
	if m.Body != "\n    A => <T>\n" {
		t.Errorf("body: got %q", m.Body)
	}
	if m.BodyStart.Line != 1 || m.BodyStart.Column != 10 || m.BodyStart.Offset != 9 {
		t.Errorf("body start: got %+v", m.BodyStart)
	}
	if m.Span.Start.Offset != 0 || m.Span.End.Offset != 24 {
		t.Errorf("span: got %d..%d", m.Span.Start.Offset, m.Span.End.Offset)
	}

	a, ok := res.Sites[1].(*ast.AliasSite)
	if !ok {
		t.Fatalf("site 1 is %T", res.Sites[1])
	}
	if len(a.Attrs) != 1 || a.Attrs[0].Args != "A" {
		t.Fatalf("attrs: got %+v", a.Attrs)
	}
	if p := a.Attrs[0].ArgsStart; p.Line != 5 || p.Column != 15 {
		t.Errorf("args start: got %d:%d", p.Line, p.Column)
	}
	if a.Header != "fn f(t: T) " || !a.HasBody || a.Indent != "" {
		t.Errorf("header: got %q body=%v indent=%q", a.Header, a.HasBody, a.Indent)
	}
	if a.HeaderSpan.Start.Line != 6 || a.HeaderSpan.Start.Column != 1 {
		t.Errorf("header span: got %+v", a.HeaderSpan.Start)
	}
}

func TestScanPathQualifiedNames(t *testing.T) {
	src := "bounds_store::bounds! { A => <T> }\n" +
		"#[bounds_store::bound_alias(A)]\nfn f() {}\n"
	res := scan(t, src)
	if len(res.Sites) != 2 {
		t.Fatalf("expected 2 sites, got %d", len(res.Sites))
	}
	if _, ok := res.Sites[0].(*ast.MacroSite); !ok {
		t.Errorf("site 0 is %T", res.Sites[0])
	}
	if _, ok := res.Sites[1].(*ast.AliasSite); !ok {
		t.Errorf("site 1 is %T", res.Sites[1])
	}
}

func TestScanTraitMethod(t *testing.T) {
	src := "trait V {\n    #[bound_alias(A)]\n    #[bound_alias(B, C)]\n    fn visit(&self);\n}\n"
	res := scan(t, src)
	if len(res.Sites) != 1 {
		t.Fatalf("expected 1 site, got %d", len(res.Sites))
	}
	a := res.Sites[0].(*ast.AliasSite)
	if len(a.Attrs) != 2 || a.Attrs[0].Args != "A" || a.Attrs[1].Args != "B, C" {
		t.Fatalf("attrs: got %+v", a.Attrs)
	}
	if a.Header != "fn visit(&self)" || a.HasBody || a.Indent != "    " {
		t.Errorf("header: got %q body=%v indent=%q", a.Header, a.HasBody, a.Indent)
	}
}

func TestScanIgnoresOtherAttributesAndMacros(t *testing.T) {
	src := "#[bound_alias(A)]\n#[inline]\nfn f() {\n    println!(\"x\");\n}\n\n#[inline]\nfn g() {}\n"
	res := scan(t, src)
	if len(res.Sites) != 1 {
		t.Fatalf("expected 1 site, got %d", len(res.Sites))
	}
	a := res.Sites[0].(*ast.AliasSite)
	if len(a.Attrs) != 1 {
		t.Errorf("expected 1 attr, got %d", len(a.Attrs))
	}
}

func TestScanAttributeOnNonFunction(t *testing.T) {
	res := scan(t, "#[bound_alias(A)]\nstruct S;\n")
	if len(res.Sites) != 0 {
		t.Errorf("expected no sites, got %d", len(res.Sites))
	}
	if len(res.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(res.Errors))
	}
	if !errors.Is(res.Errors[0], diagnostics.ErrSyntax) {
		t.Errorf("expected B001, got %v", res.Errors[0])
	}
	if res.Errors[0].Span.Start.Line != 1 {
		t.Errorf("expected line 1, got %d", res.Errors[0].Span.Start.Line)
	}
}

func TestScanProcessor(t *testing.T) {
	ctx := pipeline.NewContext("a.rs", []byte("bounds! { A => <T> }\n"), testOpts, nil)
	ctx = (&ScanProcessor{}).Process(ctx)
	if len(ctx.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", ctx.Errors)
	}
	if len(ctx.Sites) != 1 {
		t.Errorf("expected 1 site, got %d", len(ctx.Sites))
	}
}

func TestLineIndex(t *testing.T) {
	li := newLineIndex([]byte("ab\n  çd\n"))
	if p := li.pos(7); p.Line != 2 || p.Column != 4 {
		t.Errorf("expected 2:4, got %d:%d", p.Line, p.Column)
	}
	if got := li.indentAt(5); got != "  " {
		t.Errorf("indent: got %q", got)
	}
	if got := li.indentAt(1); got != "" {
		t.Errorf("indent: got %q", got)
	}
}
