package splice_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/boundstore/internal/ast"
	"github.com/funvibe/boundstore/internal/diagnostics"
	"github.com/funvibe/boundstore/internal/parser"
	"github.com/funvibe/boundstore/internal/prettyprinter"
	"github.com/funvibe/boundstore/internal/registry"
	"github.com/funvibe/boundstore/internal/splice"
	"github.com/funvibe/boundstore/internal/token"
)

var origin = token.Pos{Line: 1, Column: 1}

func newRegistry(t *testing.T, src string) *registry.Registry {
	t.Helper()
	decls, err := parser.ParseBoundDecls(src, origin)
	require.NoError(t, err)
	r := registry.New("lib.rs")
	require.NoError(t, r.Register(token.Span{Start: origin, End: origin}, decls))
	return r
}

func generics(t *testing.T, src string) *ast.Generics {
	t.Helper()
	g, err := parser.ParseGenerics(src, origin)
	require.NoError(t, err)
	return g
}

func refs(t *testing.T, names string) []*ast.BoundRef {
	t.Helper()
	r, err := parser.ParseBoundNames(names, token.Pos{Line: 3, Column: 15, Offset: 40})
	require.NoError(t, err)
	return r
}

func TestSpliceMergesExistingTypeParam(t *testing.T) {
	r := newRegistry(t, "Polygon => <'a, F: Float, P: Poly<'a,F>>")

	run := func() string {
		target := generics(t, "<F: OtherTrait>")
		require.NoError(t, splice.Splice(target, r, refs(t, "Polygon")))
		return prettyprinter.Generics(target)
	}

	first := run()
	assert.Equal(t, "<'a, F: OtherTrait + Float, P: Poly<'a, F>>", first)
	assert.Equal(t, first, run(), "splicing must be deterministic")
}

func TestSpliceEmitsAppendedLifetimesFirst(t *testing.T) {
	r := newRegistry(t, "L => <'a>")
	target := generics(t, "<T>")
	require.NoError(t, splice.Splice(target, r, refs(t, "L")))

	// splice order is kept in the tree, emission puts lifetimes first
	require.Len(t, target.Params, 2)
	assert.IsType(t, &ast.TypeParam{}, target.Params[0])
	assert.IsType(t, &ast.LifetimeParam{}, target.Params[1])
	assert.Equal(t, "<'a, T>", prettyprinter.Generics(target))
}

func TestSpliceIntoEmptyTarget(t *testing.T) {
	r := newRegistry(t, "Polygon => <'a, F: 'a + Float, P: Polygon<'a, F>>")
	target := &ast.Generics{}
	require.NoError(t, splice.Splice(target, r, refs(t, "Polygon")))
	assert.Equal(t, "<'a, F: 'a + Float, P: Polygon<'a, F>>", prettyprinter.Generics(target))
	assert.Nil(t, target.Where)
}

func TestSpliceConcatenatesWhereClauses(t *testing.T) {
	r := newRegistry(t, "A => <U> where U: Send, U: Sync")

	target := generics(t, "<T>")
	w, err := parser.ParseWhereClause("where T: Clone", origin)
	require.NoError(t, err)
	target.Where = w

	require.NoError(t, splice.Splice(target, r, refs(t, "A")))
	assert.Equal(t, "<T, U>", prettyprinter.Generics(target))
	assert.Equal(t, "where T: Clone, U: Send, U: Sync", prettyprinter.WhereClause(target.Where))
}

func TestSpliceCreatesWhereClause(t *testing.T) {
	r := newRegistry(t, "A => <U> where U: Send")
	target := generics(t, "<T>")
	require.NoError(t, splice.Splice(target, r, refs(t, "A")))
	require.NotNil(t, target.Where)
	assert.Equal(t, "where U: Send", prettyprinter.WhereClause(target.Where))
}

func TestSpliceMultipleBoundsInOrder(t *testing.T) {
	r := newRegistry(t, "A => <T: X> where T: P1; B => <T: Y + 'b> where T: P2")
	target := generics(t, "<T: W>")
	require.NoError(t, splice.Splice(target, r, refs(t, "A, B")))
	assert.Equal(t, "<T: W + X + Y + 'b>", prettyprinter.Generics(target))
	assert.Equal(t, "where T: P1, T: P2", prettyprinter.WhereClause(target.Where))

	target = generics(t, "<T: W>")
	require.NoError(t, splice.Splice(target, r, refs(t, "B, A")))
	assert.Equal(t, "<T: W + Y + 'b + X>", prettyprinter.Generics(target))
}

func TestSpliceDoesNotDeduplicateLifetimesOrConsts(t *testing.T) {
	r := newRegistry(t, "A => <'a, const N: usize>")
	target := generics(t, "<'a, const N: usize>")
	require.NoError(t, splice.Splice(target, r, refs(t, "A")))
	assert.Equal(t, "<'a, 'a, const N: usize, const N: usize>", prettyprinter.Generics(target))
}

func TestSpliceSameSetTwice(t *testing.T) {
	r := newRegistry(t, "A => <T: X>")
	target := generics(t, "")
	require.NoError(t, splice.Splice(target, r, refs(t, "A, A")))
	assert.Equal(t, "<T: X + X>", prettyprinter.Generics(target))
}

func TestSpliceUnknownBound(t *testing.T) {
	r := newRegistry(t, "A => <T: X>")
	target := generics(t, "")
	err := splice.Splice(target, r, refs(t, "A, Missing"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, diagnostics.ErrUnknownBound))

	d, ok := diagnostics.AsDiagnostic(err)
	require.True(t, ok)
	assert.Equal(t, "lib.rs", d.File)
	assert.Equal(t, 3, d.Span.Start.Line)
	assert.Equal(t, 18, d.Span.Start.Column)
	assert.Contains(t, d.Message, "'Missing'")

	// no rollback of the sets applied before the failure
	assert.Equal(t, "<T: X>", prettyprinter.Generics(target))
}

func TestSpliceBeforeRegistration(t *testing.T) {
	r := registry.New("lib.rs")
	err := splice.Splice(generics(t, ""), r, refs(t, "A"))
	assert.True(t, errors.Is(err, diagnostics.ErrNotYetRegistered))
}

type brokenLookup struct{}

func (brokenLookup) Lookup(name string) (*registry.Entry, error) {
	return &registry.Entry{Name: name, Generics: "<T: >>"}, nil
}

func TestSpliceCorruptEntry(t *testing.T) {
	err := splice.Splice(generics(t, ""), brokenLookup{}, refs(t, "A"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, diagnostics.ErrCorruptBoundSet))
}

func TestSpliceSignature(t *testing.T) {
	r := newRegistry(t, "A => <T: Clone> where T: Send")
	sig, err := parser.ParseSignature("fn f(x: T) -> T {", origin)
	require.NoError(t, err)
	require.NoError(t, splice.SpliceSignature(sig, r, refs(t, "A")))
	assert.Equal(t, "fn f<T: Clone>(x: T) -> T\nwhere\n    T: Send,\n", prettyprinter.Signature(sig, "", true))
}
