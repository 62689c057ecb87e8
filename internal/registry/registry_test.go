package registry_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/boundstore/internal/ast"
	"github.com/funvibe/boundstore/internal/diagnostics"
	"github.com/funvibe/boundstore/internal/parser"
	"github.com/funvibe/boundstore/internal/prettyprinter"
	"github.com/funvibe/boundstore/internal/registry"
	"github.com/funvibe/boundstore/internal/token"
)

func decls(t *testing.T, src string) []*ast.BoundDecl {
	t.Helper()
	d, err := parser.ParseBoundDecls(src, token.Pos{Line: 1, Column: 1})
	require.NoError(t, err)
	return d
}

func span(line int) token.Span {
	return token.Span{Start: token.Pos{Line: line, Column: 1}, End: token.Pos{Line: line, Column: 10}}
}

func TestRegisterAndLookup(t *testing.T) {
	r := registry.New("lib.rs")
	require.False(t, r.Registered())

	err := r.Register(span(1), decls(t, "Polygon => <'a,F:'a+Float,P:Polygon<'a,F>>; Filter => <T> where T:Clone"))
	require.NoError(t, err)
	assert.True(t, r.Registered())
	assert.Equal(t, []string{"Polygon", "Filter"}, r.Names())

	entry, err := r.Lookup("Polygon")
	require.NoError(t, err)
	assert.Equal(t, "<'a, F: 'a + Float, P: Polygon<'a, F>>", entry.Generics)
	assert.Equal(t, "", entry.Where)
	assert.Equal(t, "lib.rs", entry.File)

	entry, err = r.Lookup("Filter")
	require.NoError(t, err)
	assert.Equal(t, "<T>", entry.Generics)
	assert.Equal(t, "where T: Clone", entry.Where)
}

func TestRegisterOnlyOnce(t *testing.T) {
	r := registry.New("lib.rs")
	require.NoError(t, r.Register(span(4), decls(t, "A => <T>")))

	err := r.Register(span(8), decls(t, "B => <U>"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, diagnostics.ErrAlreadyRegistered))
	assert.Contains(t, err.Error(), "first registration at 4:1")

	d, ok := diagnostics.AsDiagnostic(err)
	require.True(t, ok)
	assert.Equal(t, diagnostics.ErrB002, d.Code)
	assert.Equal(t, 8, d.Span.Start.Line)

	// the first batch is untouched
	assert.Equal(t, []string{"A"}, r.Names())
	_, err = r.Lookup("B")
	assert.True(t, errors.Is(err, diagnostics.ErrUnknownBound))
}

func TestDuplicateNameRejectsBatch(t *testing.T) {
	r := registry.New("lib.rs")
	err := r.Register(span(1), decls(t, "A => <T>; B => <U>; A => <V>"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, diagnostics.ErrDuplicateName))
	assert.Contains(t, err.Error(), "'A'")

	assert.True(t, r.Registered(), "a failed registration still counts")
	assert.Empty(t, r.Names())

	_, err = r.Lookup("B")
	assert.True(t, errors.Is(err, diagnostics.ErrUnknownBound))

	err = r.Register(span(2), decls(t, "C => <T>"))
	assert.True(t, errors.Is(err, diagnostics.ErrAlreadyRegistered))
}

func TestLookupErrorsAreDistinct(t *testing.T) {
	r := registry.New("lib.rs")
	_, notYet := r.Lookup("Polygon")
	require.Error(t, notYet)
	assert.True(t, errors.Is(notYet, diagnostics.ErrNotYetRegistered))
	assert.False(t, errors.Is(notYet, diagnostics.ErrUnknownBound))

	require.NoError(t, r.Register(span(1), decls(t, "A => <T>, B => <U>")))
	_, unknown := r.Lookup("Polygon")
	require.Error(t, unknown)
	assert.True(t, errors.Is(unknown, diagnostics.ErrUnknownBound))
	assert.False(t, errors.Is(unknown, diagnostics.ErrNotYetRegistered))

	assert.NotEqual(t, notYet.Error(), unknown.Error())
	assert.Contains(t, unknown.Error(), "'Polygon'")
	assert.Contains(t, unknown.Error(), "registered: A, B")
}

func TestLookupErrorDiagnostic(t *testing.T) {
	r := registry.New("lib.rs")
	require.NoError(t, r.Register(span(1), nil))

	_, err := r.Lookup("X")
	var lerr *registry.LookupError
	require.True(t, errors.As(err, &lerr))
	assert.Contains(t, lerr.Error(), "declares no bound sets")

	tok := token.Token{Type: token.IDENT, Lexeme: "X", Literal: "X", Line: 7, Column: 15, Offset: 90}
	d := lerr.Diagnostic("lib.rs", tok)
	assert.Equal(t, diagnostics.ErrB004, d.Code)
	assert.Equal(t, "lib.rs:7:15: B004: could not find bound 'X': the registration declares no bound sets", d.Error())
}

func TestSerializationRoundTrip(t *testing.T) {
	inputs := []string{
		"A => <T>",
		"A => <'a, F: 'a + Float, P: Polygon<'a, F>>",
		"A => <'a: 'b + 'c, 'b, T: ?Sized + for<'x> Fn(&'x u8) -> u8 = Box<dyn Fn()>>",
		"A => <const N: usize = { N * 2 }, T: Into<[u8; N]>>",
		"A => <F: Float, P: Polygon<F>> where for<'a> &'a P: IntoIterator<Item = &'a Point<F>>, P: Clone",
		"A => <T> where <T as Trait>::Out: Send",
	}

	for _, input := range inputs {
		ds := decls(t, input)
		r := registry.New("lib.rs")
		require.NoError(t, r.Register(span(1), ds), input)

		entry, err := r.Lookup("A")
		require.NoError(t, err)
		back, err := entry.Parse()
		require.NoError(t, err, input)

		assert.True(t, ast.EqualGenerics(ds[0].Generics, back), "round trip changed %q", input)
		if diff := cmp.Diff(prettyprinter.Generics(ds[0].Generics), prettyprinter.Generics(back)); diff != "" {
			t.Errorf("%q generics mismatch (-want +got):\n%s", input, diff)
		}
		if diff := cmp.Diff(prettyprinter.WhereClause(ds[0].Generics.Where), prettyprinter.WhereClause(back.Where)); diff != "" {
			t.Errorf("%q where mismatch (-want +got):\n%s", input, diff)
		}
	}
}

func TestCorruptEntry(t *testing.T) {
	entry := &registry.Entry{Name: "Broken", Generics: "<T", File: "lib.rs"}
	_, err := entry.Parse()
	require.Error(t, err)
	assert.True(t, errors.Is(err, diagnostics.ErrCorruptBoundSet))
	assert.Contains(t, err.Error(), "Broken")

	entry = &registry.Entry{Name: "Broken", Generics: "<T>", Where: "T: Clone"}
	_, err = entry.Parse()
	assert.True(t, errors.Is(err, diagnostics.ErrCorruptBoundSet))
}

func TestUnitsAreIndependent(t *testing.T) {
	a, b := registry.New("a.rs"), registry.New("b.rs")
	assert.NotEqual(t, a.ID(), b.ID())

	require.NoError(t, a.Register(span(1), decls(t, "A => <T>")))
	require.NoError(t, b.Register(span(1), decls(t, "B => <U>")))

	_, err := a.Lookup("B")
	assert.True(t, errors.Is(err, diagnostics.ErrUnknownBound))
	_, err = b.Lookup("B")
	assert.NoError(t, err)
}

func TestClaimUsesUpRegistration(t *testing.T) {
	r := registry.New("lib.rs")
	require.NoError(t, r.Claim(span(2)))
	assert.True(t, r.Registered())

	err := r.Register(span(6), decls(t, "A => <T>"))
	assert.ErrorIs(t, err, diagnostics.ErrAlreadyRegistered)
	assert.Contains(t, err.Error(), "first registration at 2:1")

	_, err = r.Lookup("A")
	assert.ErrorIs(t, err, diagnostics.ErrUnknownBound)

	assert.ErrorIs(t, r.Claim(span(9)), diagnostics.ErrAlreadyRegistered)
}

func TestLifetimesAreStoredFirst(t *testing.T) {
	r := registry.New("lib.rs")
	require.NoError(t, r.Register(span(1), decls(t, "A => <T: Clone, 'a, const N: usize, 'b>")))
	entry, err := r.Lookup("A")
	require.NoError(t, err)
	assert.Equal(t, "<'a, 'b, T: Clone, const N: usize>", entry.Generics)
}
