package prettyprinter_test

import (
	"testing"

	"github.com/funvibe/boundstore/internal/parser"
	"github.com/funvibe/boundstore/internal/prettyprinter"
	"github.com/funvibe/boundstore/internal/token"
)

var origin = token.Pos{Line: 1, Column: 1}

func TestCanonicalGenerics(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"<T>", "<T>"},
		{"<'a,F:'a+Float,P:Polygon<'a,F>>", "<'a, F: 'a + Float, P: Polygon<'a, F>>"},
		{"<'a: 'b + 'c, 'b>", "<'a: 'b + 'c, 'b>"},
		{"<T: ?Sized + std::fmt::Debug>", "<T: ?Sized + std::fmt::Debug>"},
		{"<F: Fn(u8)->u8>", "<F: Fn(u8) -> u8>"},
		{"<T: Iterator<Item=u8>=std::vec::IntoIter<u8>>", "<T: Iterator<Item = u8> = std::vec::IntoIter<u8>>"},
		{"<const N: usize = {N * 2}>", "<const N: usize = {N * 2}>"},
		{"<T: for<'a> Fn(&'a mut T) + Send>", "<T: for<'a> Fn(&'a mut T) + Send>"},
		{"<T: Into<[u8; 4]>>", "<T: Into<[u8; 4]>>"},
		{"<T, 'a, const N: usize, 'b: 'a, U>", "<'a, 'b: 'a, T, const N: usize, U>"},
	}

	for _, tt := range tests {
		g, err := parser.ParseGenerics(tt.input, origin)
		if err != nil {
			t.Fatalf("%q: %v", tt.input, err)
		}
		if got := prettyprinter.Generics(g); got != tt.expected {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestCanonicalWhereClause(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"where", "where"},
		{"where T:Clone,U:Send", "where T: Clone, U: Send"},
		{"where for<'a>&'a P:IntoIterator<Item=&'a Point<F>>", "where for<'a> &'a P: IntoIterator<Item = &'a Point<F>>"},
		{"where <T as Trait>::Out: Clone", "where <T as Trait>::Out: Clone"},
		{"where Box<dyn Fn() + Send>: Sized", "where Box<dyn Fn() + Send>: Sized"},
	}

	for _, tt := range tests {
		w, err := parser.ParseWhereClause(tt.input, origin)
		if err != nil {
			t.Fatalf("%q: %v", tt.input, err)
		}
		if got := prettyprinter.WhereClause(w); got != tt.expected {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestSignatureLayout(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		indent   string
		hasBody  bool
		expected string
	}{
		{
			name:     "no where, body",
			input:    "fn area<T>(p: T) -> u8",
			hasBody:  true,
			expected: "fn area<T>(p: T) -> u8 ",
		},
		{
			name:     "no where, no body",
			input:    "pub fn area(p: T)",
			expected: "pub fn area(p: T)",
		},
		{
			name:     "where, body",
			input:    "fn area<T>(p: T) where T: Clone, T: Send",
			hasBody:  true,
			expected: "fn area<T>(p: T)\nwhere\n    T: Clone,\n    T: Send,\n",
		},
		{
			name:     "where, no body, indented",
			input:    "fn area<T>(&self, p: T) -> T where T: Clone, T: Send",
			indent:   "    ",
			expected: "fn area<T>(&self, p: T) -> T\n    where\n        T: Clone,\n        T: Send",
		},
		{
			name:     "comments in parameters are kept",
			input:    "fn area<T /* shape */>(p: T /* polygon */) where T: Clone /* more */",
			hasBody:  true,
			expected: "fn area<T>(p: T /* polygon */)\nwhere\n    T: Clone,\n",
		},
		{
			name:     "empty where is dropped",
			input:    "fn area<T>(p: T) where",
			hasBody:  true,
			expected: "fn area<T>(p: T) ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := parser.ParseSignature(tt.input, origin)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got := prettyprinter.Signature(sig, tt.indent, tt.hasBody); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
