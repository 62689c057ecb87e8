// Package registry stores named bound sets for one compilation unit.
//
// Entries are kept as canonical source text rather than syntax trees: a bound
// set is serialized once when it is registered and parsed again every time it is
// applied, so no syntax node outlives the parse that produced it.
package registry

import (
	"github.com/google/uuid"

	"github.com/funvibe/boundstore/internal/ast"
	"github.com/funvibe/boundstore/internal/diagnostics"
	"github.com/funvibe/boundstore/internal/parser"
	"github.com/funvibe/boundstore/internal/prettyprinter"
	"github.com/funvibe/boundstore/internal/token"
)

// Entry is a registered bound set.
type Entry struct {
	Name     string
	Generics string     // canonical `<...>` text, "" when the set declares no parameters
	Where    string     // canonical `where ...` text, "" when absent
	Origin   token.Span // span of the name in the registration
	File     string
}

// Lookuper resolves bound-set names.
type Lookuper interface {
	Lookup(name string) (*Entry, error)
}

// Registry is the write-once table of one compilation unit. It is populated by
// at most one Register call and read-only afterwards.
//
// A Registry is not safe for concurrent use. Units that run in parallel must each
// own their registry.
type Registry struct {
	id         uuid.UUID
	file       string
	registered bool
	regSpan    token.Span
	entries    map[string]*Entry
	order      []string
}

// New creates an empty registry for the unit compiled from file.
func New(file string) *Registry {
	return &Registry{
		id:      uuid.New(),
		file:    file,
		entries: make(map[string]*Entry),
	}
}

// ID identifies the compilation unit owning the registry.
func (r *Registry) ID() uuid.UUID { return r.id }

// File is the unit's source path, used to attribute diagnostics.
func (r *Registry) File() string { return r.file }

// Registered reports whether Register has been called.
func (r *Registry) Registered() bool { return r.registered }

// Names lists registered bound sets in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Register records a batch of bound sets. It may be called once per registry;
// at stands for the whole registration and anchors the AlreadyRegistered diagnostic.
// The batch is all-or-nothing, but a failed call still counts as the registration.
func (r *Registry) Register(at token.Span, decls []*ast.BoundDecl) error {
	if err := r.Claim(at); err != nil {
		return err
	}

	batch := make(map[string]*Entry, len(decls))
	order := make([]string, 0, len(decls))
	for _, decl := range decls {
		if prev, dup := batch[decl.Name]; dup {
			err := diagnostics.NewError(diagnostics.ErrB003, decl.Token,
				"bound '%s' is declared more than once in this registration; first declared at %d:%d",
				decl.Name, prev.Origin.Start.Line, prev.Origin.Start.Column)
			err.File = r.file
			return err
		}
		entry, err := r.serialize(decl)
		if err != nil {
			return err
		}
		batch[decl.Name] = entry
		order = append(order, decl.Name)
	}

	r.entries = batch
	r.order = order
	return nil
}

// Claim uses up the unit's registration without storing anything. It stands
// for a registration whose body could not be parsed, so that it counts like
// any other failed Register call.
func (r *Registry) Claim(at token.Span) error {
	if r.registered {
		err := diagnostics.NewSpanError(diagnostics.ErrB002, at,
			"bounds can only be registered once per compilation unit; first registration at %d:%d",
			r.regSpan.Start.Line, r.regSpan.Start.Column)
		err.File = r.file
		return err
	}
	r.registered = true
	r.regSpan = at
	return nil
}

// serialize renders decl to canonical text and checks that the text parses back
// to the same parameters and predicates.
func (r *Registry) serialize(decl *ast.BoundDecl) (*Entry, error) {
	entry := &Entry{
		Name:     decl.Name,
		Generics: prettyprinter.Generics(decl.Generics),
		Where:    prettyprinter.WhereClause(decl.Generics.Where),
		Origin:   token.SpanOf(decl.Token, decl.Token),
		File:     r.file,
	}
	back, err := entry.Parse()
	if err != nil {
		return nil, err
	}
	if !ast.EqualGenerics(normalize(decl.Generics), normalize(back)) {
		cerr := diagnostics.NewError(diagnostics.ErrB006, decl.Token,
			"bound '%s' does not survive serialization: stored as %q %q", decl.Name, entry.Generics, entry.Where)
		cerr.File = r.file
		return nil, cerr
	}
	return entry, nil
}

// Lookup returns the bound set called name.
func (r *Registry) Lookup(name string) (*Entry, error) {
	if !r.registered {
		return nil, &LookupError{Code: diagnostics.ErrB005, Name: name}
	}
	entry, ok := r.entries[name]
	if !ok {
		return nil, &LookupError{Code: diagnostics.ErrB004, Name: name, Known: r.Names()}
	}
	return entry, nil
}

// Parse re-parses the stored text. Failures are CorruptBoundSet diagnostics
// describing the stored entry.
func (e *Entry) Parse() (*ast.Generics, error) {
	g, err := parser.ParseGenerics(e.Generics, token.Pos{Line: 1, Column: 1})
	if err != nil {
		return nil, e.corrupt("generics", e.Generics, err)
	}
	w, err := parser.ParseWhereClause(e.Where, token.Pos{Line: 1, Column: 1})
	if err != nil {
		return nil, e.corrupt("where clause", e.Where, err)
	}
	g.Where = w
	return g, nil
}

func (e *Entry) corrupt(part, text string, cause error) error {
	err := diagnostics.NewSpanError(diagnostics.ErrB006, e.Origin,
		"stored %s of bound '%s' cannot be parsed (%q): %v", part, e.Name, text, cause)
	err.File = e.File
	return err
}

// normalize puts g in the form the printer emits: lifetimes first, and an empty
// `where` (printed as "where", parsed back as an empty clause) dropped, since
// it splices the same way as no clause at all.
func normalize(g *ast.Generics) *ast.Generics {
	if g == nil {
		return nil
	}
	c := *g
	c.Params = g.LifetimesFirst()
	if c.Where != nil && len(c.Where.Predicates) == 0 {
		c.Where = nil
	}
	return &c
}
