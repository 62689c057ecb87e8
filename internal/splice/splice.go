// Package splice merges registered bound sets into a declaration's generics.
//
// For every referenced set, in order: lifetime and const parameters are
// appended as they are, even when the target already declares the same name
// (the host compiler reports the duplicate); a type parameter whose name the
// target already uses has the stored bounds appended to its own; any other type
// parameter is appended; stored where-predicates are appended to the target's
// where-clause, which is created if needed.
package splice

import (
	"errors"
	"fmt"

	"github.com/funvibe/boundstore/internal/ast"
	"github.com/funvibe/boundstore/internal/diagnostics"
	"github.com/funvibe/boundstore/internal/registry"
)

// Splice applies the bound sets named by refs to target, left to right.
// It stops at the first failure; target may then be partially updated.
func Splice(target *ast.Generics, lookup registry.Lookuper, refs []*ast.BoundRef) error {
	for _, ref := range refs {
		if err := spliceOne(target, lookup, ref); err != nil {
			return err
		}
	}
	return nil
}

// SpliceSignature applies refs to the generics of sig.
func SpliceSignature(sig *ast.Signature, lookup registry.Lookuper, refs []*ast.BoundRef) error {
	if sig.Generics == nil {
		sig.Generics = &ast.Generics{}
	}
	return Splice(sig.Generics, lookup, refs)
}

func spliceOne(target *ast.Generics, lookup registry.Lookuper, ref *ast.BoundRef) error {
	entry, err := lookup.Lookup(ref.Name)
	if err != nil {
		var lerr *registry.LookupError
		if errors.As(err, &lerr) {
			return lerr.Diagnostic(fileOf(lookup), ref.Token)
		}
		return err
	}

	stored, err := entry.Parse()
	if err != nil {
		return err
	}

	for _, param := range stored.Params {
		if err := mergeParam(target, param); err != nil {
			d := diagnostics.NewError(diagnostics.ErrB006, ref.Token, "bound '%s': %v", ref.Name, err)
			d.File = fileOf(lookup)
			return d
		}
	}

	if stored.Where != nil && len(stored.Where.Predicates) > 0 {
		where := target.MakeWhereClause()
		where.Predicates = append(where.Predicates, stored.Where.Predicates...)
	}
	return nil
}

func mergeParam(target *ast.Generics, param ast.GenericParam) error {
	switch p := param.(type) {
	case *ast.LifetimeParam, *ast.ConstParam:
		target.Params = append(target.Params, p)
	case *ast.TypeParam:
		if existing := target.TypeParam(p.Name); existing != nil {
			existing.Bounds = append(existing.Bounds, p.Bounds...)
		} else {
			target.Params = append(target.Params, p)
		}
	default:
		return fmt.Errorf("unsupported generic parameter kind %T", param)
	}
	return nil
}

func fileOf(lookup registry.Lookuper) string {
	if r, ok := lookup.(interface{ File() string }); ok {
		return r.File()
	}
	return ""
}
