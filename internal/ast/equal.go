package ast

// EqualGenerics reports whether a and b describe the same parameters, bounds
// and predicates in the same order. Source positions are ignored.
func EqualGenerics(a, b *Generics) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if !equalParam(a.Params[i], b.Params[i]) {
			return false
		}
	}
	return EqualWhere(a.Where, b.Where)
}

// EqualWhere compares two where-clauses; nil and empty are distinct.
func EqualWhere(a, b *WhereClause) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Predicates) != len(b.Predicates) {
		return false
	}
	for i := range a.Predicates {
		if !EqualRuns(a.Predicates[i].Tokens, b.Predicates[i].Tokens) {
			return false
		}
	}
	return true
}

// EqualRuns compares token types and lexemes.
func EqualRuns(a, b TokenRun) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Type != b[i].Type || a[i].Lexeme != b[i].Lexeme {
			return false
		}
	}
	return true
}

func equalParam(a, b GenericParam) bool {
	switch pa := a.(type) {
	case *LifetimeParam:
		pb, ok := b.(*LifetimeParam)
		return ok && pa.Name == pb.Name && EqualRuns(pa.Bounds, pb.Bounds)
	case *TypeParam:
		pb, ok := b.(*TypeParam)
		if !ok || pa.Name != pb.Name || len(pa.Bounds) != len(pb.Bounds) || !EqualRuns(pa.Default, pb.Default) {
			return false
		}
		for i := range pa.Bounds {
			if !equalBound(pa.Bounds[i], pb.Bounds[i]) {
				return false
			}
		}
		return true
	case *ConstParam:
		pb, ok := b.(*ConstParam)
		return ok && pa.Name == pb.Name && EqualRuns(pa.Type, pb.Type) && EqualRuns(pa.Default, pb.Default)
	default:
		return false
	}
}

func equalBound(a, b Bound) bool {
	switch ba := a.(type) {
	case *LifetimeBound:
		bb, ok := b.(*LifetimeBound)
		return ok && ba.Token.Lexeme == bb.Token.Lexeme
	case *TraitBound:
		bb, ok := b.(*TraitBound)
		return ok && EqualRuns(ba.Tokens, bb.Tokens)
	default:
		return false
	}
}
