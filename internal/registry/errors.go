package registry

import (
	"fmt"
	"strings"

	"github.com/funvibe/boundstore/internal/diagnostics"
	"github.com/funvibe/boundstore/internal/token"
)

// LookupError is returned by Lookup. It carries no source position; callers
// anchor it at the reference with Diagnostic.
type LookupError struct {
	Code  diagnostics.ErrorCode // ErrB004 or ErrB005
	Name  string
	Known []string
}

func (e *LookupError) Error() string {
	if e.Code == diagnostics.ErrB005 {
		return fmt.Sprintf("bound '%s' is used before any bounds were registered", e.Name)
	}
	if len(e.Known) == 0 {
		return fmt.Sprintf("could not find bound '%s': the registration declares no bound sets", e.Name)
	}
	return fmt.Sprintf("could not find bound '%s' (registered: %s)", e.Name, strings.Join(e.Known, ", "))
}

func (e *LookupError) Unwrap() error {
	return diagnostics.Kind(e.Code)
}

// Diagnostic anchors the failure at tok in file.
func (e *LookupError) Diagnostic(file string, tok token.Token) *diagnostics.DiagnosticError {
	d := diagnostics.NewError(e.Code, tok, "%s", e.Error())
	d.File = file
	return d
}
