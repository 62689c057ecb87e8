package diagnostics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"

	"github.com/funvibe/boundstore/internal/token"
)

type ErrorCode string

const (
	ErrB001 ErrorCode = "B001" // syntax error
	ErrB002 ErrorCode = "B002" // registration invoked more than once
	ErrB003 ErrorCode = "B003" // duplicate name in one registration
	ErrB004 ErrorCode = "B004" // unknown bound set
	ErrB005 ErrorCode = "B005" // application before any registration
	ErrB006 ErrorCode = "B006" // stored bound set does not re-parse
)

// Sentinel kinds, matched with errors.Is against any *DiagnosticError.
var (
	ErrSyntax            = errors.New("syntax error")
	ErrAlreadyRegistered = errors.New("bounds already registered")
	ErrDuplicateName     = errors.New("duplicate bound name")
	ErrUnknownBound      = errors.New("unknown bound")
	ErrNotYetRegistered  = errors.New("bounds not yet registered")
	ErrCorruptBoundSet   = errors.New("corrupt bound set")
)

var kinds = map[ErrorCode]error{
	ErrB001: ErrSyntax,
	ErrB002: ErrAlreadyRegistered,
	ErrB003: ErrDuplicateName,
	ErrB004: ErrUnknownBound,
	ErrB005: ErrNotYetRegistered,
	ErrB006: ErrCorruptBoundSet,
}

// Kind returns the sentinel error for code, or nil.
func Kind(code ErrorCode) error {
	return kinds[code]
}

// DiagnosticError is a compile-time failure attributable to a source span.
type DiagnosticError struct {
	Code    ErrorCode
	File    string
	Span    token.Span
	Message string
	Token   token.Token
}

// NewError creates a diagnostic anchored at tok.
func NewError(code ErrorCode, tok token.Token, format string, args ...any) *DiagnosticError {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &DiagnosticError{
		Code:    code,
		Span:    token.SpanOf(tok, tok),
		Message: msg,
		Token:   tok,
	}
}

// NewSpanError creates a diagnostic covering span.
func NewSpanError(code ErrorCode, span token.Span, format string, args ...any) *DiagnosticError {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &DiagnosticError{Code: code, Span: span, Message: msg}
}

func (e *DiagnosticError) Error() string {
	loc := fmt.Sprintf("%d:%d", e.Span.Start.Line, e.Span.Start.Column)
	if e.File != "" {
		loc = e.File + ":" + loc
	}
	return fmt.Sprintf("%s: %s: %s", loc, e.Code, e.Message)
}

// Unwrap exposes the sentinel kind of the error code.
func (e *DiagnosticError) Unwrap() error {
	return kinds[e.Code]
}

// Summary is the short headline used when rendering.
func (e *DiagnosticError) Summary() string {
	if kind, ok := kinds[e.Code]; ok {
		s := kind.Error()
		return fmt.Sprintf("%s [%s]", strings.ToUpper(s[:1])+s[1:], e.Code)
	}
	return string(e.Code)
}

// Range converts the span into an HCL source range.
func (e *DiagnosticError) Range() hcl.Range {
	return hcl.Range{
		Filename: e.File,
		Start:    hcl.Pos{Line: e.Span.Start.Line, Column: e.Span.Start.Column, Byte: e.Span.Start.Offset},
		End:      hcl.Pos{Line: e.Span.End.Line, Column: e.Span.End.Column, Byte: e.Span.End.Offset},
	}
}

// HCL converts the error into an HCL diagnostic for rendering.
func (e *DiagnosticError) HCL() *hcl.Diagnostic {
	rng := e.Range()
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  e.Summary(),
		Detail:   e.Message,
		Subject:  rng.Ptr(),
	}
}

// AsDiagnostic extracts a *DiagnosticError from err, if there is one.
func AsDiagnostic(err error) (*DiagnosticError, bool) {
	var de *DiagnosticError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
