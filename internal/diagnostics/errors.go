package diagnostics

import (
	"errors"
	"fmt"
)

type ErrorCode string

// Parse errors
const (
	ErrP001 ErrorCode = "P001" // syntax error
	ErrP002 ErrorCode = "P002" // undefined reference
	ErrP003 ErrorCode = "P003" // malformed string escape
	ErrP004 ErrorCode = "P004" // malformed number
	ErrP005 ErrorCode = "P005" // nesting too deep
	ErrP006 ErrorCode = "P006" // input too large
)

// Runtime errors
const (
	ErrR001 ErrorCode = "R001" // value is not callable
	ErrR002 ErrorCode = "R002" // unknown primitive
	ErrR003 ErrorCode = "R003" // bad primitive argument
	ErrR004 ErrorCode = "R004" // evaluation too deep
	ErrR005 ErrorCode = "R005" // free variable without a binding
	ErrR006 ErrorCode = "R006" // evaluation cancelled
)

var errorTemplates = map[ErrorCode]string{
	ErrP001: "syntax error: %s",
	ErrP002: "undefined reference: %s is not defined",
	ErrP003: "malformed escape sequence: %s",
	ErrP004: "malformed number: %s",
	ErrP005: "nesting exceeds maximum depth of %d",
	ErrP006: "input of %d bytes exceeds limit of %d",
	ErrR001: "value is not callable: %s",
	ErrR002: "unknown primitive: %s",
	ErrR003: "%s",
	ErrR004: "evaluation exceeds maximum depth of %d",
	ErrR005: "free variable %s has no binding",
	ErrR006: "evaluation cancelled: %v",
}

// Position locates an error in term text. Offset is a byte offset,
// Line and Column are 1-based.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type DiagnosticError struct {
	Code    ErrorCode
	Pos     Position
	Token   string // offending text, if any
	File    string
	Message string
}

func (e *DiagnosticError) Error() string {
	loc := ""
	if e.File != "" {
		loc = e.File + ":"
	}
	if e.Pos.Line > 0 {
		loc += e.Pos.String() + ": "
	} else if loc != "" {
		loc += " "
	}
	return fmt.Sprintf("%serror [%s]: %s", loc, e.Code, e.Message)
}

// NewError formats the template registered for code with args.
func NewError(code ErrorCode, pos Position, token string, args ...interface{}) *DiagnosticError {
	template, ok := errorTemplates[code]
	if !ok {
		template = "%v"
	}
	return &DiagnosticError{
		Code:    code,
		Pos:     pos,
		Token:   token,
		Message: fmt.Sprintf(template, args...),
	}
}

// CodeOf returns the code of the first DiagnosticError in err's chain,
// or "" if there is none.
func CodeOf(err error) ErrorCode {
	var de *DiagnosticError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// IsParseError reports whether err is a parse failure of any kind.
func IsParseError(err error) bool {
	c := CodeOf(err)
	return len(c) > 0 && c[0] == 'P'
}
