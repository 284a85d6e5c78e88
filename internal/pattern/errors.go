package pattern

import (
	"errors"
	"fmt"
)

// Sentinel errors for compile failures. A *CompileError unwraps to one of
// these so callers can test with errors.Is.
var (
	ErrEmptyPattern            = errors.New("empty pattern")
	ErrUnknownFieldType        = errors.New("unknown field type")
	ErrDuplicateFieldName      = errors.New("duplicate field name")
	ErrAmbiguousGreedySequence = errors.New("ambiguous greedy sequence")
	ErrUnterminatedCapture     = errors.New("unterminated capture")
	ErrUnbalancedBrace         = errors.New("unbalanced brace")
	ErrInvalidFieldName        = errors.New("invalid field name")
	ErrMissingValueSet         = errors.New("missing value set")
	ErrInvalidFieldArgs        = errors.New("invalid field arguments")
)

// Errors returned by value handling on a compiled pattern.
var (
	ErrUnrepairable = errors.New("value cannot be repaired")
	ErrMissingValue = errors.New("missing value for mandatory field")
	ErrValueType    = errors.New("value type does not match field")
)

// CompileError reports a pattern that could not be compiled, with the byte
// offset in the source where the problem was detected.
type CompileError struct {
	Kind   error
	Source string
	Offset int
	Detail string
}

func (e *CompileError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("pattern %q: %v at offset %d", e.Source, e.Kind, e.Offset)
	}
	return fmt.Sprintf("pattern %q: %v at offset %d: %s", e.Source, e.Kind, e.Offset, e.Detail)
}

func (e *CompileError) Unwrap() error { return e.Kind }

func compileErr(kind error, src string, off int, format string, args ...any) *CompileError {
	return &CompileError{Kind: kind, Source: src, Offset: off, Detail: fmt.Sprintf(format, args...)}
}
