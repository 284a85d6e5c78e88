package executor

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrMidBatchFailure    = errors.New("batch failed mid-flight")
	ErrRollbackIncomplete = errors.New("rollback incomplete")
	ErrOverlappingBatch   = errors.New("batch overlaps a running batch")
	ErrNotRevertible      = errors.New("record cannot be reverted")
)

// OpError is a failure tied to one operation of the plan.
type OpError struct {
	Op   int
	Path string
	Err  error
}

func (e OpError) Error() string { return fmt.Sprintf("op %d (%s): %v", e.Op, e.Path, e.Err) }

// ExecutionError reports a batch that did not apply. It matches its Kind
// with errors.Is, and also the underlying cause when there is one.
type ExecutionError struct {
	Kind     error
	BatchID  string
	Failures []OpError
	Err      error
}

func (e *ExecutionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "batch %s: %v", e.BatchID, e.Kind)
	for _, f := range e.Failures {
		b.WriteString("; ")
		b.WriteString(f.Error())
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ExecutionError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
