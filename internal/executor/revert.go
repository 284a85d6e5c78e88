package executor

import (
	"context"
	"fmt"

	"github.com/backmassage/axon/internal/planner"
)

// Revert undoes an applied batch by running the inverse renames as a new
// batch. Only records of fully applied batches can be reverted; failed
// batches were already rolled back.
func (e *Executor) Revert(ctx context.Context, rec *Record) (*Record, error) {
	if rec == nil || rec.Mode != Apply || rec.Outcome != Applied {
		return nil, fmt.Errorf("%w: batch outcome is not %s", ErrNotRevertible, Applied)
	}
	ops := rec.Applied()
	if len(ops) == 0 {
		return nil, fmt.Errorf("%w: batch %s renamed nothing", ErrNotRevertible, rec.BatchID)
	}
	return e.Execute(ctx, planner.Invert(ops), Apply)
}
