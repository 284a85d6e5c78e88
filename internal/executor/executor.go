package executor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/backmassage/axon/internal/planner"
)

// Executor applies plans. One Executor may run several batches at once as
// long as their paths do not overlap.
type Executor struct {
	fs      FS
	metrics *Metrics
	tracer  trace.Tracer
	now     func() time.Time

	mu     sync.Mutex
	owners map[string]string // path → batch holding it
}

// Option configures an Executor.
type Option func(*Executor)

func WithFS(fsys FS) Option                 { return func(e *Executor) { e.fs = fsys } }
func WithMetrics(m *Metrics) Option         { return func(e *Executor) { e.metrics = m } }
func WithClock(now func() time.Time) Option { return func(e *Executor) { e.now = now } }

// New returns an Executor on the real filesystem unless overridden.
func New(opts ...Option) *Executor {
	e := &Executor{
		fs:     OSFS{},
		tracer: otel.Tracer("github.com/backmassage/axon/internal/executor"),
		now:    time.Now,
		owners: make(map[string]string),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// applied is a rename that has happened and may need undoing.
type applied struct {
	op       int
	step     Step
	from, to string
}

// Execute runs plan in the given mode. A dry run never returns an error;
// its problems are Failed entries in the record. In Apply mode the returned
// record is complete even when an *ExecutionError is returned.
func (e *Executor) Execute(ctx context.Context, plan *planner.Plan, mode Mode) (*Record, error) {
	ctx, span := e.tracer.Start(ctx, "executor.Execute", trace.WithAttributes(
		attribute.String("axon.plan_id", plan.ID),
		attribute.String("axon.mode", mode.String()),
		attribute.Int("axon.operations", len(plan.Operations)),
	))
	defer span.End()

	rec := &Record{
		BatchID:    uuid.NewString(),
		PlanID:     plan.ID,
		Mode:       mode,
		Started:    e.now(),
		Operations: cloneOperations(plan.Operations),
	}
	span.SetAttributes(attribute.String("axon.batch_id", rec.BatchID))
	start := time.Now()
	finish := func(outcome Outcome, err error) (*Record, error) {
		rec.Outcome = outcome
		rec.Finished = e.now()
		e.metrics.observe(rec, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return rec, err
	}

	if mode == DryRun {
		if failures := e.check(rec, plan, true); len(failures) > 0 {
			return finish(Failed, nil)
		}
		return finish(Planned, nil)
	}

	release, err := e.acquire(rec.BatchID, planPaths(plan))
	if err != nil {
		return finish(Failed, &ExecutionError{Kind: ErrOverlappingBatch, BatchID: rec.BatchID, Err: err})
	}
	defer release()

	if failures := e.check(rec, plan, false); len(failures) > 0 {
		return finish(Failed, &ExecutionError{Kind: ErrPreconditionFailed, BatchID: rec.BatchID, Failures: failures})
	}
	if err := e.apply(ctx, rec, plan); err != nil {
		return finish(Failed, err)
	}
	return finish(Applied, nil)
}

// check verifies every operation can run: its source exists, and its target
// is free, vacated by another operation of the plan, or the source itself
// under another spelling. Dry runs log every operation; applies log only
// failures.
func (e *Executor) check(rec *Record, plan *planner.Plan, logAll bool) []OpError {
	sources := make(map[string]int, len(plan.Operations))
	targets := make(map[string]int, len(plan.Operations))
	for i, op := range plan.Operations {
		if _, dup := sources[filepath.Clean(op.Source)]; !dup {
			sources[filepath.Clean(op.Source)] = i
		}
	}

	var failures []OpError
	for i, op := range plan.Operations {
		err := e.checkOp(op, i, sources, targets)
		if err != nil {
			failures = append(failures, OpError{Op: i, Path: op.Source, Err: err})
			rec.log(e.now(), i, StepCheck, op.Source, op.Target, Failed, err)
			continue
		}
		if logAll {
			rec.log(e.now(), i, StepCheck, op.Source, op.Target, Planned, nil)
		}
	}
	return failures
}

func (e *Executor) checkOp(op planner.Operation, i int, sources, targets map[string]int) error {
	src, tgt := filepath.Clean(op.Source), filepath.Clean(op.Target)
	if src == tgt {
		return errors.New("source and target are the same path")
	}
	if j := sources[src]; j != i {
		return fmt.Errorf("source also used by op %d", j)
	}
	if j, dup := targets[tgt]; dup {
		return fmt.Errorf("target %s also claimed by op %d", op.Target, j)
	}
	targets[tgt] = i

	srcInfo, err := e.fs.Lstat(src)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if _, vacated := sources[tgt]; vacated {
		return nil
	}
	tgtInfo, err := e.fs.Lstat(tgt)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("target: %w", err)
	case os.SameFile(srcInfo, tgtInfo):
		// case-only rename on a case-insensitive filesystem
		return nil
	}
	return fmt.Errorf("target %s already exists", op.Target)
}

func (e *Executor) apply(ctx context.Context, rec *Record, plan *planner.Plan) error {
	var done []applied
	undo := func(cause error) error {
		e.metrics.rolledBack()
		var failed []error
		for i := len(done) - 1; i >= 0; i-- {
			d := done[i]
			if err := e.fs.Rename(d.to, d.from); err != nil {
				rec.log(e.now(), d.op, d.step, d.to, d.from, Failed, err)
				failed = append(failed, fmt.Errorf("undo %s -> %s: %w", d.to, d.from, err))
				continue
			}
			rec.log(e.now(), d.op, d.step, d.to, d.from, RolledBack, nil)
		}
		if len(failed) > 0 {
			cause = errors.Join(cause, ErrRollbackIncomplete, errors.Join(failed...))
		}
		return &ExecutionError{Kind: ErrMidBatchFailure, BatchID: rec.BatchID, Err: cause}
	}

	// --- 1. Stage every source under a temporary name ---
	staged := make([]string, len(plan.Operations))
	for i, op := range plan.Operations {
		if err := ctx.Err(); err != nil {
			return undo(err)
		}
		tmp := e.tempName(op.Source, rec.BatchID, i)
		if err := e.fs.Rename(op.Source, tmp); err != nil {
			rec.log(e.now(), i, StepStage, op.Source, tmp, Failed, err)
			return undo(fmt.Errorf("stage %s: %w", op.Source, err))
		}
		rec.log(e.now(), i, StepStage, op.Source, tmp, Applied, nil)
		done = append(done, applied{op: i, step: StepStage, from: op.Source, to: tmp})
		staged[i] = tmp
	}

	// --- 2. Commit staged files to their targets ---
	for i, op := range plan.Operations {
		if err := ctx.Err(); err != nil {
			return undo(err)
		}
		if _, err := e.fs.Lstat(op.Target); err == nil {
			err = fmt.Errorf("target %s appeared during the batch", op.Target)
			rec.log(e.now(), i, StepCommit, staged[i], op.Target, Failed, err)
			return undo(err)
		}
		if err := e.fs.Rename(staged[i], op.Target); err != nil {
			rec.log(e.now(), i, StepCommit, staged[i], op.Target, Failed, err)
			return undo(fmt.Errorf("commit %s: %w", op.Target, err))
		}
		rec.log(e.now(), i, StepCommit, staged[i], op.Target, Applied, nil)
		done = append(done, applied{op: i, step: StepCommit, from: staged[i], to: op.Target})
	}
	return nil
}

// tempName picks an unused hidden name next to source.
func (e *Executor) tempName(source, batch string, i int) string {
	dir, base := filepath.Dir(source), filepath.Base(source)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.axon-%.8s-%d", base, batch, i))
	for n := 1; ; n++ {
		if _, err := e.fs.Lstat(tmp); err != nil {
			return tmp
		}
		tmp = filepath.Join(dir, fmt.Sprintf(".%s.axon-%.8s-%d.%d", base, batch, i, n))
	}
}

func planPaths(plan *planner.Plan) []string {
	paths := make([]string, 0, 2*len(plan.Operations))
	for _, op := range plan.Operations {
		paths = append(paths, op.Source, op.Target)
	}
	return paths
}
