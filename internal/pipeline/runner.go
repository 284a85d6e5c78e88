package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/backmassage/axon/internal/executor"
	"github.com/backmassage/axon/internal/journal"
	"github.com/backmassage/axon/internal/naming"
	"github.com/backmassage/axon/internal/planner"
	"github.com/backmassage/axon/internal/probe"
)

// ErrPreviewFailed is returned when the dry run of a plan finds operations
// whose preconditions do not hold; nothing is renamed.
var ErrPreviewFailed = errors.New("plan cannot be applied")

// ErrNoMatches is returned by Migrate when no file follows the source
// pattern.
var ErrNoMatches = errors.New("no files match the pattern")

// ConfirmFunc asks the user whether to go ahead with plan.
type ConfirmFunc func(prompt string, plan *planner.Plan) (bool, error)

// Outcome is what a refactor, retry or rollback did.
type Outcome struct {
	Plan *planner.Plan
	// Preview is the dry-run record; every run has one unless the plan is
	// empty.
	Preview *executor.Record
	// Record is the applied batch; nil for dry runs and declined prompts.
	Record   *executor.Record
	Declined bool
	Stats    RunStats
}

// Refactor validates the corpus, plans renames for every non-conforming
// file, previews them, and applies them after confirmation. Applied and
// failed batches are journaled.
func (e *Engine) Refactor(ctx context.Context, confirm ConfirmFunc) (*Outcome, error) {
	ctx, span := e.tracer.Start(ctx, "pipeline.Refactor")
	defer span.End()

	// --- Discover and validate ---
	d, err := e.discover(ctx)
	if err != nil {
		return nil, err
	}
	results, err := naming.ValidateAllContext(ctx, e.pattern, d.Candidates)
	if err != nil {
		return nil, err
	}
	out := &Outcome{Stats: RunStats{Checked: d.Total(), Exempt: len(d.Exempt)}}
	for _, r := range results {
		if r.Matched {
			out.Stats.Conforming++
		}
	}
	e.log.Info("Analyzing %d files (%d conforming, %d exempt)", out.Stats.Checked, out.Stats.Conforming, out.Stats.Exempt)

	// --- Plan ---
	plan, err := planner.Build(e.pattern, results, planner.Policy{
		OnConflict:    e.policy,
		Defaults:      e.cfg.Defaults,
		Existing:      d.Snapshot.Paths(),
		DropStrayText: e.cfg.DropStrayText,
	})
	if err != nil {
		return out, fail(span, err)
	}
	err = e.apply(ctx, span, out, plan, confirm)
	return out, fail(span, err)
}

// Migrate renames every file that follows cfg.From so that it follows
// cfg.To, carrying field values across. Both patterns must capture the
// same fields. Files that do not follow cfg.From are left alone.
func (e *Engine) Migrate(ctx context.Context, confirm ConfirmFunc) (*Outcome, error) {
	ctx, span := e.tracer.Start(ctx, "pipeline.Migrate")
	defer span.End()

	opts := PatternOptions(e.cfg)
	from, err := e.cache.Compile(e.cfg.From, opts)
	if err != nil {
		return nil, fail(span, err)
	}
	to, err := e.cache.Compile(e.cfg.To, opts)
	if err != nil {
		return nil, fail(span, err)
	}
	if err := planner.CheckFields(from, to); err != nil {
		return nil, fail(span, err)
	}

	d, err := e.discover(ctx)
	if err != nil {
		return nil, err
	}
	results, err := naming.ValidateAllContext(ctx, from, d.Candidates)
	if err != nil {
		return nil, err
	}
	out := &Outcome{Stats: RunStats{Checked: d.Total(), Exempt: len(d.Exempt)}}
	for _, r := range results {
		if r.Matched {
			out.Stats.Conforming++
		}
	}
	if out.Stats.Conforming == 0 {
		return out, fail(span, fmt.Errorf("%w %q", ErrNoMatches, from.Source()))
	}
	e.log.Info("Matched %d file(s) of %d", out.Stats.Conforming, out.Stats.Checked)
	if out.Stats.Exempt > 0 {
		e.log.Info("Skipped %d file(s) (exempt)", out.Stats.Exempt)
	}
	if n := len(results) - out.Stats.Conforming; n > 0 {
		e.log.Info("Skipped %d file(s) (non-matching)", n)
	}

	plan, err := planner.Migrate(from, to, results, planner.Policy{
		OnConflict: e.policy,
		Existing:   d.Snapshot.Paths(),
	})
	if err != nil {
		return out, fail(span, err)
	}
	err = e.apply(ctx, span, out, plan, confirm)
	return out, fail(span, err)
}

// apply reports plan, then previews, confirms and applies it unless it is
// empty.
func (e *Engine) apply(ctx context.Context, span trace.Span, out *Outcome, plan *planner.Plan, confirm ConfirmFunc) error {
	out.Plan = plan
	out.Stats.Planned = len(plan.Operations)
	out.Stats.Skipped = len(plan.Skipped)
	span.SetAttributes(attribute.String("axon.plan_id", plan.ID), attribute.Int("axon.operations", len(plan.Operations)))
	for _, s := range plan.Skipped {
		e.log.Warn("Skip %s: %s", probe.Relative(e.cfg.NotesDir, s.Path), s.Reason)
	}
	if plan.Empty() {
		e.log.Success("No changes to apply")
		return nil
	}
	return e.run(ctx, out, confirm, fmt.Sprintf("Rename %d file(s)?", len(plan.Operations)))
}

// Retry re-runs the plan of the newest failed batch in the journal. The
// old entry is dropped once the plan has been applied again, whatever the
// new outcome.
func (e *Engine) Retry(ctx context.Context, confirm ConfirmFunc) (*Outcome, error) {
	ctx, span := e.tracer.Start(ctx, "pipeline.Retry")
	defer span.End()

	if e.journal == nil {
		return nil, ErrNoJournal
	}
	entry, err := e.journal.Latest(ctx, journal.Failed)
	if err != nil {
		return nil, fail(span, fmt.Errorf("no failed batch to retry: %w", err))
	}
	span.SetAttributes(attribute.String("axon.retry_of", entry.BatchID()))
	e.log.Info("Retrying batch %s from %s", entry.BatchID(), entry.SavedAt.Format(time.DateTime))

	out := &Outcome{Plan: entry.Plan, Stats: RunStats{Planned: len(entry.Plan.Operations)}}
	err = e.run(ctx, out, confirm, fmt.Sprintf("Retry %d rename(s)?", len(entry.Plan.Operations)))
	if out.Record != nil {
		if rerr := e.journal.Remove(ctx, entry.BatchID()); rerr != nil {
			e.log.Warn("Could not drop retried batch from journal: %v", rerr)
		}
	}
	return out, fail(span, err)
}

// Rollback reverts the newest applied batch in the journal and drops it
// from the journal when the revert succeeds.
func (e *Engine) Rollback(ctx context.Context, confirm ConfirmFunc) (*Outcome, error) {
	ctx, span := e.tracer.Start(ctx, "pipeline.Rollback")
	defer span.End()

	if e.journal == nil {
		return nil, ErrNoJournal
	}
	entry, err := e.journal.Latest(ctx, journal.Applied)
	if err != nil {
		return nil, fail(span, fmt.Errorf("nothing to roll back: %w", err))
	}
	span.SetAttributes(attribute.String("axon.rollback_of", entry.BatchID()))

	out := &Outcome{Plan: planner.Invert(entry.Record.Applied())}
	out.Stats.Planned = len(out.Plan.Operations)
	if err := e.preview(ctx, out); err != nil {
		return out, fail(span, err)
	}
	if ok, err := e.confirm(confirm, fmt.Sprintf("Roll back %d rename(s) from %s?", out.Stats.Planned, entry.SavedAt.Format(time.DateTime)), out); !ok || err != nil {
		return out, fail(span, err)
	}

	rec, err := e.exec.Revert(ctx, entry.Record)
	out.Record = rec
	out.Stats.absorb(rec)
	if err != nil {
		return out, fail(span, err)
	}
	if err := e.journal.Remove(ctx, entry.BatchID()); err != nil {
		e.log.Warn("Rolled back, but could not drop batch from journal: %v", err)
	}
	e.log.Success("Rolled back %d rename(s)", out.Stats.Renamed)
	return out, nil
}

// run previews out.Plan, asks for confirmation, applies it and journals
// the batch.
func (e *Engine) run(ctx context.Context, out *Outcome, confirm ConfirmFunc, prompt string) error {
	err := e.preview(ctx, out)
	if e.cfg.DryRun && errors.Is(err, ErrPreviewFailed) {
		e.log.Warn("Dry run: %v", err)
		return nil
	}
	if err != nil {
		return err
	}
	if e.cfg.DryRun {
		e.log.Info("Dry run: no changes made")
		return nil
	}
	if ok, err := e.confirm(confirm, prompt, out); !ok || err != nil {
		return err
	}

	rec, err := e.exec.Execute(ctx, out.Plan, executor.Apply)
	out.Record = rec
	out.Stats.absorb(rec)
	e.save(ctx, out.Plan, rec)
	if err != nil {
		return err
	}
	e.log.Success("Renamed %d file(s)", out.Stats.Renamed)
	return nil
}

func (e *Engine) preview(ctx context.Context, out *Outcome) error {
	preview, err := e.exec.Execute(ctx, out.Plan, executor.DryRun)
	if err != nil {
		return err
	}
	out.Preview = preview
	if preview.Outcome == executor.Failed {
		n := preview.Count()[executor.Failed]
		out.Stats.Failed += n
		return fmt.Errorf("%w: %d operation(s) fail their preconditions", ErrPreviewFailed, n)
	}
	return nil
}

func (e *Engine) confirm(confirm ConfirmFunc, prompt string, out *Outcome) (bool, error) {
	if e.cfg.Yes || confirm == nil {
		return true, nil
	}
	ok, err := confirm(prompt, out.Plan)
	if err != nil {
		return false, err
	}
	if !ok {
		out.Declined = true
		e.log.Info("Aborted; nothing renamed")
	}
	return ok, nil
}

// save journals an applied batch. Journal problems never fail the batch.
func (e *Engine) save(ctx context.Context, plan *planner.Plan, rec *executor.Record) {
	if e.journal == nil || rec == nil {
		return
	}
	entry := journal.Entry{Plan: plan, Record: rec, SavedAt: time.Now()}
	if err := e.journal.Save(ctx, entry); err != nil {
		e.log.Warn("Could not journal batch %s: %v", rec.BatchID, err)
		return
	}
	e.log.Debug("Journaled batch %s (%s)", rec.BatchID, rec.Outcome)
}

func fail(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
