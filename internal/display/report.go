package display

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/backmassage/axon/internal/executor"
	"github.com/backmassage/axon/internal/pipeline"
	"github.com/backmassage/axon/internal/planner"
	"github.com/backmassage/axon/internal/probe"
	"github.com/backmassage/axon/internal/term"
)

// PreviewLimit is how many renames a preview shows before summarizing.
const PreviewLimit = 3

// JSON writes v indented.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Health prints a health report. With quiet only failures are listed.
func Health(w io.Writer, r *pipeline.HealthReport, quiet bool) {
	failures := r.InvalidFiles
	if r.Strict {
		failures = append(append([]pipeline.FileEntry{}, r.InvalidFiles...), r.ExemptFiles...)
	}
	if quiet {
		for _, f := range failures {
			fmt.Fprintf(w, "%s (%s)\n", f.File, f.Detail)
		}
		return
	}

	fmt.Fprintf(w, "Checking %s against %s\n\n", Plural(r.Checked, "file"), term.Styles.Bold.Render(r.Pattern))
	fmt.Fprintf(w, "Valid:   %d\n", r.Valid)
	fmt.Fprintf(w, "Invalid: %d\n", r.Invalid)
	if !r.Strict {
		fmt.Fprintf(w, "Exempt:  %d\n", r.Exempt)
	}
	if len(failures) > 0 {
		fmt.Fprintln(w, "\nInvalid files:")
		for _, f := range failures {
			fmt.Fprintf(w, "  - %s (%s)\n", f.File, f.Detail)
		}
	}
	if !r.Strict && len(r.ExemptFiles) > 0 {
		fmt.Fprintln(w, "\nExempt files:")
		for _, f := range r.ExemptFiles {
			fmt.Fprintf(w, "  - %s (%s)\n", f.File, f.Detail)
		}
	}
	if r.OK() {
		fmt.Fprintln(w, "\nHealth: "+term.Styles.Success.Render("OK"))
	} else {
		fmt.Fprintln(w, "\nHealth: "+term.Styles.Error.Render("FAIL"))
	}
}

// Verdicts prints one block per validated file, pointing at each
// violation.
func Verdicts(w io.Writer, root string, vs []pipeline.Verdict) {
	for _, v := range vs {
		name := probe.Relative(root, v.Path)
		switch {
		case v.Exempt != "":
			fmt.Fprintf(w, "%s %s (exempt: %s)\n", term.Styles.Success.Render("valid"), name, v.Exempt)
		case v.Matched:
			fmt.Fprintf(w, "%s %s\n", term.Styles.Success.Render("valid"), name)
		default:
			fmt.Fprintf(w, "%s %s\n", term.Styles.Error.Render("invalid"), name)
			for _, viol := range v.Violations {
				fmt.Fprintf(w, "    %s\n", v.Name)
				fmt.Fprintln(w, term.Styles.Error.Render(Caret(4, viol.Offset, len(viol.Text))))
				fmt.Fprintf(w, "    %s\n", viol)
			}
		}
	}
}

// Plan prints up to limit renames of plan followed by a count of the rest.
// A limit of zero or less prints everything.
func Plan(w io.Writer, root string, plan *planner.Plan, limit int) {
	ops := plan.Operations
	shown := len(ops)
	if limit > 0 && shown > limit {
		shown = limit
	}
	for _, op := range ops[:shown] {
		fmt.Fprintf(w, "  %s\n", term.Styles.Old.Render(probe.Relative(root, op.Source)))
		fmt.Fprintf(w, "    -> %s\n", term.Styles.New.Render(probe.Relative(root, op.Target)))
		fmt.Fprintf(w, "       %s\n\n", term.Styles.Muted.Render(op.Reason()))
	}
	if rest := len(ops) - shown; rest > 0 {
		fmt.Fprintf(w, "  ... and %d more\n", rest)
	}
	for _, s := range plan.Skipped {
		fmt.Fprintf(w, "  %s %s: %s\n", term.Styles.Warn.Render("skip"), probe.Relative(root, s.Path), s.Reason)
	}
}

// Failures prints the failed entries of a batch record.
func Failures(w io.Writer, root string, rec *executor.Record) {
	for _, e := range rec.Entries {
		if e.Outcome != executor.Failed {
			continue
		}
		fmt.Fprintf(w, "  %s %s -> %s: %s\n", term.Styles.Error.Render(string(e.Step)), probe.Relative(root, e.From), probe.Relative(root, e.To), e.Err)
	}
}

// Summary prints the counters of a run.
func Summary(w io.Writer, s pipeline.RunStats) {
	fmt.Fprintf(w, "Done: %d renamed, %d skipped, %d failed", s.Renamed, s.Skipped, s.Failed)
	if s.RolledBack > 0 {
		fmt.Fprintf(w, ", %d rolled back", s.RolledBack)
	}
	fmt.Fprintln(w)
}
