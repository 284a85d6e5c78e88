package pipeline

import (
	"context"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"

	"github.com/backmassage/axon/internal/naming"
	"github.com/backmassage/axon/internal/probe"
)

// FileEntry is one line of a health report.
type FileEntry struct {
	File   string `json:"file"`
	Detail string `json:"detail"`
}

// HealthReport summarizes how much of the corpus follows the convention.
// Under Strict, exempt files count as invalid.
type HealthReport struct {
	Pattern      string          `json:"pattern"`
	Checked      int             `json:"checked"`
	Valid        int             `json:"valid"`
	Invalid      int             `json:"invalid"`
	Exempt       int             `json:"exempt"`
	Strict       bool            `json:"strict"`
	InvalidFiles []FileEntry     `json:"invalid_files"`
	ExemptFiles  []FileEntry     `json:"exempt_files"`
	Results      []naming.Result `json:"-"`
}

// OK reports whether nothing counts as invalid.
func (r *HealthReport) OK() bool { return r.Invalid == 0 }

// Health validates every discovered file.
func (e *Engine) Health(ctx context.Context) (*HealthReport, error) {
	ctx, span := e.tracer.Start(ctx, "pipeline.Health")
	defer span.End()

	d, err := e.discover(ctx)
	if err != nil {
		return nil, err
	}
	results, err := naming.ValidateAllContext(ctx, e.pattern, d.Candidates)
	if err != nil {
		return nil, err
	}

	r := &HealthReport{
		Pattern:      e.pattern.String(),
		Checked:      d.Total(),
		Exempt:       len(d.Exempt),
		Strict:       e.cfg.Strict,
		InvalidFiles: []FileEntry{},
		ExemptFiles:  []FileEntry{},
		Results:      results,
	}
	for _, res := range results {
		if res.Matched {
			r.Valid++
			continue
		}
		r.InvalidFiles = append(r.InvalidFiles, FileEntry{File: probe.Relative(e.cfg.NotesDir, res.Path), Detail: "error: " + res.Violations[0].String()})
	}
	for _, x := range d.Exempt {
		r.ExemptFiles = append(r.ExemptFiles, FileEntry{File: probe.Relative(e.cfg.NotesDir, x.Path), Detail: "exempt: " + x.Reason})
	}
	r.Invalid = len(r.InvalidFiles)
	if r.Strict {
		r.Invalid += r.Exempt
	}
	span.SetAttributes(
		attribute.Int("axon.checked", r.Checked),
		attribute.Int("axon.invalid", r.Invalid),
	)
	return r, nil
}

// Verdict is the validation outcome of one file. Exempt files are not
// validated; Exempt holds the reason and the result counts as matched.
type Verdict struct {
	naming.Result
	Exempt string `json:"exempt,omitempty"`
}

// Validate checks the given paths, or every discovered file when paths is
// empty.
func (e *Engine) Validate(ctx context.Context, paths []string) ([]Verdict, error) {
	if len(paths) == 0 {
		d, err := e.discover(ctx)
		if err != nil {
			return nil, err
		}
		paths = d.Candidates
	}

	verdicts := make([]Verdict, len(paths))
	var check []string
	var at []int
	for i, p := range paths {
		name := filepath.Base(p)
		if reason, ok := e.exempt.Reason(name); ok {
			verdicts[i] = Verdict{Result: naming.Result{Path: p, Name: name, Matched: true}, Exempt: reason}
			continue
		}
		check = append(check, p)
		at = append(at, i)
	}
	results, err := naming.ValidateAllContext(ctx, e.pattern, check)
	if err != nil {
		return nil, err
	}
	for j, r := range results {
		verdicts[at[j]] = Verdict{Result: r}
	}
	return verdicts, nil
}
