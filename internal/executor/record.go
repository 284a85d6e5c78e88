package executor

import (
	"fmt"
	"slices"
	"time"

	"github.com/backmassage/axon/internal/planner"
)

// Mode selects between applying a plan and only checking it.
type Mode int

const (
	Apply Mode = iota
	DryRun
)

func (m Mode) String() string {
	if m == DryRun {
		return "dry-run"
	}
	return "apply"
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "apply":
		*m = Apply
	case "dry-run":
		*m = DryRun
	default:
		return fmt.Errorf("unknown mode %q", b)
	}
	return nil
}

// Outcome is the result of a step, an operation or a whole batch.
type Outcome string

const (
	Applied    Outcome = "applied"
	Failed     Outcome = "failed"
	RolledBack Outcome = "rolled-back"
	// Planned marks operations and batches that passed a dry run.
	Planned Outcome = "planned"
	// NotRun marks operations a failed batch never reached.
	NotRun Outcome = "not-run"
)

// Step names the phase an entry belongs to.
type Step string

const (
	StepCheck  Step = "check"
	StepStage  Step = "stage"
	StepCommit Step = "commit"
)

// Entry is one line of the batch log. Entries are only ever appended.
type Entry struct {
	Op      int       `json:"op"`
	Step    Step      `json:"step"`
	From    string    `json:"from"`
	To      string    `json:"to,omitempty"`
	Outcome Outcome   `json:"outcome"`
	Time    time.Time `json:"time"`
	Err     string    `json:"error,omitempty"`
}

// Record is the audit trail of one batch.
type Record struct {
	BatchID    string              `json:"batch_id"`
	PlanID     string              `json:"plan_id"`
	Mode       Mode                `json:"mode"`
	Outcome    Outcome             `json:"outcome"`
	Started    time.Time           `json:"started"`
	Finished   time.Time           `json:"finished"`
	Operations []planner.Operation `json:"operations"`
	Entries    []Entry             `json:"entries"`
}

func (r *Record) log(at time.Time, op int, step Step, from, to string, outcome Outcome, err error) {
	e := Entry{Op: op, Step: step, From: from, To: to, Outcome: outcome, Time: at}
	if err != nil {
		e.Err = err.Error()
	}
	r.Entries = append(r.Entries, e)
}

// Final returns the outcome of each operation: that of its last entry, or
// NotRun when it has none.
func (r *Record) Final() []Outcome {
	out := make([]Outcome, len(r.Operations))
	for i := range out {
		out[i] = NotRun
	}
	for _, e := range r.Entries {
		if e.Op >= 0 && e.Op < len(out) {
			out[e.Op] = e.Outcome
		}
	}
	return out
}

// Applied returns the operations whose final outcome is Applied, in plan
// order.
func (r *Record) Applied() []planner.Operation {
	var ops []planner.Operation
	for i, o := range r.Final() {
		if o == Applied {
			ops = append(ops, r.Operations[i])
		}
	}
	return ops
}

// Count tallies operations by final outcome.
func (r *Record) Count() map[Outcome]int {
	counts := make(map[Outcome]int)
	for _, o := range r.Final() {
		counts[o]++
	}
	return counts
}

// cloneOperations copies ops so the record never shares storage with the
// plan it was built from.
func cloneOperations(ops []planner.Operation) []planner.Operation {
	out := make([]planner.Operation, len(ops))
	for i, op := range ops {
		op.Violations = slices.Clone(op.Violations)
		op.Repairs = slices.Clone(op.Repairs)
		out[i] = op
	}
	return out
}
