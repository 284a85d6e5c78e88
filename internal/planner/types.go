package planner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/backmassage/axon/internal/naming"
)

var (
	// ErrConflictUnresolved is returned under FailBatch when two files would
	// end up with the same name, or a target is already taken.
	ErrConflictUnresolved = errors.New("conflict unresolved")
	// ErrPostcondition means a planned target does not validate against the
	// pattern it was rendered from.
	ErrPostcondition = errors.New("planned target fails validation")
)

// ConflictPolicy decides what happens when targets collide.
type ConflictPolicy int

const (
	FailBatch ConflictPolicy = iota
	SkipConflicting
	SuffixDeterministically
)

func (c ConflictPolicy) String() string {
	switch c {
	case FailBatch:
		return "fail"
	case SkipConflicting:
		return "skip"
	case SuffixDeterministically:
		return "suffix"
	}
	return fmt.Sprintf("ConflictPolicy(%d)", int(c))
}

// ParseConflictPolicy accepts the names printed by String.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch strings.ToLower(s) {
	case "fail":
		return FailBatch, nil
	case "skip":
		return SkipConflicting, nil
	case "suffix":
		return SuffixDeterministically, nil
	}
	return 0, fmt.Errorf("invalid conflict policy %q (want fail|skip|suffix)", s)
}

// Policy controls how Build repairs names and settles conflicts.
type Policy struct {
	OnConflict ConflictPolicy
	// Defaults supplies text for fields reported missing, keyed by field
	// name. The text must be a valid value for the field.
	Defaults map[string]string
	// Existing lists paths present on disk. A path here that is not a
	// source in the batch blocks any target equal to it.
	Existing []string
	// DropStrayText lets a repair discard text the pattern has no place
	// for. Without it such files are skipped.
	DropStrayText bool
}

// ResolutionKind records how a conflict touched an operation.
type ResolutionKind int

const (
	ResolutionNone ResolutionKind = iota
	ResolutionSuffixed
	ResolutionSkipped
)

func (k ResolutionKind) String() string {
	switch k {
	case ResolutionSuffixed:
		return "suffixed"
	case ResolutionSkipped:
		return "skipped"
	}
	return "none"
}

func (k ResolutionKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *ResolutionKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "none", "":
		*k = ResolutionNone
	case "suffixed":
		*k = ResolutionSuffixed
	case "skipped":
		*k = ResolutionSkipped
	default:
		return fmt.Errorf("unknown resolution %q", b)
	}
	return nil
}

// Resolution is the conflict outcome for one operation. Suffix is set for
// ResolutionSuffixed.
type Resolution struct {
	Kind   ResolutionKind `json:"kind"`
	Suffix int            `json:"suffix,omitempty"`
}

// Repair describes one field change made to reach the target name.
type Repair struct {
	Field string `json:"field,omitempty"`
	From  string `json:"from"`
	To    string `json:"to"`
	Note  string `json:"note,omitempty"`
}

// Operation renames Source to Target. Source and Target always differ.
type Operation struct {
	Source     string             `json:"source"`
	Target     string             `json:"target"`
	Violations []naming.Violation `json:"violations,omitempty"`
	Repairs    []Repair           `json:"repairs,omitempty"`
	Resolution Resolution         `json:"resolution"`
}

// Reason summarizes why the operation exists.
func (o Operation) Reason() string {
	if len(o.Violations) > 0 {
		parts := make([]string, len(o.Violations))
		for i, v := range o.Violations {
			parts[i] = v.Kind.String()
			if v.Field != "" {
				parts[i] += "(" + v.Field + ")"
			}
		}
		return strings.Join(parts, ", ")
	}
	if o.Resolution.Kind == ResolutionSuffixed {
		return fmt.Sprintf("renamed to resolve a name conflict (suffix %d)", o.Resolution.Suffix)
	}
	return "rename"
}

// Skip records a file left where it is.
type Skip struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
	// Operation is the rename that would have happened, when the file was
	// skipped over a conflict rather than for being unrepairable.
	Operation *Operation `json:"operation,omitempty"`
}

// Plan is an ordered, deterministic list of renames. The same pattern,
// results and policy always produce the same Plan and ID.
type Plan struct {
	ID         string      `json:"id"`
	Operations []Operation `json:"operations"`
	Skipped    []Skip      `json:"skipped,omitempty"`
}

// Empty reports whether the plan renames nothing.
func (p *Plan) Empty() bool { return p == nil || len(p.Operations) == 0 }

// Conflict lists the sources contending for one target.
type Conflict struct {
	Target  string   `json:"target"`
	Sources []string `json:"sources"`
	// Occupied is set when the target already exists and is not part of
	// the batch.
	Occupied bool `json:"occupied,omitempty"`
}

// PlanningError is returned by Build when the policy cannot settle every
// conflict. It unwraps to Kind.
type PlanningError struct {
	Kind      error
	Conflicts []Conflict
}

func (e *PlanningError) Error() string {
	parts := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		parts[i] = fmt.Sprintf("%s <- %s", c.Target, strings.Join(c.Sources, ", "))
		if c.Occupied {
			parts[i] += " (already exists)"
		}
	}
	return fmt.Sprintf("%v: %s", e.Kind, strings.Join(parts, "; "))
}

func (e *PlanningError) Unwrap() error { return e.Kind }
