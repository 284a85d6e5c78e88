package naming

import (
	"fmt"
	"strings"

	"github.com/backmassage/axon/internal/pattern"
)

// ViolationKind classifies how a filename departs from its pattern.
type ViolationKind int

const (
	MissingField ViolationKind = iota + 1
	InvalidFieldValue
	UnexpectedSegment
	WrongExtension
	CaseMismatch
	OrderingViolation
)

var kindNames = map[ViolationKind]string{
	MissingField:      "missing-field",
	InvalidFieldValue: "invalid-field-value",
	UnexpectedSegment: "unexpected-segment",
	WrongExtension:    "wrong-extension",
	CaseMismatch:      "case-mismatch",
	OrderingViolation: "ordering-violation",
}

func (k ViolationKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ViolationKind(%d)", int(k))
}

func (k ViolationKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *ViolationKind) UnmarshalText(b []byte) error {
	for kind, name := range kindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown violation kind %q", b)
}

// Violation is one reason a filename does not conform.
type Violation struct {
	Kind ViolationKind `json:"kind"`
	// Field names the capture involved; empty for literal, separator and
	// declared-extension problems.
	Field string `json:"field,omitempty"`
	// Text is the offending text as it appears in the filename.
	Text   string `json:"text"`
	Offset int    `json:"offset"`
	Detail string `json:"detail,omitempty"`
}

func (v Violation) String() string {
	var b strings.Builder
	b.WriteString(v.Kind.String())
	if v.Field != "" {
		fmt.Fprintf(&b, "(%s)", v.Field)
	}
	if v.Text != "" {
		fmt.Fprintf(&b, " %q at %d", v.Text, v.Offset)
	}
	if v.Detail != "" {
		b.WriteString(": ")
		b.WriteString(v.Detail)
	}
	return b.String()
}

// Capture records the raw text aligned to a capture, valid or not.
type Capture struct {
	Name   string `json:"name"`
	Raw    string `json:"raw"`
	Offset int    `json:"offset"`
	Valid  bool   `json:"valid"`
}

// Result is the outcome of validating one filename against a pattern.
// Matched is true exactly when Violations is empty.
type Result struct {
	Path       string                   `json:"path"`
	Name       string                   `json:"name"`
	Matched    bool                     `json:"matched"`
	Fields     map[string]pattern.Value `json:"-"`
	Captures   []Capture                `json:"captures,omitempty"`
	Violations []Violation              `json:"violations,omitempty"`
}

// Capture returns the aligned capture for a field, if any.
func (r Result) Capture(name string) (Capture, bool) {
	for _, c := range r.Captures {
		if c.Name == name {
			return c, true
		}
	}
	return Capture{}, false
}

// Kinds lists the violation kinds of r in report order, without repeats.
func (r Result) Kinds() []ViolationKind {
	var out []ViolationKind
	seen := map[ViolationKind]bool{}
	for _, v := range r.Violations {
		if !seen[v.Kind] {
			seen[v.Kind] = true
			out = append(out, v.Kind)
		}
	}
	return out
}
