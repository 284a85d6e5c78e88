package planner

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/backmassage/axon/internal/naming"
	"github.com/backmassage/axon/internal/pattern"
)

// ErrFieldMismatch is returned when two patterns do not capture the same
// set of fields, so values cannot be carried from one to the other.
var ErrFieldMismatch = errors.New("field mismatch between patterns")

// FieldMismatchError lists the fields only one of two patterns has.
type FieldMismatchError struct {
	From, To     string
	OnlyInSource []string
	OnlyInTarget []string
}

func (e *FieldMismatchError) Error() string {
	var b strings.Builder
	b.WriteString(ErrFieldMismatch.Error())
	fmt.Fprintf(&b, "\n  source %s has: %s", e.From, fieldList(e.OnlyInSource))
	fmt.Fprintf(&b, "\n  target %s has: %s", e.To, fieldList(e.OnlyInTarget))
	return b.String()
}

func (e *FieldMismatchError) Unwrap() error { return ErrFieldMismatch }

func fieldList(names []string) string {
	if len(names) == 0 {
		return "(nothing extra)"
	}
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = "{" + n + "}"
	}
	return strings.Join(parts, ", ")
}

// CheckFields reports a *FieldMismatchError unless from and to capture
// the same field names. Types may differ.
func CheckFields(from, to *pattern.Pattern) error {
	names := func(p *pattern.Pattern) []string {
		out := make([]string, p.NumFields())
		for i := range out {
			out[i] = p.FieldAt(i).Name
		}
		slices.Sort(out)
		return out
	}
	src, dst := names(from), names(to)
	e := &FieldMismatchError{From: from.Source(), To: to.Source()}
	for _, n := range src {
		if _, ok := slices.BinarySearch(dst, n); !ok {
			e.OnlyInSource = append(e.OnlyInSource, n)
		}
	}
	for _, n := range dst {
		if _, ok := slices.BinarySearch(src, n); !ok {
			e.OnlyInTarget = append(e.OnlyInTarget, n)
		}
	}
	if len(e.OnlyInSource) > 0 || len(e.OnlyInTarget) > 0 {
		return e
	}
	return nil
}

// Migrate plans renames that carry every file conforming to from over to
// the to pattern, keeping field values. results must come from validating
// against from. Files that do not conform to from stay where they are and
// are listed as skipped. Conflicts are settled under policy as in [Build];
// Defaults and DropStrayText are not used.
func Migrate(from, to *pattern.Pattern, results []naming.Result, policy Policy) (*Plan, error) {
	if err := CheckFields(from, to); err != nil {
		return nil, err
	}
	sorted, seen := bySource(results)

	var cands []*candidate
	stay := make(map[string]bool)
	var skipped []Skip
	leave := func(path, reason string) {
		skipped = append(skipped, Skip{Path: path, Reason: reason})
		stay[path] = true
	}
	for _, r := range sorted {
		if !r.Matched {
			leave(r.Path, fmt.Sprintf("does not match %s", from.Source()))
			continue
		}
		values, err := carry(to, r.Fields)
		if err != nil {
			leave(r.Path, err.Error())
			continue
		}
		target, err := renderTarget(to, filepath.Dir(r.Path), values)
		if err != nil {
			leave(r.Path, err.Error())
			continue
		}
		cands = append(cands, &candidate{source: r.Path, target: target, values: values, result: r})
	}
	return settle(to, cands, seen, stay, skipped, policy)
}

// carry converts values captured by another pattern to the field types of
// p. A value of the wrong type is re-read from its text.
func carry(p *pattern.Pattern, values map[string]pattern.Value) (map[string]pattern.Value, error) {
	out := make(map[string]pattern.Value, len(values))
	for name, v := range values {
		f, ok := p.Field(name)
		if !ok {
			continue
		}
		if v.Type() == f.Type {
			out[name] = v
			continue
		}
		conv, _, err := f.Repair(v.String())
		if err != nil {
			return nil, err
		}
		out[name] = conv
	}
	return out, nil
}
