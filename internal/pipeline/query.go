package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/backmassage/axon/internal/naming"
	"github.com/backmassage/axon/internal/pattern"
)

var (
	// ErrExempt is returned by Parse for a file on the exempt list.
	ErrExempt = errors.New("exempt files do not follow the pattern")
	// ErrBadFilter is returned by List for a filter naming an unknown field
	// or holding a value the field cannot take.
	ErrBadFilter = errors.New("invalid filter")
)

// Parse validates the file at path and returns its result. A
// non-conforming file is not an error; check Result.Matched.
func (e *Engine) Parse(ctx context.Context, path string) (naming.Result, error) {
	name := filepath.Base(path)
	if reason, ok := e.exempt.Reason(name); ok {
		return naming.Result{}, fmt.Errorf("%s: %w (%s)", name, ErrExempt, reason)
	}
	results, err := naming.ValidateAllContext(ctx, e.pattern, []string{path})
	if err != nil {
		return naming.Result{}, err
	}
	return results[0], nil
}

// List returns the conforming files whose field values equal every entry
// of where, sorted by path. Filter values are read as the field's type,
// so "2024-3-1" finds a date field holding 2024-03-01.
func (e *Engine) List(ctx context.Context, where map[string]string) ([]naming.Result, error) {
	want := make(map[string]pattern.Value, len(where))
	for name, raw := range where {
		f, ok := e.pattern.Field(name)
		if !ok {
			return nil, fmt.Errorf("%w: pattern %s has no field %q", ErrBadFilter, e.pattern.Source(), name)
		}
		v, _, err := f.Repair(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadFilter, err)
		}
		want[name] = v
	}

	d, err := e.discover(ctx)
	if err != nil {
		return nil, err
	}
	results, err := naming.ValidateAllContext(ctx, e.pattern, d.Candidates)
	if err != nil {
		return nil, err
	}
	var out []naming.Result
	for _, r := range results {
		if r.Matched && fieldsMatch(r.Fields, want) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func fieldsMatch(got, want map[string]pattern.Value) bool {
	for name, v := range want {
		g, ok := got[name]
		if !ok || !pattern.Equal(g, v) {
			return false
		}
	}
	return true
}
