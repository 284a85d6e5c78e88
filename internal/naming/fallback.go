package naming

import (
	"fmt"

	"github.com/backmassage/axon/internal/pattern"
)

// fallback is a recovery strategy tried when no alignment of the full
// pattern exists. It reports whether it explained the name and, if so, has
// filled in r.
type fallback struct {
	name  string
	apply func(p *pattern.Pattern, r *Result, all []int) bool
}

// fallbacks are evaluated in order; the first one that aligns wins.
var fallbacks = []fallback{
	{name: "ordering", apply: relocateField},
	{name: "missing", apply: dropField},
}

func salvage(p *pattern.Pattern, r *Result, all []int) bool {
	for _, fb := range fallbacks {
		if fb.apply(p, r, all) {
			return true
		}
	}
	return false
}

// relocateField looks for a distinctive field value sitting out of place.
// The value and one adjacent separator are cut from the name and the
// remainder is aligned against the pattern without that capture.
func relocateField(p *pattern.Pattern, r *Result, all []int) bool {
	name := r.Name
	for _, si := range all {
		seg := p.Segment(si)
		if seg.Kind != pattern.SegCapture {
			continue
		}
		f := p.FieldAt(seg.Field)
		if !f.Distinctive() {
			continue
		}
		reduced := without(p, all, si)
		for _, occ := range f.Find(name) {
			c := separatorCut(name, occ[0], occ[1])
			rest := name[:c.start] + name[c.start+c.n:]
			steps, ok := newAligner(p, reduced, rest).run()
			if !ok {
				continue
			}
			raw := name[occ[0]:occ[1]]
			v, _ := f.Parse(raw)
			r.Fields[f.Name] = v
			r.Captures = append(r.Captures, Capture{Name: f.Name, Raw: raw, Offset: occ[0], Valid: true})
			r.Violations = append(r.Violations, Violation{
				Kind:   OrderingViolation,
				Field:  f.Name,
				Text:   raw,
				Offset: occ[0],
				Detail: fmt.Sprintf("%s is out of position", f.Name),
			})
			collect(p, r, rest, steps, c)
			return true
		}
	}
	return false
}

// dropField aligns the name against the pattern with one mandatory capture
// removed, reporting the first capture whose absence explains the name.
func dropField(p *pattern.Pattern, r *Result, all []int) bool {
	for _, si := range all {
		seg := p.Segment(si)
		if seg.Kind != pattern.SegCapture || p.FieldAt(seg.Field).Optional {
			continue
		}
		steps, ok := newAligner(p, without(p, all, si), r.Name).run()
		if !ok {
			continue
		}
		f := p.FieldAt(seg.Field)
		at := len(r.Name)
		for _, st := range steps {
			if st.seg > si {
				at = st.start
				break
			}
		}
		r.Violations = append(r.Violations, Violation{
			Kind:   MissingField,
			Field:  f.Name,
			Offset: at,
			Detail: fmt.Sprintf("no %s value present", f.Type),
		})
		collect(p, r, r.Name, steps, noCut)
		return true
	}
	return false
}

// without removes a capture and the separator that joins it to its
// neighbours, preferring the one before it.
func without(p *pattern.Pattern, all []int, si int) []int {
	drop := map[int]bool{si: true}
	pos := -1
	for i, v := range all {
		if v == si {
			pos = i
		}
	}
	switch {
	case pos > 0 && p.Segment(all[pos-1]).Kind == pattern.SegSeparator:
		drop[all[pos-1]] = true
	case pos+1 < len(all) && p.Segment(all[pos+1]).Kind == pattern.SegSeparator:
		drop[all[pos+1]] = true
	}
	out := make([]int, 0, len(all))
	for _, v := range all {
		if !drop[v] {
			out = append(out, v)
		}
	}
	return out
}

func separatorCut(name string, start, end int) cut {
	switch {
	case start > 0 && pattern.IsSeparator(name[start-1]) && name[start-1] != '.':
		return cut{start: start - 1, n: end - start + 1}
	case end < len(name) && pattern.IsSeparator(name[end]) && name[end] != '.':
		return cut{start: start, n: end - start + 1}
	}
	return cut{start: start, n: end - start}
}
