package naming

import (
	"math"
	"strings"

	"github.com/backmassage/axon/internal/pattern"
)

type stepMode int

const (
	modeExact stepMode = iota
	modeFolded
	modeSubstituted
	modeForeignExt
	modeExtraExt
	modeNoExt
)

// step is one segment aligned to a span of the name being matched.
type step struct {
	seg        int
	start, end int
	mode       stepMode
	// mark is where the real extension begins for modeExtraExt.
	mark int
}

// choice is the best way found to continue from a (segment, offset) state.
type choice struct {
	ok   bool
	cost int
	// waste counts bytes written off as extra text; it breaks cost ties so
	// an alignment never discards more of the name than it must.
	waste int
	// next is the segment position to continue from; st is unset when an
	// optional group was skipped.
	next int
	st   *step
}

// aligner finds the alignment of a name against a subset of a pattern's
// segments that needs the fewest corrections. States are memoized on
// (segment, offset), so the search is polynomial in the name length.
// Among equally costly alignments the earlier candidate wins, which is
// how span tie-breaking and present-before-skipped ordering take effect.
type aligner struct {
	p    *pattern.Pattern
	idx  []int
	s    string
	memo map[[2]int]choice
}

func newAligner(p *pattern.Pattern, idx []int, s string) *aligner {
	return &aligner{p: p, idx: idx, s: s, memo: map[[2]int]choice{}}
}

// run returns the steps of the cheapest alignment of the whole name.
func (a *aligner) run() ([]step, bool) {
	if !a.solve(0, 0).ok {
		return nil, false
	}
	var steps []step
	for i, pos := 0, 0; i < len(a.idx); {
		c := a.memo[[2]int{i, pos}]
		if c.st != nil {
			steps = append(steps, *c.st)
			pos = c.st.end
		}
		i = c.next
	}
	return steps, true
}

func (a *aligner) seg(i int) pattern.Segment { return a.p.Segment(a.idx[i]) }

func (a *aligner) solve(i, pos int) choice {
	if i == len(a.idx) {
		return choice{ok: pos == len(a.s), next: i}
	}
	key := [2]int{i, pos}
	if c, ok := a.memo[key]; ok {
		return c
	}
	best := choice{cost: math.MaxInt, waste: math.MaxInt}
	for _, opt := range a.options(i, pos) {
		rest := a.solve(i+1, opt.end)
		if !rest.ok {
			continue
		}
		cost, lost := a.cost(opt)+rest.cost, waste(opt)+rest.waste
		if better(cost, lost, best) {
			st := opt
			best = choice{ok: true, cost: cost, waste: lost, next: i + 1, st: &st}
		}
	}
	// An optional group may be skipped as a whole once its presence has
	// been priced.
	if g := a.seg(i).Group; g != 0 && (i == 0 || a.seg(i-1).Group != g) {
		j := i
		for j < len(a.idx) && a.seg(j).Group == g {
			j++
		}
		if rest := a.solve(j, pos); rest.ok && better(rest.cost, rest.waste, best) {
			best = choice{ok: true, cost: rest.cost, waste: rest.waste, next: j}
		}
	}
	a.memo[key] = best
	return best
}

// options lists the ways segment i can consume text at pos, in preference
// order.
func (a *aligner) options(i, pos int) []step {
	seg := a.seg(i)
	rest := a.s[pos:]
	at := func(end int, mode stepMode) step {
		return step{seg: a.idx[i], start: pos, end: end, mode: mode}
	}
	switch seg.Kind {
	case pattern.SegLiteral, pattern.SegSeparator:
		n := len(seg.Text)
		if n > len(rest) {
			return nil
		}
		switch {
		case rest[:n] == seg.Text:
			return []step{at(pos+n, modeExact)}
		case seg.Kind == pattern.SegLiteral && strings.EqualFold(rest[:n], seg.Text):
			return []step{at(pos+n, modeFolded)}
		case seg.Kind == pattern.SegSeparator && allSeparators(rest[:n]):
			return []step{at(pos+n, modeSubstituted)}
		}
	case pattern.SegExtension:
		end := len(a.s)
		switch {
		case rest == seg.Text:
			return []step{at(end, modeExact)}
		case strings.EqualFold(rest, seg.Text):
			return []step{at(end, modeFolded)}
		case rest == "":
			return []step{at(end, modeNoExt)}
		case rest[0] == '.' && isExtension(rest[1:]):
			return []step{at(end, modeForeignExt)}
		}
		if dot := strings.LastIndexByte(rest, '.'); dot > 0 && isExtension(rest[dot+1:]) {
			st := at(end, modeExtraExt)
			st.mark = pos + dot
			return []step{st}
		}
	case pattern.SegCapture:
		ends := a.candidates(i, pos)
		out := make([]step, len(ends))
		for k, end := range ends {
			out[k] = at(end, modeExact)
		}
		return out
	}
	return nil
}

func better(cost, lost int, than choice) bool {
	return cost < than.cost || cost == than.cost && lost < than.waste
}

// waste is the number of name bytes a step gives up as extra text.
func waste(st step) int {
	if st.mode == modeExtraExt {
		return st.mark - st.start
	}
	return 0
}

// cost counts the violations a step will produce.
func (a *aligner) cost(st step) int {
	seg := a.p.Segment(st.seg)
	fold := a.p.CaseInsensitive()
	switch st.mode {
	case modeExact:
		if seg.Kind == pattern.SegCapture {
			if _, issue, _ := a.p.FieldAt(seg.Field).Check(a.s[st.start:st.end]); issue != pattern.IssueNone {
				return 1
			}
		}
		return 0
	case modeFolded:
		if fold {
			return 0
		}
		return 1
	case modeExtraExt:
		ext := a.s[st.mark:st.end]
		if ext == seg.Text || (fold && strings.EqualFold(ext, seg.Text)) {
			return 1
		}
		return 2
	}
	return 1
}

// candidates orders the possible ends of a capture. A capture followed by
// another capture takes the shortest span; one followed by a literal or the
// end of the name takes the longest.
func (a *aligner) candidates(i, pos int) []int {
	f := a.p.FieldAt(a.seg(i).Field)
	ends := f.Spans(a.s, pos)
	if f.Extension && pos < len(a.s) && (len(ends) == 0 || ends[len(ends)-1] != len(a.s)) {
		ends = append(ends, len(a.s))
	}
	if a.greedy(i) {
		for l, r := 0, len(ends)-1; l < r; l, r = l+1, r-1 {
			ends[l], ends[r] = ends[r], ends[l]
		}
	}
	return ends
}

func (a *aligner) greedy(i int) bool {
	for j := i + 1; j < len(a.idx); j++ {
		switch a.seg(j).Kind {
		case pattern.SegSeparator:
			continue
		case pattern.SegCapture:
			return false
		}
		return true
	}
	return true
}

// allSeparators reports whether s could stand in for a separator run.
// Spaces count as separators here.
func allSeparators(s string) bool {
	for i := 0; i < len(s); i++ {
		if !pattern.IsSeparator(s[i]) && s[i] != ' ' {
			return false
		}
	}
	return s != ""
}

func isExtension(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
