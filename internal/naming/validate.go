package naming

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/axon/internal/pattern"
)

// Validate checks the final path element of path against p. It never fails:
// a name that cannot be aligned at all yields a single UnexpectedSegment
// violation spanning the whole name.
func Validate(p *pattern.Pattern, path string) Result {
	name := filepath.Base(path)
	r := Result{Path: path, Name: name, Fields: map[string]pattern.Value{}}
	all := make([]int, p.NumSegments())
	for i := range all {
		all[i] = i
	}

	if steps, ok := newAligner(p, all, name).run(); ok {
		collect(p, &r, name, steps, noCut)
	} else if !salvage(p, &r, all) {
		r.Violations = append(r.Violations, Violation{
			Kind:   UnexpectedSegment,
			Text:   name,
			Detail: fmt.Sprintf("name does not follow %s", p.Source()),
		})
	}
	sort.SliceStable(r.Violations, func(i, j int) bool { return r.Violations[i].Offset < r.Violations[j].Offset })
	r.Matched = len(r.Violations) == 0
	return r
}

// ValidateAll validates paths concurrently and returns results in input
// order.
func ValidateAll(p *pattern.Pattern, paths []string) []Result {
	results, _ := ValidateAllContext(context.Background(), p, paths)
	return results
}

// ValidateAllContext is ValidateAll with cancellation. On cancellation the
// partial results are discarded.
func ValidateAllContext(ctx context.Context, p *pattern.Pattern, paths []string) ([]Result, error) {
	results := make([]Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = Validate(p, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// cut describes text removed from a name before a fallback alignment, so
// offsets in the reduced name can be mapped back.
type cut struct{ start, n int }

var noCut = cut{}

func (c cut) orig(pos int) int {
	if c.n > 0 && pos >= c.start {
		return pos + c.n
	}
	return pos
}

func collect(p *pattern.Pattern, r *Result, s string, steps []step, c cut) {
	fold := p.CaseInsensitive()
	add := func(v Violation) { r.Violations = append(r.Violations, v) }
	for _, st := range steps {
		seg := p.Segment(st.seg)
		text := s[st.start:st.end]
		off := c.orig(st.start)
		switch seg.Kind {
		case pattern.SegLiteral:
			if st.mode == modeFolded && !fold {
				add(Violation{Kind: CaseMismatch, Text: text, Offset: off, Detail: fmt.Sprintf("want %q", seg.Text)})
			}
		case pattern.SegSeparator:
			if st.mode == modeSubstituted {
				add(Violation{Kind: UnexpectedSegment, Text: text, Offset: off, Detail: fmt.Sprintf("want separator %q", seg.Text)})
			}
		case pattern.SegExtension:
			collectExtension(r, seg, s, st, c, fold)
		case pattern.SegCapture:
			f := p.FieldAt(seg.Field)
			v, issue, detail := f.Check(text)
			r.Captures = append(r.Captures, Capture{Name: f.Name, Raw: text, Offset: off, Valid: issue == pattern.IssueNone})
			if issue == pattern.IssueNone {
				r.Fields[f.Name] = v
				continue
			}
			add(Violation{Kind: issueKind(issue), Field: f.Name, Text: text, Offset: off, Detail: detail})
		}
	}
}

func collectExtension(r *Result, seg pattern.Segment, s string, st step, c cut, fold bool) {
	want := fmt.Sprintf("want %q", seg.Text)
	ext := s[st.start:st.end]
	at := st.start
	switch st.mode {
	case modeExact:
		return
	case modeFolded:
		if !fold {
			r.Violations = append(r.Violations, Violation{Kind: CaseMismatch, Text: ext, Offset: c.orig(at), Detail: want})
		}
		return
	case modeNoExt:
		r.Violations = append(r.Violations, Violation{Kind: WrongExtension, Offset: c.orig(at), Detail: "missing extension, " + want})
		return
	case modeExtraExt:
		r.Violations = append(r.Violations, Violation{
			Kind: UnexpectedSegment, Text: s[st.start:st.mark], Offset: c.orig(st.start), Detail: "extra text before extension",
		})
		ext, at = s[st.mark:st.end], st.mark
		switch {
		case ext == seg.Text:
			return
		case strings.EqualFold(ext, seg.Text):
			if !fold {
				r.Violations = append(r.Violations, Violation{Kind: CaseMismatch, Text: ext, Offset: c.orig(at), Detail: want})
			}
			return
		}
	}
	r.Violations = append(r.Violations, Violation{Kind: WrongExtension, Text: ext, Offset: c.orig(at), Detail: want})
}

func issueKind(issue pattern.Issue) ViolationKind {
	switch issue {
	case pattern.IssueCase:
		return CaseMismatch
	case pattern.IssueExtension:
		return WrongExtension
	}
	return InvalidFieldValue
}
