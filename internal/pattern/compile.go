package pattern

import (
	"strconv"
	"strings"
)

// Compile parses source into a Pattern. Errors are *CompileError values
// wrapping one of the Err* sentinels.
func Compile(source string, opts Options) (*Pattern, error) {
	if strings.TrimSpace(source) == "" {
		return nil, compileErr(ErrEmptyPattern, source, 0, "nothing to compile")
	}
	toks, err := lex(source)
	if err != nil {
		return nil, err
	}
	if opts.DateFormat == "" {
		opts.DateFormat = DefaultDateLayout
	}

	p := &Pattern{source: source, opts: opts, index: map[string]int{}}
	greedy := 0
	for _, t := range toks {
		if t.kind == tokText {
			p.segments = append(p.segments, splitText(t.text, t.off)...)
			continue
		}
		if _, dup := p.index[t.name]; dup {
			return nil, compileErr(ErrDuplicateFieldName, source, t.off, "%q", t.name)
		}
		f, err := buildField(source, t, opts)
		if err != nil {
			return nil, err
		}
		if f.Type.Unbounded() {
			if greedy++; greedy > 1 {
				return nil, compileErr(ErrAmbiguousGreedySequence, source, t.off,
					"%q is the second unbounded capture", t.name)
			}
		}
		p.index[f.Name] = len(p.fields)
		p.segments = append(p.segments, Segment{Kind: SegCapture, Field: len(p.fields), Offset: t.off})
		p.fields = append(p.fields, f)
	}

	markExtension(p)
	if opts.DefaultExtension != "" && p.Extension() == "" {
		ext := "." + strings.TrimPrefix(opts.DefaultExtension, ".")
		p.segments = append(p.segments, Segment{Kind: SegExtension, Text: ext, Field: -1, Offset: len(source)})
	}
	groupOptionals(p)
	if err := checkOpenRuns(p); err != nil {
		return nil, err
	}
	return p, nil
}

// checkOpenRuns rejects an open capture that can reach another open
// capture through text it would itself absorb. Optional captures on the
// way may be absent, so the walk continues past them.
func checkOpenRuns(p *Pattern) error {
	for i, s := range p.segments {
		if s.Kind != SegCapture {
			continue
		}
		first := p.fields[s.Field]
		if !first.Type.Open() {
			continue
		}
	walk:
		for _, next := range p.segments[i+1:] {
			switch next.Kind {
			case SegSeparator, SegLiteral:
				for k := 0; k < len(next.Text); k++ {
					if !first.Type.Absorbs(next.Text[k]) {
						break walk
					}
				}
			case SegCapture:
				f := p.fields[next.Field]
				if f.Type.Open() {
					return compileErr(ErrAmbiguousGreedySequence, p.source, next.Offset,
						"%q and %q can split the same text", first.Name, f.Name)
				}
				if !f.Optional {
					break walk
				}
			default:
				break walk
			}
		}
	}
	return nil
}

// MustCompile is like Compile but panics on error. Intended for tests and
// package-level pattern literals.
func MustCompile(source string, opts Options) *Pattern {
	p, err := Compile(source, opts)
	if err != nil {
		panic(err)
	}
	return p
}

// splitText breaks a literal run into alternating separator and literal
// segments.
func splitText(text string, off int) []Segment {
	var segs []Segment
	for i := 0; i < len(text); {
		j := i
		sep := IsSeparator(text[i])
		for j < len(text) && IsSeparator(text[j]) == sep {
			j++
		}
		kind := SegLiteral
		if sep {
			kind = SegSeparator
		}
		segs = append(segs, Segment{Kind: kind, Text: text[i:j], Field: -1, Offset: off + i})
		i = j
	}
	return segs
}

// markExtension turns a closing ".ext" into an extension segment, or flags a
// closing literal-enum capture after '.' as the extension field.
func markExtension(p *Pattern) {
	n := len(p.segments)
	if n < 2 {
		return
	}
	last, prev := p.segments[n-1], p.segments[n-2]
	if prev.Kind != SegSeparator || !strings.HasSuffix(prev.Text, ".") {
		return
	}
	switch last.Kind {
	case SegLiteral:
		for i := 0; i < len(last.Text); i++ {
			if !isAlnum(last.Text[i]) {
				return
			}
		}
		ext := Segment{Kind: SegExtension, Text: "." + last.Text, Field: -1, Offset: prev.Offset + len(prev.Text) - 1}
		if prev.Text == "." {
			p.segments = append(p.segments[:n-2], ext)
			return
		}
		p.segments[n-2].Text = strings.TrimSuffix(prev.Text, ".")
		p.segments[n-1] = ext
	case SegCapture:
		if f := &p.fields[last.Field]; f.Type == TypeEnum {
			f.Extension = true
		}
	}
}

// groupOptionals ties each optional capture to one adjacent separator so the
// pair is skipped as a unit.
func groupOptionals(p *Pattern) {
	group := 0
	for i, s := range p.segments {
		if s.Kind != SegCapture || !p.fields[s.Field].Optional {
			continue
		}
		group++
		p.segments[i].Group = group
		switch {
		case i > 0 && p.segments[i-1].Kind == SegSeparator && p.segments[i-1].Group == 0:
			p.segments[i-1].Group = group
		case i+1 < len(p.segments) && p.segments[i+1].Kind == SegSeparator:
			p.segments[i+1].Group = group
		}
	}
}

func buildField(src string, t token, opts Options) (Field, error) {
	typ, ok := ParseFieldType(t.typ)
	if !ok {
		return Field{}, compileErr(ErrUnknownFieldType, src, t.off, "%q in capture %q", t.typ, t.name)
	}
	f := Field{Name: t.name, Type: typ, Optional: t.optional, foldCase: opts.CaseInsensitive}
	switch typ {
	case TypeDate:
		f.Layout = opts.DateFormat
		if len(t.args) > 1 {
			return f, compileErr(ErrInvalidFieldArgs, src, t.off, "date takes one layout")
		}
		if len(t.args) == 1 {
			f.Layout = t.args[0]
		}
		comps, err := parseLayout(f.Layout)
		if err != nil {
			return f, compileErr(ErrInvalidFieldArgs, src, t.off, "%v", err)
		}
		f.comps = comps
	case TypeEnum:
		f.Values = t.args
		if len(f.Values) == 0 {
			f.Values = opts.Enums[t.name]
		}
		if len(f.Values) == 0 {
			return f, compileErr(ErrMissingValueSet, src, t.off, "literal-enum %q has no values", t.name)
		}
	case TypeTagList:
		f.Values = t.args
		if len(f.Values) == 0 {
			f.Values = opts.Tags
		}
		if len(f.Values) == 0 {
			return f, compileErr(ErrMissingValueSet, src, t.off, "tag-list %q has no vocabulary", t.name)
		}
	case TypeInteger:
		if len(t.args) > 1 {
			return f, compileErr(ErrInvalidFieldArgs, src, t.off, "integer takes one width")
		}
		if len(t.args) == 1 {
			w, err := strconv.Atoi(t.args[0])
			if err != nil || w <= 0 {
				return f, compileErr(ErrInvalidFieldArgs, src, t.off, "width %q", t.args[0])
			}
			f.Width = w
		}
	default:
		if len(t.args) > 0 {
			return f, compileErr(ErrInvalidFieldArgs, src, t.off, "%s takes no arguments", typ)
		}
	}
	return f, nil
}
