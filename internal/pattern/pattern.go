package pattern

import (
	"fmt"
	"sort"
	"strings"
)

// SegmentKind distinguishes the pieces of a compiled pattern.
type SegmentKind int

const (
	SegLiteral SegmentKind = iota
	SegSeparator
	SegCapture
	SegExtension
)

func (k SegmentKind) String() string {
	switch k {
	case SegLiteral:
		return "literal"
	case SegSeparator:
		return "separator"
	case SegCapture:
		return "capture"
	case SegExtension:
		return "extension"
	}
	return fmt.Sprintf("SegmentKind(%d)", int(k))
}

// Segment is one element of a compiled pattern.
type Segment struct {
	Kind SegmentKind
	// Text is the literal, separator or extension text (extension includes
	// the leading dot). Empty for captures.
	Text string
	// Field indexes Pattern.Fields for captures and is -1 otherwise.
	Field int
	// Group is non-zero for segments that are present or absent together
	// with an optional capture.
	Group int
	// Offset is the byte offset of the segment in the pattern source.
	Offset int
}

// Options tune compilation. The zero value compiles case-sensitive patterns
// with ISO dates and no value sets.
type Options struct {
	CaseInsensitive bool
	// DateFormat is the Go reference layout for date captures without an
	// explicit layout argument.
	DateFormat string
	// Tags is the vocabulary for tag-list captures without arguments.
	Tags []string
	// Enums supplies value sets for literal-enum captures by field name.
	Enums map[string][]string
	// DefaultExtension is appended when the source declares no extension.
	DefaultExtension string
}

func (o Options) key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%t|%s|%s|%s", o.CaseInsensitive, o.DateFormat, strings.Join(o.Tags, ","), o.DefaultExtension)
	names := make([]string, 0, len(o.Enums))
	for n := range o.Enums {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(&b, "|%s=%s", n, strings.Join(o.Enums[n], ","))
	}
	return b.String()
}

// Pattern is a compiled naming convention. It is immutable after Compile
// returns and safe to share between goroutines.
type Pattern struct {
	source   string
	opts     Options
	segments []Segment
	fields   []Field
	index    map[string]int
}

func (p *Pattern) Source() string        { return p.source }
func (p *Pattern) String() string        { return p.source }
func (p *Pattern) CaseInsensitive() bool { return p.opts.CaseInsensitive }
func (p *Pattern) NumSegments() int      { return len(p.segments) }
func (p *Pattern) Segment(i int) Segment { return p.segments[i] }
func (p *Pattern) NumFields() int        { return len(p.fields) }
func (p *Pattern) FieldAt(i int) Field   { return p.fields[i] }

// Segments returns a copy of the segment list.
func (p *Pattern) Segments() []Segment {
	return append([]Segment(nil), p.segments...)
}

// Fields returns the captures in source order.
func (p *Pattern) Fields() []Field {
	return append([]Field(nil), p.fields...)
}

// Field looks up a capture by name.
func (p *Pattern) Field(name string) (Field, bool) {
	i, ok := p.index[name]
	if !ok {
		return Field{}, false
	}
	return p.fields[i], true
}

// Extension returns the declared file extension without its dot. For an
// enum extension capture it is the first allowed value.
func (p *Pattern) Extension() string {
	for _, s := range p.segments {
		if s.Kind == SegExtension {
			return strings.TrimPrefix(s.Text, ".")
		}
	}
	for _, f := range p.fields {
		if f.Extension && len(f.Values) > 0 {
			return f.Values[0]
		}
	}
	return ""
}

// SuffixField names the capture that receives a numeric suffix when two
// files would otherwise share a name: the last mandatory slug or free-text
// capture.
func (p *Pattern) SuffixField() (string, bool) {
	for i := len(p.fields) - 1; i >= 0; i-- {
		f := p.fields[i]
		if !f.Optional && (f.Type == TypeSlug || f.Type == TypeFreeText) {
			return f.Name, true
		}
	}
	return "", false
}
