package pattern

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Field is one typed capture of a compiled pattern. Fields are copied out of
// a Pattern by value; the slices they carry must be treated as read-only.
type Field struct {
	Name     string
	Type     FieldType
	Optional bool
	// Values holds the allowed literals of an enum or the tag vocabulary.
	Values []string
	// Width is the zero-padded width of an integer field; 0 means unpadded.
	Width int
	// Layout is the reference layout of a date field.
	Layout string
	// Extension marks a literal-enum capture that closes the pattern after
	// a '.' and therefore acts as the file extension.
	Extension bool

	foldCase bool
	comps    []dateComp
}

// Distinctive reports whether a value of this field can be recognized out of
// position, which lets the matcher report an ordering violation rather than
// a missing field.
func (f Field) Distinctive() bool { return f.Type == TypeDate }

// Spans returns candidate end offsets for a capture of f starting at pos in
// s, in ascending order. Candidates are lenient: a span may hold a value
// that fails Check so the mismatch can be reported instead of losing the
// alignment.
func (f Field) Spans(s string, pos int) []int {
	if pos >= len(s) {
		return nil
	}
	var ends []int
	switch f.Type {
	case TypeDate:
		ends = dateEnds(f.comps, s, pos)
	case TypeSlug:
		ends = runEnds(s, pos, func(c byte) bool { return c != '.' && c != '/' && c != '\\' })
	case TypeTagList:
		ends = runEnds(s, pos, func(c byte) bool { return isAlnum(c) || c == '+' || c == ',' || c == '_' })
	case TypeInteger:
		ends = runEnds(s, pos, isDigit)
		if len(ends) == 0 {
			ends = runEnds(s, pos, isWordChar)
		}
	case TypeEnum:
		rest := s[pos:]
		for _, v := range f.Values {
			if len(v) <= len(rest) && strings.EqualFold(rest[:len(v)], v) {
				ends = append(ends, pos+len(v))
			}
		}
		ends = append(ends, runEnds(s, pos, isAlnum)...)
	case TypeFreeText:
		ends = runEnds(s, pos, func(c byte) bool { return c != '/' && c != '\\' })
	}
	return dedupe(ends)
}

// runEnds returns pos+1 .. pos+n where n is the length of the run of bytes
// satisfying ok from pos.
func runEnds(s string, pos int, ok func(byte) bool) []int {
	var ends []int
	for i := pos; i < len(s) && ok(s[i]); i++ {
		ends = append(ends, i+1)
	}
	return ends
}

func dedupe(ends []int) []int {
	if len(ends) < 2 {
		return ends
	}
	sort.Ints(ends)
	out := ends[:1]
	for _, e := range ends[1:] {
		if e != out[len(out)-1] {
			out = append(out, e)
		}
	}
	return out
}

// Find returns the strict occurrences of a distinctive field in s as
// [start, end) pairs, leftmost first. Occurrences must not be embedded in a
// longer alphanumeric run.
func (f Field) Find(s string) [][2]int {
	if !f.Distinctive() {
		return nil
	}
	var out [][2]int
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) || (i > 0 && isAlnum(s[i-1])) {
			continue
		}
		ends := dateEnds(f.comps, s, i)
		for j := len(ends) - 1; j >= 0; j-- {
			end := ends[j]
			if end < len(s) && isAlnum(s[end]) {
				continue
			}
			if _, ok := strictDate(f.Layout, s[i:end]); ok {
				out = append(out, [2]int{i, end})
				i = end - 1
				break
			}
		}
	}
	return out
}

// Check validates a raw capture strictly. It returns the typed value when
// the capture is valid, otherwise the issue and a short description.
func (f Field) Check(raw string) (Value, Issue, string) {
	if raw == "" {
		return nil, IssueInvalid, "empty value"
	}
	switch f.Type {
	case TypeDate:
		if t, ok := strictDate(f.Layout, raw); ok {
			return DateValue{Time: t}, IssueNone, ""
		}
		for _, p := range lenientDates(f.comps, raw, 0) {
			if p.end == len(raw) && !p.valid() {
				return nil, IssueInvalid, "not a calendar date"
			}
		}
		return nil, IssueInvalid, fmt.Sprintf("date must use layout %s", f.Layout)
	case TypeSlug:
		return f.checkSlug(raw)
	case TypeTagList:
		return f.checkTags(raw)
	case TypeEnum:
		for _, v := range f.Values {
			if raw == v {
				return EnumValue(v), IssueNone, ""
			}
		}
		for _, v := range f.Values {
			if strings.EqualFold(raw, v) {
				if f.foldCase {
					return EnumValue(v), IssueNone, ""
				}
				return nil, IssueCase, fmt.Sprintf("want %q", v)
			}
		}
		if f.Extension {
			return nil, IssueExtension, fmt.Sprintf("want one of %s", strings.Join(f.Values, ", "))
		}
		return nil, IssueInvalid, fmt.Sprintf("want one of %s", strings.Join(f.Values, ", "))
	case TypeInteger:
		n, ok := parseDigits(raw)
		if !ok {
			return nil, IssueInvalid, "not an integer"
		}
		if f.Width > 0 && len(raw) != f.Width {
			return nil, IssueInvalid, fmt.Sprintf("want %d digits", f.Width)
		}
		if f.Width == 0 && len(raw) > 1 && raw[0] == '0' {
			return nil, IssueInvalid, "leading zero"
		}
		return IntValue(n), IssueNone, ""
	case TypeFreeText:
		if raw != strings.TrimSpace(raw) {
			return nil, IssueInvalid, "surrounding whitespace"
		}
		for _, r := range raw {
			if unicode.IsControl(r) || r == '/' || r == '\\' {
				return nil, IssueInvalid, "control or path character"
			}
		}
		return TextValue(raw), IssueNone, ""
	}
	return nil, IssueInvalid, "unknown field type"
}

func parseDigits(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	for i := 0; i < len(raw); i++ {
		if !isDigit(raw[i]) {
			return 0, false
		}
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}

func (f Field) checkSlug(raw string) (Value, Issue, string) {
	norm := raw
	if f.foldCase {
		norm = strings.ToLower(raw)
	}
	var space, upper, bad, hyphen bool
	for i := 0; i < len(norm); i++ {
		c := norm[i]
		switch {
		case c == ' ' || c == '\t':
			space = true
		case isUpper(c):
			upper = true
		case c == '-':
			if i == 0 || i == len(norm)-1 || norm[i-1] == '-' {
				hyphen = true
			}
		case !isLower(c) && !isDigit(c):
			bad = true
		}
	}
	if !space && !upper && !bad && !hyphen {
		return SlugValue(norm), IssueNone, ""
	}
	if upper && !space && !bad && !hyphen {
		return nil, IssueCase, "slug must be lowercase"
	}
	var problems []string
	if space {
		problems = append(problems, "whitespace")
	}
	if upper {
		problems = append(problems, "case")
	}
	if bad {
		problems = append(problems, "invalid characters")
	}
	if hyphen {
		problems = append(problems, "stray hyphen")
	}
	return nil, IssueInvalid, "slug: " + strings.Join(problems, "/")
}

func (f Field) checkTags(raw string) (Value, Issue, string) {
	parts := strings.Split(raw, tagJoiner)
	tags := make(TagsValue, 0, len(parts))
	seen := map[string]bool{}
	var caseOnly bool
	var problems []string
	for _, p := range parts {
		canon, exact, ok := f.lookupTag(p)
		switch {
		case p == "":
			problems = append(problems, "empty tag")
			continue
		case !ok:
			problems = append(problems, fmt.Sprintf("unknown tag %q", p))
			continue
		case !exact && !f.foldCase:
			caseOnly = true
		}
		if seen[canon] {
			problems = append(problems, fmt.Sprintf("duplicate tag %q", canon))
			continue
		}
		seen[canon] = true
		tags = append(tags, canon)
	}
	if len(problems) > 0 {
		return nil, IssueInvalid, strings.Join(problems, ", ")
	}
	if caseOnly {
		return nil, IssueCase, "tags must match vocabulary case"
	}
	return tags, IssueNone, ""
}

func (f Field) lookupTag(tag string) (canon string, exact, ok bool) {
	for _, v := range f.Values {
		if v == tag {
			return v, true, true
		}
	}
	for _, v := range f.Values {
		if strings.EqualFold(v, tag) {
			return v, false, true
		}
	}
	return "", false, false
}

// Parse converts text into a value of f, accepting only strictly valid
// input. It is used for configured defaults.
func (f Field) Parse(raw string) (Value, error) {
	v, issue, detail := f.Check(raw)
	if issue != IssueNone {
		return nil, fmt.Errorf("%w: field %s: %q: %s", ErrUnrepairable, f.Name, raw, detail)
	}
	return v, nil
}

// Repair maps a non-conforming raw capture to the nearest valid value. The
// note describes anything that was lost along the way, such as dropped tags.
func (f Field) Repair(raw string) (Value, string, error) {
	fail := func(detail string) (Value, string, error) {
		return nil, "", fmt.Errorf("%w: field %s: %q: %s", ErrUnrepairable, f.Name, raw, detail)
	}
	switch f.Type {
	case TypeDate:
		for _, p := range lenientDates(f.comps, strings.TrimSpace(raw), 0) {
			if p.end == len(strings.TrimSpace(raw)) && p.valid() {
				return DateValue{Time: p.time()}, "", nil
			}
		}
		return fail("not a recognizable calendar date")
	case TypeSlug:
		s := Slugify(raw)
		if s == "" {
			return fail("nothing left after slugifying")
		}
		return SlugValue(s), "", nil
	case TypeTagList:
		var tags TagsValue
		var dropped []string
		seen := map[string]bool{}
		for _, p := range strings.FieldsFunc(raw, func(r rune) bool { return r == '+' || r == ',' || r == ' ' }) {
			canon, _, ok := f.lookupTag(p)
			if !ok {
				dropped = append(dropped, p)
				continue
			}
			if !seen[canon] {
				seen[canon] = true
				tags = append(tags, canon)
			}
		}
		if len(tags) == 0 {
			return fail("no known tags")
		}
		note := ""
		if len(dropped) > 0 {
			note = "dropped unknown tags: " + strings.Join(dropped, ", ")
		}
		return tags, note, nil
	case TypeEnum:
		for _, v := range f.Values {
			if strings.EqualFold(strings.TrimSpace(raw), v) {
				return EnumValue(v), "", nil
			}
		}
		if f.Extension && len(f.Values) > 0 {
			return EnumValue(f.Values[0]), fmt.Sprintf("extension %q replaced with %q", raw, f.Values[0]), nil
		}
		return fail("not one of " + strings.Join(f.Values, ", "))
	case TypeInteger:
		n, ok := parseDigits(strings.TrimSpace(raw))
		if !ok {
			return fail("not an integer")
		}
		if f.Width > 0 && len(strconv.Itoa(n)) > f.Width {
			return fail(fmt.Sprintf("does not fit in %d digits", f.Width))
		}
		return IntValue(n), "", nil
	case TypeFreeText:
		t := strings.Map(func(r rune) rune {
			switch {
			case r == '/' || r == '\\':
				return '-'
			case unicode.IsControl(r):
				return -1
			}
			return r
		}, raw)
		t = strings.TrimSpace(t)
		if t == "" {
			return fail("empty after cleanup")
		}
		return TextValue(t), "", nil
	}
	return fail("unknown field type")
}

// Format renders a value of f the way it appears in a conforming filename.
func (f Field) Format(v Value) (string, error) {
	if v == nil {
		return "", fmt.Errorf("%w: %s", ErrMissingValue, f.Name)
	}
	if v.Type() != f.Type {
		return "", fmt.Errorf("%w: field %s is %s, got %s", ErrValueType, f.Name, f.Type, v.Type())
	}
	switch v := v.(type) {
	case DateValue:
		return v.Time.Format(f.Layout), nil
	case IntValue:
		if f.Width > 0 {
			return fmt.Sprintf("%0*d", f.Width, int(v)), nil
		}
		return strconv.Itoa(int(v)), nil
	}
	return v.String(), nil
}

// Slugify lowercases s and collapses every run of characters outside
// [a-z0-9] into a single hyphen.
func Slugify(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}
