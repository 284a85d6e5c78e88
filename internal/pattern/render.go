package pattern

import (
	"fmt"
	"strings"
)

// Render builds the filename described by values. Mandatory captures must
// have a value; an optional capture without one is left out together with
// its grouped separator.
func (p *Pattern) Render(values map[string]Value) (string, error) {
	absent := map[int]bool{}
	for _, s := range p.segments {
		if s.Kind != SegCapture || s.Group == 0 {
			continue
		}
		if _, ok := values[p.fields[s.Field].Name]; !ok {
			absent[s.Group] = true
		}
	}
	var b strings.Builder
	for _, s := range p.segments {
		if s.Group != 0 && absent[s.Group] {
			continue
		}
		if s.Kind != SegCapture {
			b.WriteString(s.Text)
			continue
		}
		f := p.fields[s.Field]
		v, ok := values[f.Name]
		if !ok {
			return "", fmt.Errorf("render %q: %w: %s", p.source, ErrMissingValue, f.Name)
		}
		text, err := f.Format(v)
		if err != nil {
			return "", fmt.Errorf("render %q: %w", p.source, err)
		}
		b.WriteString(text)
	}
	return b.String(), nil
}
