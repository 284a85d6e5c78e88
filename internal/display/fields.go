package display

import (
	"fmt"
	"io"

	"github.com/backmassage/axon/internal/pattern"
)

// FieldMap returns the captured values as text, keyed by field name.
func FieldMap(values map[string]pattern.Value) map[string]string {
	out := make(map[string]string, len(values))
	for name, v := range values {
		out[name] = v.String()
	}
	return out
}

// Fields prints one aligned "name: value" line per field of p, in pattern
// order. Optional fields without a value are left out.
func Fields(w io.Writer, p *pattern.Pattern, values map[string]pattern.Value) {
	width := 0
	for _, f := range p.Fields() {
		width = max(width, len(f.Name))
	}
	for _, f := range p.Fields() {
		v, ok := values[f.Name]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%-*s %s\n", width+1, f.Name+":", v)
	}
}
