package planner

import (
	"errors"
	"fmt"

	"github.com/backmassage/axon/internal/naming"
	"github.com/backmassage/axon/internal/pattern"
)

var (
	errUnrecognizable = errors.New("name does not resemble the pattern")
	errStrayText      = errors.New("text has no place in the pattern")
)

// repair derives the field values of a conforming name from r. It returns
// an error when some mandatory field cannot be given a valid value.
func repair(p *pattern.Pattern, r naming.Result, policy Policy) (map[string]pattern.Value, []Repair, error) {
	if len(r.Captures) == 0 && len(r.Violations) == 1 &&
		r.Violations[0].Kind == naming.UnexpectedSegment && r.Violations[0].Text == r.Name {
		return nil, nil, errUnrecognizable
	}

	values := make(map[string]pattern.Value, len(r.Fields))
	for k, v := range r.Fields {
		values[k] = v
	}
	var repairs []Repair
	for _, v := range r.Violations {
		if v.Field == "" {
			if v.Kind == naming.UnexpectedSegment && !policy.DropStrayText && !separatorsOnly(v.Text) {
				return nil, nil, fmt.Errorf("%w: %q", errStrayText, v.Text)
			}
			repairs = append(repairs, Repair{From: v.Text, Note: v.Kind.String() + ": " + v.Detail})
			continue
		}
		f, ok := p.Field(v.Field)
		if !ok {
			return nil, nil, fmt.Errorf("violation names unknown field %q", v.Field)
		}
		switch v.Kind {
		case naming.MissingField:
			// settled below together with fields that were never captured
		case naming.OrderingViolation:
			repairs = append(repairs, Repair{Field: f.Name, From: v.Text, To: v.Text, Note: "moved into position"})
		default:
			val, note, err := f.Repair(v.Text)
			if err != nil {
				if f.Optional {
					delete(values, f.Name)
					repairs = append(repairs, Repair{Field: f.Name, From: v.Text, Note: "dropped invalid optional field"})
					continue
				}
				return nil, nil, err
			}
			to, err := f.Format(val)
			if err != nil {
				return nil, nil, err
			}
			values[f.Name] = val
			repairs = append(repairs, Repair{Field: f.Name, From: v.Text, To: to, Note: note})
		}
	}

	for _, f := range p.Fields() {
		if _, ok := values[f.Name]; ok || f.Optional {
			continue
		}
		text, ok := policy.Defaults[f.Name]
		if !ok {
			return nil, nil, fmt.Errorf("missing %s and no default configured", f.Name)
		}
		val, err := f.Parse(text)
		if err != nil {
			return nil, nil, fmt.Errorf("default for %s: %w", f.Name, err)
		}
		values[f.Name] = val
		repairs = append(repairs, Repair{Field: f.Name, To: text, Note: "default"})
	}
	return values, repairs, nil
}

// separatorsOnly reports whether dropping s loses nothing but separators.
func separatorsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if !pattern.IsSeparator(s[i]) && s[i] != ' ' {
			return false
		}
	}
	return true
}
