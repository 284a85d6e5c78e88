package planner

import (
	"fmt"
	"path/filepath"

	"github.com/backmassage/axon/internal/pattern"
)

const maxSuffix = 10000

// collisionResolver hands out suffixed targets to the members of a conflict
// group. Counters are kept per base target so later members continue where
// earlier ones stopped.
type collisionResolver struct {
	p        *pattern.Pattern
	field    string
	reserved map[string]bool // every target already spoken for
	counters map[string]int  // base target → next suffix
}

func newCollisionResolver(p *pattern.Pattern, reserved map[string]bool) *collisionResolver {
	field, _ := p.SuffixField()
	return &collisionResolver{
		p:        p,
		field:    field,
		reserved: reserved,
		counters: make(map[string]int),
	}
}

// resolve returns the first free suffixed variant of c's target, starting
// at 2.
func (cr *collisionResolver) resolve(c *candidate) (string, int, error) {
	if cr.field == "" {
		return "", 0, fmt.Errorf("pattern %s has no field that can carry a suffix", cr.p.Source())
	}
	base, ok := c.values[cr.field]
	if !ok {
		return "", 0, fmt.Errorf("no %s value to suffix", cr.field)
	}
	counter := cr.counters[c.target]
	if counter == 0 {
		counter = 2
	}
	values := make(map[string]pattern.Value, len(c.values))
	for k, v := range c.values {
		values[k] = v
	}
	dir := filepath.Dir(c.source)
	for ; counter < maxSuffix; counter++ {
		values[cr.field] = withSuffix(base, counter)
		target, err := renderTarget(cr.p, dir, values)
		if err != nil {
			return "", 0, err
		}
		if cr.reserved[target] {
			continue
		}
		cr.counters[c.target] = counter + 1
		cr.reserved[target] = true
		return target, counter, nil
	}
	return "", 0, fmt.Errorf("no free suffix for %s", c.target)
}

func withSuffix(v pattern.Value, n int) pattern.Value {
	switch v := v.(type) {
	case pattern.SlugValue:
		return pattern.SlugValue(fmt.Sprintf("%s-%d", v, n))
	case pattern.TextValue:
		return pattern.TextValue(fmt.Sprintf("%s-%d", v, n))
	}
	return v
}
