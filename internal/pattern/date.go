package pattern

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// DefaultDateLayout is used for date captures when neither the capture nor
// the compile options name a layout.
const DefaultDateLayout = time.DateOnly

type dateUnit byte

const (
	unitLiteral dateUnit = iota
	unitYear
	unitYear2
	unitMonth
	unitDay
)

type dateComp struct {
	unit     dateUnit
	min, max int
	lit      byte
}

// parseLayout splits a Go reference layout into numeric components and
// literal bytes. Only numeric year, month and day elements are supported.
func parseLayout(layout string) ([]dateComp, error) {
	var comps []dateComp
	var seen [5]bool
	for i := 0; i < len(layout); {
		rest := layout[i:]
		var c dateComp
		var n int
		switch {
		case len(rest) >= 4 && rest[:4] == "2006":
			c, n = dateComp{unit: unitYear, min: 4, max: 4}, 4
		case len(rest) >= 2 && rest[:2] == "06":
			c, n = dateComp{unit: unitYear2, min: 2, max: 2}, 2
		case len(rest) >= 2 && rest[:2] == "01":
			c, n = dateComp{unit: unitMonth, min: 1, max: 2}, 2
		case len(rest) >= 2 && rest[:2] == "02":
			c, n = dateComp{unit: unitDay, min: 1, max: 2}, 2
		case rest[0] == '1':
			c, n = dateComp{unit: unitMonth, min: 1, max: 2}, 1
		case rest[0] == '2':
			c, n = dateComp{unit: unitDay, min: 1, max: 2}, 1
		case isDigit(rest[0]) || isAlnum(rest[0]):
			return nil, fmt.Errorf("unsupported layout element at %q", rest)
		default:
			c, n = dateComp{unit: unitLiteral, lit: rest[0]}, 1
		}
		if c.unit != unitLiteral {
			if seen[c.unit] {
				return nil, fmt.Errorf("layout %q repeats an element", layout)
			}
			seen[c.unit] = true
		}
		comps = append(comps, c)
		i += n
	}
	if !(seen[unitYear] || seen[unitYear2]) || !seen[unitMonth] || !seen[unitDay] {
		return nil, fmt.Errorf("layout %q needs year, month and day", layout)
	}
	return comps, nil
}

type dateParse struct {
	end        int
	y, m, d    int
	normalized bool
}

// lenientDates enumerates every way the components can be read starting at
// pos, accepting short month/day groups and any separator in place of a
// layout separator.
func lenientDates(comps []dateComp, s string, pos int) []dateParse {
	var out []dateParse
	var vals [5]int
	var walk func(ci, p int, exact bool)
	walk = func(ci, p int, exact bool) {
		if ci == len(comps) {
			y := vals[unitYear]
			if y2 := vals[unitYear2]; y == 0 && y2 != 0 {
				y = 2000 + y2
			}
			out = append(out, dateParse{end: p, y: y, m: vals[unitMonth], d: vals[unitDay], normalized: exact})
			return
		}
		c := comps[ci]
		if c.unit == unitLiteral {
			if p >= len(s) {
				return
			}
			switch {
			case s[p] == c.lit:
				walk(ci+1, p+1, exact)
			case IsSeparator(s[p]) || s[p] == ' ' || s[p] == '/':
				walk(ci+1, p+1, false)
			}
			return
		}
		for n := c.max; n >= c.min; n-- {
			if p+n > len(s) {
				continue
			}
			digits := s[p : p+n]
			ok := true
			for i := 0; i < n; i++ {
				if !isDigit(digits[i]) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			v, _ := strconv.Atoi(digits)
			vals[c.unit] = v
			walk(ci+1, p+n, exact)
			vals[c.unit] = 0
		}
	}
	walk(0, pos, true)
	return out
}

func (p dateParse) valid() bool {
	if p.y <= 0 || p.m < 1 || p.m > 12 || p.d < 1 {
		return false
	}
	t := time.Date(p.y, time.Month(p.m), p.d, 0, 0, 0, 0, time.UTC)
	return t.Month() == time.Month(p.m) && t.Day() == p.d
}

func (p dateParse) time() time.Time {
	return time.Date(p.y, time.Month(p.m), p.d, 0, 0, 0, 0, time.UTC)
}

func dateEnds(comps []dateComp, s string, pos int) []int {
	seen := map[int]bool{}
	var ends []int
	for _, p := range lenientDates(comps, s, pos) {
		if !seen[p.end] {
			seen[p.end] = true
			ends = append(ends, p.end)
		}
	}
	sort.Ints(ends)
	return ends
}

func strictDate(layout, raw string) (time.Time, bool) {
	t, err := time.Parse(layout, raw)
	if err != nil || t.Format(layout) != raw {
		return time.Time{}, false
	}
	return t, true
}
