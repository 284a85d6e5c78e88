package planner

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/backmassage/axon/internal/naming"
	"github.com/backmassage/axon/internal/pattern"
)

// candidate is one file taking part in planning, conforming or not.
type candidate struct {
	source  string
	target  string // desired target before conflict handling
	final   string // settled target; equal to source for files that stay
	values  map[string]pattern.Value
	result  naming.Result
	repairs []Repair
	res     Resolution
	skip    string // non-empty when the file is left in place
}

func (c *candidate) moving() bool { return c.skip == "" && c.final != c.source }

// Build produces the rename plan for results under policy.
//
// Flow:
//  1. Repair every non-conforming result and render its target
//  2. Collect paths that cannot move: unrelated existing files and
//     unrepairable sources
//  3. Group candidates by target and settle conflicts per policy
//  4. Skip renames whose target is held by a file that stays, until stable
//  5. Order operations and skipped files, then derive the plan ID
func Build(p *pattern.Pattern, results []naming.Result, policy Policy) (*Plan, error) {
	sorted, seen := bySource(results)

	// --- 1. Desired targets ---
	var cands []*candidate
	stay := make(map[string]bool)
	var unrepairable []Skip
	for _, r := range sorted {
		c := &candidate{source: r.Path, result: r}
		if r.Matched {
			c.target, c.values = r.Path, r.Fields
			cands = append(cands, c)
			continue
		}
		values, repairs, err := repair(p, r, policy)
		if err != nil {
			unrepairable = append(unrepairable, Skip{Path: r.Path, Reason: err.Error()})
			stay[r.Path] = true
			continue
		}
		target, err := renderTarget(p, filepath.Dir(r.Path), values)
		if err != nil {
			return nil, fmt.Errorf("plan %s: %w", r.Path, err)
		}
		c.target, c.values, c.repairs = target, values, repairs
		cands = append(cands, c)
	}

	return settle(p, cands, seen, stay, unrepairable, policy)
}

// settle runs steps 2 to 5 of [Build] over candidates whose desired
// targets are known. seen holds every source in the batch and stay the
// sources that will not move.
func settle(p *pattern.Pattern, cands []*candidate, seen, stay map[string]bool, unrepairable []Skip, policy Policy) (*Plan, error) {
	// --- 2. Paths that cannot move ---
	for _, e := range policy.Existing {
		if e = filepath.Clean(e); !seen[e] {
			stay[e] = true
		}
	}

	// --- 3. Conflicts ---
	groups := make(map[string][]*candidate)
	reserved := make(map[string]bool)
	for _, c := range cands {
		groups[c.target] = append(groups[c.target], c)
		reserved[c.target] = true
	}
	for path := range stay {
		reserved[path] = true
	}
	targets := make([]string, 0, len(groups))
	for t := range groups {
		targets = append(targets, t)
	}
	sort.Strings(targets)

	resolver := newCollisionResolver(p, reserved)
	var conflicts []Conflict
	for _, t := range targets {
		members := groups[t] // already in source order
		occupied := stay[t]
		if len(members) == 1 && !occupied {
			members[0].final = t
			continue
		}
		switch policy.OnConflict {
		case FailBatch:
			conflicts = append(conflicts, conflictOf(t, members, occupied))
		case SkipConflicting:
			for _, m := range members {
				if m.source == t && !occupied {
					m.final = t
					continue
				}
				m.skip = conflictReason(t, members, occupied)
				m.res = Resolution{Kind: ResolutionSkipped}
			}
		case SuffixDeterministically:
			rest := members
			if !occupied {
				members[0].final = t
				rest = members[1:]
			}
			for _, m := range rest {
				target, n, err := resolver.resolve(m)
				if err != nil && m.source == t {
					// A conforming file that cannot be suffixed keeps its
					// name; whoever wanted it is settled by the cascade.
					m.final = t
					stay[t] = true
					continue
				}
				if err != nil {
					m.skip = fmt.Sprintf("%s: %v", conflictReason(t, members, occupied), err)
					m.res = Resolution{Kind: ResolutionSkipped}
					continue
				}
				m.final = target
				m.res = Resolution{Kind: ResolutionSuffixed, Suffix: n}
			}
		default:
			return nil, fmt.Errorf("unknown conflict policy %v", policy.OnConflict)
		}
	}
	if len(conflicts) > 0 {
		return nil, &PlanningError{Kind: ErrConflictUnresolved, Conflicts: conflicts}
	}

	// --- 4. Cascade ---
	for _, c := range cands {
		if c.skip != "" {
			stay[c.source] = true
		}
	}
	for changed := true; changed; {
		changed = false
		for _, c := range cands {
			if c.moving() && stay[c.final] {
				c.skip = fmt.Sprintf("target %s is held by a file that is not moving", c.final)
				c.res = Resolution{Kind: ResolutionSkipped}
				stay[c.source] = true
				changed = true
			}
		}
	}

	// --- 5. Assemble ---
	plan := &Plan{Skipped: unrepairable}
	for _, c := range cands {
		switch {
		case c.moving():
			plan.Operations = append(plan.Operations, c.operation(c.final))
		case c.skip != "":
			op := c.operation(c.target)
			plan.Skipped = append(plan.Skipped, Skip{Path: c.source, Reason: c.skip, Operation: &op})
		}
	}
	sort.Slice(plan.Operations, func(i, j int) bool { return plan.Operations[i].Source < plan.Operations[j].Source })
	sort.Slice(plan.Skipped, func(i, j int) bool { return plan.Skipped[i].Path < plan.Skipped[j].Path })
	plan.ID = ComputeID(plan.Operations, plan.Skipped)
	return plan, nil
}

// bySource cleans result paths, drops duplicates and sorts by path. The
// returned set holds every kept path.
func bySource(results []naming.Result) ([]naming.Result, map[string]bool) {
	sorted := make([]naming.Result, 0, len(results))
	seen := make(map[string]bool, len(results))
	for _, r := range results {
		path := filepath.Clean(r.Path)
		if seen[path] {
			continue
		}
		seen[path] = true
		r.Path = path
		sorted = append(sorted, r)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })
	return sorted, seen
}

func (c *candidate) operation(target string) Operation {
	return Operation{
		Source:     c.source,
		Target:     target,
		Violations: c.result.Violations,
		Repairs:    c.repairs,
		Resolution: c.res,
	}
}

// renderTarget renders values into a name in dir and checks that the name
// conforms.
func renderTarget(p *pattern.Pattern, dir string, values map[string]pattern.Value) (string, error) {
	name, err := p.Render(values)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPostcondition, err)
	}
	if r := naming.Validate(p, name); !r.Matched {
		return "", fmt.Errorf("%w: %q: %v", ErrPostcondition, name, r.Violations)
	}
	return filepath.Join(dir, name), nil
}

func conflictOf(target string, members []*candidate, occupied bool) Conflict {
	c := Conflict{Target: target, Occupied: occupied}
	for _, m := range members {
		c.Sources = append(c.Sources, m.source)
	}
	return c
}

func conflictReason(target string, members []*candidate, occupied bool) string {
	if occupied {
		return fmt.Sprintf("target %s already exists", target)
	}
	return fmt.Sprintf("%d files want %s", len(members), target)
}
