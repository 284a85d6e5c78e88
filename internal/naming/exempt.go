package naming

import (
	"path"
	"sort"
)

// Exemptions maps file names (or path.Match globs) that are never held to a
// naming convention to the reason they are exempt.
type Exemptions map[string]string

// DefaultExemptions covers documentation and system files that live next to
// notes.
func DefaultExemptions() Exemptions {
	return Exemptions{
		"README.md":  "documentation",
		"prompts.md": "documentation",
		".gitignore": "system",
		".DS_Store":  "system",
	}
}

// With returns a copy of e extended with names exempted for reason.
func (e Exemptions) With(reason string, names ...string) Exemptions {
	out := make(Exemptions, len(e)+len(names))
	for k, v := range e {
		out[k] = v
	}
	for _, n := range names {
		out[n] = reason
	}
	return out
}

// Reason reports why name is exempt. Exact entries win over globs; globs
// are tried in sorted order so the answer is stable.
func (e Exemptions) Reason(name string) (string, bool) {
	if r, ok := e[name]; ok {
		return r, true
	}
	globs := make([]string, 0, len(e))
	for k := range e {
		globs = append(globs, k)
	}
	sort.Strings(globs)
	for _, g := range globs {
		if ok, err := path.Match(g, name); err == nil && ok {
			return e[g], true
		}
	}
	return "", false
}
