package probe

import (
	"path/filepath"
	"time"
)

// Entry is one directory entry seen by Probe.
type Entry struct {
	Path    string
	Name    string
	Dir     bool
	Size    int64
	ModTime time.Time
}

// Hidden reports whether the entry is a dotfile.
func (e Entry) Hidden() bool { return IsHidden(e.Name) }

// Snapshot is what Probe saw under Root. Entries are sorted by path.
type Snapshot struct {
	Root      string
	Recursive bool
	Entries   []Entry

	index map[string]int
}

func newSnapshot(root string, recursive bool, entries []Entry) *Snapshot {
	s := &Snapshot{Root: root, Recursive: recursive, Entries: entries, index: make(map[string]int, len(entries))}
	for i, e := range entries {
		s.index[e.Path] = i
	}
	return s
}

// Paths returns the path of every entry, hidden ones included.
func (s *Snapshot) Paths() []string {
	paths := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		paths[i] = e.Path
	}
	return paths
}

// Files returns the regular, non-hidden files.
func (s *Snapshot) Files() []Entry {
	var files []Entry
	for _, e := range s.Entries {
		if !e.Dir && !e.Hidden() {
			files = append(files, e)
		}
	}
	return files
}

// Lookup returns the entry at path.
func (s *Snapshot) Lookup(path string) (Entry, bool) {
	i, ok := s.index[filepath.Clean(path)]
	if !ok {
		return Entry{}, false
	}
	return s.Entries[i], true
}

// Has reports whether path existed when the snapshot was taken.
func (s *Snapshot) Has(path string) bool {
	_, ok := s.index[filepath.Clean(path)]
	return ok
}

// Leftovers returns staging files an interrupted batch left behind.
func (s *Snapshot) Leftovers() []Entry {
	var out []Entry
	for _, e := range s.Entries {
		if IsStaging(e.Name) {
			out = append(out, e)
		}
	}
	return out
}
