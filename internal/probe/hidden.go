package probe

import "strings"

// stagingMarker appears in the temporary names the executor stages files
// under.
const stagingMarker = ".axon-"

// IsHidden reports whether name is a dotfile.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// IsStaging reports whether name looks like a file the executor staged
// and never committed.
func IsStaging(name string) bool {
	return IsHidden(name) && strings.Contains(name[1:], stagingMarker)
}
