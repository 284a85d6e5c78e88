package probe

import (
	"fmt"
	"os"
)

// Writable checks that files can be created and removed in dir.
func Writable(dir string) error {
	f, err := os.CreateTemp(dir, ".axon-probe-*")
	if err != nil {
		return fmt.Errorf("%s is not writable: %w", dir, err)
	}
	name := f.Name()
	f.Close()
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("%s: cannot remove files: %w", dir, err)
	}
	return nil
}
