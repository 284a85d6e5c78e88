package executor

import (
	"fmt"
	"path/filepath"
)

// acquire claims every path for batch. It fails without claiming anything
// when another batch already holds one of them. The returned func releases
// the claim.
func (e *Executor) acquire(batch string, paths []string) (func(), error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	clean := make([]string, 0, len(paths))
	for _, p := range paths {
		p = filepath.Clean(p)
		if owner, held := e.owners[p]; held && owner != batch {
			return nil, fmt.Errorf("%w: %s is held by batch %s", ErrOverlappingBatch, p, owner)
		}
		clean = append(clean, p)
	}
	for _, p := range clean {
		e.owners[p] = batch
	}
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for _, p := range clean {
			if e.owners[p] == batch {
				delete(e.owners, p)
			}
		}
	}, nil
}
