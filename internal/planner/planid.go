package planner

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeID hashes the canonical form of an operation and skip list. Two
// plans with the same renames and skips share an ID.
func ComputeID(ops []Operation, skipped []Skip) string {
	h := sha256.New()
	for _, op := range ops {
		fmt.Fprintf(h, "op\x00%s\x00%s\x00%s\x00%d\n", op.Source, op.Target, op.Resolution.Kind, op.Resolution.Suffix)
	}
	for _, s := range skipped {
		fmt.Fprintf(h, "skip\x00%s\x00%s\n", s.Path, s.Reason)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Invert returns the plan that undoes ops, applying the reverse renames in
// reverse order. The inverse restores names as they were, so its targets
// are not validated.
func Invert(ops []Operation) *Plan {
	inv := &Plan{Operations: make([]Operation, 0, len(ops))}
	for i := len(ops) - 1; i >= 0; i-- {
		inv.Operations = append(inv.Operations, Operation{Source: ops[i].Target, Target: ops[i].Source})
	}
	inv.ID = ComputeID(inv.Operations, nil)
	return inv
}
