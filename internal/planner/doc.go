// Package planner turns validation results into a deterministic rename
// plan.
//
// Build repairs each non-conforming name field by field, renders the
// target from the repaired values and re-validates it. Conforming files
// take part as sources that map to themselves, so a repaired name can
// never silently replace one. Conflicts are settled by the policy's
// ConflictPolicy; numeric suffixes go at the end of the pattern's suffix
// field and are handed out in byte order of the source paths.
//
// Build is pure: it never touches the filesystem. Paths known to exist are
// passed in through Policy.Existing.
package planner
