// Package executor applies rename plans to a filesystem.
//
// A batch runs in three steps. Preconditions are checked for every
// operation before anything moves. Each source is then staged to a unique
// temporary name in its own directory, and finally each staged file is
// committed to its target. Staging first makes chains and swaps inside one
// plan executable. If any rename fails, or the context is cancelled, the
// renames already done are undone in exact reverse order, so a batch ends
// either fully applied or back where it started. Nothing is retried
// automatically.
//
// Every attempted step is appended to the batch Record, which is what the
// journal persists and what Revert consumes.
package executor
