// Package probe inspects the notes directory. A single walk produces a
// Snapshot that discovery, planning and diagnostics all read from, so the
// filesystem is listed once per command.
package probe
