// Package naming validates filenames against compiled patterns.
//
// Validate aligns a name to a pattern's segments left to right, choosing
// the alignment that needs the fewest corrections: captures may hold
// invalid values, literals may differ in case, separators may be
// substituted and the extension may be wrong. Each correction becomes a
// Violation. If no alignment exists at all, ordered fallbacks try to
// explain the name as a field out of position or a missing field before
// giving up with a single UnexpectedSegment.
//
// Results are values; validation never returns an error.
package naming
