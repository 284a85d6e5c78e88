package pipeline

import "github.com/backmassage/axon/internal/executor"

// RunStats tracks aggregate counters across a refactor run.
type RunStats struct {
	Checked    int
	Exempt     int
	Conforming int
	Planned    int
	Skipped    int
	Renamed    int
	RolledBack int
	Failed     int
}

// absorb counts the final outcome of every operation in rec.
func (s *RunStats) absorb(rec *executor.Record) {
	if rec == nil {
		return
	}
	counts := rec.Count()
	s.Failed += counts[executor.Failed]
	if rec.Mode == executor.DryRun {
		return
	}
	s.Renamed += counts[executor.Applied]
	s.RolledBack += counts[executor.RolledBack]
}
