package pipeline

import (
	"context"
	"fmt"

	"github.com/backmassage/axon/internal/config"
	"github.com/backmassage/axon/internal/naming"
	"github.com/backmassage/axon/internal/probe"
)

// ExemptFile is a discovered file that is not held to the convention.
type ExemptFile struct {
	Path   string
	Name   string
	Reason string
}

// Discovery is the set of files a command works on.
type Discovery struct {
	Snapshot *probe.Snapshot
	// Candidates are files held to the convention, sorted by path.
	Candidates []string
	Exempt     []ExemptFile
}

// Discover probes cfg.NotesDir, keeps files with an allowed extension, and
// splits off exempt names.
func Discover(ctx context.Context, cfg *config.Config, exempt naming.Exemptions) (*Discovery, error) {
	snap, err := probe.Probe(ctx, cfg.NotesDir, cfg.Recursive)
	if err != nil {
		return nil, err
	}
	d := &Discovery{Snapshot: snap}
	for _, f := range snap.Files() {
		if !cfg.ExtensionAllowed(f.Name) {
			continue
		}
		if reason, ok := exempt.Reason(f.Name); ok {
			d.Exempt = append(d.Exempt, ExemptFile{Path: f.Path, Name: f.Name, Reason: reason})
			continue
		}
		d.Candidates = append(d.Candidates, f.Path)
	}
	return d, nil
}

// Total counts every discovered file.
func (d *Discovery) Total() int { return len(d.Candidates) + len(d.Exempt) }

func (e *Engine) discover(ctx context.Context) (*Discovery, error) {
	d, err := Discover(ctx, e.cfg, e.exempt)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	if n := len(d.Snapshot.Leftovers()); n > 0 {
		e.log.Warn("%d staging file(s) from an interrupted batch in %s; run 'axon check'", n, e.cfg.NotesDir)
	}
	e.log.Debug("Discovered %d files (%d exempt) in %s", d.Total(), len(d.Exempt), e.cfg.NotesDir)
	return d, nil
}
