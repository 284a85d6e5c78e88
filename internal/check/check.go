// Package check provides environment diagnostics (the check command) and
// the preflight validation run before a refactor touches the disk.
package check

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/backmassage/axon/internal/config"
	"github.com/backmassage/axon/internal/journal"
	"github.com/backmassage/axon/internal/pattern"
	"github.com/backmassage/axon/internal/pipeline"
	"github.com/backmassage/axon/internal/probe"
)

// Sentinel errors returned by Preflight.
var (
	ErrNotesDirMissing  = errors.New("notes directory does not exist")
	ErrNotesDirNotDir   = errors.New("notes path is not a directory")
	ErrNotesDirReadOnly = errors.New("notes directory is not writable")
	ErrFailed           = errors.New("environment check failed")
)

// Logger is the subset of the console logger RunCheck needs.
type Logger interface {
	Info(string, ...any)
	Success(string, ...any)
	Warn(string, ...any)
	Error(string, ...any)
	Debug(string, ...any)
}

// RunCheck reports on the notes directory, pattern, journal and leftover
// staging files. Every check runs; the returned error is ErrFailed when any
// of them reported an error.
func RunCheck(ctx context.Context, cfg *config.Config, log Logger) error {
	log.Info("=== Environment Check ===")

	failed := false
	if cfg.ConfigFile != "" {
		log.Success("config: %s", cfg.ConfigFile)
	} else {
		log.Info("config: defaults (no %s found)", config.FileName)
	}

	if err := checkNotesDir(cfg.NotesDir); err != nil {
		log.Error("notes dir %s: %v", cfg.NotesDir, err)
		failed = true
	} else {
		log.Success("notes dir %s is writable", cfg.NotesDir)
	}

	if p, err := pattern.Compile(cfg.Pattern, pipeline.PatternOptions(cfg)); err != nil {
		log.Error("pattern: %v", err)
		failed = true
	} else {
		log.Success("pattern: %s (%d fields)", cfg.Pattern, p.NumFields())
	}

	if err := checkJournal(ctx, cfg, log); err != nil {
		log.Error("journal %s: %v", cfg.JournalPath(), err)
		failed = true
	}

	if snap, err := probe.Probe(ctx, cfg.NotesDir, cfg.Recursive); err == nil {
		left := snap.Leftovers()
		for _, e := range left {
			log.Warn("staging leftover from an interrupted batch: %s", e.Path)
		}
		if len(left) == 0 {
			log.Success("no staging leftovers")
		}
		log.Debug("%d entries under %s", len(snap.Entries), cfg.NotesDir)
	}

	if failed {
		return ErrFailed
	}
	return nil
}

// Preflight verifies what a refactor needs before it runs: the notes
// directory exists and is writable and the pattern compiles.
func Preflight(cfg *config.Config) error {
	if err := checkNotesDir(cfg.NotesDir); err != nil {
		return fmt.Errorf("%s: %w", cfg.NotesDir, err)
	}
	if _, err := pattern.Compile(cfg.Pattern, pipeline.PatternOptions(cfg)); err != nil {
		return err
	}
	return nil
}

func checkNotesDir(dir string) error {
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotesDirMissing
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return ErrNotesDirNotDir
	}
	if err := probe.Writable(dir); err != nil {
		return fmt.Errorf("%w: %v", ErrNotesDirReadOnly, err)
	}
	return nil
}

func checkJournal(ctx context.Context, cfg *config.Config, log Logger) error {
	path := cfg.JournalPath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		log.Info("journal (%s): none yet at %s", cfg.Journal.Backend, path)
		return nil
	} else if err != nil {
		return err
	}
	store, err := journal.Open(journal.Backend(cfg.Journal.Backend), path, nil)
	if err != nil {
		return err
	}
	defer store.Close()
	entries, err := store.List(ctx)
	if err != nil {
		return err
	}
	log.Success("journal (%s): %d batch(es) recorded", cfg.Journal.Backend, len(entries))
	if e, err := store.Latest(ctx, journal.Failed); err == nil {
		log.Warn("batch %s failed; run refactor --retry to resume it", e.BatchID())
	}
	return nil
}
