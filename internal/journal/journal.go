// Package journal persists executed batches so they can be rolled back or
// retried later.
//
// Two backends exist: a JSON file kept next to the notes (the default) and
// an embedded badger database for large histories.
package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/backmassage/axon/internal/executor"
	"github.com/backmassage/axon/internal/planner"
)

var tracer = otel.Tracer("github.com/backmassage/axon/internal/journal")

var (
	// ErrEmpty is returned when the journal holds no matching batch.
	ErrEmpty = errors.New("journal is empty")
	// ErrNotFound is returned by Remove for an unknown batch id.
	ErrNotFound = errors.New("batch not in journal")
)

// Entry is one journaled batch: the plan that was run and what happened.
type Entry struct {
	Plan    *planner.Plan    `json:"plan"`
	Record  *executor.Record `json:"record"`
	SavedAt time.Time        `json:"saved_at"`
}

// BatchID returns the id of the journaled batch.
func (e Entry) BatchID() string {
	if e.Record == nil {
		return ""
	}
	return e.Record.BatchID
}

func (e Entry) valid() error {
	if e.Record == nil || e.Record.BatchID == "" {
		return errors.New("journal entry has no batch record")
	}
	if e.Plan == nil {
		return errors.New("journal entry has no plan")
	}
	return nil
}

// Store is a journal backend. Entries are kept in the order they were
// saved.
type Store interface {
	Save(ctx context.Context, e Entry) error
	// List returns every entry, oldest first.
	List(ctx context.Context) ([]Entry, error)
	// Latest returns the newest entry for which match reports true; a nil
	// match accepts any entry.
	Latest(ctx context.Context, match func(Entry) bool) (Entry, error)
	Remove(ctx context.Context, batchID string) error
	Close() error
}

// Backend names a Store implementation.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendBadger Backend = "badger"
)

// Open opens the journal for backend at path. For the file backend path is
// the JSON file; for badger it is the database directory.
func Open(backend Backend, path string, logger *slog.Logger) (Store, error) {
	switch Backend(strings.ToLower(string(backend))) {
	case BackendFile, "":
		return OpenFile(path)
	case BackendBadger:
		cfg := DefaultBadgerConfig()
		cfg.Path = path
		cfg.Logger = logger
		return OpenBadger(cfg)
	}
	return nil, fmt.Errorf("unknown journal backend %q (want file or badger)", backend)
}

// latest scans entries newest first.
func latest(entries []Entry, match func(Entry) bool) (Entry, error) {
	for i := len(entries) - 1; i >= 0; i-- {
		if match == nil || match(entries[i]) {
			return entries[i], nil
		}
	}
	return Entry{}, ErrEmpty
}

// Applied matches batches that renamed files and can be rolled back.
func Applied(e Entry) bool {
	return e.Record != nil && e.Record.Mode == executor.Apply && e.Record.Outcome == executor.Applied
}

// Failed matches applied batches that did not complete.
func Failed(e Entry) bool {
	return e.Record != nil && e.Record.Mode == executor.Apply && e.Record.Outcome == executor.Failed
}
