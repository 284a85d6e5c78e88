package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultFileName is the journal file kept in the notes directory.
const DefaultFileName = ".axon-rollback.json"

// FileStore keeps the journal as a JSON array in a single file. Every write
// replaces the file atomically.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// OpenFile returns a FileStore at path. The file is created on first Save.
func OpenFile(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("journal file path is required")
	}
	return &FileStore{path: path}, nil
}

// Path returns the journal file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) load() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode journal %s: %w", s.path, err)
	}
	return entries, nil
}

func (s *FileStore) store(entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode journal: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write journal: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync journal: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace journal: %w", err)
	}
	return nil
}

func (s *FileStore) Save(ctx context.Context, e Entry) error {
	_, span := tracer.Start(ctx, "journal.FileStore.Save", trace.WithAttributes(
		attribute.String("axon.batch_id", e.BatchID()),
	))
	defer span.End()

	if err := e.valid(); err != nil {
		return err
	}
	if e.SavedAt.IsZero() {
		e.SavedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.load()
	if err != nil {
		return err
	}
	return s.store(append(entries, e))
}

func (s *FileStore) List(ctx context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) Latest(ctx context.Context, match func(Entry) bool) (Entry, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return Entry{}, err
	}
	return latest(entries, match)
}

func (s *FileStore) Remove(ctx context.Context, batchID string) error {
	_, span := tracer.Start(ctx, "journal.FileStore.Remove", trace.WithAttributes(
		attribute.String("axon.batch_id", batchID),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.load()
	if err != nil {
		return err
	}
	for i, e := range entries {
		if e.BatchID() == batchID {
			return s.store(append(entries[:i:i], entries[i+1:]...))
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, batchID)
}

func (s *FileStore) Close() error { return nil }
