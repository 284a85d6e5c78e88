package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BadgerConfig configures a BadgerStore.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps the journal in memory only. Used by tests.
	InMemory bool

	SyncWrites bool

	// Logger receives badger's internal logging. Nil silences it.
	Logger *slog.Logger
}

// DefaultBadgerConfig returns a durable on-disk configuration.
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{SyncWrites: true}
}

// InMemoryBadgerConfig returns a configuration that touches no disk.
func InMemoryBadgerConfig() BadgerConfig {
	return BadgerConfig{InMemory: true}
}

// badgerLogger adapts slog.Logger to badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// keyPrefix groups batch keys. Keys sort by save time:
// batch/<unix nanos, zero padded>/<batch id>.
var keyPrefix = []byte("batch/")

func batchKey(e Entry) []byte {
	return fmt.Appendf(nil, "%s%020d/%s", keyPrefix, e.SavedAt.UnixNano(), e.BatchID())
}

// BadgerStore keeps the journal in an embedded badger database.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (creating if needed) a badger journal.
func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("journal directory is required for the badger backend")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create journal directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger journal: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Save(ctx context.Context, e Entry) error {
	_, span := tracer.Start(ctx, "journal.BadgerStore.Save", trace.WithAttributes(
		attribute.String("axon.batch_id", e.BatchID()),
	))
	defer span.End()

	if err := e.valid(); err != nil {
		return err
	}
	if e.SavedAt.IsZero() {
		e.SavedAt = time.Now()
	}
	val, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(batchKey(e), val)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("save batch %s: %w", e.BatchID(), err)
	}
	return nil
}

// each visits entries in key order, newest first when reverse is set,
// until fn returns false.
func (s *BadgerStore) each(reverse bool, fn func(key []byte, e Entry) bool) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = keyPrefix
		opts.Reverse = reverse
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := keyPrefix
		if reverse {
			seek = append(bytes.Clone(keyPrefix), 0xff)
		}
		for it.Seek(seek); it.Valid(); it.Next() {
			item := it.Item()
			var e Entry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				return fmt.Errorf("decode journal entry %s: %w", item.Key(), err)
			}
			if !fn(item.KeyCopy(nil), e) {
				return nil
			}
		}
		return nil
	})
}

func (s *BadgerStore) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	err := s.each(false, func(_ []byte, e Entry) bool {
		entries = append(entries, e)
		return true
	})
	return entries, err
}

func (s *BadgerStore) Latest(ctx context.Context, match func(Entry) bool) (Entry, error) {
	var (
		found Entry
		ok    bool
	)
	err := s.each(true, func(_ []byte, e Entry) bool {
		if match == nil || match(e) {
			found, ok = e, true
			return false
		}
		return true
	})
	if err != nil {
		return Entry{}, err
	}
	if !ok {
		return Entry{}, ErrEmpty
	}
	return found, nil
}

func (s *BadgerStore) Remove(ctx context.Context, batchID string) error {
	_, span := tracer.Start(ctx, "journal.BadgerStore.Remove", trace.WithAttributes(
		attribute.String("axon.batch_id", batchID),
	))
	defer span.End()

	var key []byte
	err := s.each(false, func(k []byte, e Entry) bool {
		if e.BatchID() == batchID {
			key = k
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	if key == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, batchID)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (s *BadgerStore) Close() error { return s.db.Close() }
