// Package badgerdb is the embedded BadgerDB adapter for the partitioned
// event store. Events are written once per partition kind under keys of
// the form
//
//	evt/<kind>/<value>/<timestamp-nanos hex>/<message-id>
//
// so that a partition's window maps to a contiguous key range and a range
// scan becomes a bounded prefix iteration.
package badgerdb

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/courseloop/insights/internal/core/domain"
	"github.com/courseloop/insights/internal/core/ports"
)

const keyPrefix = "evt"

// Config holds BadgerDB settings.
type Config struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path string

	// InMemory runs without disk persistence. Useful for tests.
	InMemory bool

	// Logger receives BadgerDB's internal log output. Nil disables it.
	Logger *slog.Logger
}

// Store implements ports.EventStore over BadgerDB.
type Store struct {
	db *badger.DB
}

var _ ports.EventStore = (*Store)(nil)

// Open opens (or creates) the event store.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("badgerdb: path is required for a persistent store")
	}

	opts := badger.DefaultOptions(cfg.Path).WithInMemory(cfg.InMemory)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badgerdb: open: %w", err)
	}
	return &Store{db: db}, nil
}

// Append writes events into every partition family (module, student,
// provider). Used by the seed tool and tests; the production write path is
// the ingestion service.
func (s *Store) Append(ctx context.Context, events ...domain.InteractionEvent) error {
	batch := s.db.NewWriteBatch()
	defer batch.Cancel()

	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("badgerdb: marshal event %s: %w", ev.MessageID, err)
		}
		keys := []domain.PartitionKey{
			domain.ModuleKey(ev.ModuleID),
			domain.StudentKey(ev.StudentID),
			domain.ProviderKey(ev.Provider),
		}
		for _, key := range keys {
			if err := batch.Set(eventKey(key, ev.Timestamp, ev.MessageID), payload); err != nil {
				return fmt.Errorf("badgerdb: batch set: %w", err)
			}
		}
	}
	if err := batch.Flush(); err != nil {
		return fmt.Errorf("badgerdb: flush: %w", err)
	}
	return nil
}

// RangeScan implements ports.EventStore. The cursor is the last key of the
// previous page; iteration resumes just past it.
func (s *Store) RangeScan(ctx context.Context, key domain.PartitionKey, start, end time.Time, limit int, cursor string) (ports.ScanPage, error) {
	prefix := partitionPrefix(key)
	seek := append([]byte{}, prefix...)
	seek = append(seek, timestampSegment(start)...)
	if cursor != "" {
		// Resume after the cursor key. Appending a zero byte yields the
		// smallest key strictly greater than the cursor.
		seek = append([]byte(cursor), 0)
	}
	endSegment := timestampSegment(end)

	var page ports.ScanPage
	var lastKey string
	err := s.db.View(func(txn *badger.Txn) error {
		itOpts := badger.DefaultIteratorOptions
		itOpts.Prefix = prefix
		it := txn.NewIterator(itOpts)
		defer it.Close()

		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			k := item.Key()

			// Keys order by timestamp, so the first key at or past the
			// window end terminates the scan.
			if tsSegmentOf(k, prefix) >= string(endSegment) {
				break
			}

			if limit > 0 && len(page.Events) >= limit {
				page.NextCursor = lastKey
				return nil
			}

			var ev domain.InteractionEvent
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &ev)
			}); err != nil {
				return fmt.Errorf("badgerdb: decode %s: %w", k, err)
			}
			page.Events = append(page.Events, ev)
			lastKey = string(item.KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return ports.ScanPage{}, err
	}
	return page, nil
}

// Close implements ports.EventStore.
func (s *Store) Close() error {
	return s.db.Close()
}

func partitionPrefix(key domain.PartitionKey) []byte {
	return []byte(fmt.Sprintf("%s/%s/%s/", keyPrefix, key.Kind, key.Value))
}

func eventKey(key domain.PartitionKey, ts time.Time, messageID string) []byte {
	k := partitionPrefix(key)
	k = append(k, timestampSegment(ts)...)
	k = append(k, '/')
	k = append(k, messageID...)
	return k
}

// timestampSegment is a fixed-width hex encoding of unix nanos, chosen so
// byte order equals time order.
func timestampSegment(t time.Time) []byte {
	return []byte(fmt.Sprintf("%016x", t.UTC().UnixNano()))
}

func tsSegmentOf(key, prefix []byte) string {
	rest := key[len(prefix):]
	if len(rest) < 16 {
		return string(rest)
	}
	return string(rest[:16])
}

// badgerLogger adapts slog to BadgerDB's logger interface.
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
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
