// Package memory is an in-memory EventStore used by tests and local
// development.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/courseloop/insights/internal/core/domain"
	"github.com/courseloop/insights/internal/core/ports"
)

// Store is an in-memory implementation of ports.EventStore. Writes go
// through Append; scans see a consistent snapshot under the read lock.
type Store struct {
	mu     sync.RWMutex
	events []domain.InteractionEvent

	// failPartitions simulates per-partition scan failures in tests.
	failPartitions map[string]error
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{failPartitions: make(map[string]error)}
}

// Append adds events to the store.
func (s *Store) Append(events ...domain.InteractionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
}

// FailPartition makes every scan of the given partition return err.
func (s *Store) FailPartition(key domain.PartitionKey, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPartitions[key.String()] = err
}

// RangeScan implements ports.EventStore. The cursor is a numeric offset
// into the partition's window-ordered event list.
func (s *Store) RangeScan(ctx context.Context, key domain.PartitionKey, start, end time.Time, limit int, cursor string) (ports.ScanPage, error) {
	if err := ctx.Err(); err != nil {
		return ports.ScanPage{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err, ok := s.failPartitions[key.String()]; ok {
		return ports.ScanPage{}, err
	}

	var matched []domain.InteractionEvent
	for _, ev := range s.events {
		if !inPartition(ev, key) {
			continue
		}
		if ev.Timestamp.Before(start) || !ev.Timestamp.Before(end) {
			continue
		}
		matched = append(matched, ev)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Timestamp.Equal(matched[j].Timestamp) {
			return matched[i].Timestamp.Before(matched[j].Timestamp)
		}
		return matched[i].MessageID < matched[j].MessageID
	})

	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return ports.ScanPage{}, errInvalidCursor
		}
		offset = n
	}
	if offset >= len(matched) {
		return ports.ScanPage{}, nil
	}

	pageEnd := len(matched)
	if limit > 0 && offset+limit < pageEnd {
		pageEnd = offset + limit
	}

	page := ports.ScanPage{Events: matched[offset:pageEnd]}
	if pageEnd < len(matched) {
		page.NextCursor = strconv.Itoa(pageEnd)
	}
	return page, nil
}

// Close implements ports.EventStore.
func (s *Store) Close() error { return nil }

func inPartition(ev domain.InteractionEvent, key domain.PartitionKey) bool {
	switch key.Kind {
	case domain.PartitionModule:
		return strconv.FormatInt(ev.ModuleID, 10) == key.Value
	case domain.PartitionStudent:
		return ev.StudentID == key.Value
	case domain.PartitionProvider:
		return ev.Provider == key.Value
	}
	return false
}

type cursorError string

func (e cursorError) Error() string { return string(e) }

const errInvalidCursor = cursorError("invalid scan cursor")
