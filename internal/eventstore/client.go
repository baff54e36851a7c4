// Package eventstore wraps the partitioned event store behind a bounded,
// fan-out query client. One logical query becomes one range scan per
// partition key, executed concurrently with a fixed parallelism limit;
// partition failures are collected instead of aborting the whole query.
package eventstore

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/courseloop/insights/internal/core/domain"
	"github.com/courseloop/insights/internal/core/ports"
)

const (
	// DefaultFanOut is the number of partition scans in flight at once.
	DefaultFanOut = 8

	// DefaultPageSize is the page size of the underlying range scans.
	DefaultPageSize = 1000

	// DefaultMaxRecords bounds a logical query when the caller supplies
	// no explicit limit.
	DefaultMaxRecords = 100_000
)

// Result is the merged outcome of one logical query. Events are ordered by
// timestamp, ties broken by message ID, so output is deterministic even
// though partition scans complete in arbitrary order.
type Result struct {
	Events []domain.InteractionEvent

	// Truncated is true when the store held more matching events than the
	// query limit. Data was cut off, not silently dropped.
	Truncated bool

	// FailedPartitions lists partitions whose scans failed. Their data is
	// absent; the caller flags the response as degraded.
	FailedPartitions []string
}

// Degraded reports whether any partition scan failed.
func (r Result) Degraded() bool {
	return len(r.FailedPartitions) > 0
}

// Client issues bounded fan-out queries against an EventStore.
type Client struct {
	store    ports.EventStore
	logger   *slog.Logger
	fanOut   int
	pageSize int
}

// Option configures a Client.
type Option func(*Client)

// WithFanOut sets the maximum number of concurrent partition scans.
func WithFanOut(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.fanOut = n
		}
	}
}

// WithPageSize sets the range-scan page size.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// NewClient creates a query client over the given store.
func NewClient(store ports.EventStore, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		store:    store,
		logger:   logger,
		fanOut:   DefaultFanOut,
		pageSize: DefaultPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// partitionResult is one worker's private slot. Workers never share
// mutable state; reduction happens after all of them have joined.
type partitionResult struct {
	events []domain.InteractionEvent
	err    error
}

// Query scans every partition key over the window, at most limit events in
// the merged result. limit <= 0 applies DefaultMaxRecords. A failed
// partition is recorded and the remaining partitions still contribute. A
// scan cut short by the context deadline keeps the pages it already read,
// with its partition flagged as incomplete. The returned error is non-nil
// only when every partition failed outright.
func (c *Client) Query(ctx context.Context, keys []domain.PartitionKey, window domain.TimeRange, limit int) (Result, error) {
	if len(keys) == 0 {
		return Result{}, nil
	}
	if limit <= 0 {
		limit = DefaultMaxRecords
	}

	slots := make([]partitionResult, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.fanOut)
	for i, key := range keys {
		g.Go(func() error {
			// Scan one past the limit so truncation is detectable after
			// the merge.
			events, err := c.scanPartition(gctx, key, window, limit+1)
			slots[i] = partitionResult{events: events, err: err}
			// Partition failures degrade the response; they never cancel
			// sibling scans.
			return nil
		})
	}
	_ = g.Wait()

	var merged []domain.InteractionEvent
	var failed []string
	var firstHard error
	for i, slot := range slots {
		if slot.err != nil {
			c.logger.Warn("partition scan failed",
				slog.String("partition", keys[i].String()),
				slog.String("error", slot.err.Error()),
			)
			failed = append(failed, keys[i].String())
			if errors.Is(slot.err, context.DeadlineExceeded) || errors.Is(slot.err, context.Canceled) {
				// The deadline hit mid-scan. Pages already read are still
				// valid; keep them and leave the partition flagged.
				merged = append(merged, slot.events...)
			} else if firstHard == nil {
				firstHard = slot.err
			}
			continue
		}
		merged = append(merged, slot.events...)
	}

	sort.Strings(failed)
	if len(failed) == len(keys) && len(merged) == 0 && firstHard != nil {
		return Result{FailedPartitions: failed}, domain.ErrEventStore(firstHard)
	}

	sort.Slice(merged, func(i, j int) bool {
		if !merged[i].Timestamp.Equal(merged[j].Timestamp) {
			return merged[i].Timestamp.Before(merged[j].Timestamp)
		}
		return merged[i].MessageID < merged[j].MessageID
	})

	result := Result{Events: merged, FailedPartitions: failed}
	if len(merged) > limit {
		result.Events = merged[:limit]
		result.Truncated = true
	}
	return result, nil
}

// scanPartition pages through one partition until the window is exhausted
// or max events were read.
func (c *Client) scanPartition(ctx context.Context, key domain.PartitionKey, window domain.TimeRange, max int) ([]domain.InteractionEvent, error) {
	var events []domain.InteractionEvent
	cursor := ""
	for {
		if err := ctx.Err(); err != nil {
			return events, err
		}

		pageSize := c.pageSize
		if remaining := max - len(events); remaining < pageSize {
			pageSize = remaining
		}
		page, err := c.store.RangeScan(ctx, key, window.Start, window.End, pageSize, cursor)
		if err != nil {
			return events, err
		}
		events = append(events, page.Events...)

		if page.NextCursor == "" || len(events) >= max {
			return events, nil
		}
		cursor = page.NextCursor
	}
}
