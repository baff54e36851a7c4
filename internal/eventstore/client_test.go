package eventstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/courseloop/insights/internal/core/domain"
	"github.com/courseloop/insights/internal/core/ports"
	"github.com/courseloop/insights/internal/eventstore/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func seedModule(store *memory.Store, moduleID int64, n int, base time.Time) {
	for i := 0; i < n; i++ {
		store.Append(domain.InteractionEvent{
			MessageID:      fmt.Sprintf("mod%d-%04d", moduleID, i),
			ConversationID: fmt.Sprintf("conv-%d", moduleID),
			StudentID:      "student-1",
			ModuleID:       moduleID,
			Provider:       "openai",
			ModelName:      "gpt-4o",
			Timestamp:      base.Add(time.Duration(i) * time.Minute),
		})
	}
}

func TestQuery_MergesPartitionsOrdered(t *testing.T) {
	store := memory.New()
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	seedModule(store, 1, 5, base)
	seedModule(store, 2, 5, base.Add(30*time.Second))

	client := NewClient(store, testLogger())
	window := domain.TimeRange{Start: base.Add(-time.Hour), End: base.Add(time.Hour)}

	res, err := client.Query(context.Background(), []domain.PartitionKey{
		domain.ModuleKey(1), domain.ModuleKey(2),
	}, window, 0)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(res.Events) != 10 {
		t.Fatalf("got %d events, want 10", len(res.Events))
	}
	for i := 1; i < len(res.Events); i++ {
		prev, cur := res.Events[i-1], res.Events[i]
		if cur.Timestamp.Before(prev.Timestamp) {
			t.Errorf("events out of order at %d: %v before %v", i, cur.Timestamp, prev.Timestamp)
		}
		if cur.Timestamp.Equal(prev.Timestamp) && cur.MessageID < prev.MessageID {
			t.Errorf("tie not broken by message ID at %d", i)
		}
	}
	if res.Degraded() || res.Truncated {
		t.Errorf("clean query flagged: degraded=%v truncated=%v", res.Degraded(), res.Truncated)
	}
}

func TestQuery_PartialFailureKeepsOtherPartitions(t *testing.T) {
	// One partition scan fails, two succeed: the response carries the
	// successful partitions' data and names the failed one.
	store := memory.New()
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	seedModule(store, 1, 3, base)
	seedModule(store, 2, 4, base)
	seedModule(store, 3, 5, base)
	store.FailPartition(domain.ModuleKey(2), errors.New("partition unavailable"))

	client := NewClient(store, testLogger())
	window := domain.TimeRange{Start: base.Add(-time.Hour), End: base.Add(time.Hour)}

	res, err := client.Query(context.Background(), []domain.PartitionKey{
		domain.ModuleKey(1), domain.ModuleKey(2), domain.ModuleKey(3),
	}, window, 0)
	if err != nil {
		t.Fatalf("Query() error = %v, want degraded success", err)
	}
	if !res.Degraded() {
		t.Error("degraded = false, want true")
	}
	if len(res.FailedPartitions) != 1 || res.FailedPartitions[0] != "module/2" {
		t.Errorf("failed partitions = %v, want [module/2]", res.FailedPartitions)
	}
	if len(res.Events) != 8 {
		t.Errorf("got %d events from surviving partitions, want 8", len(res.Events))
	}
}

func TestQuery_AllPartitionsFailed(t *testing.T) {
	store := memory.New()
	store.FailPartition(domain.ModuleKey(1), errors.New("down"))
	store.FailPartition(domain.ModuleKey(2), errors.New("down"))

	client := NewClient(store, testLogger())
	window := domain.TrailingDays(time.Now(), 7)

	_, err := client.Query(context.Background(), []domain.PartitionKey{
		domain.ModuleKey(1), domain.ModuleKey(2),
	}, window, 0)

	var aerr *domain.AnalyticsError
	if !errors.As(err, &aerr) || aerr.Kind != domain.ErrorKindEventStore {
		t.Errorf("Query() error = %v, want event_store error", err)
	}
}

func TestQuery_TruncatesAtLimit(t *testing.T) {
	store := memory.New()
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	seedModule(store, 1, 20, base)

	client := NewClient(store, testLogger(), WithPageSize(7))
	window := domain.TimeRange{Start: base.Add(-time.Hour), End: base.Add(time.Hour)}

	res, err := client.Query(context.Background(), []domain.PartitionKey{domain.ModuleKey(1)}, window, 10)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if !res.Truncated {
		t.Error("truncated = false, want true")
	}
	if len(res.Events) != 10 {
		t.Errorf("got %d events, want 10", len(res.Events))
	}
}

func TestQuery_NoPartitionKeys(t *testing.T) {
	client := NewClient(memory.New(), testLogger())

	res, err := client.Query(context.Background(), nil, domain.TrailingDays(time.Now(), 7), 0)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(res.Events) != 0 || res.Degraded() || res.Truncated {
		t.Errorf("empty key set yields %+v, want empty clean result", res)
	}
}

func TestQuery_WindowExcludesOutsideEvents(t *testing.T) {
	store := memory.New()
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	seedModule(store, 1, 10, base)

	client := NewClient(store, testLogger())
	// Window covers only the first five minutes: events 0..4.
	window := domain.TimeRange{Start: base, End: base.Add(5 * time.Minute)}

	res, err := client.Query(context.Background(), []domain.PartitionKey{domain.ModuleKey(1)}, window, 0)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(res.Events) != 5 {
		t.Errorf("got %d events, want 5", len(res.Events))
	}
}

func TestQuery_CancelledContextDegrades(t *testing.T) {
	store := memory.New()
	seedModule(store, 1, 3, time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(store, testLogger())
	res, err := client.Query(ctx, []domain.PartitionKey{domain.ModuleKey(1)}, domain.TrailingDays(time.Now(), 7), 0)
	if err != nil {
		t.Fatalf("Query() error = %v, want degraded success", err)
	}
	if !res.Degraded() || len(res.Events) != 0 {
		t.Errorf("got %d events, degraded=%v, want empty degraded result", len(res.Events), res.Degraded())
	}
}

func TestQuery_ExpiredDeadlineFlagsAllPartitions(t *testing.T) {
	// A deadline that has already passed must not surface as a hard
	// failure: every partition is flagged and the result stays empty.
	store := memory.New()
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	seedModule(store, 1, 4, base)
	seedModule(store, 2, 4, base)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	client := NewClient(store, testLogger())
	window := domain.TimeRange{Start: base.Add(-time.Hour), End: base.Add(time.Hour)}
	res, err := client.Query(ctx, []domain.PartitionKey{
		domain.ModuleKey(1), domain.ModuleKey(2),
	}, window, 0)
	if err != nil {
		t.Fatalf("Query() error = %v, want degraded success", err)
	}
	if len(res.Events) != 0 {
		t.Errorf("got %d events, want 0", len(res.Events))
	}
	want := []string{"module/1", "module/2"}
	if len(res.FailedPartitions) != len(want) {
		t.Fatalf("failed partitions = %v, want %v", res.FailedPartitions, want)
	}
	for i, p := range want {
		if res.FailedPartitions[i] != p {
			t.Errorf("failed partitions = %v, want %v", res.FailedPartitions, want)
		}
	}
}

// expiringStore cancels its context after serving one page, so a scan is
// cut off with part of its partition already read.
type expiringStore struct {
	*memory.Store
	cancel context.CancelFunc
}

func (s *expiringStore) RangeScan(ctx context.Context, key domain.PartitionKey, start, end time.Time, limit int, cursor string) (ports.ScanPage, error) {
	page, err := s.Store.RangeScan(ctx, key, start, end, limit, cursor)
	s.cancel()
	return page, err
}

func TestQuery_DeadlineMidScanKeepsReadPages(t *testing.T) {
	inner := memory.New()
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	seedModule(inner, 1, 6, base)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := &expiringStore{Store: inner, cancel: cancel}

	client := NewClient(store, testLogger(), WithPageSize(2))
	window := domain.TimeRange{Start: base.Add(-time.Hour), End: base.Add(time.Hour)}
	res, err := client.Query(ctx, []domain.PartitionKey{domain.ModuleKey(1)}, window, 0)
	if err != nil {
		t.Fatalf("Query() error = %v, want degraded success", err)
	}
	if !res.Degraded() {
		t.Error("degraded = false, want true")
	}
	if len(res.FailedPartitions) != 1 || res.FailedPartitions[0] != "module/1" {
		t.Errorf("failed partitions = %v, want [module/1]", res.FailedPartitions)
	}
	if len(res.Events) != 2 {
		t.Errorf("got %d events from the interrupted scan, want 2", len(res.Events))
	}
}
