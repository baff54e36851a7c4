package domain

import (
	"fmt"
	"strconv"
	"time"
)

// InteractionEvent is a single tutoring chat turn as recorded by the
// ingestion path. Events are append-only and grouped by ConversationID to
// form a timeline; the engine never mutates or deletes them.
type InteractionEvent struct {
	MessageID          string `json:"message_id"`
	ConversationID     string `json:"conversation_id"`
	StudentID          string `json:"student_id"`
	ModuleID           int64  `json:"module_id"`
	Provider           string `json:"provider"`
	ModelName          string `json:"model_name"`
	InputTokens        int64  `json:"input_tokens"`
	OutputTokens       int64  `json:"output_tokens"`
	ResponseTimeMillis int64  `json:"response_time_millis"`
	HasAttachment      bool   `json:"has_attachment"`
	// Question holds the student's message text for this turn, when the
	// ingestion path captured it. Empty for turns without student text.
	Question  string    `json:"question,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PartitionKind identifies the attribute by which the event store
// partitions records for range scanning.
type PartitionKind string

const (
	PartitionModule   PartitionKind = "module"
	PartitionStudent  PartitionKind = "student"
	PartitionProvider PartitionKind = "provider"
)

// PartitionKey addresses one physical partition of the event store.
type PartitionKey struct {
	Kind  PartitionKind `json:"kind"`
	Value string        `json:"value"`
}

// ModuleKey builds a partition key for a module partition.
func ModuleKey(moduleID int64) PartitionKey {
	return PartitionKey{Kind: PartitionModule, Value: strconv.FormatInt(moduleID, 10)}
}

// StudentKey builds a partition key for a student partition.
func StudentKey(studentID string) PartitionKey {
	return PartitionKey{Kind: PartitionStudent, Value: studentID}
}

// ProviderKey builds a partition key for a provider partition.
func ProviderKey(provider string) PartitionKey {
	return PartitionKey{Kind: PartitionProvider, Value: provider}
}

// String renders the key in "kind/value" form, used for logging and for
// identifying failed partitions in degraded responses.
func (k PartitionKey) String() string {
	return fmt.Sprintf("%s/%s", k.Kind, k.Value)
}

// TimeRange is a half-open [Start, End) window in UTC.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Duration returns the window length.
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// TrailingDays returns a window covering the last n days ending at now,
// normalized to UTC.
func TrailingDays(now time.Time, n int) TimeRange {
	end := now.UTC()
	return TimeRange{Start: end.AddDate(0, 0, -n), End: end}
}
