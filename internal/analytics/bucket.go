// Package analytics contains the pure aggregation functions of the
// engine: time bucketing, percentiles, conversation grouping, engagement
// scoring, ranking, and FAQ clustering. Everything here operates on
// in-memory event slices already restricted to the caller's scope and
// performs no I/O.
package analytics

import (
	"sort"
	"time"

	"github.com/courseloop/insights/internal/core/domain"
)

// Bucket is one time bucket of events. Start is the bucket boundary in UTC.
type Bucket struct {
	Start  time.Time
	Events []domain.InteractionEvent
}

// BucketStart truncates a timestamp to its bucket boundary in UTC.
// Daily buckets align to UTC midnight, hourly buckets to the top of the
// hour.
func BucketStart(t time.Time, g domain.Granularity) time.Time {
	u := t.UTC()
	if g == domain.GranularityHourly {
		return u.Truncate(time.Hour)
	}
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// TimeBuckets groups events into buckets of the given granularity, ordered
// by bucket start ascending. Every event lands in exactly one bucket, so
// the bucket counts always sum to len(events).
func TimeBuckets(events []domain.InteractionEvent, g domain.Granularity) []Bucket {
	byStart := make(map[time.Time][]domain.InteractionEvent)
	for _, ev := range events {
		start := BucketStart(ev.Timestamp, g)
		byStart[start] = append(byStart[start], ev)
	}

	buckets := make([]Bucket, 0, len(byStart))
	for start, evs := range byStart {
		buckets = append(buckets, Bucket{Start: start, Events: evs})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Start.Before(buckets[j].Start)
	})
	return buckets
}

// HourProfile counts events per hour of day (UTC) and returns the peak
// hour. Ties resolve to the earliest hour so the result is deterministic.
func HourProfile(events []domain.InteractionEvent) (hours [24]int64, peak int) {
	for _, ev := range events {
		hours[ev.Timestamp.UTC().Hour()]++
	}
	for h := 1; h < 24; h++ {
		if hours[h] > hours[peak] {
			peak = h
		}
	}
	return hours, peak
}
