package analytics

import (
	"sort"

	"github.com/courseloop/insights/internal/core/domain"
)

// Engagement score weights. The composite score is a weighted sum of the
// normalized message-per-student rate and the normalized response-time
// inverse, so the computation is reproducible across runs.
const (
	messageRateWeight    = 0.6
	responsivenessWeight = 0.4
)

// moduleActivity accumulates the raw per-module inputs of the score.
type moduleActivity struct {
	messages    int64
	students    map[string]struct{}
	totalMillis int64
}

// EngagementByModule computes a composite engagement score per module over
// the given events. Normalization is relative to the module set in the
// input: the busiest module anchors the message-rate axis and the fastest
// module anchors the responsiveness axis. Results are ordered by module ID
// ascending.
func EngagementByModule(events []domain.InteractionEvent) []domain.ModuleEngagement {
	activity := make(map[int64]*moduleActivity)
	for _, ev := range events {
		a, ok := activity[ev.ModuleID]
		if !ok {
			a = &moduleActivity{students: make(map[string]struct{})}
			activity[ev.ModuleID] = a
		}
		a.messages++
		a.students[ev.StudentID] = struct{}{}
		a.totalMillis += ev.ResponseTimeMillis
	}

	out := make([]domain.ModuleEngagement, 0, len(activity))
	for id, a := range activity {
		me := domain.ModuleEngagement{
			ModuleID: id,
			Students: int64(len(a.students)),
			Messages: a.messages,
		}
		if me.Students > 0 {
			me.MessagesPerStudent = float64(a.messages) / float64(me.Students)
		}
		if a.messages > 0 {
			me.AvgResponseMillis = float64(a.totalMillis) / float64(a.messages)
		}
		out = append(out, me)
	}

	var maxRate, minAvg float64
	for _, me := range out {
		if me.MessagesPerStudent > maxRate {
			maxRate = me.MessagesPerStudent
		}
		if me.AvgResponseMillis > 0 && (minAvg == 0 || me.AvgResponseMillis < minAvg) {
			minAvg = me.AvgResponseMillis
		}
	}

	for i := range out {
		var rateNorm, respNorm float64
		if maxRate > 0 {
			rateNorm = out[i].MessagesPerStudent / maxRate
		}
		switch {
		case out[i].AvgResponseMillis > 0 && minAvg > 0:
			respNorm = minAvg / out[i].AvgResponseMillis
		case out[i].Messages > 0:
			// Zero recorded latency; treat as fully responsive.
			respNorm = 1
		}
		out[i].Score = messageRateWeight*rateNorm + responsivenessWeight*respNorm
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ModuleID < out[j].ModuleID })
	return out
}
