package analytics

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/courseloop/insights/internal/core/domain"
)

func moduleEvents(moduleID int64, students int, perStudent int, responseMillis int64) []domain.InteractionEvent {
	base := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	var events []domain.InteractionEvent
	for s := 0; s < students; s++ {
		for m := 0; m < perStudent; m++ {
			events = append(events, domain.InteractionEvent{
				MessageID:          fmt.Sprintf("mod%d-s%d-m%d", moduleID, s, m),
				ConversationID:     fmt.Sprintf("mod%d-s%d", moduleID, s),
				StudentID:          fmt.Sprintf("student-%d-%d", moduleID, s),
				ModuleID:           moduleID,
				ResponseTimeMillis: responseMillis,
				Timestamp:          base.Add(time.Duration(m) * time.Minute),
			})
		}
	}
	return events
}

func TestEngagementByModule_Weights(t *testing.T) {
	// Module 1 anchors both axes: highest message rate and lowest
	// latency, so its score is exactly 0.6 + 0.4 = 1.0. Module 2 has half
	// the rate and double the latency: 0.6*0.5 + 0.4*0.5 = 0.5.
	var events []domain.InteractionEvent
	events = append(events, moduleEvents(1, 2, 10, 500)...)
	events = append(events, moduleEvents(2, 2, 5, 1000)...)

	out := EngagementByModule(events)
	if len(out) != 2 {
		t.Fatalf("got %d modules, want 2", len(out))
	}
	if got := out[0].Score; math.Abs(got-1.0) > 1e-9 {
		t.Errorf("module 1 score = %v, want 1.0", got)
	}
	if got := out[1].Score; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("module 2 score = %v, want 0.5", got)
	}
}

func TestEngagementByModule_MessagesPerStudent(t *testing.T) {
	out := EngagementByModule(moduleEvents(7, 4, 3, 800))
	if len(out) != 1 {
		t.Fatalf("got %d modules, want 1", len(out))
	}
	me := out[0]
	if me.Students != 4 {
		t.Errorf("students = %d, want 4", me.Students)
	}
	if me.Messages != 12 {
		t.Errorf("messages = %d, want 12", me.Messages)
	}
	if math.Abs(me.MessagesPerStudent-3) > 1e-9 {
		t.Errorf("messages per student = %v, want 3", me.MessagesPerStudent)
	}
	if math.Abs(me.AvgResponseMillis-800) > 1e-9 {
		t.Errorf("avg response = %v, want 800", me.AvgResponseMillis)
	}
}

func TestEngagementByModule_OrderedByModuleID(t *testing.T) {
	var events []domain.InteractionEvent
	events = append(events, moduleEvents(9, 1, 1, 100)...)
	events = append(events, moduleEvents(3, 1, 1, 100)...)
	events = append(events, moduleEvents(5, 1, 1, 100)...)

	out := EngagementByModule(events)
	var prev int64 = -1
	for _, me := range out {
		if me.ModuleID <= prev {
			t.Errorf("modules not ordered by ID: %d after %d", me.ModuleID, prev)
		}
		prev = me.ModuleID
	}
}

func TestEngagementByModule_Empty(t *testing.T) {
	if out := EngagementByModule(nil); len(out) != 0 {
		t.Errorf("empty input yields %d modules, want 0", len(out))
	}
}
