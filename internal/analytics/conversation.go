package analytics

import "github.com/courseloop/insights/internal/core/domain"

// Conversation length classification boundaries.
const (
	shortMax  = 5  // 2-5 messages
	mediumMax = 15 // 6-15 messages

	// completedMin is the message count at which a conversation counts
	// as completed for the completion rate.
	completedMin = 3
)

// ConversationSizes groups events by conversation ID and returns the
// message count per conversation.
func ConversationSizes(events []domain.InteractionEvent) map[string]int64 {
	sizes := make(map[string]int64)
	for _, ev := range events {
		sizes[ev.ConversationID]++
	}
	return sizes
}

// ClassifyConversations buckets each conversation by message count:
// single-message, short (2-5), medium (6-15), long (16+). Completion rate
// is the fraction of conversations with at least three messages, so
// single-message conversations never contribute to the numerator.
func ClassifyConversations(events []domain.InteractionEvent) domain.ConversationStats {
	sizes := ConversationSizes(events)

	var stats domain.ConversationStats
	var completed int64
	for _, n := range sizes {
		stats.Total++
		switch {
		case n <= 1:
			stats.SingleMessage++
		case n <= shortMax:
			stats.Short++
		case n <= mediumMax:
			stats.Medium++
		default:
			stats.Long++
		}
		if n >= completedMin {
			completed++
		}
	}
	if stats.Total > 0 {
		stats.CompletionRate = float64(completed) / float64(stats.Total)
	}
	return stats
}
