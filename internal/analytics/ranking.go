package analytics

import (
	"sort"

	"github.com/courseloop/insights/internal/core/domain"
)

// RankModules orders rows by the chosen metric descending, ties broken by
// module ID ascending, truncates to n, and assigns 1-based ranks. The
// input slice is not mutated. n <= 0 means no truncation.
func RankModules(rows []domain.ModuleRank, metric domain.RankMetric, n int) []domain.ModuleRank {
	ranked := make([]domain.ModuleRank, len(rows))
	copy(ranked, rows)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		switch metric {
		case domain.RankByCost:
			if !a.Cost.Equal(b.Cost) {
				return a.Cost.GreaterThan(b.Cost)
			}
		case domain.RankByEngagement:
			if a.EngagementScore != b.EngagementScore {
				return a.EngagementScore > b.EngagementScore
			}
		default: // RankByMessages
			if a.Messages != b.Messages {
				return a.Messages > b.Messages
			}
		}
		return a.ModuleID < b.ModuleID
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
