package analytics

import (
	"sort"
	"strings"
	"unicode"

	"github.com/courseloop/insights/internal/core/domain"
)

// SimilarityThreshold is the minimum Jaccard overlap between two
// questions' token sets for them to join the same cluster. Tunable
// default, not contractual.
const SimilarityThreshold = 0.6

// NormalizeQuestion lowercases, strips punctuation, and collapses
// whitespace so trivially different phrasings compare equal.
func NormalizeQuestion(q string) string {
	var b strings.Builder
	b.Grow(len(q))
	for _, r := range strings.ToLower(q) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// tokenSet splits a normalized question into its unique tokens.
func tokenSet(normalized string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(normalized) {
		set[tok] = struct{}{}
	}
	return set
}

// jaccard computes |a∩b| / |a∪b| over two token sets.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	var inter int
	for tok := range a {
		if _, ok := b[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// phrasing is one distinct normalized question with its occurrence count
// and most frequent literal form.
type phrasing struct {
	normalized string
	literal    string
	count      int
	tokens     map[string]struct{}
}

// faqCluster accumulates merged phrasings. The seed phrasing anchors
// similarity comparisons for the whole cluster.
type faqCluster struct {
	seed     *phrasing
	count    int
	variants []string
}

// ClusterQuestions groups similar questions into representative clusters.
// Questions are normalized, deduplicated, ordered by frequency (ties by
// normalized text) before a greedy merge pass, so identical input always
// yields identical clusters and ordering. Blank questions are ignored;
// clusters with fewer than minOccurrences members are discarded;
// maxResults <= 0 means no cap.
func ClusterQuestions(questions []string, minOccurrences, maxResults int) []domain.FaqCluster {
	// Collapse to distinct normalized phrasings, tracking the most common
	// literal form of each.
	literalCounts := make(map[string]map[string]int)
	for _, q := range questions {
		norm := NormalizeQuestion(q)
		if norm == "" {
			continue
		}
		if literalCounts[norm] == nil {
			literalCounts[norm] = make(map[string]int)
		}
		literalCounts[norm][strings.TrimSpace(q)]++
	}

	phrasings := make([]*phrasing, 0, len(literalCounts))
	for norm, literals := range literalCounts {
		p := &phrasing{normalized: norm, tokens: tokenSet(norm)}
		for lit, n := range literals {
			p.count += n
			cur := literals[p.literal]
			if p.literal == "" || n > cur || (n == cur && lit < p.literal) {
				p.literal = lit
			}
		}
		phrasings = append(phrasings, p)
	}

	// Stable ordering before clustering keeps the greedy merge
	// deterministic.
	sort.Slice(phrasings, func(i, j int) bool {
		if phrasings[i].count != phrasings[j].count {
			return phrasings[i].count > phrasings[j].count
		}
		return phrasings[i].normalized < phrasings[j].normalized
	})

	var clusters []*faqCluster
	for _, p := range phrasings {
		var target *faqCluster
		for _, c := range clusters {
			if jaccard(p.tokens, c.seed.tokens) >= SimilarityThreshold {
				target = c
				break
			}
		}
		if target == nil {
			clusters = append(clusters, &faqCluster{seed: p, count: p.count})
			continue
		}
		target.count += p.count
		target.variants = append(target.variants, p.literal)
	}

	out := make([]domain.FaqCluster, 0, len(clusters))
	for _, c := range clusters {
		if c.count < minOccurrences {
			continue
		}
		out = append(out, domain.FaqCluster{
			Representative: c.seed.literal,
			Count:          c.count,
			Variants:       c.variants,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Representative < out[j].Representative
	})
	if maxResults > 0 && len(out) > maxResults {
		out = out[:maxResults]
	}
	return out
}
