package orchestrator

import (
	"math"
	"sort"
	"strings"

	"github.com/hyperifyio/retrievalcore/internal/model"
)

const (
	candidateWeightLength      = 0.15
	candidateLengthNormChars   = 240.0
	candidateWeightPublishedAt = 0.05
)

// buildQueues groups unique candidates by provider and sorts each group by
// candidateScore descending (§4.6 step 4), recording Unique per provider.
func (o *Orchestrator) buildQueues(cands []model.Candidate, queryTokens []string, providerMetrics map[model.Provider]*model.ProviderMetrics) map[model.Provider][]model.Candidate {
	byProvider := make(map[model.Provider][]model.Candidate)
	for _, c := range cands {
		byProvider[c.Provider] = append(byProvider[c.Provider], c)
	}

	for provider, list := range byProvider {
		scores := make(map[string]float64, len(list))
		for _, c := range list {
			scores[c.ID] = candidateScore(c, queryTokens)
		}
		sort.SliceStable(list, func(i, j int) bool { return scores[list[i].ID] > scores[list[j].ID] })
		byProvider[provider] = list

		if pm, ok := providerMetrics[provider]; ok {
			pm.Unique = len(list)
		}
	}

	return byProvider
}

// candidateScore implements the §4.6 step 4 formula: token-overlap fraction
// plus a small boost for longer title+snippet text and for having a known
// publishedAt.
func candidateScore(c model.Candidate, queryTokens []string) float64 {
	overlap := tokenOverlap(c.Title+" "+c.Snippet, queryTokens)
	textLen := len(c.Title) + len(c.Snippet)
	lengthBoost := math.Min(1, float64(textLen)/candidateLengthNormChars) * candidateWeightLength
	dateBoost := 0.0
	if strings.TrimSpace(c.PublishedAt) != "" {
		dateBoost = candidateWeightPublishedAt
	}
	return overlap + lengthBoost + dateBoost
}

func tokenOverlap(haystack string, queryTokens []string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	lower := strings.ToLower(haystack)
	hits := 0
	for _, tok := range queryTokens {
		if tok == "" {
			continue
		}
		if strings.Contains(lower, tok) {
			hits++
		}
	}
	return float64(hits) / float64(len(queryTokens))
}

// roundRobin draws up to maxAttempts candidates by rotating through
// providerOrder, taking the front of each non-empty queue per pass (§4.6
// step 5). The resulting order is deterministic given the same inputs, even
// though extraction itself completes out of order (§5).
func roundRobin(queues map[model.Provider][]model.Candidate, maxAttempts int, providerMetrics map[model.Provider]*model.ProviderMetrics) []model.Candidate {
	positions := make(map[model.Provider]int, len(providerOrder))
	out := make([]model.Candidate, 0, maxAttempts)

	for len(out) < maxAttempts {
		drew := false
		for _, provider := range providerOrder {
			if len(out) >= maxAttempts {
				break
			}
			q := queues[provider]
			i := positions[provider]
			if i >= len(q) {
				continue
			}
			out = append(out, q[i])
			positions[provider] = i + 1
			drew = true
		}
		if !drew {
			break
		}
	}

	for _, provider := range providerOrder {
		pm, ok := providerMetrics[provider]
		if !ok {
			continue
		}
		pm.Queued = positions[provider]
		pm.Skipped = pm.Unique - pm.Queued
	}

	return out
}
