// Package dedupe implements canonical-URL dedupe across candidates and
// articles, plus the optional similarity-based dedupe pass. Adapted from
// the cross-provider URL merge/normalize step used upstream in the pack,
// generalized to both pre-extraction Candidates and post-extraction
// NormalizedArticles.
package dedupe

import (
	"strings"

	"github.com/hyperifyio/retrievalcore/internal/model"
	"github.com/hyperifyio/retrievalcore/internal/prefilter"
	"github.com/hyperifyio/retrievalcore/internal/simtext"
)

const similarityPrefixChars = 600

// CandidateResult is the outcome of deduping a candidate list across
// providers: the unique candidates in first-seen order, and a per-provider
// count of how many were collapsed (the "deduped" metric).
type CandidateResult struct {
	Unique  []model.Candidate
	Deduped map[model.Provider]int
}

// Candidates performs canonical-URL dedupe across all providers, collapsing
// any lowercased canonical URL seen more than once onto its first
// occurrence and counting collapses per the provider of the discarded
// duplicate.
func Candidates(cands []model.Candidate) CandidateResult {
	seen := make(map[string]struct{}, len(cands))
	res := CandidateResult{
		Unique:  make([]model.Candidate, 0, len(cands)),
		Deduped: make(map[model.Provider]int),
	}
	for _, c := range cands {
		key, ok := prefilter.CanonicalizeForDedupe(c.URL)
		if !ok {
			key = strings.ToLower(strings.TrimSpace(c.URL))
		}
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			res.Deduped[c.Provider]++
			continue
		}
		seen[key] = struct{}{}
		res.Unique = append(res.Unique, c)
	}
	return res
}

// Options controls the article-level dedupe pass.
type Options struct {
	// SimilarityEnabled turns on the shingle-Jaccard (internal/simtext) near-duplicate pass over
	// title+excerpt prefixes. Off by default per the orchestrator's
	// finalize step (§4.6.7), since clustering already collapses
	// near-duplicates and a second similarity pass would double-punish
	// them.
	SimilarityEnabled bool
	SimilarityThreshold float64
}

// DefaultSimilarityThreshold is the spec's configurable-but-off-by-default
// near-duplicate threshold (0.78).
const DefaultSimilarityThreshold = 0.78

// Articles performs canonical-URL dedupe on already-extracted articles
// (first occurrence wins), then an optional similarity pass.
func Articles(articles []model.NormalizedArticle, opt Options) []model.NormalizedArticle {
	seen := make(map[string]struct{}, len(articles))
	out := make([]model.NormalizedArticle, 0, len(articles))
	for _, a := range articles {
		key := strings.ToLower(a.CanonicalURL)
		if key == "" {
			key = a.ID
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}

	if !opt.SimilarityEnabled {
		return out
	}

	threshold := opt.SimilarityThreshold
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}

	kept := make([]model.NormalizedArticle, 0, len(out))
	keptTexts := make([]string, 0, len(out))
	for _, a := range out {
		text := simtext.Prefix(a.Title+" "+a.Excerpt, similarityPrefixChars)
		isDup := false
		for _, kt := range keptTexts {
			if simtext.Similarity(text, kt) >= threshold {
				isDup = true
				break
			}
		}
		if isDup {
			continue
		}
		kept = append(kept, a)
		keptTexts = append(keptTexts, text)
	}
	return kept
}
