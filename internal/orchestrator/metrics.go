package orchestrator

import (
	"math"
	"time"

	"github.com/hyperifyio/retrievalcore/internal/connectors"
	"github.com/hyperifyio/retrievalcore/internal/dedupe"
	"github.com/hyperifyio/retrievalcore/internal/model"
)

// newProviderMetrics seeds one ProviderMetrics per provider from its
// connector call's own reported disabled/failed/error/query state, so
// every provider in providerOrder always has an entry even if the
// connector set passed to New omitted it.
func newProviderMetrics(results []connectors.Result, order []model.Provider) map[model.Provider]*model.ProviderMetrics {
	out := make(map[model.Provider]*model.ProviderMetrics, len(order))
	for _, p := range order {
		out[p] = &model.ProviderMetrics{Provider: p}
	}
	for _, r := range results {
		pm, ok := out[r.Provider]
		if !ok {
			pm = &model.ProviderMetrics{Provider: r.Provider}
			out[r.Provider] = pm
		}
		pm.Disabled = r.Metrics.Disabled
		pm.Failed = r.Metrics.Failed
		pm.Error = r.Metrics.Error
		pm.Query = r.Metrics.Query
	}
	return out
}

// buildRetrievalMetrics assembles the per-run aggregate (§3, §4.6 step 8).
func buildRetrievalMetrics(
	results []connectors.Result,
	providerMetrics map[model.Provider]*model.ProviderMetrics,
	candResult dedupe.CandidateResult,
	extractionErrors []model.ExtractionError,
	final finalized,
) model.RetrievalMetrics {
	m := model.RetrievalMetrics{
		PerProvider:      providerMetrics,
		ExtractionErrors: extractionErrors,
	}

	for _, r := range results {
		m.CandidateCount += len(r.Items)
	}

	deduped := 0
	for _, count := range candResult.Deduped {
		deduped += count
	}

	attempted := 0
	accepted := 0
	postExtractionRejected := 0
	for _, pm := range providerMetrics {
		attempted += pm.ExtractionAttempts
		accepted += pm.Accepted
		postExtractionRejected += pm.PreFiltered
	}

	m.PreFiltered = deduped + postExtractionRejected
	m.AttemptedExtractions = attempted
	m.Accepted = accepted
	m.DuplicatesRemoved = final.dupesRemoved

	newest, oldest := articleAgeBounds(final.articles)
	m.NewestArticleHours = newest
	m.OldestArticleHours = oldest

	return m
}

// articleAgeBounds computes the freshest and oldest publishedAt ages, in
// hours, among articles that carry a parseable date.
func articleAgeBounds(articles []model.NormalizedArticle) (*float64, *float64) {
	now := time.Now()
	var newest, oldest *float64
	for _, a := range articles {
		if a.PublishedAt == nil {
			continue
		}
		hours := now.Sub(*a.PublishedAt).Hours()
		if newest == nil || hours < *newest {
			h := hours
			newest = &h
		}
		if oldest == nil || hours > *oldest {
			h := hours
			oldest = &h
		}
	}
	if newest != nil {
		n := math.Round(*newest*100) / 100
		newest = &n
	}
	if oldest != nil {
		o := math.Round(*oldest*100) / 100
		oldest = &o
	}
	return newest, oldest
}
