package orchestrator

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/retrievalcore/internal/artifact"
	"github.com/hyperifyio/retrievalcore/internal/connectors"
	"github.com/hyperifyio/retrievalcore/internal/dedupe"
	"github.com/hyperifyio/retrievalcore/internal/model"
)

// fanOut invokes every connector in parallel via connectors.SafeFetch
// (§4.6 step 2) and persists each non-disabled raw result, best-effort.
func (o *Orchestrator) fanOut(ctx context.Context, store artifact.Store, runID string) []connectors.Result {
	out := make([]connectors.Result, len(o.connectors))

	var wg sync.WaitGroup
	for i, c := range o.connectors {
		wg.Add(1)
		go func(i int, c connectors.Connector) {
			defer wg.Done()
			opt := connectors.Options{Signal: ctx, RecencyHours: o.cfg.RecencyHours}
			res := connectors.SafeFetch(ctx, c, opt)
			out[i] = res

			if !res.Metrics.Disabled {
				if err := store.SaveRawProviderSnapshot(res.Provider, runID, res); err != nil {
					log.Warn().Err(err).Str("provider", string(res.Provider)).Msg("artifact save raw snapshot failed")
				}
			}
		}(i, c)
	}
	wg.Wait()

	return out
}

// aggregate concatenates connector items tagging each with its provider
// (already tagged by the connector), records Returned per provider, then
// cross-provider URL-dedupes and records Deduped per provider.
func (o *Orchestrator) aggregate(results []connectors.Result, providerMetrics map[model.Provider]*model.ProviderMetrics) dedupe.CandidateResult {
	var all []model.Candidate
	for _, r := range results {
		if pm, ok := providerMetrics[r.Provider]; ok {
			pm.Returned = len(r.Items)
			pm.PreFiltered += r.Metrics.PreFiltered
		}
		all = append(all, r.Items...)
	}

	res := dedupe.Candidates(all)
	for provider, count := range res.Deduped {
		if pm, ok := providerMetrics[provider]; ok {
			pm.Deduped = count
		}
	}
	return res
}
