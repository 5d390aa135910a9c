package orchestrator

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hyperifyio/retrievalcore/internal/extractor"
	"github.com/hyperifyio/retrievalcore/internal/filter"
	"github.com/hyperifyio/retrievalcore/internal/model"
	"github.com/hyperifyio/retrievalcore/internal/rcerr"
)

// hostSemaphores lazily creates one bounded channel per host, guarding the
// per-host concurrency limit (§5 "Per-host concurrency").
type hostSemaphores struct {
	mu       sync.Mutex
	capacity int
	sems     map[string]chan struct{}
}

func newHostSemaphores(capacity int) *hostSemaphores {
	return &hostSemaphores{capacity: capacity, sems: map[string]chan struct{}{}}
}

func (h *hostSemaphores) get(host string) chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	sem, ok := h.sems[host]
	if !ok {
		sem = make(chan struct{}, h.capacity)
		h.sems[host] = sem
	}
	return sem
}

// extractAll spawns GlobalConcurrency workers that claim candidates in
// order, each bounded by a global permit and a per-host permit, extracting
// and filtering every claimed candidate (§4.6 step 6).
func (o *Orchestrator) extractAll(
	ctx context.Context,
	cancel context.CancelFunc,
	ordered []model.Candidate,
	queryTokens []string,
	providerMetrics map[model.Provider]*model.ProviderMetrics,
) ([]model.NormalizedArticle, []model.ExtractionError) {
	var (
		nextIdx  int64
		accepted int32

		mu        sync.Mutex
		articles  []model.NormalizedArticle
		extErrors []model.ExtractionError

		cancelOnce sync.Once
	)

	globalSem := make(chan struct{}, o.cfg.GlobalConcurrency)
	hostSems := newHostSemaphores(o.cfg.PerHostConcurrency)

	stop := func() bool {
		if ctx.Err() != nil {
			return true
		}
		return int(atomic.LoadInt32(&accepted)) >= o.cfg.MinAccepted
	}

	var wg sync.WaitGroup
	for w := 0; w < o.cfg.GlobalConcurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if stop() {
					if ctx.Err() == nil {
						cancelOnce.Do(cancel)
					}
					return
				}

				idx := int(atomic.AddInt64(&nextIdx, 1) - 1)
				if idx >= len(ordered) {
					return
				}
				cand := ordered[idx]

				select {
				case globalSem <- struct{}{}:
				case <-ctx.Done():
					return
				}

				host := hostOf(cand.URL)
				hostSem := hostSems.get(host)
				select {
				case hostSem <- struct{}{}:
				case <-ctx.Done():
					<-globalSem
					return
				}

				o.extractOne(ctx, cand, queryTokens, providerMetrics, &mu, &articles, &extErrors, &accepted)

				<-hostSem
				<-globalSem
			}
		}()
	}
	wg.Wait()

	return articles, extErrors
}

func (o *Orchestrator) extractOne(
	ctx context.Context,
	cand model.Candidate,
	queryTokens []string,
	providerMetrics map[model.Provider]*model.ProviderMetrics,
	mu *sync.Mutex,
	articles *[]model.NormalizedArticle,
	extErrors *[]model.ExtractionError,
	accepted *int32,
) {
	mu.Lock()
	if pm, ok := providerMetrics[cand.Provider]; ok {
		pm.ExtractionAttempts++
	}
	mu.Unlock()

	article, _, err := o.extractor.Extract(ctx, cand, extractor.Options{Signal: ctx, QueryTokens: queryTokens})
	if err != nil {
		if rcerr.Soft(kindOf(err)) {
			mu.Lock()
			if pm, ok := providerMetrics[cand.Provider]; ok {
				pm.PreFiltered++
			}
			mu.Unlock()
			return
		}
		e := model.ExtractionError{URL: cand.URL, Error: err.Error()}
		mu.Lock()
		if pm, ok := providerMetrics[cand.Provider]; ok {
			pm.ExtractionErrors = append(pm.ExtractionErrors, e)
		}
		*extErrors = append(*extErrors, e)
		mu.Unlock()
		return
	}

	result := filter.Evaluate(article, o.cfg.Filter)

	mu.Lock()
	defer mu.Unlock()

	pm, ok := providerMetrics[cand.Provider]
	if !ok {
		return
	}

	for _, w := range result.Warnings {
		if w == string(filter.WarningMissingPublishedAt) && cand.Provider != model.ProviderWebSearch {
			pm.MissingPublishedAt++
		}
	}

	if !result.Accept {
		pm.PreFiltered++
		if pm.RejectionReasons == nil {
			pm.RejectionReasons = map[string]int{}
		}
		for _, reason := range result.Reasons {
			pm.RejectionReasons[reason]++
		}
		return
	}

	article.Reasons = result.Reasons
	*articles = append(*articles, article)
	pm.Accepted++
	atomic.AddInt32(accepted, 1)
}

func kindOf(err error) rcerr.Kind {
	var c *rcerr.Classified
	if errors.As(err, &c) {
		return c.Kind
	}
	return rcerr.KindInternal
}

func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
