// Package orchestrator implements the Orchestrator (L6): fan-out across
// connectors, round-robin extraction budgeting, global/per-host
// concurrency, deadline and cancellation composition, metrics aggregation,
// artifact persistence hooks, and stage event emission, per §4.6.
package orchestrator

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/retrievalcore/internal/artifact"
	"github.com/hyperifyio/retrievalcore/internal/cluster"
	"github.com/hyperifyio/retrievalcore/internal/connectors"
	"github.com/hyperifyio/retrievalcore/internal/dedupe"
	"github.com/hyperifyio/retrievalcore/internal/emitter"
	"github.com/hyperifyio/retrievalcore/internal/extractor"
	"github.com/hyperifyio/retrievalcore/internal/filter"
	"github.com/hyperifyio/retrievalcore/internal/model"
	"github.com/hyperifyio/retrievalcore/internal/normalize"
	"github.com/hyperifyio/retrievalcore/internal/rank"
)

// providerOrder is the fixed round-robin visiting order used for both queue
// construction and budgeted extraction, so a given set of inputs always
// yields the same candidate order (§5 "Ordering guarantees").
var providerOrder = []model.Provider{
	model.ProviderWebSearch,
	model.ProviderWebNewsRSS,
	model.ProviderNewsAPI,
	model.ProviderEventRegistry,
}

// Config holds the orchestrator's tunables; recognized keys mirror §6's
// retrieval.* configuration block.
type Config struct {
	MinAccepted        int
	MaxAttempts        int
	GlobalConcurrency  int
	PerHostConcurrency int
	FetchTimeoutMs     int
	TotalBudgetMs      int
	RecencyHours       float64
	MaxCandidates      int
	Cluster            cluster.Options
	Filter             filter.Options
	HeartbeatInterval  time.Duration
}

func (c *Config) fillDefaults() {
	if c.MinAccepted <= 0 {
		c.MinAccepted = 5
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 24
	}
	if c.GlobalConcurrency <= 0 {
		c.GlobalConcurrency = 4
	}
	if c.PerHostConcurrency <= 0 {
		c.PerHostConcurrency = 2
	}
	if c.FetchTimeoutMs <= 0 {
		c.FetchTimeoutMs = 8000
	}
	if c.TotalBudgetMs <= 0 {
		c.TotalBudgetMs = 20000
	}
	if c.MaxCandidates <= 0 {
		c.MaxCandidates = 40
	}
}

// Orchestrator is safe for concurrent Run calls; all per-run state lives on
// the stack of one Run invocation (§3's RunContext).
type Orchestrator struct {
	cfg        Config
	connectors []connectors.Connector
	extractor  *extractor.Extractor
}

// New constructs an Orchestrator over a fixed connector set and a shared
// Extractor (whose process-wide cache outlives any single run).
func New(cfg Config, conns []connectors.Connector, ext *extractor.Extractor) *Orchestrator {
	cfg.fillDefaults()
	return &Orchestrator{cfg: cfg, connectors: conns, extractor: ext}
}

// RunInput carries the per-run parameters the caller supplies.
type RunInput struct {
	RunID    string
	Topic    string
	QueryMap *normalize.QueryMap
}

// RunResult is what a completed run returns to its caller: the final
// ranked, clustered article set plus the run's aggregate metrics.
type RunResult struct {
	Articles []model.NormalizedArticle
	Clusters []model.StoryCluster
	Metrics  model.RetrievalMetrics
}

// Run executes one full retrieval pipeline invocation. It never returns a
// Go error for connector, extraction, or artifact-persistence failures —
// those become metrics and stage events per §7's propagation policy. Only
// an internal-kind failure (e.g. a panic escaping finalize) is surfaced as
// both a `fatal` stage event and a returned error.
func (o *Orchestrator) Run(ctx context.Context, in RunInput, sink emitter.Sink, store artifact.Store) (result RunResult, err error) {
	runID := in.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	defer func() {
		if r := recover(); r != nil {
			ferr := internalError(r)
			sink.Fatal(ferr)
			err = ferr
		}
	}()

	startedAt := time.Now()
	deadlineAt := startedAt.Add(time.Duration(o.cfg.TotalBudgetMs) * time.Millisecond)

	runCtx, cancel := context.WithDeadline(ctx, deadlineAt)
	defer cancel()

	sink.Emit(emitter.StageEvent{RunID: runID, Stage: emitter.StageRetrieval, Status: emitter.StatusStart, Ts: startedAt})

	if err := store.EnsureLayout(); err != nil {
		log.Warn().Err(err).Msg("artifact store ensure layout failed")
	}

	normalized := normalize.Normalize(in.Topic, in.QueryMap)

	connResults := o.fanOut(runCtx, store, runID)
	providerMetrics := newProviderMetrics(connResults, providerOrder)

	candResult := o.aggregate(connResults, providerMetrics)
	queues := o.buildQueues(candResult.Unique, normalized.QueryTokens, providerMetrics)
	ordered := roundRobin(queues, o.cfg.MaxAttempts, providerMetrics)

	accepted, extractionErrors := o.extractAll(runCtx, cancel, ordered, normalized.QueryTokens, providerMetrics)

	retrievalFailed := runCtx.Err() != nil
	if retrievalFailed {
		sink.Emit(emitter.StageEvent{
			RunID: runID, Stage: emitter.StageRetrieval, Status: emitter.StatusFailure,
			Message: retrievalFailureMessage(runCtx), Ts: time.Now(),
		})
	} else {
		sink.Emit(emitter.StageEvent{RunID: runID, Stage: emitter.StageRetrieval, Status: emitter.StatusSuccess, Ts: time.Now()})
	}

	sink.Emit(emitter.StageEvent{RunID: runID, Stage: emitter.StageRanking, Status: emitter.StatusStart, Ts: time.Now()})
	final := o.finalize(accepted, providerMetrics)
	persistFinal(store, runID, final.articles, final.clusters)
	sink.Emit(emitter.StageEvent{
		RunID: runID, Stage: emitter.StageRanking, Status: emitter.StatusSuccess,
		Data: map[string]any{"clusters": len(final.clusters), "articles": len(final.articles)},
		Ts:   time.Now(),
	})

	metrics := buildRetrievalMetrics(connResults, providerMetrics, candResult, extractionErrors, final)

	return RunResult{Articles: final.articles, Clusters: final.clusters, Metrics: metrics}, nil
}

func retrievalFailureMessage(ctx context.Context) string {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return "deadline exceeded"
	default:
		return "run cancelled"
	}
}

func internalError(r any) error {
	if e, ok := r.(error); ok {
		return e
	}
	return errInternalPanic
}

type finalized struct {
	articles []model.NormalizedArticle
	clusters []model.StoryCluster
	dupesRemoved int
}

// finalize runs the §4.6.7 finish line: canonical-URL dedupe (similarity
// off, to avoid double-punishing near-duplicates clustering already
// collapses), rank, cap at MaxCandidates, then cluster.
func (o *Orchestrator) finalize(accepted []model.NormalizedArticle, providerMetrics map[model.Provider]*model.ProviderMetrics) finalized {
	deduped := dedupe.Articles(accepted, dedupe.Options{SimilarityEnabled: false})
	scored := rank.ScoreAll(deduped, rank.Options{RecencyHours: o.cfg.RecencyHours})
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if len(scored) > o.cfg.MaxCandidates {
		scored = scored[:o.cfg.MaxCandidates]
	}

	clusterOpt := o.cfg.Cluster
	clusters := cluster.Cluster(scored, clusterOpt)

	return finalized{articles: scored, clusters: clusters, dupesRemoved: len(accepted) - len(deduped)}
}

func persistFinal(store artifact.Store, runID string, articles []model.NormalizedArticle, clusters []model.StoryCluster) {
	for _, a := range articles {
		if err := store.SaveNormalizedArticle(a.ID, a); err != nil {
			log.Warn().Err(err).Str("articleId", a.ID).Msg("artifact save article failed")
		}
	}
	if err := store.SaveRunArtifact(runID, "clusters", clusters); err != nil {
		log.Warn().Err(err).Str("runId", runID).Msg("artifact save clusters failed")
	}
}
