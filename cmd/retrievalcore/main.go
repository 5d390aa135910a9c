package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/retrievalcore/internal/artifact"
	"github.com/hyperifyio/retrievalcore/internal/cluster"
	"github.com/hyperifyio/retrievalcore/internal/config"
	"github.com/hyperifyio/retrievalcore/internal/connectors"
	"github.com/hyperifyio/retrievalcore/internal/emitter"
	"github.com/hyperifyio/retrievalcore/internal/extractor"
	"github.com/hyperifyio/retrievalcore/internal/fetch"
	"github.com/hyperifyio/retrievalcore/internal/filter"
	"github.com/hyperifyio/retrievalcore/internal/metricsserver"
	"github.com/hyperifyio/retrievalcore/internal/normalize"
	"github.com/hyperifyio/retrievalcore/internal/orchestrator"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		topic              string
		artifactDir        string
		recencyHours       float64
		minAccepted        int
		maxAttempts        int
		globalConcurrency  int
		perHostConcurrency int
		fetchTimeoutMs     int
		totalBudgetMs      int
		maxCandidates      int
		clusterThreshold   float64
		attachThreshold    float64
		maxClusters        int
		userAgent          string
		verbose            bool

		webSearchEnabled bool
		searchAPIKey     string
		searchCX         string
		searchNewsOnly   bool

		rssFeedURL string

		newsAPIEnabled bool
		newsAPIKey     string

		eventRegistryEnabled bool
		eventRegistryKey     string

		configPath  string
		metricsPort int
	)

	flag.StringVar(&configPath, "config", os.Getenv("RETRIEVALCORE_CONFIG"), "Optional YAML config file; flags take precedence over its values")
	flag.IntVar(&metricsPort, "metrics.port", 0, "Port to serve /metrics and /healthz on; 0 disables the server")
	flag.StringVar(&topic, "topic", "", "Research topic")
	flag.StringVar(&artifactDir, "artifacts.dir", ".retrievalcore-artifacts", "Artifact store root directory")
	flag.Float64Var(&recencyHours, "recencyHours", 72, "Default lookback window in hours")
	flag.IntVar(&minAccepted, "retrieval.minAccepted", 5, "Minimum accepted articles before the run may stop early")
	flag.IntVar(&maxAttempts, "retrieval.maxAttempts", 24, "Maximum extraction attempts per run")
	flag.IntVar(&globalConcurrency, "retrieval.globalConcurrency", 4, "Global extraction worker count")
	flag.IntVar(&perHostConcurrency, "retrieval.perHostConcurrency", 2, "Per-host extraction concurrency limit")
	flag.IntVar(&fetchTimeoutMs, "retrieval.fetchTimeoutMs", 8000, "Per-fetch timeout in milliseconds")
	flag.IntVar(&totalBudgetMs, "retrieval.totalBudgetMs", 20000, "Total run wall-clock budget in milliseconds")
	flag.IntVar(&maxCandidates, "retrieval.maxCandidates", 40, "Maximum ranked articles kept after finalize")
	flag.Float64Var(&clusterThreshold, "retrieval.clusterThreshold", 0.65, "Similarity threshold to join an existing cluster as representative-eligible")
	flag.Float64Var(&attachThreshold, "retrieval.attachThreshold", 0.55, "Similarity threshold to attach as a secondary cluster member")
	flag.IntVar(&maxClusters, "retrieval.maxClusters", 5, "Maximum number of story clusters")
	flag.StringVar(&userAgent, "retrieval.userAgent", "retrievalcore/1.0", "User-Agent header sent by the extractor's page fetches (connectors do not use it)")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")

	flag.BoolVar(&webSearchEnabled, "websearch.enabled", os.Getenv("WEBSEARCH_ENABLED") == "true", "Enable the Web Search connector")
	flag.StringVar(&searchAPIKey, "websearch.key", os.Getenv("WEBSEARCH_API_KEY"), "Web Search API key")
	flag.StringVar(&searchCX, "websearch.cx", os.Getenv("WEBSEARCH_CX"), "Web Search engine ID")
	flag.BoolVar(&searchNewsOnly, "websearch.newsOnly", true, "Restrict Web Search results to plausible news hosts")

	flag.StringVar(&rssFeedURL, "webnewsrss.feedUrl", os.Getenv("WEBNEWSRSS_FEED_URL"), "Web News RSS feed URL (empty disables the connector)")

	flag.BoolVar(&newsAPIEnabled, "newsapi.enabled", os.Getenv("NEWSAPI_ENABLED") == "true", "Enable the News API connector")
	flag.StringVar(&newsAPIKey, "newsapi.key", os.Getenv("NEWSAPI_API_KEY"), "News API key")

	flag.BoolVar(&eventRegistryEnabled, "eventregistry.enabled", os.Getenv("EVENTREGISTRY_ENABLED") == "true", "Enable the Event Registry connector")
	flag.StringVar(&eventRegistryKey, "eventregistry.key", os.Getenv("EVENTREGISTRY_API_KEY"), "Event Registry API key")

	flag.Parse()

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	fileCfg, err := config.LoadFile(configPath)
	if err != nil {
		log.Error().Err(err).Msg("load config file failed")
		os.Exit(2)
	}
	if fileCfg != nil {
		applyFileConfig(fileCfg, set, &topic, &artifactDir, &recencyHours, &minAccepted, &maxAttempts,
			&globalConcurrency, &perHostConcurrency, &fetchTimeoutMs, &totalBudgetMs, &maxCandidates,
			&clusterThreshold, &attachThreshold, &maxClusters, &userAgent,
			&webSearchEnabled, &searchAPIKey, &searchCX, &searchNewsOnly,
			&rssFeedURL, &newsAPIEnabled, &newsAPIKey, &eventRegistryEnabled, &eventRegistryKey, &metricsPort)
	}

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if topic == "" {
		log.Error().Msg("missing required -topic")
		os.Exit(2)
	}

	httpClient := &http.Client{Timeout: time.Duration(fetchTimeoutMs) * time.Millisecond}

	qmap := &normalize.QueryMap{}
	normalized := normalize.Normalize(topic, qmap)

	conns := []connectors.Connector{
		&connectors.WebSearch{
			Config: connectors.WebSearchConfig{
				Enabled:    webSearchEnabled,
				APIKey:     searchAPIKey,
				CX:         searchCX,
				NewsOnly:   searchNewsOnly,
				HTTPClient: httpClient,
			},
			Query: normalized,
		},
		&connectors.WebNewsRSS{
			Config: connectors.WebNewsRSSConfig{
				Enabled:    rssFeedURL != "",
				FeedURL:    rssFeedURL,
				HTTPClient: httpClient,
			},
			Query: normalized,
		},
		&connectors.NewsAPI{
			Config: connectors.NewsAPIConfig{
				Enabled:    newsAPIEnabled,
				APIKey:     newsAPIKey,
				HTTPClient: httpClient,
			},
			Query: normalized,
		},
		&connectors.EventRegistry{
			Config: connectors.EventRegistryConfig{
				Enabled:    eventRegistryEnabled,
				APIKey:     eventRegistryKey,
				HTTPClient: httpClient,
			},
			Query: normalized,
		},
	}

	ext := extractor.New(extractor.Config{
		UserAgent: userAgent,
		Fetch: &fetch.Client{
			HTTPClient:  httpClient,
			UserAgent:   userAgent,
			MaxAttempts: 3,
		},
	})

	orch := orchestrator.New(orchestrator.Config{
		MinAccepted:        minAccepted,
		MaxAttempts:        maxAttempts,
		GlobalConcurrency:  globalConcurrency,
		PerHostConcurrency: perHostConcurrency,
		FetchTimeoutMs:     fetchTimeoutMs,
		TotalBudgetMs:      totalBudgetMs,
		RecencyHours:       recencyHours,
		MaxCandidates:      maxCandidates,
		Cluster: cluster.Options{
			ClusterThreshold: clusterThreshold,
			AttachThreshold:  attachThreshold,
			MaxClusters:      maxClusters,
		},
		Filter: filter.Options{RecencyHours: recencyHours},
	}, conns, ext)

	store := &artifact.FilesystemStore{Root: artifactDir}
	sink := emitter.NewRecorder()

	var gauges *metricsserver.Gauges
	if metricsPort > 0 {
		gauges = metricsserver.NewGauges(prometheus.DefaultRegisterer)
		srv := metricsserver.Start(metricsPort)
		defer metricsserver.Shutdown(srv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(totalBudgetMs+fetchTimeoutMs)*time.Millisecond+5*time.Second)
	defer cancel()

	result, err := orch.Run(ctx, orchestrator.RunInput{Topic: topic, QueryMap: qmap}, sink, store)
	if err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(2)
	}

	if gauges != nil {
		gauges.Observe(result.Metrics)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Error().Err(err).Msg("encode result failed")
		os.Exit(2)
	}

	for _, e := range sink.Events() {
		fmt.Fprintf(os.Stderr, "stage=%s status=%s\n", e.Stage, e.Status)
	}
}

// applyFileConfig fills in values from a YAML config file, but only for
// settings the caller did not pass explicitly on the command line (per
// flag.Visit's "set" map) — flags always win over the file.
func applyFileConfig(
	f *config.FileConfig, set map[string]bool,
	topic, artifactDir *string, recencyHours *float64,
	minAccepted, maxAttempts, globalConcurrency, perHostConcurrency, fetchTimeoutMs, totalBudgetMs, maxCandidates *int,
	clusterThreshold, attachThreshold *float64, maxClusters *int, userAgent *string,
	webSearchEnabled *bool, searchAPIKey, searchCX *string, searchNewsOnly *bool,
	rssFeedURL *string, newsAPIEnabled *bool, newsAPIKey *string,
	eventRegistryEnabled *bool, eventRegistryKey *string, metricsPort *int,
) {
	if !set["topic"] && f.Topic != "" {
		*topic = f.Topic
	}
	if !set["artifacts.dir"] && f.ArtifactsDir != "" {
		*artifactDir = f.ArtifactsDir
	}
	if !set["recencyHours"] && f.RecencyHours != 0 {
		*recencyHours = f.RecencyHours
	}
	if !set["retrieval.minAccepted"] && f.Retrieval.MinAccepted != 0 {
		*minAccepted = f.Retrieval.MinAccepted
	}
	if !set["retrieval.maxAttempts"] && f.Retrieval.MaxAttempts != 0 {
		*maxAttempts = f.Retrieval.MaxAttempts
	}
	if !set["retrieval.globalConcurrency"] && f.Retrieval.GlobalConcurrency != 0 {
		*globalConcurrency = f.Retrieval.GlobalConcurrency
	}
	if !set["retrieval.perHostConcurrency"] && f.Retrieval.PerHostConcurrency != 0 {
		*perHostConcurrency = f.Retrieval.PerHostConcurrency
	}
	if !set["retrieval.fetchTimeoutMs"] && f.Retrieval.FetchTimeoutMs != 0 {
		*fetchTimeoutMs = f.Retrieval.FetchTimeoutMs
	}
	if !set["retrieval.totalBudgetMs"] && f.Retrieval.TotalBudgetMs != 0 {
		*totalBudgetMs = f.Retrieval.TotalBudgetMs
	}
	if !set["retrieval.maxCandidates"] && f.Retrieval.MaxCandidates != 0 {
		*maxCandidates = f.Retrieval.MaxCandidates
	}
	if !set["retrieval.clusterThreshold"] && f.Retrieval.ClusterThreshold != 0 {
		*clusterThreshold = f.Retrieval.ClusterThreshold
	}
	if !set["retrieval.attachThreshold"] && f.Retrieval.AttachThreshold != 0 {
		*attachThreshold = f.Retrieval.AttachThreshold
	}
	if !set["retrieval.maxClusters"] && f.Retrieval.MaxClusters != 0 {
		*maxClusters = f.Retrieval.MaxClusters
	}
	if !set["retrieval.userAgent"] && f.Retrieval.UserAgent != "" {
		*userAgent = f.Retrieval.UserAgent
	}
	if !set["websearch.enabled"] && f.WebSearch.Enabled {
		*webSearchEnabled = true
	}
	if !set["websearch.key"] && f.WebSearch.APIKey != "" {
		*searchAPIKey = f.WebSearch.APIKey
	}
	if !set["websearch.cx"] && f.WebSearch.CX != "" {
		*searchCX = f.WebSearch.CX
	}
	if !set["websearch.newsOnly"] && f.WebSearch.NewsOnly != nil {
		*searchNewsOnly = *f.WebSearch.NewsOnly
	}
	if !set["webnewsrss.feedUrl"] && f.WebNewsRSS.FeedURL != "" {
		*rssFeedURL = f.WebNewsRSS.FeedURL
	}
	if !set["newsapi.enabled"] && f.NewsAPI.Enabled {
		*newsAPIEnabled = true
	}
	if !set["newsapi.key"] && f.NewsAPI.APIKey != "" {
		*newsAPIKey = f.NewsAPI.APIKey
	}
	if !set["eventregistry.enabled"] && f.EventRegistry.Enabled {
		*eventRegistryEnabled = true
	}
	if !set["eventregistry.key"] && f.EventRegistry.APIKey != "" {
		*eventRegistryKey = f.EventRegistry.APIKey
	}
	if !set["metrics.port"] && f.MetricsPort != 0 {
		*metricsPort = f.MetricsPort
	}
}
