// Package metricsserver provides a shared health/metrics HTTP server for a
// retrievalcore deployment: /healthz for liveness, /metrics for Prometheus
// scraping of the latest run's RetrievalMetrics.
package metricsserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/retrievalcore/internal/model"
)

// Gauges mirrors the last completed run's top-level RetrievalMetrics as
// Prometheus gauges, so a scraper sees the most recent run's shape without
// needing push-gateway plumbing.
type Gauges struct {
	candidateCount        prometheus.Gauge
	preFiltered           prometheus.Gauge
	attemptedExtractions  prometheus.Gauge
	accepted              prometheus.Gauge
	duplicatesRemoved     prometheus.Gauge
	providerReturned      *prometheus.GaugeVec
	providerAccepted      *prometheus.GaugeVec
	providerExtractErrors *prometheus.GaugeVec
}

// NewGauges registers the retrievalcore metric set against reg. Pass
// prometheus.DefaultRegisterer to expose them on the default /metrics
// handler.
func NewGauges(reg prometheus.Registerer) *Gauges {
	factory := promauto.With(reg)
	return &Gauges{
		candidateCount: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "retrievalcore", Name: "candidate_count", Help: "Total candidates returned by connectors in the last run.",
		}),
		preFiltered: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "retrievalcore", Name: "pre_filtered", Help: "Candidates removed before extraction in the last run.",
		}),
		attemptedExtractions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "retrievalcore", Name: "attempted_extractions", Help: "Extraction attempts made in the last run.",
		}),
		accepted: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "retrievalcore", Name: "accepted", Help: "Articles accepted in the last run.",
		}),
		duplicatesRemoved: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "retrievalcore", Name: "duplicates_removed", Help: "Duplicate articles removed at finalize in the last run.",
		}),
		providerReturned: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "retrievalcore", Name: "provider_returned", Help: "Candidates returned per provider in the last run.",
		}, []string{"provider"}),
		providerAccepted: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "retrievalcore", Name: "provider_accepted", Help: "Articles accepted per provider in the last run.",
		}, []string{"provider"}),
		providerExtractErrors: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "retrievalcore", Name: "provider_extraction_errors", Help: "Extraction errors per provider in the last run.",
		}, []string{"provider"}),
	}
}

// Observe overwrites every gauge with the values from m.
func (g *Gauges) Observe(m model.RetrievalMetrics) {
	g.candidateCount.Set(float64(m.CandidateCount))
	g.preFiltered.Set(float64(m.PreFiltered))
	g.attemptedExtractions.Set(float64(m.AttemptedExtractions))
	g.accepted.Set(float64(m.Accepted))
	g.duplicatesRemoved.Set(float64(m.DuplicatesRemoved))

	for provider, pm := range m.PerProvider {
		label := string(provider)
		g.providerReturned.WithLabelValues(label).Set(float64(pm.Returned))
		g.providerAccepted.WithLabelValues(label).Set(float64(pm.Accepted))
		g.providerExtractErrors.WithLabelValues(label).Set(float64(len(pm.ExtractionErrors)))
	}
}

// Start runs a /healthz + /metrics server in a goroutine and does not
// block. Callers own shutdown via the returned *http.Server.
func Start(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", port).Msg("metrics server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	return srv
}

// Shutdown gives the server up to 5s to drain before forcing a close.
func Shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
