package orchestrator

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/retrievalcore/internal/artifact"
	"github.com/hyperifyio/retrievalcore/internal/cluster"
	"github.com/hyperifyio/retrievalcore/internal/connectors"
	"github.com/hyperifyio/retrievalcore/internal/emitter"
	"github.com/hyperifyio/retrievalcore/internal/extractor"
	"github.com/hyperifyio/retrievalcore/internal/fetch"
	"github.com/hyperifyio/retrievalcore/internal/model"
)

func longArticleHTML(title string, extraWords ...string) string {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&b, "token%d ", i)
	}
	for _, w := range extraWords {
		b.WriteString(w)
		b.WriteString(" ")
	}
	return fmt.Sprintf(`<html><head><title>%s</title></head><body><article>%s</article></body></html>`, title, b.String())
}

func newTestExtractor(client *http.Client) *extractor.Extractor {
	return extractor.New(extractor.Config{
		UserAgent:         "retrievalcore-test",
		Fetch:             &fetch.Client{HTTPClient: client, MaxAttempts: 1},
		AllowPrivateHosts: true,
	})
}

func TestOrchestrator_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(longArticleHTML("Widget Launch Story", "widget", "launch")))
	}))
	defer srv.Close()

	ext := newTestExtractor(srv.Client())

	webSearch := &fakeConnector{
		provider: model.ProviderWebSearch,
		items: []model.Candidate{
			{ID: "c1", Provider: model.ProviderWebSearch, Title: "Widget Launch Story", URL: srv.URL + "/story1"},
		},
	}
	rss := &fakeConnector{provider: model.ProviderWebNewsRSS, disabled: true}
	newsAPI := &fakeConnector{provider: model.ProviderNewsAPI, disabled: true}
	eventRegistry := &fakeConnector{provider: model.ProviderEventRegistry, disabled: true}

	orch := New(Config{
		MinAccepted:        1,
		MaxAttempts:        5,
		GlobalConcurrency:  2,
		PerHostConcurrency: 2,
		TotalBudgetMs:      5000,
		MaxCandidates:      10,
		Cluster:            cluster.Options{},
	}, []connectors.Connector{webSearch, rss, newsAPI, eventRegistry}, ext)

	rec := emitter.NewRecorder()
	store := artifact.NewRecorder()

	result, err := orch.Run(context.Background(), RunInput{Topic: "Widget Launch"}, rec, store)
	require.NoError(t, err)
	require.Len(t, result.Articles, 1)
	require.Len(t, result.Clusters, 1)
	require.Equal(t, 1, result.Metrics.Accepted)
	require.Nil(t, rec.FatalError())

	events := rec.Events()
	require.True(t, len(events) >= 4)
	require.Equal(t, emitter.StatusStart, events[0].Status)
	require.Equal(t, emitter.StageRetrieval, events[0].Stage)

	var sawRetrievalSuccess, sawRankingSuccess bool
	for _, e := range events {
		if e.Stage == emitter.StageRetrieval && e.Status == emitter.StatusSuccess {
			sawRetrievalSuccess = true
		}
		if e.Stage == emitter.StageRanking && e.Status == emitter.StatusSuccess {
			sawRankingSuccess = true
		}
	}
	require.True(t, sawRetrievalSuccess)
	require.True(t, sawRankingSuccess)

	require.True(t, store.LayoutCalls >= 1)
	require.Len(t, store.RunArtifacts, 1)
}

func TestOrchestrator_DisabledConnectorNotCountedInAttempts(t *testing.T) {
	ext := newTestExtractor(http.DefaultClient)

	conns := []connectors.Connector{
		&fakeConnector{provider: model.ProviderWebSearch, disabled: true},
		&fakeConnector{provider: model.ProviderWebNewsRSS, disabled: true},
		&fakeConnector{provider: model.ProviderNewsAPI, disabled: true},
		&fakeConnector{provider: model.ProviderEventRegistry, disabled: true},
	}

	orch := New(Config{MinAccepted: 1, MaxAttempts: 5, TotalBudgetMs: 2000}, conns, ext)
	rec := emitter.NewRecorder()
	store := artifact.NewRecorder()

	result, err := orch.Run(context.Background(), RunInput{Topic: "anything"}, rec, store)
	require.NoError(t, err)
	require.Empty(t, result.Articles)
	require.Equal(t, 0, result.Metrics.AttemptedExtractions)

	pm := result.Metrics.PerProvider[model.ProviderWebSearch]
	require.True(t, pm.Disabled)
	require.Equal(t, 0, pm.Returned)
	require.Empty(t, pm.ExtractionErrors)
}

func TestOrchestrator_DeadlineContainment(t *testing.T) {
	ext := newTestExtractor(http.DefaultClient)

	slow := &fakeConnector{provider: model.ProviderWebSearch, sleepFor: 2 * time.Second}
	conns := []connectors.Connector{
		slow,
		&fakeConnector{provider: model.ProviderWebNewsRSS, disabled: true},
		&fakeConnector{provider: model.ProviderNewsAPI, disabled: true},
		&fakeConnector{provider: model.ProviderEventRegistry, disabled: true},
	}

	orch := New(Config{MinAccepted: 5, MaxAttempts: 5, TotalBudgetMs: 30}, conns, ext)
	rec := emitter.NewRecorder()
	store := artifact.NewRecorder()

	start := time.Now()
	result, err := orch.Run(context.Background(), RunInput{Topic: "slow topic"}, rec, store)
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Less(t, elapsed, 2*time.Second)
	require.Nil(t, rec.FatalError())
	require.Less(t, result.Metrics.Accepted, 5)

	var sawRetrievalFailure bool
	for _, e := range rec.Events() {
		if e.Stage == emitter.StageRetrieval && e.Status == emitter.StatusFailure {
			sawRetrievalFailure = true
		}
	}
	require.True(t, sawRetrievalFailure)
}
