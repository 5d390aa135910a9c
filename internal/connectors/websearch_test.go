package connectors

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/retrievalcore/internal/normalize"
)

func TestWebSearch_Disabled_WhenNoAPIKey(t *testing.T) {
	w := &WebSearch{Config: WebSearchConfig{Enabled: true}}
	res := w.Fetch(context.Background(), Options{RecencyHours: 48})
	require.True(t, res.Metrics.Disabled)
}

func TestWebSearch_Fetch_FiltersNonNewsAndPaginates(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		start := r.URL.Query().Get("start")
		w.Header().Set("Content-Type", "application/json")
		if start == "1" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{
					{"title": "A fairly long climate policy vote article title", "link": "https://news.example.com/story-1", "snippet": "a snippet long enough to pass the filter threshold easily", "displayLink": "news.example.com"},
					{"title": "Blocked gov site article title", "link": "https://agency.gov/story", "snippet": "a snippet long enough to pass the filter threshold easily", "displayLink": "agency.gov"},
				},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []map[string]any{}})
	}))
	defer srv.Close()

	w := &WebSearch{
		Config: WebSearchConfig{Enabled: true, APIKey: "k", CX: "c", BaseURL: srv.URL, HTTPClient: srv.Client()},
		Query:  normalize.Normalize("climate policy vote", nil),
	}
	res := w.Fetch(context.Background(), Options{RecencyHours: 72})
	require.False(t, res.Metrics.Disabled)
	require.False(t, res.Metrics.Failed)
	require.Len(t, res.Items, 1)
	require.Equal(t, "https://news.example.com/story-1", res.Items[0].URL)
	require.Equal(t, CandidateID("https://news.example.com/story-1"), res.Items[0].ID)
	require.Equal(t, 1, res.Metrics.PreFiltered)
}

func TestWebSearch_Fetch_TreatsTooManyRequestsAsDisabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	w := &WebSearch{Config: WebSearchConfig{Enabled: true, APIKey: "k", CX: "c", BaseURL: srv.URL, HTTPClient: srv.Client()}}
	res := w.Fetch(context.Background(), Options{RecencyHours: 48})
	require.True(t, res.Metrics.Disabled)
	require.False(t, res.Metrics.Failed)
}

func TestRejectNonNews_BlocksSocialHosts(t *testing.T) {
	require.True(t, rejectNonNews("https://twitter.com/whatever", false))
	require.False(t, rejectNonNews("https://news.example.com/a/story", false))
}

func TestRejectNonNews_NewsOnlyRequiresDateOrSection(t *testing.T) {
	require.True(t, rejectNonNews("https://example.com/page", true))
	require.False(t, rejectNonNews("https://example.com/2026/01/02/story", true))
	require.False(t, rejectNonNews("https://example.com/world/story", true))
}
