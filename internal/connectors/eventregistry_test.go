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

func TestEventRegistry_Disabled_WhenNoAPIKey(t *testing.T) {
	e := &EventRegistry{Config: EventRegistryConfig{Enabled: true}}
	res := e.Fetch(context.Background(), Options{RecencyHours: 48})
	require.True(t, res.Metrics.Disabled)
}

func TestEventRegistry_Fetch_ParsesArticles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"articles": map[string]any{
				"results": []map[string]any{
					{
						"title":       "Regional summit produces a long enough headline",
						"body":        "a body excerpt that is long enough to clear the pre-filter threshold easily",
						"url":         "https://publisher.example/summit-story",
						"dateTimePub": "2026-07-20T00:00:00Z",
						"source":      map[string]any{"title": "Wire Service"},
					},
				},
			},
		})
	}))
	defer srv.Close()

	e := &EventRegistry{
		Config: EventRegistryConfig{Enabled: true, APIKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client()},
		Query:  normalize.Normalize("Regional Summit Talks", nil),
	}
	res := e.Fetch(context.Background(), Options{RecencyHours: 72})
	require.False(t, res.Metrics.Failed)
	require.Len(t, res.Items, 1)
	require.Equal(t, "Wire Service", res.Items[0].SourceName)
	require.Equal(t, CandidateID("https://publisher.example/summit-story"), res.Items[0].ID)
}

func TestEventRegistry_Fetch_RetriesOnTooManyKeywords(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body erRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		calls++
		if len(body.Keyword) > 8 {
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "too many keywords supplied"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"articles": map[string]any{
				"results": []map[string]any{
					{
						"title":       "Narrowed keyword search still finds a story",
						"body":        "a body excerpt that is long enough to clear the pre-filter threshold easily",
						"url":         "https://publisher.example/narrow-story",
						"dateTimePub": "2026-07-20T00:00:00Z",
						"source":      map[string]any{"title": "Wire Service"},
					},
				},
			},
		})
	}))
	defer srv.Close()

	keywords := make([]string, 0, 15)
	for i := 0; i < 15; i++ {
		keywords = append(keywords, "kw")
	}
	e := &EventRegistry{
		Config: EventRegistryConfig{Enabled: true, APIKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client()},
		Query:  normalize.Normalized{EventRegistryKeywords: keywords, QueryTokens: []string{"kw"}},
	}
	res := e.Fetch(context.Background(), Options{RecencyHours: 72})
	require.False(t, res.Metrics.Failed)
	require.Len(t, res.Items, 1)
	require.Greater(t, calls, 1)
}
