package connectors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hyperifyio/retrievalcore/internal/model"
	"github.com/hyperifyio/retrievalcore/internal/normalize"
	"github.com/hyperifyio/retrievalcore/internal/prefilter"
)

// EventRegistryConfig configures the Event Registry connector.
type EventRegistryConfig struct {
	Enabled    bool
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// EventRegistry is the Event Registry connector (§4.2 "Event Registry").
type EventRegistry struct {
	Config EventRegistryConfig
	Query  normalize.Normalized
}

func (e *EventRegistry) Provider() model.Provider { return model.ProviderEventRegistry }

// keywordBudgetLadder is the successively smaller keyword budget retried on
// a "too many keywords" rejection, per §4.2.
var keywordBudgetLadder = []int{15, 12, 10, 8}

func (e *EventRegistry) Fetch(ctx context.Context, opt Options) Result {
	res := Result{Provider: e.Provider(), FetchedAt: time.Now()}
	if !e.Config.Enabled || e.Config.APIKey == "" {
		res.Metrics.Disabled = true
		return res
	}

	client := e.Config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	base := e.Config.BaseURL
	if base == "" {
		base = "https://eventregistry.org/api/v1/article/getArticles"
	}

	dateStart := time.Now().Add(-time.Duration(opt.RecencyHours * float64(time.Hour)))
	dateEnd := time.Now()

	keywords := e.Query.EventRegistryKeywords
	var articles []erArticle
	var lastErr error
	usedKeywords := keywords

	for _, budget := range keywordBudgetLadder {
		trimmed := keywords
		if len(trimmed) > budget {
			trimmed = trimmed[:budget]
		}
		got, tooMany, err := e.fetchOnce(ctx, client, base, trimmed, dateStart, dateEnd)
		if err == nil {
			articles = got
			usedKeywords = trimmed
			lastErr = nil
			break
		}
		lastErr = err
		if !tooMany {
			break
		}
	}

	res.Query = strings.Join(usedKeywords, " OR ")
	if lastErr != nil {
		res.Metrics.Failed = true
		res.Metrics.Error = lastErr.Error()
		return res
	}

	var kept []model.Candidate
	preFiltered := 0
	for _, a := range articles {
		title := strings.TrimSpace(a.Title)
		link := strings.TrimSpace(a.URL)
		snippet := strings.TrimSpace(a.Body)
		if len(snippet) > 400 {
			snippet = snippet[:400]
		}
		d := prefilter.Apply(link, title, snippet, e.Query.QueryTokens)
		if !d.Pass {
			preFiltered++
			continue
		}
		kept = append(kept, model.Candidate{
			ID:          CandidateID(link),
			Provider:    model.ProviderEventRegistry,
			Title:       title,
			URL:         link,
			Snippet:     snippet,
			SourceName:  a.Source.Title,
			PublishedAt: a.DateTimePub,
			ProviderData: map[string]any{
				"body": a.Body,
			},
		})
	}

	res.Items = kept
	res.Metrics.PreFiltered = preFiltered
	return res
}

func (e *EventRegistry) fetchOnce(ctx context.Context, client *http.Client, base string, keywords []string, start, end time.Time) ([]erArticle, bool, error) {
	body := erRequest{
		Action:        "getArticles",
		Keyword:       keywords,
		KeywordOper:   "or",
		DateStart:     start.UTC().Format("2006-01-02"),
		DateEnd:       end.UTC().Format("2006-01-02"),
		ArticlesCount: 100,
		APIKey:        e.Config.APIKey,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base, bytes.NewReader(payload))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	var parsed erResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, false, err
	}
	if parsed.Error != "" {
		tooMany := strings.Contains(strings.ToLower(parsed.Error), "too many keywords")
		return nil, tooMany, fmt.Errorf("event registry error: %s", parsed.Error)
	}
	return parsed.Articles.Results, false, nil
}

type erRequest struct {
	Action        string   `json:"action"`
	Keyword       []string `json:"keyword"`
	KeywordOper   string   `json:"keywordOper"`
	DateStart     string   `json:"dateStart"`
	DateEnd       string   `json:"dateEnd"`
	ArticlesCount int      `json:"articlesCount"`
	APIKey        string   `json:"apiKey"`
}

type erResponse struct {
	Error    string `json:"error,omitempty"`
	Articles struct {
		Results []erArticle `json:"results"`
	} `json:"articles"`
}

type erArticle struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	URL         string `json:"url"`
	DateTimePub string `json:"dateTimePub"`
	Source      struct {
		Title string `json:"title"`
	} `json:"source"`
}
