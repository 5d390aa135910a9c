package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hyperifyio/retrievalcore/internal/model"
	"github.com/hyperifyio/retrievalcore/internal/normalize"
	"github.com/hyperifyio/retrievalcore/internal/prefilter"
)

// NewsAPIConfig configures the News API connector.
type NewsAPIConfig struct {
	Enabled    bool
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// NewsAPI is the News API connector (§4.2 "News API").
type NewsAPI struct {
	Config NewsAPIConfig
	Query  normalize.Normalized
}

func (n *NewsAPI) Provider() model.Provider { return model.ProviderNewsAPI }

const newsAPIPageSize = 100
const newsAPIMaxPages = 5

func (n *NewsAPI) Fetch(ctx context.Context, opt Options) Result {
	res := Result{Provider: n.Provider(), FetchedAt: time.Now(), Query: n.Query.NewsAPIQuery}
	if !n.Config.Enabled || n.Config.APIKey == "" {
		res.Metrics.Disabled = true
		return res
	}

	client := n.Config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	base := n.Config.BaseURL
	if base == "" {
		base = "https://newsapi.org/v2/everything"
	}

	from := time.Now().Add(-time.Duration(opt.RecencyHours * float64(time.Hour)))
	to := time.Now()

	queries := []string{n.Query.NewsAPIQuery, n.Query.NewsAPIQueryFallback}
	var articles []newsAPIArticle
	var lastErr error
	usedQuery := ""

	for i, q := range queries {
		if strings.TrimSpace(q) == "" {
			continue
		}
		got, malformed, err := n.fetchAllPages(ctx, client, base, q, from, to)
		if err == nil {
			articles = got
			usedQuery = q
			lastErr = nil
			break
		}
		lastErr = err
		if !malformed || i == len(queries)-1 {
			break
		}
	}

	if lastErr != nil {
		res.Metrics.Failed = true
		res.Metrics.Error = lastErr.Error()
		return res
	}

	res.Query = usedQuery
	var kept []model.Candidate
	preFiltered := 0
	for _, a := range articles {
		title := strings.TrimSpace(a.Title)
		link := strings.TrimSpace(a.URL)
		snippet := strings.TrimSpace(a.Description)
		d := prefilter.Apply(link, title, snippet, n.Query.QueryTokens)
		if !d.Pass {
			preFiltered++
			continue
		}
		sourceName := a.Source.Name
		kept = append(kept, model.Candidate{
			ID:          CandidateID(link),
			Provider:    model.ProviderNewsAPI,
			Title:       title,
			URL:         link,
			Snippet:     snippet,
			SourceName:  sourceName,
			PublishedAt: a.PublishedAt,
			ProviderData: map[string]any{
				"content": a.Content,
			},
		})
	}

	res.Items = kept
	res.Metrics.PreFiltered = preFiltered
	return res
}

func (n *NewsAPI) fetchAllPages(ctx context.Context, client *http.Client, base, query string, from, to time.Time) ([]newsAPIArticle, bool, error) {
	var all []newsAPIArticle
	for page := 1; page <= newsAPIMaxPages; page++ {
		u, err := url.Parse(base)
		if err != nil {
			return nil, false, err
		}
		q := u.Query()
		q.Set("q", query)
		q.Set("apiKey", n.Config.APIKey)
		q.Set("sortBy", "publishedAt")
		q.Set("pageSize", fmt.Sprintf("%d", newsAPIPageSize))
		q.Set("page", fmt.Sprintf("%d", page))
		q.Set("from", from.UTC().Format(time.RFC3339))
		q.Set("to", to.UTC().Format(time.RFC3339))
		u.RawQuery = q.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, false, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, false, err
		}
		var parsed newsAPIResponse
		decErr := json.NewDecoder(resp.Body).Decode(&parsed)
		resp.Body.Close()
		if decErr != nil {
			return nil, false, decErr
		}
		if parsed.Status != "ok" {
			malformed := strings.Contains(strings.ToLower(parsed.Code), "query")
			return nil, malformed, fmt.Errorf("news api error: %s: %s", parsed.Code, parsed.Message)
		}
		if len(parsed.Articles) == 0 {
			break
		}
		all = append(all, parsed.Articles...)
		if len(parsed.Articles) < newsAPIPageSize {
			break
		}
	}
	return all, false, nil
}

type newsAPIResponse struct {
	Status       string           `json:"status"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
	Code         string           `json:"code,omitempty"`
	Message      string           `json:"message,omitempty"`
}

type newsAPIArticle struct {
	Source      newsAPISource `json:"source"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	PublishedAt string        `json:"publishedAt"`
	Content     string        `json:"content"`
}

type newsAPISource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
