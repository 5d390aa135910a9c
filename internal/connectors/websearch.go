package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/hyperifyio/retrievalcore/internal/model"
	"github.com/hyperifyio/retrievalcore/internal/normalize"
	"github.com/hyperifyio/retrievalcore/internal/prefilter"
)

// WebSearchConfig configures the Custom Search-style connector.
type WebSearchConfig struct {
	Enabled    bool
	APIKey     string
	CX         string
	BaseURL    string // defaults to the Custom Search JSON API endpoint
	NewsOnly   bool
	HTTPClient *http.Client
}

// WebSearch is the Web Search connector (§4.2 "Web Search").
type WebSearch struct {
	Config WebSearchConfig
	Query  normalize.Normalized
}

func (w *WebSearch) Provider() model.Provider { return model.ProviderWebSearch }

var nonNewsTLDRe = regexp.MustCompile(`\.(gov|edu|mil)$`)
var nonNewsPathRe = regexp.MustCompile(`(?i)forum|community|support|docs|help|academy`)
var newsSectionRe = regexp.MustCompile(`/(news|world|politics|business|technology|science|health)/`)
var urlDateSegmentRe = regexp.MustCompile(`/\d{4}/\d{2}(/\d{2})?/`)

// blockedHosts is a closed list of social/aggregator hosts that never carry
// primary-source articles.
var blockedHosts = map[string]struct{}{
	"facebook.com": {}, "twitter.com": {}, "x.com": {}, "reddit.com": {},
	"pinterest.com": {}, "instagram.com": {}, "tiktok.com": {},
}

const pageSize = 10
const maxResults = 50

func (w *WebSearch) Fetch(ctx context.Context, opt Options) Result {
	res := Result{Provider: w.Provider(), FetchedAt: time.Now(), Query: w.Query.WebSearchQuery}
	if !w.Config.Enabled || w.Config.APIKey == "" || w.Config.CX == "" {
		res.Metrics.Disabled = true
		return res
	}

	client := w.Config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	base := w.Config.BaseURL
	if base == "" {
		base = "https://www.googleapis.com/customsearch/v1"
	}

	var items []model.Candidate
	for start := 1; start <= maxResults; start += pageSize {
		if opt.Signal != nil && opt.Signal.Err() != nil {
			break
		}
		page, disabled, err := w.fetchPage(ctx, client, base, start)
		if disabled {
			res.Metrics.Disabled = true
			return res
		}
		if err != nil {
			res.Metrics.Failed = true
			res.Metrics.Error = err.Error()
			return res
		}
		if len(page) == 0 {
			break
		}
		items = append(items, page...)
	}

	var kept []model.Candidate
	preFiltered := 0
	cutoff := time.Now().Add(-time.Duration(opt.RecencyHours * float64(time.Hour)))
	for _, c := range items {
		if rejectNonNews(c.URL, w.Config.NewsOnly) {
			preFiltered++
			continue
		}
		if c.PublishedAt != "" {
			if t, err := time.Parse(time.RFC3339, c.PublishedAt); err == nil && t.Before(cutoff) {
				preFiltered++
				continue
			}
		}
		d := prefilter.Apply(c.URL, c.Title, c.Snippet, w.Query.QueryTokens)
		if !d.Pass {
			preFiltered++
			continue
		}
		kept = append(kept, c)
	}

	res.Items = kept
	res.Metrics.PreFiltered = preFiltered
	return res
}

func (w *WebSearch) fetchPage(ctx context.Context, client *http.Client, base string, start int) ([]model.Candidate, bool, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, false, err
	}
	q := u.Query()
	q.Set("key", w.Config.APIKey)
	q.Set("cx", w.Config.CX)
	q.Set("q", w.Query.WebSearchQuery)
	q.Set("sort", "date")
	q.Set("num", "10")
	q.Set("start", fmt.Sprintf("%d", start))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, false, fmt.Errorf("web search status: %d", resp.StatusCode)
	}

	var parsed customSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, false, err
	}

	out := make([]model.Candidate, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		if it.Link == "" || it.Title == "" {
			continue
		}
		url := strings.TrimSpace(it.Link)
		c := model.Candidate{
			ID:         CandidateID(url),
			Provider:   model.ProviderWebSearch,
			Title:      strings.TrimSpace(it.Title),
			URL:        url,
			Snippet:    strings.TrimSpace(it.Snippet),
			SourceName: it.DisplayLink,
		}
		if pm, ok := it.PageMap["metatags"]; ok && len(pm) > 0 {
			if pub, ok := pm[0]["article:published_time"]; ok {
				c.PublishedAt = pub
			}
		}
		out = append(out, c)
	}
	return out, false, nil
}

func rejectNonNews(rawURL string, newsOnly bool) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return true
	}
	host := strings.ToLower(u.Host)
	if _, blocked := blockedHosts[host]; blocked {
		return true
	}
	if nonNewsTLDRe.MatchString(host) {
		return true
	}
	if nonNewsPathRe.MatchString(u.Path) {
		return true
	}
	if newsOnly {
		if !urlDateSegmentRe.MatchString(u.Path) && !newsSectionRe.MatchString(u.Path) {
			return true
		}
	}
	return false
}

type customSearchResponse struct {
	Items []struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		Snippet     string `json:"snippet"`
		DisplayLink string `json:"displayLink"`
		PageMap     map[string][]map[string]string `json:"pagemap"`
	} `json:"items"`
}
