package connectors

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/hyperifyio/retrievalcore/internal/model"
	"github.com/hyperifyio/retrievalcore/internal/normalize"
	"github.com/hyperifyio/retrievalcore/internal/prefilter"
)

// WebNewsRSSConfig configures the RSS/Atom connector.
type WebNewsRSSConfig struct {
	Enabled    bool
	FeedURL    string
	SourceName string
	HTTPClient *http.Client
}

// WebNewsRSS is the Web News RSS connector (§4.2 "Web News RSS"). It does
// not attempt aggregator-wrapper decoding itself: wrapper URLs are passed
// through untouched and decoded once, inside the extractor, so the decode
// cost is never multiplied by connector concurrency.
type WebNewsRSS struct {
	Config WebNewsRSSConfig
	Query  normalize.Normalized
}

func (w *WebNewsRSS) Provider() model.Provider { return model.ProviderWebNewsRSS }

func (w *WebNewsRSS) Fetch(ctx context.Context, opt Options) Result {
	res := Result{Provider: w.Provider(), FetchedAt: time.Now(), Query: w.Query.MainQueryString}
	if !w.Config.Enabled || w.Config.FeedURL == "" {
		res.Metrics.Disabled = true
		return res
	}

	fetchCtx := ctx
	if opt.Signal != nil {
		fetchCtx = opt.Signal
	}

	parser := gofeed.NewParser()
	if w.Config.HTTPClient != nil {
		parser.Client = w.Config.HTTPClient
	}
	feed, err := parser.ParseURLWithContext(w.Config.FeedURL, fetchCtx)
	if err != nil {
		res.Metrics.Failed = true
		res.Metrics.Error = err.Error()
		return res
	}

	cutoff := time.Now().Add(-time.Duration(opt.RecencyHours * float64(time.Hour)))
	sourceName := w.Config.SourceName
	if sourceName == "" {
		sourceName = feed.Title
	}

	var kept []model.Candidate
	preFiltered := 0
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		snippet := strings.TrimSpace(item.Description)

		publishedAt := ""
		if item.PublishedParsed != nil {
			if item.PublishedParsed.Before(cutoff) {
				preFiltered++
				continue
			}
			publishedAt = item.PublishedParsed.UTC().Format(time.RFC3339)
		}

		d := prefilter.Apply(link, title, snippet, w.Query.QueryTokens)
		if !d.Pass {
			preFiltered++
			continue
		}

		kept = append(kept, model.Candidate{
			ID:          CandidateID(link),
			Provider:    model.ProviderWebNewsRSS,
			Title:       title,
			URL:         link,
			Snippet:     snippet,
			SourceName:  sourceName,
			PublishedAt: publishedAt,
			ProviderData: map[string]any{
				"description": item.Description,
			},
		})
	}

	res.Items = kept
	res.Metrics.PreFiltered = preFiltered
	return res
}
