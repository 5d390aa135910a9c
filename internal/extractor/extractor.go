// Package extractor implements the Extractor (L3): URL safety, aggregator
// wrapper-URL resolution, HTTP fetch with provider-body fallback, HTML
// parsing, URL canonicalization, date extraction/inference, quality
// scoring, and the process-wide extraction cache, per §4.3.
package extractor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/hyperifyio/retrievalcore/internal/extractcache"
	"github.com/hyperifyio/retrievalcore/internal/fetch"
	"github.com/hyperifyio/retrievalcore/internal/model"
	"github.com/hyperifyio/retrievalcore/internal/rcerr"
)

// Config configures one Extractor instance, shared across a run (or
// process, for the cache).
type Config struct {
	UserAgent       string
	FetchTimeoutMs  int
	MaxAttempts     int
	RedirectMaxHops int
	Wrapper         WrapperConfig
	Fetch           *fetch.Client // caller-provided, may already carry an HTTPCache
	MaxCacheEntries int
	CacheTTL        time.Duration
	// AllowPrivateHosts disables the loopback/private-host rejection in the
	// URL-safety gate; only meant for tests driving an httptest server.
	AllowPrivateHosts bool
}

// Extractor is safe for concurrent use by multiple extraction workers; its
// cache is process-wide by design (§4.3.9).
type Extractor struct {
	cfg   Config
	cache *extractcache.Cache
}

// New constructs an Extractor with its own process-wide cache.
func New(cfg Config) *Extractor {
	if cfg.Fetch == nil {
		cfg.Fetch = &fetch.Client{
			UserAgent:         cfg.UserAgent,
			MaxAttempts:       cfg.MaxAttempts,
			PerRequestTimeout: time.Duration(cfg.FetchTimeoutMs) * time.Millisecond,
			RedirectMaxHops:   cfg.RedirectMaxHops,
		}
	}
	return &Extractor{
		cfg:   cfg,
		cache: extractcache.New(cfg.MaxCacheEntries, cfg.CacheTTL),
	}
}

// Options carries the per-call inputs the candidate itself doesn't carry.
type Options struct {
	Signal      context.Context
	QueryTokens []string
}

// Meta mirrors the spec's meta:{fetchMs, parseMs, redirectedUrl?, cacheHit}.
type Meta struct {
	FetchMs       int64
	ParseMs       int64
	RedirectedURL string
	CacheHit      bool
}

// providerBodyKeys is the closed list of providerData keys checked for a
// sufficiently long fallback body, per §4.3.4.
var providerBodyKeys = []string{"content", "body", "description"}

// minExtractedBodyChars is the floor an HTML-extracted body must clear to
// be preferred over a provider-supplied fallback body, per the resolved
// body-precedence question in the design notes.
const minExtractedBodyChars = 200

// Extract resolves, fetches (or falls back to provider data), parses, and
// scores one candidate, per the full §4.3 contract.
func (e *Extractor) Extract(ctx context.Context, c model.Candidate, opt Options) (model.NormalizedArticle, Meta, error) {
	fetchCtx := ctx
	if opt.Signal != nil {
		fetchCtx = opt.Signal
	}

	requestURL := c.URL
	if c.Provider == model.ProviderWebNewsRSS && e.cfg.Wrapper.Host != "" {
		if u, ok := isSafeURL(requestURL, e.cfg.AllowPrivateHosts); ok && e.cfg.Wrapper.isWrapper(u) {
			requestURL = resolveWrapper(fetchCtx, e.cfg.Wrapper, requestURL)
		}
	}

	if _, ok := isSafeURL(requestURL, e.cfg.AllowPrivateHosts); !ok {
		return model.NormalizedArticle{}, Meta{}, rcerr.Wrap(rcerr.KindParse, errInvalidURL(requestURL))
	}

	cacheKey := strings.ToLower(requestURL)
	if cached, ok := e.cache.Get(cacheKey); ok {
		return cached, Meta{CacheHit: true}, nil
	}

	fetchStart := time.Now()
	body, contentType, responseURL, fetchErr := e.cfg.Fetch.Get(fetchCtx, requestURL)
	fetchMs := time.Since(fetchStart).Milliseconds()

	var doc parsedDocument
	usedProviderFallback := false

	if fetchErr != nil || !strings.HasPrefix(strings.ToLower(contentType), "text/html") {
		fallbackBody, ok := providerFallbackBody(c)
		if !ok {
			if fetchErr != nil {
				return model.NormalizedArticle{}, Meta{}, rcerr.Wrap(rcerr.KindNetwork, fetchErr)
			}
			return model.NormalizedArticle{}, Meta{}, rcerr.Wrap(rcerr.KindParse, errUnsupportedContentType(contentType))
		}
		doc = parsedDocument{Body: normalizeWhitespace(fallbackBody), MetaDates: map[string]string{}}
		usedProviderFallback = true
	}

	parseStart := time.Now()
	if !usedProviderFallback {
		doc = parseHTML(body)
		// Prefer the HTML-extracted body only when it clears the same floor
		// the provider fallback itself requires; a nominally successful
		// fetch that yields a near-empty body still falls back to
		// providerData rather than shipping a too-thin article.
		if len(strings.TrimSpace(doc.Body)) < minExtractedBodyChars {
			if fallbackBody, ok := providerFallbackBody(c); ok {
				doc.Body = normalizeWhitespace(fallbackBody)
				usedProviderFallback = true
			}
		}
	}
	parseMs := time.Since(parseStart).Milliseconds()

	title := doc.Title
	if title == "" {
		title = doc.OGTitle
	}
	if title == "" {
		title = c.Title
	}

	// §4.3.5 canonical-URL fallback chain: canonical link, then the
	// post-redirect response URL, then the request URL itself.
	canonicalURL := requestURL
	if responseURL != "" {
		canonicalURL = responseURL
	}
	if doc.CanonicalURL != "" {
		canonicalURL = doc.CanonicalURL
	}
	canonicalURL = canonicalize(canonicalURL)

	published, modified, inferred := resolveDates(doc, requestURL, time.Now())
	quality := scoreQuality(doc.Body, opt.QueryTokens)

	article := model.NormalizedArticle{
		ID:                  articleID(canonicalURL),
		Title:               strings.TrimSpace(title),
		CanonicalURL:        canonicalURL,
		SourceHost:          e.hostOf(canonicalURL),
		SourceName:          c.SourceName,
		PublishedAt:         published,
		ModifiedAt:          modified,
		PublishedAtInferred: inferred,
		Excerpt:             excerptOf(doc.Body),
		Body:                doc.Body,
		HasExtractedBody:    !usedProviderFallback,
		Quality:             quality,
		Provenance:          model.Provenance{Provider: c.Provider, ProviderID: c.ID},
	}

	meta := Meta{FetchMs: fetchMs, ParseMs: parseMs}
	if responseURL != "" && responseURL != requestURL {
		meta.RedirectedURL = responseURL
	}

	// Alias the cache entry under every URL that could land on this same
	// article: the request URL, the post-redirect response URL, and the
	// resolved canonical URL (§4.3.9).
	aliases := []string{canonicalURL}
	if responseURL != "" {
		aliases = append(aliases, strings.ToLower(responseURL))
	}
	e.cache.Put(cacheKey, article, aliases...)
	return article, meta, nil
}

// articleID derives a NormalizedArticle's id deterministically from its
// canonical URL (§3), the same sha256-of-string idiom internal/cache uses
// for its on-disk keys.
func articleID(canonicalURL string) string {
	h := sha256.Sum256([]byte(canonicalURL))
	return hex.EncodeToString(h[:])
}

func providerFallbackBody(c model.Candidate) (string, bool) {
	for _, key := range providerBodyKeys {
		if v, ok := c.ProviderData[key]; ok {
			if s, ok := v.(string); ok && len(strings.TrimSpace(s)) >= 200 {
				return s, true
			}
		}
	}
	if len(strings.TrimSpace(c.Snippet)) >= 200 {
		return c.Snippet, true
	}
	return "", false
}

func (e *Extractor) hostOf(rawURL string) string {
	u, ok := isSafeURL(rawURL, e.cfg.AllowPrivateHosts)
	if !ok {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func excerptOf(body string) string {
	const excerptChars = 280
	if len(body) <= excerptChars {
		return body
	}
	return body[:excerptChars]
}
