// Package prefilter implements the cheap URL/title/snippet heuristics (L2)
// applied inside every connector before a candidate is queued for
// extraction. It is intentionally side-effect free so connectors can call
// it without importing any HTTP machinery.
package prefilter

import (
	"net/url"
	"strings"
)

// Reason is one of the closed set of pre-filter rejection reasons.
type Reason string

const (
	ReasonEmptyURL         Reason = "empty_url"
	ReasonBannedPath       Reason = "banned_path"
	ReasonBannedFragment   Reason = "banned_fragment"
	ReasonTitleTooShort    Reason = "title_too_short"
	ReasonSnippetTooShort  Reason = "snippet_too_short"
	ReasonLowRelevance     Reason = "low_relevance"
)

// Decision is the result of applying the pre-filter to one candidate.
type Decision struct {
	Pass   bool
	Reason Reason
}

const minTitleChars = 15
const minSnippetChars = 30
const minRelevanceFraction = 0.10

// bannedPathSegments is a closed list of non-article URL segments.
var bannedPathSegments = []string{
	"/about", "/contact", "/pricing", "/careers", "/docs", "/login",
	"/signup", "/sign-up", "/cart", "/checkout", "/search", "/account",
	"/privacy", "/terms", "/tos", "/jobs", "/support", "/help",
	"/newsletter", "/subscribe", "/advertise", "/sitemap",
}

// bannedFragments is a closed list of substrings anywhere in the URL that
// mark it as non-article.
var bannedFragments = []string{
	"utm_", "#comment", "/feed", "/rss", "/tag/", "/category/", "?share=",
}

// Apply evaluates the pre-filter contract: empty_url, banned_path,
// banned_fragment, title_too_short, snippet_too_short, low_relevance.
func Apply(rawURL, title, snippet string, queryTokens []string) Decision {
	trimmedURL := strings.TrimSpace(rawURL)
	if trimmedURL == "" {
		return Decision{Pass: false, Reason: ReasonEmptyURL}
	}

	lowerURL := strings.ToLower(trimmedURL)
	for _, frag := range bannedFragments {
		if strings.Contains(lowerURL, frag) {
			return Decision{Pass: false, Reason: ReasonBannedFragment}
		}
	}

	if u, err := url.Parse(trimmedURL); err == nil {
		path := strings.ToLower(u.Path)
		for _, seg := range bannedPathSegments {
			if strings.HasPrefix(path, seg) || strings.Contains(path, seg+"/") || path == strings.TrimPrefix(seg, "/") {
				return Decision{Pass: false, Reason: ReasonBannedPath}
			}
		}
	}

	if len(strings.TrimSpace(title)) < minTitleChars {
		return Decision{Pass: false, Reason: ReasonTitleTooShort}
	}
	if len(strings.TrimSpace(snippet)) < minSnippetChars {
		return Decision{Pass: false, Reason: ReasonSnippetTooShort}
	}

	if quickRelevance(title, snippet, queryTokens) {
		return Decision{Pass: true}
	}
	return Decision{Pass: false, Reason: ReasonLowRelevance}
}

// quickRelevance reports whether the candidate passes the relevance check:
// the fraction of query tokens present as substrings of title+snippet must
// be >= 0.10. When fewer than 2 tokens have length > 2, the signal is too
// noisy and the check is skipped (always passes).
func quickRelevance(title, snippet string, queryTokens []string) bool {
	significant := 0
	for _, tok := range queryTokens {
		if len(tok) > 2 {
			significant++
		}
	}
	if significant < 2 {
		return true
	}

	haystack := strings.ToLower(title + " " + snippet)
	if len(queryTokens) == 0 {
		return true
	}
	hits := 0
	for _, tok := range queryTokens {
		if tok == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(tok)) {
			hits++
		}
	}
	fraction := float64(hits) / float64(len(queryTokens))
	return fraction >= minRelevanceFraction
}

// CanonicalizeForDedupe lower-cases the host and strips the fragment, for
// cheap cross-candidate comparison before the full extractor-grade
// canonicalization runs. Adapted from the diversity-selection canonicalizer
// used upstream in the pack to normalize URLs for per-host comparisons.
func CanonicalizeForDedupe(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", false
	}
	u2 := *u
	u2.Fragment = ""
	u2.Host = strings.ToLower(u2.Host)
	if (u2.Scheme == "http" && strings.HasSuffix(u2.Host, ":80")) ||
		(u2.Scheme == "https" && strings.HasSuffix(u2.Host, ":443")) {
		u2.Host = u2.Hostname()
	}
	return u2.String(), true
}
