// Package model holds the value objects shared across the retrieval core:
// Candidate, NormalizedArticle, ProviderMetrics, RetrievalMetrics, and
// StoryCluster. These are value objects owned by the run that created them
// and released when the run terminates; no component retains them beyond
// that lifetime.
package model

import "time"

// Provider identifies one of the four upstream connectors.
type Provider string

const (
	ProviderWebSearch     Provider = "web-search"
	ProviderWebNewsRSS    Provider = "web-news-rss"
	ProviderNewsAPI       Provider = "news-api"
	ProviderEventRegistry Provider = "event-registry"
)

// Candidate is a single search hit before extraction.
type Candidate struct {
	ID           string
	Provider     Provider
	Title        string
	URL          string
	Snippet      string
	SourceName   string
	PublishedAt  string // RFC3339, optional
	ProviderData map[string]any
}

// Quality captures the extractor's computed signal set for an article.
type Quality struct {
	WordCount       int
	UniqueWordCount int
	RelevanceScore  float64
}

// Provenance records which connector produced the source candidate.
type Provenance struct {
	Provider   Provider
	ProviderID string
}

// NormalizedArticle is produced by the extractor and consumed by filter,
// dedupe, rank and cluster.
type NormalizedArticle struct {
	ID               string
	Title            string
	CanonicalURL     string
	SourceHost       string
	SourceName       string
	PublishedAt      *time.Time
	ModifiedAt       *time.Time
	Excerpt          string
	Body             string
	HasExtractedBody bool
	// PublishedAtInferred marks a PublishedAt recovered by text-scanning
	// heuristics (§4.3.7) rather than structured metadata; the filter
	// applies extra recency slack to these.
	PublishedAtInferred bool
	Quality          Quality
	Provenance       Provenance

	// Score and Reasons are populated downstream (rank/filter) but travel
	// with the article so later stages don't need side tables.
	Score   float64
	Reasons []string
}

// Clone returns a deep copy safe for independent mutation, used by the
// bounded extraction cache's clone-in/clone-out contract (§4.3.9).
func (a NormalizedArticle) Clone() NormalizedArticle {
	out := a
	if a.PublishedAt != nil {
		t := *a.PublishedAt
		out.PublishedAt = &t
	}
	if a.ModifiedAt != nil {
		t := *a.ModifiedAt
		out.ModifiedAt = &t
	}
	if a.Reasons != nil {
		out.Reasons = append([]string(nil), a.Reasons...)
	}
	return out
}

// ExtractionError records a per-candidate extraction failure for metrics.
type ExtractionError struct {
	URL   string
	Error string
}

// ProviderMetrics is mutated only by the orchestrator, once per provider per
// run.
type ProviderMetrics struct {
	Provider            Provider
	Returned            int
	Deduped             int
	Unique              int
	Queued              int
	Skipped             int
	PreFiltered         int
	ExtractionAttempts  int
	Accepted            int
	MissingPublishedAt  int
	Disabled            bool
	Failed              bool
	Error               string
	Query               string
	ExtractionErrors    []ExtractionError
	RejectionReasons    map[string]int
}

// RetrievalMetrics is the per-run aggregate reported at the end of a run.
type RetrievalMetrics struct {
	CandidateCount        int
	PreFiltered           int
	AttemptedExtractions  int
	Accepted              int
	DuplicatesRemoved     int
	NewestArticleHours    *float64
	OldestArticleHours    *float64
	PerProvider           map[Provider]*ProviderMetrics
	ExtractionErrors      []ExtractionError
}

// Citation is a minimal reference kept on a cluster for the synthesis stage.
type Citation struct {
	Title string
	URL   string
}

// StoryCluster groups near-duplicate stories about one event, represented
// by its highest-scoring member.
type StoryCluster struct {
	ClusterID      string
	Representative NormalizedArticle
	Members        []NormalizedArticle
	Score          float64
	Reasons        []string
	Citations      []Citation
}
