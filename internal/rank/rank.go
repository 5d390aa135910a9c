// Package rank implements the scoring step of L5: a weighted blend of
// recency, relevance, and quality, adjusted by a closed domain-weight
// table, producing the Score carried by NormalizedArticle into clustering.
package rank

import (
	"math"
	"strings"
	"time"

	"github.com/hyperifyio/retrievalcore/internal/model"
)

const (
	weightRecency   = 0.40
	weightRelevance = 0.35
	weightQuality   = 0.25
	qualityWordCap  = 1200.0
)

// domainWeights is the closed table of host adjustments. Hosts are matched
// by suffix so subdomains inherit their registrable domain's weight.
var domainWeights = map[string]float64{
	"prwire.example":     -0.20,
	"newsreleases.example": -0.20,
	"contentmill.example": -0.40,
}

// Options lets callers override recencyHours and, for tests, the clock.
type Options struct {
	RecencyHours float64
	Now          func() time.Time
}

// Score computes the final, rounded score for a single article and returns
// it without mutating the article.
func Score(a model.NormalizedArticle, opt Options) float64 {
	now := time.Now
	if opt.Now != nil {
		now = opt.Now
	}

	recency := 0.0
	if a.PublishedAt != nil && opt.RecencyHours > 0 {
		ageHours := now().Sub(*a.PublishedAt).Hours()
		if ageHours < 0 {
			ageHours = 0
		}
		recency = 1 - math.Min(ageHours/opt.RecencyHours, 1)
		if recency < 0 {
			recency = 0
		}
	}

	quality := math.Min(float64(a.Quality.WordCount)/qualityWordCap, 1)
	relevance := a.Quality.RelevanceScore

	base := weightRecency*recency + weightRelevance*relevance + weightQuality*quality
	base += domainWeight(a.SourceHost)

	final := math.Max(0, base)
	return math.Round(final*10000) / 10000
}

// ScoreAll returns a copy of articles with Score populated.
func ScoreAll(articles []model.NormalizedArticle, opt Options) []model.NormalizedArticle {
	out := make([]model.NormalizedArticle, len(articles))
	for i, a := range articles {
		a.Score = Score(a, opt)
		out[i] = a
	}
	return out
}

func domainWeight(host string) float64 {
	h := strings.ToLower(strings.TrimSpace(host))
	for suffix, w := range domainWeights {
		if h == suffix || strings.HasSuffix(h, "."+suffix) {
			return w
		}
	}
	return 0
}
