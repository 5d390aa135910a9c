// Package filter implements the post-extraction accept/reject contract
// (L4): an article is accepted iff the closed set of rejection reasons it
// accumulates is empty.
package filter

import (
	"strings"
	"time"

	"github.com/hyperifyio/retrievalcore/internal/model"
)

// Reason is one of the closed set of filter rejection reasons.
type Reason string

const (
	ReasonTooOld                Reason = "too_old"
	ReasonTooOldInferred        Reason = "too_old_inferred"
	ReasonTooShort              Reason = "too_short"
	ReasonInsufficientUnique    Reason = "insufficient_unique_words"
	ReasonLowRelevance          Reason = "low_relevance"
	ReasonBannedSource          Reason = "banned_source"
	ReasonPromoContent          Reason = "promo_content"
)

// Warning is one of the closed set of non-rejecting warnings.
type Warning string

const WarningMissingPublishedAt Warning = "missing_published_at"

// inferredSlack is the multiplier applied to the recency cutoff when the
// article's date was recovered by text-inference rather than structured
// metadata.
const inferredSlack = 1.25

// bannedSources is a closed list of hosts that are hard-rejected regardless
// of content quality.
var bannedSources = map[string]struct{}{
	"contentmill.example": {},
	"spamaggregator.example": {},
}

// promoPhrases is a closed list of promotional phrases; more than
// MaxPromoPhraseMatches occurrences trigger promo_content.
var promoPhrases = []string{
	"buy now", "limited time offer", "click here", "subscribe today",
	"act now", "order now", "don't miss out", "exclusive deal",
	"use code", "free trial", "sign up now", "as seen on tv",
}

// Options configures one evaluation call.
type Options struct {
	RecencyHours         float64
	MinWordCount         int
	MinUniqueWords       int
	MinRelevance         float64
	MaxPromoPhraseMatches int
	Now                  func() time.Time
}

func (o *Options) fillDefaults() {
	if o.MinWordCount <= 0 {
		o.MinWordCount = 150
	}
	if o.MinUniqueWords <= 0 {
		o.MinUniqueWords = 60
	}
	if o.MinRelevance <= 0 {
		o.MinRelevance = 0.05
	}
	if o.MaxPromoPhraseMatches <= 0 {
		o.MaxPromoPhraseMatches = 2
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Result is the outcome of evaluating one article.
type Result struct {
	Accept   bool
	Reasons  []string
	Warnings []string
}

// Evaluate applies the filter contract to a single article.
func Evaluate(a model.NormalizedArticle, opt Options) Result {
	opt.fillDefaults()

	var reasons []string
	var warnings []string

	if a.PublishedAt == nil {
		warnings = append(warnings, string(WarningMissingPublishedAt))
	} else if opt.RecencyHours > 0 {
		ageHours := opt.Now().Sub(*a.PublishedAt).Hours()
		cutoff := opt.RecencyHours
		if a.PublishedAtInferred {
			cutoff *= inferredSlack
		}
		if ageHours > cutoff {
			if a.PublishedAtInferred {
				reasons = append(reasons, string(ReasonTooOldInferred))
			} else {
				reasons = append(reasons, string(ReasonTooOld))
			}
		}
	}

	if a.Quality.WordCount < opt.MinWordCount {
		reasons = append(reasons, string(ReasonTooShort))
	}
	if a.Quality.UniqueWordCount < opt.MinUniqueWords {
		reasons = append(reasons, string(ReasonInsufficientUnique))
	}
	if a.Quality.RelevanceScore < opt.MinRelevance {
		reasons = append(reasons, string(ReasonLowRelevance))
	}

	if _, banned := bannedSources[strings.ToLower(a.SourceHost)]; banned {
		reasons = append(reasons, string(ReasonBannedSource))
	}

	if countPromoMatches(a.Body) > opt.MaxPromoPhraseMatches {
		reasons = append(reasons, string(ReasonPromoContent))
	}

	return Result{
		Accept:   len(reasons) == 0,
		Reasons:  reasons,
		Warnings: warnings,
	}
}

func countPromoMatches(body string) int {
	lower := strings.ToLower(body)
	count := 0
	for _, phrase := range promoPhrases {
		count += strings.Count(lower, phrase)
	}
	return count
}
