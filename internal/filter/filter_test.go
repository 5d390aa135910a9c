package filter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/retrievalcore/internal/model"
)

func goodArticle() model.NormalizedArticle {
	now := time.Now()
	return model.NormalizedArticle{
		PublishedAt: &now,
		Body:        strings.Repeat("word ", 300),
		Quality:     model.Quality{WordCount: 300, UniqueWordCount: 120, RelevanceScore: 0.5},
		SourceHost:  "reputable.example",
	}
}

func TestEvaluate_AcceptsGoodArticle(t *testing.T) {
	r := Evaluate(goodArticle(), Options{RecencyHours: 48})
	require.True(t, r.Accept)
	require.Empty(t, r.Reasons)
}

func TestEvaluate_TooOld(t *testing.T) {
	old := time.Now().Add(-100 * time.Hour)
	a := goodArticle()
	a.PublishedAt = &old
	r := Evaluate(a, Options{RecencyHours: 48})
	require.False(t, r.Accept)
	require.Contains(t, r.Reasons, string(ReasonTooOld))
}

func TestEvaluate_TooOldInferredGetsSlack(t *testing.T) {
	// 55 hours old with a 48h window: fails strict cutoff but passes with
	// 1.25x slack (60h) when the date was text-inferred.
	old := time.Now().Add(-55 * time.Hour)
	a := goodArticle()
	a.PublishedAt = &old
	a.PublishedAtInferred = true
	r := Evaluate(a, Options{RecencyHours: 48})
	require.True(t, r.Accept)
}

func TestEvaluate_TooOldInferredStillRejectedBeyondSlack(t *testing.T) {
	old := time.Now().Add(-200 * time.Hour)
	a := goodArticle()
	a.PublishedAt = &old
	a.PublishedAtInferred = true
	r := Evaluate(a, Options{RecencyHours: 48})
	require.False(t, r.Accept)
	require.Contains(t, r.Reasons, string(ReasonTooOldInferred))
}

func TestEvaluate_TooShort(t *testing.T) {
	a := goodArticle()
	a.Quality.WordCount = 10
	r := Evaluate(a, Options{RecencyHours: 48, MinWordCount: 150})
	require.False(t, r.Accept)
	require.Contains(t, r.Reasons, string(ReasonTooShort))
}

func TestEvaluate_LowRelevance(t *testing.T) {
	a := goodArticle()
	a.Quality.RelevanceScore = 0.001
	r := Evaluate(a, Options{RecencyHours: 48, MinRelevance: 0.05})
	require.False(t, r.Accept)
	require.Contains(t, r.Reasons, string(ReasonLowRelevance))
}

func TestEvaluate_BannedSource(t *testing.T) {
	a := goodArticle()
	a.SourceHost = "contentmill.example"
	r := Evaluate(a, Options{RecencyHours: 48})
	require.False(t, r.Accept)
	require.Contains(t, r.Reasons, string(ReasonBannedSource))
}

func TestEvaluate_PromoContent(t *testing.T) {
	a := goodArticle()
	a.Body = strings.Repeat("buy now ", 3) + a.Body
	r := Evaluate(a, Options{RecencyHours: 48, MaxPromoPhraseMatches: 2})
	require.False(t, r.Accept)
	require.Contains(t, r.Reasons, string(ReasonPromoContent))
}

func TestEvaluate_MissingPublishedAtIsWarningNotReason(t *testing.T) {
	a := goodArticle()
	a.PublishedAt = nil
	r := Evaluate(a, Options{RecencyHours: 48})
	require.True(t, r.Accept)
	require.Contains(t, r.Warnings, string(WarningMissingPublishedAt))
}

func TestEvaluate_ReasonsAlwaysNonEmptyWhenRejected(t *testing.T) {
	a := goodArticle()
	a.Quality.WordCount = 1
	r := Evaluate(a, Options{RecencyHours: 48})
	require.False(t, r.Accept)
	require.NotEmpty(t, r.Reasons)
}
