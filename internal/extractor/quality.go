package extractor

import (
	"math"
	"strings"

	"github.com/hyperifyio/retrievalcore/internal/model"
)

// scoreQuality lower-cases the body, splits it into [a-z0-9-] words and
// adds the parts of each hyphenated word after the joined form, like the
// query normalizer (§4.1) but without its dedupe, 24-token cap or stopword
// removal, so every occurrence counts. From those tokens it derives
// wordCount, uniqueWordCount, and a relevance score against queryTokens,
// rounded to 3 decimals, per §4.3.8.
func scoreQuality(body string, queryTokens []string) model.Quality {
	var tokens []string
	notWordRune := func(r rune) bool { return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-') }
	for _, w := range strings.FieldsFunc(strings.ToLower(body), notWordRune) {
		if w = strings.Trim(w, "-"); w == "" {
			continue
		}
		tokens = append(tokens, w)
		if strings.Contains(w, "-") {
			tokens = append(tokens, strings.FieldsFunc(w, func(r rune) bool { return r == '-' })...)
		}
	}
	unique := map[string]struct{}{}
	for _, t := range tokens {
		unique[t] = struct{}{}
	}

	present := map[string]struct{}{}
	for _, t := range tokens {
		present[t] = struct{}{}
	}
	hits := 0
	for _, qt := range queryTokens {
		if _, ok := present[qt]; ok {
			hits++
		}
	}
	relevance := 0.0
	if len(queryTokens) > 0 {
		relevance = float64(hits) / float64(len(queryTokens))
	}
	relevance = math.Round(relevance*1000) / 1000

	return model.Quality{
		WordCount:       len(tokens),
		UniqueWordCount: len(unique),
		RelevanceScore:  relevance,
	}
}
