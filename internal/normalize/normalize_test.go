package normalize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenize_DropsStopwordsAndExpandsHyphens(t *testing.T) {
	toks := Tokenize("The Self-Driving Cars of Tomorrow")
	require.Contains(t, toks, "self-driving")
	require.Contains(t, toks, "self")
	require.Contains(t, toks, "driving")
	require.Contains(t, toks, "cars")
	require.Contains(t, toks, "tomorrow")
	require.NotContains(t, toks, "the")
	require.NotContains(t, toks, "of")
}

func TestTokenize_FallsBackWhenAllStopwords(t *testing.T) {
	toks := Tokenize("the of and")
	require.NotEmpty(t, toks, "must fall back to unfiltered tokens")
}

func TestTokenize_CapsAt24(t *testing.T) {
	s := ""
	for i := 0; i < 40; i++ {
		s += "word" + string(rune('a'+i%26)) + " "
	}
	toks := Tokenize(s)
	require.LessOrEqual(t, len(toks), 24)
}

func TestNormalize_WebSearchQuery_QuotesProperNouns(t *testing.T) {
	n := Normalize("NASA Artemis Moon Landing Plans", nil)
	require.Contains(t, n.WebSearchQuery, `"NASA Artemis Moon Landing Plans"`)
}

func TestNormalize_WebSearchQuery_CapsAtSixSegments(t *testing.T) {
	n := Normalize("alpha beta gamma delta epsilon zeta eta theta", nil)
	segCount := 1
	for _, r := range n.WebSearchQuery {
		if r == ' ' {
			// each " OR " contributes; rough check via substring count below instead
			_ = r
		}
	}
	_ = segCount
	count := 0
	s := n.WebSearchQuery
	for {
		idx := indexOR(s)
		if idx < 0 {
			break
		}
		count++
		s = s[idx+4:]
	}
	require.LessOrEqual(t, count+1, 6)
}

func indexOR(s string) int {
	for i := 0; i+4 <= len(s); i++ {
		if s[i:i+4] == " OR " {
			return i
		}
	}
	return -1
}

func TestNormalize_NewsAPIQuery_QuotesEveryMultiWordSegment(t *testing.T) {
	n := Normalize("Climate Change Policy", nil)
	require.Contains(t, n.NewsAPIQuery, `"`)
}

func TestNormalize_NewsAPIFallback_IsBagOfTokensAndTrunc(t *testing.T) {
	n := Normalize("quarterly earnings report surprise rally", nil)
	require.NotEmpty(t, n.NewsAPIQueryFallback)
	require.NotContains(t, n.NewsAPIQueryFallback, "OR")
}

func TestNormalize_EventRegistryKeywords_BudgetAndCap(t *testing.T) {
	n := Normalize("The United Nations Security Council meets to discuss the ongoing crisis in the region amid rising tensions", nil)
	require.LessOrEqual(t, len(n.EventRegistryKeywords), 15)
	total := 0
	for _, k := range n.EventRegistryKeywords {
		total += len(Tokenize(k))
	}
	require.LessOrEqual(t, total, 15)
}

func TestNormalize_EventRegistryKeywords_DiscardsDegenerate(t *testing.T) {
	n := Normalize("foo or and ... bar", nil)
	for _, k := range n.EventRegistryKeywords {
		require.NotEqual(t, "or", k)
		require.NotEqual(t, "and", k)
	}
}

func TestNormalize_QueryMapOverridesTopic(t *testing.T) {
	n := Normalize("ignored topic", &QueryMap{Main: "override", WebSearch: "custom ws", NewsAPI: "custom news", EventRegistry: []string{"kw1"}})
	require.Equal(t, "override", n.MainQueryString)
	require.Equal(t, "custom ws", n.WebSearchQuery)
	require.Equal(t, "custom news", n.NewsAPIQuery)
	require.Equal(t, []string{"kw1"}, n.EventRegistryKeywords)
}
