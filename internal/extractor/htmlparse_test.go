package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleArticleHTML = `<html><head>
<title>Fallback Title</title>
<meta property="og:title" content="OG Title Here">
<link rel="canonical" href="https://publisher.example/canonical-story">
<meta name="article:published_time" content="2026-07-20T00:00:00Z">
</head><body>
<nav>Menu stuff to skip</nav>
<article>
<h1>Heading</h1>
<p>First paragraph of the real article body with enough content.</p>
<p>Second paragraph continues the story in more detail.</p>
</article>
<footer>Footer stuff to skip</footer>
</body></html>`

func TestParseHTML_ExtractsTitleCanonicalAndBody(t *testing.T) {
	doc := parseHTML([]byte(sampleArticleHTML))
	require.Equal(t, "Fallback Title", doc.Title)
	require.Equal(t, "OG Title Here", doc.OGTitle)
	require.Equal(t, "https://publisher.example/canonical-story", doc.CanonicalURL)
	require.Contains(t, doc.Body, "First paragraph")
	require.NotContains(t, doc.Body, "Menu stuff")
	require.NotContains(t, doc.Body, "Footer stuff")
}

func TestParseHTML_CollectsPublishedMetaDate(t *testing.T) {
	doc := parseHTML([]byte(sampleArticleHTML))
	require.Equal(t, "2026-07-20T00:00:00Z", doc.MetaDates["article:published_time"])
}

func TestNormalizeWhitespace_CollapsesBlankLinesAndSpaces(t *testing.T) {
	got := normalizeWhitespace("a   b\n\n\n\nc\t\td")
	require.Equal(t, "a b\n\nc d", got)
}

func TestParseHTML_EmptyOnMalformedInput(t *testing.T) {
	doc := parseHTML([]byte(""))
	require.True(t, strings.TrimSpace(doc.Body) == "" || doc.Body == "")
}
