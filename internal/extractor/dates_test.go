package extractor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolveDates_PrefersPublishedMetaOverNeutral(t *testing.T) {
	now := time.Now()
	doc := parsedDocument{
		MetaDates: map[string]string{
			"article:published_time": "2026-07-01T00:00:00Z",
			"updated":                 "2026-07-20T00:00:00Z",
		},
	}
	pub, mod, inferred := resolveDates(doc, "https://example.com/story", now)
	require.False(t, inferred)
	require.NotNil(t, pub)
	require.Equal(t, 2026, pub.Year())
	require.Equal(t, time.July, pub.Month())
	require.Equal(t, 1, pub.Day())
	require.NotNil(t, mod)
	require.Equal(t, 20, mod.Day())
}

func TestResolveDates_FallsBackToURLDate(t *testing.T) {
	now := time.Now()
	doc := parsedDocument{MetaDates: map[string]string{}}
	pub, _, inferred := resolveDates(doc, "https://example.com/2026/03/15/story", now)
	require.False(t, inferred)
	require.NotNil(t, pub)
	require.Equal(t, 15, pub.Day())
}

func TestResolveDates_RejectsDatesBefore2000(t *testing.T) {
	now := time.Now()
	doc := parsedDocument{MetaDates: map[string]string{"article:published_time": "1998-01-01T00:00:00Z"}}
	pub, _, _ := resolveDates(doc, "https://example.com/story", now)
	require.Nil(t, pub)
}

func TestResolveDates_InfersFromTextWhenNoStructuredDate(t *testing.T) {
	now := time.Now()
	recent := now.AddDate(0, 0, -2).Format("2006-01-02")
	body := "Breaking coverage. Published " + recent + " in the morning edition with full details."
	doc := parsedDocument{MetaDates: map[string]string{}, Body: body}
	pub, _, inferred := resolveDates(doc, "https://example.com/story", now)
	require.True(t, inferred)
	require.NotNil(t, pub)
}

func TestResolveDates_NoDateFoundAnywhere(t *testing.T) {
	now := time.Now()
	doc := parsedDocument{MetaDates: map[string]string{}, Body: "no temporal markers in this text at all"}
	pub, mod, inferred := resolveDates(doc, "https://example.com/story", now)
	require.Nil(t, pub)
	require.Nil(t, mod)
	require.False(t, inferred)
}
