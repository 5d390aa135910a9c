package collaborators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/retrievalcore/internal/model"
)

func sampleClusters() []model.StoryCluster {
	return []model.StoryCluster{
		{
			ClusterID:      "c1",
			Representative: model.NormalizedArticle{Title: "Widget Launch Event", Excerpt: "The widget launched today with new features."},
			Members: []model.NormalizedArticle{
				{Title: "Widget Launch Event", Excerpt: "The widget launched today with new features."},
				{Title: "Widget Reactions", Excerpt: "Analysts reacted positively to the widget launch."},
			},
		},
	}
}

func TestFallbackOutliner_IncludesClusterAndBoilerplateSections(t *testing.T) {
	out, err := (FallbackOutliner{}).Outline(context.Background(), "Widget Launch", sampleClusters())
	require.NoError(t, err)
	require.Contains(t, out, "Widget Launch Event")
	require.Contains(t, out, "Alternatives & conflicting evidence")
	require.Contains(t, out, "Risks and limitations")
	require.Contains(t, out, "References")
}

func TestFallbackOutliner_DefaultsTopicWhenBlank(t *testing.T) {
	out, err := (FallbackOutliner{}).Outline(context.Background(), "   ", nil)
	require.NoError(t, err)
	require.Equal(t, "Overview of research topic", out[0])
}

func TestFallbackResearcher_MatchesOnTitleOrExcerpt(t *testing.T) {
	got, err := (FallbackResearcher{}).Research(context.Background(), "reactions", sampleClusters())
	require.NoError(t, err)
	require.Contains(t, got, "Analysts reacted positively")
	require.NotContains(t, got, "launched today")
}

func TestFallbackResearcher_NoMatchReturnsPlaceholder(t *testing.T) {
	got, err := (FallbackResearcher{}).Research(context.Background(), "unrelated nonsense", sampleClusters())
	require.NoError(t, err)
	require.Contains(t, got, "No directly matching evidence")
}

func TestFallbackSynthesizer_BuildsHeadingPerSection(t *testing.T) {
	out, err := (FallbackSynthesizer{}).Synthesize(context.Background(), "Widget Launch", []string{"Overview", "Risks"}, []string{"All is well.", "Some risk noted."})
	require.NoError(t, err)
	require.Contains(t, out, "# Widget Launch")
	require.Contains(t, out, "## Overview")
	require.Contains(t, out, "All is well.")
	require.Contains(t, out, "## Risks")
	require.Contains(t, out, "Some risk noted.")
}

func TestFallbackImagePrompter_IsDeterministic(t *testing.T) {
	a, err := (FallbackImagePrompter{}).ImagePrompt(context.Background(), "Widget Launch", "irrelevant")
	require.NoError(t, err)
	b, err := (FallbackImagePrompter{}).ImagePrompt(context.Background(), "Widget Launch", "different synthesis text")
	require.NoError(t, err)
	require.Equal(t, a, b)
}
