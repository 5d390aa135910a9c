// Package collaborators defines the minimal interfaces the retrieval core
// hands its clustered results to, plus a deterministic fallback and an
// LLM-backed implementation of each. Neither the retrieval core nor
// cmd/retrievalcore calls these.
package collaborators

import (
	"context"

	"github.com/hyperifyio/retrievalcore/internal/model"
)

// Outliner turns a topic and its story clusters into a section outline.
type Outliner interface {
	Outline(ctx context.Context, topic string, clusters []model.StoryCluster) ([]string, error)
}

// TargetedResearcher expands a single outline point using the evidence
// already present in the clusters (no further network retrieval).
type TargetedResearcher interface {
	Research(ctx context.Context, point string, clusters []model.StoryCluster) (string, error)
}

// Synthesizer composes the final narrative from an outline and its
// researched notes.
type Synthesizer interface {
	Synthesize(ctx context.Context, topic string, outline []string, notes []string) (string, error)
}

// ImagePrompter derives an image-generation prompt from the finished
// synthesis.
type ImagePrompter interface {
	ImagePrompt(ctx context.Context, topic string, synthesis string) (string, error)
}
