package collaborators

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperifyio/retrievalcore/internal/model"
)

// FallbackOutliner assembles a deterministic section outline from cluster
// representatives, grounded on the teacher's FallbackPlanner: an overview
// heading, one heading per cluster (every cluster, no cap), plus the
// counter-evidence/limitations sections the
// teacher always appends regardless of source material.
type FallbackOutliner struct{}

func (FallbackOutliner) Outline(_ context.Context, topic string, clusters []model.StoryCluster) ([]string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = "research topic"
	}

	out := make([]string, 0, len(clusters)+3)
	out = append(out, fmt.Sprintf("Overview of %s", topic))
	for _, c := range clusters {
		title := strings.TrimSpace(c.Representative.Title)
		if title == "" {
			title = c.ClusterID
		}
		out = append(out, title)
	}
	out = append(out, "Alternatives & conflicting evidence", "Risks and limitations", "References")
	return out, nil
}

// FallbackResearcher concatenates excerpts from every cluster member that
// plausibly matches the outline point (a case-insensitive substring check
// against title and excerpt), with no LLM call.
type FallbackResearcher struct{}

func (FallbackResearcher) Research(_ context.Context, point string, clusters []model.StoryCluster) (string, error) {
	needle := strings.ToLower(strings.TrimSpace(point))
	var sb strings.Builder
	for _, c := range clusters {
		for _, m := range c.Members {
			if needle != "" && !strings.Contains(strings.ToLower(m.Title), needle) && !strings.Contains(strings.ToLower(m.Excerpt), needle) {
				continue
			}
			if sb.Len() > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(m.Excerpt)
		}
	}
	if sb.Len() == 0 {
		return fmt.Sprintf("No directly matching evidence found for %q.", point), nil
	}
	return sb.String(), nil
}

// FallbackSynthesizer stitches the outline and researched notes into a
// single Markdown document, heading-per-section, without any narrative
// rewriting — a deterministic assembler in the shape of the teacher's
// FallbackPlanner, not a prose generator.
type FallbackSynthesizer struct{}

func (FallbackSynthesizer) Synthesize(_ context.Context, topic string, outline []string, notes []string) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", strings.TrimSpace(topic))
	for i, heading := range outline {
		fmt.Fprintf(&sb, "## %s\n\n", heading)
		if i < len(notes) && strings.TrimSpace(notes[i]) != "" {
			sb.WriteString(notes[i])
			sb.WriteString("\n\n")
		}
	}
	return sb.String(), nil
}

// FallbackImagePrompter derives a short, deterministic image prompt from the
// topic alone; it never inspects the synthesis body.
type FallbackImagePrompter struct{}

func (FallbackImagePrompter) ImagePrompt(_ context.Context, topic string, _ string) (string, error) {
	return fmt.Sprintf("Editorial illustration representing: %s", strings.TrimSpace(topic)), nil
}
