package collaborators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/retrievalcore/internal/budget"
	"github.com/hyperifyio/retrievalcore/internal/cache"
	"github.com/hyperifyio/retrievalcore/internal/llm"
	"github.com/hyperifyio/retrievalcore/internal/model"
)

// LLMOutliner calls an OpenAI-compatible chat endpoint for the outline,
// grounded on the teacher's LLMPlanner: strict-JSON system prompt, prompt
// caching by model+prompt hash. The prompt lists cluster titles only; no
// excerpts are sent, so there is no excerpt trimming here.
type LLMOutliner struct {
	Client llm.Client
	Model  string
	Cache  *cache.LLMCache
}

func (o *LLMOutliner) Outline(ctx context.Context, topic string, clusters []model.StoryCluster) ([]string, error) {
	if o.Client == nil || strings.TrimSpace(o.Model) == "" {
		return nil, errors.New("outliner not configured")
	}

	system := "You are a planning assistant. Respond with strict JSON only, no narration. " +
		"The JSON schema is {\"outline\": string[3..8]}. Outline contains section headings only."
	user := buildClusterPrompt(topic, clusters)

	if cached, ok := getCached[outlinePayload](ctx, o.Cache, o.Model, system+"\n\n"+user); ok {
		return cached.Outline, nil
	}

	resp, err := o.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.1,
		N:           1,
	})
	if err != nil {
		return nil, fmt.Errorf("outline call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices")
	}

	var out outlinePayload
	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("parse outline json: %w", err)
	}
	if len(out.Outline) < 1 {
		return nil, errors.New("empty outline")
	}

	saveCached(ctx, o.Cache, o.Model, system+"\n\n"+user, out)
	return out.Outline, nil
}

type outlinePayload struct {
	Outline []string `json:"outline"`
}

// LLMResearcher expands one outline point against cluster evidence via a
// chat call, budget-trimming excerpts the same way the teacher's
// Synthesizer trims source excerpts before building its user prompt.
type LLMResearcher struct {
	Client       llm.Client
	Model        string
	Cache        *cache.LLMCache
	MaxContextIn int // excerpt character budget; 0 uses a 4000-char default
}

func (r *LLMResearcher) Research(ctx context.Context, point string, clusters []model.StoryCluster) (string, error) {
	if r.Client == nil || strings.TrimSpace(r.Model) == "" {
		return "", errors.New("researcher not configured")
	}

	limit := r.MaxContextIn
	if limit <= 0 {
		limit = 4000
	}

	system := "You are a research assistant. Using only the provided excerpts, write a concise, neutral paragraph addressing the point. Do not invent facts not present in the excerpts."
	user := fmt.Sprintf("Point: %s\n\n%s", point, trimmedExcerpts(clusters, limit))

	if cached, ok := getCached[textPayload](ctx, r.Cache, r.Model, system+"\n\n"+user); ok {
		return cached.Text, nil
	}

	resp, err := r.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.2,
		N:           1,
	})
	if err != nil {
		return "", fmt.Errorf("research call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	saveCached(ctx, r.Cache, r.Model, system+"\n\n"+user, textPayload{Text: text})
	return text, nil
}

type textPayload struct {
	Text string `json:"text"`
}

// LLMSynthesizer composes the final Markdown report, grounded on the
// teacher's synth.Synthesizer: single chat call, strict Markdown-only
// contract, prompt caching keyed by model+prompt.
type LLMSynthesizer struct {
	Client llm.Client
	Model  string
	Cache  *cache.LLMCache
}

func (s *LLMSynthesizer) Synthesize(ctx context.Context, topic string, outline []string, notes []string) (string, error) {
	if s.Client == nil || strings.TrimSpace(s.Model) == "" {
		return "", errors.New("synthesizer not configured")
	}

	system := "You are a synthesis assistant. Produce a single, cohesive Markdown report following the given outline. Respond with Markdown only, no narration about the task."
	var user strings.Builder
	fmt.Fprintf(&user, "Topic: %s\n\n", topic)
	for i, heading := range outline {
		fmt.Fprintf(&user, "## %s\n", heading)
		if i < len(notes) {
			user.WriteString(notes[i])
			user.WriteString("\n\n")
		}
	}

	if cached, ok := getCached[textPayload](ctx, s.Cache, s.Model, system+"\n\n"+user.String()); ok {
		return cached.Text, nil
	}

	resp, err := s.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user.String()},
		},
		Temperature: 0.1,
		N:           1,
	})
	if err != nil {
		return "", fmt.Errorf("synthesis call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices")
	}

	markdown := strings.TrimSpace(resp.Choices[0].Message.Content)
	saveCached(ctx, s.Cache, s.Model, system+"\n\n"+user.String(), textPayload{Text: markdown})
	return markdown, nil
}

// LLMImagePrompter derives an image-generation prompt from the finished
// synthesis via a short chat call.
type LLMImagePrompter struct {
	Client llm.Client
	Model  string
	Cache  *cache.LLMCache
}

func (p *LLMImagePrompter) ImagePrompt(ctx context.Context, topic string, synthesis string) (string, error) {
	if p.Client == nil || strings.TrimSpace(p.Model) == "" {
		return "", errors.New("image prompter not configured")
	}

	system := "You write one-sentence image generation prompts for editorial illustrations. Respond with the prompt sentence only."
	user := fmt.Sprintf("Topic: %s\n\nArticle summary:\n%s", topic, truncate(synthesis, 2000))

	if cached, ok := getCached[textPayload](ctx, p.Cache, p.Model, system+"\n\n"+user); ok {
		return cached.Text, nil
	}

	resp, err := p.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.3,
		N:           1,
	})
	if err != nil {
		return "", fmt.Errorf("image prompt call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices")
	}

	prompt := strings.TrimSpace(resp.Choices[0].Message.Content)
	saveCached(ctx, p.Cache, p.Model, system+"\n\n"+user, textPayload{Text: prompt})
	return prompt, nil
}

func buildClusterPrompt(topic string, clusters []model.StoryCluster) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Topic: %s\n\nClusters:\n", topic)
	for _, c := range clusters {
		fmt.Fprintf(&sb, "- %s (%d sources)\n", c.Representative.Title, len(c.Members))
	}
	return sb.String()
}

func trimmedExcerpts(clusters []model.StoryCluster, limit int) string {
	var sb strings.Builder
	for _, c := range clusters {
		for _, m := range c.Members {
			if budget.EstimateTokens(sb.String()) >= budget.EstimateTokensFromChars(limit) {
				return sb.String()
			}
			sb.WriteString(m.Excerpt)
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func getCached[T any](ctx context.Context, c *cache.LLMCache, model, prompt string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	raw, ok, _ := c.Get(ctx, cache.KeyFrom(model, prompt))
	if !ok {
		return zero, false
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, false
	}
	return out, true
}

func saveCached[T any](ctx context.Context, c *cache.LLMCache, model, prompt string, payload T) {
	if c == nil {
		return
	}
	if b, err := json.Marshal(payload); err == nil {
		_ = c.Save(ctx, cache.KeyFrom(model, prompt), b)
	}
}
