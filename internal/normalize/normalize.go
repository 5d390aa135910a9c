// Package normalize implements the Query Normalizer (L0): it derives
// provider-specific query shapes from a raw topic string or an explicit
// query map, concentrating each upstream provider's query dialect in one
// place so connectors stay thin and unit-testable without mocking this
// package.
package normalize

import (
	"regexp"
	"strings"
)

// QueryMap lets a caller supply explicit per-provider overrides instead of
// deriving them all from a single topic string.
type QueryMap struct {
	Main           string
	WebSearch      string
	NewsAPI        string
	EventRegistry  []string
}

// Normalized bundles every provider-specific query shape plus the shared
// token set used for relevance scoring throughout the pipeline.
type Normalized struct {
	MainQueryString       string
	WebSearchQuery        string
	NewsAPIQuery          string
	NewsAPIQueryFallback  string
	EventRegistryKeywords []string
	QueryTokens           []string
}

const maxTokens = 24
const maxWebSearchSegments = 6
const maxEventRegistryKeywords = 15
const eventRegistryTokenBudget = 15

var wordSplitRe = regexp.MustCompile(`[a-z0-9]+(?:-[a-z0-9]+)*`)
var tokenCleanRe = regexp.MustCompile(`[^a-z0-9\s-]`)
var acronymRe = regexp.MustCompile(`^[A-Z0-9]{2,}$`)

// stopwords is a closed list of ~60 generic English and news-filler terms.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "of": {}, "for": {}, "to": {}, "in": {}, "on": {},
	"at": {}, "by": {}, "with": {}, "and": {}, "or": {}, "but": {}, "is": {}, "are": {},
	"was": {}, "were": {}, "be": {}, "been": {}, "being": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "it": {}, "its": {}, "as": {}, "from": {}, "into": {},
	"about": {}, "over": {}, "under": {}, "between": {}, "after": {}, "before": {},
	"during": {}, "than": {}, "then": {}, "so": {}, "such": {}, "not": {}, "no": {},
	"nor": {}, "can": {}, "could": {}, "should": {}, "would": {}, "will": {}, "shall": {},
	"may": {}, "might": {}, "must": {}, "if": {}, "also": {}, "more": {}, "most": {},
	"very": {}, "just": {}, "news": {}, "report": {}, "reports": {}, "update": {},
	"updates": {}, "latest": {}, "breaking": {}, "today": {}, "says": {}, "said": {},
	"according": {}, "new": {},
}

// Normalize derives every provider query shape from a raw topic and an
// optional override map. When qmap is non-nil its fields take precedence
// over values derived from topic.
func Normalize(topic string, qmap *QueryMap) Normalized {
	main := strings.TrimSpace(topic)
	if qmap != nil && strings.TrimSpace(qmap.Main) != "" {
		main = strings.TrimSpace(qmap.Main)
	}

	tokens := Tokenize(main)

	out := Normalized{
		MainQueryString: main,
		QueryTokens:     tokens,
	}

	segs := properNounAwareSegments(main)

	if qmap != nil && strings.TrimSpace(qmap.WebSearch) != "" {
		out.WebSearchQuery = qmap.WebSearch
	} else {
		out.WebSearchQuery = buildWebSearchQuery(segs)
	}

	if qmap != nil && strings.TrimSpace(qmap.NewsAPI) != "" {
		out.NewsAPIQuery = qmap.NewsAPI
	} else {
		out.NewsAPIQuery = buildNewsAPIQuery(segs)
	}
	out.NewsAPIQueryFallback = buildNewsAPIFallback(tokens)

	if qmap != nil && len(qmap.EventRegistry) > 0 {
		out.EventRegistryKeywords = qmap.EventRegistry
	} else {
		out.EventRegistryKeywords = buildEventRegistryKeywords(segs)
	}

	return out
}

// Tokenize lower-cases, keeps [a-z0-9\s-], expands hyphenated tokens into
// both joined and split forms, drops stopwords, dedupes case-insensitively
// and caps at 24 tokens. If filtering removes everything it falls back to
// the unfiltered token set so downstream relevance scoring is never
// identically zero.
func Tokenize(s string) []string {
	lower := strings.ToLower(s)
	cleaned := tokenCleanRe.ReplaceAllString(lower, " ")
	raw := wordSplitRe.FindAllString(cleaned, -1)

	all := make([]string, 0, len(raw)*2)
	for _, w := range raw {
		all = append(all, w)
		if strings.Contains(w, "-") {
			all = append(all, w)
			all = append(all, strings.Split(w, "-")...)
		}
	}

	filtered := dedupeCap(filterStopwords(all), maxTokens)
	if len(filtered) == 0 {
		return dedupeCap(all, maxTokens)
	}
	return filtered
}

func filterStopwords(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, bad := stopwords[t]; bad {
			continue
		}
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

func dedupeCap(tokens []string, cap int) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) >= cap {
			break
		}
	}
	return out
}

// segment is a contiguous run of original-case words from the topic, along
// with whether it qualifies as a "proper noun phrase" under the rule: two or
// more consecutive capitalized words, or two or more consecutive uppercase
// acronym letters.
type segment struct {
	text        string
	properNoun  bool
	wordCount   int
}

func properNounAwareSegments(topic string) []segment {
	words := strings.Fields(topic)
	var segs []segment
	i := 0
	for i < len(words) {
		w := strings.Trim(words[i], ".,;:!?()[]{}\"'")
		if w == "" {
			i++
			continue
		}
		if isCapitalizedWord(w) || isAcronym(w) {
			start := i
			for i < len(words) {
				nw := strings.Trim(words[i], ".,;:!?()[]{}\"'")
				if nw == "" || !(isCapitalizedWord(nw) || isAcronym(nw)) {
					break
				}
				i++
			}
			run := words[start:i]
			text := strings.Join(trimAll(run), " ")
			segs = append(segs, segment{text: text, properNoun: len(run) >= 2, wordCount: len(run)})
			continue
		}
		segs = append(segs, segment{text: w, properNoun: false, wordCount: 1})
		i++
	}
	return segs
}

func trimAll(ws []string) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = strings.Trim(w, ".,;:!?()[]{}\"'")
	}
	return out
}

func isCapitalizedWord(w string) bool {
	if w == "" {
		return false
	}
	r := rune(w[0])
	return r >= 'A' && r <= 'Z' && strings.ToLower(w) != w
}

func isAcronym(w string) bool {
	return acronymRe.MatchString(w)
}

// buildWebSearchQuery produces an OR-joined query, quoting multi-word
// segments that look like proper nouns or acronyms, capped at 6 segments.
func buildWebSearchQuery(segs []segment) string {
	parts := make([]string, 0, maxWebSearchSegments)
	seen := map[string]struct{}{}
	for _, s := range segs {
		key := strings.ToLower(s.text)
		if _, ok := seen[key]; ok {
			continue
		}
		if isDegenerate(s.text) {
			continue
		}
		seen[key] = struct{}{}
		if s.properNoun && s.wordCount >= 2 {
			parts = append(parts, `"`+s.text+`"`)
		} else {
			parts = append(parts, s.text)
		}
		if len(parts) >= maxWebSearchSegments {
			break
		}
	}
	return strings.Join(parts, " OR ")
}

// buildNewsAPIQuery quotes every multi-word segment and OR-joins them all.
func buildNewsAPIQuery(segs []segment) string {
	parts := make([]string, 0, len(segs))
	seen := map[string]struct{}{}
	for _, s := range segs {
		key := strings.ToLower(s.text)
		if _, ok := seen[key]; ok {
			continue
		}
		if isDegenerate(s.text) {
			continue
		}
		seen[key] = struct{}{}
		if s.wordCount >= 2 {
			parts = append(parts, `"`+s.text+`"`)
		} else {
			parts = append(parts, s.text)
		}
	}
	return strings.Join(parts, " OR ")
}

// buildNewsAPIFallback replaces OR with implicit AND over the first 3
// tokens, for providers that reject boolean syntax.
func buildNewsAPIFallback(tokens []string) string {
	n := len(tokens)
	if n > 3 {
		n = 3
	}
	return strings.Join(tokens[:n], " ")
}

// buildEventRegistryKeywords produces an ordered list of at most 15 keyword
// strings under a total token budget of 15. Quoted phrases (proper nouns)
// are preferred; unquoted phrases are compressed by dropping stopwords and
// truncating to at most 5 tokens when the budget would otherwise be
// exceeded. Degenerate keywords are discarded.
func buildEventRegistryKeywords(segs []segment) []string {
	type cand struct {
		text   string
		tokens int
		quoted bool
	}
	var quoted, plain []cand
	seen := map[string]struct{}{}
	for _, s := range segs {
		key := strings.ToLower(s.text)
		if _, ok := seen[key]; ok {
			continue
		}
		if isDegenerate(s.text) {
			continue
		}
		seen[key] = struct{}{}
		if s.properNoun && s.wordCount >= 2 {
			quoted = append(quoted, cand{text: s.text, tokens: s.wordCount, quoted: true})
		} else {
			plain = append(plain, cand{text: s.text, tokens: s.wordCount})
		}
	}

	out := make([]string, 0, maxEventRegistryKeywords)
	budget := eventRegistryTokenBudget

	for _, c := range quoted {
		if len(out) >= maxEventRegistryKeywords || c.tokens > budget {
			continue
		}
		out = append(out, c.text)
		budget -= c.tokens
	}
	for _, c := range plain {
		if len(out) >= maxEventRegistryKeywords || budget <= 0 {
			break
		}
		text := c.text
		toks := Tokenize(text)
		if len(toks) > 5 {
			toks = toks[:5]
		}
		if len(toks) == 0 {
			continue
		}
		text = strings.Join(toks, " ")
		if len(toks) > budget {
			toks = toks[:budget]
			if len(toks) == 0 {
				continue
			}
			text = strings.Join(toks, " ")
		}
		out = append(out, text)
		budget -= len(toks)
	}
	return out
}

func isDegenerate(s string) bool {
	t := strings.ToLower(strings.TrimSpace(s))
	if t == "" || t == "or" || t == "and" {
		return true
	}
	for _, r := range t {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
