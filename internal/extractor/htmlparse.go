package extractor

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// parsedDocument is what htmlparse recovers from a raw HTML body, adapted
// from the teacher's extract.Document to additionally carry the raw
// attribute soup needed by date extraction (§4.3.7) and canonical-link
// discovery (§4.3.5).
type parsedDocument struct {
	Title        string
	OGTitle      string
	CanonicalURL string
	Body         string
	MetaDates    map[string]string
	TimeTags     []string
	RawHTML      string
}

// closed list of date-bearing meta name/property keys, per §4.3.7.
var dateMetaKeys = map[string]struct{}{
	"article:published_time": {}, "article:modified_time": {},
	"datepublished": {}, "dc.date.issued": {}, "publishdate": {},
	"pubdate": {}, "updated": {}, "lastmod": {}, "datemodified": {},
	"og:updated_time": {},
}

func parseHTML(raw []byte) parsedDocument {
	doc := parsedDocument{MetaDates: map[string]string{}, RawHTML: string(raw)}

	gq, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil || gq == nil {
		return doc
	}

	if title := strings.TrimSpace(gq.Find("title").First().Text()); title != "" {
		doc.Title = title
	}

	gq.Find("meta").Each(func(_ int, s *goquery.Selection) {
		handleMetaSelection(s, &doc)
	})

	if href, ok := gq.Find(`link[rel="canonical"]`).First().Attr("href"); ok && href != "" {
		doc.CanonicalURL = href
	}

	gq.Find("time").Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr("datetime"); ok && v != "" {
			doc.TimeTags = append(doc.TimeTags, v)
		}
	})

	contentRoot := firstNode(gq.Find("article"))
	if contentRoot == nil {
		contentRoot = firstNode(gq.Find("main"))
	}
	if contentRoot == nil {
		contentRoot = firstNode(gq.Find("body"))
	}
	if contentRoot == nil && gq.Nodes != nil && len(gq.Nodes) > 0 {
		contentRoot = gq.Nodes[0]
	}

	var body strings.Builder
	if contentRoot != nil {
		collectText(&body, contentRoot, false)
	}
	doc.Body = normalizeWhitespace(body.String())
	return doc
}

func firstNode(sel *goquery.Selection) *html.Node {
	if sel.Length() == 0 {
		return nil
	}
	return sel.Get(0)
}

func handleMetaSelection(s *goquery.Selection, doc *parsedDocument) {
	name := strings.ToLower(s.AttrOr("name", ""))
	property := strings.ToLower(s.AttrOr("property", ""))
	content := s.AttrOr("content", "")
	if content == "" {
		return
	}
	if property == "og:title" {
		doc.OGTitle = content
		return
	}
	key := name
	if key == "" {
		key = property
	}
	if _, ok := dateMetaKeys[key]; ok {
		doc.MetaDates[key] = content
	}
}

// collectText walks the parsed node tree directly rather than through
// goquery selectors: goquery has no text extraction that preserves
// block-level paragraph breaks, which the quality scorer (§4.3.8) and
// body excerpting both depend on.
func collectText(b *strings.Builder, n *html.Node, inPre bool) {
	if n.Type == html.ElementNode {
		name := strings.ToLower(n.Data)
		switch name {
		case "script", "style", "noscript", "nav", "footer", "aside", "iframe":
			return
		case "pre", "code":
			inPre = true
		case "br", "hr", "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "ul", "ol":
			b.WriteString("\n")
		}
	}
	if n.Type == html.TextNode {
		data := n.Data
		if !inPre {
			data = strings.ReplaceAll(data, "\t", " ")
			data = strings.ReplaceAll(data, "\r", " ")
		}
		b.WriteString(data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c, inPre)
	}
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6":
			b.WriteString("\n\n")
		case "li", "pre", "code":
			b.WriteString("\n")
		}
	}
}

func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if len(out) > 0 && out[len(out)-1] == "" {
				continue
			}
			out = append(out, "")
			continue
		}
		out = append(out, collapseSpaces(trimmed))
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}
