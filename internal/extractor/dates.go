package extractor

import (
	"regexp"
	"strings"
	"time"
)

var isoDateRe = regexp.MustCompile(`20\d{2}-\d{2}-\d{2}`)
var monthNameDateRe = regexp.MustCompile(`(?i)(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+20\d{2}`)
var urlDateRe = regexp.MustCompile(`/(20\d{2})[-/](\d{2})[-/](\d{2})/|/(20\d{2})/(\d{2})/(\d{2})/`)
var structuredDateRe = regexp.MustCompile(`"(datePublished|dateCreated|uploadDate|dateModified)"\s*:\s*"([^"]+)"`)
var cueWordRe = regexp.MustCompile(`(?i)published|posted|updated|date`)

var minAcceptableDate = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// dateBucket classifies a date candidate's source for the
// published/modified resolution rule in §4.3.7.
type dateBucket int

const (
	bucketNeutral dateBucket = iota
	bucketPublished
	bucketModified
)

type dateCandidate struct {
	t      time.Time
	bucket dateBucket
}

// resolveDates implements §4.3.7: gather candidates from meta tags, <time>
// tags, structured-data blocks and the URL, bucket them, and resolve
// published/modified. If no structured candidate exists at all, fall back
// to scanning the body text for an inferred date.
func resolveDates(doc parsedDocument, requestURL string, now time.Time) (published *time.Time, modified *time.Time, inferred bool) {
	var candidates []dateCandidate

	for key, raw := range doc.MetaDates {
		if t, ok := parseAcceptableDate(raw, now); ok {
			candidates = append(candidates, dateCandidate{t: t, bucket: bucketForMetaKey(key)})
		}
	}
	for _, raw := range doc.TimeTags {
		if t, ok := parseAcceptableDate(raw, now); ok {
			candidates = append(candidates, dateCandidate{t: t, bucket: bucketNeutral})
		}
	}
	for _, m := range structuredDateRe.FindAllStringSubmatch(doc.RawHTML, -1) {
		if t, ok := parseAcceptableDate(m[2], now); ok {
			candidates = append(candidates, dateCandidate{t: t, bucket: bucketForStructuredKey(m[1])})
		}
	}
	if t, ok := urlDate(requestURL, now); ok {
		candidates = append(candidates, dateCandidate{t: t, bucket: bucketNeutral})
	}

	if len(candidates) == 0 {
		if t, ok := inferDateFromText(doc.Body, now); ok {
			return &t, &t, true
		}
		return nil, nil, false
	}

	published = latestInBucket(candidates, bucketPublished)
	if published == nil {
		published = latestInBucket(candidates, bucketNeutral)
	}
	modified = latestInBucket(candidates, bucketModified)
	if modified == nil {
		modified = latestOverall(candidates)
	}
	return published, modified, false
}

func bucketForMetaKey(key string) dateBucket {
	switch key {
	case "article:published_time", "datepublished", "dc.date.issued", "publishdate", "pubdate":
		return bucketPublished
	case "article:modified_time", "updated", "lastmod", "datemodified", "og:updated_time":
		return bucketModified
	default:
		return bucketNeutral
	}
}

func bucketForStructuredKey(key string) dateBucket {
	switch strings.ToLower(key) {
	case "datepublished", "datecreated", "uploaddate":
		return bucketPublished
	case "datemodified":
		return bucketModified
	default:
		return bucketNeutral
	}
}

func parseAcceptableDate(raw string, now time.Time) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	layouts := []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02", time.RFC1123Z, time.RFC1123}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			if isAcceptableDate(t, now) {
				return t, true
			}
			return time.Time{}, false
		}
	}
	return time.Time{}, false
}

func isAcceptableDate(t time.Time, now time.Time) bool {
	return !t.Before(minAcceptableDate) && !t.After(now.Add(48*time.Hour))
}

func urlDate(rawURL string, now time.Time) (time.Time, bool) {
	m := urlDateRe.FindStringSubmatch(rawURL)
	if m == nil {
		return time.Time{}, false
	}
	year, month, day := m[1], m[2], m[3]
	if year == "" {
		year, month, day = m[4], m[5], m[6]
	}
	t, err := time.Parse("2006-01-02", year+"-"+month+"-"+day)
	if err != nil || !isAcceptableDate(t, now) {
		return time.Time{}, false
	}
	return t, true
}

func latestInBucket(cands []dateCandidate, bucket dateBucket) *time.Time {
	var best *time.Time
	for _, c := range cands {
		if c.bucket != bucket {
			continue
		}
		if best == nil || c.t.After(*best) {
			t := c.t
			best = &t
		}
	}
	return best
}

func latestOverall(cands []dateCandidate) *time.Time {
	var best *time.Time
	for _, c := range cands {
		if best == nil || c.t.After(*best) {
			t := c.t
			best = &t
		}
	}
	return best
}

// inferDateFromText scans the first 5000 characters for ISO-8601 and
// "Month D, YYYY" patterns and scores each by proximity to a cue word,
// position, and recency, per §4.3.7. Accepted only if the top score >= 0.65.
func inferDateFromText(body string, now time.Time) (time.Time, bool) {
	window := body
	if len(window) > 5000 {
		window = window[:5000]
	}

	type hit struct {
		t     time.Time
		score float64
	}
	var hits []hit

	scan := func(matches [][]int, parse func(string) (time.Time, bool)) {
		for _, m := range matches {
			start, end := m[0], m[1]
			raw := window[start:end]
			t, ok := parse(raw)
			if !ok || !isAcceptableDate(t, now) {
				continue
			}
			hits = append(hits, hit{t: t, score: scoreDateOccurrence(window, start, end, now, t)})
		}
	}

	scan(isoDateRe.FindAllStringIndex(window, -1), func(s string) (time.Time, bool) {
		t, err := time.Parse("2006-01-02", s)
		return t, err == nil
	})
	scan(monthNameDateRe.FindAllStringIndex(window, -1), func(s string) (time.Time, bool) {
		s = strings.ReplaceAll(s, ",", "")
		for _, layout := range []string{"January 2 2006", "Jan 2 2006"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	})

	var best *hit
	for i := range hits {
		if best == nil || hits[i].score > best.score {
			best = &hits[i]
		}
	}
	if best == nil || best.score < 0.65 {
		return time.Time{}, false
	}
	return best.t, true
}

func scoreDateOccurrence(window string, start, end int, now, t time.Time) float64 {
	score := 0.0

	left := start - 60
	if left < 0 {
		left = 0
	}
	right := end + 80
	if right > len(window) {
		right = len(window)
	}
	if cueWordRe.MatchString(window[left:right]) {
		score += 0.45
	}
	if start < 1200 {
		score += 0.3
	}
	if now.Sub(t) < 2*365*24*time.Hour && now.Sub(t) >= 0 {
		score += 0.25
	}
	return score
}
