package extractor

import (
	"net/url"
	"strings"
)

// canonicalize strips the fragment and every query parameter whose name
// starts with utm_ (case-insensitive), per §4.3.6. Surviving parameters
// keep their original relative order and raw encoding; url.Values.Encode
// would re-sort them alphabetically, which the canonicalization-idempotence
// and utm-stripping properties (§8.2-3) both forbid.
func canonicalize(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	u.Fragment = ""
	if u.RawQuery != "" {
		u.RawQuery = stripUTMParams(u.RawQuery)
	}
	return u.String()
}

func stripUTMParams(rawQuery string) string {
	pairs := strings.Split(rawQuery, "&")
	kept := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		if pair == "" {
			continue
		}
		name := pair
		if i := strings.IndexByte(pair, '='); i >= 0 {
			name = pair[:i]
		}
		if decoded, err := url.QueryUnescape(name); err == nil {
			name = decoded
		}
		if strings.HasPrefix(strings.ToLower(name), "utm_") {
			continue
		}
		kept = append(kept, pair)
	}
	return strings.Join(kept, "&")
}
