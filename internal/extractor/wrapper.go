package extractor

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// WrapperConfig names the aggregator-wrapper host and path pattern the
// extractor recognizes for the Web News RSS provider (§4.3.2). Left
// unconfigured, no URL is treated as a wrapper and the direct-fetch path
// runs unconditionally.
type WrapperConfig struct {
	Host           string // e.g. "news.example-aggregator.com"
	PathPrefix     string // e.g. "/rss/articles/"
	BatchEndpoint  string // the public "batch execute" RPC endpoint
	HTTPClient     *http.Client
}

func (w WrapperConfig) isWrapper(u *url.URL) bool {
	if w.Host == "" || u == nil {
		return false
	}
	return strings.EqualFold(u.Hostname(), w.Host) && strings.HasPrefix(u.Path, w.PathPrefix)
}

var signatureAttrRe = regexp.MustCompile(`data-n-a-sg="([^"]+)"`)
var timestampAttrRe = regexp.MustCompile(`data-n-a-ts="([^"]+)"`)
var embeddedURLRe = regexp.MustCompile(`https?://[^\s"'<>\\\x00-\x1f]{8,}`)

// resolveWrapper recovers the true publisher URL from a recognized
// aggregator wrapper URL, in the order the spec requires: (a) direct
// base64url token decode, (b) signature/timestamp + batch-execute RPC,
// (c) fall back to the wrapper URL itself unchanged.
func resolveWrapper(ctx context.Context, cfg WrapperConfig, wrapperURL string) string {
	if decoded, ok := decodeWrapperToken(wrapperURL); ok {
		return decoded
	}
	if decoded, ok := decodeViaBatchExecute(ctx, cfg, wrapperURL); ok {
		return decoded
	}
	return wrapperURL
}

// decodeWrapperToken decodes the last path segment as a base64url token
// whose payload is a tagged, length-prefixed field set; it recovers the
// embedded publisher URL by scanning the decoded bytes for an http(s) run,
// since the URL field is carried as plain ASCII text inside the payload.
func decodeWrapperToken(wrapperURL string) (string, bool) {
	u, err := url.Parse(wrapperURL)
	if err != nil {
		return "", false
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) == 0 {
		return "", false
	}
	token := segs[len(segs)-1]
	token = strings.TrimRight(token, "=")

	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", false
	}
	if match := embeddedURLRe.Find(data); match != nil {
		return string(match), true
	}
	return "", false
}

// decodeViaBatchExecute reads the wrapper page's signature/timestamp pair
// and calls the aggregator's public batch-execute RPC with a fixed request
// shape to recover the final URL.
func decodeViaBatchExecute(ctx context.Context, cfg WrapperConfig, wrapperURL string) (string, bool) {
	if cfg.BatchEndpoint == "" {
		return "", false
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wrapperURL, nil)
	if err != nil {
		return "", false
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", false
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return "", false
	}

	sigMatch := signatureAttrRe.FindSubmatch(body)
	tsMatch := timestampAttrRe.FindSubmatch(body)
	if sigMatch == nil || tsMatch == nil {
		return "", false
	}
	signature := string(sigMatch[1])
	timestamp := string(tsMatch[1])

	rpcPayload := fmt.Sprintf(
		`[[["Fbv4je","[\"garturlreq\",[[\"en-US\",\"US\"],null,null,1,1,\"US:en\",null,1,null,null,null,null,null,0,1],\"%s\",%s]",null,"generic"]]]`,
		signature, timestamp,
	)
	form := url.Values{}
	form.Set("f.req", rpcPayload)

	rpcReq, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BatchEndpoint, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return "", false
	}
	rpcReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rpcResp, err := client.Do(rpcReq)
	if err != nil {
		return "", false
	}
	rpcBody, err := io.ReadAll(rpcResp.Body)
	rpcResp.Body.Close()
	if err != nil {
		return "", false
	}

	if match := embeddedURLRe.Find(rpcBody); match != nil {
		return string(match), true
	}
	return "", false
}
