package serp

import (
	"encoding/base64"
	"net/url"
	"strings"
)

// bingOpaquePrefix marks a base64 payload rather than a literal URL in the
// Bing click wrapper's destination parameter.
const bingOpaquePrefix = "a1"

// Resolve unwraps a search engine redirect link to its true destination.
// Links that do not match a known wrapper pattern are returned unchanged,
// as is anything that fails to decode. Resolve never fails.
func Resolve(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return link
	}
	host := strings.ToLower(u.Hostname())

	switch {
	case u.Path == "/url" && (host == "" || strings.Contains(host, "google.")):
		// Google: /url?q=<dest> (sometimes url=<dest>). Query() already
		// applies the URL decode.
		q := u.Query()
		dest := q.Get("q")
		if dest == "" {
			dest = q.Get("url")
		}
		if isAbsoluteHTTP(dest) {
			return dest
		}
	case strings.Contains(host, "bing.") && strings.HasPrefix(u.Path, "/ck/"):
		if dest := decodeBingDestination(u.Query().Get("u")); dest != "" {
			return dest
		}
	}
	return link
}

func decodeBingDestination(v string) string {
	if v == "" {
		return ""
	}
	if isAbsoluteHTTP(v) {
		return v
	}
	if !strings.HasPrefix(v, bingOpaquePrefix) {
		return ""
	}
	payload := strings.TrimPrefix(v, bingOpaquePrefix)
	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(payload, "="))
	if err != nil {
		return ""
	}
	if dest := string(decoded); isAbsoluteHTTP(dest) {
		return dest
	}
	return ""
}

func isAbsoluteHTTP(raw string) bool {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return false
	}
	u, err := url.Parse(raw)
	return err == nil && u.Host != ""
}
