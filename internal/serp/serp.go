// Package serp parses search engine result pages into candidate
// destination links and advisory block signals, and unwraps the engines'
// redirect wrapper URLs.
package serp

import (
	"net/url"
	"strings"
)

// linkCap bounds how many candidate links a single result page can yield,
// before the orchestrator's per-query and global budgets apply.
const linkCap = 30

// Page is the parsed view of one search result page. CaptchaSuspect and
// BlockedVariant are advisory signals; they never surface as errors.
type Page struct {
	Links          []string
	CaptchaSuspect bool
	BlockedVariant bool
	Snippets       string
}

// isResultLink reports whether raw is an absolute http(s) URL pointing off
// the search engines' own properties.
func isResultLink(raw string) bool {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return !isEngineHost(u.Hostname())
}

func isEngineHost(host string) bool {
	host = strings.ToLower(host)
	for _, marker := range []string{"google.", "googleusercontent.", "gstatic.", "bing.", "microsoft.", "msn."} {
		if strings.Contains(host, marker) {
			return true
		}
	}
	return false
}

type linkSet struct {
	seen  map[string]struct{}
	links []string
}

func newLinkSet() *linkSet {
	return &linkSet{seen: make(map[string]struct{})}
}

// add resolves wrappers, filters engine-owned and non-http(s) links, and
// keeps insertion order. It reports whether the cap has been reached.
func (s *linkSet) add(href string) bool {
	resolved := Resolve(strings.TrimSpace(href))
	if isResultLink(resolved) {
		if _, ok := s.seen[resolved]; !ok {
			s.seen[resolved] = struct{}{}
			s.links = append(s.links, resolved)
		}
	}
	return len(s.links) < linkCap
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
