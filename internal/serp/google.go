package serp

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selector cascade from the most specific known result containers down to
// any anchor inside the main content region. Google rotates class names, so
// later entries keep the extractor working when the specific ones go stale.
var googleResultSelectors = []string{
	"div.yuRUbf > a[href]",
	"div.g a[href]",
	"div.MjjYud a[href]",
	"#rso a[href]",
	"#search a[href]",
	"#main a[href]",
}

var googleSnippetSelectors = "div.VwiC3b, span.aCOpRe, div.IsZvec, div.s3v9rd"

// captchaPhrases are textual hints of an interstitial challenge page.
var captchaPhrases = []string{
	"unusual traffic",
	"verify you are human",
	"not a robot",
	"captcha",
}

// captchaMarkers are the structural container hints; a phrase alone is not
// enough since real pages legitimately mention captchas.
var captchaMarkers = []string{
	"g-recaptcha",
	"captcha-form",
	"recaptcha/api.js",
}

// embeddedResultURL matches escaped result URLs inside inline JSON blobs,
// the fallback when the selector cascade finds nothing.
var embeddedResultURL = regexp.MustCompile(`"(?:url|link)":"(https?:[^"]+)"`)

// GoogleSearchURL builds the primary engine query URL. base is overridable
// so tests can point at a local server.
func GoogleSearchURL(base, query string, results int) string {
	if base == "" {
		base = "https://www.google.com"
	}
	if results <= 0 {
		results = 20
	}
	return fmt.Sprintf("%s/search?q=%s&num=%d&hl=en",
		strings.TrimRight(base, "/"), url.QueryEscape(query), results)
}

// ParseGoogle extracts candidate links, block signals, and snippet text from
// raw Google result markup. Malformed markup degrades to an empty Page.
func ParseGoogle(markup []byte) Page {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return Page{}
	}

	set := newLinkSet()
	for _, sel := range googleResultSelectors {
		if len(set.links) >= linkCap {
			break
		}
		doc.Find(sel).EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href, ok := a.Attr("href")
			if !ok {
				return true
			}
			return set.add(href)
		})
	}

	page := Page{Links: set.links}
	if len(page.Links) == 0 {
		page.Links = embeddedResultLinks(markup)
	}

	page.CaptchaSuspect = detectCaptcha(markup)
	if !page.CaptchaSuspect && len(page.Links) == 0 {
		page.BlockedVariant = detectBlockedShell(doc)
	}
	page.Snippets = collapseSpace(doc.Find(googleSnippetSelectors).Text())
	return page
}

// embeddedResultLinks scans the raw markup for result URLs escaped inside
// inline JSON blobs.
func embeddedResultLinks(markup []byte) []string {
	set := newLinkSet()
	for _, m := range embeddedResultURL.FindAllSubmatch(markup, -1) {
		raw := strings.ReplaceAll(string(m[1]), `\/`, "/")
		if !set.add(raw) {
			break
		}
	}
	return set.links
}

func detectCaptcha(markup []byte) bool {
	lower := bytes.ToLower(markup)
	phrase := false
	for _, p := range captchaPhrases {
		if bytes.Contains(lower, []byte(p)) {
			phrase = true
			break
		}
	}
	if !phrase {
		return false
	}
	for _, m := range captchaMarkers {
		if bytes.Contains(lower, []byte(m)) {
			return true
		}
	}
	return false
}

// detectBlockedShell flags markup that lacks any result container but still
// looks like the engine's generic search shell.
func detectBlockedShell(doc *goquery.Document) bool {
	if doc.Find("#rso, #search div.g").Length() > 0 {
		return false
	}
	if doc.Find("form[action='/search'], form[role='search'], input[name='q']").Length() > 0 {
		return true
	}
	title := strings.ToLower(doc.Find("title").Text())
	return strings.Contains(title, "google search")
}
