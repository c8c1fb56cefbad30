package serp

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// BingSearchURL builds the secondary engine query URL.
func BingSearchURL(base, query string) string {
	if base == "" {
		base = "https://www.bing.com"
	}
	return fmt.Sprintf("%s/search?q=%s&setlang=en",
		strings.TrimRight(base, "/"), url.QueryEscape(query))
}

// ParseBing extracts candidate links and snippet text from Bing result
// markup. The fallback path only consumes snippets, but links are still
// reported so the caller can tell an empty SERP from a parsed one.
func ParseBing(markup []byte) Page {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return Page{}
	}

	set := newLinkSet()
	doc.Find("li.b_algo h2 a[href], li.b_algo a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if !ok {
			return true
		}
		return set.add(href)
	})

	page := Page{Links: set.links}
	page.CaptchaSuspect = detectCaptcha(markup)
	if !page.CaptchaSuspect && len(page.Links) == 0 {
		page.BlockedVariant = doc.Find("#b_results").Length() == 0 &&
			doc.Find("form#sb_form, input[name='q']").Length() > 0
	}
	page.Snippets = collapseSpace(doc.Find("li.b_algo div.b_caption p, li.b_algo p").Text())
	return page
}
