// Package extract turns raw page markup into clean text and candidate
// email addresses.
package extract

import (
	"bytes"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// textCeiling caps cleaned text length so pathological pages stay cheap.
	textCeiling = 50_000
	// denseLinkMin is the anchor count above which a block is treated as a
	// navigation menu rather than content.
	denseLinkMin = 15
)

// Non-content structural elements stripped before text extraction.
const strippedElements = "script, style, noscript, iframe, svg, canvas, nav, header, footer, aside, form, button, select, input, textarea"

// CleanText strips noise markup and returns the page's readable text:
// entities decoded, whitespace collapsed, length bounded. Markup that fails
// to parse degrades to an empty string.
func CleanText(markup []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return ""
	}
	return cleanDocText(doc)
}

func cleanDocText(doc *goquery.Document) string {
	doc.Find(strippedElements).Remove()
	removeDenseLinkBlocks(doc)

	text := html.UnescapeString(doc.Text())
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > textCeiling {
		text = text[:textCeiling]
	}
	return text
}

// removeDenseLinkBlocks drops list-like blocks whose text is dominated by
// anchors. Menus and footer link farms match; prose with a few inline links
// does not.
func removeDenseLinkBlocks(doc *goquery.Document) {
	doc.Find("ul, ol, table, div").Each(func(_ int, block *goquery.Selection) {
		anchors := block.Find("a")
		if anchors.Length() < denseLinkMin {
			return
		}
		blockLen := len(strings.TrimSpace(block.Text()))
		if blockLen == 0 {
			block.Remove()
			return
		}
		anchorLen := 0
		anchors.Each(func(_ int, a *goquery.Selection) {
			anchorLen += len(strings.TrimSpace(a.Text()))
		})
		// Anchor text covering 80%+ of the block marks it as navigation.
		if anchorLen*10 >= blockLen*8 {
			block.Remove()
		}
	})
}
