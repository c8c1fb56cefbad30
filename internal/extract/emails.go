package extract

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mcnijman/go-emailaddress"
)

// strictEmail is the baseline address pattern applied to cleaned text.
var strictEmail = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// Obfuscation tokens: bracketed, parenthesized, and spaced "at"/"dot"
// substitutions, plus literal symbols padded with whitespace. The padded
// forms require space on BOTH sides: one-sided spacing is ordinary
// punctuation ("hr@acme.com. We are hiring."), and collapsing it would
// fuse the following sentence into the domain.
var (
	bracketAt  = regexp.MustCompile(`(?i)\s*[\[({]\s*at\s*[\])}]\s*`)
	bracketDot = regexp.MustCompile(`(?i)\s*[\[({]\s*dot\s*[\])}]\s*`)
	spacedAt   = regexp.MustCompile(`(?i)(\S)\s+at\s+(\S)`)
	spacedDot  = regexp.MustCompile(`(?i)(\S)\s+dot\s+(\S)`)
	aroundAt   = regexp.MustCompile(`\s+@\s+`)
	aroundDot  = regexp.MustCompile(`\s+\.\s+`)
)

// FromHTML cleans the markup and returns the readable text alongside every
// candidate address found in it. Candidates come from three sources: a
// strict pattern pass over the text, an obfuscation-aware pass, and
// mailto anchors. The union is lowercased and deduplicated in first-seen
// order.
func FromHTML(markup []byte) (string, []string) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return "", nil
	}

	found := newAddressSet()
	// Mailto anchors first: the cleaner removes nothing they live in, but
	// collecting them from the full document keeps them independent of the
	// text heuristics.
	collectMailto(doc, found)

	text := cleanDocText(doc)
	collectFromText(text, found)

	return text, found.addresses
}

// Emails is FromHTML without the text.
func Emails(markup []byte) []string {
	_, addrs := FromHTML(markup)
	return addrs
}

// EmailsFromText runs the strict and obfuscation-aware passes over already
// extracted text, for callers holding SERP snippets rather than markup.
func EmailsFromText(text string) []string {
	found := newAddressSet()
	collectFromText(text, found)
	return found.addresses
}

func collectFromText(text string, found *addressSet) {
	for _, m := range strictEmail.FindAllString(text, -1) {
		found.add(m)
	}
	for _, m := range strictEmail.FindAllString(deobfuscate(text), -1) {
		found.add(m)
	}
}

// deobfuscate rewrites "at"/"dot" substitutions into literal symbols so the
// strict pattern can be reapplied.
func deobfuscate(text string) string {
	t := bracketAt.ReplaceAllString(text, "@")
	t = bracketDot.ReplaceAllString(t, ".")
	t = spacedAt.ReplaceAllString(t, "$1@$2")
	t = spacedDot.ReplaceAllString(t, "$1.$2")
	t = aroundAt.ReplaceAllString(t, "@")
	t = aroundDot.ReplaceAllString(t, ".")
	return t
}

func collectMailto(doc *goquery.Document, found *addressSet) {
	doc.Find("a[href^='mailto:'], a[href^='Mailto:'], a[href^='MAILTO:']").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		addr := strings.TrimSpace(href)
		if len(addr) >= len("mailto:") {
			addr = addr[len("mailto:"):]
		}
		// Drop ?subject=... and friends.
		if idx := strings.Index(addr, "?"); idx >= 0 {
			addr = addr[:idx]
		}
		found.add(addr)
	})
}

// addressSet keeps validated, lowercased addresses in first-seen order.
type addressSet struct {
	seen      map[string]struct{}
	addresses []string
}

func newAddressSet() *addressSet {
	return &addressSet{seen: make(map[string]struct{})}
}

func (s *addressSet) add(raw string) {
	addr := strings.ToLower(strings.TrimSpace(raw))
	if addr == "" {
		return
	}
	if _, ok := s.seen[addr]; ok {
		return
	}
	if _, err := emailaddress.Parse(addr); err != nil {
		return
	}
	s.seen[addr] = struct{}{}
	s.addresses = append(s.addresses, addr)
}
