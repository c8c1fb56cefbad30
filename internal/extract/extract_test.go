package extract

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanTextStripsNoiseMarkup(t *testing.T) {
	t.Parallel()

	markup := []byte(`<html><head><style>body{color:red}</style></head><body>
<nav><a href="/">Home</a><a href="/about">About</a></nav>
<script>var tracking = "noise@tracker.example";</script>
<form><input name="email"><button>Send</button></form>
<p>Contact our team at office in Casablanca.</p>
<p>Legal &amp; Privacy</p>
<footer>Site map</footer>
</body></html>`)

	text := CleanText(markup)
	require.Contains(t, text, "Contact our team")
	require.NotContains(t, text, "noise@tracker.example")
	require.NotContains(t, text, "color:red")
	require.NotContains(t, text, "Home")
	require.Contains(t, text, "Legal & Privacy", "entities must be decoded")
	require.NotContains(t, text, "Site map")
}

func TestCleanTextRemovesLinkDenseBlocks(t *testing.T) {
	t.Parallel()

	var menu strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&menu, `<li><a href="/p%d">Category %d</a></li>`, i, i)
	}
	markup := []byte(`<html><body><ul>` + menu.String() + `</ul>
<p>Write to jobs@acme.example with a short <a href="/cv">CV</a>.</p></body></html>`)

	text := CleanText(markup)
	require.NotContains(t, text, "Category 3")
	require.Contains(t, text, "jobs@acme.example")
}

func TestCleanTextTruncatesLongPages(t *testing.T) {
	t.Parallel()

	markup := []byte("<html><body><p>" + strings.Repeat("padding ", 20_000) + "</p></body></html>")
	text := CleanText(markup)
	require.LessOrEqual(t, len(text), textCeiling)
}

func TestCleanTextMalformedMarkup(t *testing.T) {
	t.Parallel()

	require.NotPanics(t, func() {
		_ = CleanText([]byte("<div><p>unclosed"))
	})
}

func TestEmailsStrictPass(t *testing.T) {
	t.Parallel()

	markup := []byte(`<html><body>
<p>General: info@acme.example / HR: recrutement@acme.example</p>
<p>Duplicate: INFO@ACME.EXAMPLE</p>
</body></html>`)

	emails := Emails(markup)
	require.Equal(t, []string{"info@acme.example", "recrutement@acme.example"}, emails)
}

func TestEmailsObfuscatedForms(t *testing.T) {
	t.Parallel()

	markup := []byte(`<html><body>
<p>contact us at john [at] example [dot] com</p>
<p>or jane (at) example (dot) com</p>
<p>or sales AT acme DOT example</p>
</body></html>`)

	emails := Emails(markup)
	require.Contains(t, emails, "john@example.com")
	require.Contains(t, emails, "jane@example.com")
	require.Contains(t, emails, "sales@acme.example")
}

func TestEmailsMailtoAnchors(t *testing.T) {
	t.Parallel()

	markup := []byte(`<html><body>
<a href="mailto:jane.doe@example.com?subject=Hi">write jane</a>
<a href="MAILTO:Bob@Example.com">write bob</a>
</body></html>`)

	emails := Emails(markup)
	require.Contains(t, emails, "jane.doe@example.com", "query string must be stripped")
	require.Contains(t, emails, "bob@example.com")
	require.NotContains(t, emails, "jane.doe@example.com?subject=hi")
}

func TestEmailsUnionIsDeduplicated(t *testing.T) {
	t.Parallel()

	markup := []byte(`<html><body>
<a href="mailto:team@acme.example">mail us</a>
<p>Reach team@acme.example or team [at] acme [dot] example</p>
</body></html>`)

	emails := Emails(markup)
	count := 0
	for _, e := range emails {
		if e == "team@acme.example" {
			count++
		}
	}
	require.Equal(t, 1, count)
}

func TestEmailsExtractionIsIdempotent(t *testing.T) {
	t.Parallel()

	markup := []byte(`<html><body>
<p>hr@acme.example, chris.miller@acme.example, contact [at] acme [dot] example</p>
<a href="mailto:jobs@acme.example">jobs</a>
</body></html>`)

	first := Emails(markup)
	second := Emails(markup)
	require.Equal(t, first, second)
	require.NotEmpty(t, first)
}

func TestEmailsFromTextSnippets(t *testing.T) {
	t.Parallel()

	emails := EmailsFromText("Acme Corp: send applications to candidature [at] acme [dot] ma today")
	require.Equal(t, []string{"candidature@acme.ma"}, emails)
}

func TestEmailsFromTextSentencePunctuation(t *testing.T) {
	t.Parallel()

	// A full stop after the address must stay punctuation: collapsing it
	// would fabricate "hr@acme.com.we" from the next sentence.
	emails := EmailsFromText("Reach hr@acme.com. We are hiring.")
	require.Equal(t, []string{"hr@acme.com"}, emails)

	// Symmetric spacing around the symbols is still treated as obfuscation.
	emails = EmailsFromText("write to john @ example . com for details")
	require.Equal(t, []string{"john@example.com"}, emails)
}

func TestEmailsRejectsInvalidCandidates(t *testing.T) {
	t.Parallel()

	markup := []byte(`<html><body><a href="mailto:">empty</a>
<p>not-an-address@@example..com</p></body></html>`)
	emails := Emails(markup)
	require.Empty(t, emails)
}
