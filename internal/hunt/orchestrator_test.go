package hunt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/darrassipro/email-hunter/internal/fetch"
	"github.com/darrassipro/email-hunter/internal/metrics"
)

type noopPauser struct{}

func (noopPauser) Pause(context.Context, time.Duration) {}

// stubRoute serves a canned response to any URL containing match.
type stubRoute struct {
	match string
	body  string
	err   error
}

type stubFetcher struct {
	mu     sync.Mutex
	routes []stubRoute
	calls  []string
}

func (s *stubFetcher) Get(_ context.Context, rawURL string, _ http.Header) (fetch.Response, error) {
	s.mu.Lock()
	s.calls = append(s.calls, rawURL)
	s.mu.Unlock()

	for _, r := range s.routes {
		if strings.Contains(rawURL, r.match) {
			if r.err != nil {
				return fetch.Response{URL: rawURL}, r.err
			}
			return fetch.Response{URL: rawURL, StatusCode: 200, Body: []byte(r.body)}, nil
		}
	}
	return fetch.Response{URL: rawURL}, fmt.Errorf("no stub for %s", rawURL)
}

func (s *stubFetcher) callsTo(match string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, u := range s.calls {
		if strings.Contains(u, match) {
			n++
		}
	}
	return n
}

func newTestHunter(f Fetcher) *Hunter {
	h := New(f, Config{
		GoogleBaseURL:   "https://google.test",
		BingBaseURL:     "https://bing.test",
		PageConcurrency: 2,
	}, zap.NewNop())
	h.pause = noopPauser{}
	return h
}

func serpWithLinks(links ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="search">`)
	for _, l := range links {
		fmt.Fprintf(&b, `<div class="yuRUbf"><a href="%s">result</a></div>`, l)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

const emptyShellSERP = `<html><head><title>Google Search</title></head><body>
<form action="/search"><input name="q"></form></body></html>`

const captchaPage = `<html><body>
<p>Our systems have detected unusual traffic from your computer network.</p>
<div class="g-recaptcha" data-sitekey="x"></div>
</body></html>`

func TestRunHarvestsPages(t *testing.T) {
	stub := &stubFetcher{routes: []stubRoute{
		{match: "google.test", body: serpWithLinks("https://acme.example/contact", "https://acme.example/about")},
		{match: "acme.example/contact", body: `<html><body><p>Write to info@acme.example</p></body></html>`},
		{match: "acme.example/about", body: `<html><body><a href="mailto:sales@acme.example">mail</a></body></html>`},
	}}
	h := newTestHunter(stub)

	result, err := h.Run(context.Background(), Request{Query: "Acme", MaxQueries: 1})
	require.NoError(t, err)

	require.False(t, result.CaptchaTriggered)
	require.Equal(t, []string{"info@acme.example", "sales@acme.example"}, result.GeneralEmails)
	require.Empty(t, result.HREmails)
	require.Len(t, result.ScrapedURLs, 2)
	require.Empty(t, result.FailedURLs)
	require.Len(t, result.AllSearchURLs, 1)
	require.Equal(t, 2, result.Stats.PageGeneral)
}

func TestRunCaptchaStopsRemainingQueries(t *testing.T) {
	stub := &stubFetcher{routes: []stubRoute{
		{match: "google.test", body: captchaPage},
	}}
	h := newTestHunter(stub)

	result, err := h.Run(context.Background(), Request{Query: "Acme", MaxQueries: 5})
	require.NoError(t, err)

	require.True(t, result.CaptchaTriggered)
	// The first query trips the detector; the rest never fire, and no
	// page visits happen off a challenge page.
	require.Len(t, result.AllSearchURLs, 1)
	require.Empty(t, result.ScrapedURLs)
	require.Equal(t, 1, stub.callsTo("google.test"))
	require.Equal(t, 0, stub.callsTo("bing.test"))
}

func TestRunFallbackFiresOnceOnZeroLinks(t *testing.T) {
	bingSERP := `<html><body><ol id="b_results">
<li class="b_algo"><h2><a href="https://acme.example">Acme</a></h2>
<div class="b_caption"><p>Recruiting questions: jobs@acme.example</p></div></li>
</ol></body></html>`

	stub := &stubFetcher{routes: []stubRoute{
		{match: "google.test", body: emptyShellSERP},
		{match: "bing.test", body: bingSERP},
	}}
	h := newTestHunter(stub)

	result, err := h.Run(context.Background(), Request{Query: "Acme", HRFocus: true, MaxQueries: 2, CollectDebug: true})
	require.NoError(t, err)

	require.Equal(t, 1, stub.callsTo("bing.test"))
	require.Equal(t, []string{"jobs@acme.example"}, result.HREmails)
	require.Empty(t, result.ScrapedURLs)
	require.Len(t, result.AllSearchURLs, 3)

	require.NotNil(t, result.Debug)
	require.NotNil(t, result.Debug.Fallback)
	require.Equal(t, "bing", result.Debug.Fallback.Engine)
	require.Equal(t, 1, result.Stats.SnippetHR)
	// Link count is surfaced outside the debug trace too.
	require.Equal(t, 1, result.Stats.FallbackLinks)
}

func TestRunNoFallbackWhenLinksExisted(t *testing.T) {
	stub := &stubFetcher{routes: []stubRoute{
		{match: "google.test", body: serpWithLinks("https://acme.example/contact")},
		{match: "acme.example", body: `<html><body>nothing here</body></html>`},
	}}
	h := newTestHunter(stub)

	result, err := h.Run(context.Background(), Request{Query: "Acme", MaxQueries: 1})
	require.NoError(t, err)

	require.Empty(t, result.HREmails)
	require.Empty(t, result.GeneralEmails)
	require.Equal(t, 0, stub.callsTo("bing.test"))
}

func TestRunGlobalBudgetBoundsVisits(t *testing.T) {
	stub := &stubFetcher{routes: []stubRoute{
		{match: "google.test", body: serpWithLinks(
			"https://a.example/1", "https://a.example/2", "https://a.example/3")},
		{match: "a.example", body: `<html><body>plain</body></html>`},
	}}
	h := newTestHunter(stub)

	result, err := h.Run(context.Background(), Request{
		Query: "Acme", MaxQueries: 5, MaxURLsPerQuery: 5, GlobalURLBudget: 1,
	})
	require.NoError(t, err)

	require.Len(t, result.ScrapedURLs, 1)
	// Budget exhaustion also stops further queries.
	require.Equal(t, 1, stub.callsTo("google.test"))
}

func TestRunPerURLFailureDoesNotAbort(t *testing.T) {
	stub := &stubFetcher{routes: []stubRoute{
		{match: "google.test", body: serpWithLinks("https://down.example/x", "https://up.example/y")},
		{match: "down.example", err: errors.New("connection refused")},
		{match: "up.example", body: `<html><body>hello@up.example</body></html>`},
	}}
	h := newTestHunter(stub)

	result, err := h.Run(context.Background(), Request{Query: "Acme", MaxQueries: 1})
	require.NoError(t, err)

	require.Equal(t, []string{"hello@up.example"}, result.GeneralEmails)
	require.Len(t, result.FailedURLs, 1)
	require.Equal(t, FailurePage, result.FailedURLs[0].Type)
	require.Len(t, result.ScrapedURLs, 2)
}

func TestRunSerpFailureRecordedAndRunContinues(t *testing.T) {
	stub := &stubFetcher{routes: []stubRoute{
		{match: "contact+morocco", err: errors.New("timeout")},
		{match: "google.test", body: serpWithLinks("https://acme.example/contact")},
		{match: "acme.example", body: `<html><body>info@acme.example</body></html>`},
	}}
	h := newTestHunter(stub)

	result, err := h.Run(context.Background(), Request{Query: "Acme", MaxQueries: 2})
	require.NoError(t, err)

	require.Len(t, result.FailedURLs, 1)
	require.Equal(t, FailureSearch, result.FailedURLs[0].Type)
	require.Equal(t, []string{"info@acme.example"}, result.GeneralEmails)
	require.Len(t, result.AllSearchURLs, 2)
}

func TestRunCountsBlockedSerpVariants(t *testing.T) {
	stub := &stubFetcher{routes: []stubRoute{
		{match: "google.test", body: emptyShellSERP},
		{match: "bing.test", body: "<html><body></body></html>"},
	}}
	h := newTestHunter(stub)

	before := testutil.ToFloat64(metrics.BlockedSerpsTotal.WithLabelValues("google"))
	_, err := h.Run(context.Background(), Request{Query: "Acme", MaxQueries: 1})
	require.NoError(t, err)
	after := testutil.ToFloat64(metrics.BlockedSerpsTotal.WithLabelValues("google"))
	require.Equal(t, before+1, after)
}

func TestRunEmptyQuery(t *testing.T) {
	h := newTestHunter(&stubFetcher{})
	_, err := h.Run(context.Background(), Request{Query: "   "})
	require.ErrorIs(t, err, ErrEmptyQuery)
}

func TestRunDefaultsAndClamps(t *testing.T) {
	stub := &stubFetcher{routes: []stubRoute{
		{match: "google.test", body: emptyShellSERP},
		{match: "bing.test", body: "<html><body></body></html>"},
	}}
	h := newTestHunter(stub)

	// 99 queries clamps to 10; a non-HR build yields 2, both fire.
	result, err := h.Run(context.Background(), Request{Query: "Acme", MaxQueries: 99})
	require.NoError(t, err)
	require.Len(t, result.AllSearchURLs, 3) // 2 primary + 1 fallback
}
