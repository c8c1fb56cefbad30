package hunt

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/darrassipro/email-hunter/internal/classify"
	"github.com/darrassipro/email-hunter/internal/extract"
	"github.com/darrassipro/email-hunter/internal/fetch"
	"github.com/darrassipro/email-hunter/internal/metrics"
	"github.com/darrassipro/email-hunter/internal/serp"
)

// ErrEmptyQuery rejects a run with no base term. This is the only input
// the orchestrator refuses; everything else is clamped.
var ErrEmptyQuery = errors.New("hunt: query must not be empty")

// Fetcher issues one GET. The orchestrator never retries; a failed fetch
// is recorded and the run moves on.
type Fetcher interface {
	Get(ctx context.Context, url string, overrides http.Header) (fetch.Response, error)
}

// Config controls orchestrator behavior. Zero values take defaults.
type Config struct {
	GoogleBaseURL string
	BingBaseURL   string

	// Politeness window between successive primary-engine queries.
	DelayMin time.Duration
	DelayMax time.Duration

	// PageConcurrency bounds parallel page visits within one query.
	// 1 reproduces the sequential reference behavior.
	PageConcurrency int

	// ResultsPerQuery is the result count requested from the engine.
	ResultsPerQuery int

	// Defaults applied to requests that leave the knob at zero.
	DefaultMaxQueries      int
	DefaultMaxURLsPerQuery int
	DefaultGlobalBudget    int
}

func (c Config) withDefaults() Config {
	if c.GoogleBaseURL == "" {
		c.GoogleBaseURL = "https://www.google.com"
	}
	if c.BingBaseURL == "" {
		c.BingBaseURL = "https://www.bing.com"
	}
	if c.DelayMin <= 0 {
		c.DelayMin = 1500 * time.Millisecond
	}
	if c.DelayMax < c.DelayMin {
		c.DelayMax = c.DelayMin + 2*time.Second
	}
	if c.PageConcurrency < 1 {
		c.PageConcurrency = 1
	}
	if c.ResultsPerQuery <= 0 {
		c.ResultsPerQuery = 20
	}
	if c.DefaultMaxQueries <= 0 {
		c.DefaultMaxQueries = 5
	}
	if c.DefaultMaxURLsPerQuery <= 0 {
		c.DefaultMaxURLsPerQuery = 5
	}
	if c.DefaultGlobalBudget <= 0 {
		c.DefaultGlobalBudget = 25
	}
	return c
}

// Hunter runs the search-and-harvest pipeline. One Hunter serves many
// runs; all run state lives in per-run accumulators.
type Hunter struct {
	fetcher Fetcher
	cfg     Config
	logger  *zap.Logger
	pause   pauser
}

// New builds a Hunter.
func New(fetcher Fetcher, cfg Config, logger *zap.Logger) *Hunter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hunter{
		fetcher: fetcher,
		cfg:     cfg.withDefaults(),
		logger:  logger,
		pause:   timerPauser{},
	}
}

// Run executes one hunt. Per-query and per-URL failures are recorded and
// never abort the run; only an empty query is refused.
func (h *Hunter) Run(ctx context.Context, req Request) (Result, error) {
	req = h.normalize(req)
	if req.Query == "" {
		return Result{}, ErrEmptyQuery
	}

	queries := BuildQueries(req.Query, req.HRFocus, req.Country)
	if len(queries) > req.MaxQueries {
		queries = queries[:req.MaxQueries]
	}

	acc := newAccumulator(req.GlobalURLBudget)
	var debug *Debug
	if req.CollectDebug {
		debug = &Debug{Queries: queries}
	}

	captcha := false
	totalLinks := 0
	for i, query := range queries {
		if ctx.Err() != nil {
			break
		}
		// Budgets bound queries too: once no page visit can happen, more
		// SERP traffic only raises block risk.
		if i > 0 && acc.budgetExhausted() {
			break
		}
		if i > 0 {
			h.pause.Pause(ctx, jitterBetween(h.cfg.DelayMin, h.cfg.DelayMax))
		}

		trace := h.runQuery(ctx, i, query, req, acc)
		if debug != nil {
			debug.PerQuery = append(debug.PerQuery, trace)
		}
		totalLinks += len(trace.Links)

		if trace.CaptchaSuspect {
			captcha = true
			metrics.CaptchaDetectionsTotal.Inc()
			h.logger.Warn("captcha suspected, abandoning remaining queries",
				zap.Int("query_index", i), zap.Int("remaining", len(queries)-i-1))
			break
		}
	}

	var fb *FallbackTrace
	if !captcha && totalLinks == 0 && ctx.Err() == nil {
		fb = h.runFallback(ctx, queries[0], req, acc)
		if debug != nil {
			debug.Fallback = fb
		}
	}

	result := acc.result(req.HRFocus)
	result.CaptchaTriggered = captcha
	if fb != nil {
		result.Stats.FallbackLinks = fb.Links
	}
	if debug != nil {
		debug.Aggregate = DebugAggregate{
			HREmails:      len(result.HREmails),
			GeneralEmails: len(result.GeneralEmails),
			Links:         totalLinks,
			PageVisits:    len(result.ScrapedURLs),
		}
		result.Debug = debug
	}

	h.observe(result)
	return result, nil
}

func (h *Hunter) normalize(req Request) Request {
	req.Query = trimmed(req.Query)
	if req.Country == "" {
		req.Country = DefaultCountry
	}
	req.MaxQueries = clamp(req.MaxQueries, h.cfg.DefaultMaxQueries, 1, 10)
	req.MaxURLsPerQuery = clamp(req.MaxURLsPerQuery, h.cfg.DefaultMaxURLsPerQuery, 1, 20)
	req.GlobalURLBudget = clamp(req.GlobalURLBudget, h.cfg.DefaultGlobalBudget, 1, 100)
	return req
}

// runQuery fetches and processes one SERP, then visits its links.
func (h *Hunter) runQuery(ctx context.Context, idx int, query string, req Request, acc *accumulator) QueryTrace {
	searchURL := serp.GoogleSearchURL(h.cfg.GoogleBaseURL, query, h.cfg.ResultsPerQuery)
	acc.addSearchURL(searchURL)
	metrics.SerpQueriesTotal.WithLabelValues("google").Inc()

	trace := QueryTrace{SerpOutcome: SerpOutcome{Query: query, URL: searchURL}}

	resp, err := h.fetcher.Get(ctx, searchURL, nil)
	trace.StatusCode = resp.StatusCode
	if err != nil {
		trace.Error = err.Error()
		acc.addFailed(FailedURL{URL: searchURL, Error: err.Error(), SearchPage: idx, Type: FailureSearch})
		h.logger.Warn("serp fetch failed", zap.Int("query_index", idx), zap.Error(err))
		return trace
	}

	page := serp.ParseGoogle(resp.Body)
	trace.RawLen = len(resp.Body)
	trace.CaptchaSuspect = page.CaptchaSuspect
	trace.BlockedVariant = page.BlockedVariant
	trace.Links = page.Links

	if page.BlockedVariant {
		metrics.BlockedSerpsTotal.WithLabelValues("google").Inc()
		h.logger.Warn("serp looks like a blocked engine shell",
			zap.Int("query_index", idx), zap.Int("raw_len", trace.RawLen))
	}

	// Result snippets often carry addresses directly; harvest them before
	// spending any page budget.
	snippetSets := classify.Classify(extract.EmailsFromText(page.Snippets), page.Snippets, req.HRFocus)
	trace.SnippetEmails = snippetSets
	acc.mergeEmails(snippetSets, sourceSnippet)

	if page.CaptchaSuspect {
		return trace
	}

	links := page.Links
	if len(links) > req.MaxURLsPerQuery {
		links = links[:req.MaxURLsPerQuery]
	}
	trace.Pages = h.visitPages(ctx, idx, links, req, acc)
	return trace
}

// visitPages fans page visits out over a bounded worker pool. The global
// budget is reserved before each goroutine starts, so the invariant holds
// regardless of concurrency.
func (h *Hunter) visitPages(ctx context.Context, queryIdx int, links []string, req Request, acc *accumulator) []PageVisit {
	if len(links) == 0 {
		return nil
	}

	var (
		mu     sync.Mutex
		visits []PageVisit
		wg     sync.WaitGroup
	)
	sem := make(chan struct{}, h.cfg.PageConcurrency)

	for _, link := range links {
		if ctx.Err() != nil {
			break
		}
		if !acc.reserveVisit() {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(link string) {
			defer wg.Done()
			defer func() { <-sem }()
			visit := h.visitPage(ctx, queryIdx, link, req, acc)
			mu.Lock()
			visits = append(visits, visit)
			mu.Unlock()
		}(link)
	}
	wg.Wait()
	return visits
}

func (h *Hunter) visitPage(ctx context.Context, queryIdx int, link string, req Request, acc *accumulator) PageVisit {
	target := serp.Resolve(link)
	visit := PageVisit{URL: target, SearchPage: queryIdx}

	resp, err := h.fetcher.Get(ctx, target, nil)
	visit.StatusCode = resp.StatusCode
	if err != nil {
		visit.Error = err.Error()
		acc.addFailed(FailedURL{URL: target, Error: err.Error(), SearchPage: queryIdx, Type: FailurePage})
		acc.addVisit(visit)
		metrics.PageVisitsTotal.WithLabelValues("failed").Inc()
		h.logger.Debug("page fetch failed", zap.String("url", target), zap.Error(err))
		return visit
	}

	text, candidates := extract.FromHTML(resp.Body)
	sets := classify.Classify(candidates, text, req.HRFocus)
	visit.HRCount = len(sets.HR)
	visit.GeneralCount = len(sets.General)

	acc.mergeEmails(sets, sourcePage)
	acc.addVisit(visit)
	metrics.PageVisitsTotal.WithLabelValues("ok").Inc()
	h.logger.Debug("page visited",
		zap.String("url", target), zap.Int("hr", visit.HRCount), zap.Int("general", visit.GeneralCount))
	return visit
}

// runFallback issues one query to the secondary engine and merges its
// snippet-level addresses only. Its failure never fails the run; it shows
// up in the debug trace when requested.
func (h *Hunter) runFallback(ctx context.Context, query string, req Request, acc *accumulator) *FallbackTrace {
	searchURL := serp.BingSearchURL(h.cfg.BingBaseURL, query)
	acc.addSearchURL(searchURL)
	metrics.SerpQueriesTotal.WithLabelValues("bing").Inc()

	fb := &FallbackTrace{Engine: "bing", Query: query, URL: searchURL}

	resp, err := h.fetcher.Get(ctx, searchURL, nil)
	if err != nil {
		fb.Error = err.Error()
		h.logger.Warn("fallback engine fetch failed", zap.Error(err))
		return fb
	}

	page := serp.ParseBing(resp.Body)
	fb.Links = len(page.Links)
	if page.BlockedVariant {
		metrics.BlockedSerpsTotal.WithLabelValues("bing").Inc()
		h.logger.Warn("fallback serp looks like a blocked engine shell")
	}

	sets := classify.Classify(extract.EmailsFromText(page.Snippets), page.Snippets, req.HRFocus)
	fb.Emails = sets
	acc.mergeEmails(sets, sourceSnippet)
	return fb
}

func (h *Hunter) observe(result Result) {
	outcome := "ok"
	if result.CaptchaTriggered {
		outcome = "captcha"
	}
	metrics.HuntsTotal.WithLabelValues(outcome).Inc()
	metrics.EmailsHarvestedTotal.WithLabelValues("hr").Add(float64(len(result.HREmails)))
	metrics.EmailsHarvestedTotal.WithLabelValues("general").Add(float64(len(result.GeneralEmails)))
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}

func clamp(v, def, min, max int) int {
	if v == 0 {
		v = def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
