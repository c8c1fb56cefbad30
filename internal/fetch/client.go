// Package fetch implements the outbound HTTP client using gocolly.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
)

// Spoofed desktop browser identity. Search engines serve a degraded shell
// page to unknown agents, so the client always presents as Chrome.
const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	defaultAcceptLanguage = "en-US,en;q=0.9,fr;q=0.8"
	defaultTimeout        = 15 * time.Second
)

// ErrTimeout marks a fetch that exceeded its wall-clock budget. Callers
// treat it as a distinguished condition, not a generic network failure.
var ErrTimeout = errors.New("fetch timed out")

// StatusError reports a non-success HTTP status on an otherwise completed
// request.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Config controls client behavior.
type Config struct {
	UserAgent      string
	AcceptLanguage string
	Timeout        time.Duration
}

// Response is the outcome of a single GET.
type Response struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// Client issues single GET requests through per-call collectors that share
// one pooled transport. It never retries; retry policy belongs to the
// orchestrator.
type Client struct {
	cfg       Config
	transport *http.Transport
}

// New builds a Client with a pooled transport.
func New(cfg Config) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.AcceptLanguage == "" {
		cfg.AcceptLanguage = defaultAcceptLanguage
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{cfg: cfg, transport: newHTTPTransport()}
}

// outcome carries the consolidated result of one Visit across the
// goroutine boundary. It is sent exactly once, on a buffered channel, so a
// call that returned early never shares memory with a late response.
type outcome struct {
	resp Response
	err  error
}

// Get fetches rawURL with spoofed browser headers. Optional overrides are
// applied after the defaults. The call is bounded by ctx and the configured
// timeout; when either fires the in-flight request is aborted, not merely
// abandoned.
func (c *Client) Get(ctx context.Context, rawURL string, overrides http.Header) (Response, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	collector := colly.NewCollector()
	collector.Async = false
	collector.AllowURLRevisit = true
	collector.IgnoreRobotsTxt = true
	collector.UserAgent = c.cfg.UserAgent
	collector.SetRequestTimeout(c.cfg.Timeout)
	// Binding the transport to ctx is what makes cancellation abort the
	// request mid-flight instead of leaving it running.
	collector.WithTransport(&ctxTransport{ctx: ctx, base: c.transport})

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", c.cfg.AcceptLanguage)
		for key, values := range overrides {
			r.Headers.Del(key)
			for _, v := range values {
				r.Headers.Add(key, v)
			}
		}
	})

	done := make(chan outcome, 1)
	go func() {
		var out outcome
		collector.OnResponse(func(r *colly.Response) {
			out.resp = Response{
				URL:        r.Request.URL.String(),
				StatusCode: r.StatusCode,
				Body:       append([]byte(nil), r.Body...),
			}
		})
		collector.OnError(func(r *colly.Response, err error) {
			if r != nil && r.Request != nil {
				out.resp.URL = r.Request.URL.String()
				out.resp.StatusCode = r.StatusCode
			}
			out.err = err
		})
		if err := collector.Visit(rawURL); err != nil && out.err == nil {
			out.err = err
		}
		out.resp.Duration = time.Since(start)
		done <- out
	}()

	select {
	case <-ctx.Done():
		// The ctx-bound transport is tearing the request down; report the
		// wall clock that actually elapsed, not the configured budget.
		elapsed := time.Since(start).Round(time.Millisecond)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Response{URL: rawURL, Duration: elapsed}, fmt.Errorf("%w after %s", ErrTimeout, elapsed)
		}
		return Response{URL: rawURL, Duration: elapsed}, fmt.Errorf("fetch canceled: %w", ctx.Err())
	case out := <-done:
		if out.err == nil {
			return out.resp, nil
		}
		return out.resp, c.classify(out.err, out.resp.StatusCode)
	}
}

// classify maps transport errors onto the error kinds the orchestrator
// distinguishes.
func (c *Client) classify(err error, status int) error {
	if status >= 400 {
		return &StatusError{Code: status}
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("fetch canceled: %w", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("fetch failed: %w", err)
}

// ctxTransport rebinds each outgoing request to the call's context before
// delegating to the shared pooled transport.
type ctxTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t *ctxTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
