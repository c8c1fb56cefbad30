// Package hunt implements the search-and-harvest pipeline: query
// construction, SERP iteration under budgets, page visits, email
// extraction and classification, and the captcha/fallback control flow.
package hunt

import (
	"github.com/darrassipro/email-hunter/internal/classify"
)

// DefaultCountry is the geo modifier applied when the request leaves it
// blank.
const DefaultCountry = "morocco"

// Failure types recorded in Result.FailedURLs.
const (
	FailureSearch = "search"
	FailurePage   = "page"
)

// Request describes one hunt run. It is immutable once handed to Run.
type Request struct {
	Query           string `json:"query"`
	HRFocus         bool   `json:"hrFocus"`
	Country         string `json:"country"`
	MaxQueries      int    `json:"maxQueries"`
	MaxURLsPerQuery int    `json:"maxUrlsPerQuery"`
	GlobalURLBudget int    `json:"globalUrlBudget"`
	CollectDebug    bool   `json:"collectDebug"`
}

// SerpOutcome records the result of one search engine query.
type SerpOutcome struct {
	Query          string        `json:"query"`
	URL            string        `json:"url"`
	StatusCode     int           `json:"status,omitempty"`
	Error          string        `json:"error,omitempty"`
	RawLen         int           `json:"rawLen"`
	CaptchaSuspect bool          `json:"captchaSuspect"`
	BlockedVariant bool          `json:"blockedVariant"`
	Links          []string      `json:"links"`
	SnippetEmails  classify.Sets `json:"snippetEmails"`
}

// PageVisit records one candidate page fetch.
type PageVisit struct {
	URL          string `json:"url"`
	SearchPage   int    `json:"searchPage"`
	StatusCode   int    `json:"status,omitempty"`
	HRCount      int    `json:"hrCount"`
	GeneralCount int    `json:"generalCount"`
	Error        string `json:"error,omitempty"`
}

// FailedURL records a fetch that did not produce content.
type FailedURL struct {
	URL        string `json:"url"`
	Error      string `json:"error"`
	SearchPage int    `json:"searchPage"`
	Type       string `json:"type"`
}

// Stats breaks harvested address counts down by origin and class.
// FallbackLinks is the number of result links the secondary engine
// returned; clients use it to tell an engine block from a merely
// fruitless fallback.
type Stats struct {
	SnippetHR      int `json:"snippetHr"`
	SnippetGeneral int `json:"snippetGeneral"`
	PageHR         int `json:"pageHr"`
	PageGeneral    int `json:"pageGeneral"`
	FallbackLinks  int `json:"fallbackLinks"`
}

// QueryTrace is the debug view of one query: its SERP outcome plus the
// page visits it triggered.
type QueryTrace struct {
	SerpOutcome
	Pages []PageVisit `json:"pages"`
}

// FallbackTrace is the debug view of the secondary engine attempt.
type FallbackTrace struct {
	Engine string        `json:"engine"`
	Query  string        `json:"query"`
	URL    string        `json:"url"`
	Error  string        `json:"error,omitempty"`
	Links  int           `json:"links"`
	Emails classify.Sets `json:"emails"`
}

// DebugAggregate summarizes the run for the debug trace.
type DebugAggregate struct {
	HREmails      int `json:"hrEmails"`
	GeneralEmails int `json:"generalEmails"`
	Links         int `json:"links"`
	PageVisits    int `json:"pageVisits"`
}

// Debug is attached to the Result only when the request asks for it.
type Debug struct {
	Queries   []string       `json:"queries"`
	PerQuery  []QueryTrace   `json:"perQuery"`
	Aggregate DebugAggregate `json:"aggregate"`
	Fallback  *FallbackTrace `json:"fallback,omitempty"`
}

// Result is the terminal aggregate of one hunt run. HREmails and
// GeneralEmails are unique and disjoint (case-insensitive).
type Result struct {
	CaptchaTriggered bool        `json:"captchaTriggered"`
	HREmails         []string    `json:"hrEmails"`
	GeneralEmails    []string    `json:"generalEmails"`
	ScrapedURLs      []PageVisit `json:"scrapedUrls"`
	FailedURLs       []FailedURL `json:"failedUrls"`
	AllSearchURLs    []string    `json:"allSearchUrls"`
	Stats            Stats       `json:"stats"`
	Debug            *Debug      `json:"debug,omitempty"`
}
