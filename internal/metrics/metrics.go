// Package metrics exposes Prometheus collectors for the hunter service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HuntsTotal tracks completed hunt runs labeled by outcome.
	HuntsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hunter_hunts_total",
		Help: "Total number of hunt runs, labeled by outcome (ok, captcha, error).",
	}, []string{"outcome"})

	// SerpQueriesTotal tracks search result pages requested, labeled by engine.
	SerpQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hunter_serp_queries_total",
		Help: "Total number of search engine queries issued, labeled by engine.",
	}, []string{"engine"})

	// PageVisitsTotal tracks candidate page fetches, labeled by result.
	PageVisitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hunter_page_visits_total",
		Help: "Total number of candidate pages visited, labeled by result (ok, failed).",
	}, []string{"result"})

	// BlockedSerpsTotal counts result pages that parsed as an engine shell
	// with no result containers, the advisory variant of a block.
	BlockedSerpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hunter_blocked_serps_total",
		Help: "Total number of result pages that looked like a blocked or degraded engine shell, labeled by engine.",
	}, []string{"engine"})

	// CaptchaDetectionsTotal counts runs cut short by engine-side captchas.
	CaptchaDetectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hunter_captcha_detections_total",
		Help: "Total number of captcha or block pages detected on the primary engine.",
	})

	// EmailsHarvestedTotal counts unique addresses found, labeled by class.
	EmailsHarvestedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hunter_emails_harvested_total",
		Help: "Total number of unique email addresses harvested, labeled by class (hr, general).",
	}, []string{"class"})
)
