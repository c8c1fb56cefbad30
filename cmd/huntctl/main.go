// Package main implements huntctl, a one-shot CLI runner for the hunt
// pipeline. It shares the service configuration and prints a colorized
// terminal report or raw JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/darrassipro/email-hunter/internal/config"
	"github.com/darrassipro/email-hunter/internal/fetch"
	"github.com/darrassipro/email-hunter/internal/hunt"
	"github.com/darrassipro/email-hunter/internal/logging"
)

func main() {
	var (
		cfgPath    = flag.String("config", "", "Path to config file")
		query      = flag.String("query", "", "Organization or site to hunt (required)")
		hrFocus    = flag.Bool("hr", true, "Prioritize recruiting addresses")
		country    = flag.String("country", "", "Geo modifier appended to queries")
		maxQueries = flag.Int("max-queries", 0, "Query budget (1-10, 0 = config default)")
		maxURLs    = flag.Int("max-urls", 0, "Per-query URL budget (1-20, 0 = config default)")
		budget     = flag.Int("budget", 0, "Global URL budget (1-100, 0 = config default)")
		debug      = flag.Bool("debug", false, "Collect the per-query debug trace")
		asJSON     = flag.Bool("json", false, "Print the raw result JSON")
		timeout    = flag.Duration("timeout", 5*time.Minute, "Overall run deadline")
	)
	flag.Parse()

	if *query == "" {
		fmt.Fprintln(os.Stderr, "huntctl: -query is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	client := fetch.New(fetch.Config{
		UserAgent:      cfg.HTTP.UserAgent,
		AcceptLanguage: cfg.HTTP.AcceptLanguage,
		Timeout:        cfg.FetchTimeout(),
	})
	delayMin, delayMax := cfg.DelayBounds()
	hunter := hunt.New(client, hunt.Config{
		GoogleBaseURL:          cfg.Engines.GoogleBaseURL,
		BingBaseURL:            cfg.Engines.BingBaseURL,
		DelayMin:               delayMin,
		DelayMax:               delayMax,
		PageConcurrency:        cfg.Hunt.PageConcurrency,
		ResultsPerQuery:        cfg.Hunt.ResultsPerQuery,
		DefaultMaxQueries:      cfg.Hunt.MaxQueries,
		DefaultMaxURLsPerQuery: cfg.Hunt.MaxURLsPerQuery,
		DefaultGlobalBudget:    cfg.Hunt.GlobalURLBudget,
	}, logger.Named("hunt"))

	result, err := hunter.Run(ctx, hunt.Request{
		Query:           *query,
		HRFocus:         *hrFocus,
		Country:         *country,
		MaxQueries:      *maxQueries,
		MaxURLsPerQuery: *maxURLs,
		GlobalURLBudget: *budget,
		CollectDebug:    *debug,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "hunt failed: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printReport(result)
	if result.CaptchaTriggered {
		os.Exit(3)
	}
}

func printReport(result hunt.Result) {
	title := color.New(color.FgCyan, color.Bold)
	hrStyle := color.New(color.FgGreen, color.Bold)
	genStyle := color.New(color.FgGreen)
	warn := color.New(color.FgYellow, color.Bold)
	failStyle := color.New(color.FgRed)

	if result.CaptchaTriggered {
		warn.Println("captcha suspected: run stopped early, results are partial")
	}

	title.Printf("HR emails (%d)\n", len(result.HREmails))
	for _, addr := range result.HREmails {
		hrStyle.Printf("  %s\n", addr)
	}

	title.Printf("General emails (%d)\n", len(result.GeneralEmails))
	for _, addr := range result.GeneralEmails {
		genStyle.Printf("  %s\n", addr)
	}

	title.Printf("Pages visited (%d)\n", len(result.ScrapedURLs))
	for _, visit := range result.ScrapedURLs {
		if visit.Error != "" {
			failStyle.Printf("  %s (%s)\n", visit.URL, visit.Error)
			continue
		}
		fmt.Printf("  %s (hr=%d general=%d)\n", visit.URL, visit.HRCount, visit.GeneralCount)
	}

	if len(result.FailedURLs) > 0 {
		title.Printf("Failures (%d)\n", len(result.FailedURLs))
		for _, f := range result.FailedURLs {
			failStyle.Printf("  [%s] %s: %s\n", f.Type, f.URL, f.Error)
		}
	}

	fmt.Printf("queries=%d snippetHits=%d pageHits=%d\n",
		len(result.AllSearchURLs),
		result.Stats.SnippetHR+result.Stats.SnippetGeneral,
		result.Stats.PageHR+result.Stats.PageGeneral)

	if result.Debug != nil {
		title.Println("Debug")
		out, err := json.MarshalIndent(result.Debug, "", "  ")
		if err == nil {
			fmt.Println(string(out))
		}
	}
}
