// Package main wires together the hunt service binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/darrassipro/email-hunter/internal/api"
	"github.com/darrassipro/email-hunter/internal/config"
	"github.com/darrassipro/email-hunter/internal/fetch"
	"github.com/darrassipro/email-hunter/internal/hunt"
	"github.com/darrassipro/email-hunter/internal/logging"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

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
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	apiServer := api.NewServer(hunter, cfg, logger.Named("api"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
