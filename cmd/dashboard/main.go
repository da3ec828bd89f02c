package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MarketDashboard/internal/chart"
	"MarketDashboard/internal/collector"
	"MarketDashboard/internal/config"
	"MarketDashboard/internal/logger"
	"MarketDashboard/internal/recorder"
	"MarketDashboard/internal/scheduler"
	"MarketDashboard/internal/server"

	"github.com/rs/zerolog/log"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log.Info().Str("config", cfgPath).Msg("MarketDashboard starting")

	// Init fetcher
	fetcher, err := newFetcher(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init data source")
	}
	log.Info().Str("source", fetcher.Name()).Msg("data source ready")

	// Init recorder
	var rec recorder.Recorder = recorder.NewNoopRecorder()
	var sched *scheduler.Scheduler
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			rec = sr
			defer sr.Close()

			sched = scheduler.NewScheduler(sr)
			if err := sched.RegisterAll(cfg.Database.RetentionCron, cfg.Retention()); err != nil {
				log.Fatal().Err(err).Msg("register cron tasks")
			}
			sched.Start()
			defer sched.Stop()
		}
	}

	srv := server.New(
		collector.NewCollector(fetcher),
		chart.NewBuilder(),
		rec,
		server.Defaults{
			Title:  cfg.Dashboard.Title,
			Ticker: cfg.Dashboard.DefaultTicker,
			Start:  cfg.DefaultStartDate(),
		},
		time.Now,
	)
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("dashboard listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info().Msg("shutdown signal received, stopping...")
	case err := <-errCh:
		log.Error().Err(err).Msg("http server failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	log.Info().Msg("MarketDashboard stopped")
}

func newFetcher(cfg *config.Config) (collector.Fetcher, error) {
	ds := cfg.DataSource
	switch ds.Provider {
	case "yahoo":
		return collector.NewYahooFetcher(cfg.Proxy, ds.Timeout), nil
	case "polygon":
		return collector.NewPolygonFetcher(ds.APIKey, cfg.Proxy, ds.Timeout), nil
	case "rest":
		return collector.NewRESTFetcher(ds.BaseURL, ds.APIKey, cfg.Proxy, ds.Timeout), nil
	case "csv":
		return collector.NewCSVFetcher(ds.CSVDir), nil
	case "mock":
		return &collector.MockFetcher{Price: 100}, nil
	}
	return nil, fmt.Errorf("unknown data source provider %q", ds.Provider)
}
