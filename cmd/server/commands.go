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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/toolwear/internal/config"
	"github.com/mamadbah2/toolwear/internal/observability/metrics"
	"github.com/mamadbah2/toolwear/internal/repository"
	"github.com/mamadbah2/toolwear/internal/repository/mongodb"
	"github.com/mamadbah2/toolwear/internal/repository/sheets"
	"github.com/mamadbah2/toolwear/internal/repository/sqlite"
	"github.com/mamadbah2/toolwear/internal/scheduler"
	"github.com/mamadbah2/toolwear/internal/seed"
	"github.com/mamadbah2/toolwear/internal/server/handlers"
	"github.com/mamadbah2/toolwear/internal/server/router"
	dashboardsvc "github.com/mamadbah2/toolwear/internal/service/dashboard"
	moldsvc "github.com/mamadbah2/toolwear/internal/service/molds"
	reportingsvc "github.com/mamadbah2/toolwear/internal/service/reporting"
	scrapsvc "github.com/mamadbah2/toolwear/internal/service/scrap"
	toolsvc "github.com/mamadbah2/toolwear/internal/service/tools"
	"github.com/mamadbah2/toolwear/pkg/clients/notify"
	"github.com/mamadbah2/toolwear/pkg/logger"
)

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "toolwear",
		Short:         "Tool wear tracking service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file (defaults to ./.env when present)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the scheduled jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), envFile)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Load the demonstration data set into an empty store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd.Context(), envFile)
		},
	})

	return root
}

func bootstrap(envFile string) (*config.Config, *zap.Logger, *time.Location, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, nil, err
	}
	baseLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		return nil, nil, nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, nil, err
	}
	zap.ReplaceGlobals(baseLogger)
	return cfg, baseLogger, loc, nil
}

func openStore(ctx context.Context, cfg *config.Config, baseLogger *zap.Logger) (repository.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverMongoDB:
		return mongodb.NewMongoDBRepository(ctx, cfg.Storage.MongoDB.URI, cfg.Storage.MongoDB.DBName,
			mongodb.Options{Transactions: cfg.Storage.MongoDB.Transactions}, baseLogger.Named("repo.mongodb"))
	case config.DriverSQLite:
		return sqlite.Open(ctx, cfg.Storage.SQLitePath, baseLogger.Named("repo.sqlite"))
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

func runSeed(ctx context.Context, envFile string) error {
	cfg, baseLogger, loc, err := bootstrap(envFile)
	if err != nil {
		return err
	}
	defer func() { _ = baseLogger.Sync() }()

	store, err := openStore(ctx, cfg, baseLogger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close store", zap.Error(err))
		}
	}()

	_, err = seed.Load(ctx, store, time.Now().In(loc), baseLogger.Named("seed"))
	return err
}

func runServe(ctx context.Context, envFile string) error {
	cfg, baseLogger, loc, err := bootstrap(envFile)
	if err != nil {
		return err
	}
	defer func() { _ = baseLogger.Sync() }()

	store, err := openStore(ctx, cfg, baseLogger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close store", zap.Error(err))
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics, err := metrics.New(registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	toolService := toolsvc.NewService(store, appMetrics, baseLogger.Named("svc.tools"))
	moldService := moldsvc.NewService(store, baseLogger.Named("svc.molds"))
	scrapService := scrapsvc.NewService(store, appMetrics, baseLogger.Named("svc.scrap"))
	dashboardService := dashboardsvc.NewService(store, appMetrics, baseLogger.Named("svc.dashboard"))

	var sheetsRepo sheets.Repository
	if cfg.ExportEnabled() {
		repo, err := sheets.NewGoogleSheetRepository(ctx, sheets.Config{
			CredentialsPath: cfg.Sheets.CredentialsPath,
			SpreadsheetID:   cfg.Sheets.SpreadsheetID,
			Range:           cfg.Sheets.ExportRange,
		}, baseLogger.Named("repo.sheets"))
		if err != nil {
			return fmt.Errorf("init sheets repository: %w", err)
		}
		sheetsRepo = repo
	} else {
		baseLogger.Warn("google sheets not configured, monthly export disabled")
	}
	reportingService := reportingsvc.NewService(dashboardService, sheetsRepo, loc, baseLogger.Named("svc.reporting"))

	var notifier notify.Client
	if cfg.AlertsEnabled() {
		notifier = notify.NewClient(notify.Config{URL: cfg.Notify.WebhookURL, Token: cfg.Notify.Token})
	} else {
		baseLogger.Warn("notify webhook not configured, alert digest disabled")
	}

	schedOpts := scheduler.Options{AlertSchedule: cfg.Scheduler.AlertCronSchedule, Location: loc}
	if cfg.ExportEnabled() {
		schedOpts.ExportSchedule = cfg.Scheduler.ExportCronSchedule
	}
	sched := scheduler.NewScheduler(schedOpts, reportingService, notifier, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	engine := router.New(router.Handlers{
		Tools:     handlers.NewToolHandler(toolService, loc, baseLogger.Named("handlers.tools")),
		Molds:     handlers.NewMoldHandler(moldService, scrapService, loc, baseLogger.Named("handlers.molds")),
		Dashboard: handlers.NewDashboardHandler(dashboardService, loc, baseLogger.Named("handlers.dashboard")),
	}, router.Options{Metrics: appMetrics, Gatherer: registry}, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		baseLogger.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server crashed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
	return nil
}
