package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/laundryconnect/laundryconnect/internal/app"
	"github.com/laundryconnect/laundryconnect/internal/notify"
	"github.com/laundryconnect/laundryconnect/internal/observability"
	"github.com/laundryconnect/laundryconnect/internal/platform/cache"
	reporthttp "github.com/laundryconnect/laundryconnect/internal/reports/http"
	"github.com/laundryconnect/laundryconnect/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	notifier := notify.Multi{notify.LogNotifier{Logger: logger}}
	var feed reporthttp.NotificationFeed
	if cfg.RedisAddr != "" {
		redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr})
		if err != nil {
			logger.Error("connect redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		redisNotifier := notify.NewRedisNotifier(redisClient, cfg.NotifyChannel, logger)
		notifier = append(notifier, redisNotifier)
		feed = redisNotifier
	}

	metrics := observability.NewMetrics()
	gotenberg := report.NewClient(cfg.GotenbergURL).WithHTTPClient(&http.Client{Timeout: cfg.AppRequestTimeout})

	service, err := app.NewReportService(cfg, app.ServiceDeps{
		Logger:    logger,
		Notifier:  notifier,
		Recorder:  metrics,
		Gotenberg: gotenberg,
	})
	if err != nil {
		logger.Error("build report service", slog.Any("error", err))
		os.Exit(1)
	}

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		ReportsHandler: reporthttp.NewHandler(logger, service, feed).WithRateLimit(cfg.ReportRateLimit),
		GotenbergPing:  report.NewHandler(gotenberg, logger),
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	}
}
