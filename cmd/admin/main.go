package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"notifyadmin/internal/config"
	"notifyadmin/internal/httpserver"
	"notifyadmin/internal/logging"
	"notifyadmin/internal/notify"
	"notifyadmin/internal/observability"
	"notifyadmin/internal/preview"
	"notifyadmin/internal/session"
	"notifyadmin/internal/telemetry"
	"notifyadmin/internal/uploads"
)

func main() {
	cfg := config.LoadAdmin()
	logger := logging.Init("admin", cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	observability.Register(prometheus.DefaultRegisterer)

	var sessions session.Store
	var readyChecks []httpserver.ReadyzCheck
	switch cfg.SessionBackend {
	case "postgres":
		db, err := pgxpool.New(ctx, cfg.SessionDSN)
		if err != nil {
			slog.Error("admin db connect failed", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		sessions = session.NewPGStore(db, time.Duration(cfg.SessionTTL)*time.Second)
		readyChecks = append(readyChecks, db.Ping)
	default:
		sessions = session.NewMemoryStore(time.Duration(cfg.SessionTTL) * time.Second)
	}

	awsCfg, err := uploads.NewAWSConfig(ctx, cfg.AWSRegion, cfg.LocalstackEndpoint)
	if err != nil {
		slog.Error("admin aws config failed", "err", err)
		os.Exit(1)
	}
	uploadStore := uploads.NewS3Store(uploads.NewS3Client(awsCfg, cfg.LocalstackEndpoint), cfg.UploadBucket)

	notifyClient := notify.NewClient(cfg.NotifyAPIBaseURL, cfg.NotifyAPIKey, nil)

	var sink telemetry.Sink
	if cfg.EventsQueueURL != "" {
		sink = &telemetry.SQSSink{
			SQS:      uploads.NewSQSClient(awsCfg, cfg.LocalstackEndpoint),
			QueueURL: cfg.EventsQueueURL,
		}
	} else {
		sink = &telemetry.APISink{Events: notifyClient}
	}
	events := telemetry.NewEmitter(sink, cfg.EventsPerSecond, cfg.EventsBurst, logger)

	api := &httpserver.API{
		Notify:         notifyClient,
		Sessions:       sessions,
		Uploads:        uploadStore,
		Preview:        preview.NewRenderer(cfg.TemplatePreviewBaseURL, cfg.TemplatePreviewAPIKey, nil),
		Events:         events,
		Logger:         logger,
		MaxRows:        cfg.MaxUploadRows,
		PreviewRows:    cfg.PreviewRows,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}

	s := httpserver.New()
	api.Register(s.Mux)
	s.Mux.HandleFunc("/healthz", httpserver.Healthz())
	s.Mux.HandleFunc("/readyz", httpserver.Readyz(2*time.Second, readyChecks...))

	handler := httpserver.Logging(httpserver.Metrics(observability.AdminRequests)(s.Mux))
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	metricsSrv := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: promhttp.Handler(),
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("admin metrics server failed", "err", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("admin shutdown", "signal", sig.String())
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	slog.Info("admin listening", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("admin server failed", "err", err)
		os.Exit(1)
	}
}
