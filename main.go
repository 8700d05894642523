// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/safeweb/anomaly"
	"github.com/danielhkuo/safeweb/cache"
	"github.com/danielhkuo/safeweb/cliparse"
	"github.com/danielhkuo/safeweb/db"
	"github.com/danielhkuo/safeweb/fetcher"
	"github.com/danielhkuo/safeweb/ingest"
	"github.com/danielhkuo/safeweb/live"
	"github.com/danielhkuo/safeweb/logging"
	"github.com/danielhkuo/safeweb/metrics"
	"github.com/danielhkuo/safeweb/middleware"
	"github.com/danielhkuo/safeweb/mirror"
	"github.com/danielhkuo/safeweb/notify"
	"github.com/danielhkuo/safeweb/router"
	"github.com/danielhkuo/safeweb/store"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}
	logging.Setup(os.Stderr, cfg.LogFormat, cfg.LogLevel)

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn, cfg.DatabaseType); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	st, err := store.New(dbConn, cfg.DatabaseType)
	if err != nil {
		slog.Error("store setup failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	hub := live.NewHub(cfg.AllowedOrigins)

	svc := ingest.NewService(st, anomaly.FromConfig(cfg))
	svc.Metrics = m
	svc.Live = hub

	services := router.Services{Store: st, Ingest: svc, Live: hub, Metrics: m}

	// Optional side channels. Only assign them when configured so the
	// interfaces stay nil otherwise.
	if cfg.InfluxURL != "" {
		mir, err := mirror.New(mirror.Config{
			URL:    cfg.InfluxURL,
			Token:  cfg.InfluxToken,
			Org:    cfg.InfluxOrg,
			Bucket: cfg.InfluxBucket,
		})
		if err != nil {
			slog.Error("influx mirror setup failed", "error", err)
			os.Exit(1)
		}
		defer func() {
			slog.Info("influx mirror closed", "breaker", mir.State(), "since_last_error", mir.LastErrorAge())
			mir.Close()
		}()
		svc.Mirror = mir
		slog.Info("Mirroring readings to InfluxDB", "url", cfg.InfluxURL, "bucket", cfg.InfluxBucket)
	}

	if cfg.RedisAddr != "" {
		latest := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisTTL)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := latest.Ping(pingCtx); err != nil {
			slog.Warn("redis unreachable, latest_data will fall back to the database", "addr", cfg.RedisAddr, "error", err)
		}
		cancel()
		defer latest.Close()
		svc.Cache = latest
		services.Cache = latest
	}

	if cfg.SMTPHost != "" && cfg.AlertEmailTo != "" {
		mailer, err := notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.AlertEmailFrom, cfg.AlertEmailTo)
		if err != nil {
			slog.Warn("alert emails disabled, set ALERT_EMAIL_FROM or SMTP_USERNAME", "error", err)
		} else {
			go mailer.Run(ctx)
			svc.Notifier = mailer
			slog.Info("Alert emails enabled", "from", cfg.AlertEmailFrom, "to", cfg.AlertEmailTo)
		}
	}

	// Background ingestion: MQTT wins over HTTP polling
	var source fetcher.Fetcher
	switch {
	case cfg.MQTTBroker != "":
		source = fetcher.NewMQTT(fetcher.MQTTConfig{
			Broker:   cfg.MQTTBroker,
			Topic:    cfg.MQTTTopic,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
			ClientID: cfg.MQTTClientID,
		}, svc)
	case cfg.FetchURL != "":
		source = fetcher.NewPoller(cfg.FetchURL, cfg.FetchInterval, svc)
	}
	if source != nil {
		services.Fetcher = source
		go func() {
			if err := source.Run(ctx); err != nil {
				slog.Error("fetcher stopped", "error", err)
			}
		}()
	} else {
		slog.Info("No fetcher configured; readings arrive through POST /api/v1/readings only")
	}

	// Create router
	mux := router.NewRouter(services, cfg)

	// Create server
	server := &http.Server{
		Handler:           middleware.CORS(cfg.AllowedOrigins, middleware.Instrument(m, mux)),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		// Wait for Ctrl-C or SIGTERM
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed")
	}
}
