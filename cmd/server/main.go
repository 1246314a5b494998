package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/MitchellNeaf/pawscheduler/internal/api"
	"github.com/MitchellNeaf/pawscheduler/internal/billing"
	"github.com/MitchellNeaf/pawscheduler/internal/cache"
	"github.com/MitchellNeaf/pawscheduler/internal/config"
	"github.com/MitchellNeaf/pawscheduler/internal/database"
	"github.com/MitchellNeaf/pawscheduler/internal/metrics"
	"github.com/MitchellNeaf/pawscheduler/internal/notify"
	"github.com/MitchellNeaf/pawscheduler/internal/reminders"
	"github.com/MitchellNeaf/pawscheduler/internal/timegrid"
)

func main() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("PAWSCHEDULER_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	if cfg.Redis.Enabled && cfg.Redis.Address != "" {
		rdb, err = cache.Connect(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connect error")
		}
		defer rdb.Close()
	}
	pageCache := cache.New(rdb, cfg.CacheTTL(), logger)

	bookingGrid, err := timegrid.New(cfg.BookingGridBounds())
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid booking grid bounds")
	}
	editorGrid, err := timegrid.New(cfg.EditorGridBounds())
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid editor grid bounds")
	}

	var alerter *notify.TelegramAlerter
	if cfg.Notifications.TelegramToken != "" {
		alerter, err = notify.NewTelegramAlerter(cfg.Notifications.TelegramToken, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram connect error")
		}
	}

	var billingSvc *billing.Service
	if cfg.Stripe.SecretKey != "" {
		billingSvc = billing.New(billing.Config{
			SecretKey:     cfg.Stripe.SecretKey,
			WebhookSecret: cfg.Stripe.WebhookSecret,
			PriceID:       cfg.Stripe.PriceID,
			SuccessURL:    cfg.Stripe.SuccessURL,
			CancelURL:     cfg.Stripe.CancelURL,
			ReturnURL:     cfg.Stripe.ReturnURL,
		}, db, logger)
	}

	if cfg.Reminders.Enabled {
		gateway := notify.NewGateway(cfg.Notifications.GatewayURL, cfg.Notifications.GatewayAPIKey, logger)
		reminderSvc := reminders.NewService(&reminders.Config{
			CheckInterval:      cfg.ReminderCheckInterval(),
			DaysBefore:         cfg.Reminders.DaysBefore,
			MaxConcurrentSends: cfg.Reminders.MaxConcurrentSends,
			SendsPerSecond:     cfg.Reminders.SendsPerSecond,
			Burst:              cfg.Reminders.Burst,
		}, db, gateway, logger)
		reminderSvc.Start()
		defer reminderSvc.Stop()
	}

	if cfg.Backup.Enabled {
		backup := database.NewBackupService(db, database.BackupConfig{
			Enabled:       true,
			Interval:      cfg.BackupInterval(),
			StoragePath:   cfg.Backup.Path,
			RetentionDays: cfg.Backup.RetentionDays,
		}, &logger)
		go backup.Start(ctx)
	}

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, db, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	server := api.NewServer(db, pageCache, bookingGrid, editorGrid, alerter, billingSvc, logger)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort()),
		Handler:      server.Routes(),
		ReadTimeout:  cfg.ServerReadTimeout(),
		WriteTimeout: cfg.ServerWriteTimeout(),
	}

	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	logger.Info().Int("port", cfg.ServerPort()).Msg("pawscheduler started")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("pawscheduler stopped")
}

func startHealthServer(ctx context.Context, port int, db *database.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := db.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
