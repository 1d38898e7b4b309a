package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	apihttp "fleet-monitor/internal/api/http"
	"fleet-monitor/internal/audit"
	"fleet-monitor/internal/bot"
	"fleet-monitor/internal/bot/telegram"
	"fleet-monitor/internal/fleet/application"
	"fleet-monitor/internal/fleet/infrastructure/postgres"
	"fleet-monitor/internal/observability/metrics"
	"fleet-monitor/internal/session"
)

func main() {
	cfg := loadConfig()

	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	logger := zl.Sugar()

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalw("db open error", "error", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalw("db ping error", "error", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	vehicleRepo := postgres.NewVehicleRepository(db)
	positionRepo := postgres.NewPositionRepository(db)

	service, err := application.NewTrackingService(vehicleRepo, positionRepo, logger,
		application.WithAuditLogger(auditRepo),
	)
	if err != nil {
		logger.Fatalw("tracking service error", "error", err)
	}

	var webhook http.Handler
	if cfg.TelegramToken != "" {
		botCfg, err := bot.LoadConfig(cfg.BotConfigPath)
		if err != nil {
			logger.Fatalw("bot config error", "path", cfg.BotConfigPath, "error", err)
		}
		client, err := telegram.NewClient(cfg.TelegramAPIBase, cfg.TelegramToken)
		if err != nil {
			logger.Fatalw("telegram client error", "error", err)
		}
		handler, err := bot.NewHandler(session.NewStore(), service, client, botCfg.Prompts, logger)
		if err != nil {
			logger.Fatalw("bot handler error", "error", err)
		}
		webhook, err = telegram.NewWebhookHandler(handler, cfg.WebhookSecret, logger)
		if err != nil {
			logger.Fatalw("webhook handler error", "error", err)
		}

		if cfg.PublicURL != "" {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			url := cfg.PublicURL + "/telegram/webhook/" + cfg.WebhookSecret
			if err := client.SetWebhook(ctx, url); err != nil {
				logger.Warnw("webhook registration failed", "error", err)
			}
			cancel()
		}
	} else {
		logger.Infow("telegram token not set, running api-only")
	}

	router := apihttp.NewRouter(service, webhook, logger)

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(router, logger)}
	logger.Infow("http listening", "addr", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL     string
	HTTPAddr        string
	TelegramToken   string
	TelegramAPIBase string
	WebhookSecret   string
	PublicURL       string
	BotConfigPath   string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:     getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:        getenvDefault("HTTP_ADDR", ":8080"),
		TelegramToken:   getenvDefault("TELEGRAM_TOKEN", ""),
		TelegramAPIBase: getenvDefault("TELEGRAM_API_BASE", ""),
		WebhookSecret:   getenvDefault("TELEGRAM_WEBHOOK_SECRET", ""),
		PublicURL:       getenvDefault("PUBLIC_URL", ""),
		BotConfigPath:   getenvDefault("BOT_CONFIG", ""),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.TelegramToken != "" && cfg.WebhookSecret == "" {
		log.Fatal("TELEGRAM_WEBHOOK_SECRET is required when TELEGRAM_TOKEN is set")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *zap.SugaredLogger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Infow("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", resp.status,
			"duration", time.Since(start),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
