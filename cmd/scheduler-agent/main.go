package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mirrorday/mirrorday-platform/internal/insights"
	"github.com/mirrorday/mirrorday-platform/internal/reflection"
	"github.com/mirrorday/mirrorday-platform/internal/scheduler"
	"github.com/mirrorday/mirrorday-platform/pkg/config"
	"github.com/mirrorday/mirrorday-platform/pkg/health"
	"github.com/mirrorday/mirrorday-platform/pkg/mqtt"
	"github.com/mirrorday/mirrorday-platform/pkg/postgres"
)

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	// Standard bootstrap (consistent with other agents)
	cfg := config.NewConfig()
	cfg.ServiceName = "scheduler-agent"
	cfg.LoadFromEnv()
	cfg.LoadFromFlags()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("Starting Scheduler Agent",
		"mqtt", cfg.MQTTAddress(),
		"postgres", fmt.Sprintf("%s:%d/%s", cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDB),
		"reminder_hour", cfg.ReminderHour,
		"weekly_day", time.Weekday(cfg.WeeklySummaryDay).String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Initialize clients
	mqttClient := mqtt.NewClient(cfg, logger)
	if err := mqttClient.Connect(ctx); err != nil {
		logger.Error("Failed to connect to MQTT", "error", err)
		os.Exit(1)
	}

	pgClient := postgres.NewClient(cfg, logger)
	if err := pgClient.Connect(ctx); err != nil {
		logger.Error("Failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	store := reflection.NewStorage(pgClient, logger)
	insightStore := insights.NewStore(pgClient)

	sched := scheduler.NewScheduler(store, insightStore, mqttClient,
		cfg.ReminderHour, time.Weekday(cfg.WeeklySummaryDay), cfg.WeeklySummaryHour, logger)

	// Health endpoint
	checker := health.NewChecker(mqttClient, nil, logger)
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/health", checker.HandlerFunc())
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HealthPort)
		if err := http.ListenAndServe(addr, healthMux); err != nil {
			logger.Error("Health server failed", "error", err)
		}
	}()

	go sched.Run(ctx, time.Duration(cfg.TickIntervalSec)*time.Second)

	<-sigChan
	logger.Info("Shutdown signal received")

	cancel()
	mqttClient.Disconnect()
	if err := pgClient.Disconnect(); err != nil {
		logger.Warn("Failed to close postgres connection", "error", err)
	}
	logger.Info("Scheduler agent stopped")
}
