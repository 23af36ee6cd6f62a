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

	"github.com/mirrorday/mirrorday-platform/internal/api"
	"github.com/mirrorday/mirrorday-platform/internal/emotion"
	"github.com/mirrorday/mirrorday-platform/internal/explain"
	"github.com/mirrorday/mirrorday-platform/internal/feedback"
	"github.com/mirrorday/mirrorday-platform/internal/insights"
	"github.com/mirrorday/mirrorday-platform/internal/moderation"
	"github.com/mirrorday/mirrorday-platform/internal/reflection"
	"github.com/mirrorday/mirrorday-platform/internal/style"
	"github.com/mirrorday/mirrorday-platform/pkg/config"
	"github.com/mirrorday/mirrorday-platform/pkg/diffusion"
	"github.com/mirrorday/mirrorday-platform/pkg/gemini"
	"github.com/mirrorday/mirrorday-platform/pkg/health"
	"github.com/mirrorday/mirrorday-platform/pkg/mqtt"
	"github.com/mirrorday/mirrorday-platform/pkg/postgres"
	"github.com/mirrorday/mirrorday-platform/pkg/redis"
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
	cfg.ServiceName = "reflection-agent"
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

	logger.Info("Starting Reflection Agent",
		"mqtt", cfg.MQTTAddress(),
		"redis", cfg.RedisAddress(),
		"postgres", fmt.Sprintf("%s:%d/%s", cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDB),
		"api_port", cfg.APIPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Lexicon: built-in defaults, optionally overlaid from a YAML file.
	data := emotion.DefaultData()
	if cfg.LexiconPath != "" {
		loaded, err := emotion.LoadData(cfg.LexiconPath)
		if err != nil {
			logger.Error("Failed to load lexicon overlay", "path", cfg.LexiconPath, "error", err)
			os.Exit(1)
		}
		data = loaded
	}
	lexicon, err := emotion.Compile(data)
	if err != nil {
		logger.Error("Invalid lexicon configuration", "error", err)
		os.Exit(1)
	}

	// Initialize clients
	mqttClient := mqtt.NewClient(cfg, logger)
	if err := mqttClient.Connect(ctx); err != nil {
		logger.Error("Failed to connect to MQTT", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(cfg, logger)
	if err := redisClient.Ping(ctx); err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	pgClient := postgres.NewClient(cfg, logger)
	if err := pgClient.Connect(ctx); err != nil {
		logger.Error("Failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	if pc, ok := pgClient.(*postgres.PostgresClient); ok {
		if err := pc.Migrate(cfg.MigrationsDir, logger); err != nil {
			logger.Error("Failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	geminiClient := gemini.NewClient(cfg.GeminiEndpoint, cfg.GeminiModel, cfg.GeminiAPIKey, logger)
	diffusionClient := diffusion.NewClient(cfg.DiffusionEndpoint, cfg.DiffusionModel,
		cfg.DiffusionAPIToken, time.Duration(cfg.GenerationTimeout)*time.Second, logger)

	store := reflection.NewStorage(pgClient, logger)
	prefStore := feedback.NewStore(pgClient, logger)
	insightStore := insights.NewStore(pgClient)

	processor := reflection.NewProcessor(
		emotion.NewDetector(lexicon),
		style.NewBuilder(lexicon),
		explain.NewSynthesizer(lexicon),
		moderation.NewValidator(reflection.NewPromptRewriter(geminiClient), logger),
		geminiClient,
		diffusionClient,
		store,
		prefStore,
		reflection.NewDailyLimiter(redisClient, cfg.DailyImageLimit),
		reflection.NewFileSink(cfg.ImageDir),
		mqttClient,
		logger,
	)

	// Health endpoint
	checker := health.NewChecker(mqttClient, redisClient, logger)
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/health", checker.HandlerFunc())
	healthMux.HandleFunc("/health/detailed", checker.DetailedHandlerFunc())
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HealthPort)
		if err := http.ListenAndServe(addr, healthMux); err != nil {
			logger.Error("Health server failed", "error", err)
		}
	}()

	// API server
	server := api.NewServer(processor, store, insightStore, cfg.ImageDir, logger)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Run(cfg.APIPort)
	}()

	// Wait for shutdown
	select {
	case <-sigChan:
		logger.Info("Shutdown signal received")
	case err := <-serverErr:
		logger.Error("API server failed", "error", err)
	}

	cancel()
	mqttClient.Disconnect()
	if err := redisClient.Close(); err != nil {
		logger.Warn("Failed to close Redis connection", "error", err)
	}
	if err := pgClient.Disconnect(); err != nil {
		logger.Warn("Failed to close postgres connection", "error", err)
	}
	logger.Info("Reflection agent stopped")
}
