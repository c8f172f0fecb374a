package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/talentbridge/talentbridge/internal/config"
	"github.com/talentbridge/talentbridge/internal/genai"
	"github.com/talentbridge/talentbridge/internal/genai/gemini"
	"github.com/talentbridge/talentbridge/internal/genai/openai"
	"github.com/talentbridge/talentbridge/internal/interview"
	"github.com/talentbridge/talentbridge/internal/server"
	"github.com/talentbridge/talentbridge/internal/storage"
	memorystore "github.com/talentbridge/talentbridge/internal/storage/memory"
	sqlitestore "github.com/talentbridge/talentbridge/internal/storage/sqlite"
	"github.com/talentbridge/talentbridge/internal/telemetry"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer("talentbridge", logger)
		if err != nil {
			log.Fatalf("Failed to initialize tracer: %v", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
			}
		}()
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	gen, err := buildGenerator(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to build generator: %v", err)
	}

	orch, err := interview.NewOrchestrator(gen, store, logger,
		interview.WithMaxSessions(cfg.Interview.MaxSessions),
		interview.WithGenerateTimeout(cfg.Interview.GenerateTimeout),
	)
	if err != nil {
		log.Fatalf("Failed to create orchestrator: %v", err)
	}

	srv := server.New(cfg.Server.Port, logger, orch, store)

	httpServer := &http.Server{
		Addr:    srv.Addr(),
		Handler: srv.Router,
	}

	go func() {
		logger.Info("starting server", slog.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, stopping server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server shutdown complete")
}

func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.Storage.Driver == "memory" {
		return memorystore.New(), nil
	}
	return sqlitestore.New(cfg.Storage.Path)
}

// buildGenerator selects the generation backend. Returning nil is valid:
// the orchestrator then answers with its deterministic echo.
func buildGenerator(cfg *config.Config, logger *slog.Logger) (genai.Generator, error) {
	if cfg.Generator.APIKey == "" || cfg.Generator.Backend == "stub" || cfg.Generator.Backend == "" {
		logger.Info("no generation backend configured, using stub replies")
		return nil, nil
	}

	switch cfg.Generator.Backend {
	case "openai":
		opts := []openai.ClientOption{}
		if cfg.Generator.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Generator.Model))
		}
		if cfg.Generator.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.Generator.BaseURL))
		}
		return openai.NewClient(cfg.Generator.APIKey, opts...), nil
	case "gemini":
		return gemini.New(context.Background(), cfg.Generator.APIKey, cfg.Generator.Model)
	default:
		logger.Warn("unknown generator backend, using stub replies", slog.String("backend", cfg.Generator.Backend))
		return nil, nil
	}
}
