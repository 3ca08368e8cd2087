package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/voicescribe/voicescribe/internal/api"
	"github.com/voicescribe/voicescribe/internal/api/handlers"
	"github.com/voicescribe/voicescribe/internal/cache"
	"github.com/voicescribe/voicescribe/internal/cleanup"
	"github.com/voicescribe/voicescribe/internal/config"
	"github.com/voicescribe/voicescribe/internal/database"
	"github.com/voicescribe/voicescribe/internal/history"
	"github.com/voicescribe/voicescribe/internal/llm"
	"github.com/voicescribe/voicescribe/internal/pipeline"
	"github.com/voicescribe/voicescribe/internal/stt"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// The system prompt is read once; edit the file and restart to
	// change how transcripts are cleaned.
	promptBytes, err := os.ReadFile(cfg.Pipeline.PromptPath)
	if err != nil {
		slog.Error("failed to read system prompt", "path", cfg.Pipeline.PromptPath, "error", err)
		os.Exit(1)
	}
	systemPrompt := strings.TrimSpace(string(promptBytes))

	ctx := context.Background()

	// History store (optional — gracefully handle missing DATABASE_URL)
	var historyStore *history.Store
	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Warn("database unavailable, running without history", "error", err)
		db = nil
	} else {
		defer db.Close()
		historyStore = history.NewStore(db)
		if err := historyStore.Init(ctx); err != nil {
			slog.Warn("history schema init failed, running without history", "error", err)
			historyStore = nil
		}
	}

	// Transcript cache (optional — needs Redis and a nonzero TTL)
	var transcriptCache *cache.TranscriptCache
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, running without transcript cache", "error", err)
		rdb.Close()
		rdb = nil
	} else {
		defer rdb.Close()
		if cfg.Pipeline.CacheTTL > 0 {
			transcriptCache = cache.NewTranscriptCache(rdb, cfg.Pipeline.CacheTTL)
		}
	}

	var sttProvider stt.STTProvider
	switch cfg.STT.Backend {
	case "local":
		sttProvider = stt.NewLocalSTT(stt.LocalSTTConfig{
			BaseURL: cfg.STT.LocalBaseURL,
			Model:   cfg.STT.Model,
		})
	default:
		sttProvider = stt.NewOpenAISTT(stt.OpenAISTTConfig{
			APIKey:  cfg.STT.OpenAIKey,
			BaseURL: cfg.STT.OpenAIBaseURL,
			Model:   cfg.STT.Model,
		})
	}

	gateway := llm.NewGateway(cfg.LLM)
	cleaner := cleanup.NewCleaner(gateway, cleanup.Options{
		Model:         cfg.LLM.Model,
		DefaultPrompt: systemPrompt,
		Temperature:   cfg.LLM.Temperature,
		MaxTokens:     cfg.LLM.MaxTokens,
	})

	pipe := pipeline.New(sttProvider, cleaner, cfg.STT.Language, cfg.STT.BeamSize)

	router := api.NewRouter(pipe, transcriptCache, historyStore, db, rdb, handlers.ModelIDs{
		STTBackend:  sttProvider.Name(),
		LLMProvider: cfg.LLM.Provider,
		LLMModel:    cfg.LLM.Model,
	})
	handler := router.Setup()

	srv := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     handler,
		ReadTimeout: 30 * time.Second,
		// No write timeout: a cold whisper model can take minutes.
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		slog.Info("starting API server",
			"addr", cfg.Addr(),
			"stt_backend", sttProvider.Name(),
			"llm_provider", cfg.LLM.Provider,
			"llm_model", cfg.LLM.Model,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
