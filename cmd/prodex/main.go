package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/prodex-cloud/prodex/internal/catalog"
	catalogPostgres "github.com/prodex-cloud/prodex/internal/catalog/postgres"
	catalogRedis "github.com/prodex-cloud/prodex/internal/catalog/redis"
	"github.com/prodex-cloud/prodex/internal/config"
	"github.com/prodex-cloud/prodex/internal/llm"
	llmAnthropic "github.com/prodex-cloud/prodex/internal/llm/anthropic"
	llmOpenAI "github.com/prodex-cloud/prodex/internal/llm/openai"
	logpkg "github.com/prodex-cloud/prodex/internal/logger"
	"github.com/prodex-cloud/prodex/internal/metrics"
	chiTransport "github.com/prodex-cloud/prodex/internal/transport/chi"
	answeruc "github.com/prodex-cloud/prodex/internal/usecase/answer"
	askuc "github.com/prodex-cloud/prodex/internal/usecase/ask"
	facetsuc "github.com/prodex-cloud/prodex/internal/usecase/facets"
	interpretuc "github.com/prodex-cloud/prodex/internal/usecase/interpret"
	probeuc "github.com/prodex-cloud/prodex/internal/usecase/probe"
	searchuc "github.com/prodex-cloud/prodex/internal/usecase/search"
	"github.com/prodex-cloud/prodex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting prodex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_driver", cfg.Catalog.Driver),
		zap.String("llm_provider", cfg.LLM.Provider),
	)

	// Create catalog store based on driver
	var store catalog.Store
	switch cfg.Catalog.Driver {
	case "postgres":
		store, err = catalogPostgres.NewStore(context.Background(), catalogPostgres.Config{
			URL:   cfg.Catalog.URL,
			Table: cfg.Catalog.Table,
		})
	case "redis":
		store, err = catalogRedis.NewStore(catalogRedis.Config{
			Addrs:     cfg.Catalog.Addrs,
			Password:  cfg.Catalog.Password,
			KeyPrefix: cfg.Catalog.KeyPrefix,
		})
	default:
		logger.Fatal("Unknown catalog driver", zap.String("driver", cfg.Catalog.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create catalog store", zap.Error(err))
	}
	defer store.Close()

	// Wait for the catalog to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Catalog.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Catalog not ready", zap.Error(err))
	}
	logger.Info("Connected to catalog")

	// Register completion metrics explicitly (no init())
	metrics.RegisterCompletionMetrics()

	completer := buildCompleter(cfg.LLM, logger)
	logger.Info("Completion provider created",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("interpret_model", cfg.LLM.InterpretModel),
		zap.String("synthesize_model", cfg.LLM.SynthesizeModel),
	)

	// Create use case services
	probeSvc := probeuc.New(store, logger)
	interpretSvc := interpretuc.New(completer, interpretuc.Config{
		Model:       cfg.LLM.InterpretModel,
		Temperature: cfg.LLM.InterpretTemperature,
	}, logger)
	searchSvc := searchuc.New(store, searchuc.Config{
		AnalyticalLimit: cfg.Search.AnalyticalLimit,
		FallbackLimit:   cfg.Search.FallbackLimit,
	}, logger)
	answerSvc := answeruc.New(completer, answeruc.Config{
		Model:     cfg.LLM.SynthesizeModel,
		MaxTokens: cfg.LLM.SynthesizeMaxTokens,
	}, logger)
	askSvc := askuc.New(probeSvc, interpretSvc, searchSvc, answerSvc, logger)
	facetsSvc := facetsuc.New(store, facetsuc.Config{
		ScanLimit: cfg.Search.FacetScanLimit,
	}, logger)

	// Create chi server
	server := chiTransport.NewServer(askSvc, facetsSvc, store, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildCompleter selects the completion provider by config.
func buildCompleter(cfg config.LLMConfig, logger *zap.Logger) llm.Completer {
	switch cfg.Provider {
	case "anthropic":
		completer, err := llmAnthropic.New(&llmAnthropic.Config{
			APIKey: cfg.APIKey,
			Model:  cfg.InterpretModel,
			Logger: logger,
		})
		if err != nil {
			logger.Fatal("Failed to create anthropic completer", zap.Error(err))
		}
		return completer
	default:
		completer, err := llmOpenAI.New(&llmOpenAI.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.InterpretModel,
			Logger:  logger,
		})
		if err != nil {
			logger.Fatal("Failed to create openai completer", zap.Error(err))
		}
		return completer
	}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]any{
						"success": false,
						"error":   "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
