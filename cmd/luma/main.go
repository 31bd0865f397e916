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

	"github.com/lumakr/luma/internal/config"
	dbMongo "github.com/lumakr/luma/internal/db/mongo"
	dbRedis "github.com/lumakr/luma/internal/db/redis"
	"github.com/lumakr/luma/internal/fetch"
	logpkg "github.com/lumakr/luma/internal/logger"
	"github.com/lumakr/luma/internal/metrics"
	"github.com/lumakr/luma/internal/repository/blob"
	recordrepo "github.com/lumakr/luma/internal/repository/record"
	"github.com/lumakr/luma/internal/repository/searchindex"
	chiTransport "github.com/lumakr/luma/internal/transport/chi"
	mediauc "github.com/lumakr/luma/internal/usecase/media"
	projectuc "github.com/lumakr/luma/internal/usecase/project"
	searchuc "github.com/lumakr/luma/internal/usecase/search"
	"github.com/lumakr/luma/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting luma API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("mongo_db", cfg.Mongo.Database),
		zap.Strings("search_addrs", cfg.Search.Addrs),
	)

	ctx := context.Background()

	// Document store
	mongoClient, err := dbMongo.Connect(ctx, dbMongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		logger.Fatal("Failed to create document store client", zap.Error(err))
	}
	defer func() { _ = mongoClient.Close(ctx) }()

	if err := mongoClient.WaitForReady(ctx, time.Duration(cfg.Mongo.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Document store not ready", zap.Error(err))
	}
	logger.Info("Connected to document store")

	// Search engine
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Search.Addrs,
		Username: cfg.Search.Username,
		Password: cfg.Search.Password,
		DB:       cfg.Search.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create search store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Search.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Search store not ready", zap.Error(err))
	}
	logger.Info("Connected to search store")

	// Repositories
	recordRepo := recordrepo.NewRepository(mongoClient.Database())
	blobStore, err := blob.NewStore(mongoClient.Database())
	if err != nil {
		logger.Fatal("Failed to create blob store", zap.Error(err))
	}
	indexRepo := searchindex.NewRepository(store, cfg.Search.KeyPrefix)

	if err := recordRepo.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to ensure record indexes", zap.Error(err))
	}
	if err := blobStore.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to ensure blob indexes", zap.Error(err))
	}

	// Use case services
	httpClient := &http.Client{Timeout: time.Duration(cfg.Fetch.TimeoutSec) * time.Second}
	fetcher := fetch.New(httpClient, fetch.Config{
		MaxRetries: cfg.Fetch.MaxRetries,
		RetryDelay: time.Duration(cfg.Fetch.RetryDelaySec) * time.Second,
	}, logger)

	projectSvc := projectuc.New(recordRepo)
	mediaSvc := mediauc.New(fetcher, blobStore)
	searchSvc := searchuc.New(indexRepo).
		WithPagination(cfg.Search.PageSize, cfg.Search.MaxPageSize)

	// Create chi server
	server := chiTransport.NewServer(projectSvc, mediaSvc, searchSvc, mongoClient, store, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
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
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
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

			// Canonical log line, one line per request
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
