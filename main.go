package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shortlink/allocator"
	"shortlink/analytics"
	"shortlink/cache"
	"shortlink/clicks"
	"shortlink/config"
	"shortlink/handler"
	appLogger "shortlink/logger"
	"shortlink/middleware"
	redisClient "shortlink/redis"
	"shortlink/resolver"
	"shortlink/store"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg := config.MustLoadConfig()

	// Initialize logger
	appLogger.Initialize(cfg.LogLevel)
	log.Info().Msg("Configuration loaded successfully")

	// Initialize Redis-backed mapping store
	rdb := redisClient.NewClient(cfg.Redis)
	mappingStore := store.New(rdb)

	// Initialize hot-path cache (if enabled)
	var mappingCache *cache.Cache
	if cfg.Cache.Enabled {
		var err error
		mappingCache, err = cache.New(cfg.Cache)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize cache")
		}
	} else {
		log.Info().Msg("Cache disabled in configuration")
	}

	// Click capture runs on its own workers; redirects never wait on it.
	recorder := clicks.NewRecorder(
		mappingStore,
		clicks.StubLocator{},
		cfg.Clicks.QueueSize,
		cfg.Clicks.Workers,
		time.Duration(cfg.Clicks.PersistTimeout)*time.Second,
	)

	alloc := allocator.New(mappingStore, cfg.Allocator.CodeLength, cfg.Allocator.MaxRetries)
	res := resolver.New(mappingStore, mappingCache, recorder)
	agg := analytics.New(mappingStore)

	// Create handler with dependency injection
	linkHandler := handler.NewLinkHandler(mappingStore, mappingCache, alloc, res, recorder, agg, cfg)

	// Set up router
	r := mux.NewRouter()

	// Apply global middleware
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	r.Use(middleware.CORS)
	r.Use(middleware.RequestLogger)
	r.Use(rateLimiter.Limit)

	// Register routes
	r.HandleFunc("/health", linkHandler.HealthCheck).Methods("GET")
	r.HandleFunc("/cache/metrics", linkHandler.CacheMetrics).Methods("GET")
	r.HandleFunc("/api/links", linkHandler.CreateLink).Methods("POST")
	r.HandleFunc("/api/links", linkHandler.ListLinks).Methods("GET")
	r.HandleFunc("/api/links/{code}", linkHandler.GetLink).Methods("GET")
	r.HandleFunc("/api/links/{code}", linkHandler.DeleteLink).Methods("DELETE")
	r.HandleFunc("/api/links/{code}/status", linkHandler.ToggleStatus).Methods("PATCH")
	r.HandleFunc("/api/links/{code}/qr", linkHandler.GenerateQR).Methods("GET")
	r.HandleFunc("/api/analytics", linkHandler.GetAggregates).Methods("GET")

	// Redirect route
	r.HandleFunc("/s/{code}", linkHandler.Redirect).Methods("GET")

	// Configure HTTP server
	serverAddress := fmt.Sprintf("%s:%s", cfg.WebServer.IP, cfg.WebServer.Port)
	server := &http.Server{
		Addr:         serverAddress,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.WebServer.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WebServer.WriteTimeout) * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("address", serverAddress).
			Str("scheme", cfg.WebServer.Scheme).
			Msg("Starting server")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.WebServer.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Drain in-flight click captures before closing the store
	recorder.Close()

	if mappingCache != nil {
		mappingCache.Close()
	}

	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close Redis connection")
	}

	log.Info().Msg("Server stopped gracefully")
}
