package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"castforge/internal/cast"
	"castforge/internal/config"
	"castforge/internal/generate"
	"castforge/internal/httpapi"
	"castforge/internal/imagecache"
	"castforge/internal/images"
	"castforge/internal/observability"
	"castforge/internal/storage"
	"castforge/internal/upstream/farcaster"
	"castforge/internal/upstream/gemini"
	"castforge/internal/upstream/pexels"

	"github.com/joho/godotenv"
)

func main() {
	// A local .env is optional; real deployments set the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	metrics := observability.NewMetrics()

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	upstreamHTTPClient := &http.Client{Timeout: cfg.RequestTimeout, Transport: transport}

	geminiClient := gemini.New(cfg.GeminiBaseURL, cfg.GeminiAPIKey, upstreamHTTPClient,
		gemini.WithObserver(func(endpoint string, status int, duration time.Duration) {
			metrics.ObserveUpstream("gemini", endpoint, status, duration)
		}))
	pexelsClient := pexels.New(cfg.PexelsBaseURL, cfg.PexelsAPIKey, upstreamHTTPClient,
		pexels.WithObserver(func(endpoint string, status int, duration time.Duration) {
			metrics.ObserveUpstream("pexels", endpoint, status, duration)
		}))
	farcasterClient := farcaster.New(cfg.FarcasterHubURL, cfg.WarpcastAPIURL, upstreamHTTPClient,
		farcaster.WithObserver(func(endpoint string, status int, duration time.Duration) {
			metrics.ObserveUpstream("farcaster", endpoint, status, duration)
		}))

	store := storage.NewMemStore()
	generateService := generate.New(geminiClient, cfg.GeminiModel, cfg.GenerateTimeout)
	contentService := generate.NewContentService(geminiClient, cfg.GeminiModel, cfg.GenerateTimeout)
	imageService := images.New(pexelsClient, imagecache.New(cfg.ImageCacheSize, cfg.ImageCacheTTL),
		images.WithCacheObserver(metrics.ObserveImageCache))
	castService := cast.New(store, farcasterClient, logger)

	handler := httpapi.NewServer(cfg, logger, httpapi.Dependencies{
		Generate:       generateService,
		Content:        contentService,
		Images:         imageService,
		Cast:           castService,
		Store:          store,
		Metrics:        metrics,
		MetricsHandler: metrics.Handler(),
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       35 * time.Second,
		WriteTimeout:      40 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("server exited", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func newLogger(level string) *slog.Logger {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn", "warning":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
}
