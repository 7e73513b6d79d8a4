package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zomlab/whaleboard/internal/config"
	"github.com/zomlab/whaleboard/internal/insight"
	"github.com/zomlab/whaleboard/internal/mock"
	"github.com/zomlab/whaleboard/internal/server"
	"github.com/zomlab/whaleboard/internal/service"
	"github.com/zomlab/whaleboard/internal/upstream"
	"github.com/zomlab/whaleboard/internal/ws"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	// Setup logger
	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.String("port", cfg.Server.Port),
		zap.String("upstreamBaseURL", cfg.Upstream.BaseURL),
		zap.Bool("upstreamConfigured", cfg.Upstream.APIKey != ""),
		zap.Int64("mockSeed", cfg.Mock.Seed),
		zap.Bool("wsEnabled", cfg.WS.Enabled),
	)

	// Wire the pipeline
	client := upstream.NewClient(
		cfg.Upstream.BaseURL,
		cfg.Upstream.APIKey,
		cfg.Upstream.RatePerSecond,
		time.Duration(cfg.Upstream.TimeoutSec)*time.Second,
		time.Duration(cfg.Upstream.RetryDelaySec)*time.Second,
		cfg.Upstream.RetryCount,
		logger,
	)
	generator := mock.NewGenerator(cfg.Mock.Seed)
	summarizer := insight.NewTemplateSummarizer()
	svc := service.New(client, generator, summarizer, logger)

	srv := server.NewServer(svc, cfg, logger)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.WS.Enabled {
		hub := ws.NewHub(logger)
		go hub.Run(ctx)

		streamer := ws.NewTideStreamer(hub, svc, cfg.WS.Interval(), logger)
		go streamer.Run(ctx)

		srv = srv.WithTideStream(hub)

		logger.Info("WebSocket enabled", zap.Duration("streamInterval", cfg.WS.Interval()))
	}

	router := server.NewRouter(srv, logger)

	// Setup HTTP server
	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Cancel context to stop WebSocket components
	cancel()

	// Graceful HTTP server shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return 1
	}

	logger.Info("server stopped")
	return 0
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}
