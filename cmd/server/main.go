package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	h "github.com/mkuznetsov/videogen/internal/api/http"
	"github.com/mkuznetsov/videogen/internal/artifacts"
	cfgpkg "github.com/mkuznetsov/videogen/internal/config"
	"github.com/mkuznetsov/videogen/internal/media"
	"github.com/mkuznetsov/videogen/internal/pipeline"
	"github.com/mkuznetsov/videogen/internal/registry"
	"github.com/mkuznetsov/videogen/internal/script"
)

func main() {
	_ = godotenv.Load()

	cfg, err := cfgpkg.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	cfgpkg.SetupLogger(cfg)
	slog.Info("configuration loaded successfully")

	logger := slog.Default()

	temp, err := artifacts.NewTempStore(cfg.TempDir)
	if err != nil {
		slog.Error("failed to initialize temp store", "error", err)
		os.Exit(1)
	}

	output, err := artifacts.NewOutputStore(cfg.OutputDir, cfg.OutputRetention)
	if err != nil {
		slog.Error("failed to initialize output store", "error", err)
		os.Exit(1)
	}
	output.Sweep(time.Now())

	runner := media.NewRunner(cfg.FFmpegPath, cfg.FFprobePath, logger)
	if !runner.Available() {
		slog.Warn("ffmpeg not found, all encoding will use local fallbacks")
	}

	reg := registry.New(cfg.TaskTTL)
	orchestrator := pipeline.New(
		reg,
		script.New(nil),
		media.NewImageAdapter(nil, logger),
		media.NewSpeechAdapter(runner, cfg.TTSCommand, logger),
		media.NewAvatarAdapter(runner, cfg.FrameRate, logger),
		media.NewEncodeAdapter(runner, output, cfg.SceneSeconds, cfg.FrameRate, logger),
		temp,
		logger,
	)

	router := h.NewRouter(orchestrator, reg, output, logger)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  cfg.HTTPTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	} else {
		slog.Info("server stopped gracefully")
	}
}
