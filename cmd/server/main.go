package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fiveinrow"
	"fiveinrow/internal/config"
	"fiveinrow/internal/game"
	"fiveinrow/internal/match"
	"fiveinrow/internal/server"
	"fiveinrow/internal/session"
	"fiveinrow/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to the YAML config file")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	logger := conf.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := storage.Open(ctx, conf.StorageOptions())
	if err != nil {
		logger.Error("open storage", "driver", conf.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer kv.Close()

	matches := match.NewStore(kv, logger)
	mgr := session.NewManager(kv, logger, game.WithWinLength(conf.Game.WinLength))
	if err := mgr.Restore(ctx); err != nil {
		logger.Warn("restore sessions", "error", err)
	}

	go mgr.CleanupLoop(ctx, conf.Session.CleanupInterval, conf.Session.MaxIdle)

	webFS, err := fs.Sub(fiveinrow.WebFS, "web")
	if err != nil {
		logger.Error("web assets", "error", err)
		os.Exit(1)
	}
	if conf.WebDir != "" {
		webFS = os.DirFS(conf.WebDir)
	}

	srv := server.New(mgr, matches, webFS, logger, server.Options{
		Camera:         conf.CameraConfig(),
		MobileCellSize: conf.Camera.MobileCellSize,
	})
	httpServer := &http.Server{
		Addr:         conf.HTTP.Addr,
		Handler:      srv,
		ReadTimeout:  conf.HTTP.ReadTimeout,
		WriteTimeout: conf.HTTP.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", conf.HTTP.Addr, "storage", conf.Storage.Driver)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server", "error", err)
		os.Exit(1)
	}
}
