package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"fiveinrow/internal/camera"
	"fiveinrow/internal/config"
	"fiveinrow/internal/game"
	"fiveinrow/internal/match"
	"fiveinrow/internal/session"
	"fiveinrow/internal/storage"
	"fiveinrow/internal/terminal"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to the YAML config file")
	xName := flag.String("x", "", "name of the X player")
	oName := flag.String("o", "", "name of the O player")
	logPath := flag.String("log", "", "write logs to this file")
	flag.Parse()

	if err := run(*configPath, *logPath, match.Players{XName: *xName, OName: *oName}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, logPath string, names match.Players) error {
	players, err := session.ValidatePlayers(names)
	if err != nil {
		return fmt.Errorf("usage: tui -x <name> -o <name>: %w", err)
	}

	conf, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// the terminal owns stdout while the game runs
	var logOut io.Writer = io.Discard
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := conf.NewLoggerTo(logOut)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := storage.Open(ctx, conf.StorageOptions())
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer kv.Close()

	g := game.New(players, game.WithWinLength(conf.Game.WinLength))
	cam := camera.New(terminal.CameraConfig(conf.Camera.GridSize))
	app := terminal.NewApp(g, cam, match.NewStore(kv, logger), logger)
	return terminal.Run(ctx, app)
}
