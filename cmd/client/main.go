package main

import (
	"context"
	"log/slog"
	"os"

	"cosmiclocker/internal/client/cli"
	"cosmiclocker/internal/client/config"
	"cosmiclocker/internal/logging"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	sl := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	logger := logging.NewSlogLogger(sl)

	app := cli.NewApp(cfg, logger)
	app.Run(ctx)

}
