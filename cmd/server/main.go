package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"cosmiclocker/internal/server"
	"cosmiclocker/internal/server/config"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}

}
