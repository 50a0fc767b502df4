package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/chathub/internal/server"
	"github.com/dmitrijs2005/chathub/internal/server/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	cfg := config.LoadConfig()

	app := server.NewApp(cfg)
	if err := app.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
