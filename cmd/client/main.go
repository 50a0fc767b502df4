package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/chathub/internal/client/cli"
	"github.com/dmitrijs2005/chathub/internal/client/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	app := cli.NewApp(cfg)
	if err := app.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
