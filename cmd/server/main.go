package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/borderease/internal/buildinfo"
	"github.com/dmitrijs2005/borderease/internal/logging"
	"github.com/dmitrijs2005/borderease/internal/server"
	"github.com/dmitrijs2005/borderease/internal/server/config"
)

func main() {

	buildinfo.Print(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.New(os.Stdout, "json", cfg.LogLevel)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
