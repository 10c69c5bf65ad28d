package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/borderease/internal/buildinfo"
	"github.com/dmitrijs2005/borderease/internal/client/cli"
	"github.com/dmitrijs2005/borderease/internal/client/config"
	"github.com/dmitrijs2005/borderease/internal/logging"
)

func main() {

	buildinfo.Print(os.Stdout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, "text", cfg.LogLevel)

	app, cleanup, err := cli.Bootstrap(ctx, cfg, os.Stdin, os.Stdout, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	var once sync.Once
	shutdown := func() { once.Do(cleanup) }
	defer shutdown()

	// the REPL blocks on stdin, so a signal ends the process from here
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
		shutdown()
		os.Exit(130)
	}()

	app.Run(ctx)

}
