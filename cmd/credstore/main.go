package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/credstore/internal/logging"
	"github.com/dmitrijs2005/credstore/internal/server/cli"
	"github.com/dmitrijs2005/credstore/internal/server/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("%v", err)
		return cli.ExitCode(err)
	}

	logger, err := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		log.Printf("%v", err)
		return cli.ExitConfig
	}

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return cli.ExitCode(err)
	}
	defer app.Close()

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		log.Printf("%v", err)
		return cli.ExitCode(err)
	}
	return cli.ExitOK
}
