package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"spirit-tamer/battlecore/internal/app"
	"spirit-tamer/battlecore/internal/config"
	"spirit-tamer/battlecore/internal/telemetry"
)

func main() {
	logger := log.New(os.Stderr, "[battlesim] ", log.LstdFlags)

	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		logger.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, app.Options{Logger: telemetry.WrapLogger(logger)}); err != nil {
		logger.Fatalf("%v", err)
	}
}
