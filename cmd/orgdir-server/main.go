package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orgdir/internal/airtable"
	"orgdir/internal/config"
	"orgdir/internal/httpapi"
	"orgdir/internal/logging"
	"orgdir/internal/pipeline"
	"orgdir/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	logger, err := logging.New(cfg)
	must(err)
	defer func() { _ = logger.Sync() }()

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	source, err := airtable.OpenSource(cfg, db, logger)
	must(err)
	svc := pipeline.NewDirectoryService(source, cfg.Source, db, logger)
	srv := httpapi.NewServer(cfg.HTTPAddr, svc, logger, cfg.HTTPAllowedOrigin, time.Duration(cfg.HTTPShutdownTimeoutS)*time.Second)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(srv.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
